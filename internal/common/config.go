package common

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Default values
const (
	DefaultPDFDir         = "data/pdfs"
	DefaultCacheDir       = "data/cache"
	DefaultOutputPath     = "data/output_excel.xlsx"
	DefaultStoreDSN       = "data/session.db"
	DefaultSession        = "default"
	DefaultDownloadTime   = 120 * time.Second
	DefaultModel          = "gpt-4o"
	DefaultTemperature    = 0.3
	DefaultLLMTimeout     = 120 * time.Second
	DefaultOpenAIBaseURL  = "https://api.openai.com/v1"
	DefaultVertexModel    = "gemini-1.5-pro"
	DefaultServerAddr     = ":8080"
	DefaultUserAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/114.0.0.0 Safari/537.36"
	envPrefix             = "GUIDANCE"
	ProviderOpenAI        = "openai"
	ProviderVertex        = "vertex"
	TextBackendPDF        = "pdf"
	TextBackendPdftotext  = "pdftotext"
	defaultPdftotextBin   = "pdftotext"
	defaultLogLevel       = "info"
	defaultLogFormat      = "text"
	defaultStoreOpTimeout = 5 * time.Second
)

// Config holds all application configuration
type Config struct {
	Data     DataConfig     `yaml:"data"`
	Store    StoreConfig    `yaml:"store"`
	Download DownloadConfig `yaml:"download"`
	Text     TextConfig     `yaml:"text"`
	LLM      LLMConfig      `yaml:"llm"`
	Vertex   VertexConfig   `yaml:"vertex"`
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
}

// DataConfig holds the on-disk layout.
type DataConfig struct {
	PDFDir   string `yaml:"pdf_dir"`
	CacheDir string `yaml:"cache_dir"`
	Output   string `yaml:"output"`
}

// StoreConfig selects the durable session store. A postgres:// DSN selects pgx,
// anything else is a SQLite path.
type StoreConfig struct {
	DSN       string        `yaml:"dsn"`
	Session   string        `yaml:"session"`
	OpTimeout time.Duration `yaml:"op_timeout"`
}

// DownloadConfig holds PDF fetcher settings.
type DownloadConfig struct {
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"user_agent"`
}

// TextConfig holds text extraction settings.
type TextConfig struct {
	Backend   string `yaml:"backend"`
	Pdftotext string `yaml:"pdftotext"`
}

// LLMConfig holds LLM-related configuration
type LLMConfig struct {
	Provider    string        `yaml:"provider"`
	Model       string        `yaml:"model"`
	BaseURL     string        `yaml:"base_url"`
	APIKey      string        `yaml:"-"`
	Temperature float32       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
	JSONMode    bool          `yaml:"json_mode"` // ask OpenAI-compatible servers for a JSON object reply
}

// VertexConfig holds Vertex AI settings used when LLM.Provider is "vertex".
type VertexConfig struct {
	Project string `yaml:"project"`
	Region  string `yaml:"region"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Addr     string `yaml:"addr"`
	GRPCAddr string `yaml:"grpc_addr"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// flag name -> viper key
var flagKeys = map[string]string{
	"pdf-dir":          "data.pdf_dir",
	"cache-dir":        "data.cache_dir",
	"out":              "data.output",
	"store":            "store.dsn",
	"session":          "store.session",
	"download-timeout": "download.timeout",
	"text-backend":     "text.backend",
	"llm-provider":     "llm.provider",
	"model":            "llm.model",
	"temperature":      "llm.temperature",
	"llm-timeout":      "llm.timeout",
	"json-mode":        "llm.json_mode",
	"base-url":         "llm.base_url",
	"vertex-project":   "vertex.project",
	"vertex-region":    "vertex.region",
	"addr":             "server.addr",
	"grpc-addr":        "server.grpc_addr",
	"log-level":        "log.level",
	"log-format":       "log.format",
}

// RegisterFlags defines the shared flags on fs. Commands add their own flags
// before calling LoadConfig.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "path to a YAML config file")
	fs.String("api-key", "", "OpenAI API key (default $OPENAI_API_KEY); never persisted")
	fs.String("pdf-dir", DefaultPDFDir, "directory for downloaded PDFs")
	fs.String("cache-dir", DefaultCacheDir, "directory for cached LLM records")
	fs.String("out", DefaultOutputPath, "output XLSX path")
	fs.String("store", DefaultStoreDSN, "session store DSN (SQLite path or postgres:// URL)")
	fs.String("session", DefaultSession, "session name in the store")
	fs.Duration("download-timeout", DefaultDownloadTime, "per-download timeout")
	fs.String("text-backend", TextBackendPDF, "text extraction backend: pdf|pdftotext")
	fs.String("llm-provider", ProviderOpenAI, "LLM provider: openai|vertex")
	fs.String("model", DefaultModel, "model name")
	fs.Float32("temperature", DefaultTemperature, "sampling temperature")
	fs.Duration("llm-timeout", DefaultLLMTimeout, "LLM request timeout")
	fs.Bool("json-mode", false, "request response_format json_object from the OpenAI-compatible API")
	fs.String("base-url", DefaultOpenAIBaseURL, "OpenAI-compatible API base URL")
	fs.String("vertex-project", "", "GCP project for Vertex AI")
	fs.String("vertex-region", "us-central1", "GCP region for Vertex AI")
	fs.String("addr", DefaultServerAddr, "HTTP listen address")
	fs.String("grpc-addr", "", "gRPC health listen address (empty disables)")
	fs.String("log-level", defaultLogLevel, "log level: debug|info|warn|error")
	fs.String("log-format", defaultLogFormat, "log format: text|json")
}

// LoadConfig parses args into fs and resolves configuration with precedence
// flag > env (GUIDANCE_*) > config file > defaults.
func LoadConfig(fs *pflag.FlagSet, args []string) (*Config, error) {
	if fs.Lookup("config") == nil {
		RegisterFlags(fs)
	}
	if err := fs.Parse(args); err != nil {
		return nil, NewAppError(ErrConfig, "parse flags", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for name, key := range flagKeys {
		if f := fs.Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, NewAppError(ErrConfig, "bind flag "+name, err)
			}
		}
	}

	if path, _ := fs.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, NewAppError(ErrConfig, "read config file", err)
			}
		}
	}

	cfg := populate(v)
	if key, _ := fs.GetString("api-key"); key != "" {
		cfg.LLM.APIKey = key
	} else {
		cfg.LLM.APIKey = getEnv("OPENAI_API_KEY", "")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data.pdf_dir", DefaultPDFDir)
	v.SetDefault("data.cache_dir", DefaultCacheDir)
	v.SetDefault("data.output", DefaultOutputPath)
	v.SetDefault("store.dsn", DefaultStoreDSN)
	v.SetDefault("store.session", DefaultSession)
	v.SetDefault("store.op_timeout", defaultStoreOpTimeout)
	v.SetDefault("download.timeout", DefaultDownloadTime)
	v.SetDefault("download.user_agent", DefaultUserAgent)
	v.SetDefault("text.backend", TextBackendPDF)
	v.SetDefault("text.pdftotext", defaultPdftotextBin)
	v.SetDefault("llm.provider", ProviderOpenAI)
	v.SetDefault("llm.model", DefaultModel)
	v.SetDefault("llm.base_url", DefaultOpenAIBaseURL)
	v.SetDefault("llm.temperature", DefaultTemperature)
	v.SetDefault("llm.timeout", DefaultLLMTimeout)
	v.SetDefault("llm.json_mode", false)
	v.SetDefault("vertex.region", "us-central1")
	v.SetDefault("server.addr", DefaultServerAddr)
	v.SetDefault("log.level", defaultLogLevel)
	v.SetDefault("log.format", defaultLogFormat)
}

func populate(v *viper.Viper) *Config {
	return &Config{
		Data: DataConfig{
			PDFDir:   v.GetString("data.pdf_dir"),
			CacheDir: v.GetString("data.cache_dir"),
			Output:   v.GetString("data.output"),
		},
		Store: StoreConfig{
			DSN:       v.GetString("store.dsn"),
			Session:   v.GetString("store.session"),
			OpTimeout: v.GetDuration("store.op_timeout"),
		},
		Download: DownloadConfig{
			Timeout:   v.GetDuration("download.timeout"),
			UserAgent: v.GetString("download.user_agent"),
		},
		Text: TextConfig{
			Backend:   v.GetString("text.backend"),
			Pdftotext: v.GetString("text.pdftotext"),
		},
		LLM: LLMConfig{
			Provider:    v.GetString("llm.provider"),
			Model:       v.GetString("llm.model"),
			BaseURL:     v.GetString("llm.base_url"),
			Temperature: float32(v.GetFloat64("llm.temperature")),
			Timeout:     v.GetDuration("llm.timeout"),
			JSONMode:    v.GetBool("llm.json_mode"),
		},
		Vertex: VertexConfig{
			Project: v.GetString("vertex.project"),
			Region:  v.GetString("vertex.region"),
		},
		Server: ServerConfig{
			Addr:     v.GetString("server.addr"),
			GRPCAddr: v.GetString("server.grpc_addr"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Validate checks the loaded configuration. The API key is checked by the
// commands that need one, since the daemon takes it per request.
func (c *Config) Validate() error {
	v := NewValidator()
	v.Field("data.pdf_dir", c.Data.PDFDir, Required)
	v.Field("data.cache_dir", c.Data.CacheDir, Required)
	v.Field("store.session", c.Store.Session, Required)
	v.Field("download.timeout", c.Download.Timeout, PositiveDuration)
	v.Field("llm.timeout", c.LLM.Timeout, PositiveDuration)
	v.Field("text.backend", c.Text.Backend, OneOf(TextBackendPDF, TextBackendPdftotext))
	v.Field("llm.provider", c.LLM.Provider, OneOf(ProviderOpenAI, ProviderVertex))
	if c.LLM.Provider == ProviderVertex {
		v.Field("vertex.project", c.Vertex.Project, Required)
		v.Field("vertex.region", c.Vertex.Region, Required)
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		v.Field("llm.temperature", c.LLM.Temperature, func(name string, val any) *ValidationError {
			return &ValidationError{Field: name, Value: val, Message: "must be within 0..2"}
		})
	}
	return v.Err(ErrConfig)
}

// RequireAPIKey fails when the OpenAI provider is selected without a key.
func (c *Config) RequireAPIKey() error {
	if c.LLM.Provider == ProviderOpenAI && c.LLM.APIKey == "" {
		return NewAppError(ErrConfig, "OPENAI_API_KEY or --api-key is required", ErrInvalidInput)
	}
	return nil
}

// String hides the API key.
func (c LLMConfig) String() string {
	return fmt.Sprintf("provider=%s model=%s temp=%.2f timeout=%s json_mode=%t key_set=%t",
		c.Provider, c.Model, c.Temperature, c.Timeout, c.JSONMode, c.APIKey != "")
}

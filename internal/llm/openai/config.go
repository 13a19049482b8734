package openai

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/amolnak/GuidanceMind/internal/common"
)

// Config for the OpenAI client.
type Config struct {
	APIKey      string        // if empty, falls back to env OPENAI_API_KEY; a per-request key in ctx wins
	BaseURL     string        // default https://api.openai.com/v1
	Model       string        // default gpt-4o
	Temperature float32       // 0..2
	Timeout     time.Duration // http client timeout
	JSONMode    bool          // send response_format json_object
}

type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = common.DefaultOpenAIBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = common.DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = common.DefaultLLMTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

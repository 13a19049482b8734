package vertex

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"cloud.google.com/go/vertexai/genai"
	"github.com/google/uuid"

	"github.com/amolnak/GuidanceMind/internal/common"
	"github.com/amolnak/GuidanceMind/internal/llm"
)

// Config for the Vertex AI Gemini backend.
type Config struct {
	Project     string
	Region      string
	Model       string // default gemini-1.5-pro
	Temperature float32
}

// Client implements llm.Completer on Vertex AI. Credentials come from the
// environment (ADC), never from the operator session.
type Client struct {
	cfg    Config
	base   *genai.Client
	logger *slog.Logger
}

var _ llm.Completer = (*Client)(nil)

func NewClient(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.Project == "" || cfg.Region == "" {
		return nil, common.NewAppError(common.ErrConfig, "vertex project and region are required", nil)
	}
	if cfg.Model == "" {
		cfg.Model = common.DefaultVertexModel
	}
	if logger == nil {
		logger = slog.Default()
	}
	base, err := genai.NewClient(ctx, cfg.Project, cfg.Region)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}
	return &Client{cfg: cfg, base: base, logger: logger}, nil
}

func (c *Client) Model() string { return c.cfg.Model }

func (c *Client) Close() error {
	if c.base != nil {
		return c.base.Close()
	}
	return nil
}

func (c *Client) Complete(ctx context.Context, req llm.CompletionRequest) (string, error) {
	rid := uuid.New().String()
	start := time.Now()

	model := c.base.GenerativeModel(c.cfg.Model)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(req.System)},
	}
	model.GenerationConfig = genai.GenerationConfig{
		ResponseMIMEType: "application/json",
		Temperature:      genai.Ptr[float32](c.cfg.Temperature),
	}

	resp, err := model.GenerateContent(ctx, genai.Text(req.User))
	if err != nil {
		c.logger.Error("llm.vertex.generate_failed", "req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return "", common.NewAppError(common.ErrLLMInvocation, "vertex generate content", err)
	}
	text, err := responseText(resp)
	if err != nil {
		return "", common.NewAppError(common.ErrLLMInvocation, "vertex response", err)
	}
	c.logger.Info("llm.vertex.ok", "req_id", rid, "model", c.cfg.Model,
		"elapsed_ms", time.Since(start).Milliseconds())
	return text, nil
}

// responseText joins the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("empty response")
	}
	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("no text parts in response")
	}
	return strings.TrimSpace(b.String()), nil
}

package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/amolnak/GuidanceMind/internal/common"
	"github.com/amolnak/GuidanceMind/internal/llm"
)

var _ llm.Completer = (*Client)(nil)

// Model returns the configured model name.
func (c *Client) Model() string { return c.cfg.Model }

// Complete sends one system and one user message to chat/completions and
// returns the first choice's content, trimmed.
func (c *Client) Complete(ctx context.Context, req llm.CompletionRequest) (string, error) {
	key := common.APIKeyFromContext(ctx)
	if key == "" {
		key = c.cfg.APIKey
	}
	if key == "" {
		return "", common.NewAppError(common.ErrLLMInvocation, "no OpenAI API key supplied", common.ErrInvalidInput)
	}

	rid := uuid.New().String()
	ctx = common.WithRequestID(ctx, rid)
	start := time.Now()

	body := map[string]any{
		"model":       c.cfg.Model,
		"temperature": c.cfg.Temperature,
		"messages": []map[string]any{
			{"role": "system", "content": req.System},
			{"role": "user", "content": req.User},
		},
	}
	if c.cfg.JSONMode {
		body["response_format"] = map[string]any{"type": "json_object"}
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	raw, err := llm.SendJSON(ctx, c.http, endpoint, body, map[string]string{
		"Authorization": "Bearer " + key,
	}, c.logger)
	if err != nil {
		var se *llm.StatusError
		if errors.As(err, &se) {
			return "", common.NewAppError(common.ErrLLMInvocation, fmt.Sprintf("openai status %d", se.Status), err)
		}
		return "", common.NewAppError(common.ErrLLMInvocation, "openai request failed", err)
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Usage struct {
			PromptTokens     int `json:"prompt_tokens"`
			CompletionTokens int `json:"completion_tokens"`
		} `json:"usage"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.logger.Error("llm.openai.decode_error", "req_id", rid, "error", err, "raw_bytes", len(raw))
		return "", common.NewAppError(common.ErrLLMInvocation, "decode openai response", err)
	}
	if len(cc.Choices) == 0 {
		c.logger.Error("llm.openai.no_choices", "req_id", rid, "raw", string(raw))
		return "", common.NewAppError(common.ErrLLMInvocation, "no choices in openai response", nil)
	}

	c.logger.Info("llm.openai.ok",
		"req_id", rid,
		"model", c.cfg.Model,
		"prompt_tokens", cc.Usage.PromptTokens,
		"completion_tokens", cc.Usage.CompletionTokens,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return strings.TrimSpace(cc.Choices[0].Message.Content), nil
}

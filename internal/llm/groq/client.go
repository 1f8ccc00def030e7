package groq

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/clinidocs/summarizer/internal/llm"
)

// Generate implements llm.Generator against Groq's OpenAI-compatible
// chat/completions endpoint. It renders the prompt locally, performs exactly
// one POST, and surfaces transport and non-2xx failures as
// llm.ErrServiceUnavailable. A 2xx body without usable content is passed
// through as an empty reply for the parser to diagnose.
func (c *Client) Generate(ctx context.Context, id llm.PromptID, vars map[string]string) (string, error) {
	rid := uuid.New().String()
	start := time.Now()

	prompt, err := llm.Render(id, vars)
	if err != nil {
		c.logger.Error("llm.generate.render_error", "req_id", rid, "prompt_id", string(id), "error", err)
		return "", err
	}

	c.logger.Info("llm.generate.start",
		"req_id", rid,
		"prompt_id", string(id),
		"model", c.cfg.Model,
		"temp", llm.TemperatureFor(id, c.cfg.Temperature),
		"prompt_len", len(prompt),
	)

	body := map[string]any{
		"model":       c.cfg.Model,
		"temperature": llm.TemperatureFor(id, c.cfg.Temperature),
		"messages": []map[string]any{
			{"role": "user", "content": prompt},
		},
	}
	if c.cfg.MaxOutputTokens > 0 {
		body["max_tokens"] = c.cfg.MaxOutputTokens
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	raw, err := c.post(ctx, endpoint, body)
	if err != nil {
		c.logger.Error("llm.generate.http_error",
			"req_id", rid, "prompt_id", string(id), "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", fmt.Errorf("%w: %v", llm.ErrServiceUnavailable, err)
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil || len(cc.Choices) == 0 {
		// Malformed or empty 2xx replies are not client errors; downstream
		// parsing decides what an unusable reply means for the task.
		c.logger.Warn("llm.generate.empty_reply",
			"req_id", rid, "prompt_id", string(id), "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", nil
	}

	content := strings.TrimSpace(cc.Choices[0].Message.Content)
	c.logger.Info("llm.generate.ok",
		"req_id", rid,
		"prompt_id", string(id),
		"reply_len", len(content),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return content, nil
}

func (c *Client) post(ctx context.Context, url string, body map[string]any) ([]byte, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("groq http error: %w", err)
	}
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			c.logger.Warn("groq response body close error", "error", err)
		}
	}(resp.Body)

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("groq status %d: %s", resp.StatusCode, truncate(string(raw), 2<<10))
	}
	return raw, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}

package groq

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinidocs/summarizer/internal/llm"
)

func newTestServer(t *testing.T, status int, content string, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.NotEmpty(t, body["model"])

		w.WriteHeader(status)
		if status == http.StatusOK {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"choices": []map[string]any{
					{"message": map[string]any{"content": content}},
				},
			})
		}
	}))
}

func TestGenerateOK(t *testing.T) {
	var hits atomic.Int32
	srv := newTestServer(t, http.StatusOK, "  Amoxicillin treats bacterial infections.  ", &hits)
	defer srv.Close()

	c := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL}, nil)
	reply, err := c.Generate(context.Background(), llm.PromptMedicationPurpose, map[string]string{
		"medication_name": "Amoxicillin",
	})
	require.NoError(t, err)
	assert.Equal(t, "Amoxicillin treats bacterial infections.", reply)
	assert.EqualValues(t, 1, hits.Load(), "exactly one call per invocation")
}

func TestGenerateServiceError(t *testing.T) {
	var hits atomic.Int32
	srv := newTestServer(t, http.StatusServiceUnavailable, "", &hits)
	defer srv.Close()

	c := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL}, nil)
	_, err := c.Generate(context.Background(), llm.PromptMedicationPurpose, map[string]string{
		"medication_name": "Amoxicillin",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, llm.ErrServiceUnavailable)
	assert.EqualValues(t, 1, hits.Load(), "no internal retry")
}

func TestGenerateMissingVariableSkipsNetwork(t *testing.T) {
	var hits atomic.Int32
	srv := newTestServer(t, http.StatusOK, "unused", &hits)
	defer srv.Close()

	c := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL}, nil)
	_, err := c.Generate(context.Background(), llm.PromptMedicationPurpose, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, llm.ErrMissingVariable)
	assert.Zero(t, hits.Load(), "render failure must precede any network call")
}

func TestGenerateEmptyChoicesPassesThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL}, nil)
	reply, err := c.Generate(context.Background(), llm.PromptMedicationPurpose, map[string]string{
		"medication_name": "Amoxicillin",
	})
	require.NoError(t, err, "an unusable 2xx reply is not a client error")
	assert.Empty(t, reply)
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient(Config{APIKey: "k"}, nil)
	assert.Equal(t, "https://api.groq.com/openai/v1", c.cfg.BaseURL)
	assert.Equal(t, "llama-3.3-70b-versatile", c.cfg.Model)
	assert.Positive(t, c.cfg.Timeout)
}

package groq

import (
	"log/slog"
	"net/http"
	"os"
	"time"
)

// Config for the Groq client. All generation options are construction-time
// configuration; nothing is read from globals after NewClient returns.
type Config struct {
	APIKey          string        // if empty, falls back to env GROQ_API_KEY
	BaseURL         string        // default https://api.groq.com/openai/v1
	Model           string        // e.g., "llama-3.3-70b-versatile"
	Temperature     float32       // default for prompts without an override
	MaxOutputTokens int           // 0 = provider default
	Timeout         time.Duration // http client timeout, bounds the single call
}

type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("GROQ_API_KEY")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.groq.com/openai/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "llama-3.3-70b-versatile"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 45 * time.Second
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

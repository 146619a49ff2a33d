package llamacloud

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/joseph-ayodele/invoice-tracker/internal/common"
)

// Config for the cloud extraction client.
type Config struct {
	APIKey       string
	BaseURL      string        // default https://api.cloud.llamaindex.ai/api/v1
	AgentName    string        // default invoice_parser
	PollInterval time.Duration // default 3s
	PollTimeout  time.Duration // default 180s
	HTTPTimeout  time.Duration // per request, default 30s
}

// ConfigFrom adapts the application cloud settings.
func ConfigFrom(c common.CloudConfig) Config {
	return Config{
		APIKey:       c.APIKey,
		BaseURL:      c.BaseURL,
		AgentName:    c.AgentName,
		PollInterval: c.PollInterval,
		PollTimeout:  c.PollTimeout,
		HTTPTimeout:  c.HTTPTimeout,
	}
}

// Client talks to the extraction-agent API. One Client may serve concurrent
// extractions; the agent id is resolved once.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger

	mu      sync.Mutex
	agentID string
}

type Option func(*Client)

// WithHTTPClient overrides the http client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// NewClient fails with a config error when no API key is set.
func NewClient(cfg Config, logger *slog.Logger, opts ...Option) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, common.ConfigError("LLAMA_API_KEY is not set")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.cloud.llamaindex.ai/api/v1"
	}
	if cfg.AgentName == "" {
		cfg.AgentName = "invoice_parser"
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 3 * time.Second
	}
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = 180 * time.Second
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.HTTPTimeout},
		logger: logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

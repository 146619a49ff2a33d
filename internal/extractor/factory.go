package extractor

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/joseph-ayodele/invoice-tracker/constants"
	"github.com/joseph-ayodele/invoice-tracker/internal/common"
	"github.com/joseph-ayodele/invoice-tracker/internal/llm/llamacloud"
	"github.com/joseph-ayodele/invoice-tracker/internal/llm/openai"
)

// Credentials reports which remote providers can be used. *common.Config implements it.
type Credentials interface {
	HasCloudCredentials() bool
	HasChatCredentials() bool
}

// Factory builds extractors by selector name.
type Factory struct {
	cfg    *common.Config
	creds  Credentials
	http   *http.Client
	logger *slog.Logger

	mu    sync.Mutex
	cache map[string]Extractor
}

type FactoryOption func(*Factory)

// WithCredentials overrides the credential check; by default the config decides.
func WithCredentials(creds Credentials) FactoryOption {
	return func(f *Factory) { f.creds = creds }
}

// WithHTTPClient is passed to the remote clients the factory builds.
func WithHTTPClient(hc *http.Client) FactoryOption {
	return func(f *Factory) { f.http = hc }
}

func NewFactory(cfg *common.Config, logger *slog.Logger, opts ...FactoryOption) *Factory {
	if cfg == nil {
		cfg = &common.Config{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	f := &Factory{
		cfg:    cfg,
		creds:  cfg,
		logger: logger,
		cache:  make(map[string]Extractor),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Create returns the extractor for provider. An empty provider with autoDetect
// picks cloud, then chat-completion, then OCR, depending on the credentials.
// An empty provider without autoDetect means the cloud provider.
func (f *Factory) Create(provider string, autoDetect bool) (Extractor, error) {
	provider = strings.ToLower(strings.TrimSpace(provider))
	if provider == "" {
		if autoDetect {
			provider = f.detect()
			f.logger.Info("extractor.auto_detected", "provider", provider)
		} else {
			provider = constants.SelectorCloud
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if e, ok := f.cache[provider]; ok {
		return e, nil
	}
	e, err := f.build(provider)
	if err != nil {
		return nil, err
	}
	f.cache[provider] = e
	f.logger.Debug("extractor.created", "selector", provider, "provider", e.ProviderName())
	return e, nil
}

func (f *Factory) detect() string {
	switch {
	case f.creds.HasCloudCredentials():
		return constants.SelectorCloud
	case f.creds.HasChatCredentials():
		return constants.SelectorChatCompletion
	default:
		return constants.SelectorOCR
	}
}

func (f *Factory) build(provider string) (Extractor, error) {
	switch provider {
	case constants.SelectorOCR:
		return NewOCRPattern(), nil
	case constants.SelectorMock:
		return NewMock(), nil
	case constants.SelectorCloud:
		if !f.creds.HasCloudCredentials() {
			return nil, common.ConfigError("LLAMA_API_KEY is required for the llm-cloud provider")
		}
		var opts []llamacloud.Option
		if f.http != nil {
			opts = append(opts, llamacloud.WithHTTPClient(f.http))
		}
		c, err := llamacloud.NewClient(llamacloud.ConfigFrom(f.cfg.Cloud), f.logger, opts...)
		if err != nil {
			return nil, err
		}
		return c, nil
	case constants.SelectorChatCompletion:
		if !f.creds.HasChatCredentials() {
			return nil, common.ConfigError("OPENAI_API_KEY is required for the chat-completion provider")
		}
		var opts []openai.Option
		if f.http != nil {
			opts = append(opts, openai.WithHTTPClient(f.http))
		}
		c, err := openai.NewClient(openai.ConfigFrom(f.cfg.LLM), f.logger, opts...)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, common.ConfigError(fmt.Sprintf("unknown extractor provider %q (valid: %s)",
			provider, strings.Join(constants.SelectorPriority, ", ")))
	}
}

// AvailableProviders lists the selectors that can be created right now.
func (f *Factory) AvailableProviders() []string {
	out := make([]string, 0, len(constants.SelectorPriority))
	for _, p := range constants.SelectorPriority {
		if f.available(p) {
			out = append(out, p)
		}
	}
	return out
}

// RecommendedProvider is the highest-priority available selector.
func (f *Factory) RecommendedProvider() string {
	for _, p := range constants.SelectorPriority {
		if f.available(p) {
			return p
		}
	}
	return constants.SelectorMock
}

func (f *Factory) available(p string) bool {
	switch p {
	case constants.SelectorCloud:
		return f.creds.HasCloudCredentials()
	case constants.SelectorChatCompletion:
		return f.creds.HasChatCredentials()
	default:
		return true
	}
}

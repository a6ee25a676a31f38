package providers

import (
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"llm_compare/internal/config"
)

// Registry holds the compared providers in their fixed display order:
// Anthropic, OpenAI, fine-tuned OpenAI.
type Registry struct {
	client    *resty.Client
	providers []*Provider
}

// NewRegistry builds the three providers from configuration. Missing
// credentials do not fail construction; the affected provider reports
// itself as not configured when called.
func NewRegistry(cfg *config.Config, logger zerolog.Logger) *Registry {
	client := NewHTTPClient(cfg.Provider.RequestTimeout, logger)

	backends := []Backend{
		NewAnthropicBackend(cfg.Credentials, cfg.Provider),
		NewOpenAIBackend(cfg.Credentials, cfg.Provider),
		NewFinetunedBackend(cfg.Credentials, cfg.Provider),
	}

	r := &Registry{client: client}
	for _, b := range backends {
		p := New(b, client, logger)
		if !p.Configured() {
			logger.Warn().Str("provider", b.Name).Msg("provider not configured, it will report an error instead of calling the backend")
		}
		r.providers = append(r.providers, p)
	}
	return r
}

// Providers returns the providers in display order
func (r *Registry) Providers() []*Provider {
	out := make([]*Provider, len(r.providers))
	copy(out, r.providers)
	return out
}

// Close releases idle connections
func (r *Registry) Close() error {
	r.client.GetClient().CloseIdleConnections()
	return nil
}

// NewHTTPClient returns the resty client shared by all providers. Retries are
// disabled and a zero timeout leaves the request unbounded.
func NewHTTPClient(timeout time.Duration, logger zerolog.Logger) *resty.Client {
	client := resty.New().
		SetRetryCount(0).
		SetLogger(restyLogger{logger: logger.With().Str("component", "http_client").Logger()})
	if timeout > 0 {
		client.SetTimeout(timeout)
	}
	return client
}

// restyLogger routes resty's internal messages through zerolog.
type restyLogger struct {
	logger zerolog.Logger
}

func (l restyLogger) Errorf(format string, v ...interface{}) {
	l.logger.Error().Msgf(format, v...)
}

func (l restyLogger) Warnf(format string, v ...interface{}) {
	l.logger.Warn().Msgf(format, v...)
}

func (l restyLogger) Debugf(format string, v ...interface{}) {
	l.logger.Debug().Msgf(format, v...)
}

package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"unicode/utf8"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

// maxTokens is the output bound sent to every backend.
const maxTokens = 1000

// debugBodyLimit caps how much of a response body goes to the diagnostic log.
const debugBodyLimit = 200

var (
	// ErrNotConfigured is returned when a credential or model id is missing.
	ErrNotConfigured = errors.New("provider not configured")

	// ErrMissingField is returned when the response lacks the expected text field.
	ErrMissingField = errors.New("response missing expected field")
)

// HTTPError is returned for non-2xx backend responses.
type HTTPError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d %s for url: %s", e.StatusCode, http.StatusText(e.StatusCode), e.URL)
}

// Extractor pulls the reply text out of a backend response body.
type Extractor func(body []byte) (string, error)

// PromptTransform rewrites the prompt before it is sent.
type PromptTransform func(prompt string) string

// Backend describes one external model API as seen by a Provider.
type Backend struct {
	// Name identifies the backend in error messages ("Error with <Name> API").
	Name string
	// Label is the panel heading shown to the user.
	Label string

	Model       string
	APIKey      string
	Endpoint    string
	MaxTokens   int
	Temperature *float64 // omitted from the request when nil

	Auth      Authenticator
	Extract   Extractor
	Transform PromptTransform

	// NotConfigured is returned verbatim when APIKey or Model is empty.
	NotConfigured string
	// LogResponses writes status and a truncated body to the info log.
	LogResponses bool
	// ErrorDetails appends the backend's error body to the failure message.
	ErrorDetails bool
}

// Result is the outcome of one GetResponse call. String renders it the way a
// panel shows it: the model text on success, a readable message on failure.
type Result struct {
	Text    string
	Err     error
	message string
}

// Failed reports whether the call produced an error instead of model text.
func (r Result) Failed() bool {
	return r.Err != nil
}

// Failure builds a failed Result carrying the message a panel should show.
func Failure(err error, message string) Result {
	return Result{Err: err, message: message}
}

func (r Result) String() string {
	if r.Err != nil {
		return r.message
	}
	return r.Text
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature *float64      `json:"temperature,omitempty"`
}

// Provider adapts one Backend to the uniform GetResponse contract. It holds no
// per-call state and is safe for concurrent use.
type Provider struct {
	backend Backend
	client  *resty.Client
	logger  zerolog.Logger
}

// New creates a provider for backend using the shared HTTP client.
func New(backend Backend, client *resty.Client, logger zerolog.Logger) *Provider {
	if backend.MaxTokens == 0 {
		backend.MaxTokens = maxTokens
	}
	return &Provider{
		backend: backend,
		client:  client,
		logger:  logger.With().Str("provider", backend.Name).Logger(),
	}
}

// Name returns the backend name
func (p *Provider) Name() string {
	return p.backend.Name
}

// Label returns the panel heading
func (p *Provider) Label() string {
	return p.backend.Label
}

// Configured reports whether all required credentials are present.
func (p *Provider) Configured() bool {
	return p.backend.APIKey != "" && p.backend.Model != ""
}

// GetResponse sends prompt to the backend and returns its reply. Failures are
// reported through Result, never as a separate error.
func (p *Provider) GetResponse(ctx context.Context, prompt string) Result {
	if !p.Configured() {
		return Failure(ErrNotConfigured, p.backend.NotConfigured)
	}

	text, err := p.send(ctx, prompt)
	if err != nil {
		p.logger.Warn().Err(err).Msg("provider call failed")
		return Failure(err, p.failureMessage(err))
	}
	return Result{Text: text}
}

func (p *Provider) send(ctx context.Context, prompt string) (string, error) {
	content := prompt
	if p.backend.Transform != nil {
		content = p.backend.Transform(prompt)
	}

	body, err := json.Marshal(chatRequest{
		Model:       p.backend.Model,
		Messages:    []chatMessage{{Role: "user", Content: content}},
		MaxTokens:   p.backend.MaxTokens,
		Temperature: p.backend.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req := p.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body)

	if p.backend.Auth != nil {
		if err := p.backend.Auth.ApplyToRequest(req); err != nil {
			return "", fmt.Errorf("failed to apply auth: %w", err)
		}
	}

	resp, err := req.Post(p.backend.Endpoint)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}

	if p.backend.LogResponses {
		p.logger.Info().
			Int("status_code", resp.StatusCode()).
			Str("response", truncate(string(resp.Body()), debugBodyLimit)+"...").
			Msg("backend response")
	}

	if !resp.IsSuccess() {
		return "", &HTTPError{
			StatusCode: resp.StatusCode(),
			URL:        p.backend.Endpoint,
			Body:       string(resp.Body()),
		}
	}

	return p.backend.Extract(resp.Body())
}

func (p *Provider) failureMessage(err error) string {
	msg := fmt.Sprintf("Error with %s API: %v", p.backend.Name, err)
	if !p.backend.ErrorDetails {
		return msg
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) && httpErr.Body != "" {
		msg += "\n\nDetails: " + httpErr.Body
	}
	return msg
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

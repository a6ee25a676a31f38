package providers

import (
	"github.com/go-resty/resty/v2"
)

// Authenticator attaches backend credentials to an outgoing request.
type Authenticator interface {
	ApplyToRequest(req *resty.Request) error
}

// SimpleAPIKeyAuth implements API key authentication through one header, plus
// any fixed headers the backend requires alongside it.
type SimpleAPIKeyAuth struct {
	apiKey     string
	headerName string // e.g., "Authorization"
	prefix     string // e.g., "Bearer "
	static     map[string]string
}

// NewSimpleAPIKeyAuth creates a new simple API key authenticator
func NewSimpleAPIKeyAuth(apiKey, headerName, prefix string) *SimpleAPIKeyAuth {
	if headerName == "" {
		headerName = "Authorization"
	}

	return &SimpleAPIKeyAuth{
		apiKey:     apiKey,
		headerName: headerName,
		prefix:     prefix,
		static:     map[string]string{},
	}
}

// NewBearerAuth sends the key as "Authorization: Bearer <key>" (OpenAI-style).
func NewBearerAuth(apiKey string) *SimpleAPIKeyAuth {
	return NewSimpleAPIKeyAuth(apiKey, "Authorization", "Bearer ")
}

// WithHeader adds a fixed header sent with every request.
func (a *SimpleAPIKeyAuth) WithHeader(name, value string) *SimpleAPIKeyAuth {
	a.static[name] = value
	return a
}

// ApplyToRequest adds the API key and fixed headers to the request
func (a *SimpleAPIKeyAuth) ApplyToRequest(req *resty.Request) error {
	if a.apiKey == "" {
		return ErrNotConfigured
	}

	req.SetHeader(a.headerName, a.prefix+a.apiKey)
	for name, value := range a.static {
		req.SetHeader(name, value)
	}
	return nil
}

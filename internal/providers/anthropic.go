package providers

import (
	"encoding/json"
	"fmt"
	"strings"

	"llm_compare/internal/config"
)

const anthropicVersion = "2023-06-01"

// NewAnthropicBackend describes the Anthropic Messages API. It is the only
// backend sending an explicit temperature, and it logs raw responses for
// local debugging.
func NewAnthropicBackend(creds config.Credentials, pc config.ProviderConfig) Backend {
	temperature := pc.AnthropicTemperature
	return Backend{
		Name:        "Anthropic",
		Label:       fmt.Sprintf("%s(Anthropic)", pc.AnthropicModel),
		Model:       pc.AnthropicModel,
		APIKey:      creds.AnthropicAPIKey,
		Endpoint:    strings.TrimRight(pc.AnthropicBaseURL, "/") + "/messages",
		MaxTokens:   maxTokens,
		Temperature: &temperature,
		Auth: NewSimpleAPIKeyAuth(creds.AnthropicAPIKey, "x-api-key", "").
			WithHeader("anthropic-version", anthropicVersion),
		Extract:       extractAnthropicText,
		NotConfigured: "Error: Anthropic API key not configured",
		LogResponses:  true,
		ErrorDetails:  true,
	}
}

// extractAnthropicText returns content[0].text.
func extractAnthropicText(body []byte) (string, error) {
	var resp struct {
		Content []struct {
			Type string  `json:"type"`
			Text *string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(resp.Content) == 0 {
		return "", fmt.Errorf("%w: content", ErrMissingField)
	}
	if resp.Content[0].Text == nil {
		return "", fmt.Errorf("%w: content[0].text", ErrMissingField)
	}
	return *resp.Content[0].Text, nil
}

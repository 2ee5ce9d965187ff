// Package translate talks to the chat completion backends that translate and
// correct captured text.
package translate

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"markestedt/langra/config"
)

var (
	// ErrCredentialsMissing is returned when no API key (or Azure endpoint) is configured
	ErrCredentialsMissing = errors.New("translation credentials not configured")
	// ErrCredentialsInvalid is returned when the backend rejects the credentials
	ErrCredentialsInvalid = errors.New("translation credentials invalid")
	// ErrBackend is returned for any other backend failure
	ErrBackend = errors.New("translation backend error")
)

const openAIBaseURL = "https://api.openai.com/v1"

// Handler receives streamed output. Both callbacks are optional.
type Handler struct {
	// OnChunk is called with each new piece of output text
	OnChunk func(text string)
	// OnProgress is called with 0-100 after each translated chunk
	OnProgress func(percent int)
}

func (h Handler) chunk(s string) {
	if h.OnChunk != nil && s != "" {
		h.OnChunk(s)
	}
}

func (h Handler) progress(p int) {
	if h.OnProgress != nil {
		h.OnProgress(p)
	}
}

// Provider defines the operations the capture pipeline needs from a backend
type Provider interface {
	Name() string
	Translate(ctx context.Context, text, sourceLang, targetLang string, h Handler) (string, error)
	Correct(ctx context.Context, text, language string, h Handler) (string, error)
	CorrectWithInstruction(ctx context.Context, text, language, instruction string, h Handler) (string, error)
	DetectLanguage(ctx context.Context, text string) (string, error)
}

// NewProvider creates a provider from the translation settings and the stored API key
func NewProvider(cfg config.TranslationConfig, apiKey string) (Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: no %s API key", ErrCredentialsMissing, cfg.Provider)
	}

	switch cfg.Provider {
	case config.ProviderOpenAI:
		return NewOpenAIProvider(openAIBaseURL, apiKey, cfg.Model, cfg.Style, cfg.MaxChunkTokens), nil
	case config.ProviderAzure:
		if cfg.AzureEndpoint == "" {
			return nil, fmt.Errorf("%w: no Azure endpoint", ErrCredentialsMissing)
		}
		return NewAzureProvider(cfg.AzureEndpoint, cfg.AzureDeployment, cfg.AzureAPIVersion, apiKey, cfg.Style, cfg.MaxChunkTokens)
	default:
		return nil, fmt.Errorf("unknown provider: %s", cfg.Provider)
	}
}

// NewOpenAIProvider creates a client for the OpenAI chat completions API
func NewOpenAIProvider(baseURL, apiKey, model, style string, maxChunkTokens int) *Client {
	if model == "" {
		model = "gpt-4o-mini"
	}
	return newClient(clientOptions{
		name:           config.ProviderOpenAI,
		url:            strings.TrimRight(baseURL, "/") + "/chat/completions",
		authHeader:     "Authorization",
		authValue:      "Bearer " + apiKey,
		model:          model,
		style:          style,
		maxChunkTokens: maxChunkTokens,
	})
}

// NewAzureProvider creates a client for an Azure OpenAI deployment
func NewAzureProvider(endpoint, deployment, apiVersion, apiKey, style string, maxChunkTokens int) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(endpoint, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: invalid Azure endpoint %q", ErrCredentialsInvalid, endpoint)
	}
	if deployment == "" {
		deployment = "gpt-4o-mini"
	}
	if apiVersion == "" {
		apiVersion = "2025-01-01-preview"
	}

	u = u.JoinPath("openai", "deployments", deployment, "chat", "completions")
	q := u.Query()
	q.Set("api-version", apiVersion)
	u.RawQuery = q.Encode()

	return newClient(clientOptions{
		name:           config.ProviderAzure,
		url:            u.String(),
		authHeader:     "api-key",
		authValue:      apiKey,
		style:          style,
		maxChunkTokens: maxChunkTokens,
	}), nil
}

// IsAuthError reports whether err means the stored credentials should be discarded
func IsAuthError(err error) bool {
	return errors.Is(err, ErrCredentialsInvalid)
}

package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	detectSampleRunes = 200
	detectCacheSize   = 256
)

type tool struct {
	Type     string       `json:"type"`
	Function toolFunction `json:"function"`
}

type toolFunction struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

var detectLanguageTool = tool{
	Type: "function",
	Function: toolFunction{
		Name:        "detect_language",
		Description: "Classify the language of text as 'en' for English, 'de' for German, or 'other' for any other language",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"language": map[string]any{
					"type":        "string",
					"enum":        []string{"en", "de", "other"},
					"description": "The detected language code",
				},
			},
			"required": []string{"language"},
		},
	},
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			ToolCalls []struct {
				Function struct {
					Arguments string `json:"arguments"`
				} `json:"function"`
			} `json:"tool_calls"`
		} `json:"message"`
	} `json:"choices"`
}

// DetectLanguage classifies text as "en", "de" or "other" with a function-calling request
func (c *Client) DetectLanguage(ctx context.Context, text string) (string, error) {
	req := chatRequest{
		Model: c.opts.model,
		Messages: []message{{
			Role:    "user",
			Content: "Detect the language of this text and call the detect_language function with the appropriate language code: " + sample(text),
		}},
		MaxTokens:   100,
		Temperature: 0,
		Tools:       []tool{detectLanguageTool},
		ToolChoice: map[string]any{
			"type":     "function",
			"function": map[string]string{"name": detectLanguageTool.Function.Name},
		},
	}

	resp, err := c.post(ctx, req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var result completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("%w: failed to decode response: %w", ErrBackend, err)
	}

	if len(result.Choices) == 0 || len(result.Choices[0].Message.ToolCalls) == 0 {
		return "", fmt.Errorf("%w: no language classification returned", ErrBackend)
	}

	var args struct {
		Language string `json:"language"`
	}
	if err := json.Unmarshal([]byte(result.Choices[0].Message.ToolCalls[0].Function.Arguments), &args); err != nil {
		return "", fmt.Errorf("%w: failed to parse classification: %w", ErrBackend, err)
	}
	if args.Language == "" {
		return "", fmt.Errorf("%w: empty language classification", ErrBackend)
	}

	return args.Language, nil
}

// FallbackLanguage guesses "de" when German-specific letters appear, "en" otherwise
func FallbackLanguage(text string) string {
	if strings.ContainsAny(text, "äöüßÄÖÜ") {
		return "de"
	}
	return "en"
}

// Detector wraps remote detection with a cache and the local fallback
type Detector struct {
	cache  *lru.Cache[string, string]
	logger *slog.Logger
}

// NewDetector creates a language detector with a bounded result cache
func NewDetector() (*Detector, error) {
	cache, err := lru.New[string, string](detectCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create language cache: %w", err)
	}
	return &Detector{
		cache:  cache,
		logger: slog.Default().With("component", "langdetect"),
	}, nil
}

// Detect returns the language of text. When p is nil or the remote call errors the
// local fallback decides; only auth failures are returned, alongside the fallback.
func (d *Detector) Detect(ctx context.Context, p Provider, text string) (string, error) {
	key := sample(text)
	if lang, ok := d.cache.Get(key); ok {
		return lang, nil
	}

	if p == nil {
		return FallbackLanguage(text), nil
	}

	lang, err := p.DetectLanguage(ctx, text)
	if err != nil {
		fallback := FallbackLanguage(text)
		d.logger.Warn("Remote language detection failed, using fallback", "error", err, "language", fallback)
		if IsAuthError(err) {
			return fallback, err
		}
		return fallback, nil
	}

	d.cache.Add(key, lang)
	return lang, nil
}

func sample(text string) string {
	text = strings.TrimSpace(text)
	r := []rune(text)
	if len(r) > detectSampleRunes {
		return string(r[:detectSampleRunes])
	}
	return text
}

package translate

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

type clientOptions struct {
	name           string
	url            string
	authHeader     string
	authValue      string
	model          string
	style          string
	maxChunkTokens int
}

// Client implements Provider over an OpenAI-compatible chat completions endpoint
type Client struct {
	opts   clientOptions
	client *http.Client
	logger *slog.Logger
}

func newClient(opts clientOptions) *Client {
	if opts.maxChunkTokens <= 0 {
		opts.maxChunkTokens = defaultMaxChunkTokens
	}
	return &Client{
		opts: opts,
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
		logger: slog.Default().With("component", "translate", "provider", opts.name),
	}
}

// Name returns the provider name
func (c *Client) Name() string {
	return c.opts.name
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model,omitempty"`
	Messages    []message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
	Stream      bool      `json:"stream,omitempty"`
	Tools       []tool    `json:"tools,omitempty"`
	ToolChoice  any       `json:"tool_choice,omitempty"`
}

type streamResponse struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// Translate translates text paragraph chunk by paragraph chunk, streaming the output
func (c *Client) Translate(ctx context.Context, text, sourceLang, targetLang string, h Handler) (string, error) {
	system := translatePrompt(sourceLang, targetLang, c.opts.style)
	return c.runChunked(ctx, text, system, h)
}

// Correct fixes grammar and spelling without changing meaning or tone
func (c *Client) Correct(ctx context.Context, text, language string, h Handler) (string, error) {
	system := correctPrompt(language)
	return c.runChunked(ctx, text, system, h)
}

// CorrectWithInstruction rewrites text following a free-form instruction.
// The text is sent whole so the instruction applies to all of it.
func (c *Client) CorrectWithInstruction(ctx context.Context, text, language, instruction string, h Handler) (string, error) {
	system := instructionPrompt(language, instruction, c.opts.style)
	out, err := c.stream(ctx, system, text, h)
	if err != nil {
		return "", err
	}
	h.progress(100)
	return out, nil
}

func (c *Client) runChunked(ctx context.Context, text, system string, h Handler) (string, error) {
	chunks := ChunkByParagraphs(text, c.opts.maxChunkTokens)
	if len(chunks) > 1 {
		c.logger.Info("Splitting long text", "chunks", len(chunks), "tokens", EstimateTokens(text))
	}

	results := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		if i > 0 {
			h.chunk(paragraphSeparator)
		}
		out, err := c.stream(ctx, system, chunk, h)
		if err != nil {
			return "", err
		}
		results = append(results, out)
		h.progress((i + 1) * 100 / len(chunks))
	}

	return strings.Join(results, paragraphSeparator), nil
}

// stream sends one chat request and accumulates the streamed content
func (c *Client) stream(ctx context.Context, system, user string, h Handler) (string, error) {
	req := chatRequest{
		Model: c.opts.model,
		Messages: []message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		MaxTokens:   4000,
		Temperature: 0.3,
		Stream:      true,
	}

	resp, err := c.post(ctx, req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var out strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		data, ok := strings.CutPrefix(line, "data:")
		if !ok {
			continue
		}
		data = strings.TrimSpace(data)
		if data == "[DONE]" {
			break
		}

		var parsed streamResponse
		if err := json.Unmarshal([]byte(data), &parsed); err != nil {
			c.logger.Debug("Skipping unparsable stream line", "error", err)
			continue
		}
		if len(parsed.Choices) == 0 {
			continue
		}

		delta := parsed.Choices[0].Delta.Content
		if delta == "" {
			continue
		}
		out.WriteString(delta)
		h.chunk(delta)
	}

	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("%w: reading stream: %w", ErrBackend, err)
	}

	if out.Len() == 0 {
		return "", fmt.Errorf("%w: empty response from %s", ErrBackend, c.opts.name)
	}

	return strings.TrimSpace(out.String()), nil
}

// post sends req and returns the response if the status is 200
func (c *Client) post(ctx context.Context, req chatRequest) (*http.Response, error) {
	jsonData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.opts.url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %w", ErrCredentialsInvalid, err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set(c.opts.authHeader, c.opts.authValue)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to call %s API: %w", ErrBackend, c.opts.name, err)
	}

	if resp.StatusCode == http.StatusOK {
		return resp, nil
	}

	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, fmt.Errorf("%w: %s API returned status %d: %s", ErrCredentialsInvalid, c.opts.name, resp.StatusCode, strings.TrimSpace(string(body)))
	default:
		return nil, fmt.Errorf("%w: %s API returned status %d: %s", ErrBackend, c.opts.name, resp.StatusCode, strings.TrimSpace(string(body)))
	}
}

package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"markestedt/langra/config"
)

// sseServer streams the given deltas for every chat request and records request bodies
type sseServer struct {
	mu       sync.Mutex
	requests []chatRequest
	headers  []http.Header
	paths    []string
	status   int
	deltas   []string
}

func (s *sseServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	var req chatRequest
	_ = json.Unmarshal(body, &req)

	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.headers = append(s.headers, r.Header.Clone())
	s.paths = append(s.paths, r.URL.RequestURI())
	status, deltas := s.status, s.deltas
	s.mu.Unlock()

	if status != 0 && status != http.StatusOK {
		http.Error(w, `{"error":{"message":"Incorrect API key provided"}}`, status)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	fmt.Fprint(w, "data: {\"choices\":[]}\n\n")
	for _, d := range deltas {
		b, _ := json.Marshal(map[string]any{
			"choices": []any{map[string]any{"delta": map[string]string{"content": d}}},
		})
		fmt.Fprintf(w, "data: %s\n\n", b)
	}
	fmt.Fprint(w, "data: [DONE]\n\n")
}

func newOpenAITest(t *testing.T, s *sseServer) *Client {
	t.Helper()
	srv := httptest.NewServer(s)
	t.Cleanup(srv.Close)
	return NewOpenAIProvider(srv.URL+"/v1", "sk-test", "gpt-4o-mini", "friendly", 0)
}

func TestTranslate_StreamsChunks(t *testing.T) {
	s := &sseServer{deltas: []string{"Hello", " world"}}
	c := newOpenAITest(t, s)

	var chunks []string
	var progress []int
	out, err := c.Translate(context.Background(), "Hallo Welt", "de", "en", Handler{
		OnChunk:    func(text string) { chunks = append(chunks, text) },
		OnProgress: func(p int) { progress = append(progress, p) },
	})
	require.NoError(t, err)

	assert.Equal(t, "Hello world", out)
	assert.Equal(t, []string{"Hello", " world"}, chunks)
	assert.Equal(t, []int{100}, progress)

	require.Len(t, s.requests, 1)
	req := s.requests[0]
	assert.True(t, req.Stream)
	assert.Equal(t, "gpt-4o-mini", req.Model)
	assert.Contains(t, req.Messages[0].Content, "German")
	assert.Contains(t, req.Messages[0].Content, "English")
	assert.Contains(t, req.Messages[0].Content, "friendly")
	assert.Equal(t, "Hallo Welt", req.Messages[1].Content)
	assert.Equal(t, "Bearer sk-test", s.headers[0].Get("Authorization"))
	assert.Equal(t, "/v1/chat/completions", s.paths[0])
}

func TestTranslate_LongTextIsChunked(t *testing.T) {
	s := &sseServer{deltas: []string{"x"}}
	srv := httptest.NewServer(s)
	defer srv.Close()
	c := NewOpenAIProvider(srv.URL, "sk-test", "", "", 5)

	text := strings.Repeat("a", 16) + "\n\n" + strings.Repeat("b", 16) + "\n\n" + strings.Repeat("c", 16)

	var progress []int
	var chunks []string
	out, err := c.Translate(context.Background(), text, "en", "de", Handler{
		OnChunk:    func(text string) { chunks = append(chunks, text) },
		OnProgress: func(p int) { progress = append(progress, p) },
	})
	require.NoError(t, err)

	assert.Len(t, s.requests, 3)
	assert.Equal(t, []int{33, 66, 100}, progress)
	assert.Equal(t, "x\n\nx\n\nx", out)
	assert.Equal(t, out, strings.Join(chunks, ""))
}

func TestCorrect_UsesProofreadingPrompt(t *testing.T) {
	s := &sseServer{deltas: []string{"This is correct."}}
	c := newOpenAITest(t, s)

	out, err := c.Correct(context.Background(), "This are correct.", "en", Handler{})
	require.NoError(t, err)
	assert.Equal(t, "This is correct.", out)
	assert.Contains(t, s.requests[0].Messages[0].Content, "grammar and spelling")
}

func TestCorrectWithInstruction_IncludesInstruction(t *testing.T) {
	s := &sseServer{deltas: []string{"Dear team,"}}
	c := newOpenAITest(t, s)

	var progress []int
	_, err := c.CorrectWithInstruction(context.Background(), "hey guys", "en", "make it formal", Handler{
		OnProgress: func(p int) { progress = append(progress, p) },
	})
	require.NoError(t, err)
	assert.Contains(t, s.requests[0].Messages[0].Content, "make it formal")
	assert.Equal(t, []int{100}, progress)
}

func TestStream_UnauthorizedIsCredentialsInvalid(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			s := &sseServer{status: status}
			c := newOpenAITest(t, s)

			_, err := c.Translate(context.Background(), "text", "en", "de", Handler{})
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrCredentialsInvalid)
			assert.True(t, IsAuthError(err))
		})
	}
}

func TestStream_ServerErrorIsBackend(t *testing.T) {
	s := &sseServer{status: http.StatusInternalServerError}
	c := newOpenAITest(t, s)

	_, err := c.Translate(context.Background(), "text", "en", "de", Handler{})
	assert.ErrorIs(t, err, ErrBackend)
	assert.False(t, IsAuthError(err))
}

func TestStream_EmptyResponseIsBackend(t *testing.T) {
	s := &sseServer{}
	c := newOpenAITest(t, s)

	_, err := c.Translate(context.Background(), "text", "en", "de", Handler{})
	assert.ErrorIs(t, err, ErrBackend)
}

func TestAzureProvider_URLAndHeader(t *testing.T) {
	s := &sseServer{deltas: []string{"ok"}}
	srv := httptest.NewServer(s)
	defer srv.Close()

	c, err := NewAzureProvider(srv.URL+"/", "my-deploy", "", "azure-key", "", 0)
	require.NoError(t, err)

	_, err = c.Correct(context.Background(), "text", "en", Handler{})
	require.NoError(t, err)

	assert.Equal(t, "/openai/deployments/my-deploy/chat/completions?api-version=2025-01-01-preview", s.paths[0])
	assert.Equal(t, "azure-key", s.headers[0].Get("api-key"))
	assert.Empty(t, s.headers[0].Get("Authorization"))
	assert.Empty(t, s.requests[0].Model)
}

func TestNewProvider(t *testing.T) {
	cfg := config.Default().Translation

	_, err := NewProvider(cfg, "")
	assert.ErrorIs(t, err, ErrCredentialsMissing)

	_, err = NewProvider(cfg, "key")
	assert.ErrorIs(t, err, ErrCredentialsMissing, "azure without endpoint")

	cfg.AzureEndpoint = "not a url"
	_, err = NewProvider(cfg, "key")
	assert.ErrorIs(t, err, ErrCredentialsInvalid)

	cfg.AzureEndpoint = "https://example.openai.azure.com"
	p, err := NewProvider(cfg, "key")
	require.NoError(t, err)
	assert.Equal(t, config.ProviderAzure, p.Name())

	cfg.Provider = config.ProviderOpenAI
	p, err = NewProvider(cfg, "key")
	require.NoError(t, err)
	assert.Equal(t, config.ProviderOpenAI, p.Name())
}

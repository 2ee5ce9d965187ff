package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func detectServer(t *testing.T, lang string, status int, calls *atomic.Int32) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.False(t, req.Stream)
		require.Len(t, req.Tools, 1)
		assert.Equal(t, "detect_language", req.Tools[0].Function.Name)

		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		args := fmt.Sprintf(`{\"language\":\"%s\"}`, lang)
		fmt.Fprintf(w, `{"choices":[{"message":{"tool_calls":[{"function":{"name":"detect_language","arguments":"%s"}}]}}]}`, args)
	}))
	t.Cleanup(srv.Close)
	return NewOpenAIProvider(srv.URL, "sk-test", "", "", 0)
}

func TestFallbackLanguage(t *testing.T) {
	assert.Equal(t, "de", FallbackLanguage("Schöne Grüße"))
	assert.Equal(t, "de", FallbackLanguage("Straße"))
	assert.Equal(t, "en", FallbackLanguage("Hallo Welt"))
	assert.Equal(t, "en", FallbackLanguage("Hello"))
}

func TestDetector_RemoteAndCache(t *testing.T) {
	var calls atomic.Int32
	c := detectServer(t, "de", http.StatusOK, &calls)
	d, err := NewDetector()
	require.NoError(t, err)

	lang, err := d.Detect(context.Background(), c, "Hallo Welt")
	require.NoError(t, err)
	assert.Equal(t, "de", lang)

	lang, err = d.Detect(context.Background(), c, "Hallo Welt")
	require.NoError(t, err)
	assert.Equal(t, "de", lang)
	assert.Equal(t, int32(1), calls.Load())
}

func TestDetector_FallsBackOnBackendError(t *testing.T) {
	var calls atomic.Int32
	c := detectServer(t, "", http.StatusInternalServerError, &calls)
	d, err := NewDetector()
	require.NoError(t, err)

	lang, err := d.Detect(context.Background(), c, "Grüße")
	require.NoError(t, err)
	assert.Equal(t, "de", lang)
}

func TestDetector_ReportsAuthFailure(t *testing.T) {
	var calls atomic.Int32
	c := detectServer(t, "", http.StatusUnauthorized, &calls)
	d, err := NewDetector()
	require.NoError(t, err)

	lang, err := d.Detect(context.Background(), c, "Hello")
	assert.ErrorIs(t, err, ErrCredentialsInvalid)
	assert.Equal(t, "en", lang)
}

func TestDetector_NilProviderUsesFallback(t *testing.T) {
	d, err := NewDetector()
	require.NoError(t, err)

	lang, err := d.Detect(context.Background(), nil, "Hello")
	require.NoError(t, err)
	assert.Equal(t, "en", lang)
}

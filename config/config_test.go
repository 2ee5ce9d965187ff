package config

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestLoadFrom_CreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, ProviderAzure, cfg.Translation.Provider)
	assert.Equal(t, "friendly", cfg.Translation.Style)
	assert.Equal(t, 500*time.Millisecond, cfg.Hotkey.DebounceWindow())
	assert.Equal(t, path, cfg.Path())

	_, err = os.Stat(path)
	require.NoError(t, err)
}

func TestLoadFrom_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
log_level = "debug"

[translation]
provider = "openai"
model = "gpt-4o"
style = "formal"

[timing]
after_copy_ms = 250
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, ProviderOpenAI, cfg.Translation.Provider)
	assert.Equal(t, "gpt-4o", cfg.Translation.Model)
	assert.Equal(t, "formal", cfg.Translation.Style)
	assert.Equal(t, 250*time.Millisecond, cfg.Timing.AfterCopy())
	assert.Equal(t, 50*time.Millisecond, cfg.Timing.BeforeCopy())
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
}

func TestLoadFrom_RejectsUnknownProvider(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[translation]\nprovider = \"deepl\"\n"), 0644))

	_, err := LoadFrom(path)
	assert.Error(t, err)
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	cfg.Translation.AzureEndpoint = "https://example.openai.azure.com"
	cfg.Web.Port = 9000
	require.NoError(t, cfg.Save())

	reloaded, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "https://example.openai.azure.com", reloaded.Translation.AzureEndpoint)
	assert.Equal(t, 9000, reloaded.Web.Port)
}

func TestTargetLanguage(t *testing.T) {
	tc := Default().Translation
	assert.Equal(t, "en", tc.TargetLanguage("de"))
	assert.Equal(t, "de", tc.TargetLanguage("en"))
	assert.Equal(t, "de", tc.TargetLanguage("other"))
}

func TestCredentials(t *testing.T) {
	keyring.MockInit()
	creds := NewCredentials()

	tc := Default().Translation
	assert.False(t, creds.HasCredentials(tc))

	require.NoError(t, creds.SetAPIKey(ProviderAzure, "secret"))
	assert.False(t, creds.HasCredentials(tc), "azure needs an endpoint too")

	tc.AzureEndpoint = "https://example.openai.azure.com"
	assert.True(t, creds.HasCredentials(tc))

	tc.Provider = ProviderOpenAI
	assert.False(t, creds.HasCredentials(tc))
	require.NoError(t, creds.SetAPIKey(ProviderOpenAI, "sk-test"))
	assert.True(t, creds.HasCredentials(tc))

	require.NoError(t, creds.Clear())
	key, err := creds.APIKey(ProviderOpenAI)
	require.NoError(t, err)
	assert.Empty(t, key)
	assert.False(t, creds.HasCredentials(tc))

	// Clearing twice is not an error
	require.NoError(t, creds.Clear())
}

func TestWatch_ReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	_, err := LoadFrom(path)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan *Config, 4)
	require.NoError(t, Watch(ctx, path, func(c *Config) { changed <- c }))

	require.NoError(t, os.WriteFile(path, []byte("[hotkey]\ndebounce_ms = 350\n"), 0644))

	select {
	case cfg := <-changed:
		assert.Equal(t, 350, cfg.Hotkey.DebounceMS)
	case <-time.After(5 * time.Second):
		t.Fatal("config change not observed")
	}
}

package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const appDirName = "langra"

// Provider names
const (
	ProviderOpenAI = "openai"
	ProviderAzure  = "azure"
)

type Config struct {
	LogLevel      string              `toml:"log_level"`
	Hotkey        HotkeyConfig        `toml:"hotkey"`
	Translation   TranslationConfig   `toml:"translation"`
	Timing        TimingConfig        `toml:"timing"`
	Web           WebConfig           `toml:"web"`
	Notifications NotificationsConfig `toml:"notifications"`

	path string
}

type HotkeyConfig struct {
	// DebounceMS is the longest gap between the two copy presses of a gesture
	DebounceMS int `toml:"debounce_ms"`
}

type TranslationConfig struct {
	Provider        string `toml:"provider"`
	Model           string `toml:"model"`
	AzureEndpoint   string `toml:"azure_endpoint"`
	AzureDeployment string `toml:"azure_deployment"`
	AzureAPIVersion string `toml:"azure_api_version"`
	Style           string `toml:"style"`
	// Text detected as PrimaryLanguage is translated to SecondaryLanguage, anything else to PrimaryLanguage
	PrimaryLanguage   string `toml:"primary_language"`
	SecondaryLanguage string `toml:"secondary_language"`
	MaxChunkTokens    int    `toml:"max_chunk_tokens"`
	DetectLanguage    bool   `toml:"detect_language"`
}

type TimingConfig struct {
	WindowShowMS  int `toml:"window_show_ms"`
	BeforeCopyMS  int `toml:"before_copy_ms"`
	AfterCopyMS   int `toml:"after_copy_ms"`
	FocusSettleMS int `toml:"focus_settle_ms"`
	BeforePasteMS int `toml:"before_paste_ms"`
}

type WebConfig struct {
	Enabled bool `toml:"enabled"`
	Port    int  `toml:"port"`
}

type NotificationsConfig struct {
	Enabled bool `toml:"enabled"`
}

// Default configuration
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Hotkey: HotkeyConfig{
			DebounceMS: 500,
		},
		Translation: TranslationConfig{
			Provider:          ProviderAzure,
			Model:             "gpt-4o-mini",
			AzureDeployment:   "gpt-4o-mini",
			AzureAPIVersion:   "2025-01-01-preview",
			Style:             "friendly",
			PrimaryLanguage:   "de",
			SecondaryLanguage: "en",
			MaxChunkTokens:    2000,
			DetectLanguage:    true,
		},
		Timing: TimingConfig{
			WindowShowMS:  50,
			BeforeCopyMS:  50,
			AfterCopyMS:   100,
			FocusSettleMS: 100,
			BeforePasteMS: 50,
		},
		Web: WebConfig{
			Enabled: true,
			Port:    7341,
		},
		Notifications: NotificationsConfig{
			Enabled: true,
		},
	}
}

// Dir returns the per-user configuration directory, creating it if needed
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user config directory: %w", err)
	}

	dir := filepath.Join(base, appDirName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return dir, nil
}

// ConfigPath returns the path to the configuration file
func ConfigPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load loads the configuration from the default location
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom loads the configuration from path.
// If the file doesn't exist, it is created with default values.
func LoadFrom(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := Default()
		cfg.path = path
		if err := cfg.Save(); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		return cfg, nil
	}

	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.path = path

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks the values that cannot be defaulted silently
func (c *Config) Validate() error {
	switch c.Translation.Provider {
	case ProviderOpenAI, ProviderAzure:
	default:
		return fmt.Errorf("unknown provider: %s", c.Translation.Provider)
	}

	if c.Hotkey.DebounceMS <= 0 {
		return fmt.Errorf("hotkey.debounce_ms must be positive")
	}

	if c.Translation.PrimaryLanguage == "" || c.Translation.SecondaryLanguage == "" {
		return fmt.Errorf("translation languages must not be empty")
	}

	if c.Web.Enabled && (c.Web.Port <= 0 || c.Web.Port > 65535) {
		return fmt.Errorf("web.port out of range: %d", c.Web.Port)
	}

	return nil
}

// Path returns the file the configuration was loaded from
func (c *Config) Path() string {
	return c.path
}

// Clone returns a copy that can be modified without affecting readers of c
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

// Save writes the configuration back to its file
func (c *Config) Save() error {
	if c.path == "" {
		path, err := ConfigPath()
		if err != nil {
			return err
		}
		c.path = path
	}

	f, err := os.Create(c.path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(c)
}

// SlogLevel maps log_level to a slog level; unknown values mean info
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// DebounceWindow returns the double-press window
func (h HotkeyConfig) DebounceWindow() time.Duration {
	return time.Duration(h.DebounceMS) * time.Millisecond
}

func (t TimingConfig) WindowShow() time.Duration  { return ms(t.WindowShowMS) }
func (t TimingConfig) BeforeCopy() time.Duration  { return ms(t.BeforeCopyMS) }
func (t TimingConfig) AfterCopy() time.Duration   { return ms(t.AfterCopyMS) }
func (t TimingConfig) FocusSettle() time.Duration { return ms(t.FocusSettleMS) }
func (t TimingConfig) BeforePaste() time.Duration { return ms(t.BeforePasteMS) }

func ms(n int) time.Duration {
	if n < 0 {
		return 0
	}
	return time.Duration(n) * time.Millisecond
}

// TargetLanguage returns the language text in source should be translated to
func (t TranslationConfig) TargetLanguage(source string) string {
	if source == t.PrimaryLanguage {
		return t.SecondaryLanguage
	}
	return t.PrimaryLanguage
}

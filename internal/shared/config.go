package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	AI          AIConfig          `toml:"ai"`
	Translation TranslationConfig `toml:"translation"`
	Database    DatabaseConfig    `toml:"database"`
	Server      ServerConfig      `toml:"server"`
	Gateway     GatewayConfig     `toml:"gateway"`
	Identity    IdentityConfig    `toml:"identity"`
}

// AIConfig contains settings for the generation client and the gateway's provider.
type AIConfig struct {
	GatewayURL     string        `toml:"gateway_url"`
	Provider       string        `toml:"provider"`
	Model          string        `toml:"model"`
	APIKey         string        `toml:"api_key"`
	BaseURL        string        `toml:"base_url"`
	TimeoutSeconds int           `toml:"timeout_seconds"`
	Breaker        BreakerConfig `toml:"breaker"`
}

// BreakerConfig controls when the generation client stops calling a failing gateway.
type BreakerConfig struct {
	MaxFailures     int `toml:"max_failures"`
	CooldownSeconds int `toml:"cooldown_seconds"`
}

// TranslationConfig contains translation cache and warm-up settings.
type TranslationConfig struct {
	Language        string  `toml:"language"`
	CacheSize       int     `toml:"cache_size"`
	CacheTTLMinutes int     `toml:"cache_ttl_minutes"`
	WarmWorkers     int     `toml:"warm_workers"`
	WarmRate        float64 `toml:"warm_rate"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains settings for the local OAuth callback server.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// GatewayConfig contains settings for the AI gateway HTTP server.
type GatewayConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
	Path string `toml:"path"`
}

// IdentityConfig contains the OAuth2 identity provider settings.
type IdentityConfig struct {
	ClientID     string   `toml:"client_id"`
	ClientSecret string   `toml:"client_secret"`
	AuthURL      string   `toml:"auth_url"`
	TokenURL     string   `toml:"token_url"`
	UserInfoURL  string   `toml:"userinfo_url"`
	RedirectURI  string   `toml:"redirect_uri"`
	Scopes       []string `toml:"scopes"`
}

// Timeout returns the per-request timeout for generation calls.
func (c AIConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ResolveAPIKey returns the configured provider key, falling back to the environment.
//
// GEMINI_API_KEY or OPENAI_API_KEY is consulted according to the provider, then API_KEY.
func (c AIConfig) ResolveAPIKey() string {
	if c.APIKey != "" {
		return c.APIKey
	}

	var names []string
	switch c.Provider {
	case "openai":
		names = []string{"OPENAI_API_KEY", "API_KEY"}
	default:
		names = []string{"GEMINI_API_KEY", "API_KEY"}
	}

	for _, name := range names {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

// CacheTTL returns the translation cache entry lifetime. Zero means entries never expire.
func (c TranslationConfig) CacheTTL() time.Duration {
	if c.CacheTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(c.CacheTTLMinutes) * time.Minute
}

// Address returns the host:port the gateway listens on.
func (c GatewayConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Configured reports whether enough identity settings are present to run a login flow.
func (c IdentityConfig) Configured() bool {
	return c.ClientID != "" && c.AuthURL != "" && c.TokenURL != ""
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

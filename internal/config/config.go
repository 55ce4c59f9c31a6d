package config

import (
	"encoding/json"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ghostline-dev/ghostline/internal/errors"
	"github.com/ghostline-dev/ghostline/pkg/protocol"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "config.json"

	// EnvToken overrides the stored token when set.
	EnvToken = "GHOSTLINE_TOKEN"

	// DefaultGatewayURL is the gateway websocket endpoint.
	DefaultGatewayURL = "wss://gateway.discord.gg/?v=9&encoding=json"

	// DefaultBackoff is the wait after a session ends.
	DefaultBackoff = "10s"

	// DefaultProbeURL is the address probed before reconnecting.
	DefaultProbeURL = "https://1.1.1.1"

	// DefaultProbeTimeout bounds one probe.
	DefaultProbeTimeout = "5s"

	// DefaultProbeInterval is the wait between failed probes.
	DefaultProbeInterval = "5s"

	// DefaultLogLevel keeps logs quiet so status lines stay readable.
	DefaultLogLevel = "warn"
)

// Config represents the complete ghostline configuration.
type Config struct {
	// Token is the account token used for REST checks and IDENTIFY.
	Token string `json:"token,omitempty"`

	// LastGuildID is the guild of the last joined voice channel.
	LastGuildID string `json:"last_guild_id,omitempty"`

	// LastChannelID is the last joined voice channel.
	LastChannelID string `json:"last_channel_id,omitempty"`

	// Presence is the remembered presence setup, nil if never saved.
	Presence *protocol.PresenceConfig `json:"presence,omitempty"`

	// Gateway contains connection and reconnect settings.
	Gateway GatewayConfig `json:"gateway,omitempty"`

	// Logging contains log output settings.
	Logging LoggingConfig `json:"logging,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// GatewayConfig contains connection and reconnect settings. Durations use
// time.ParseDuration syntax.
type GatewayConfig struct {
	// URL is the gateway websocket endpoint.
	URL string `json:"url,omitempty"`

	// Backoff is the fixed wait after a session ends (e.g., "10s").
	Backoff string `json:"backoff,omitempty"`

	// ProbeURL is fetched to decide whether the network is back.
	ProbeURL string `json:"probe_url,omitempty"`

	// ProbeTimeout bounds one probe request.
	ProbeTimeout string `json:"probe_timeout,omitempty"`

	// ProbeInterval is the wait between failed probes.
	ProbeInterval string `json:"probe_interval,omitempty"`
}

// LoggingConfig contains log output settings.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level,omitempty"`

	// Format is "text" or "json".
	Format string `json:"format,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// DefaultPath returns the config file location under the user config
// directory, or ConfigFileName in the working directory if there is none.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ConfigFileName
	}
	return filepath.Join(dir, "ghostline", ConfigFileName)
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("G302").
				WithDetail("No config file found at " + path).
				Wrap(err)
		}
		return nil, errors.New("G302").Wrap(err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	cfg.configPath = path
	return cfg, nil
}

// Parse decodes a configuration document and fills in defaults.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("G302").
			WithDetail("Failed to parse config: " + err.Error()).
			WithSuggestion("Check that the config file is valid JSON, or delete it to start over")
	}
	cfg.applyDefaults()
	return cfg, nil
}

// Encode returns the indented JSON document for the configuration.
func (c *Config) Encode() ([]byte, error) {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return nil, errors.New("G302").Wrap(err)
	}
	return append(data, '\n'), nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path. The file holds a
// credential, so it is only readable by the owner.
func (c *Config) SaveTo(path string) error {
	data, err := c.Encode()
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return errors.New("G302").Wrap(err)
		}
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return errors.New("G302").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	// Gateway
	if c.Gateway.URL == "" {
		c.Gateway.URL = DefaultGatewayURL
	}
	if c.Gateway.Backoff == "" {
		c.Gateway.Backoff = DefaultBackoff
	}
	if c.Gateway.ProbeURL == "" {
		c.Gateway.ProbeURL = DefaultProbeURL
	}
	if c.Gateway.ProbeTimeout == "" {
		c.Gateway.ProbeTimeout = DefaultProbeTimeout
	}
	if c.Gateway.ProbeInterval == "" {
		c.Gateway.ProbeInterval = DefaultProbeInterval
	}

	// Logging
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}

	// Presence
	if c.Presence != nil && c.Presence.Status == "" {
		c.Presence.Status = protocol.StatusOnline
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Gateway.URL)
	if err != nil || (u.Scheme != "ws" && u.Scheme != "wss") || u.Host == "" {
		return errors.New("G302").
			WithDetail("gateway.url must be a ws:// or wss:// URL, got " + c.Gateway.URL)
	}

	u, err = url.Parse(c.Gateway.ProbeURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New("G302").
			WithDetail("gateway.probe_url must be an http:// or https:// URL, got " + c.Gateway.ProbeURL)
	}

	for name, value := range map[string]string{
		"gateway.backoff":        c.Gateway.Backoff,
		"gateway.probe_timeout":  c.Gateway.ProbeTimeout,
		"gateway.probe_interval": c.Gateway.ProbeInterval,
	} {
		d, err := time.ParseDuration(value)
		if err != nil || d <= 0 {
			return errors.New("G302").
				WithDetail(name + " must be a positive duration such as \"10s\", got " + value)
		}
	}

	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		return errors.New("G302").
			WithDetail("logging.format must be \"text\" or \"json\", got " + c.Logging.Format)
	}

	if c.Presence != nil {
		if err := c.Presence.Validate(); err != nil {
			return errors.New("G303").Wrap(err)
		}
	}
	return nil
}

// EffectiveToken returns the token from the environment if set, otherwise
// the stored token.
func (c *Config) EffectiveToken() string {
	if v := strings.TrimSpace(os.Getenv(EnvToken)); v != "" {
		return v
	}
	return c.Token
}

// TokenFromEnv reports whether the token comes from the environment.
func (c *Config) TokenFromEnv() bool {
	return strings.TrimSpace(os.Getenv(EnvToken)) != ""
}

// HasLastTarget reports whether a previous voice target is remembered.
func (c *Config) HasLastTarget() bool {
	return c.LastGuildID != "" && c.LastChannelID != ""
}

// LastTarget returns the remembered voice target.
func (c *Config) LastTarget() protocol.VoiceTarget {
	return protocol.VoiceTarget{GuildID: c.LastGuildID, ChannelID: c.LastChannelID}
}

// Backoff returns the parsed gateway backoff.
func (c *Config) Backoff() time.Duration {
	return durationOr(c.Gateway.Backoff, 10*time.Second)
}

// ProbeTimeout returns the parsed probe timeout.
func (c *Config) ProbeTimeout() time.Duration {
	return durationOr(c.Gateway.ProbeTimeout, 5*time.Second)
}

// ProbeInterval returns the parsed probe interval.
func (c *Config) ProbeInterval() time.Duration {
	return durationOr(c.Gateway.ProbeInterval, 5*time.Second)
}

func durationOr(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

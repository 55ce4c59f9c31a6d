package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/ghostline-dev/ghostline/pkg/protocol"
)

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.Gateway.URL != DefaultGatewayURL {
		t.Errorf("Gateway.URL = %q, want %q", cfg.Gateway.URL, DefaultGatewayURL)
	}
	if cfg.Gateway.ProbeURL != DefaultProbeURL {
		t.Errorf("Gateway.ProbeURL = %q, want %q", cfg.Gateway.ProbeURL, DefaultProbeURL)
	}
	if cfg.Backoff() != 10*time.Second {
		t.Errorf("Backoff() = %v, want %v", cfg.Backoff(), 10*time.Second)
	}
	if cfg.ProbeTimeout() != 5*time.Second {
		t.Errorf("ProbeTimeout() = %v, want %v", cfg.ProbeTimeout(), 5*time.Second)
	}
	if cfg.ProbeInterval() != 5*time.Second {
		t.Errorf("ProbeInterval() = %v, want %v", cfg.ProbeInterval(), 5*time.Second)
	}
	if cfg.Logging.Level != DefaultLogLevel {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, DefaultLogLevel)
	}
	if cfg.Presence != nil {
		t.Error("Presence should be nil by default")
	}
}

func TestLoadFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, ConfigFileName)

	// Test loading non-existent config
	_, err := LoadFile(configPath)
	if err == nil {
		t.Error("Expected error for missing config")
	}

	configJSON := `{
  "token": "abc",
  "last_guild_id": "111",
  "last_channel_id": "222",
  "presence": {
    "activity_type": 1,
    "activity_name": "Lo-fi"
  },
  "gateway": {
    "backoff": "30s"
  }
}
`
	if err := os.WriteFile(configPath, []byte(configJSON), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile error: %v", err)
	}

	if cfg.Token != "abc" {
		t.Errorf("Token = %q, want %q", cfg.Token, "abc")
	}
	if !cfg.HasLastTarget() {
		t.Error("HasLastTarget should be true")
	}
	if got := cfg.LastTarget(); got != (protocol.VoiceTarget{GuildID: "111", ChannelID: "222"}) {
		t.Errorf("LastTarget() = %+v", got)
	}
	if cfg.Backoff() != 30*time.Second {
		t.Errorf("Backoff() = %v, want %v", cfg.Backoff(), 30*time.Second)
	}
	if cfg.Gateway.ProbeInterval != DefaultProbeInterval {
		t.Errorf("Gateway.ProbeInterval = %q, want %q", cfg.Gateway.ProbeInterval, DefaultProbeInterval)
	}
	if cfg.Presence == nil {
		t.Fatal("Presence should be set")
	}
	if cfg.Presence.Status != protocol.StatusOnline {
		t.Errorf("Presence.Status = %q, want %q", cfg.Presence.Status, protocol.StatusOnline)
	}
	if cfg.Presence.ActivityType == nil || *cfg.Presence.ActivityType != protocol.ActivityStreaming {
		t.Errorf("Presence.ActivityType = %v, want Streaming", cfg.Presence.ActivityType)
	}
	if cfg.Path() != configPath {
		t.Errorf("Path() = %q, want %q", cfg.Path(), configPath)
	}
}

func TestLoadFile_InvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, ConfigFileName)

	if err := os.WriteFile(configPath, []byte("not valid json"), 0600); err != nil {
		t.Fatal(err)
	}

	_, err := LoadFile(configPath)
	if err == nil {
		t.Fatal("Expected error for invalid JSON")
	}
	if !strings.Contains(err.Error(), "G302") {
		t.Errorf("Expected G302 error, got: %v", err)
	}
}

func TestSave(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "nested", ConfigFileName)

	cfg := New()
	cfg.Token = "tok"
	cfg.LastGuildID = "111"

	// Save should fail without configPath set
	if err := cfg.Save(); err == nil {
		t.Error("Expected error when saving without path")
	}

	// SaveTo should work and create the directory
	if err := cfg.SaveTo(configPath); err != nil {
		t.Fatalf("SaveTo error: %v", err)
	}

	if runtime.GOOS != "windows" {
		info, err := os.Stat(configPath)
		if err != nil {
			t.Fatal(err)
		}
		if perm := info.Mode().Perm(); perm != 0600 {
			t.Errorf("file mode = %o, want 600", perm)
		}
	}

	loaded, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if loaded.Token != "tok" {
		t.Errorf("Token = %q, want %q", loaded.Token, "tok")
	}

	// Now Save should work
	loaded.LastChannelID = "222"
	if err := loaded.Save(); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	reloaded, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if reloaded.LastChannelID != "222" {
		t.Errorf("LastChannelID = %q, want %q", reloaded.LastChannelID, "222")
	}
}

func TestSave_IndentedJSON(t *testing.T) {
	cfg := New()
	cfg.Token = "tok"

	data, err := cfg.Encode()
	if err != nil {
		t.Fatal(err)
	}
	s := string(data)
	if !strings.HasPrefix(s, "{\n  \"token\": \"tok\",") {
		t.Errorf("Encode() not indented: %s", s)
	}
	if !strings.HasSuffix(s, "}\n") {
		t.Error("Encode() should end with a newline")
	}
	if strings.Contains(s, "presence") {
		t.Error("nil presence should be omitted")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"defaults", func(c *Config) {}, ""},
		{"http gateway", func(c *Config) { c.Gateway.URL = "https://gateway.discord.gg" }, "G302"},
		{"bad probe url", func(c *Config) { c.Gateway.ProbeURL = "1.1.1.1" }, "G302"},
		{"bad backoff", func(c *Config) { c.Gateway.Backoff = "soon" }, "G302"},
		{"zero interval", func(c *Config) { c.Gateway.ProbeInterval = "0s" }, "G302"},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }, "G302"},
		{"bad status", func(c *Config) { c.Presence = &protocol.PresenceConfig{Status: "away"} }, "G303"},
		{"activity without name", func(c *Config) {
			c.Presence = &protocol.PresenceConfig{ActivityType: protocol.Activity(protocol.ActivityPlaying)}
		}, "G303"},
		{"valid presence", func(c *Config) {
			c.Presence = &protocol.PresenceConfig{Status: protocol.StatusDND, ActivityName: "x", ActivityType: protocol.Activity(protocol.ActivityWatching)}
		}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want %s", err, tt.wantErr)
			}
		})
	}
}

func TestEffectiveToken(t *testing.T) {
	cfg := New()
	cfg.Token = "stored"

	t.Setenv(EnvToken, "")
	if got := cfg.EffectiveToken(); got != "stored" {
		t.Errorf("EffectiveToken() = %q, want %q", got, "stored")
	}
	if cfg.TokenFromEnv() {
		t.Error("TokenFromEnv should be false")
	}

	t.Setenv(EnvToken, " from-env ")
	if got := cfg.EffectiveToken(); got != "from-env" {
		t.Errorf("EffectiveToken() = %q, want %q", got, "from-env")
	}
	if !cfg.TokenFromEnv() {
		t.Error("TokenFromEnv should be true")
	}
	if cfg.Token != "stored" {
		t.Error("EffectiveToken must not overwrite the stored token")
	}
}

func TestDefaultPath(t *testing.T) {
	p := DefaultPath()
	if filepath.Base(p) != ConfigFileName {
		t.Errorf("DefaultPath() = %q, want base %q", p, ConfigFileName)
	}
}

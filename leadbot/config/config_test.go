package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

const minimalYAML = `
telegram:
  token: "123:abc"
  admin_id: 407721399
locale: en
leads:
  backends: [sheets]
sheets:
  spreadsheet_id: sheet-1
  credentials_file: creds.json
session:
  idle_ttl: 24h
answer:
  timeout: 5s
announce:
  channel_id: "@studio"
  text: "We build bots"
`

func TestLoadMinimal(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, "123:abc", cfg.Telegram.Token)
	assert.Equal(t, int64(407721399), cfg.CoreConfig().Telegram.AdminID)
	assert.Equal(t, "longpoll", cfg.Telegram.RunMode)
	assert.Equal(t, "en", cfg.Locale)
	assert.Equal(t, []string{"sheets"}, cfg.Leads.Backends)
	assert.Equal(t, "A1", cfg.Sheets.Range)
	assert.Equal(t, 24*time.Hour, cfg.Session.IdleTTL)
	assert.Equal(t, 10_000, cfg.Session.MaxUsers)
	assert.Equal(t, cfg.Session.MaxUsers, cfg.RateLimit.MaxUsers)
	assert.Equal(t, 5*time.Second, cfg.Answer.Timeout)
	assert.True(t, cfg.Announce.Pin)
	assert.False(t, cfg.Dialog.RejectBlank)
	assert.True(t, cfg.UsesBackend("sheets"))
	assert.False(t, cfg.UsesBackend("postgres"))
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("BOT_TOKEN", "999:env")
	t.Setenv("DIALOG_REJECT_BLANK", "true")
	t.Setenv("SESSION_MAX_USERS", "50")

	cfg, err := Load(writeConfig(t, minimalYAML))
	require.NoError(t, err)
	assert.Equal(t, "999:env", cfg.Telegram.Token)
	assert.True(t, cfg.Dialog.RejectBlank)
	assert.Equal(t, 50, cfg.Session.MaxUsers)
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]func(*Config){
		"unknown locale":  func(c *Config) { c.Locale = "de" },
		"unknown backend": func(c *Config) { c.Leads.Backends = []string{"mongo"} },
		"no backends":     func(c *Config) { c.Leads.Backends = nil },
		"zero max users":  func(c *Config) { c.Session.MaxUsers = 0 },
		"sheets missing":  func(c *Config) { c.Leads.Backends = []string{"sheets"} },
		"db missing":      func(c *Config) { c.Database.Host = "" },
		"announce text":   func(c *Config) { c.Announce.ChannelID = "@studio" },
		"bad answer url":  func(c *Config) { c.Answer.BaseURL = "::not a url" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := validConfig()
			mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidateSkipsUnusedBackends(t *testing.T) {
	cfg := validConfig()
	cfg.Sheets = SheetsConfig{}
	require.NoError(t, cfg.Validate())

	cfg.Leads.Backends = []string{"sheets"}
	cfg.Database = Defaults().Database
	cfg.Sheets = SheetsConfig{SpreadsheetID: "s", CredentialsFile: "c.json"}
	require.NoError(t, cfg.Validate())
}

func validConfig() Config {
	cfg := Defaults()
	cfg.Telegram.Token = "1:a"
	cfg.Database.Host = "localhost"
	cfg.Database.User = "leadbot"
	cfg.Database.Name = "leadbot"
	return cfg
}

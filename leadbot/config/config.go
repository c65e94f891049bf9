// Package config loads the leadbot configuration: the shared core sections
// plus the lead collection settings.
package config

import (
	"fmt"
	"slices"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	coreconfig "github.com/m3rciful/leadbot/core/config"
	coredatabase "github.com/m3rciful/leadbot/core/database"
	"github.com/m3rciful/leadbot/leadbot/leads"
	"github.com/m3rciful/leadbot/leadbot/texts"
)

// BotConfig holds presentation settings.
type BotConfig struct {
	Brand      string `yaml:"brand" envconfig:"BOT_BRAND"`
	ContactURL string `yaml:"contact_url" envconfig:"BOT_CONTACT_URL"`
}

// DialogConfig tunes the state machine.
type DialogConfig struct {
	RejectBlank bool `yaml:"reject_blank" envconfig:"DIALOG_REJECT_BLANK"`
}

// SessionConfig bounds the in-memory session store.
type SessionConfig struct {
	MaxUsers int           `yaml:"max_users" envconfig:"SESSION_MAX_USERS"`
	IdleTTL  time.Duration `yaml:"idle_ttl" envconfig:"SESSION_IDLE_TTL"`
}

// LeadsConfig selects the lead backends, written in the listed order.
type LeadsConfig struct {
	Backends []string `yaml:"backends" envconfig:"LEADS_BACKENDS"`
}

// SheetsConfig locates the Google spreadsheet.
type SheetsConfig struct {
	SpreadsheetID   string `yaml:"spreadsheet_id" envconfig:"SHEETS_SPREADSHEET_ID"`
	Range           string `yaml:"range" envconfig:"SHEETS_RANGE"`
	CredentialsFile string `yaml:"credentials_file" envconfig:"SHEETS_CREDENTIALS_FILE"`
}

// AnswerConfig configures the question answering service. An empty APIKey disables it.
type AnswerConfig struct {
	BaseURL      string        `yaml:"base_url" envconfig:"ANSWER_BASE_URL"`
	APIKey       string        `yaml:"api_key" envconfig:"ANSWER_API_KEY"`
	Model        string        `yaml:"model" envconfig:"ANSWER_MODEL"`
	Timeout      time.Duration `yaml:"timeout" envconfig:"ANSWER_TIMEOUT"`
	SystemPrompt string        `yaml:"system_prompt"`
}

// AnnounceConfig describes the operator's channel announcement.
// ChannelID is either a numeric chat id or an @channel username; empty disables /publish.
type AnnounceConfig struct {
	ChannelID string `yaml:"channel_id" envconfig:"ANNOUNCE_CHANNEL_ID"`
	Text      string `yaml:"text"`
	Pin       bool   `yaml:"pin"`
}

// SenderConfig tunes the outbound Telegram dispatcher.
type SenderConfig struct {
	QueueSize    int           `yaml:"queue_size"`
	Workers      int           `yaml:"workers"`
	MaxRetries   int           `yaml:"max_retries"`
	RetryBackoff time.Duration `yaml:"retry_backoff"`
}

// Config is the full application configuration.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Bot      BotConfig           `yaml:"bot"`
	Locale   string              `yaml:"locale" envconfig:"LOCALE"`
	Dialog   DialogConfig        `yaml:"dialog"`
	Session  SessionConfig       `yaml:"session"`
	Leads    LeadsConfig         `yaml:"leads"`
	Database coredatabase.Config `yaml:"database"`
	Sheets   SheetsConfig        `yaml:"sheets"`
	Answer   AnswerConfig        `yaml:"answer"`
	Announce AnnounceConfig      `yaml:"announce"`
	Sender   SenderConfig        `yaml:"sender"`
}

// CoreConfig exposes the embedded core configuration.
func (c *Config) CoreConfig() *coreconfig.Config {
	return &c.Config
}

// Defaults returns a configuration with every optional field filled in.
func Defaults() Config {
	return Config{
		Bot:     BotConfig{Brand: "LeadBot"},
		Locale:  texts.DefaultLocale,
		Session: SessionConfig{MaxUsers: 10_000},
		Leads:   LeadsConfig{Backends: []string{leads.BackendPostgres}},
		Database: coredatabase.Config{
			Port:           "5432",
			MaxConnections: 5,
		},
		Sheets:   SheetsConfig{Range: "A1"},
		Answer:   AnswerConfig{Timeout: 20 * time.Second},
		Announce: AnnounceConfig{Pin: true},
		Sender: SenderConfig{
			QueueSize:    256,
			Workers:      4,
			MaxRetries:   2,
			RetryBackoff: 2 * time.Second,
		},
	}
}

// Load reads YAML and environment overrides on top of Defaults, then validates.
func Load(path string) (*Config, error) {
	cfg := Defaults()
	if err := coreconfig.Decode(path, &cfg); err != nil {
		return nil, err
	}
	if err := coreconfig.Normalize(&cfg.Config); err != nil {
		return nil, err
	}
	if cfg.RateLimit.MaxUsers == 0 {
		cfg.RateLimit.MaxUsers = cfg.Session.MaxUsers
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// UsesBackend reports whether name is among the configured lead backends.
func (c *Config) UsesBackend(name string) bool {
	return slices.Contains(c.Leads.Backends, name)
}

// Validate checks the leadbot sections.
func (c *Config) Validate() error {
	usesDB := c.UsesBackend(leads.BackendPostgres)
	usesSheets := c.UsesBackend(leads.BackendSheets)

	locales := make([]any, 0)
	for _, l := range texts.Locales() {
		locales = append(locales, l)
	}

	return validation.ValidateStruct(c,
		validation.Field(&c.Locale, validation.Required, validation.In(locales...)),
		validation.Field(&c.Bot),
		validation.Field(&c.Session),
		validation.Field(&c.Leads),
		validation.Field(&c.Database,
			validation.Skip.When(!usesDB),
			validation.By(func(any) error { return validateDatabase(c.Database) }),
		),
		validation.Field(&c.Sheets, validation.Skip.When(!usesSheets)),
		validation.Field(&c.Answer),
		validation.Field(&c.Announce),
		validation.Field(&c.Sender),
	)
}

// Validate implements validation.Validatable.
func (b BotConfig) Validate() error {
	return validation.ValidateStruct(&b,
		validation.Field(&b.ContactURL, is.URL),
	)
}

// Validate implements validation.Validatable.
func (s SessionConfig) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.MaxUsers, validation.Required, validation.Min(1)),
		validation.Field(&s.IdleTTL, validation.Min(time.Duration(0))),
	)
}

// Validate implements validation.Validatable.
func (l LeadsConfig) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.Backends,
			validation.Required,
			validation.Each(validation.In(leads.BackendPostgres, leads.BackendSheets)),
		),
	)
}

// Validate implements validation.Validatable. Config.Validate skips it unless
// the sheets backend is enabled.
func (s SheetsConfig) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.SpreadsheetID, validation.Required),
		validation.Field(&s.CredentialsFile, validation.Required),
	)
}

// Validate implements validation.Validatable.
func (a AnswerConfig) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.BaseURL, is.URL),
		validation.Field(&a.Timeout, validation.Min(time.Duration(0))),
	)
}

// Validate implements validation.Validatable.
func (a AnnounceConfig) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.Text, validation.Required.When(a.ChannelID != "")),
	)
}

// Validate implements validation.Validatable.
func (s SenderConfig) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.QueueSize, validation.Min(0)),
		validation.Field(&s.Workers, validation.Min(0)),
		validation.Field(&s.MaxRetries, validation.Min(0)),
		validation.Field(&s.RetryBackoff, validation.Min(time.Duration(0))),
	)
}

func validateDatabase(db coredatabase.Config) error {
	return validation.ValidateStruct(&db,
		validation.Field(&db.Host, validation.Required),
		validation.Field(&db.Port, validation.Required, is.Port),
		validation.Field(&db.User, validation.Required),
		validation.Field(&db.Name, validation.Required),
		validation.Field(&db.MaxConnections, validation.Min(0)),
	)
}

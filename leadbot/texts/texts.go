// Package texts holds the user-facing message catalogs.
//
// Catalogs are YAML files embedded at build time; values are text/template
// sources rendered against a per-message data value.
package texts

import (
	"bytes"
	"embed"
	"fmt"
	"sort"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

// Key names one catalog message.
type Key string

const (
	Welcome         Key = "welcome"
	Help            Key = "help"
	Services        Key = "services"
	Portfolio       Key = "portfolio"
	OrderInfo       Key = "order_info"
	PromptName      Key = "prompt_name"
	PromptProject   Key = "prompt_project"
	PromptBudget    Key = "prompt_budget"
	EmptyInput      Key = "empty_input"
	LeadSaved       Key = "lead_saved"
	LeadFailed      Key = "lead_failed"
	Cancelled       Key = "cancelled"
	NothingToCancel Key = "nothing_to_cancel"
	NotUnderstood   Key = "not_understood"
	MenuHint        Key = "menu_hint"
	AskPrompt       Key = "ask_prompt"
	AnswerFailed    Key = "answer_failed"
	PublishDone     Key = "publish_done"
	PublishFailed   Key = "publish_failed"
	PublishDenied   Key = "publish_denied"
	RateLimited     Key = "rate_limited"
	OperatorLead    Key = "operator_lead"

	BtnServices  Key = "btn_services"
	BtnPortfolio Key = "btn_portfolio"
	BtnForm      Key = "btn_form"
	BtnOrder     Key = "btn_order"
	BtnAsk       Key = "btn_ask"
	BtnContact   Key = "btn_contact"
	BtnCancel    Key = "btn_cancel"
	BtnMenu      Key = "btn_menu"
	BtnAnnounce  Key = "btn_announce"
)

// Keys lists every key a catalog must define.
func Keys() []Key {
	return []Key{
		Welcome, Help, Services, Portfolio, OrderInfo, PromptName, PromptProject, PromptBudget,
		EmptyInput, LeadSaved, LeadFailed, Cancelled, NothingToCancel, NotUnderstood, MenuHint,
		AskPrompt, AnswerFailed, PublishDone, PublishFailed, PublishDenied, RateLimited, OperatorLead,
		BtnServices, BtnPortfolio, BtnForm, BtnOrder, BtnAsk, BtnContact, BtnCancel, BtnMenu, BtnAnnounce,
	}
}

//go:embed locales/*.yaml
var localeFS embed.FS

// DefaultLocale is used when the configured locale is empty.
const DefaultLocale = "ru"

// Catalog renders messages for one locale.
type Catalog struct {
	locale string
	brand  string
	tmpl   map[Key]*template.Template
}

// Locales returns the embedded locale names.
func Locales() []string {
	entries, _ := localeFS.ReadDir("locales")
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	sort.Strings(out)
	return out
}

// Load parses the catalog for locale. Brand is available to templates as {{.Brand}}
// when the caller passes no data of its own.
func Load(locale, brand string) (*Catalog, error) {
	if locale == "" {
		locale = DefaultLocale
	}
	raw, err := localeFS.ReadFile("locales/" + locale + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("texts: unknown locale %q", locale)
	}
	var src map[string]string
	if err := yaml.Unmarshal(raw, &src); err != nil {
		return nil, fmt.Errorf("texts: parse %s: %w", locale, err)
	}

	c := &Catalog{locale: locale, brand: brand, tmpl: make(map[Key]*template.Template, len(src))}
	for _, k := range Keys() {
		s, ok := src[string(k)]
		if !ok {
			return nil, fmt.Errorf("texts: %s: missing key %q", locale, k)
		}
		t, err := template.New(string(k)).Option("missingkey=error").Parse(s)
		if err != nil {
			return nil, fmt.Errorf("texts: %s: key %q: %w", locale, k, err)
		}
		c.tmpl[k] = t
	}
	return c, nil
}

// MustLoad is Load for embedded locales known to be valid.
func MustLoad(locale, brand string) *Catalog {
	c, err := Load(locale, brand)
	if err != nil {
		panic(err)
	}
	return c
}

// Locale returns the catalog's locale name.
func (c *Catalog) Locale() string { return c.locale }

// Get renders key with only the brand in scope.
func (c *Catalog) Get(key Key) string {
	out, err := c.Render(key, nil)
	if err != nil {
		return string(key)
	}
	return out
}

// Render executes the template for key. A nil data renders with {Brand}.
func (c *Catalog) Render(key Key, data any) (string, error) {
	t, ok := c.tmpl[key]
	if !ok {
		return "", fmt.Errorf("texts: unknown key %q", key)
	}
	if data == nil {
		data = struct{ Brand string }{Brand: c.brand}
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("texts: render %q: %w", key, err)
	}
	return buf.String(), nil
}

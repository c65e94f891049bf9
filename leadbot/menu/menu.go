// Package menu maps button identifiers and slash commands to menu tokens.
package menu

import (
	"fmt"
	"sort"
	"strings"
)

// Token is a recognized menu action.
type Token string

const (
	Start         Token = "start"
	ShowServices  Token = "show-services"
	ShowPortfolio Token = "show-portfolio"
	StartDialog   Token = "start-dialog"
	ShowOrderInfo Token = "show-order-info"
	AskQuestion   Token = "ask-a-question"
	ReturnToMenu  Token = "return-to-menu"
	Cancel        Token = "cancel"
	Help          Token = "help"
	AdminPublish  Token = "admin-publish"
)

// Tokens lists the closed token set.
func Tokens() []Token {
	return []Token{Start, ShowServices, ShowPortfolio, StartDialog, ShowOrderInfo, AskQuestion, ReturnToMenu, Cancel, Help, AdminPublish}
}

// Kind tells how an input reaches the bot.
type Kind string

const (
	KindCallback Kind = "callback"
	KindCommand  Kind = "command"
)

// Entry binds one input to a token.
type Entry struct {
	Input string
	Kind  Kind
	Token Token
	// Description is shown in the Telegram command menu.
	Description string
	// Hidden commands work but are not advertised.
	Hidden bool
	// AdminOnly commands are restricted to the operator.
	AdminOnly bool
}

// DefaultEntries is the static input table.
var DefaultEntries = []Entry{
	{Input: "services", Kind: KindCallback, Token: ShowServices},
	{Input: "portfolio", Kind: KindCallback, Token: ShowPortfolio},
	{Input: "form", Kind: KindCallback, Token: StartDialog},
	{Input: "order", Kind: KindCallback, Token: ShowOrderInfo},
	{Input: "ask", Kind: KindCallback, Token: AskQuestion},
	{Input: "menu", Kind: KindCallback, Token: ReturnToMenu},
	{Input: "cancel", Kind: KindCallback, Token: Cancel},

	{Input: "/start", Kind: KindCommand, Token: Start, Description: "Main menu"},
	{Input: "/help", Kind: KindCommand, Token: Help, Description: "What this bot can do"},
	{Input: "/menu", Kind: KindCommand, Token: ReturnToMenu, Description: "Back to menu", Hidden: true},
	{Input: "/form", Kind: KindCommand, Token: StartDialog, Description: "Leave a request"},
	{Input: "/ask", Kind: KindCommand, Token: AskQuestion, Description: "Ask a question"},
	{Input: "/cancel", Kind: KindCommand, Token: Cancel, Description: "Cancel the current request"},
	{Input: "/publish", Kind: KindCommand, Token: AdminPublish, Description: "Publish the announcement", AdminOnly: true},
}

// Dispatcher resolves inputs against a table fixed at construction.
type Dispatcher struct {
	entries []Entry
	byInput map[string]Token
}

// NewDispatcher validates the table and builds the lookup index.
func NewDispatcher(entries []Entry) (*Dispatcher, error) {
	d := &Dispatcher{
		entries: make([]Entry, 0, len(entries)),
		byInput: make(map[string]Token, len(entries)),
	}
	known := make(map[Token]struct{})
	for _, t := range Tokens() {
		known[t] = struct{}{}
	}
	for _, e := range entries {
		if _, ok := known[e.Token]; !ok {
			return nil, fmt.Errorf("menu: unknown token %q for input %q", e.Token, e.Input)
		}
		if e.Kind == KindCommand && !strings.HasPrefix(e.Input, "/") {
			return nil, fmt.Errorf("menu: command %q must start with '/'", e.Input)
		}
		key := normalize(e.Input)
		if key == "" {
			return nil, fmt.Errorf("menu: empty input for token %q", e.Token)
		}
		if _, dup := d.byInput[key]; dup {
			return nil, fmt.Errorf("menu: duplicate input %q", e.Input)
		}
		d.byInput[key] = e.Token
		d.entries = append(d.entries, e)
	}
	return d, nil
}

// MustDispatcher is NewDispatcher for static tables; it panics on an invalid table.
func MustDispatcher(entries []Entry) *Dispatcher {
	d, err := NewDispatcher(entries)
	if err != nil {
		panic(err)
	}
	return d
}

// Lookup returns the token for a callback identifier or command text.
func (d *Dispatcher) Lookup(input string) (Token, bool) {
	t, ok := d.byInput[normalize(input)]
	return t, ok
}

// Entries returns a copy of the table sorted by input.
func (d *Dispatcher) Entries() []Entry {
	out := make([]Entry, len(d.entries))
	copy(out, d.entries)
	sort.Slice(out, func(i, j int) bool { return out[i].Input < out[j].Input })
	return out
}

// Commands returns the command entries.
func (d *Dispatcher) Commands() []Entry {
	var out []Entry
	for _, e := range d.Entries() {
		if e.Kind == KindCommand {
			out = append(out, e)
		}
	}
	return out
}

// Callbacks returns the callback entries.
func (d *Dispatcher) Callbacks() []Entry {
	var out []Entry
	for _, e := range d.Entries() {
		if e.Kind == KindCallback {
			out = append(out, e)
		}
	}
	return out
}

// LooksLikeCommand reports whether text is shaped like a slash command.
func LooksLikeCommand(text string) bool {
	text = strings.TrimSpace(text)
	return len(text) > 1 && text[0] == '/' && text[1] != ' '
}

// normalize lowercases the input, keeps only the first word and strips a
// trailing @botname from commands: "/Start@lead_bot payload" -> "/start".
func normalize(input string) string {
	s := strings.TrimSpace(input)
	if !strings.HasPrefix(s, "/") {
		return strings.ToLower(s)
	}
	if i := strings.IndexAny(s, " \t\n"); i >= 0 {
		s = s[:i]
	}
	if i := strings.IndexByte(s, '@'); i >= 0 {
		s = s[:i]
	}
	return strings.ToLower(s)
}

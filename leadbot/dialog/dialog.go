// Package dialog is the per-user lead collection state machine.
//
// Every inbound event goes through Engine.Handle under the user's session lock:
// recognized menu tokens first, then the dialog step the user is at, then
// question mode, and otherwise the menu is restated.
package dialog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m3rciful/leadbot/leadbot/answer"
	"github.com/m3rciful/leadbot/leadbot/leads"
	"github.com/m3rciful/leadbot/leadbot/menu"
	"github.com/m3rciful/leadbot/leadbot/session"
	"github.com/m3rciful/leadbot/leadbot/texts"
)

// ErrNotOperator is returned when a non-operator asks for an operator action.
var ErrNotOperator = errors.New("dialog: caller is not the operator")

// EventKind tells how the input reached the bot.
type EventKind int

const (
	EventText EventKind = iota
	EventCallback
	EventCommand
)

func (k EventKind) String() string {
	switch k {
	case EventCallback:
		return "callback"
	case EventCommand:
		return "command"
	}
	return "text"
}

// Event is one inbound update reduced to what the machine needs.
type Event struct {
	UserID   int64
	Username string
	Kind     EventKind
	// Input is the callback identifier, the command text or the free text.
	Input string
}

// Keyboard selects the markup rendered under a reply.
type Keyboard int

const (
	KeyboardNone Keyboard = iota
	KeyboardMainMenu
	KeyboardCancel
	KeyboardBackToMenu
)

// Reply is what the user sees after an event.
type Reply struct {
	Text     string
	Keyboard Keyboard
}

// SessionStore is the subset of session.Store the machine uses.
type SessionStore interface {
	Get(userID int64) session.Session
	Set(userID int64, sess session.Session)
	Clear(userID int64)
	Lock(userID int64) func()
}

// Notifier tells the operator about a stored lead.
type Notifier interface {
	NotifyLead(ctx context.Context, rec leads.Record) error
}

// Publisher posts the fixed announcement to the broadcast channel.
type Publisher interface {
	Publish(ctx context.Context) error
}

// Deps are the collaborators of the machine. Notifier, Responder and
// Publisher may be nil; the related actions then fail gracefully.
type Deps struct {
	Sessions  SessionStore
	Menu      *menu.Dispatcher
	Sink      leads.Sink
	Notifier  Notifier
	Responder answer.Responder
	Publisher Publisher
	Texts     *texts.Catalog

	OperatorID int64
	// RejectBlank re-prompts the current step on whitespace-only input.
	RejectBlank bool
	Now         func() time.Time
}

// Engine runs the state machine.
type Engine struct {
	d Deps
}

// New validates deps and builds an engine.
func New(d Deps) (*Engine, error) {
	switch {
	case d.Sessions == nil:
		return nil, fmt.Errorf("dialog: nil session store")
	case d.Menu == nil:
		return nil, fmt.Errorf("dialog: nil menu dispatcher")
	case d.Sink == nil:
		return nil, fmt.Errorf("dialog: nil lead sink")
	case d.Texts == nil:
		return nil, fmt.Errorf("dialog: nil text catalog")
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return &Engine{d: d}, nil
}

// IsOperator reports whether userID is the configured operator.
func (e *Engine) IsOperator(userID int64) bool {
	return e.d.OperatorID != 0 && userID == e.d.OperatorID
}

func (e *Engine) authorizePublish(userID int64) error {
	if !e.IsOperator(userID) {
		return ErrNotOperator
	}
	return nil
}

func (e *Engine) reply(key texts.Key, kb Keyboard) Reply {
	return Reply{Text: e.d.Texts.Get(key), Keyboard: kb}
}

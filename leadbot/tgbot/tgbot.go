// Package tgbot adapts the dialog engine to telebot: it turns updates into
// dialog events and renders replies with inline keyboards.
package tgbot

import (
	"context"
	"fmt"

	tele "gopkg.in/telebot.v4"

	tg "github.com/m3rciful/leadbot/core/telegram"
	"github.com/m3rciful/leadbot/core/telegram/callbacks"
	"github.com/m3rciful/leadbot/core/telegram/commands"
	tghelpers "github.com/m3rciful/leadbot/core/telegram/helpers"
	"github.com/m3rciful/leadbot/core/telegram/keyboard"
	"github.com/m3rciful/leadbot/leadbot/dialog"
	"github.com/m3rciful/leadbot/leadbot/menu"
	"github.com/m3rciful/leadbot/leadbot/texts"
)

// DeepLinkForm is the /start payload that opens the request form directly.
const DeepLinkForm = "form"

// Engine is the part of dialog.Engine the adapter drives.
type Engine interface {
	Handle(ctx context.Context, ev dialog.Event) dialog.Reply
}

// Handlers renders dialog replies for telebot updates.
type Handlers struct {
	engine     Engine
	menu       *menu.Dispatcher
	texts      *texts.Catalog
	contactURL string
}

// NewHandlers wires the adapter.
func NewHandlers(engine Engine, dispatcher *menu.Dispatcher, catalog *texts.Catalog, contactURL string) *Handlers {
	return &Handlers{engine: engine, menu: dispatcher, texts: catalog, contactURL: contactURL}
}

// Register binds every dispatcher entry to the registry.
func (h *Handlers) Register(reg *tg.Registry) error {
	for _, e := range h.menu.Commands() {
		err := reg.RegisterCommand(e.Input, commands.Command{
			Handler:     h.OnCommand,
			Description: e.Description,
			AdminOnly:   e.AdminOnly,
			Hidden:      e.Hidden,
		})
		if err != nil {
			return fmt.Errorf("tgbot: %w", err)
		}
	}
	for _, e := range h.menu.Callbacks() {
		if err := reg.RegisterCallback(e.Input, h.OnCallback); err != nil {
			return fmt.Errorf("tgbot: %w", err)
		}
	}
	reg.SetCallbackNotFound(h.OnCallback)
	return nil
}

func eventFor(c tele.Context, kind dialog.EventKind, input string) dialog.Event {
	ev := dialog.Event{Kind: kind, Input: input}
	if u := c.Sender(); u != nil {
		ev.UserID = u.ID
		ev.Username = u.Username
	}
	return ev
}

// OnCommand handles registered slash commands. /start with the form payload
// behaves like pressing the request button.
func (h *Handlers) OnCommand(c tele.Context) error {
	input := c.Text()
	kind := dialog.EventCommand
	if m := c.Message(); m != nil && m.Payload == DeepLinkForm {
		if tok, ok := h.menu.Lookup(input); ok && tok == menu.Start {
			input, kind = DeepLinkForm, dialog.EventCallback
		}
	}
	reply := h.engine.Handle(tghelpers.BuildContext(c), eventFor(c, kind, input))
	return h.send(c, reply)
}

// OnCallback handles inline button presses; the reply replaces the pressed message.
func (h *Handlers) OnCallback(c tele.Context) error {
	key := callbacks.CallbackKey(c)
	reply := h.engine.Handle(tghelpers.BuildContext(c), eventFor(c, dialog.EventCallback, key))
	return tghelpers.EditOrSendText(c, reply.Text, h.markup(reply.Keyboard))
}

// HandleText feeds free text and unregistered commands to the engine.
func (h *Handlers) HandleText(c tele.Context) error {
	reply := h.engine.Handle(tghelpers.BuildContext(c), eventFor(c, dialog.EventText, c.Text()))
	return h.send(c, reply)
}

// OnDocument answers files, which the dialog never expects.
func (h *Handlers) OnDocument(c tele.Context) error {
	return tghelpers.SendText(c, h.texts.Get(texts.MenuHint), h.markup(dialog.KeyboardMainMenu))
}

// OnRateLimited tells the user to slow down.
func (h *Handlers) OnRateLimited(c tele.Context) error {
	msg := h.texts.Get(texts.RateLimited)
	if c.Callback() != nil {
		return c.Respond(&tele.CallbackResponse{Text: msg})
	}
	return tghelpers.SendText(c, msg)
}

func (h *Handlers) send(c tele.Context, reply dialog.Reply) error {
	return tghelpers.SendText(c, reply.Text, h.markup(reply.Keyboard))
}

func (h *Handlers) markup(kb dialog.Keyboard) *tele.ReplyMarkup {
	switch kb {
	case dialog.KeyboardMainMenu:
		return h.mainMenu()
	case dialog.KeyboardCancel:
		return keyboard.SingleButtonMarkup(h.texts.Get(texts.BtnCancel), "cancel")
	case dialog.KeyboardBackToMenu:
		return keyboard.SingleButtonMarkup(h.texts.Get(texts.BtnMenu), "menu")
	}
	return nil
}

func (h *Handlers) mainMenu() *tele.ReplyMarkup {
	rows := [][]keyboard.InlineBtn{
		{{Text: h.texts.Get(texts.BtnServices), Unique: "services"}},
		{{Text: h.texts.Get(texts.BtnPortfolio), Unique: "portfolio"}},
		{{Text: h.texts.Get(texts.BtnForm), Unique: "form"}},
		{{Text: h.texts.Get(texts.BtnOrder), Unique: "order"}},
		{{Text: h.texts.Get(texts.BtnAsk), Unique: "ask"}},
	}
	if h.contactURL != "" {
		rows = append(rows, []keyboard.InlineBtn{{Text: h.texts.Get(texts.BtnContact), URL: h.contactURL}})
	}
	return keyboard.InlineButtonsRows(rows...)
}

package tgbot

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	tg "github.com/m3rciful/leadbot/core/telegram"
	"github.com/m3rciful/leadbot/leadbot/dialog"
	"github.com/m3rciful/leadbot/leadbot/menu"
	"github.com/m3rciful/leadbot/leadbot/texts"
)

type fakeEngine struct {
	mu     sync.Mutex
	events []dialog.Event
	reply  dialog.Reply
}

func (f *fakeEngine) Handle(_ context.Context, ev dialog.Event) dialog.Reply {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	return f.reply
}

func (f *fakeEngine) last(t *testing.T) dialog.Event {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.events)
	return f.events[len(f.events)-1]
}

// recordingContext captures outgoing calls instead of hitting the API.
type recordingContext struct {
	tele.Context
	sent     []any
	edited   []any
	markups  []*tele.ReplyMarkup
	answered int
}

func (r *recordingContext) capture(opts []any) {
	for _, o := range opts {
		if so, ok := o.(*tele.SendOptions); ok {
			r.markups = append(r.markups, so.ReplyMarkup)
		}
	}
}

func (r *recordingContext) Send(what any, opts ...any) error {
	r.sent = append(r.sent, what)
	r.capture(opts)
	return nil
}

func (r *recordingContext) Edit(what any, opts ...any) error {
	r.edited = append(r.edited, what)
	r.capture(opts)
	return nil
}

func (r *recordingContext) Respond(...*tele.CallbackResponse) error {
	r.answered++
	return nil
}

func newContext(t *testing.T, upd tele.Update) *recordingContext {
	t.Helper()
	bot, err := tele.NewBot(tele.Settings{Offline: true})
	require.NoError(t, err)
	return &recordingContext{Context: bot.NewContext(upd)}
}

func messageUpdate(text, payload string) tele.Update {
	user := &tele.User{ID: 7, Username: "client"}
	return tele.Update{ID: 1, Message: &tele.Message{
		Sender:  user,
		Chat:    &tele.Chat{ID: 7, Type: tele.ChatPrivate},
		Text:    text,
		Payload: payload,
	}}
}

func callbackUpdate(unique string) tele.Update {
	user := &tele.User{ID: 7}
	return tele.Update{ID: 2, Callback: &tele.Callback{
		Sender:  user,
		Unique:  unique,
		Message: &tele.Message{ID: 10, Chat: &tele.Chat{ID: 7, Type: tele.ChatPrivate}},
	}}
}

func newHandlers(t *testing.T, contactURL string) (*Handlers, *fakeEngine) {
	t.Helper()
	eng := &fakeEngine{reply: dialog.Reply{Text: "hi", Keyboard: dialog.KeyboardMainMenu}}
	catalog := texts.MustLoad("en", "Studio")
	return NewHandlers(eng, menu.MustDispatcher(menu.DefaultEntries), catalog, contactURL), eng
}

func TestRegisterBindsDispatcherEntries(t *testing.T) {
	h, _ := newHandlers(t, "")
	reg := tg.NewRegistry()
	require.NoError(t, h.Register(reg))

	_, cmd, ok := reg.LookupCommand("/publish")
	require.True(t, ok)
	assert.True(t, cmd.AdminOnly)
	_, cmd, ok = reg.LookupCommand("/menu")
	require.True(t, ok)
	assert.True(t, cmd.Hidden)

	assert.ElementsMatch(t, []string{"ask", "cancel", "form", "menu", "order", "portfolio", "services"}, reg.ListCallbacks())

	var visible []string
	for _, c := range reg.ListCommands(true) {
		visible = append(visible, c.Text)
	}
	assert.Equal(t, []string{"ask", "cancel", "form", "help", "start"}, visible)
}

func TestOnCommandForwardsEvent(t *testing.T) {
	h, eng := newHandlers(t, "https://t.me/studio")
	c := newContext(t, messageUpdate("/start", ""))

	require.NoError(t, h.OnCommand(c))

	ev := eng.last(t)
	assert.Equal(t, dialog.EventCommand, ev.Kind)
	assert.Equal(t, "/start", ev.Input)
	assert.Equal(t, int64(7), ev.UserID)
	assert.Equal(t, "client", ev.Username)

	require.Equal(t, []any{"hi"}, c.sent)
	require.Len(t, c.markups, 1)
	rows := c.markups[0].InlineKeyboard
	require.Len(t, rows, 6)
	assert.Equal(t, "services", rows[0][0].Unique)
	assert.Equal(t, "form", rows[2][0].Unique)
	assert.Equal(t, "https://t.me/studio", rows[5][0].URL)
}

func TestOnCommandDeepLinkOpensForm(t *testing.T) {
	h, eng := newHandlers(t, "")
	c := newContext(t, messageUpdate("/start form", DeepLinkForm))

	require.NoError(t, h.OnCommand(c))

	ev := eng.last(t)
	assert.Equal(t, dialog.EventCallback, ev.Kind)
	assert.Equal(t, "form", ev.Input)
}

func TestOnCallbackEditsMessage(t *testing.T) {
	h, eng := newHandlers(t, "")
	eng.reply = dialog.Reply{Text: "enter name", Keyboard: dialog.KeyboardCancel}
	c := newContext(t, callbackUpdate("form"))

	require.NoError(t, h.OnCallback(c))

	ev := eng.last(t)
	assert.Equal(t, dialog.EventCallback, ev.Kind)
	assert.Equal(t, "form", ev.Input)
	assert.Empty(t, c.sent)
	require.Equal(t, []any{"enter name"}, c.edited)
	require.Len(t, c.markups, 1)
	assert.Equal(t, "cancel", c.markups[0].InlineKeyboard[0][0].Unique)
}

func TestHandleTextForwardsEvent(t *testing.T) {
	h, eng := newHandlers(t, "")
	eng.reply = dialog.Reply{Text: "next", Keyboard: dialog.KeyboardBackToMenu}
	c := newContext(t, messageUpdate("Anna @anna", ""))

	require.NoError(t, h.HandleText(c))

	ev := eng.last(t)
	assert.Equal(t, dialog.EventText, ev.Kind)
	assert.Equal(t, "Anna @anna", ev.Input)
	require.Len(t, c.markups, 1)
	assert.Equal(t, "menu", c.markups[0].InlineKeyboard[0][0].Unique)
}

func TestPlainReplyHasNoMarkup(t *testing.T) {
	h, eng := newHandlers(t, "")
	eng.reply = dialog.Reply{Text: "plain"}
	c := newContext(t, messageUpdate("hello", ""))

	require.NoError(t, h.HandleText(c))
	require.Len(t, c.markups, 1)
	assert.Nil(t, c.markups[0])
}

func TestOnRateLimitedAnswersCallback(t *testing.T) {
	h, _ := newHandlers(t, "")
	c := newContext(t, callbackUpdate("services"))
	require.NoError(t, h.OnRateLimited(c))
	assert.Equal(t, 1, c.answered)
	assert.Empty(t, c.sent)

	m := newContext(t, messageUpdate("hello", ""))
	require.NoError(t, h.OnRateLimited(m))
	assert.Len(t, m.sent, 1)
}

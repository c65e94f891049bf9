package tgbot

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/leadbot/leadbot/leads"
	"github.com/m3rciful/leadbot/leadbot/texts"
)

type sentMessage struct {
	to   string
	what any
	opts *tele.SendOptions
}

type fakeSender struct {
	sent    []sentMessage
	pinned  int
	sendErr error
	pinErr  error
}

func (f *fakeSender) Send(to tele.Recipient, what any, opts ...any) (*tele.Message, error) {
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	msg := sentMessage{to: to.Recipient(), what: what}
	for _, o := range opts {
		if so, ok := o.(*tele.SendOptions); ok {
			msg.opts = so
		}
	}
	f.sent = append(f.sent, msg)
	return &tele.Message{ID: len(f.sent), Chat: &tele.Chat{ID: -100}}, nil
}

func (f *fakeSender) Pin(tele.Editable, ...any) error {
	if f.pinErr != nil {
		return f.pinErr
	}
	f.pinned++
	return nil
}

func TestNotifyLeadEscapesUserInput(t *testing.T) {
	bot := &fakeSender{}
	n := NewNotifier(bot, 42, texts.MustLoad("en", "Studio"))
	rec := leads.Record{
		UserID:      7,
		Name:        "Anna_K",
		Project:     "shop *bot*",
		Budget:      "100$",
		Contact:     "@anna_k",
		SubmittedAt: time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC),
	}

	require.NoError(t, n.NotifyLead(context.Background(), rec))
	require.Len(t, bot.sent, 1)
	msg := bot.sent[0]
	assert.Equal(t, "42", msg.to)
	require.NotNil(t, msg.opts)
	assert.Equal(t, tele.ModeMarkdown, msg.opts.ParseMode)

	text := msg.what.(string)
	assert.Contains(t, text, `Anna\_K`)
	assert.Contains(t, text, `shop \*bot\*`)
	assert.Contains(t, text, `@anna\_k`)
	assert.Contains(t, text, rec.Timestamp())
}

func TestNotifyLeadWithoutOperator(t *testing.T) {
	n := NewNotifier(&fakeSender{}, 0, texts.MustLoad("en", "Studio"))
	err := n.NotifyLead(context.Background(), leads.Record{})
	assert.ErrorIs(t, err, ErrNoOperator)
}

func TestNotifyLeadSendFailure(t *testing.T) {
	boom := errors.New("forbidden")
	n := NewNotifier(&fakeSender{sendErr: boom}, 42, texts.MustLoad("en", "Studio"))
	assert.ErrorIs(t, n.NotifyLead(context.Background(), leads.Record{Name: "x"}), boom)
}

func TestParseChannel(t *testing.T) {
	r, err := ParseChannel("-1001234")
	require.NoError(t, err)
	assert.Equal(t, "-1001234", r.Recipient())

	r, err = ParseChannel("studio_news")
	require.NoError(t, err)
	assert.Equal(t, "@studio_news", r.Recipient())

	r, err = ParseChannel(" @studio ")
	require.NoError(t, err)
	assert.Equal(t, "@studio", r.Recipient())

	_, err = ParseChannel("  ")
	assert.Error(t, err)
}

func TestPublishSendsAndPins(t *testing.T) {
	bot := &fakeSender{}
	p, err := NewPublisher(bot, AnnounceOptions{
		Channel:     "@studio",
		Text:        "We build bots",
		BotUsername: "studio_bot",
		Pin:         true,
	}, texts.MustLoad("en", "Studio"))
	require.NoError(t, err)
	assert.Equal(t, "https://t.me/studio_bot?start=form", p.DeepLink())

	require.NoError(t, p.Publish(context.Background()))
	require.Len(t, bot.sent, 1)
	msg := bot.sent[0]
	assert.Equal(t, "@studio", msg.to)
	assert.Equal(t, "We build bots", msg.what)
	require.NotNil(t, msg.opts.ReplyMarkup)
	assert.Equal(t, p.DeepLink(), msg.opts.ReplyMarkup.InlineKeyboard[0][0].URL)
	assert.Equal(t, 1, bot.pinned)
}

func TestPublishWithoutPin(t *testing.T) {
	bot := &fakeSender{}
	p, err := NewPublisher(bot, AnnounceOptions{Channel: "-100", Text: "hello"}, texts.MustLoad("en", "Studio"))
	require.NoError(t, err)
	require.NoError(t, p.Publish(context.Background()))
	assert.Zero(t, bot.pinned)
	assert.Nil(t, bot.sent[0].opts.ReplyMarkup)
}

func TestPublishErrors(t *testing.T) {
	catalog := texts.MustLoad("en", "Studio")
	_, err := NewPublisher(&fakeSender{}, AnnounceOptions{Channel: "@studio"}, catalog)
	assert.Error(t, err)

	boom := errors.New("not enough rights")
	p, err := NewPublisher(&fakeSender{pinErr: boom}, AnnounceOptions{Channel: "@studio", Text: "x", Pin: true}, catalog)
	require.NoError(t, err)
	assert.ErrorIs(t, p.Publish(context.Background()), boom)
}

package tgbot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/leadbot/core/logger"
	"github.com/m3rciful/leadbot/core/telegram/format"
	"github.com/m3rciful/leadbot/core/telegram/keyboard"
	"github.com/m3rciful/leadbot/leadbot/leads"
	"github.com/m3rciful/leadbot/leadbot/texts"
)

// ErrNoOperator is returned when no operator chat is configured.
var ErrNoOperator = errors.New("tgbot: operator chat not configured")

// Sender is the part of *tele.Bot used for outbound messages.
type Sender interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
	Pin(msg tele.Editable, opts ...interface{}) error
}

// Notifier forwards stored leads to the operator chat.
type Notifier struct {
	bot        Sender
	operatorID int64
	texts      *texts.Catalog
}

// NewNotifier builds a notifier for the operator chat.
func NewNotifier(bot Sender, operatorID int64, catalog *texts.Catalog) *Notifier {
	return &Notifier{bot: bot, operatorID: operatorID, texts: catalog}
}

type leadView struct {
	Name, Project, Budget, Contact, Timestamp string
}

// NotifyLead sends a Markdown summary of rec. User input is escaped.
func (n *Notifier) NotifyLead(ctx context.Context, rec leads.Record) error {
	if n.operatorID == 0 {
		return ErrNoOperator
	}
	text, err := n.texts.Render(texts.OperatorLead, leadView{
		Name:      format.EscapeMD(rec.Name),
		Project:   format.EscapeMD(rec.Project),
		Budget:    format.EscapeMD(rec.Budget),
		Contact:   format.EscapeMD(rec.Contact),
		Timestamp: rec.Timestamp(),
	})
	if err != nil {
		return fmt.Errorf("tgbot: render lead: %w", err)
	}
	start := time.Now()
	_, err = n.bot.Send(tele.ChatID(n.operatorID), text, &tele.SendOptions{ParseMode: tele.ModeMarkdown})
	if err != nil {
		return fmt.Errorf("tgbot: notify operator: %w", err)
	}
	logger.Debug(ctx, "tg.send", "notify.lead",
		slog.String("status", "ok"),
		slog.Duration("duration", logger.Took(start)),
	)
	return nil
}

// channelName addresses a public channel by its @username.
type channelName string

func (c channelName) Recipient() string { return string(c) }

// ParseChannel accepts a numeric chat id or an @username.
func ParseChannel(raw string) (tele.Recipient, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("tgbot: empty channel id")
	}
	if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return tele.ChatID(id), nil
	}
	if !strings.HasPrefix(raw, "@") {
		raw = "@" + raw
	}
	return channelName(raw), nil
}

// AnnounceOptions configures the channel announcement.
type AnnounceOptions struct {
	Channel string
	Text    string
	// BotUsername builds the deep link that opens the request form.
	BotUsername string
	Pin         bool
}

// Publisher posts the announcement with a deep-link button.
type Publisher struct {
	bot    Sender
	chat   tele.Recipient
	opts   AnnounceOptions
	button string
}

// NewPublisher validates the channel and builds a publisher.
func NewPublisher(bot Sender, opts AnnounceOptions, catalog *texts.Catalog) (*Publisher, error) {
	chat, err := ParseChannel(opts.Channel)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(opts.Text) == "" {
		return nil, fmt.Errorf("tgbot: empty announcement text")
	}
	return &Publisher{bot: bot, chat: chat, opts: opts, button: catalog.Get(texts.BtnAnnounce)}, nil
}

// DeepLink returns the t.me link that starts the form.
func (p *Publisher) DeepLink() string {
	return "https://t.me/" + strings.TrimPrefix(p.opts.BotUsername, "@") + "?start=" + DeepLinkForm
}

// Publish sends the announcement and pins it when configured.
func (p *Publisher) Publish(ctx context.Context) error {
	var markup *tele.ReplyMarkup
	if p.opts.BotUsername != "" {
		markup = keyboard.InlineButtons([]keyboard.InlineBtn{{Text: p.button, URL: p.DeepLink()}})
	}
	opts := &tele.SendOptions{ReplyMarkup: markup}
	msg, err := p.bot.Send(p.chat, p.opts.Text, opts)
	if err != nil {
		return fmt.Errorf("tgbot: publish: %w", err)
	}
	if p.opts.Pin {
		if err := p.bot.Pin(msg); err != nil {
			return fmt.Errorf("tgbot: pin: %w", err)
		}
	}
	logger.Info(ctx, "tg.send", "announce.published",
		slog.String("status", "ok"),
		slog.String("channel", p.chat.Recipient()),
		slog.Bool("pinned", p.opts.Pin),
	)
	return nil
}

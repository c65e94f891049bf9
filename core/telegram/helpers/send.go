package helpers

import (
	"errors"
	"log/slog"
	"sync/atomic"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/leadbot/core/logger"
	"github.com/m3rciful/leadbot/core/telegram/sender"
)

var globalDispatcher atomic.Pointer[sender.Dispatcher]

// SetDispatcher wires the asynchronous sender used by helper functions.
func SetDispatcher(d *sender.Dispatcher) {
	globalDispatcher.Store(d)
}

func sendAsync(c tele.Context, action, endpoint string, run func() error) error {
	disp := globalDispatcher.Load()
	if disp == nil {
		return run()
	}

	ctx := BuildContext(c)
	if err := disp.Enqueue(ctx, action, endpoint, run); err != nil {
		if errors.Is(err, sender.ErrQueueFull) || errors.Is(err, sender.ErrQueueClosed) {
			logger.Warn(ctx, "tg.sender", "queue.fallback",
				slog.String("action", action),
				slog.String("endpoint", endpoint),
				logger.Err(err),
			)
			return run()
		}
		return err
	}
	return nil
}

func withMarkup(opts *tele.SendOptions, markup []*tele.ReplyMarkup) *tele.SendOptions {
	if len(markup) > 0 && markup[0] != nil {
		opts.ReplyMarkup = markup[0]
	}
	return opts
}

// SendText sends raw text (no parse mode) to the current recipient.
func SendText(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	opts := withMarkup(&tele.SendOptions{}, markup)
	return sendAsync(c, "send.text", "sendMessage", func() error {
		return c.Send(text, opts)
	})
}

// SendMD sends a message with Markdown parse mode and optional reply markup.
func SendMD(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	opts := withMarkup(&tele.SendOptions{ParseMode: tele.ModeMarkdown}, markup)
	return sendAsync(c, "send.md", "sendMessage", func() error {
		return c.Send(text, opts)
	})
}

// EditOrSendText edits the callback message in place or sends a new one when
// there is nothing to edit. Edits run synchronously so a failed edit can fall back.
func EditOrSendText(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	opts := withMarkup(&tele.SendOptions{}, markup)
	if c.Callback() == nil {
		return SendText(c, text, markup...)
	}
	if err := c.Edit(text, opts); err != nil {
		if errors.Is(err, tele.ErrSameMessageContent) {
			return nil
		}
		logger.Debug(BuildContext(c), "tg.sender", "edit.fallback", logger.Err(err))
		return SendText(c, text, markup...)
	}
	return nil
}

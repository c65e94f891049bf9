package middleware

import (
	"log/slog"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/leadbot/core/logger"
	tghelpers "github.com/m3rciful/leadbot/core/telegram/helpers"
)

// AdminOptions defines how operator-only checks should behave.
type AdminOptions struct {
	AdminID  int64
	OnReject tele.HandlerFunc
}

// IsAdmin reports whether the sender of the update is the configured operator.
// A zero AdminID means no operator is configured and nobody qualifies.
func IsAdmin(c tele.Context, adminID int64) bool {
	if adminID == 0 {
		return false
	}
	u := c.Sender()
	return u != nil && u.ID == adminID
}

// AdminOnlyMiddleware ensures that only the operator can invoke downstream handlers.
func AdminOnlyMiddleware(opts AdminOptions) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if IsAdmin(c, opts.AdminID) {
				return next(c)
			}
			ctx := tghelpers.BuildContext(c)
			logger.Warn(ctx, "tg", "access.denied",
				slog.String("status", "rejected"),
				slog.String("handler", logger.HandlerFrom(ctx)),
			)
			if opts.OnReject != nil {
				return opts.OnReject(c)
			}
			return nil
		}
	}
}

package middleware

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/maypok86/otter"
	tele "gopkg.in/telebot.v4"

	coreconfig "github.com/m3rciful/leadbot/core/config"
	"github.com/m3rciful/leadbot/core/logger"
	tghelpers "github.com/m3rciful/leadbot/core/telegram/helpers"
)

const defaultRateLimitUsers = 10_000

// RateLimitOptions configures behaviour of the rate limit middleware.
type RateLimitOptions struct {
	Interval time.Duration
	Exclude  map[string]struct{}
	// MaxUsers bounds the remembered senders; defaults to 10000.
	MaxUsers  int
	OnLimited tele.HandlerFunc
	// Now is used in tests; defaults to time.Now.
	Now func() time.Time
}

// UpdateKind classifies an update for rate limit exclusions.
func UpdateKind(upd tele.Update) string {
	switch {
	case upd.Callback != nil:
		return coreconfig.UpdateCallback
	case upd.Message != nil:
		return coreconfig.UpdateMessage
	case upd.Query != nil:
		return coreconfig.UpdateInlineQuery
	}
	return "other"
}

// lastSeen remembers when each user was last let through. Entries outlive
// Interval by at least a second since the cache clock ticks in seconds.
type lastSeen struct {
	mu    sync.Mutex
	cache otter.Cache[int64, time.Time]
}

func newLastSeen(opts RateLimitOptions) (*lastSeen, error) {
	capacity := opts.MaxUsers
	if capacity <= 0 {
		capacity = defaultRateLimitUsers
	}
	cache, err := otter.MustBuilder[int64, time.Time](capacity).
		WithTTL(opts.Interval + time.Second).
		Build()
	if err != nil {
		return nil, err
	}
	return &lastSeen{cache: cache}, nil
}

// allow records ts for userID unless the previous admitted update is closer than interval.
func (l *lastSeen) allow(userID int64, ts time.Time, interval time.Duration) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if last, ok := l.cache.Get(userID); ok && ts.Sub(last) < interval {
		return false
	}
	l.cache.Set(userID, ts)
	return true
}

// RateLimitMiddleware returns a middleware that enforces a minimum interval
// between updates from the same user.
func RateLimitMiddleware(opts RateLimitOptions) tele.MiddlewareFunc {
	if opts.Interval <= 0 {
		return func(next tele.HandlerFunc) tele.HandlerFunc { return next }
	}
	seen, err := newLastSeen(opts)
	if err != nil {
		logger.Error(context.Background(), "tg.wire", "rate_limit",
			slog.String("status", "skip"),
			logger.Err(err),
		)
		return func(next tele.HandlerFunc) tele.HandlerFunc { return next }
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			user := c.Sender()
			if user == nil {
				return next(c)
			}
			kind := UpdateKind(c.Update())
			if _, skip := opts.Exclude[kind]; skip {
				return next(c)
			}

			if !seen.allow(user.ID, now(), opts.Interval) {
				logger.Warn(tghelpers.BuildContext(c), "tg", "rate_limit",
					slog.String("status", "rejected"),
					slog.String("kind", kind),
				)
				if opts.OnLimited != nil {
					_ = opts.OnLimited(c)
				}
				return nil
			}
			return next(c)
		}
	}
}

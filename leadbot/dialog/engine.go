package dialog

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/m3rciful/leadbot/core/logger"
	"github.com/m3rciful/leadbot/leadbot/leads"
	"github.com/m3rciful/leadbot/leadbot/menu"
	"github.com/m3rciful/leadbot/leadbot/session"
	"github.com/m3rciful/leadbot/leadbot/texts"
)

// Handle processes one event for one user. Events of the same user are
// processed one at a time in arrival order at the lock.
func (e *Engine) Handle(ctx context.Context, ev Event) Reply {
	unlock := e.d.Sessions.Lock(ev.UserID)
	defer unlock()

	sess := e.d.Sessions.Get(ev.UserID)

	switch ev.Kind {
	case EventCallback, EventCommand:
		if tok, ok := e.d.Menu.Lookup(ev.Input); ok {
			return e.handleToken(ctx, ev, sess, tok)
		}
		return e.unknown(ctx, ev, sess)
	}

	if menu.LooksLikeCommand(ev.Input) {
		if tok, ok := e.d.Menu.Lookup(ev.Input); ok {
			return e.handleToken(ctx, ev, sess, tok)
		}
		return e.unknown(ctx, ev, sess)
	}
	return e.handleText(ctx, ev, sess)
}

func (e *Engine) unknown(ctx context.Context, ev Event, sess session.Session) Reply {
	logger.Debug(ctx, "dialog", "token.unknown",
		slog.String("kind", ev.Kind.String()),
		slog.String("state", string(sess.State)),
	)
	return e.reply(texts.NotUnderstood, KeyboardNone)
}

func (e *Engine) handleToken(ctx context.Context, ev Event, sess session.Session, tok menu.Token) Reply {
	uid := ev.UserID
	switch tok {
	case menu.AdminPublish:
		return e.publish(ctx, uid)

	case menu.StartDialog:
		e.transition(ctx, uid, sess, tok, session.Session{State: session.AwaitingName, UpdatedAt: e.d.Now()})
		return e.reply(texts.PromptName, KeyboardCancel)

	case menu.Cancel:
		if sess.State.InDialog() || sess.AwaitingAnswer {
			e.transition(ctx, uid, sess, tok, session.Session{State: session.Idle})
			return e.reply(texts.Cancelled, KeyboardMainMenu)
		}
		return e.reply(texts.NothingToCancel, KeyboardMainMenu)

	case menu.AskQuestion:
		e.transition(ctx, uid, sess, tok, session.Session{State: session.Idle, AwaitingAnswer: true, UpdatedAt: e.d.Now()})
		return e.reply(texts.AskPrompt, KeyboardBackToMenu)
	}

	// Every other menu action abandons whatever the user was doing.
	e.transition(ctx, uid, sess, tok, session.Session{State: session.Idle})
	switch tok {
	case menu.Help:
		return e.reply(texts.Help, KeyboardMainMenu)
	case menu.ShowServices:
		return e.reply(texts.Services, KeyboardBackToMenu)
	case menu.ShowPortfolio:
		return e.reply(texts.Portfolio, KeyboardBackToMenu)
	case menu.ShowOrderInfo:
		return e.reply(texts.OrderInfo, KeyboardBackToMenu)
	}
	return e.reply(texts.Welcome, KeyboardMainMenu)
}

func (e *Engine) handleText(ctx context.Context, ev Event, sess session.Session) Reply {
	uid := ev.UserID
	text := ev.Input

	if sess.State.InDialog() && e.d.RejectBlank && strings.TrimSpace(text) == "" {
		logger.Debug(ctx, "dialog", "input.blank", slog.String("state", string(sess.State)))
		return e.reply(texts.EmptyInput, KeyboardCancel)
	}

	switch {
	case sess.State == session.AwaitingName:
		next := sess
		next.Draft.Name = &text
		next.State = session.AwaitingProject
		next.UpdatedAt = e.d.Now()
		e.transition(ctx, uid, sess, "", next)
		return e.reply(texts.PromptProject, KeyboardCancel)

	case sess.State == session.AwaitingProject:
		next := sess
		next.Draft.Project = &text
		next.State = session.AwaitingBudget
		next.UpdatedAt = e.d.Now()
		e.transition(ctx, uid, sess, "", next)
		return e.reply(texts.PromptBudget, KeyboardCancel)

	case sess.State == session.AwaitingBudget:
		return e.complete(ctx, ev, sess, text)

	case sess.AwaitingAnswer:
		return e.answer(ctx, uid, sess, text)
	}

	return e.reply(texts.MenuHint, KeyboardMainMenu)
}

// complete builds the record, resets the session and hands the record to the
// sink. The session is IDLE afterwards whatever the sink says.
func (e *Engine) complete(ctx context.Context, ev Event, sess session.Session, budget string) Reply {
	rec := leads.Record{
		UserID:      ev.UserID,
		Name:        deref(sess.Draft.Name),
		Project:     deref(sess.Draft.Project),
		Budget:      budget,
		Contact:     leads.ContactHandle(ev.Username, ev.UserID),
		SubmittedAt: e.d.Now(),
	}
	e.transition(ctx, ev.UserID, sess, "", session.Session{State: session.Idle})

	start := time.Now()
	if err := e.d.Sink.Record(ctx, rec); err != nil {
		logger.Error(ctx, "dialog", "lead.submit",
			slog.String("status", "fail"),
			slog.Duration("duration", logger.Took(start)),
			logger.Err(err),
		)
		return e.reply(texts.LeadFailed, KeyboardMainMenu)
	}
	logger.Info(ctx, "dialog", "lead.submit",
		slog.String("status", "ok"),
		slog.Duration("duration", logger.Took(start)),
	)

	if e.d.Notifier != nil {
		if err := e.d.Notifier.NotifyLead(ctx, rec); err != nil {
			logger.Warn(ctx, "dialog", "lead.notify", slog.String("status", "fail"), logger.Err(err))
		}
	}
	return e.reply(texts.LeadSaved, KeyboardMainMenu)
}

func (e *Engine) answer(ctx context.Context, uid int64, sess session.Session, question string) Reply {
	e.transition(ctx, uid, sess, "", session.Session{State: session.Idle})

	if e.d.Responder == nil {
		logger.Warn(ctx, "dialog", "question", slog.String("status", "skip"), slog.String("reason", "no_responder"))
		return e.reply(texts.AnswerFailed, KeyboardMainMenu)
	}
	text, err := e.d.Responder.Answer(ctx, question)
	if err != nil {
		logger.Warn(ctx, "dialog", "question", slog.String("status", "fail"), logger.Err(err))
		return e.reply(texts.AnswerFailed, KeyboardMainMenu)
	}
	return Reply{Text: text, Keyboard: KeyboardBackToMenu}
}

func (e *Engine) publish(ctx context.Context, uid int64) Reply {
	if err := e.authorizePublish(uid); err != nil {
		logger.Warn(ctx, "announce", "publish", slog.String("status", "rejected"), logger.Err(err))
		return e.reply(texts.PublishDenied, KeyboardNone)
	}
	if e.d.Publisher == nil {
		logger.Warn(ctx, "announce", "publish", slog.String("status", "skip"), slog.String("reason", "no_publisher"))
		return e.reply(texts.PublishFailed, KeyboardNone)
	}
	if err := e.d.Publisher.Publish(ctx); err != nil {
		logger.Error(ctx, "announce", "publish", slog.String("status", "fail"), logger.Err(err))
		return e.reply(texts.PublishFailed, KeyboardNone)
	}
	logger.Info(ctx, "announce", "publish", slog.String("status", "ok"))
	return e.reply(texts.PublishDone, KeyboardNone)
}

// transition stores next, or drops the entry when next is a plain IDLE session.
func (e *Engine) transition(ctx context.Context, uid int64, prev session.Session, tok menu.Token, next session.Session) {
	if next.State == session.Idle && !next.AwaitingAnswer {
		e.d.Sessions.Clear(uid)
	} else {
		e.d.Sessions.Set(uid, next)
	}
	attrs := []slog.Attr{
		slog.String("state", string(prev.State)),
		slog.String("next_state", string(next.State)),
	}
	if tok != "" {
		attrs = append(attrs, slog.String("token", string(tok)))
	}
	if next.AwaitingAnswer {
		attrs = append(attrs, slog.Bool("awaiting_answer", true))
	}
	logger.Debug(ctx, "dialog", "transition", attrs...)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

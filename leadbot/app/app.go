// Package app composes the lead bot from configuration.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/leadbot/core/bootstrap"
	corecmd "github.com/m3rciful/leadbot/core/cmd"
	"github.com/m3rciful/leadbot/core/logger"
	coretelegram "github.com/m3rciful/leadbot/core/telegram"
	"github.com/m3rciful/leadbot/core/telegram/router"
	tgsender "github.com/m3rciful/leadbot/core/telegram/sender"
	"github.com/m3rciful/leadbot/leadbot/answer"
	"github.com/m3rciful/leadbot/leadbot/config"
	"github.com/m3rciful/leadbot/leadbot/dialog"
	"github.com/m3rciful/leadbot/leadbot/leads"
	"github.com/m3rciful/leadbot/leadbot/menu"
	"github.com/m3rciful/leadbot/leadbot/session"
	"github.com/m3rciful/leadbot/leadbot/texts"
	"github.com/m3rciful/leadbot/leadbot/tgbot"
)

// App owns long-lived resources of a running bot.
type App struct {
	cfg      *config.Config
	db       *sqlx.DB
	sessions *session.Store
	bot      *tele.Bot
	registry *coretelegram.Registry
	handlers *tgbot.Handlers
}

// Load adapts config.Load to the process runner.
func Load(path string) (corecmd.ConfigCarrier, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// Bootstrap adapts New to the process runner.
func Bootstrap(carrier corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
	cfg, ok := carrier.(*config.Config)
	if !ok {
		return nil, fmt.Errorf("app: unexpected config type %T", carrier)
	}
	return New(cfg)
}

// New initializes logging and storage, then wires the dialog engine to Telegram.
func New(cfg *config.Config) (*App, error) {
	opts := bootstrap.Options{Config: cfg.CoreConfig()}
	if cfg.UsesBackend(leads.BackendPostgres) {
		opts.Database = &cfg.Database
	}
	res, err := bootstrap.Run(opts)
	if err != nil {
		return nil, err
	}

	a := &App{cfg: cfg, db: res.DB}
	if err := a.wire(); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) wire() error {
	ctx := context.Background()
	cfg := a.cfg

	sink, err := a.buildSink(ctx)
	if err != nil {
		return err
	}

	a.sessions, err = session.NewStore(session.Options{
		MaxUsers: cfg.Session.MaxUsers,
		IdleTTL:  cfg.Session.IdleTTL,
	})
	if err != nil {
		return err
	}

	catalog, err := texts.Load(cfg.Locale, cfg.Bot.Brand)
	if err != nil {
		return err
	}
	dispatcher, err := menu.NewDispatcher(menu.DefaultEntries)
	if err != nil {
		return err
	}

	a.bot, err = coretelegram.NewBot(cfg.CoreConfig())
	if err != nil {
		return err
	}

	responder := answer.New(answer.Config{
		BaseURL:      cfg.Answer.BaseURL,
		APIKey:       cfg.Answer.APIKey,
		Model:        cfg.Answer.Model,
		SystemPrompt: cfg.Answer.SystemPrompt,
		Timeout:      cfg.Answer.Timeout,
	})
	if !responder.Enabled() {
		logger.Warn(ctx, "app", "answer.disabled", slog.String("reason", "no api key"))
	}

	deps := dialog.Deps{
		Sessions:    a.sessions,
		Menu:        dispatcher,
		Sink:        sink,
		Notifier:    tgbot.NewNotifier(a.bot, cfg.Telegram.AdminID, catalog),
		Responder:   responder,
		Texts:       catalog,
		OperatorID:  cfg.Telegram.AdminID,
		RejectBlank: cfg.Dialog.RejectBlank,
	}
	if cfg.Announce.ChannelID != "" {
		pub, err := tgbot.NewPublisher(a.bot, tgbot.AnnounceOptions{
			Channel:     cfg.Announce.ChannelID,
			Text:        cfg.Announce.Text,
			BotUsername: a.bot.Me.Username,
			Pin:         cfg.Announce.Pin,
		}, catalog)
		if err != nil {
			return err
		}
		deps.Publisher = pub
	}

	engine, err := dialog.New(deps)
	if err != nil {
		return err
	}

	a.handlers = tgbot.NewHandlers(engine, dispatcher, catalog, cfg.Bot.ContactURL)
	a.registry = coretelegram.NewRegistry()
	return a.handlers.Register(a.registry)
}

func (a *App) buildSink(ctx context.Context) (leads.Sink, error) {
	var backends []leads.Backend
	for _, name := range a.cfg.Leads.Backends {
		switch name {
		case leads.BackendPostgres:
			if a.db == nil {
				return nil, fmt.Errorf("app: postgres backend without database")
			}
			backends = append(backends, leads.NewPostgresSink(a.db))
		case leads.BackendSheets:
			s, err := leads.NewSheetsSink(ctx, leads.SheetsConfig{
				SpreadsheetID:   a.cfg.Sheets.SpreadsheetID,
				Range:           a.cfg.Sheets.Range,
				CredentialsFile: a.cfg.Sheets.CredentialsFile,
			})
			if err != nil {
				return nil, err
			}
			backends = append(backends, s)
		default:
			return nil, fmt.Errorf("app: unknown lead backend %q", name)
		}
	}
	return leads.NewMultiSink(backends...)
}

// TelegramRunOptions assembles middlewares and routes for the runtime.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	core := a.cfg.CoreConfig()

	var routes []coretelegram.Route
	routes = append(routes, router.CommandRoutes(a.registry, router.CommandRouteOptions{
		AdminID: core.Telegram.AdminID,
		// The engine answers unauthorized /publish itself.
		OnAdminReject: a.handlers.OnCommand,
	})...)
	routes = append(routes, router.CallbackRoute(a.registry, router.CallbackOptions{}))
	routes = append(routes, router.TextRoutes(a.handlers, a.registry, router.TextOptions{
		UnknownDocument: a.handlers.OnDocument,
	})...)

	return coretelegram.RunOptions{
		Config:      core,
		Registry:    a.registry,
		Bot:         a.bot,
		Middlewares: coretelegram.DefaultMiddlewares(core, a.handlers.OnRateLimited),
		Routes:      routes,
		DispatcherOptions: tgsender.Options{
			QueueSize:    a.cfg.Sender.QueueSize,
			Workers:      a.cfg.Sender.Workers,
			MaxRetries:   a.cfg.Sender.MaxRetries,
			RetryBackoff: a.cfg.Sender.RetryBackoff,
		},
	}, nil
}

// Close releases the session cache and the database pool.
func (a *App) Close() error {
	if a.sessions != nil {
		a.sessions.Close()
	}
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

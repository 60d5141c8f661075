// Package bot assembles the quiz bot: it wires the store, the authoring
// orchestrator, and the delivery sequencer into the telegram runtime.
package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	coretelegram "github.com/m3rciful/quizbot/core/telegram"
	"github.com/m3rciful/quizbot/core/telegram/router"
	"github.com/m3rciful/quizbot/internal/authoring"
	"github.com/m3rciful/quizbot/internal/delivery"
	"github.com/m3rciful/quizbot/internal/quiz/id"
	"github.com/m3rciful/quizbot/internal/quiz/store"
)

// App owns the application services for one bot process.
type App struct {
	cfg   *Config
	store store.Store
	orch  *authoring.Orchestrator
	seq   *delivery.Sequencer
}

// NewApp builds the store for the configured backend, seeds the identifier
// generator from it, and wires the orchestrator and sequencer. db is nil
// for the file backend.
func NewApp(cfg *Config, db *sqlx.DB) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bot: nil config provided")
	}

	var (
		st  store.Store
		err error
	)
	switch cfg.Store.Backend {
	case BackendFile:
		st, err = store.OpenFile(cfg.Store.Path)
		if err != nil {
			return nil, fmt.Errorf("bot: open file store: %w", err)
		}
	case BackendSQLite, BackendPostgres:
		if db == nil {
			return nil, fmt.Errorf("bot: %s backend requires a database connection", cfg.Store.Backend)
		}
		st = store.NewSQL(db)
	default:
		return nil, fmt.Errorf("bot: unknown store backend %q", cfg.Store.Backend)
	}

	size, err := st.Len(context.Background())
	if err != nil {
		return nil, fmt.Errorf("bot: seed id generator: %w", err)
	}

	var gen id.Generator
	switch cfg.Quiz.IDScheme {
	case id.SchemeRandom:
		gen = id.NewRandom(cfg.Quiz.IDPrefix)
	default:
		gen = id.NewSequential(cfg.Quiz.IDPrefix, int64(size))
	}

	reg := authoring.NewRegistry(time.Duration(cfg.Quiz.SessionTTLMinutes) * time.Minute)
	orch := authoring.New(authoring.Options{
		MaxOptions:     cfg.Quiz.MaxOptions,
		Categories:     cfg.Quiz.Categories,
		SingleQuestion: cfg.Quiz.SingleQuestion,
		CorrectMarker:  cfg.Quiz.CorrectMarker,
	}, reg, st, gen)

	return &App{
		cfg:   cfg,
		store: st,
		orch:  orch,
		seq:   delivery.New(st),
	}, nil
}

// TelegramRunOptions wires commands, callbacks, and routes for the runtime.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	reg := coretelegram.NewRegistry()
	a.registerCommands(reg)
	if err := a.registerCallbacks(reg); err != nil {
		return coretelegram.RunOptions{}, err
	}

	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		AdminID:       a.cfg.Core.Telegram.AdminID,
		OnAdminReject: a.handleAdminReject,
	})
	routes = append(routes, router.TextRoutes(&fsmAdapter{app: a}, reg, router.TextOptions{
		UnknownText: a.handleUnknownText,
	})...)
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{}))

	return coretelegram.RunOptions{
		Config:      a.cfg.CoreConfig(),
		Registry:    reg,
		Middlewares: coretelegram.DefaultMiddlewares(a.cfg.CoreConfig(), nil),
		Routes:      routes,
		OnStop: func(context.Context, coretelegram.Runtime) error {
			return a.store.Close()
		},
	}, nil
}

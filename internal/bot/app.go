package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/sh0von/cow/core/bootstrap"
	coreconfig "github.com/sh0von/cow/core/config"
	coredatabase "github.com/sh0von/cow/core/database"
	"github.com/sh0von/cow/core/logger"
	coretelegram "github.com/sh0von/cow/core/telegram"
	"github.com/sh0von/cow/core/telegram/commands"
	"github.com/sh0von/cow/core/telegram/router"
	"github.com/sh0von/cow/core/telegram/state"
	"github.com/sh0von/cow/internal/tracker"

	"log/slog"
)

// stateAwaitingTuitionName marks a user who was prompted for a tuition
// name and has not answered yet.
const stateAwaitingTuitionName = state.State("awaiting_tuition_name")

// App wires the tuition tracker service to the Telegram bot core.
type App struct {
	cfg   *Config
	store tracker.Store
	svc   *tracker.Service
	fsm   state.Manager
}

// NewApp initializes logging and the configured storage backend.
// Startup fails fast when the backend is unreachable.
func NewApp(cfg *Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bot: nil config provided")
	}

	res, err := bootstrap.Run(bootstrap.Options[tracker.Store]{
		Config: cfg.CoreConfig(),
		OpenStore: func(*coreconfig.Config) (tracker.Store, error) {
			return openStore(cfg)
		},
	})
	if err != nil {
		return nil, err
	}

	return &App{
		cfg:   cfg,
		store: res.Store,
		svc:   tracker.NewService(res.Store),
		fsm:   state.NewMemoryManager(),
	}, nil
}

func openStore(cfg *Config) (tracker.Store, error) {
	switch cfg.Storage.Backend {
	case coreconfig.BackendPostgres:
		if err := coredatabase.RunMigrations(cfg.Database); err != nil {
			return nil, err
		}
		db, err := coredatabase.Connect(cfg.Database)
		if err != nil {
			return nil, err
		}
		return tracker.NewPostgresStore(db), nil
	default:
		flush := time.Duration(cfg.Storage.File.FlushIntervalSeconds) * time.Second
		return tracker.NewFileStore(cfg.Storage.File.Path, flush)
	}
}

// TelegramRunOptions assembles registry, routes and middleware for the bot runtime.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	reg := coretelegram.NewRegistry()

	reg.RegisterCommand("/start", commands.Command{
		Handler:     a.handleStart,
		Description: "Register and show your tuition menu",
	})
	reg.RegisterCommand("/stats", commands.Command{
		Handler:     a.handleStats,
		Description: "Show bot usage statistics",
		AdminOnly:   true,
		Hidden:      true,
	})

	if err := reg.RegisterButton(tracker.ButtonAddTuition, a.handleAddTuitionPrompt); err != nil {
		return coretelegram.RunOptions{}, err
	}
	if err := reg.RegisterButton(tracker.ButtonMainMenu, a.handleMainMenu); err != nil {
		return coretelegram.RunOptions{}, err
	}
	if err := reg.RegisterButton(tracker.ButtonAbout, a.handleAbout); err != nil {
		return coretelegram.RunOptions{}, err
	}

	// Attendance and delete buttons embed tuition names, so they are
	// matched by pattern in the fallback rather than by exact label.
	reg.SetTextFallback(a.handleDynamicButtons)

	state.RegisterHandler(stateAwaitingTuitionName, a.handleTuitionName)

	coreCfg := a.cfg.CoreConfig()

	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		AdminID: coreCfg.Telegram.AdminID,
	})
	routes = append(routes, router.TextRoutes(a.fsm, reg, router.TextOptions{})...)

	return coretelegram.RunOptions{
		Config:      coreCfg,
		Registry:    reg,
		Middlewares: coretelegram.DefaultMiddlewares(coreCfg, nil),
		Routes:      routes,
		OnStop: func(ctx context.Context, _ coretelegram.Runtime) error {
			if err := a.store.Close(ctx); err != nil {
				logger.STORE.Warn("store close failed",
					slog.String("event", "store.close"),
					slog.String("err", err.Error()),
				)
				return err
			}
			return nil
		},
	}, nil
}

// Package bot wires the dialog router to Telegram: commands, buttons and
// free text become dialog actions, replies go out through the shared sender.
package bot

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/m3rciful/eventbot/core/bootstrap"
	"github.com/m3rciful/eventbot/core/cmd"
	coreconfig "github.com/m3rciful/eventbot/core/config"
	"github.com/m3rciful/eventbot/core/logger"
	tg "github.com/m3rciful/eventbot/core/telegram"
	"github.com/m3rciful/eventbot/core/telegram/commands"
	tghelpers "github.com/m3rciful/eventbot/core/telegram/helpers"
	tgrouter "github.com/m3rciful/eventbot/core/telegram/router"
	"github.com/m3rciful/eventbot/core/telegram/state"
	"github.com/m3rciful/eventbot/internal/config"
	"github.com/m3rciful/eventbot/internal/dialog"
	"github.com/m3rciful/eventbot/internal/events"
	"github.com/m3rciful/eventbot/internal/listing"

	tele "gopkg.in/telebot.v4"
)

// App is the assembled event bot.
type App struct {
	cfg      *config.Config
	store    state.Store
	router   *dialog.Router
	registry *tg.Registry
}

// New builds the app from a normalized config.
func New(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bot: nil config")
	}
	source := events.NewSource(events.Options{
		Endpoint:  cfg.Upstream.GraphQLURL,
		AreaID:    cfg.Upstream.AreaID,
		PageSize:  cfg.Upstream.PageSize,
		Timeout:   cfg.Upstream.Timeout(),
		UserAgent: cfg.Upstream.UserAgent,
	})
	return newApp(cfg, source), nil
}

func newApp(cfg *config.Config, source dialog.Source) *App {
	store := state.NewMemoryStore()
	app := &App{
		cfg:   cfg,
		store: store,
		router: dialog.NewRouter(dialog.Options{
			Store:     store,
			Source:    source,
			Formatter: listing.New(cfg.Upstream.BaseURL),
			Limit:     cfg.Dialog.Limit,
			AreaName:  cfg.Dialog.AreaName,
			Location:  cfg.Dialog.Location(),
		}),
		registry: tg.NewRegistry(),
	}
	app.register()
	return app
}

// Bootstrap is the cmd.Options.Bootstrap hook: it initialises logging and
// builds the app.
func Bootstrap(carrier cmd.ConfigCarrier) (cmd.TelegramApp, error) {
	cfg, ok := carrier.(*config.Config)
	if !ok {
		return nil, fmt.Errorf("bot: unexpected config type %T", carrier)
	}
	app, err := bootstrap.Run(bootstrap.Options[*App]{
		Config: &cfg.Config,
		Provide: func(*coreconfig.Config) (*App, error) {
			return New(cfg)
		},
	})
	if err != nil {
		return nil, err
	}
	return app, nil
}

// Registry exposes the command and callback registry.
func (a *App) Registry() *tg.Registry {
	return a.registry
}

func (a *App) register() {
	a.registry.RegisterCommand("/start", commands.Command{
		Handler:     a.onCommand(dialog.KindStart),
		Description: "Show how to use the bot",
		Aliases:     []string{"/help"},
	})
	a.registry.RegisterCommand("/events", commands.Command{
		Handler:     a.onCommand(dialog.KindEvents),
		Description: "List events for a date: today, tomorrow or YYYY-MM-DD",
	})
	a.registry.RegisterCommand("/browse", commands.Command{
		Handler:     a.onCommand(dialog.KindBrowse),
		Description: "Browse events day by day",
	})
	a.registry.RegisterCommand("/search", commands.Command{
		Handler:     a.onCommand(dialog.KindSearch),
		Description: "Find an event or club by name",
	})
	a.registry.RegisterCommand("/cancel", commands.Command{
		Handler:     a.onCommand(dialog.KindCancel),
		Description: "Cancel the current search",
	})

	for _, key := range []string{dialog.CallbackPage, dialog.CallbackSearch, dialog.CallbackCancel} {
		if err := a.registry.RegisterCallback(key, a.onCallback); err != nil {
			logger.LogEvent(context.Background(), logger.TWire, slog.LevelError, "register.callback",
				slog.String("status", "fail"),
				slog.String("cb_key", key),
				slog.String("err", err.Error()),
			)
		}
	}
	a.registry.SetTextFallback(a.onText)
}

// TelegramRunOptions implements cmd.TelegramApp.
func (a *App) TelegramRunOptions() (tg.RunOptions, error) {
	core := a.cfg.CoreConfig()
	routes := tgrouter.CommandRoutes(a.registry)
	routes = append(routes, tgrouter.CallbackRoute(a.registry))
	routes = append(routes, tgrouter.TextRoutes(a.router, a.registry)...)

	return tg.RunOptions{
		Config:       core,
		Registry:     a.registry,
		Middlewares:  tg.DefaultMiddlewares(core, onLimited),
		Routes:       routes,
		UpdateFilter: tg.PrivateOnly,
	}, nil
}

// onLimited acknowledges dropped button presses so the client spinner stops.
func onLimited(c tele.Context) error {
	tghelpers.Respond(c, "Slow down a little…")
	return nil
}

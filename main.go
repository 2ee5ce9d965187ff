package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"markestedt/langra/config"
	"markestedt/langra/events"
	"markestedt/langra/notify"
	"markestedt/langra/platform"
	"markestedt/langra/storage"
	"markestedt/langra/systray"
	"markestedt/langra/web"
)

func main() {
	// Setup logging; the level follows the config file
	level := new(slog.LevelVar)
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	level.Set(cfg.SlogLevel())
	slog.Info("Configuration loaded", "path", cfg.Path())

	creds := config.NewCredentials()
	if !creds.HasCredentials(cfg.Translation) {
		slog.Warn("No API credentials stored yet; add them in the web UI", "provider", cfg.Translation.Provider)
	}

	// History is optional; the agent works without it
	var db *storage.DB
	if dir, err := config.Dir(); err == nil {
		db, err = storage.Open(dir)
		if err != nil {
			slog.Error("Failed to open history database, history disabled", "error", err)
			db = nil
		}
	}
	if db != nil {
		defer db.Close()
	}

	osImpl, err := platform.New()
	if err != nil {
		slog.Error("Failed to initialize platform", "error", err)
		os.Exit(1)
	}

	// Sinks are attached once every UI exists
	var sinks events.Multi
	deps := AgentDeps{
		OS:        osImpl,
		Clipboard: platform.NewClipboard(),
		Creds:     creds,
		Emitter:   events.EmitterFunc(func(ev events.Event) { sinks.Emit(ev) }),
	}
	if db != nil {
		deps.Store = db
	}

	agent, err := NewAgent(cfg, deps)
	if err != nil {
		slog.Error("Failed to create agent", "error", err)
		os.Exit(1)
	}

	// Setup signal handling for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	notifier := notify.New(cfg.Notifications.Enabled)

	var server *web.Server
	webURL := ""
	if cfg.Web.Enabled {
		server = web.NewServer(db, cfg, creds, agent, cfg.Web.Port)
		webURL = server.URL()
		agent.onCycle = server.BroadcastCycle
	}

	tray := systray.NewSystrayManager(agent, webURL)

	sinks = events.Multi{notifier, tray}
	if server != nil {
		sinks = append(sinks, server)
		go func() {
			if err := server.Start(ctx); err != nil {
				slog.Error("Web server error", "error", err)
			}
		}()
	}

	err = config.Watch(ctx, cfg.Path(), func(next *config.Config) {
		level.Set(next.SlogLevel())
		agent.ApplyConfig(next)
		notifier.SetEnabled(next.Notifications.Enabled)
		if server != nil {
			server.UpdateConfig(next)
		}
	})
	if err != nil {
		slog.Warn("Config hot reload disabled", "error", err)
	}

	// Run agent
	go func() {
		if err := agent.Run(ctx); err != nil {
			slog.Error("Agent error", "error", err)
		}
		tray.Stop()
	}()

	go func() {
		select {
		case <-tray.WaitForQuit():
			cancel()
		case <-ctx.Done():
		}
	}()

	// The tray owns the main thread until quit
	tray.Run()
	cancel()

	slog.Info("Langra stopped")
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/slide-scroller/overlay/internal/api"
	"github.com/slide-scroller/overlay/internal/config"
	"github.com/slide-scroller/overlay/internal/events"
	"github.com/slide-scroller/overlay/internal/lifecycle"
	"github.com/slide-scroller/overlay/internal/overlay"
	"github.com/slide-scroller/overlay/internal/slides"
	"github.com/slide-scroller/overlay/internal/store"
	"github.com/slide-scroller/overlay/internal/watcher"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	var (
		foreground   = flag.Bool("foreground", false, "also log to stderr and print the startup banner")
		debug        = flag.Bool("debug", false, "log at debug level")
		screenWidth  = flag.Int("screen-width", 1920, "work area width in pixels")
		screenHeight = flag.Int("screen-height", 1080, "work area height in pixels")
	)
	flag.Parse()

	if err := run(*foreground, *debug, overlay.Screen{Width: *screenWidth, Height: *screenHeight}); err != nil {
		slog.Error("overlay failed", "error", err)
		fmt.Fprintf(os.Stderr, "overlay: %v\n", err)
		os.Exit(1)
	}
}

func run(foreground, debug bool, screen overlay.Screen) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	logFile, err := os.OpenFile(cfg.LogPath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer logFile.Close()
	setupLogging(cfg.Log.Level, debug, foreground, logFile)

	pid := lifecycle.NewPIDFile(cfg.PIDPath())
	if err := pid.Acquire(os.Getpid()); err != nil {
		return err
	}
	defer func() {
		if err := pid.Remove(); err != nil {
			slog.Warn("removing pid file failed", "path", pid.Path(), "error", err)
		}
	}()

	fileStore, err := store.NewFileStore(cfg.DocumentPath())
	if err != nil {
		return err
	}

	w, err := watcher.New(fileStore.Path())
	if err != nil {
		// Without a watcher the overlay still runs; edits apply after restart.
		slog.Warn("file watch unavailable", "path", fileStore.Path(), "error", err)
	}

	bus := events.NewBus()
	opts := overlay.Options{
		Store:               fileStore,
		Surface:             overlay.NewHeadless(screen),
		Bus:                 bus,
		Registry:            slides.GetGlobalRegistry(),
		TickInterval:        cfg.Rotation.TickInterval,
		FrameInterval:       cfg.Rotation.FrameInterval,
		KeepOnTopInterval:   cfg.Rotation.KeepOnTopInterval,
		TransitionDuration:  cfg.Rotation.TransitionDuration,
		PlaceholderDuration: cfg.Rotation.PlaceholderDuration,
	}
	if w != nil {
		opts.Changes = w.Changes()
	}

	engine, err := overlay.New(opts)
	if err != nil {
		return fmt.Errorf("creating overlay: %w", err)
	}
	defer engine.Close()

	ctx, stop := lifecycle.NotifyContext(context.Background())
	defer stop()

	if w != nil {
		defer w.Close()
		go func() {
			if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				slog.Warn("file watch stopped", "error", err)
			}
		}()
	}

	var srv *http.Server
	if cfg.Control.Enabled {
		e := echo.New()
		api.SetupMiddleware(e, api.MiddlewareOptions{RequestLogging: cfg.Control.EnableRequestLogging})
		handlers := api.NewHandlers(&api.Dependencies{
			Runner:   engine,
			Bus:      bus,
			Shutdown: stop,
			Version:  Version,
			PID:      os.Getpid(),
		})
		defer handlers.Close()
		api.RegisterRoutes(e, handlers)

		srv = &http.Server{
			Addr:              cfg.GetServerAddr(),
			Handler:           e,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("control server failed", "addr", srv.Addr, "error", err)
			}
		}()
	}

	if foreground {
		printBanner(cfg)
	}
	slog.Info("overlay started",
		"version", Version,
		"pid", os.Getpid(),
		"document", fileStore.Path(),
		"control", cfg.Control.Enabled)

	runErr := engine.Run(ctx)

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("control server shutdown failed", "error", err)
		}
	}
	return runErr
}

func setupLogging(level string, debug, foreground bool, logFile io.Writer) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		lvl = slog.LevelInfo
	}
	if debug {
		lvl = slog.LevelDebug
	}

	out := logFile
	if foreground {
		out = io.MultiWriter(logFile, os.Stderr)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: lvl})))
}

func printBanner(cfg *config.AppConfig) {
	control := "disabled"
	if cfg.Control.Enabled {
		control = cfg.BaseURL()
	}

	fmt.Printf("\n")
	fmt.Printf("╔═══════════════════════════════════════════════════════════╗\n")
	fmt.Printf("║           Slide Scroller Overlay                          ║\n")
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Version:    %-45s║\n", Version)
	fmt.Printf("║  Build Time: %-45s║\n", BuildTime)
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Config:    %-46s║\n", cfg.ConfigDir())
	fmt.Printf("║  Document:  %-46s║\n", cfg.DocumentPath())
	fmt.Printf("║  Control:   %-46s║\n", control)
	fmt.Printf("║  Log:       %-46s║\n", cfg.LogPath())
	fmt.Printf("╚═══════════════════════════════════════════════════════════╝\n")
	fmt.Printf("\n")
}

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/omarshaarawi/hoopscores/internal/api/espn"
	"github.com/omarshaarawi/hoopscores/internal/api/nba"
	"github.com/omarshaarawi/hoopscores/internal/bot"
	"github.com/omarshaarawi/hoopscores/internal/config"
	"github.com/omarshaarawi/hoopscores/internal/gameday"
	"github.com/omarshaarawi/hoopscores/internal/repository/memory"
	"github.com/omarshaarawi/hoopscores/internal/scheduler"
	"github.com/omarshaarawi/hoopscores/internal/server"
	"github.com/omarshaarawi/hoopscores/internal/service"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Error running application", "error", err)
		os.Exit(1)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil {
		slog.Warn("No .env file loaded", "error", err)
	}

	cfg, err := config.New()
	if err != nil {
		return err
	}

	schedule, err := gameday.ParseSchedule(cfg.Rotation.ReloadSchedule)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	espnClient := espn.NewClient(cfg.ESPNAPI)
	espnAPI := espn.NewAPI(espnClient)
	feed := nba.NewAPI(espnAPI)

	clock := clockwork.NewRealClock()
	repo := memory.NewRepository()
	rotator := service.NewRotatorService(feed, repo, clock, cfg.Rotation.Interval)
	defer rotator.Close()

	hub := server.NewHub()
	rotator.AddRenderer(hub)

	if cfg.TelegramBot.Enabled() {
		telegramBot, err := bot.NewTelegramBot(cfg.TelegramBot.Token, cfg.TelegramBot.ChatID, rotator)
		if err != nil {
			return err
		}
		rotator.AddRenderer(telegramBot)

		go func() {
			if err := telegramBot.Start(ctx); err != nil {
				slog.Error("Error running telegram bot", "error", err)
			}
		}()
	}

	sched, err := scheduler.NewScheduler(rotator, schedule, clock)
	if err != nil {
		return err
	}
	if err := sched.Start(); err != nil {
		return err
	}
	defer func() {
		if err := sched.Stop(); err != nil {
			slog.Error("Error stopping scheduler", "error", err)
		}
	}()
	slog.Info("Daily reload scheduled", "schedule", schedule.String(), "next", sched.NextReload())

	go rotator.Initialize(ctx)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           server.New(ctx, rotator, sched, repo, hub, cfg.Server.AllowedOrigins).Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}
	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

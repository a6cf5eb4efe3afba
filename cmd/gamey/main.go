package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jaminalder/gamey/internal/app"
	"github.com/jaminalder/gamey/internal/bot"
	"github.com/jaminalder/gamey/internal/config"
	"github.com/jaminalder/gamey/internal/engine"
	"github.com/jaminalder/gamey/internal/web"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

func main() {
	configPath := flag.String("config", "", "path to a JSON config file")
	addr := flag.String("addr", "", "listen address, overrides the config")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	log.Logger = cfg.Logger(os.Stderr)

	if err := run(cfg); err != nil {
		log.Fatal().Err(err).Msg("exiting")
	}
}

func run(cfg config.Config) error {
	bots, err := bot.NewRegistry(
		engine.NewMinimaxBot(cfg.BotTimeBudget(), cfg.Search()),
		bot.RandomBot{},
	)
	if err != nil {
		return err
	}
	svc := app.NewService(bots, app.Limits{DefaultSize: cfg.DefaultBoardSize, MaxSize: cfg.MaxBoardSize})
	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           web.NewServer(svc),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()
	g, ctx := errgroup.WithContext(sigCtx)

	g.Go(func() error {
		log.Info().Str("addr", cfg.Addr).Strs("bots", bots.Names()).Msg("listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("graceful shutdown failed")
			return server.Close()
		}
		return nil
	})
	return g.Wait()
}

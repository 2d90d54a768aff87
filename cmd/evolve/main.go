// Package main запускает HTTP-сервер маркетплейса зарядных станций.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mmeshcher/evolve-charging/internal/account"
	"github.com/mmeshcher/evolve-charging/internal/catalog"
	"github.com/mmeshcher/evolve-charging/internal/config"
	"github.com/mmeshcher/evolve-charging/internal/handler"
	"github.com/mmeshcher/evolve-charging/internal/ledger"
	"github.com/mmeshcher/evolve-charging/internal/metrics"
	"github.com/mmeshcher/evolve-charging/internal/middleware"
	"github.com/mmeshcher/evolve-charging/internal/repository"
	"github.com/mmeshcher/evolve-charging/internal/service"
)

type storage struct {
	stations catalog.Repository
	bookings ledger.Repository
	users    account.Repository
	close    func() error
}

func newStorage(databaseURI string) (*storage, error) {
	if databaseURI == "" {
		return &storage{
			stations: repository.NewStationMemory(),
			bookings: repository.NewBookingMemory(),
			users:    repository.NewUserMemory(),
			close:    func() error { return nil },
		}, nil
	}

	repo, err := repository.NewPostgresRepository(databaseURI)
	if err != nil {
		return nil, err
	}
	return &storage{
		stations: repo,
		bookings: repo,
		users:    repo,
		close:    repo.Close,
	}, nil
}

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	sugar := logger.Sugar()

	cfg, err := config.Parse()
	if err != nil {
		sugar.Fatalw("configuration error", "error", err.Error())
	}

	store, err := newStorage(cfg.DatabaseURI)
	if err != nil {
		sugar.Fatalw("storage initialization error", "error", err.Error())
	}
	defer store.close()

	cat := catalog.New(store.stations, logger)
	acc := account.New(store.users, logger)
	led := ledger.New(store.bookings, cat, acc, logger)

	seedCtx, cancelSeed := context.WithTimeout(context.Background(), 10*time.Second)
	if err := cat.Seed(seedCtx); err != nil {
		sugar.Fatalw("seed stations error", "error", err.Error())
	}
	if err := acc.Seed(seedCtx); err != nil {
		sugar.Fatalw("seed users error", "error", err.Error())
	}
	cancelSeed()

	svc := service.NewService(cat, led, acc, service.WithLatency(cfg.SimulatedLatency))

	authMiddleware := middleware.NewAuthMiddleware(cfg.AuthSecret)
	h := handler.NewHandler(svc, logger, authMiddleware, cfg.CORSOrigins,
		handler.WithMetricsEndpoint(cfg.MetricsAddress == ""),
	)

	server := &http.Server{
		Addr:              cfg.RunAddress,
		Handler:           h.SetupRouter(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	var metricsServer *http.Server
	if cfg.MetricsAddress != "" {
		metricsServer = metrics.NewServer(cfg.MetricsAddress)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	// Запуск HTTP-сервера
	g.Go(func() error {
		sugar.Infow("starting evolve server",
			"addr", cfg.RunAddress,
			"postgres", cfg.DatabaseURI != "",
			"latency", cfg.SimulatedLatency.String(),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	if metricsServer != nil {
		g.Go(func() error {
			sugar.Infow("starting metrics server", "addr", cfg.MetricsAddress)
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return fmt.Errorf("metrics server error: %w", err)
			}
			return nil
		})
	}

	// Graceful shutdown при отмене контекста (сигнал или ошибка в другой горутине)
	g.Go(func() error {
		<-ctx.Done()
		sugar.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if metricsServer != nil {
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				sugar.Warnw("metrics server shutdown error", "error", err)
			}
		}
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		sugar.Info("server stopped gracefully")
		return nil
	})

	if err := g.Wait(); err != nil {
		sugar.Fatalw("application terminated with error", "error", err)
	}
}

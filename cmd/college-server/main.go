package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "modernc.org/sqlite"

	"github.com/soumya813/college/internal/config"
	dbpkg "github.com/soumya813/college/internal/db"
	"github.com/soumya813/college/internal/httpapi"
	"github.com/soumya813/college/internal/ledger/service"
	"github.com/soumya813/college/internal/ledger/store/sqlite"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "college-server ", log.LstdFlags|log.LUTC)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Storage
	conn, err := dbpkg.Open(ctx, dbpkg.Config{Path: cfg.DBPath, Env: cfg.Env})
	if err != nil {
		logger.Fatalf("open db: %v", err)
	}
	defer conn.Close()

	if cfg.Env == "dev" {
		if err := dbpkg.SeedDev(ctx, conn, dbpkg.SeedDevOptions{}); err != nil {
			logger.Printf("seed dev data: %v", err)
		}
	}

	writer := dbpkg.NewWorker(conn)
	defer writer.Close()

	eventStore := sqlite.NewEventStore(conn, writer)

	// Services
	policy := service.ReadErrorPolicy(cfg.ReadErrorPolicy)
	resolver := service.NewStatusResolver(eventStore, policy)
	coordinator := service.NewCoordinator(eventStore, resolver, service.Options{
		Location:        cfg.Location,
		ReadErrorPolicy: policy,
	})

	// HTTP
	srv := httpapi.NewServer(httpapi.Dependencies{
		Logger:      logger,
		Addr:        cfg.HTTPAddr,
		Coordinator: coordinator,
	})

	go func() {
		logger.Printf("listening on %s", cfg.HTTPAddr)
		if err := srv.Start(); err != nil {
			logger.Printf("server error: %v", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

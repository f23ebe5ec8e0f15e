package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mcvillena/Gatelog/server/internal/config"
	"github.com/mcvillena/Gatelog/server/internal/db"
	"github.com/mcvillena/Gatelog/server/internal/gatelog/service"
	"github.com/mcvillena/Gatelog/server/internal/gatelog/store"
	"github.com/mcvillena/Gatelog/server/internal/gatelog/store/csvfile"
	"github.com/mcvillena/Gatelog/server/internal/gatelog/store/sqlite"
	"github.com/mcvillena/Gatelog/server/internal/httpapi"
)

func main() {
	logger := log.New(os.Stdout, "gatelog-server ", log.LstdFlags|log.LUTC)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := db.Open(ctx, db.Config{Path: cfg.DBPath, Env: cfg.Env})
	if err != nil {
		logger.Fatalf("open db: %v", err)
	}
	defer conn.Close()

	writer := db.NewWorker(conn)
	defer writer.Close()

	if cfg.Env == "dev" {
		if err := db.SeedDev(ctx, conn); err != nil {
			logger.Fatalf("seed dev roster: %v", err)
		}
	}

	// Stores: partitions live as CSV files (the reporting contract);
	// the roster comes from a provisioning CSV when configured, else
	// from the sqlite roster table; tap audit always goes to sqlite.
	partitions := csvfile.NewPartitionStore(cfg.RecordsDir)
	var roster store.RosterStore
	if cfg.RosterPath != "" {
		roster = csvfile.NewRosterStore(cfg.RosterPath)
	} else {
		roster = sqlite.NewRosterStore(conn, writer)
	}
	events := sqlite.NewTapEventStore(conn, writer)

	// Services
	policy := service.DefaultSessionPolicy()
	policy.AutoCloseTime = cfg.AutoCloseTime

	locks := service.NewPartitionLocks()
	directory := service.NewDirectory(roster)
	tapSvc := service.NewTapService(directory, partitions, events, policy, locks)
	visitSvc := service.NewVisitService(partitions, locks, cfg.StudentIDDigits)

	terms := make([]service.Term, 0, len(cfg.Terms))
	for _, t := range cfg.Terms {
		terms = append(terms, service.Term{Key: t.Key, Label: t.Label, Start: t.Start, End: t.End})
	}
	merger := service.NewMerger(partitions, logger)
	reportSvc := service.NewReportService(
		partitions, merger, csvfile.NewReportWriter(cfg.RecordsDir), terms, logger)

	sweeper := service.NewStaleSweeper(partitions, locks, policy,
		service.SweeperConfig{IntervalHours: cfg.SweepIntervalHours}, logger)
	sweeper.Start(ctx)

	// HTTP
	srv := httpapi.NewServer(httpapi.Dependencies{
		Logger:        logger,
		Addr:          cfg.HTTPAddr,
		AdminKey:      cfg.AdminKey,
		TapService:    tapSvc,
		VisitService:  visitSvc,
		ReportService: reportSvc,
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
	sweeper.Stop()
}

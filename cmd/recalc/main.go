// Command recalc recomputes the points of a closed stableford event and,
// optionally, the championship hub that links it.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/jessevdk/go-flags"

	"github.com/Dosada05/golf-association/config"
	"github.com/Dosada05/golf-association/db"
	"github.com/Dosada05/golf-association/repositories"
	"github.com/Dosada05/golf-association/services"
)

type options struct {
	Event        string        `short:"e" long:"event" description:"event whose classification points are recomputed"`
	Championship string        `short:"c" long:"championship" description:"event holding the championship hub to recompute"`
	Actor        string        `short:"a" long:"actor" default:"system" description:"actor recorded in the hub history"`
	Timeout      time.Duration `long:"timeout" default:"30s" description:"overall deadline"`
}

func main() {
	var opts options
	if _, err := flags.Parse(&opts); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(2)
	}
	if opts.Event == "" && opts.Championship == "" {
		slog.Error("nothing to do: pass --event and/or --championship")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))

	if err := run(logger, cfg, opts); err != nil {
		logger.Error("recalc failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(logger *slog.Logger, cfg *config.Config, opts options) error {
	ctx, cancel := context.WithTimeout(context.Background(), opts.Timeout)
	defer cancel()

	dbConn, err := db.Connect(ctx, cfg.DatabaseURL, db.Options{MaxOpenConns: 4})
	if err != nil {
		return err
	}
	defer dbConn.Close()

	eventRepo := repositories.NewPostgresEventRepository(dbConn)
	profileRepo := repositories.NewPostgresProfileRepository(dbConn)
	auditRepo := repositories.NewPostgresClassificationAuditRepository(dbConn)

	// no publisher or hub: standings are stored, the site picks them up on
	// the next server-side recompute
	championships := services.NewChampionshipService(eventRepo, profileRepo, nil, nil, logger)
	events := services.NewEventService(eventRepo, profileRepo, auditRepo, championships, nil, logger)

	if opts.Event != "" {
		points, err := events.RecalculatePoints(ctx, opts.Event)
		if err != nil {
			return err
		}
		logger.Info("event points recalculated", slog.String("event_id", opts.Event), slog.Int("categories", len(points)))
	}

	if opts.Championship != "" {
		st, err := championships.RecomputeEvent(ctx, opts.Actor, opts.Championship)
		if err != nil {
			return err
		}
		logger.Info("championship recomputed",
			slog.String("event_id", opts.Championship),
			slog.Int("events", len(st.Events)),
			slog.Time("updated_at", st.UpdatedAt),
		)
	}
	return nil
}

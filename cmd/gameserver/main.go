// Package main provides the game server binary: it loads content,
// restores the saved profile from PostgreSQL, and runs the simulation
// tick loop until terminated.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/pokengu/idlemon/internal/config"
	"github.com/pokengu/idlemon/internal/content"
	"github.com/pokengu/idlemon/internal/game/notify"
	"github.com/pokengu/idlemon/internal/game/rng"
	"github.com/pokengu/idlemon/internal/game/session"
	"github.com/pokengu/idlemon/internal/game/tick"
	"github.com/pokengu/idlemon/internal/observability"
	"github.com/pokengu/idlemon/internal/server"
	"github.com/pokengu/idlemon/internal/storage/postgres"
)

const shutdownTimeout = 10 * time.Second

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	profileID := flag.String("profile", postgres.DefaultProfileID, "profile to load and save")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("starting game server", zap.String("profile", *profileID))

	contentStart := time.Now()
	loaded, err := content.Load(cfg.Content)
	if err != nil {
		logger.Fatal("loading content", zap.Error(err))
	}
	logger.Info("content loaded",
		zap.Int("species", loaded.Species.Len()),
		zap.Int("regions", loaded.Regions.Len()),
		zap.Int("items", len(loaded.Items)),
		zap.Int("jobs", len(loaded.Jobs)),
		zap.Duration("elapsed", time.Since(contentStart)),
	)

	dbStart := time.Now()
	pool, err := postgres.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("connecting to database", zap.Error(err))
	}
	defer pool.Close()
	logger.Info("database connected",
		zap.String("host", cfg.Database.Host),
		zap.Duration("elapsed", time.Since(dbStart)),
	)

	repo := postgres.NewSnapshotRepository(pool, *profileID)

	game := session.NewGame(
		cfg.Balance, cfg.Game, loaded,
		repo,
		notify.NewLogger(logger.Named("notify")),
		rng.NewCryptoSource(),
		logger.Named("game"),
	)
	if err := game.Load(ctx); err != nil {
		logger.Fatal("loading profile", zap.Error(err))
	}

	sched := tick.NewScheduler(cfg.Game.TickInterval, cfg.Game.SaveInterval, repo, logger.Named("tick"))
	game.Register(ctx, sched)

	runner := server.NewRunner(server.SimulationFuncs{
		RunFn: func(runCtx context.Context) error {
			sched.CatchUp(runCtx)
			sched.Start(runCtx)
			<-runCtx.Done()
			return nil
		},
		ShutdownFn: func(saveCtx context.Context) error {
			sched.Stop()
			return game.Close(saveCtx)
		},
	}, shutdownTimeout, logger)

	logger.Info("game server ready", zap.Duration("startup", time.Since(start)))
	if err := runner.Run(ctx); err != nil {
		logger.Fatal("game server exited with error", zap.Error(err))
	}
}

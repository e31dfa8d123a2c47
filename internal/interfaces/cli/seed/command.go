// Package seed implements the command that runs the full migration
// pipeline once.
package seed

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"waveline/internal/acl"
	"waveline/internal/collector"
	"waveline/internal/infrastructure/auth"
	"waveline/internal/infrastructure/cache"
	"waveline/internal/infrastructure/config"
	"waveline/internal/infrastructure/database"
	"waveline/internal/infrastructure/migration"
	"waveline/internal/materializer"
	"waveline/internal/pipeline"
	"waveline/internal/shared/db"
	"waveline/internal/shared/logger"
)

var sourceURL string

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Run the one-shot migration pipeline",
		Long: `Scrape the remote event dataset, normalize it into a relational
entity graph, load it into the relational store inside one transaction and
seed the ACL graph into both the cache store and the relational store.`,
		RunE: run,
	}

	cmd.Flags().StringVar(&sourceURL, "source", "", "Source API base URL (overrides config)")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if sourceURL != "" {
		cfg.Source.BaseURL = sourceURL
	}

	if err := logger.Init(&cfg.Logger); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("starting seed run", "source", cfg.Source.BaseURL)

	if err := database.Init(&cfg.Database); err != nil {
		logger.Error("failed to initialize database", "error", err)
		return err
	}
	defer database.Close()

	ctx := cmd.Context()

	if err := cache.Init(ctx, &cfg.Redis); err != nil {
		logger.Error("failed to initialize redis", "error", err)
		return err
	}
	defer cache.Close()

	if err := migration.Run(database.Get()); err != nil {
		logger.Error("failed to migrate schema", "error", err)
		return err
	}

	client := collector.NewClient(
		cfg.Source.BaseURL,
		time.Duration(cfg.Source.TimeoutSeconds)*time.Second,
		time.Duration(cfg.Source.RequestDelayMS)*time.Millisecond,
		logger.WithComponent("collector"),
	)

	p := pipeline.New(
		collector.NewCollector(client, cfg.Source.PageLimit, logger.WithComponent("collector")),
		materializer.NewMaterializer(
			db.NewTransactionManager(database.Get()),
			auth.NewBcryptPasswordHasher(cfg.Seed.BcryptCost),
			materializer.AdminAccount{
				Username: cfg.Seed.AdminUsername,
				Email:    cfg.Seed.AdminEmail,
				Password: cfg.Seed.AdminPassword,
			},
			logger.WithComponent("materializer"),
		),
		acl.NewSeeder(
			acl.NewRedisStore(cache.Get(), cfg.Redis.KeyPrefix),
			acl.NewGormStore(database.Get()),
			acl.NewRedisStore(cache.Get(), cfg.Redis.KeyPrefix),
			logger.WithComponent("acl"),
		),
		cfg.Seed.AdminUsername,
		logger.WithComponent("pipeline"),
	)

	if err := p.Run(ctx); err != nil {
		logger.Error("seed run failed", "error", err)
		return err
	}

	logger.Info("seed run complete")
	return nil
}

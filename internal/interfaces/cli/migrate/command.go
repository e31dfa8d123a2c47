// Package migrate implements the schema migration command.
package migrate

import (
	"fmt"

	"github.com/spf13/cobra"

	"waveline/internal/infrastructure/config"
	"waveline/internal/infrastructure/database"
	"waveline/internal/infrastructure/migration"
	"waveline/internal/shared/logger"
)

func NewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the destination schema",
		RunE:  run,
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(&cfg.Logger); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := database.Init(&cfg.Database); err != nil {
		logger.Error("failed to initialize database", "error", err)
		return err
	}
	defer database.Close()

	return migration.Run(database.Get())
}

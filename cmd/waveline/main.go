package main

import (
	"os"

	"github.com/spf13/cobra"

	"waveline/internal/interfaces/cli/migrate"
	"waveline/internal/interfaces/cli/seed"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "waveline",
		Short: "Waveline - event archive migration tooling",
		Long:  `Waveline migrates the legacy event archive into the relational and cache stores, synthesizing anonymized identities and the access-control graph along the way.`,
	}

	rootCmd.AddCommand(
		seed.NewCommand(),
		migrate.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

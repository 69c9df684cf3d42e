package cmd

import (
	"phone-shop/internal/database"
	"phone-shop/internal/logger"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, _, err := openEngine()
		if err != nil {
			return err
		}
		defer database.Close(db)

		log := logger.WithComponent("migrate")
		log.Info().Str("path", cfg.Database.Path).Msg("database schema is up to date")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

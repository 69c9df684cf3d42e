package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"phone-shop/internal/config"
	"phone-shop/internal/database"
	"phone-shop/internal/logger"
	"phone-shop/internal/service"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var version = "1.0.0"

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "phone-shop",
	Short: "Phone shop point of sale and settlement ledger",
	Long: `phone-shop records sales, debts, loans and purchases of a mobile
phone shop that trades in USD and a local currency (LC).

Every money-moving operation updates the cash balance and appends a row
to the transaction log in the same database transaction.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return err
		}
		return logger.Setup(cfg.GetLoggerConfig())
	},
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log := logger.WithComponent("cmd")
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default ./config.yaml if present)")
}

// openEngine opens the database, migrates it and builds the ledger engine.
func openEngine() (*gorm.DB, *service.Engine, error) {
	if dir := filepath.Dir(cfg.Database.Path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("create data dir: %w", err)
		}
	}
	db, err := database.Init(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("init database: %w", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		_ = database.Close(db)
		return nil, nil, fmt.Errorf("migrate database: %w", err)
	}
	return db, service.NewEngine(db, service.OptionsFromConfig(cfg.Ledger)), nil
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"phone-shop/internal/database"
	"phone-shop/internal/logger"
	"phone-shop/internal/router"
	"phone-shop/internal/util"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Example: `  # listen on the configured address
  phone-shop serve

  # override the port
  phone-shop serve --port 9000`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 0, "Port to listen on (overrides server.port)")
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("serve")

	if port, _ := cmd.Flags().GetInt("port"); port > 0 {
		cfg.Server.Port = port
	}
	if cfg.JWT.Secret == "" {
		secret, err := util.RandomString(48)
		if err != nil {
			return fmt.Errorf("generate jwt secret: %w", err)
		}
		cfg.JWT.Secret = secret
		log.Warn().Msg("jwt.secret is empty, using a random secret; tokens will not survive a restart")
	}

	db, eng, err := openEngine()
	if err != nil {
		return err
	}
	defer database.Close(db)

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.Server.Port),
		Handler:           router.SetupRouter(cfg, db, eng),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("run server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"madchef/internal/app"
	"madchef/internal/config"
	"madchef/internal/db/migrations"
	"madchef/internal/utils"
)

var rootCmd = &cobra.Command{
	Use:          "madchef",
	Short:        "Mad Chef recipe and cooking-education API",
	SilenceUsage: true,
	RunE:         runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	RunE:  runMigrate,
}

func init() {
	migrateCmd.Flags().Bool("rollback", false, "roll back the last migration group instead")
	rootCmd.AddCommand(serveCmd, migrateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func bootstrap() (config.Env, *zap.Logger, error) {
	env, err := config.LoadEnv()
	if err != nil {
		return env, nil, fmt.Errorf("config: %w", err)
	}
	log, err := utils.NewLogger(env.AppEnv, env.LogLevel)
	if err != nil {
		return env, nil, fmt.Errorf("logger: %w", err)
	}
	return env, log, nil
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	env, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx := cmd.Context()
	bdb, err := config.OpenDB(ctx, env)
	if err != nil {
		log.Error("database unavailable", zap.Error(err))
		return err
	}
	defer bdb.Close()

	if rollback, _ := cmd.Flags().GetBool("rollback"); rollback {
		return migrations.Down(ctx, bdb, log)
	}
	return migrations.Up(ctx, bdb, log)
}

func runServe(cmd *cobra.Command, _ []string) error {
	env, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}

	bdb, err := config.OpenDB(cmd.Context(), env)
	if err != nil {
		log.Error("database unavailable", zap.Error(err))
		return err
	}
	defer bdb.Close()

	store, closeCache := app.NewCache(env, log)
	defer closeCache()

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           app.NewEngine(env, log, bdb, store, app.Clients{}),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", env.AppAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-errCh:
		if err != nil {
			log.Error("server failed", zap.Error(err))
			return err
		}
	case <-quit:
	}

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("shutdown failed", zap.Error(err))
		return err
	}
	log.Info("server stopped")
	return nil
}

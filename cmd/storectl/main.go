// Package main provides storectl, the maintenance CLI for the storefront
// stores. Logs go to stderr so command output can be piped.
package main

import (
	"context"
	"fmt"
	"os"

	"storefront/internal/app"
	"storefront/internal/config"
	"storefront/internal/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	cfg        *config.Config
	log        *zap.Logger
	storefront *app.App
)

func main() {
	err := rootCmd.Execute()
	// PersistentPostRunE is skipped when a command fails
	if closeErr := closeStorefront(context.Background()); err == nil {
		err = closeErr
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "storectl",
	Short: "storectl manages the storefront collections",
	Long: `storectl reads and writes the storefront collections through the same
repositories as the API: the remote tables when configured, the local
JSON document otherwise. Configuration comes from the environment and .env.`,
	SilenceUsage:      true,
	PersistentPreRunE: initStorefront,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeStorefront(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(migrateCmd)
}

// initStorefront loads config and, for commands that touch data, wires the
// backends.
func initStorefront(cmd *cobra.Command, args []string) error {
	cfg = config.Load()
	log = logger.NewForWriter(cfg.Server.Env, zapcore.AddSync(os.Stderr))

	// token only signs
	if cmd.Name() == tokenCmd.Name() {
		return nil
	}

	a, err := app.New(contextOf(cmd), cfg, log, app.Options{
		TraceOutput:    os.Stderr,
		SkipMigrations: true,
	})
	if err != nil {
		return fmt.Errorf("initialize storefront: %w", err)
	}
	storefront = a
	return nil
}

// closeStorefront flushes pending writes and releases connections
func closeStorefront(ctx context.Context) error {
	if log != nil {
		defer log.Sync()
	}
	if storefront == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	err := storefront.Close(ctx)
	storefront = nil
	return err
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

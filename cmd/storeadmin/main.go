// Command storeadmin is the operator CLI: schema migration, admin seeding and
// product spreadsheet import/export.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"storeadmin/internal/config"
	"storeadmin/internal/logger"
	"storeadmin/internal/repositories"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Version = "dev"

func main() {
	config.LoadEnv()

	rootCmd := &cobra.Command{
		Use:           "storeadmin",
		Short:         "storeadmin - operator tooling for the store backend",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().Bool("verbose", false, "log at debug level")

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedAdminCmd())
	rootCmd.AddCommand(exportProductsCmd())
	rootCmd.AddCommand(importProductsCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// env opens the database for a single command run. The returned cleanup
// closes it and flushes the logger.
func env(cmd *cobra.Command) (*config.Config, *gorm.DB, *zap.Logger, func(), error) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	if err := logger.Init(verbose); err != nil {
		return nil, nil, nil, nil, err
	}
	log := logger.L()
	cfg := config.Load()

	db, err := repositories.Open(commandContext(cmd), cfg.DB, log)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	cleanup := func() {
		if err := repositories.Close(db); err != nil {
			log.Warn("failed to close database", zap.Error(err))
		}
		logger.Sync()
	}
	return cfg, db, log, cleanup, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

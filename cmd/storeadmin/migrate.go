package main

import (
	"fmt"

	"storeadmin/internal/migrate"

	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	var skipTriggers bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, log, cleanup, err := env(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			opt := migrate.DefaultOptions()
			opt.CreateUpdatedAtTrigger = !skipTriggers
			if err := migrate.Run(commandContext(cmd), db, log, opt); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			fmt.Println("Schema is up to date")
			return nil
		},
	}

	cmd.Flags().BoolVar(&skipTriggers, "skip-triggers", false, "do not install the updated_at triggers")
	return cmd
}

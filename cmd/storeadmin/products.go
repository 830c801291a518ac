package main

import (
	"fmt"
	"os"

	"storeadmin/internal/repositories"
	"storeadmin/internal/services/catalog"
	"storeadmin/internal/storage"

	"github.com/spf13/cobra"
)

func exportProductsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export-products [file.xlsx]",
		Short: "Write every product to a spreadsheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := catalogService(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			f, err := os.Create(args[0])
			if err != nil {
				return err
			}
			if err := svc.Export(commandContext(cmd), f); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Printf("Products exported to %s\n", args[0])
			return nil
		},
	}
}

func importProductsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import-products [file.xlsx]",
		Short: "Create or update products from a spreadsheet, matched by SKU",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := catalogService(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			info, err := f.Stat()
			if err != nil {
				return err
			}

			res, err := svc.Import(commandContext(cmd), f, info.Size())
			if err != nil {
				return err
			}
			fmt.Printf("Created %d, updated %d, skipped %d\n", res.Created, res.Updated, res.Skipped)
			for _, e := range res.Errors {
				fmt.Printf("  row %d (%s): %s\n", e.Row, e.SKU, e.Message)
			}
			return nil
		},
	}
}

// catalogService builds the catalog without a cache; the API's cached
// entries expire on their own TTL.
func catalogService(cmd *cobra.Command) (catalog.Service, func(), error) {
	cfg, db, log, cleanup, err := env(cmd)
	if err != nil {
		return nil, nil, err
	}
	assets, err := storage.NewLocalStore(cfg.UploadDir, cfg.UploadBaseURL)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return catalog.NewService(repositories.New(db), assets, nil, 0, log), cleanup, nil
}

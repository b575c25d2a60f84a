package main

import (
	"errors"

	"library-backend/internal/adapter/repository/gormkv"

	"github.com/spf13/cobra"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the SQL record table",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()
			if a.db == nil {
				return errors.New("migrate needs STORE_BACKEND=sql")
			}
			if err := gormkv.Migrate(a.db); err != nil {
				return err
			}
			a.log.Info("migration complete")
			return nil
		},
	}
}

package main

import (
	"encoding/json"

	"library-backend/internal/domain/actor"

	"github.com/spf13/cobra"
)

func newReconcileCommand() *cobra.Command {
	var operator string
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Recompute every book's available copies from its open loans",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()
			report, err := a.books().Reconcile(cmd.Context(), actor.Staff(operator))
			if report != nil {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if encErr := enc.Encode(report); encErr != nil && err == nil {
					err = encErr
				}
			}
			return err
		},
	}
	cmd.Flags().StringVar(&operator, "operator", "cli", "identification recorded as the acting staff member")
	return cmd
}

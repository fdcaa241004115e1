package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"depotChangeManagement/internal/db"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Opening the database applies pending migrations.
			a, err := openApp(false)
			if err != nil {
				return err
			}
			defer a.close()
			a.log.Info("schema is up to date")
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Revert the last applied migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(false)
			if err != nil {
				return err
			}
			defer a.close()
			v, err := db.RollbackLast(a.db)
			if err != nil {
				return err
			}
			if v == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "nothing to roll back")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "rolled back migration %04d\n", v)
			return nil
		},
	})
	return cmd
}

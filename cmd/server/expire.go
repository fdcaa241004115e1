package main

import (
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/spf13/cobra"
)

func newExpireCmd() *cobra.Command {
	var at string
	cmd := &cobra.Command{
		Use:   "expire",
		Short: "Expire COD requests whose decision window has passed",
		RunE: func(cmd *cobra.Command, args []string) error {
			now := time.Now()
			if at != "" {
				t, err := time.Parse(time.RFC3339, at)
				if err != nil {
					return errors.Wrap(err, "invalid --at")
				}
				now = t
			}
			a, err := openApp(false)
			if err != nil {
				return err
			}
			defer a.close()

			svc, _, err := a.service()
			if err != nil {
				return err
			}
			n, err := svc.ExpireStale(cmd.Context(), now)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "expired %d request(s)\n", n)
			return nil
		},
	}
	cmd.Flags().StringVar(&at, "at", "", "reference time (RFC3339); defaults to now")
	return cmd
}

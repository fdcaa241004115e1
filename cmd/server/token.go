package main

import (
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/spf13/cobra"

	"depotChangeManagement/internal/auth"
	"depotChangeManagement/repository"
)

func newTokenCmd() *cobra.Command {
	var (
		username string
		ttl      time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for an existing user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" {
				return errors.New("--user is required")
			}
			a, err := openApp(false)
			if err != nil {
				return err
			}
			defer a.close()

			u, err := repository.NewUserRepository(a.db).GetByUsername(cmd.Context(), username)
			if err != nil {
				return err
			}
			if u == nil {
				return errors.Errorf("user %q not found", username)
			}
			tok, err := auth.IssueToken(a.cfg.Auth.JWTSecret, u.Username, string(u.Role), ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "user", "", "username")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime; 0 for no expiry")
	return cmd
}

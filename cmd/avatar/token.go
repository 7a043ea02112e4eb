package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/memohai/avatar/internal/auth"
)

func newTokenCommand() *cobra.Command {
	var (
		userID int64
		email  string
		ttl    string
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for an account id",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if ttl == "" {
				ttl = cfg.Auth.JWTExpiresIn
			}
			expiresIn, err := time.ParseDuration(ttl)
			if err != nil {
				return fmt.Errorf("invalid ttl: %w", err)
			}
			token, expiresAt, err := auth.GenerateToken(userID, email, cfg.Auth.JWTSecret, expiresIn)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires at %s\n", expiresAt.Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().Int64Var(&userID, "user-id", 0, "account id to put in the token")
	cmd.Flags().StringVar(&email, "email", "", "optional email claim")
	cmd.Flags().StringVar(&ttl, "ttl", "", "token lifetime (defaults to auth.jwt_expires_in)")
	_ = cmd.MarkFlagRequired("user-id")
	return cmd
}

package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/joestump/room-reviews/internal/auth"
	"github.com/joestump/room-reviews/internal/config"
)

func newTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage bearer tokens",
	}
	cmd.AddCommand(newTokenIssueCmd())
	return cmd
}

func newTokenIssueCmd() *cobra.Command {
	var userRef string
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Issue a bearer token for a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if userRef == "" {
				return errors.New("--user is required")
			}
			return withBackend(func(ctx context.Context, cfg *config.Config, b *backend) error {
				u, err := findUser(ctx, b.users, userRef)
				if err != nil {
					return err
				}
				if ttl == 0 {
					ttl = cfg.Auth.TokenTTL
				}
				tokens, err := auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.Issuer, ttl)
				if err != nil {
					return err
				}
				token, exp, err := tokens.Issue(u.ID)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), token)
				fmt.Fprintf(cmd.ErrOrStderr(), "token for %s expires %s\n", u.Email, exp.Format(time.RFC3339))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&userRef, "user", "", "user id or email")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (default auth.token_ttl)")
	return cmd
}

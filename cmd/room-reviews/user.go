package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/joestump/room-reviews/internal/config"
	"github.com/joestump/room-reviews/internal/policy"
	"github.com/joestump/room-reviews/internal/store"
)

// withBackend loads config, opens the stores and runs fn.
func withBackend(fn func(ctx context.Context, cfg *config.Config, b *backend) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	flush, err := setupLogger(cfg)
	if err != nil {
		return err
	}
	defer flush()

	ctx := context.Background()
	b, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = b.close() }()
	return fn(ctx, cfg, b)
}

// findUser resolves ref as a user id first, then as an email.
func findUser(ctx context.Context, users store.UserStore, ref string) (*store.User, error) {
	u, err := users.GetByID(ctx, ref)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	u, err = users.GetByEmail(ctx, ref)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("no user with id or email %q", ref)
	}
	return u, err
}

func parseRole(role string) (string, error) {
	role = strings.ToUpper(strings.TrimSpace(role))
	if !policy.ValidRole(role) {
		return "", fmt.Errorf("role must be %s or %s, got %q", policy.RoleUser, policy.RoleAdmin, role)
	}
	return role, nil
}

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}
	cmd.AddCommand(newUserCreateCmd(), newUserListCmd(), newUserSetRoleCmd())
	return cmd
}

func newUserCreateCmd() *cobra.Command {
	var name, role string
	cmd := &cobra.Command{
		Use:   "create <email>",
		Short: "Create a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := parseRole(role)
			if err != nil {
				return err
			}
			return withBackend(func(ctx context.Context, _ *config.Config, b *backend) error {
				u, err := b.users.Create(ctx, args[0], name, r)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", u.ID, u.Email, u.Role)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&role, "role", policy.RoleUser, "USER or ADMIN")
	return cmd
}

func newUserListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(func(ctx context.Context, _ *config.Config, b *backend) error {
				users, err := b.users.ListAll(ctx)
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tEMAIL\tROLE\tNAME")
				for _, u := range users {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", u.ID, u.Email, u.Role, u.DisplayName)
				}
				return tw.Flush()
			})
		},
	}
}

func newUserSetRoleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-role <id|email> <USER|ADMIN>",
		Short: "Change a user's role",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			role, err := parseRole(args[1])
			if err != nil {
				return err
			}
			return withBackend(func(ctx context.Context, _ *config.Config, b *backend) error {
				u, err := findUser(ctx, b.users, args[0])
				if err != nil {
					return err
				}
				u, err = b.users.UpdateRole(ctx, u.ID, role)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", u.ID, u.Email, u.Role)
				return nil
			})
		},
	}
}

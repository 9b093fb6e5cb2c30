package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iyunix/go-gemchat/internal/repository"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApplication()
			if err != nil {
				return err
			}
			defer app.Close()
			fmt.Fprintln(cmd.OutOrStdout(), "Database schema is up to date.")
			return nil
		},
	}
}

func newSeedAdminCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed-admin",
		Short: "Create the initial admin from INITIAL_ADMIN_* unless it exists",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApplication()
			if err != nil {
				return err
			}
			defer app.Close()

			created, err := app.SeedAdmin(cmd.Context())
			if err != nil {
				return err
			}
			if created {
				fmt.Fprintf(cmd.OutOrStdout(), "Created admin user %q.\n", app.Config.InitialAdminUsername)
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "Admin user already exists, nothing to do.")
			}
			return nil
		},
	}
}

func newUsersCmd() *cobra.Command {
	users := &cobra.Command{
		Use:   "users",
		Short: "Manage user accounts",
	}
	users.AddCommand(&cobra.Command{
		Use:   "delete <username>",
		Short: "Delete a user with all their conversations and messages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApplication()
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.UserService.DeleteUser(cmd.Context(), args[0]); err != nil {
				if errors.Is(err, repository.ErrUserNotFound) {
					return fmt.Errorf("user %q not found", args[0])
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted user %q.\n", args[0])
			return nil
		},
	})
	return users
}

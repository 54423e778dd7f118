package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/school-newsroom-api/internal/database"
	"github.com/school-newsroom-api/internal/models"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	withDB := func(fn func(db *database.DB, path string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := database.New(&cfg.Database, log)
			if err != nil {
				return err
			}
			defer db.Close()
			return fn(db, cfg.Database.MigrationsPath)
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: withDB(func(db *database.DB, path string) error {
				return db.RunMigrations(path)
			}),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the last migration",
			Args:  cobra.NoArgs,
			RunE: withDB(func(db *database.DB, path string) error {
				return db.MigrateDown(path)
			}),
		},
		&cobra.Command{
			Use:   "to <version>",
			Short: "Migrate up or down to a specific version",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				version, err := strconv.ParseUint(args[0], 10, 32)
				if err != nil {
					return fmt.Errorf("invalid version %q", args[0])
				}
				return withDB(func(db *database.DB, path string) error {
					return db.MigrateToVersion(path, uint(version))
				})(cmd, args)
			},
		},
	)
	return cmd
}

func setupAdminCmd() *cobra.Command {
	var in models.SetupInput

	cmd := &cobra.Command{
		Use:   "setup-admin",
		Short: "Create the first admin account",
		Long:  "Creates an approved admin account. Refused once any admin exists.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if in.Password == "" {
				in.Password = os.Getenv("ADMIN_PASSWORD")
			}
			in.PasswordConfirm = in.Password

			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			user, err := a.services.Access.Setup(ctx, &in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Admin %s <%s> created (id %s)\n", user.Name, user.Email, user.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Name, "name", "", "Display name")
	cmd.Flags().StringVar(&in.Email, "email", "", "Sign-in email")
	cmd.Flags().StringVar(&in.Password, "password", "", "Password (defaults to $ADMIN_PASSWORD)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func seedCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed-categories <file.yaml>",
		Short: "Create categories from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := a.services.Seed.SeedCategories(cmd.Context(), f)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "created %d, skipped %d, invalid %d\n", result.Created, result.Skipped, len(result.Errors))
			for _, e := range result.Errors {
				fmt.Fprintf(out, "  %s: %s\n", e.Field, e.Message)
			}
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "newsroom %s\n", Version)
		},
	}
}

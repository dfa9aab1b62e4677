package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"finance-tracker-backend/internal/auth"
	"finance-tracker-backend/internal/mail"
	"finance-tracker-backend/internal/session"
	"finance-tracker-backend/internal/store"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger := setup()
			st, err := openPostgres(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer st.Close()
			logger.Info("Migration completed successfully")
			return nil
		},
	}
}

func newSeedDemoCommand() *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "seed-demo",
		Short: "Seed demo transactions for a user (idempotent)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger := setup()
			st, err := openPostgres(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer st.Close()

			user, err := st.UserByEmail(cmd.Context(), email)
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("no user with email %s", email)
			}
			if err != nil {
				return err
			}
			n, err := store.SeedDemo(cmd.Context(), st, user.ID, time.Now())
			if err != nil {
				return fmt.Errorf("seeding demo data failed: %w", err)
			}
			if n == 0 {
				logger.Info("User already has transactions, nothing seeded", "email", email)
				return nil
			}
			logger.Info("Demo data seeded", "email", email, "transactions", n)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email of the user to seed")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newCreateUserCommand() *cobra.Command {
	var name, email, password string
	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create a user with the default categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger := setup()

			if password == "" {
				fmt.Fprint(cmd.OutOrStdout(), "Password: ")
				var err error
				password, err = readPassword(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("failed to read password: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout())
			}
			if strings.TrimSpace(password) == "" {
				return errors.New("password cannot be empty")
			}

			st, err := openPostgres(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer st.Close()

			authSvc := auth.NewService(st, session.NewMemory(cfg.SessionTTL), mail.NewLogMailer(logger), cfg.SessionSecret, cfg.AppBaseURL, logger)
			user, err := authSvc.CreateUser(cmd.Context(), name, email, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "User %s created successfully with ID %s\n", user.Email, user.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&password, "password", "", "password (prompted when omitted)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

// readPassword reads without echo from a terminal and falls back to one
// line of input otherwise.
func readPassword(stdin io.Reader) (string, error) {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	scanner := bufio.NewScanner(stdin)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

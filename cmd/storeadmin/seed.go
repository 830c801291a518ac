package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"storeadmin/internal/models"
	"storeadmin/internal/repositories"
	"storeadmin/internal/services/auth"

	"github.com/spf13/cobra"
)

func seedAdminCmd() *cobra.Command {
	var email, password, fullName, phone string

	cmd := &cobra.Command{
		Use:   "seed-admin",
		Short: "Create the first admin account",
		Long: `Create an admin account unless one with the same email exists.

Flags fall back to ADMIN_EMAIL, ADMIN_PASSWORD, ADMIN_NAME and ADMIN_PHONE.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			email = firstNonEmpty(email, os.Getenv("ADMIN_EMAIL"))
			password = firstNonEmpty(password, os.Getenv("ADMIN_PASSWORD"))
			fullName = firstNonEmpty(fullName, os.Getenv("ADMIN_NAME"), "Administrator")
			phone = firstNonEmpty(phone, os.Getenv("ADMIN_PHONE"))
			if email == "" || password == "" {
				return errors.New("admin email and password are required")
			}
			if len(password) < 8 {
				return errors.New("admin password must be at least 8 characters")
			}

			_, db, _, cleanup, err := env(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx := commandContext(cmd)
			store := repositories.New(db)
			email = strings.ToLower(strings.TrimSpace(email))

			existing, err := store.Users.GetByEmail(ctx, email)
			if err != nil {
				return err
			}
			if existing != nil {
				fmt.Println("Admin user already exists")
				return nil
			}

			hash, err := auth.HashPassword(password)
			if err != nil {
				return err
			}
			admin := &models.User{
				Email:        email,
				Password:     hash,
				FullName:     fullName,
				Phone:        phone,
				Role:         models.RoleAdmin,
				Status:       models.UserStatusActive,
				TokenVersion: 1,
			}
			if err := store.Users.Create(ctx, admin); err != nil {
				return fmt.Errorf("create admin: %w", err)
			}
			fmt.Printf("Admin account %s created (id %d)\n", admin.Email, admin.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "admin email")
	cmd.Flags().StringVar(&password, "password", "", "admin password")
	cmd.Flags().StringVar(&fullName, "name", "", "admin full name")
	cmd.Flags().StringVar(&phone, "phone", "", "admin phone")
	return cmd
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

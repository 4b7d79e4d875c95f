package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gatherly/server/internal/audit"
	"github.com/gatherly/server/internal/auth"
	"github.com/gatherly/server/internal/config"
	"github.com/gatherly/server/internal/domain/ids"
	"github.com/gatherly/server/internal/domain/users"
	"github.com/gatherly/server/internal/storage/postgres"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

var (
	adminName     string
	adminEmail    string
	adminPassword string
)

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an ADMIN user",
	Long: `Create an ADMIN user directly in the database.

ADMIN accounts cannot be created through the signup API; this command
and the ADMIN_* bootstrap env vars are the only paths. The command is
idempotent: it does nothing if a user with the email already exists.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("config error: %w", err)
		}

		if adminName != "" {
			cfg.AdminBootstrap.Name = adminName
		}
		if adminEmail != "" {
			cfg.AdminBootstrap.Email = adminEmail
		}
		if adminPassword != "" {
			cfg.AdminBootstrap.Password = adminPassword
		}

		logger := config.NewLogger(cfg.Logging)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		pool, err := pgxpool.New(ctx, cfg.Database.URL)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		defer pool.Close()

		return bootstrapAdminUser(ctx, cfg, pool, logger)
	},
}

func init() {
	createAdminCmd.Flags().StringVar(&adminName, "name", "", "admin display name (default: ADMIN_NAME env)")
	createAdminCmd.Flags().StringVar(&adminEmail, "email", "", "admin email (default: ADMIN_EMAIL env)")
	createAdminCmd.Flags().StringVar(&adminPassword, "password", "", "admin password (default: ADMIN_PASSWORD env)")
}

// bootstrapAdminUser creates the configured ADMIN account if it does
// not exist yet. Missing configuration is not an error; the server can
// run without an admin.
func bootstrapAdminUser(ctx context.Context, cfg config.Config, pool *pgxpool.Pool, logger zerolog.Logger) error {
	bootstrap := cfg.AdminBootstrap
	if bootstrap.Email == "" || bootstrap.Password == "" {
		logger.Warn().Msg("admin bootstrap env vars not fully set; skipping")
		return nil
	}

	repo, err := postgres.NewRepository(pool)
	if err != nil {
		return err
	}
	userRepo := repo.Users()

	email := strings.ToLower(strings.TrimSpace(bootstrap.Email))
	if _, err := userRepo.GetByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, users.ErrNotFound) {
		return fmt.Errorf("check admin user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(bootstrap.Password), users.BcryptCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	name := bootstrap.Name
	if name == "" {
		name = "Administrator"
	}

	user, err := userRepo.Create(ctx, users.CreateParams{
		ID:           ids.NewUUID(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         auth.RoleAdmin,
	})
	if err != nil {
		return fmt.Errorf("create admin user: %w", err)
	}

	audit.NewLogger(logger).LogSuccess("user.bootstrap_admin", user.Email, "user", user.ID, nil)
	logger.Info().Str("email", user.Email).Msg("bootstrapped admin user")
	return nil
}

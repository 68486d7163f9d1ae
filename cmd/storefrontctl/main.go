// Command storefrontctl — служебные операции: миграции и заведение администраторов.
package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	migrateV4 "github.com/golang-migrate/migrate/v4"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/yourusername/storefront-api/internal/config"
	pgRepo "github.com/yourusername/storefront-api/internal/repository/postgres"
	"github.com/yourusername/storefront-api/internal/service"
	"github.com/yourusername/storefront-api/pkg/auth"
	"github.com/yourusername/storefront-api/pkg/database"
	"github.com/yourusername/storefront-api/pkg/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type cliEnv struct {
	configPath string
	log        *zap.Logger
	cfg        *config.Config
	db         *gorm.DB
}

func newRootCmd() *cobra.Command {
	env := &cliEnv{}
	root := &cobra.Command{
		Use:           "storefrontctl",
		Short:         "Maintenance commands for storefront-api",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return env.open()
		},
	}
	root.PersistentFlags().StringVar(&env.configPath, "config", envOr("CONFIG_PATH", "config/config.yaml"), "path to config file")

	root.AddCommand(newMigrateCmd(env), newAdminCmd(env))
	return root
}

func (e *cliEnv) open() error {
	log, err := logger.New(envOr("LOG_LEVEL", "info"), "console")
	if err != nil {
		return err
	}
	e.log = log

	cfg, err := config.Load(e.configPath, log)
	if err != nil {
		return err
	}
	e.cfg = cfg

	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString(), false)
	if err != nil {
		return err
	}
	e.db = db
	return nil
}

func newMigrateCmd(env *cliEnv) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or inspect SQL migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return database.MigrateDB(env.db, env.log)
		},
	})

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations (one step by default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := database.NewMigrator(env.db)
			if err != nil {
				return err
			}
			if steps <= 0 {
				return fmt.Errorf("--steps must be positive")
			}
			if err := m.Steps(-steps); err != nil && !errors.Is(err, migrateV4.ErrNoChange) {
				return fmt.Errorf("rollback failed: %w", err)
			}
			return printVersion(cmd, m)
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")
	cmd.AddCommand(down)

	cmd.AddCommand(&cobra.Command{
		Use:   "force VERSION",
		Short: "Set the migration version without running it (clears the dirty flag)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			version, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid version %q", args[0])
			}
			m, err := database.NewMigrator(env.db)
			if err != nil {
				return err
			}
			if err := m.Force(version); err != nil {
				return fmt.Errorf("force version %d: %w", version, err)
			}
			return printVersion(cmd, m)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the current migration version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := database.NewMigrator(env.db)
			if err != nil {
				return err
			}
			return printVersion(cmd, m)
		},
	})
	return cmd
}

func printVersion(cmd *cobra.Command, m *migrateV4.Migrate) error {
	version, dirty, err := m.Version()
	if errors.Is(err, migrateV4.ErrNilVersion) {
		cmd.Println("no migrations applied")
		return nil
	}
	if err != nil {
		return err
	}
	cmd.Printf("version %d (dirty: %t)\n", version, dirty)
	return nil
}

func newAdminCmd(env *cliEnv) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage admin panel accounts",
	}

	var email, password string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create an admin account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv("ADMIN_PASSWORD")
			}
			jwtService, err := auth.NewJWTService(env.cfg.JWT.Secret, env.cfg.JWT.ExpirationHrs, env.cfg.JWT.Issuer)
			if err != nil {
				return err
			}
			authService := service.NewAuthService(pgRepo.NewAdminUserRepo(env.db), jwtService, env.log)
			admin, err := authService.CreateAdmin(email, password)
			if err != nil {
				return err
			}
			cmd.Printf("admin #%d created: %s\n", admin.ID, admin.Email)
			return nil
		},
	}
	create.Flags().StringVar(&email, "email", "", "admin email")
	create.Flags().StringVar(&password, "password", "", "admin password (or ADMIN_PASSWORD env var)")
	_ = create.MarkFlagRequired("email")
	cmd.AddCommand(create)
	return cmd
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

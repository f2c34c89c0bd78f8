package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/geriatria/historia-clinica/internal/config"
	"github.com/geriatria/historia-clinica/internal/domain/identity"
	"github.com/geriatria/historia-clinica/internal/platform/auth"
	"github.com/geriatria/historia-clinica/internal/platform/db"
	"github.com/geriatria/historia-clinica/internal/platform/logging"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "historia-server",
		Short: "Geriatric clinical history API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(userCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			migrate, _ := cmd.Flags().GetBool("migrate")
			return runServer(migrate)
		},
	}
	cmd.Flags().Bool("migrate", false, "Apply pending migrations before serving")
	return cmd
}

func poolOptions(cfg *config.Config) db.PoolOptions {
	return db.PoolOptions{
		URL:      cfg.DatabaseURL,
		MaxConns: cfg.DBMaxConns,
		MinConns: cfg.DBMinConns,
	}
}

// connect loads configuration and opens the pool shared by every subcommand.
func connect(ctx context.Context) (*config.Config, *pgxpool.Pool, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	pool, err := db.OpenPool(ctx, poolOptions(cfg))
	if err != nil {
		return nil, nil, err
	}
	return cfg, pool, nil
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	// migrate up
	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			cfg, pool, err := connect(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			dir := migrationsDir(cmd, cfg)
			count, err := db.NewMigrator(pool, dir).Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Printf("Applied %d migration(s) from %s.\n", count, dir)
			return nil
		},
	}
	upCmd.Flags().String("dir", "", "Path to migrations directory (defaults to MIGRATIONS_DIR)")
	cmd.AddCommand(upCmd)

	// migrate status
	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			cfg, pool, err := connect(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			statuses, err := db.NewMigrator(pool, migrationsDir(cmd, cfg)).Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "", "Path to migrations directory (defaults to MIGRATIONS_DIR)")
	cmd.AddCommand(statusCmd)

	return cmd
}

func migrationsDir(cmd *cobra.Command, cfg *config.Config) string {
	if dir, _ := cmd.Flags().GetString("dir"); dir != "" {
		return dir
	}
	return cfg.MigrationsDir
}

func userCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}

	createAdmin := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an ADMIN account",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := identity.NewUserRequest{}
			req.Nombre, _ = cmd.Flags().GetString("nombre")
			req.Apellidos, _ = cmd.Flags().GetString("apellidos")
			req.Email, _ = cmd.Flags().GetString("email")
			req.Password, _ = cmd.Flags().GetString("password")
			if req.Password == "" {
				req.Password = os.Getenv("ADMIN_PASSWORD")
			}
			force, _ := cmd.Flags().GetBool("force")

			ctx := context.Background()
			cfg, pool, err := connect(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			svc := identity.NewService(identity.NewUserRepo(pool), auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL))
			n, err := svc.AdminCount(ctx)
			if err != nil {
				return err
			}
			if n > 0 && !force {
				return fmt.Errorf("%d admin account(s) already exist; pass --force to add another", n)
			}

			u, err := svc.CreateAdmin(ctx, req)
			if err != nil {
				return err
			}
			fmt.Printf("Created admin %s (id %d).\n", u.Email, u.ID)
			return nil
		},
	}
	createAdmin.Flags().String("nombre", "", "First name")
	createAdmin.Flags().String("apellidos", "", "Last names")
	createAdmin.Flags().String("email", "", "Login email")
	createAdmin.Flags().String("password", "", "Password (or set ADMIN_PASSWORD)")
	createAdmin.Flags().Bool("force", false, "Create even if an admin already exists")
	cmd.AddCommand(createAdmin)

	return cmd
}

func runServer(migrate bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, closer := logging.New(logging.Options{
		Level: cfg.LogLevel,
		Dev:   cfg.IsDev(),
		File:  cfg.LogFile,
	})
	defer closer.Close()

	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx := context.Background()
	pool, err := db.OpenPool(ctx, poolOptions(cfg))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Int32("max_conns", cfg.DBMaxConns).Msg("connected to database")

	if migrate {
		count, err := db.NewMigrator(pool, cfg.MigrationsDir).Up(ctx)
		if err != nil {
			logger.Fatal().Err(err).Msg("migration failed")
		}
		logger.Info().Int("applied", count).Msg("migrations up to date")
	}

	e := newServer(cfg, pool, logger)

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}

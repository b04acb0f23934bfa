package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/carbuapp/oficina-api/config"
	"github.com/carbuapp/oficina-api/logger"
	"github.com/carbuapp/oficina-api/models"
	"github.com/carbuapp/oficina-api/services"
)

const ErrExitCode = 1

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Println(err.Error())
		os.Exit(ErrExitCode)
	}
}

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "oficina-api",
		Short:   "multi-tenant workshop management API",
		Version: version,
	}
	cmd.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newSeedCmd(),
		newVersionCmd(),
	)
	return cmd
}

// bootstrap loads the configuration, applies logging settings and connects
// to the database.
func bootstrap() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logger.Set(logger.MustNew(cfg.IsProduction()))
	logger.SetLevel(cfg.LogLevel)

	if err := config.ConnectDatabase(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func migrate() error {
	if err := models.AutoMigrate(config.GetDB()); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	logger.L().Info("database migration completed successfully")
	return nil
}

func newServeCmd() *cobra.Command {
	var autoMigrate bool
	cmd := &cobra.Command{
		Use:          "serve",
		Short:        "run the HTTP API",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := bootstrap()
			if err != nil {
				return err
			}
			defer logger.Sync()

			if autoMigrate {
				if err := migrate(); err != nil {
					return err
				}
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			deps, err := newDependencies(ctx, cfg, config.GetDB())
			if err != nil {
				return err
			}
			return runServer(ctx, cfg, setupRouter(cfg, deps))
		},
	}
	cmd.Flags().BoolVar(&autoMigrate, "migrate", true, "run database migrations before serving")
	return cmd
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:          "migrate",
		Short:        "create or update the database schema",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := bootstrap(); err != nil {
				return err
			}
			defer logger.Sync()
			return migrate()
		},
	}
}

func newSeedCmd() *cobra.Command {
	input := services.ProvisionInput{}
	cmd := &cobra.Command{
		Use:          "seed",
		Short:        "provision a workshop and its ADMIN account",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := bootstrap(); err != nil {
				return err
			}
			defer logger.Sync()
			if err := migrate(); err != nil {
				return err
			}

			workshops := services.NewWorkshopService(services.NewStore(config.GetDB()))
			workshop, user, err := workshops.Provision(cmd.Context(), input)
			if err != nil {
				return err
			}
			logger.L().Info("seed completed",
				zap.Uint("workshop_id", workshop.ID),
				zap.String("workshop", workshop.Name),
				zap.String("admin_email", user.Email))
			fmt.Fprintf(cmd.OutOrStdout(), "workshop %d (%s), admin %s\n", workshop.ID, workshop.Name, user.Email)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&input.WorkshopName, "workshop", "Commenale Motorsports", "workshop name")
	flags.StringVar(&input.Responsible, "responsible", "Felipe Commenale", "workshop responsible")
	flags.StringVar(&input.Phone, "phone", "11940730035", "workshop phone")
	flags.StringVar(&input.Address, "address", "Rua Joaquim das Neves Corticeiro 49", "workshop address")
	flags.StringVar(&input.AdminName, "admin-name", "Admin (Felipe)", "admin display name")
	flags.StringVar(&input.AdminEmail, "admin-email", "admin@carbuapp.local", "admin login email")
	flags.StringVar(&input.AdminPassword, "admin-password", os.Getenv("SEED_ADMIN_PASSWORD"), "admin password (defaults to $SEED_ADMIN_PASSWORD)")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "print version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]string{"version": version})
		},
	}
}

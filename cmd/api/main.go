package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	appMigrations "github.com/yigit/unisupport/internal/app/migrations"
	"github.com/yigit/unisupport/internal/bootstrap"
	"github.com/yigit/unisupport/internal/pkg/logger"
	"github.com/yigit/unisupport/internal/seed"
	"github.com/yigit/unisupport/internal/server"
)

// @title UniSupport Admin API
// @version 1.0
// @description Administration backend for the university support chatbot
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT token, also accepted from the session cookie

func main() {
	app := &cli.App{
		Name:  "unisupport",
		Usage: "university support chatbot administration API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "configs/config.yaml",
				Usage:   "path to the YAML configuration file",
				EnvVars: []string{"CONFIG_PATH"},
			},
		},
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "start the HTTP API",
				Action: serve,
			},
			{
				Name:  "migrate",
				Usage: "manage the database schema",
				Subcommands: []*cli.Command{
					{
						Name:  "up",
						Usage: "apply all pending migrations",
						Action: migrate(func(ctx context.Context, m *appMigrations.Migrator) error {
							return m.Up(ctx)
						}),
					},
					{
						Name:  "down",
						Usage: "roll back the latest migration",
						Action: migrate(func(ctx context.Context, m *appMigrations.Migrator) error {
							return m.Down(ctx)
						}),
					},
					{
						Name:  "version",
						Usage: "print the current schema version",
						Action: migrate(func(ctx context.Context, m *appMigrations.Migrator) error {
							version, err := m.Version(ctx)
							if err != nil {
								return err
							}
							fmt.Println(version)
							return nil
						}),
					},
				},
			},
			{
				Name:  "create-admin",
				Usage: "create an approved administrator account",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Required: true},
					&cli.StringFlag{Name: "password", Required: true},
					&cli.StringFlag{Name: "name", Value: "Administrator"},
				},
				Action: createAdmin,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}

func serve(c *cli.Context) error {
	srv, err := server.NewServer(c.Context, c.String("config"))
	if err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}

	if err := srv.Run(); err != nil {
		return err
	}

	logger.Info().Msg("Application finished gracefully.")
	return nil
}

func migrate(fn func(context.Context, *appMigrations.Migrator) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(c.String("config"))
		if err != nil {
			return err
		}
		if cfg.UsesMemoryStore() {
			return errors.New("migrations require the postgres driver")
		}

		ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
		defer stop()

		database, err := bootstrap.OpenDatabase(ctx, cfg, lgr)
		if err != nil {
			return err
		}
		defer database.Close()

		return bootstrap.RunMigrations(ctx, database, lgr, fn)
	}
}

func createAdmin(c *cli.Context) error {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(c.String("config"))
	if err != nil {
		return err
	}
	if cfg.UsesMemoryStore() {
		return errors.New("create-admin requires the postgres driver")
	}

	database, err := bootstrap.SetupDatabase(c.Context, cfg, lgr)
	if err != nil {
		return err
	}
	defer database.Close()

	deps, err := bootstrap.BuildDependencies(cfg, database, nil, lgr)
	if err != nil {
		return err
	}

	created, err := seed.CreateDefaultAdmin(c.Context, deps.Repos.AccountRepository, deps.AdminService, seed.DefaultAdmin{
		Email:    c.String("email"),
		Password: c.String("password"),
		Name:     c.String("name"),
	}, lgr)
	if err != nil {
		return err
	}
	if !created {
		return fmt.Errorf("an account with email %s already exists", c.String("email"))
	}
	return nil
}

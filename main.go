// TalentHub is the HTTP backend of a recruitment marketplace: talents search
// and apply to job postings, companies publish postings and review the
// applications they receive.
//
// @title TalentHub API
// @version 1.0
// @description Recruitment marketplace API: accounts, profiles, job postings, applications, favorites and reference data.
// @contact.name API Support
// @license.name MIT
// @license.url https://opensource.org/licenses/MIT
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type 'Bearer YOUR_JWT_TOKEN' to authorize
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/user/talenthub/config"
	"github.com/user/talenthub/db"
)

func main() {
	// .env is a development convenience. In production the variables are set directly.
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or error loading it: %v", err)
	}

	app := &cli.App{
		Name:  "talenthub",
		Usage: "recruitment marketplace API server",
		Flags: serveFlags,
		// Running the binary without a command serves.
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP server",
				Flags:  serveFlags,
				Action: serve,
			},
			{
				Name:  "migrate",
				Usage: "apply or revert database migrations",
				Subcommands: []*cli.Command{
					{
						Name:  "up",
						Usage: "apply all pending migrations",
						Action: func(c *cli.Context) error {
							return runMigrations(db.MigrateUp)
						},
					},
					{
						Name:  "down",
						Usage: "revert the most recent migration",
						Action: func(c *cli.Context) error {
							return runMigrations(db.MigrateDown)
						},
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

var serveFlags = []cli.Flag{
	&cli.BoolFlag{
		Name:    "migrate",
		Usage:   "apply pending migrations before serving",
		EnvVars: []string{"AUTO_MIGRATE"},
	},
}

func serve(c *cli.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if c.Bool("migrate") {
		if err := db.Migrate(cfg.DB, cfg.MigrationsPath, db.MigrateUp); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return runServer(c.Context, cfg)
}

func runMigrations(direction db.MigrateDirection) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := db.Migrate(cfg.DB, cfg.MigrationsPath, direction); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func loadConfig() (*config.AppConfig, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	log.Printf("Configuration loaded (env=%s, dev secret=%v, redis=%v)", cfg.Env, cfg.Auth.UsingDevSecret, cfg.Redis.Enabled())
	return cfg, nil
}

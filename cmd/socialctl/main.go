// Command socialctl runs schema and data maintenance for the social.vim backend.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"socialvim/internal/config"
	"socialvim/internal/database"
	"socialvim/internal/middleware"
	"socialvim/internal/seed"

	"github.com/urfave/cli/v2"
	"gorm.io/gorm"
)

func main() {
	app := &cli.App{
		Name:  "socialctl",
		Usage: "social.vim schema and demo data tooling",
		Commands: []*cli.Command{
			migrateCommand(),
			seedCommand(),
			{
				Name:  "tables",
				Usage: "list the social.vim tables with their row counts",
				Action: withDB(func(c *cli.Context, _ *config.Config, db *gorm.DB) error {
					tables, err := database.DescribeTables(c.Context, db)
					if err != nil {
						return fmt.Errorf("describe tables: %w", err)
					}
					for _, t := range tables {
						if !t.Present {
							fmt.Fprintf(c.App.Writer, "%-20s missing\n", t.Name)
							continue
						}
						fmt.Fprintf(c.App.Writer, "%-20s %d rows\n", t.Name, t.Rows)
					}
					return nil
				}),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		middleware.Logger.Error("socialctl failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// withDB loads configuration and opens the database without touching the
// schema, closing it once action returns.
func withDB(action func(*cli.Context, *config.Config, *gorm.DB) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		db, err := database.ConnectWithOptions(cfg, database.ConnectOptions{ApplySchema: false})
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		defer func() { _ = database.Close(db) }()
		return action(c, cfg, db)
	}
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "apply, inspect or roll back schema migrations",
		Subcommands: []*cli.Command{
			{
				Name:  "up",
				Usage: "apply pending SQL migrations",
				Action: withDB(func(c *cli.Context, _ *config.Config, db *gorm.DB) error {
					if err := database.RunMigrations(c.Context, db); err != nil {
						return fmt.Errorf("sql migrations failed: %w", err)
					}
					middleware.Logger.Info("sql migrations applied")
					return nil
				}),
			},
			{
				Name:  "auto",
				Usage: "sync the schema from the models with AutoMigrate",
				Action: withDB(func(c *cli.Context, cfg *config.Config, db *gorm.DB) error {
					cfg.DBSchemaMode = database.SchemaModeAuto
					if err := database.ApplySchema(c.Context, db, cfg); err != nil {
						return fmt.Errorf("auto schema apply failed: %w", err)
					}
					middleware.Logger.Info("automigrations applied")
					return nil
				}),
			},
			{
				Name:  "status",
				Usage: "show the schema mode and pending migrations",
				Action: withDB(func(c *cli.Context, cfg *config.Config, db *gorm.DB) error {
					status, err := database.GetSchemaStatus(c.Context, db, cfg)
					if err != nil {
						return fmt.Errorf("schema status failed: %w", err)
					}
					fmt.Fprintf(c.App.Writer, "driver=%s mode=%s env=%s run_sql=%t run_auto=%t applied=%d pending=%d\n",
						status.Driver, status.Mode, status.Environment, status.RunSQL, status.RunAuto,
						len(status.AppliedVersions), len(status.PendingMigrations))
					for _, m := range status.PendingMigrations {
						fmt.Fprintf(c.App.Writer, "pending: %s\n", m.String())
					}
					for _, name := range status.MissingTables() {
						fmt.Fprintf(c.App.Writer, "missing table: %s\n", name)
					}
					return nil
				}),
			},
			{
				Name:      "down",
				Usage:     "roll back one migration (the latest when no version is given)",
				ArgsUsage: "[version]",
				Action: withDB(func(c *cli.Context, _ *config.Config, db *gorm.DB) error {
					return rollback(c.Context, c.Args().First(), db)
				}),
			},
		},
	}
}

func rollback(ctx context.Context, arg string, db *gorm.DB) error {
	if arg == "" {
		version, err := database.RollbackLatest(ctx, db)
		if err != nil {
			return fmt.Errorf("rollback failed: %w", err)
		}
		middleware.Logger.Info("rolled back migration", slog.Int("version", version))
		return nil
	}

	version, err := strconv.Atoi(arg)
	if err != nil {
		return fmt.Errorf("invalid version %q: %w", arg, err)
	}
	if err := database.RollbackMigration(ctx, db, version); err != nil {
		return fmt.Errorf("rollback failed: %w", err)
	}
	middleware.Logger.Info("rolled back migration", slog.Int("version", version))
	return nil
}

func seedCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "load the demo data set",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "clean", Usage: "wipe existing rows before seeding"},
			&cli.IntFlag{Name: "fake-users", Usage: "extra generated users"},
			&cli.IntFlag{Name: "fake-posts", Usage: "extra generated posts"},
			&cli.Int64Flag{Name: "rand-seed", Usage: "seed for generated data (0 uses the clock)"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			// Seeding needs the tables, so this path applies the schema.
			db, err := database.Connect(cfg)
			if err != nil {
				return fmt.Errorf("connect database: %w", err)
			}
			defer func() { _ = database.Close(db) }()

			res, err := seed.Seed(c.Context, db, seed.Options{
				Clean:     c.Bool("clean"),
				FakeUsers: c.Int("fake-users"),
				FakePosts: c.Int("fake-posts"),
				RandSeed:  c.Int64("rand-seed"),
			})
			if err != nil {
				return err
			}

			enc := json.NewEncoder(c.App.Writer)
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}
}

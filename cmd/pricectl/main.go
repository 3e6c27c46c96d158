// pricectl is the operator CLI for the price store.
//
// Usage:
//
//	pricectl migrate
//	pricectl seed
//	pricectl resolve --product 35455 --brand 1 --at 2020-06-14T10:00:00
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"price-resolution-api/internal/config"
	"price-resolution-api/internal/database"
	"price-resolution-api/internal/logging"
	"price-resolution-api/internal/models"
	"price-resolution-api/internal/service"
	"price-resolution-api/internal/validation"
)

var version = "dev"

// errNoPrice is reported when resolve finds no applicable window.
var errNoPrice = errors.New("no applicable price")

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:    "pricectl",
		Usage:   "Manage and query the price store",
		Version: version,
		Writer:  out,

		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "Path to JSON config file",
				EnvVars: []string{"PRICECTL_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "driver",
				Usage:   "Database driver (sqlite3, postgres); overrides config",
				EnvVars: []string{"DATABASE_DRIVER"},
			},
			&cli.StringFlag{
				Name:    "dsn",
				Usage:   "Database DSN; overrides config",
				EnvVars: []string{"DATABASE_DSN"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "warn",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"LOG_LEVEL"},
			},
		},

		Commands: []*cli.Command{
			migrateCommand(),
			seedCommand(),
			resolveCommand(),
		},
	}
}

// openDB opens the store described by the global flags. Migrations run only
// when migrate is set.
func openDB(c *cli.Context, migrate bool) (*database.DB, error) {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, err
	}
	if v := c.String("driver"); v != "" {
		cfg.Database.Driver = v
	}
	if v := c.String("dsn"); v != "" {
		cfg.Database.DSN = v
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return database.Open(c.Context, database.Config{
		Driver:  cfg.Database.Driver,
		DSN:     cfg.Database.DSN,
		Migrate: migrate,
	})
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Apply pending schema migrations",
		Action: func(c *cli.Context) error {
			db, err := openDB(c, true)
			if err != nil {
				return err
			}
			defer db.Close()

			fmt.Fprintln(c.App.Writer, "migrations applied")
			return nil
		},
	}
}

func seedCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "Load the sample price list",
		Action: func(c *cli.Context) error {
			db, err := openDB(c, true)
			if err != nil {
				return err
			}
			defer db.Close()

			n, err := db.SeedSamplePrices(c.Context)
			if err != nil {
				return err
			}

			fmt.Fprintf(c.App.Writer, "seeded %d price windows\n", n)
			return nil
		},
	}
}

func resolveCommand() *cli.Command {
	return &cli.Command{
		Name:  "resolve",
		Usage: "Print the price in force for a product and brand at an instant",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "product",
				Aliases:  []string{"p"},
				Usage:    "Product id",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "brand",
				Aliases:  []string{"b"},
				Usage:    "Brand id",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "at",
				Usage:    "Instant as " + models.DateTimeLayout + " (UTC) or RFC3339",
				Required: true,
			},
		},
		Action: func(c *cli.Context) error {
			req, err := validation.ParseLookup(c.String("product"), c.String("brand"), c.String("at"))
			if err != nil {
				return err
			}

			db, err := openDB(c, false)
			if err != nil {
				return err
			}
			defer db.Close()

			logger := logging.NewWithWriter(c.App.ErrWriter, c.String("log-level"), "text")
			svc := service.NewService(db, service.WithLogger(logger))

			res, err := svc.GetApplicablePrice(c.Context, "pricectl", req)
			if err != nil {
				return err
			}

			window, ok := res.Window()
			if !ok {
				return cli.Exit(errNoPrice.Error(), 1)
			}

			enc := json.NewEncoder(c.App.Writer)
			enc.SetIndent("", "  ")
			return enc.Encode(models.NewPriceResponse(window))
		},
	}
}

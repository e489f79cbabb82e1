package main

import (
	"context"
	"io"

	"github.com/sparkify/starschema/internal/config"
	"github.com/sparkify/starschema/internal/staging"
	"github.com/sparkify/starschema/internal/util"
	"github.com/sparkify/starschema/internal/warehouse"
	cli "github.com/urfave/cli/v2"
)

// openWarehouse can be replaced in test.
var openWarehouse = func(cfg *config.DWH) (*warehouse.Warehouse, error) {
	if err := cfg.ValidateDatabase(); err != nil {
		return nil, err
	}
	return warehouse.Open(cfg.DSN())
}

func createTablesCommand(args *arguments) *cli.Command {
	return &cli.Command{
		Name:  "create-tables",
		Usage: "Drop and create staging, dimension and fact tables",
		Action: func(c *cli.Context) error {
			cfg, err := args.loadConfig()
			if err != nil {
				return err
			}

			wh, err := openWarehouse(cfg)
			if err != nil {
				return err
			}
			defer wh.Close()

			return wh.CreateTables(c.Context)
		},
	}
}

type etlArguments struct {
	truncate bool
}

func etlCommand(args *arguments) *cli.Command {
	var etlArgs etlArguments

	return &cli.Command{
		Name:  "etl",
		Usage: "Copy raw data from S3 into staging tables and transform them",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "truncate",
				Usage:       "Truncate staging tables before copy",
				Destination: &etlArgs.truncate,
			},
		},
		Action: func(c *cli.Context) error {
			return etlAction(c.Context, c.App.Writer, *args, etlArgs)
		},
	}
}

func etlAction(ctx context.Context, w io.Writer, args arguments, etlArgs etlArguments) error {
	cfg, err := args.loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.ValidateLoad(); err != nil {
		return err
	}

	wh, err := openWarehouse(cfg)
	if err != nil {
		return err
	}
	defer wh.Close()

	if etlArgs.truncate {
		if err := wh.Truncate(ctx); err != nil {
			return err
		}
	}

	err = wh.ETL(ctx, staging.LoadConfig{
		RoleARN:     cfg.RoleARN,
		Region:      cfg.AWS.Region,
		LogData:     cfg.S3.LogData,
		LogJSONPath: cfg.S3.LogJSONPath,
		SongData:    cfg.S3.SongData,
	})
	if err != nil {
		return err
	}

	counts, err := wh.Count(ctx)
	if err != nil {
		return err
	}
	util.PrintRowCounts(w, counts)
	return nil
}

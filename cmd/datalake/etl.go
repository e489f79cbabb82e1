package main

import (
	"context"
	"fmt"
	"io"

	"github.com/sparkify/starschema/internal/adaptor"
	"github.com/sparkify/starschema/internal/config"
	"github.com/sparkify/starschema/internal/lake"
	"github.com/sparkify/starschema/internal/service"
	"github.com/sparkify/starschema/internal/staging"
	"github.com/sparkify/starschema/internal/util"
	cli "github.com/urfave/cli/v2"
)

type etlArguments struct {
	input    string
	output   string
	songGlob string
	logGlob  string
}

// newS3Service can be replaced in test.
var newS3Service = func(cfg *config.DataLake) *service.S3Service {
	return service.NewS3Service(adaptor.NewS3ClientFactory(adaptor.Credentials{
		AccessKeyID:     cfg.AWS.AccessKeyID,
		SecretAccessKey: cfg.AWS.SecretAccessKey,
	}))
}

func etlCommand(args *arguments) *cli.Command {
	var etlArgs etlArguments

	return &cli.Command{
		Name:  "etl",
		Usage: "Run lake ETL",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "input",
				Aliases:     []string{"i"},
				Usage:       "Input root having song_data/ and log_data/ (overrides [DATA] INPUT)",
				Destination: &etlArgs.input,
			},
			&cli.StringFlag{
				Name:        "output",
				Aliases:     []string{"o"},
				Usage:       "Output root of parquet datasets (overrides [DATA] OUTPUT)",
				Destination: &etlArgs.output,
			},
			&cli.StringFlag{
				Name:        "song-glob",
				Value:       staging.DefaultSongGlob,
				Destination: &etlArgs.songGlob,
			},
			&cli.StringFlag{
				Name:        "log-glob",
				Value:       staging.DefaultLogGlob,
				Destination: &etlArgs.logGlob,
			},
		},
		Action: func(c *cli.Context) error {
			return etlAction(c.Context, c.App.Writer, *args, etlArgs)
		},
	}
}

func etlAction(ctx context.Context, w io.Writer, args arguments, etlArgs etlArguments) error {
	cfg, err := config.LoadDataLake(args.ConfigPath)
	if err != nil {
		return err
	}
	if etlArgs.input != "" {
		cfg.Input = etlArgs.input
	}
	if etlArgs.output != "" {
		cfg.Output = etlArgs.output
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	lk, err := lake.Open(newS3Service(cfg), cfg.AWS.Region)
	if err != nil {
		return err
	}
	defer lk.Close()

	lk.SetSources(staging.LakeSources{
		SongGlob: etlArgs.songGlob,
		LogGlob:  etlArgs.logGlob,
	})

	report, err := lk.Run(ctx, cfg.Input, cfg.Output)
	if err != nil {
		return err
	}

	printReport(w, report)
	return nil
}

func printReport(w io.Writer, report *lake.Report) {
	util.PrintRowCounts(w, report.Rows)
	fmt.Fprintf(w, "run_id :: %s\n", report.RunID)
	fmt.Fprintf(w, "output :: %s (%d files)\n", report.Output, len(report.Files))
}

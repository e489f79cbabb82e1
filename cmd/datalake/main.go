package main

import (
	"os"

	"github.com/sparkify/starschema/internal"
	cli "github.com/urfave/cli/v2"
)

var logger = internal.Logger

type arguments struct {
	ConfigPath string
	LogLevel   string
	SentryDSN  string
	SentryEnv  string
}

func newApp() *cli.App {
	var args arguments

	return &cli.App{
		Name:  "datalake",
		Usage: "Derive sparkify star schema from raw JSON and write parquet datasets",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path of dl.cfg",
				Value:       "dl.cfg",
				EnvVars:     []string{"DL_CONFIG"},
				Destination: &args.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "log-level",
				Aliases:     []string{"l"},
				Value:       "INFO",
				EnvVars:     []string{"LOG_LEVEL"},
				Destination: &args.LogLevel,
			},
			&cli.StringFlag{
				Name:        "sentry-dsn",
				EnvVars:     []string{"SENTRY_DSN"},
				Destination: &args.SentryDSN,
			},
			&cli.StringFlag{
				Name:        "sentry-env",
				EnvVars:     []string{"SENTRY_ENVIRONMENT"},
				Destination: &args.SentryEnv,
			},
		},
		Before: func(c *cli.Context) error {
			internal.SetupCLILogger(args.LogLevel)
			return internal.InitErrorHandler(args.SentryDSN, args.SentryEnv)
		},
		After: func(c *cli.Context) error {
			internal.FlushError()
			return nil
		},
		Commands: []*cli.Command{
			etlCommand(&args),
			dumpCommand(),
		},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		internal.HandleError(err)
		internal.FlushError()
		logger.WithError(err).Fatal("Abort")
	}
}

package main

import (
	"os"

	"github.com/sparkify/starschema/internal"
	"github.com/sparkify/starschema/internal/adaptor"
	"github.com/sparkify/starschema/internal/config"
	"github.com/sparkify/starschema/internal/provision"
	cli "github.com/urfave/cli/v2"
)

var logger = internal.Logger

type arguments struct {
	ConfigPath string
	LogLevel   string
	SentryDSN  string
	SentryEnv  string
}

func (x arguments) loadConfig() (*config.DWH, error) {
	return config.LoadDWH(x.ConfigPath)
}

// newController can be replaced in test.
var newController = func(cfg *config.DWH) *provision.Controller {
	cred := adaptor.Credentials{
		AccessKeyID:     cfg.AWS.AccessKeyID,
		SecretAccessKey: cfg.AWS.SecretAccessKey,
	}
	return provision.New(cfg.AWS.Region,
		adaptor.NewIAMClientFactory(cred),
		adaptor.NewRedshiftClientFactory(cred))
}

func newApp() *cli.App {
	var args arguments

	return &cli.App{
		Name:  "dwh",
		Usage: "Provision Redshift cluster and load sparkify star schema",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path of dwh.cfg",
				Value:       "dwh.cfg",
				EnvVars:     []string{"DWH_CONFIG"},
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
			setupCommand(&args),
			endpointCommand(&args),
			teardownCommand(&args),
			createTablesCommand(&args),
			etlCommand(&args),
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

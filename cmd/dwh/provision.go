package main

import (
	"fmt"
	"io"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/sparkify/starschema/internal"
	"github.com/sparkify/starschema/internal/provision"
	"github.com/sparkify/starschema/internal/util"
	cli "github.com/urfave/cli/v2"
)

type setupArguments struct {
	wait         bool
	waitLimit    int
	waitInterval time.Duration
}

func setupCommand(args *arguments) *cli.Command {
	var setupArgs setupArguments

	return &cli.Command{
		Name:  "setup",
		Usage: "Create IAM role and Redshift cluster. Existing resources are left as they are",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "wait",
				Aliases:     []string{"w"},
				Usage:       "Wait until the cluster becomes available",
				Destination: &setupArgs.wait,
			},
			&cli.IntFlag{
				Name:        "wait-limit",
				Value:       60,
				Destination: &setupArgs.waitLimit,
			},
			&cli.DurationFlag{
				Name:        "wait-interval",
				Value:       10 * time.Second,
				Destination: &setupArgs.waitInterval,
			},
		},
		Action: func(c *cli.Context) error {
			return setupAction(c.App.Writer, *args, setupArgs)
		},
	}
}

// setupAction does not return error by failed outcomes. They are logged and
// the command finishes as success so that it can be run repeatedly.
func setupAction(w io.Writer, args arguments, setupArgs setupArguments) error {
	cfg, err := args.loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.ValidateProvision(); err != nil {
		return err
	}

	ctrl := newController(cfg)
	result := ctrl.Setup(cfg.Cluster.IAMRoleName, provision.ClusterSpec{
		Identifier:     cfg.Cluster.Identifier,
		ClusterType:    cfg.Cluster.ClusterType,
		NodeType:       cfg.Cluster.NodeType,
		NumNodes:       cfg.Cluster.NumNodes,
		DBName:         cfg.Cluster.DBName,
		MasterUser:     cfg.Cluster.DBUser,
		MasterPassword: cfg.Cluster.DBPassword,
		Port:           cfg.Cluster.DBPort,
	})

	fmt.Fprintf(w, "role    :: %s\n", result.Role)
	fmt.Fprintf(w, "policy  :: %s\n", result.Policy)
	fmt.Fprintf(w, "cluster :: %s\n", result.Cluster)
	if result.RoleARN != "" {
		fmt.Fprintf(w, "DWH_ROLE_ARN :: %s\n", result.RoleARN)
	}

	if !setupArgs.wait || !result.Cluster.OK() {
		return nil
	}

	props, err := ctrl.WaitAvailable(cfg.Cluster.Identifier, util.NewPollTimer(setupArgs.waitLimit, setupArgs.waitInterval))
	if err != nil {
		internal.HandleError(err)
		return nil
	}
	printEndpoint(w, props)
	return nil
}

func endpointCommand(args *arguments) *cli.Command {
	return &cli.Command{
		Name:  "endpoint",
		Usage: "Show cluster properties, endpoint and role ARN",
		Action: func(c *cli.Context) error {
			return endpointAction(c.App.Writer, *args)
		},
	}
}

func endpointAction(w io.Writer, args arguments) error {
	cfg, err := args.loadConfig()
	if err != nil {
		return err
	}

	props, err := newController(cfg).DescribeCluster(cfg.Cluster.Identifier)
	if err != nil {
		return err
	}

	printEndpoint(w, props)
	return nil
}

func printEndpoint(w io.Writer, props *provision.ClusterProps) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Key", "Value"})
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.AppendBulk(props.Rows())
	table.Render()

	fmt.Fprintf(w, "DWH_ENDPOINT :: %s\n", props.EndpointAddress)
	fmt.Fprintf(w, "DWH_ROLE_ARN :: %s\n", props.RoleARN)
}

func teardownCommand(args *arguments) *cli.Command {
	return &cli.Command{
		Name:  "teardown",
		Usage: "Delete Redshift cluster without final snapshot and IAM role",
		Action: func(c *cli.Context) error {
			return teardownAction(c.App.Writer, *args)
		},
	}
}

// teardownAction logs error of deletion and finishes as success, same as setup.
func teardownAction(w io.Writer, args arguments) error {
	cfg, err := args.loadConfig()
	if err != nil {
		return err
	}

	if err := newController(cfg).TearDown(cfg.Cluster.Identifier, cfg.Cluster.IAMRoleName); err != nil {
		internal.HandleError(err)
		return nil
	}

	fmt.Fprintf(w, "Deleted cluster %s and role %s\n", cfg.Cluster.Identifier, cfg.Cluster.IAMRoleName)
	return nil
}

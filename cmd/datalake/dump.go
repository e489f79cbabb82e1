package main

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"

	"github.com/pkg/errors"
	"github.com/sparkify/starschema/pkg/models"
	cli "github.com/urfave/cli/v2"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/reader"
)

type dumpArguments struct {
	files   cli.StringSlice
	dataset string
}

func dumpCommand() *cli.Command {
	var dumpArgs dumpArguments

	return &cli.Command{
		Name:  "dump",
		Usage: "Print rows of output parquet files as JSON lines",
		Action: func(c *cli.Context) error {
			for _, fpath := range dumpArgs.files.Value() {
				if err := dumpParquetFile(c.App.Writer, fpath, dumpArgs.dataset); err != nil {
					return err
				}
			}
			return nil
		},
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:        "file",
				Aliases:     []string{"f"},
				Usage:       "Parquet file path",
				Required:    true,
				Destination: &dumpArgs.files,
			},
			&cli.StringFlag{
				Name:        "dataset",
				Aliases:     []string{"t"},
				Usage:       "Dataset of the files: songs, artists, users, time or songplays",
				Required:    true,
				Destination: &dumpArgs.dataset,
			},
		},
	}
}

func dumpParquetFile(w io.Writer, fpath, dataset string) error {
	rec := models.NewRecord(dataset)
	if rec == nil {
		return fmt.Errorf("Unknown dataset: %s", dataset)
	}

	fr, err := local.NewLocalFileReader(fpath)
	if err != nil {
		return errors.Wrapf(err, "Failed to open %s", fpath)
	}
	defer fr.Close()

	pr, err := reader.NewParquetReader(fr, rec, 1)
	if err != nil {
		return errors.Wrapf(err, "Failed to read parquet %s", fpath)
	}
	defer pr.ReadStop()

	sliceType := reflect.SliceOf(reflect.TypeOf(rec).Elem())
	num := int(pr.GetNumRows())
	for i := 0; i < num; i++ {
		buf := reflect.New(sliceType)
		buf.Elem().Set(reflect.MakeSlice(sliceType, 1, 1))
		if err := pr.Read(buf.Interface()); err != nil {
			return errors.Wrapf(err, "Failed to read row %d of %s", i, fpath)
		}

		raw, err := json.Marshal(buf.Elem().Index(0).Interface())
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(raw))
	}

	return nil
}

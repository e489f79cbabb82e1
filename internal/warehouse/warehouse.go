package warehouse

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // Redshift speaks PostgreSQL wire protocol
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/sparkify/starschema/internal"
	"github.com/sparkify/starschema/internal/rules"
	"github.com/sparkify/starschema/internal/schema"
	"github.com/sparkify/starschema/internal/staging"
)

var logger = internal.Logger

// Warehouse runs schema, load and transform statements on Redshift.
type Warehouse struct {
	db      *sqlx.DB
	dialect schema.Dialect
	profile *internal.Profile
}

// Open connects to the cluster database by lib/pq DSN.
func Open(dsn string) (*Warehouse, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "Fail to connect warehouse")
	}
	return New(db), nil
}

// New wraps an opened DB. It is used with go-sqlmock in test.
func New(db *sqlx.DB) *Warehouse {
	return &Warehouse{
		db:      db,
		dialect: schema.Redshift,
		profile: internal.NewProfile(),
	}
}

// Close closes DB connection.
func (x *Warehouse) Close() error {
	return x.db.Close()
}

// Profile returns elapsed time of executed steps.
func (x *Warehouse) Profile() *internal.Profile {
	return x.profile
}

// CreateTables drops and creates all staging, dimension and fact tables.
func (x *Warehouse) CreateTables(ctx context.Context) error {
	x.profile.Start("create_tables")
	defer x.profile.Stop("create_tables")

	if err := schema.Reset(ctx, x.db, x.dialect); err != nil {
		return err
	}
	logger.WithField("dialect", x.dialect.Name()).Info("Created tables")
	return nil
}

// Load copies raw JSON from S3 into staging tables. Rows are duplicated if
// staging tables are not truncated before.
func (x *Warehouse) Load(ctx context.Context, cfg staging.LoadConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	for _, src := range cfg.Sources() {
		step := "load/" + src.Table
		x.profile.Start(step)
		stmt := staging.CopyStatement(src, cfg.RoleARN, cfg.Region)
		_, err := x.db.ExecContext(ctx, stmt)
		elapsed := x.profile.Stop(step)
		if err != nil {
			return errors.Wrapf(err, "Fail to copy %s into %s", src.Path, src.Table)
		}

		logger.WithFields(logrus.Fields{
			"table":   src.Table,
			"source":  src.Path,
			"elapsed": elapsed.String(),
		}).Info("Loaded staging table")
	}

	return nil
}

// Truncate empties staging tables to make Load re-runnable.
func (x *Warehouse) Truncate(ctx context.Context) error {
	return schema.Exec(ctx, x.db, staging.Truncate())
}

// Transform empties derived tables and runs the transform rules in
// dependency order, so every run recomputes them from the staging tables.
// The first failure aborts the batch and tables already filled are left as
// they are.
func (x *Warehouse) Transform(ctx context.Context) error {
	ordered, err := rules.Ordered()
	if err != nil {
		return err
	}

	x.profile.Start("transform/clear")
	err = schema.Exec(ctx, x.db, rules.ClearStatements(ordered))
	x.profile.Stop("transform/clear")
	if err != nil {
		return errors.Wrap(err, "Fail to clear derived tables")
	}

	for _, r := range ordered {
		step := "transform/" + r.Name
		x.profile.Start(step)
		res, err := x.db.ExecContext(ctx, rules.InsertStatement(r))
		elapsed := x.profile.Stop(step)
		if err != nil {
			return errors.Wrapf(err, "Fail to run transform rule %s into %s", r.Name, r.Target)
		}

		entry := logger.WithFields(logrus.Fields{
			"rule":    r.Name,
			"target":  r.Target,
			"elapsed": elapsed.String(),
		})
		if n, err := res.RowsAffected(); err == nil {
			entry = entry.WithField("rows", n)
		}
		entry.Info("Transformed")
	}

	return nil
}

// Count returns number of rows of each table.
func (x *Warehouse) Count(ctx context.Context) (map[string]int64, error) {
	counts := map[string]int64{}
	for _, t := range schema.Tables() {
		var n int64
		if err := x.db.GetContext(ctx, &n, fmt.Sprintf("SELECT COUNT(*) FROM %s", t.Name)); err != nil {
			return nil, errors.Wrapf(err, "Fail to count rows of %s", t.Name)
		}
		counts[t.Name] = n
	}
	return counts, nil
}

// ETL runs Load and Transform as one batch.
func (x *Warehouse) ETL(ctx context.Context, cfg staging.LoadConfig) error {
	if err := x.Load(ctx, cfg); err != nil {
		return err
	}
	if err := x.Transform(ctx); err != nil {
		return err
	}

	logger.WithFields(x.profile.Fields()).Info("Done ETL")
	return nil
}

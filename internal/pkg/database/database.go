package database

import (
	"context"
	"database/sql"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/extra/bundebug"
)

const DefaultDSN = "file:survey.db?cache=shared"

type Config struct {
	DSN      string
	Password string
	Debug    bool
}

func IsPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

// Open picks the dialect from the DSN: postgres URLs go through pgdriver,
// everything else is treated as a SQLite data source.
func Open(cfg Config) (*bun.DB, error) {
	dsn := cfg.DSN
	if dsn == "" {
		dsn = DefaultDSN
	}

	var db *bun.DB
	if IsPostgres(dsn) {
		sqldb := sql.OpenDB(pgdriver.NewConnector(
			pgdriver.WithDSN(dsn),
			pgdriver.WithPassword(cfg.Password),
		))
		db = bun.NewDB(sqldb, pgdialect.New())
	} else {
		sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to open sqlite database", goerr.V("dsn", dsn))
		}
		// sqlite serializes writers anyway; one connection avoids "database is locked"
		sqldb.SetMaxOpenConns(1)
		db = bun.NewDB(sqldb, sqlitedialect.New())

		if _, err := db.ExecContext(context.Background(), "PRAGMA foreign_keys = ON"); err != nil {
			return nil, goerr.Wrap(err, "failed to enable foreign keys")
		}
	}

	if cfg.Debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}

	return db, nil
}

// Package storage implements the local storage engine: a
// single-database, single-process SQL store backed by a pure-Go
// SQLite driver. It owns schema creation, transactional CRUD for
// every entity, and the deterministic listing orders the models rely
// on.
package storage

import (
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/ncruces/go-sqlite3/driver"
	"github.com/rs/zerolog"

	"github.com/notarium/core/pkg/types"
)

// Engine is the SQLite-backed local storage engine. All access is
// serialized through mu: the engine is not internally parallel (the
// façade's single worker owns that), so a simple mutex is sufficient
// here and keeps this package usable on its own.
type Engine struct {
	mu  sync.Mutex
	db  *sql.DB
	log zerolog.Logger
}

// Open opens (or creates) the database at dsn. When startFromScratch
// is true the schema is dropped and rebuilt before use.
func Open(dsn string, startFromScratch bool, log zerolog.Logger) (*Engine, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, types.NewError(types.KindStorageFailure, "storage.Open", "failed to open database", err)
	}
	db.SetMaxOpenConns(1)

	e := &Engine{db: db, log: log.With().Str("component", "storage").Logger()}

	if startFromScratch {
		if err := e.dropAll(); err != nil {
			db.Close()
			return nil, err
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, types.NewError(types.KindStorageFailure, "storage.Open", "failed to create schema", err)
	}
	if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		db.Close()
		return nil, types.NewError(types.KindStorageFailure, "storage.Open", "failed to enable foreign keys", err)
	}
	e.log.Debug().Str("dsn", dsn).Bool("start_from_scratch", startFromScratch).Msg("storage engine opened")
	return e, nil
}

var tablesInDropOrder = []string{
	"resources", "note_tags", "notes", "shared_notebooks", "notebook_restrictions",
	"notebooks", "saved_searches", "tags", "linked_notebooks",
	"business_user_info", "premium_info", "accounting", "users", "schema_meta",
}

func (e *Engine) dropAll() error {
	for _, table := range tablesInDropOrder {
		if _, err := e.db.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s", table)); err != nil {
			return types.NewError(types.KindStorageFailure, "storage.dropAll", "failed to drop table "+table, err)
		}
	}
	return nil
}

// Close releases the underlying database handle.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.db == nil {
		return nil
	}
	return e.db.Close()
}

// withTx runs fn inside a transaction, committing on success and
// rolling back on any error so mutations never leave partial writes.
func (e *Engine) withTx(op string, fn func(tx *sql.Tx) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	tx, err := e.db.Begin()
	if err != nil {
		return types.NewError(types.KindStorageFailure, op, "failed to begin transaction", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return types.NewError(types.KindStorageFailure, op, "failed to commit transaction", err)
	}
	return nil
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func intToBool(i int64) bool { return i != 0 }

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullInt64Ptr(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func int64PtrFromNull(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}

package database

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/shishobooks/shelf/pkg/config"
	"github.com/shishobooks/shelf/pkg/errcodes"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

const memoryPath = ":memory:"

type logQueryHook struct {
	log logger.Logger
}

func (*logQueryHook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (qh *logQueryHook) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	data := logger.Data{"duration_ms": time.Since(event.StartTime).Milliseconds()}
	if event.Err != nil && !errors.Is(event.Err, sql.ErrNoRows) {
		data["error"] = event.Err.Error()
	}
	qh.log.Debug(event.Query, data)
}

// New opens the catalog file. Any failure to reach or initialize the file is
// reported as a storage-unavailable error.
func New(cfg *config.Config) (*bun.DB, error) {
	if cfg.DatabaseFilePath != memoryPath {
		if err := os.MkdirAll(filepath.Dir(cfg.DatabaseFilePath), 0755); err != nil {
			return nil, errors.Wrap(errcodes.StorageUnavailable(err.Error()), "failed to create database directory")
		}
	}

	sqldb, err := sql.Open(sqliteshim.ShimName, cfg.DatabaseFilePath)
	if err != nil {
		return nil, errors.Wrap(errcodes.StorageUnavailable(err.Error()), "failed to open database")
	}
	// A single connection serializes writers, so SQLITE_BUSY can't happen
	// between requests, and :memory: stays one database.
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())

	// print out all queries in debug mode
	if cfg.DatabaseDebug {
		db.AddQueryHook(&logQueryHook{logger.NewWithLevel("debug")})
	}

	// Retry up to a few times to ensure that the database can connect.
	for i := 0; i < max(cfg.DatabaseConnectRetryCount, 1); i++ {
		_, err = db.Exec("SELECT 1")
		if err == nil {
			break
		}
		time.Sleep(cfg.DatabaseConnectRetryDelay)
	}
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrap(errcodes.StorageUnavailable(err.Error()), "failed to connect to database")
	}

	if err := configure(db, cfg); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

func configure(db *bun.DB, cfg *config.Config) error {
	// WAL mode allows concurrent reads during writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return errors.Wrap(errcodes.StorageUnavailable(err.Error()), "failed to enable WAL mode")
	}

	if _, err := db.Exec("PRAGMA busy_timeout=?", cfg.DatabaseBusyTimeout.Milliseconds()); err != nil {
		return errors.Wrap(errcodes.StorageUnavailable(err.Error()), "failed to set busy_timeout")
	}

	var result string
	if err := db.QueryRow("PRAGMA quick_check").Scan(&result); err != nil {
		return errors.Wrap(errcodes.StorageUnavailable(err.Error()), "failed to check database integrity")
	}
	if result != "ok" {
		return errors.WithStack(errcodes.StorageUnavailable("integrity check failed: " + result))
	}

	return nil
}

// IsUniqueViolation reports whether err came from a UNIQUE constraint.
func IsUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// IsMissingTable reports whether err came from querying a table that doesn't
// exist in this catalog file.
func IsMissingTable(err error) bool {
	return err != nil && strings.Contains(err.Error(), "no such table")
}

var storageErrorMarkers = []string{
	"attempt to write a readonly database",
	"database disk image is malformed",
	"disk I/O error",
	"file is not a database",
	"unable to open database file",
	"database or disk is full",
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ContainsPattern turns s into a LIKE pattern matching it as a literal
// substring. Queries using it must add ESCAPE '\'.
func ContainsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// ClassifyError converts low-level SQLite failures into a storage-unavailable
// error and leaves every other error untouched.
func ClassifyError(err error) error {
	if err == nil || errcodes.HasCode(err, errcodes.CodeStorageUnavailable) {
		return err
	}
	msg := err.Error()
	for _, marker := range storageErrorMarkers {
		if strings.Contains(msg, marker) {
			return errors.Wrap(errcodes.StorageUnavailable(marker), msg)
		}
	}
	return err
}

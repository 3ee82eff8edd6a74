// Package importer loads book exports into the catalog.
package importer

import (
	"context"
	"database/sql"
	"io"
	"os"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/segmentio/encoding/json"
	"github.com/shishobooks/shelf/pkg/errcodes"
	"github.com/uptrace/bun"
)

// importedColumns are overwritten when a record's id already exists. Views,
// ratings and created_at survive a re-import.
var importedColumns = []string{
	"title",
	"author",
	"publisher",
	"medium",
	"standard",
	"issn",
	"subject",
	"syllabus",
	"description",
	"year_of_publication",
	"content_type",
	"book_type",
	"pdf_link",
	"thumbnail_link",
}

var acceptedMimeTypes = []string{"application/json", "text/plain"}

type Result struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

type Importer struct {
	db *bun.DB
}

func New(db *bun.DB) *Importer {
	return &Importer{db}
}

// ImportFile checks that path holds JSON before importing it.
func (im *Importer) ImportFile(ctx context.Context, path string) (*Result, error) {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if !mimetype.EqualsAny(mtype.String(), acceptedMimeTypes...) {
		return nil, errcodes.ValidationError("Import file must be JSON, got " + mtype.String())
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer f.Close()

	return im.Import(ctx, f)
}

// Import reads an export document: a top-level array whose second element
// carries the records under "data". Records are upserted by id in one
// transaction; a record the database rejects is logged and skipped.
func (im *Importer) Import(ctx context.Context, r io.Reader) (*Result, error) {
	log := logger.FromContext(ctx)

	var doc []json.RawMessage
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errcodes.ValidationError("Import file is not a JSON array: " + err.Error())
	}

	result := &Result{}
	if len(doc) < 2 {
		return result, nil
	}

	var payload struct {
		Data []record `json:"data"`
	}
	if err := json.Unmarshal(doc[1], &payload); err != nil {
		return nil, errcodes.ValidationError("Import data is malformed: " + err.Error())
	}

	now := time.Now().UTC()
	err := im.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		for i, rec := range payload.Data {
			book, ok := rec.book()
			if !ok {
				log.Warn("skipping record without id or title", logger.Data{"index": i})
				result.Skipped++
				continue
			}
			book.CreatedAt = now

			q := tx.NewInsert().
				Model(book).
				On("CONFLICT (id) DO UPDATE")
			for _, col := range importedColumns {
				q = q.Set("? = EXCLUDED.?", bun.Ident(col), bun.Ident(col))
			}
			if _, err := q.Returning("NULL").Exec(ctx); err != nil {
				if ctx.Err() != nil {
					return errors.WithStack(err)
				}
				log.Err(err).Warn("failed to import book", logger.Data{"book_id": book.ID})
				result.Skipped++
				continue
			}
			result.Imported++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("imported books", logger.Data{"imported": result.Imported, "skipped": result.Skipped})
	return result, nil
}

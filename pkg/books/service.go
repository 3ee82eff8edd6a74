package books

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shishobooks/shelf/pkg/database"
	"github.com/shishobooks/shelf/pkg/errcodes"
	"github.com/shishobooks/shelf/pkg/labelutil"
	"github.com/shishobooks/shelf/pkg/models"
	"github.com/shishobooks/shelf/pkg/pagination"
	"github.com/uptrace/bun"
)

const (
	DefaultPublisherLimit  = 30
	DefaultRecentLimit     = 6
	DefaultSuggestionLimit = 5
)

const (
	SortTitle      = "title"
	SortTitleDesc  = "-title"
	SortViews      = "views"
	SortViewsDesc  = "-views"
	SortRating     = "rating"
	SortRatingDesc = "-rating"
	SortNewest     = "newest"
)

// Every ordering ends on the primary key so pages never overlap.
var sortOrders = map[string][]string{
	SortTitle:      {"b.title ASC", "b.id ASC"},
	SortTitleDesc:  {"b.title DESC", "b.id DESC"},
	SortViews:      {"b.views ASC", "b.title ASC", "b.id ASC"},
	SortViewsDesc:  {"b.views DESC", "b.title ASC", "b.id ASC"},
	SortRating:     {"b.rating ASC", "b.title ASC", "b.id ASC"},
	SortRatingDesc: {"b.rating DESC", "b.title ASC", "b.id ASC"},
	SortNewest:     {"b.id DESC"},
}

type ListBooksOptions struct {
	Search    *string
	Subject   *string
	Publisher *string
	Page      int
	PageSize  int
	Sort      string
}

type BookPage struct {
	Books      []*models.Book        `json:"books"`
	Pagination pagination.Pagination `json:"pagination"`
}

type SubjectCount struct {
	Subject string `json:"subject"`
	Count   int    `json:"count"`
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

// ListBooks returns one page of the books matching opts. A page past the end
// is clamped to the last page.
func (svc *Service) ListBooks(ctx context.Context, opts ListBooksOptions) (*BookPage, error) {
	order, ok := sortOrders[opts.Sort]
	if opts.Sort == "" {
		order, ok = sortOrders[SortTitle], true
	}
	if !ok {
		return nil, errcodes.ValidationError("Unknown sort " + opts.Sort)
	}

	total, err := applyFilters(svc.db.NewSelect().Model((*models.Book)(nil)), opts).Count(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	page := pagination.New(total, opts.Page, opts.PageSize)

	books := []*models.Book{}
	err = applyFilters(svc.db.NewSelect().Model(&books), opts).
		Order(order...).
		Limit(page.Limit()).
		Offset(page.Offset()).
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return &BookPage{Books: books, Pagination: page}, nil
}

func applyFilters(q *bun.SelectQuery, opts ListBooksOptions) *bun.SelectQuery {
	if opts.Search != nil && strings.TrimSpace(*opts.Search) != "" {
		like := database.ContainsPattern(strings.ToLower(strings.TrimSpace(*opts.Search)))
		q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				Where(`LOWER(b.title) LIKE ? ESCAPE '\'`, like).
				WhereOr(`LOWER(b.subject) LIKE ? ESCAPE '\'`, like).
				WhereOr(`LOWER(b.publisher) LIKE ? ESCAPE '\'`, like).
				WhereOr(`LOWER(b.author) LIKE ? ESCAPE '\'`, like)
		})
	}
	if opts.Subject != nil && *opts.Subject != "" {
		q = q.Where("b.subject = ?", *opts.Subject)
	}
	if opts.Publisher != nil && *opts.Publisher != "" {
		q = q.Where("b.publisher = ?", *opts.Publisher)
	}

	return q
}

// ListSubjects returns every usable subject with its book count. Subjects
// that aren't printable ASCII are dropped.
func (svc *Service) ListSubjects(ctx context.Context) ([]SubjectCount, error) {
	var rows []SubjectCount
	err := svc.db.NewSelect().
		Model((*models.Book)(nil)).
		ColumnExpr("b.subject AS subject").
		ColumnExpr("COUNT(*) AS count").
		Where("b.subject IS NOT NULL").
		Where("TRIM(b.subject) != ''").
		Group("b.subject").
		Order("b.subject ASC").
		Scan(ctx, &rows)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	subjects := make([]SubjectCount, 0, len(rows))
	for _, row := range rows {
		if labelutil.IsPrintableASCII(row.Subject) {
			subjects = append(subjects, row)
		}
	}
	return subjects, nil
}

// ListPublishers returns up to limit distinct publishers in name order. The
// limit is applied after filtering so garbage values don't use up slots.
func (svc *Service) ListPublishers(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 {
		limit = DefaultPublisherLimit
	}

	var publishers []string
	err := svc.db.NewSelect().
		Model((*models.Book)(nil)).
		Distinct().
		ColumnExpr("b.publisher").
		Where("b.publisher IS NOT NULL").
		Where("TRIM(b.publisher) != ''").
		Order("b.publisher ASC").
		Scan(ctx, &publishers)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	publishers = labelutil.Filter(publishers)
	if len(publishers) > limit {
		publishers = publishers[:limit]
	}
	return publishers, nil
}

func (svc *Service) RetrieveBook(ctx context.Context, id int) (*models.Book, error) {
	book := &models.Book{}
	err := svc.db.NewSelect().
		Model(book).
		Where("b.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Book")
		}
		return nil, errors.WithStack(err)
	}
	return book, nil
}

func (svc *Service) CreateBook(ctx context.Context, fields BookFields) (*models.Book, error) {
	if err := ValidateFields(fields); err != nil {
		return nil, err
	}

	book := &models.Book{CreatedAt: time.Now().UTC()}
	fields.apply(book)

	_, err := svc.db.NewInsert().
		Model(book).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return book, nil
}

// UpdateBook replaces the editable columns of book id with fields.
func (svc *Service) UpdateBook(ctx context.Context, id int, fields BookFields) (*models.Book, error) {
	if err := ValidateFields(fields); err != nil {
		return nil, err
	}

	book := &models.Book{ID: id}
	fields.apply(book)

	res, err := svc.db.NewUpdate().
		Model(book).
		Column(editableColumns...).
		WherePK().
		Exec(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, errcodes.NotFound("Book")
	}

	return svc.RetrieveBook(ctx, id)
}

// DeleteBook removes a book and every row that references it. Dependent
// tables missing from an older catalog file are skipped.
func (svc *Service) DeleteBook(ctx context.Context, id int) error {
	return svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.NewSelect().
			Model((*models.Book)(nil)).
			Where("id = ?", id).
			Exists(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if !exists {
			return errcodes.NotFound("Book")
		}

		if err := deleteDependents(ctx, tx, "book_id = ?", id); err != nil {
			return err
		}

		_, err = tx.NewDelete().
			Model((*models.Book)(nil)).
			Where("id = ?", id).
			Exec(ctx)
		return errors.WithStack(err)
	})
}

const unlinkedCondition = "pdf_link IS NULL OR TRIM(pdf_link) = ''"

// PruneUnlinked removes every book without a PDF link, with its dependent
// rows, and reports how many books went.
func (svc *Service) PruneUnlinked(ctx context.Context) (int, error) {
	var removed int64
	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		unlinked := tx.NewSelect().
			Model((*models.Book)(nil)).
			Column("id").
			Where(unlinkedCondition)

		if err := deleteDependents(ctx, tx, "book_id IN (?)", unlinked); err != nil {
			return err
		}

		res, err := tx.NewDelete().
			Model((*models.Book)(nil)).
			Where(unlinkedCondition).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		removed, _ = res.RowsAffected()
		return nil
	})
	if err != nil {
		return 0, err
	}
	return int(removed), nil
}

func deleteDependents(ctx context.Context, tx bun.Tx, where string, args ...interface{}) error {
	for _, table := range models.DependentTables {
		_, err := tx.NewDelete().
			TableExpr(table).
			Where(where, args...).
			Exec(ctx)
		if err != nil && !database.IsMissingTable(err) {
			return errors.Wrapf(err, "failed to delete from %s", table)
		}
	}
	return nil
}

// RecentBooks returns the most recently added books.
func (svc *Service) RecentBooks(ctx context.Context, limit int) ([]*models.Book, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	books := []*models.Book{}
	err := svc.db.NewSelect().
		Model(&books).
		Order("b.id DESC").
		Limit(limit).
		Scan(ctx)
	return books, errors.WithStack(err)
}

func (svc *Service) BooksBySubject(ctx context.Context, subject string) ([]*models.Book, error) {
	books := []*models.Book{}
	err := svc.db.NewSelect().
		Model(&books).
		Where("b.subject = ?", subject).
		Order("b.title ASC", "b.id ASC").
		Scan(ctx)
	return books, errors.WithStack(err)
}

// SuggestTitles returns titles containing text, for search-as-you-type.
func (svc *Service) SuggestTitles(ctx context.Context, text string, limit int) ([]string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return []string{}, nil
	}
	if limit <= 0 {
		limit = DefaultSuggestionLimit
	}

	titles := []string{}
	err := svc.db.NewSelect().
		Model((*models.Book)(nil)).
		ColumnExpr("b.title").
		Where(`LOWER(b.title) LIKE ? ESCAPE '\'`, database.ContainsPattern(strings.ToLower(text))).
		Order("b.title ASC").
		Limit(limit).
		Scan(ctx, &titles)
	return titles, errors.WithStack(err)
}

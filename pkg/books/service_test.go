package books

import (
	"context"
	"fmt"
	"testing"

	"github.com/shishobooks/shelf/internal/testdb"
	"github.com/shishobooks/shelf/pkg/errcodes"
	"github.com/shishobooks/shelf/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

func strPtr(s string) *string { return &s }

func seedBook(t *testing.T, db *bun.DB, book *models.Book) *models.Book {
	t.Helper()
	_, err := db.NewInsert().Model(book).Exec(context.Background())
	require.NoError(t, err)
	return book
}

func titles(books []*models.Book) []string {
	out := make([]string, 0, len(books))
	for _, b := range books {
		out = append(out, b.Title)
	}
	return out
}

func TestListBooks_SubjectPageTwoIsLexicographic(t *testing.T) {
	t.Parallel()
	db := testdb.New(t)
	svc := NewService(db)

	for i := 1; i <= 25; i++ {
		seedBook(t, db, &models.Book{Title: fmt.Sprintf("Book %d", i), Subject: strPtr("Math")})
	}
	seedBook(t, db, &models.Book{Title: "Book 0", Subject: strPtr("History")})

	page, err := svc.ListBooks(context.Background(), ListBooksOptions{
		Subject:  strPtr("Math"),
		Page:     2,
		PageSize: 10,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Book 19", "Book 2", "Book 20", "Book 21", "Book 22",
		"Book 23", "Book 24", "Book 25", "Book 3", "Book 4",
	}, titles(page.Books))
	assert.Equal(t, 25, page.Pagination.TotalCount)
	assert.Equal(t, 3, page.Pagination.TotalPages)
	assert.Equal(t, 2, page.Pagination.Page)
}

func TestListBooks_PagesCoverEveryRowOnce(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := testdb.New(t)
	svc := NewService(db)

	for i := 1; i <= 23; i++ {
		subject := "Science"
		if i%3 == 0 {
			subject = "Art"
		}
		seedBook(t, db, &models.Book{Title: fmt.Sprintf("Title %02d", i%7), Subject: &subject})
	}

	filters := []ListBooksOptions{
		{},
		{Subject: strPtr("Science")},
		{Search: strPtr("title 0")},
		{Subject: strPtr("Nope")},
	}
	for _, f := range filters {
		for _, size := range []int{1, 4, 7, 50} {
			seen := map[int]int{}
			f.PageSize = size
			f.Page = 1
			first, err := svc.ListBooks(ctx, f)
			require.NoError(t, err)

			sum := 0
			for p := 1; p <= first.Pagination.TotalPages; p++ {
				f.Page = p
				page, err := svc.ListBooks(ctx, f)
				require.NoError(t, err)
				sum += len(page.Books)
				for _, b := range page.Books {
					seen[b.ID]++
				}
			}

			assert.Equal(t, first.Pagination.TotalCount, sum)
			for id, n := range seen {
				assert.Equal(t, 1, n, "book %d appeared %d times", id, n)
			}
		}
	}
}

func TestListBooks_ClampsPastLastPage(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := testdb.New(t)
	svc := NewService(db)

	for i := 1; i <= 12; i++ {
		seedBook(t, db, &models.Book{Title: fmt.Sprintf("Vol %02d", i)})
	}

	last, err := svc.ListBooks(ctx, ListBooksOptions{Page: 3, PageSize: 5})
	require.NoError(t, err)
	beyond, err := svc.ListBooks(ctx, ListBooksOptions{Page: 99, PageSize: 5})
	require.NoError(t, err)

	assert.Equal(t, titles(last.Books), titles(beyond.Books))
	assert.Equal(t, 3, beyond.Pagination.Page)

	empty, err := svc.ListBooks(ctx, ListBooksOptions{Search: strPtr("missing"), Page: 4, PageSize: 5})
	require.NoError(t, err)
	assert.Empty(t, empty.Books)
	assert.Equal(t, 1, empty.Pagination.TotalPages)
	assert.Equal(t, 1, empty.Pagination.Page)
}

func TestListBooks_SearchMatchesAnyField(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := testdb.New(t)
	svc := NewService(db)

	seedBook(t, db, &models.Book{Title: "Calculus Made Easy"})
	seedBook(t, db, &models.Book{Title: "Poems", Subject: strPtr("CALCULUS")})
	seedBook(t, db, &models.Book{Title: "Essays", Publisher: strPtr("Calculus Press")})
	seedBook(t, db, &models.Book{Title: "Letters", Author: strPtr("Ada Calculus")})
	seedBook(t, db, &models.Book{Title: "Unrelated"})

	page, err := svc.ListBooks(ctx, ListBooksOptions{Search: strPtr("calculus")})
	require.NoError(t, err)
	assert.Equal(t, []string{"Calculus Made Easy", "Essays", "Letters", "Poems"}, titles(page.Books))

	page, err = svc.ListBooks(ctx, ListBooksOptions{Search: strPtr("calculus"), Publisher: strPtr("Calculus Press")})
	require.NoError(t, err)
	assert.Equal(t, []string{"Essays"}, titles(page.Books))
}

func TestListBooks_SearchTreatsWildcardsLiterally(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := testdb.New(t)
	svc := NewService(db)

	seedBook(t, db, &models.Book{Title: "100% Maths"})
	seedBook(t, db, &models.Book{Title: "snake_case Primer"})
	seedBook(t, db, &models.Book{Title: "Plain Title"})

	page, err := svc.ListBooks(ctx, ListBooksOptions{Search: strPtr("%")})
	require.NoError(t, err)
	assert.Equal(t, []string{"100% Maths"}, titles(page.Books))

	page, err = svc.ListBooks(ctx, ListBooksOptions{Search: strPtr("_")})
	require.NoError(t, err)
	assert.Equal(t, []string{"snake_case Primer"}, titles(page.Books))

	suggestions, err := svc.SuggestTitles(ctx, "%", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"100% Maths"}, suggestions)
}

func TestListBooks_Sort(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := testdb.New(t)
	svc := NewService(db)

	seedBook(t, db, &models.Book{Title: "B", Views: 5})
	seedBook(t, db, &models.Book{Title: "A", Views: 1})
	seedBook(t, db, &models.Book{Title: "C", Views: 9})

	page, err := svc.ListBooks(ctx, ListBooksOptions{Sort: SortViewsDesc})
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "B", "A"}, titles(page.Books))

	page, err = svc.ListBooks(ctx, ListBooksOptions{Sort: SortNewest})
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "A", "B"}, titles(page.Books))

	_, err = svc.ListBooks(ctx, ListBooksOptions{Sort: "random"})
	assert.True(t, errcodes.HasCode(err, errcodes.CodeValidationError))
}

func TestListSubjectsAndPublishers_FilterGarbage(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := testdb.New(t)
	svc := NewService(db)

	seedBook(t, db, &models.Book{Title: "1", Subject: strPtr("Math"), Publisher: strPtr("Orbit")})
	seedBook(t, db, &models.Book{Title: "2", Subject: strPtr("Math"), Publisher: strPtr("Acme")})
	seedBook(t, db, &models.Book{Title: "3", Subject: strPtr("Gañit"), Publisher: strPtr("Bad\tName")})
	seedBook(t, db, &models.Book{Title: "4", Subject: strPtr("   "), Publisher: strPtr("")})
	seedBook(t, db, &models.Book{Title: "5", Subject: strPtr("Biology")})
	seedBook(t, db, &models.Book{Title: "6"})

	subjects, err := svc.ListSubjects(ctx)
	require.NoError(t, err)
	assert.Equal(t, []SubjectCount{{"Biology", 1}, {"Math", 2}}, subjects)

	publishers, err := svc.ListPublishers(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Acme", "Orbit"}, publishers)

	publishers, err = svc.ListPublishers(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"Acme"}, publishers)
}

func TestCreateAndUpdateBook_Validation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := NewService(testdb.New(t))

	cases := []struct {
		name   string
		fields BookFields
		msg    string
	}{
		{"blank title", BookFields{Title: "   "}, "Title is required"},
		{"bad year", BookFields{Title: "A", YearOfPublication: strPtr("19x4")}, "Year must be a valid number"},
		{"negative year", BookFields{Title: "A", YearOfPublication: strPtr("-1994")}, "Year must be a valid number"},
		{"bad link", BookFields{Title: "A", PDFLink: strPtr("ftp://x/y.pdf")}, "PDF link must start with http:// or https://"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateBook(ctx, tc.fields)
			require.Error(t, err)
			assert.True(t, errcodes.HasCode(err, errcodes.CodeValidationError))
			assert.Equal(t, tc.msg, err.Error())
		})
	}

	book, err := svc.CreateBook(ctx, BookFields{
		Title:             " Algebra ",
		Author:            strPtr(""),
		YearOfPublication: strPtr("1994"),
		PDFLink:           strPtr("https://example.com/algebra.pdf"),
	})
	require.NoError(t, err)
	assert.NotZero(t, book.ID)
	assert.Equal(t, "Algebra", book.Title)
	assert.Nil(t, book.Author)
	assert.Zero(t, book.Views)

	_, err = svc.UpdateBook(ctx, book.ID, BookFields{Title: ""})
	assert.True(t, errcodes.HasCode(err, errcodes.CodeValidationError))

	updated, err := svc.UpdateBook(ctx, book.ID, BookFields{Title: "Algebra II", Subject: strPtr("Math")})
	require.NoError(t, err)
	assert.Equal(t, "Algebra II", updated.Title)
	assert.Equal(t, "Math", *updated.Subject)
	assert.Nil(t, updated.PDFLink)

	_, err = svc.UpdateBook(ctx, book.ID+100, BookFields{Title: "Ghost"})
	assert.True(t, errcodes.HasCode(err, errcodes.CodeNotFound))
}

func countRows(t *testing.T, db *bun.DB, table string, bookID int) int {
	t.Helper()
	var n int
	err := db.NewSelect().TableExpr(table).ColumnExpr("COUNT(*)").Where("book_id = ?", bookID).Scan(context.Background(), &n)
	require.NoError(t, err)
	return n
}

func TestDeleteBook_RemovesDependents(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := testdb.New(t)
	svc := NewService(db)

	book := seedBook(t, db, &models.Book{Title: "Doomed"})
	keep := seedBook(t, db, &models.Book{Title: "Kept"})
	testdb.Exec(t, db, `INSERT INTO users (username, password_hash) VALUES ('reader', 'x')`)
	for _, id := range []int{book.ID, keep.ID} {
		testdb.Exec(t, db, `INSERT INTO watchlist (user_id, book_id) VALUES (1, ?)`, id)
		testdb.Exec(t, db, `INSERT INTO reading_history (user_id, book_id) VALUES (1, ?)`, id)
		testdb.Exec(t, db, `INSERT INTO book_views (book_id, user_id) VALUES (?, NULL)`, id)
		testdb.Exec(t, db, `INSERT INTO reading_sessions (book_id, user_id) VALUES (?, 1)`, id)
	}

	require.NoError(t, svc.DeleteBook(ctx, book.ID))

	for _, table := range models.DependentTables {
		assert.Zero(t, countRows(t, db, table, book.ID), table)
		assert.Equal(t, 1, countRows(t, db, table, keep.ID), table)
	}

	page, err := svc.ListBooks(ctx, ListBooksOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Kept"}, titles(page.Books))

	err = svc.DeleteBook(ctx, book.ID)
	assert.True(t, errcodes.HasCode(err, errcodes.CodeNotFound))
}

func TestDeleteBook_ToleratesMissingDependentTable(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := testdb.New(t)
	svc := NewService(db)

	book := seedBook(t, db, &models.Book{Title: "Legacy"})
	testdb.Exec(t, db, `DROP TABLE reading_sessions`)

	require.NoError(t, svc.DeleteBook(ctx, book.ID))
	_, err := svc.RetrieveBook(ctx, book.ID)
	assert.True(t, errcodes.HasCode(err, errcodes.CodeNotFound))
}

func TestPruneUnlinked(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := testdb.New(t)
	svc := NewService(db)

	linked := seedBook(t, db, &models.Book{Title: "Linked", PDFLink: strPtr("https://example.com/a.pdf")})
	noLink := seedBook(t, db, &models.Book{Title: "No link"})
	blank := seedBook(t, db, &models.Book{Title: "Blank link", PDFLink: strPtr("  ")})
	testdb.Exec(t, db, `INSERT INTO book_views (book_id) VALUES (?)`, noLink.ID)

	removed, err := svc.PruneUnlinked(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	_, err = svc.RetrieveBook(ctx, linked.ID)
	assert.NoError(t, err)
	_, err = svc.RetrieveBook(ctx, blank.ID)
	assert.Error(t, err)
	assert.Zero(t, countRows(t, db, "book_views", noLink.ID))
}

func TestDiscoveryQueries(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := testdb.New(t)
	svc := NewService(db)

	for i := 1; i <= 8; i++ {
		subject := "Physics"
		if i%2 == 0 {
			subject = "Chemistry"
		}
		seedBook(t, db, &models.Book{Title: fmt.Sprintf("Study Guide %d", i), Subject: &subject})
	}

	recent, err := svc.RecentBooks(ctx, 0)
	require.NoError(t, err)
	require.Len(t, recent, DefaultRecentLimit)
	assert.Equal(t, "Study Guide 8", recent[0].Title)

	chemistry, err := svc.BooksBySubject(ctx, "Chemistry")
	require.NoError(t, err)
	assert.Equal(t, []string{"Study Guide 2", "Study Guide 4", "Study Guide 6", "Study Guide 8"}, titles(chemistry))

	suggestions, err := svc.SuggestTitles(ctx, "guide", 0)
	require.NoError(t, err)
	assert.Len(t, suggestions, DefaultSuggestionLimit)

	suggestions, err = svc.SuggestTitles(ctx, " ", 0)
	require.NoError(t, err)
	assert.Empty(t, suggestions)
}

package books

import (
	"regexp"
	"strings"

	"github.com/shishobooks/shelf/pkg/errcodes"
	"github.com/shishobooks/shelf/pkg/models"
)

var digitsRE = regexp.MustCompile(`^\d+$`)

// BookFields are the editable columns of a book. Optional values that are nil
// or blank are stored as NULL.
type BookFields struct {
	Title             string
	Author            *string
	Publisher         *string
	Medium            *string
	Standard          *string
	ISSN              *string
	Subject           *string
	Syllabus          *string
	Description       *string
	YearOfPublication *string
	ContentType       *string
	BookType          *string
	PDFLink           *string
	ThumbnailLink     *string
}

// ValidateFields rejects input that would be stored wrong. It never coerces.
func ValidateFields(f BookFields) error {
	if strings.TrimSpace(f.Title) == "" {
		return errcodes.ValidationError("Title is required")
	}
	if year := trimmed(f.YearOfPublication); year != nil && !digitsRE.MatchString(*year) {
		return errcodes.ValidationError("Year must be a valid number")
	}
	if link := trimmed(f.PDFLink); link != nil && !isWebLink(*link) {
		return errcodes.ValidationError("PDF link must start with http:// or https://")
	}
	return nil
}

func isWebLink(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// apply copies f onto book, normalizing blanks to NULL.
func (f BookFields) apply(book *models.Book) {
	book.Title = strings.TrimSpace(f.Title)
	book.Author = trimmed(f.Author)
	book.Publisher = trimmed(f.Publisher)
	book.Medium = trimmed(f.Medium)
	book.Standard = trimmed(f.Standard)
	book.ISSN = trimmed(f.ISSN)
	book.Subject = trimmed(f.Subject)
	book.Syllabus = trimmed(f.Syllabus)
	book.Description = trimmed(f.Description)
	book.YearOfPublication = trimmed(f.YearOfPublication)
	book.ContentType = trimmed(f.ContentType)
	book.BookType = trimmed(f.BookType)
	book.PDFLink = trimmed(f.PDFLink)
	book.ThumbnailLink = trimmed(f.ThumbnailLink)
}

// editableColumns are written by UpdateBook. Counters and created_at are
// owned by other code paths.
var editableColumns = []string{
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

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

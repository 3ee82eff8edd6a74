package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Book struct {
	bun.BaseModel `bun:"table:books,alias:b"`

	ID                int       `bun:",pk,nullzero" json:"id"`
	CreatedAt         time.Time `bun:",nullzero" json:"created_at"`
	Title             string    `bun:",notnull" json:"title"`
	Author            *string   `json:"author"`
	Publisher         *string   `json:"publisher"`
	Medium            *string   `json:"medium"`
	Standard          *string   `json:"standard"`
	ISSN              *string   `bun:"issn" json:"issn"`
	Subject           *string   `json:"subject"`
	Syllabus          *string   `json:"syllabus"`
	Description       *string   `json:"description"`
	YearOfPublication *string   `bun:"year_of_publication" json:"year_of_publication"`
	ContentType       *string   `json:"content_type"`
	BookType          *string   `json:"book_type"`
	PDFLink           *string   `bun:"pdf_link" json:"pdf_link"`
	ThumbnailLink     *string   `json:"thumbnail_link"`
	Views             int       `bun:",notnull" json:"views"`
	Rating            float64   `bun:",notnull" json:"rating"`
	RatingCount       int       `bun:",notnull" json:"rating_count"`
}

// DependentTables lists the tables holding rows that reference a book by
// book_id. They carry no foreign keys, so removal is done by hand.
var DependentTables = []string{
	"book_views",
	"watchlist",
	"reading_history",
	"reading_sessions",
}

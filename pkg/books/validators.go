package books

type ListBooksQuery struct {
	Search    *string `query:"search" mod:"trim" validate:"omitempty,max=200"`
	Subject   *string `query:"subject"`
	Publisher *string `query:"publisher"`
	Page      int     `query:"page" default:"1" validate:"min=1"`
	PageSize  int     `query:"page_size" validate:"omitempty,min=1,max=100"` // 0 uses the items_per_page setting
	Sort      string  `query:"sort" validate:"omitempty,oneof=title -title views -views rating -rating newest"`
}

type ListPublishersQuery struct {
	Limit int `query:"limit" default:"30" validate:"min=1,max=200"`
}

type RecentBooksQuery struct {
	Limit int `query:"limit" default:"6" validate:"min=1,max=50"`
}

type SuggestionsQuery struct {
	Query string `query:"q" mod:"trim"`
	Limit int    `query:"limit" default:"5" validate:"min=1,max=20"`
}

// BookPayload is the body for both create and update. Update replaces every
// editable field.
type BookPayload struct {
	Title             string  `json:"title" mod:"trim" validate:"required,max=500"`
	Author            *string `json:"author" mod:"trim"`
	Publisher         *string `json:"publisher" mod:"trim"`
	Medium            *string `json:"medium" mod:"trim"`
	Standard          *string `json:"standard" mod:"trim"`
	ISSN              *string `json:"issn" mod:"trim"`
	Subject           *string `json:"subject" mod:"trim"`
	Syllabus          *string `json:"syllabus" mod:"trim"`
	Description       *string `json:"description"`
	YearOfPublication *string `json:"year_of_publication" mod:"trim" validate:"omitempty,year"`
	ContentType       *string `json:"content_type" mod:"trim"`
	BookType          *string `json:"book_type" mod:"trim"`
	PDFLink           *string `json:"pdf_link" mod:"trim" validate:"omitempty,weblink"`
	ThumbnailLink     *string `json:"thumbnail_link" mod:"trim" validate:"omitempty,weblink"`
}

func (p BookPayload) fields() BookFields {
	return BookFields(p)
}

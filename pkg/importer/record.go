package importer

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/segmentio/encoding/json"
	"github.com/shishobooks/shelf/pkg/models"
)

// looseString accepts a JSON string, number, or null. Exports are
// inconsistent about quoting years and ISSNs.
type looseString struct {
	Value *string
}

func (s *looseString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		s.Value = nil
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return errors.WithStack(err)
		}
		s.Value = &v
		return nil
	}
	v := string(data)
	s.Value = &v
	return nil
}

func (s looseString) ptr() *string {
	if s.Value == nil {
		return nil
	}
	v := strings.TrimSpace(*s.Value)
	if v == "" {
		return nil
	}
	return &v
}

// record is one book as exported by the catalog provider.
type record struct {
	ID                looseString `json:"id"`
	Title             looseString `json:"title"`
	Author            looseString `json:"author"`
	Publisher         looseString `json:"publisher"`
	Medium            looseString `json:"medium"`
	Standard          looseString `json:"standard"`
	ISSN              looseString `json:"issn"`
	Subject           looseString `json:"subject"`
	Syllabus          looseString `json:"syllabus"`
	Description       looseString `json:"description"`
	YearOfPublication looseString `json:"yearOfPublication"`
	ContentType       looseString `json:"contentType"`
	BookType          looseString `json:"bookType"`
	PDFLink           looseString `json:"pdfLink"`
	ThumbnailLink     looseString `json:"thumbnailLink"`
}

// book converts r to a model. ok is false when the record has no usable id
// or title.
func (r record) book() (book *models.Book, ok bool) {
	idStr := r.ID.ptr()
	if idStr == nil {
		return nil, false
	}
	id, err := strconv.Atoi(*idStr)
	if err != nil || id <= 0 {
		return nil, false
	}
	title := r.Title.ptr()
	if title == nil {
		return nil, false
	}

	return &models.Book{
		ID:                id,
		Title:             *title,
		Author:            r.Author.ptr(),
		Publisher:         r.Publisher.ptr(),
		Medium:            r.Medium.ptr(),
		Standard:          r.Standard.ptr(),
		ISSN:              r.ISSN.ptr(),
		Subject:           r.Subject.ptr(),
		Syllabus:          r.Syllabus.ptr(),
		Description:       r.Description.ptr(),
		YearOfPublication: r.YearOfPublication.ptr(),
		ContentType:       r.ContentType.ptr(),
		BookType:          r.BookType.ptr(),
		PDFLink:           r.PDFLink.ptr(),
		ThumbnailLink:     r.ThumbnailLink.ptr(),
	}, true
}

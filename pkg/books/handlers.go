package books

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	echologger "github.com/robinjoseph08/golib/echo/v4/middleware/logger"
	"github.com/robinjoseph08/golib/logger"
	"github.com/shishobooks/shelf/pkg/errcodes"
	"github.com/shishobooks/shelf/pkg/settings"
)

type handler struct {
	bookService   *Service
	settingsStore *settings.Store
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListBooksQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	if params.PageSize == 0 {
		s, err := h.settingsStore.Load(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		params.PageSize = s.ItemsPerPage
	}

	page, err := h.bookService.ListBooks(ctx, ListBooksOptions(params))
	if err != nil {
		return err
	}

	return errors.WithStack(c.JSON(http.StatusOK, page))
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Book")
	}

	book, err := h.bookService.RetrieveBook(ctx, id)
	if err != nil {
		return err
	}

	return errors.WithStack(c.JSON(http.StatusOK, book))
}

func (h *handler) recent(c echo.Context) error {
	ctx := c.Request().Context()

	params := RecentBooksQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	books, err := h.bookService.RecentBooks(ctx, params.Limit)
	if err != nil {
		return err
	}

	return errors.WithStack(c.JSON(http.StatusOK, books))
}

func (h *handler) suggestions(c echo.Context) error {
	ctx := c.Request().Context()

	params := SuggestionsQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	titles, err := h.bookService.SuggestTitles(ctx, params.Query, params.Limit)
	if err != nil {
		return err
	}

	return errors.WithStack(c.JSON(http.StatusOK, titles))
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()

	params := BookPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	book, err := h.bookService.CreateBook(ctx, params.fields())
	if err != nil {
		return err
	}

	echologger.FromEchoContext(c).Info("book created", logger.Data{"book_id": book.ID})

	return errors.WithStack(c.JSON(http.StatusCreated, book))
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Book")
	}

	params := BookPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	book, err := h.bookService.UpdateBook(ctx, id, params.fields())
	if err != nil {
		return err
	}

	return errors.WithStack(c.JSON(http.StatusOK, book))
}

func (h *handler) delete(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Book")
	}

	if err := h.bookService.DeleteBook(ctx, id); err != nil {
		return err
	}

	echologger.FromEchoContext(c).Info("book deleted", logger.Data{"book_id": id})

	return c.NoContent(http.StatusNoContent)
}

func (h *handler) subjects(c echo.Context) error {
	subjects, err := h.bookService.ListSubjects(c.Request().Context())
	if err != nil {
		return err
	}
	return errors.WithStack(c.JSON(http.StatusOK, subjects))
}

func (h *handler) subjectBooks(c echo.Context) error {
	books, err := h.bookService.BooksBySubject(c.Request().Context(), c.Param("subject"))
	if err != nil {
		return err
	}
	return errors.WithStack(c.JSON(http.StatusOK, books))
}

func (h *handler) publishers(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListPublishersQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	publishers, err := h.bookService.ListPublishers(ctx, params.Limit)
	if err != nil {
		return err
	}

	return errors.WithStack(c.JSON(http.StatusOK, publishers))
}

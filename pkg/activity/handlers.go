package activity

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/shishobooks/shelf/pkg/auth"
	"github.com/shishobooks/shelf/pkg/errcodes"
)

type handler struct {
	activityService *Service
}

func readerID(c echo.Context) (int, error) {
	p, ok := auth.PrincipalFromContext(c)
	if !ok {
		return 0, errcodes.Unauthorized("Authentication required")
	}
	return p.ID, nil
}

func intParam(c echo.Context, name, resource string) (int, error) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil {
		return 0, errcodes.NotFound(resource)
	}
	return id, nil
}

func (h *handler) watchlist(c echo.Context) error {
	userID, err := readerID(c)
	if err != nil {
		return err
	}

	params := ListQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	entries, err := h.activityService.ListWatchlist(c.Request().Context(), userID, params.Limit)
	if err != nil {
		return err
	}
	return errors.WithStack(c.JSON(http.StatusOK, entries))
}

func (h *handler) addToWatchlist(c echo.Context) error {
	userID, err := readerID(c)
	if err != nil {
		return err
	}
	bookID, err := intParam(c, "bookID", "Book")
	if err != nil {
		return err
	}

	added, err := h.activityService.AddToWatchlist(c.Request().Context(), userID, bookID)
	if err != nil {
		return err
	}

	status := http.StatusOK
	if added {
		status = http.StatusCreated
	}
	return errors.WithStack(c.JSON(status, WatchlistResponse{Added: added}))
}

func (h *handler) removeFromWatchlist(c echo.Context) error {
	userID, err := readerID(c)
	if err != nil {
		return err
	}
	bookID, err := intParam(c, "bookID", "Book")
	if err != nil {
		return err
	}

	if err := h.activityService.RemoveFromWatchlist(c.Request().Context(), userID, bookID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *handler) recordRead(c echo.Context) error {
	userID, err := readerID(c)
	if err != nil {
		return err
	}
	bookID, err := intParam(c, "bookID", "Book")
	if err != nil {
		return err
	}

	entry, err := h.activityService.RecordRead(c.Request().Context(), userID, bookID)
	if err != nil {
		return err
	}
	return errors.WithStack(c.JSON(http.StatusCreated, entry))
}

func (h *handler) history(c echo.Context) error {
	userID, err := readerID(c)
	if err != nil {
		return err
	}

	params := ListQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	entries, err := h.activityService.ListReadingHistory(c.Request().Context(), userID, params.Limit)
	if err != nil {
		return err
	}
	return errors.WithStack(c.JSON(http.StatusOK, entries))
}

func (h *handler) stats(c echo.Context) error {
	userID, err := readerID(c)
	if err != nil {
		return err
	}

	stats, err := h.activityService.UserStats(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return errors.WithStack(c.JSON(http.StatusOK, stats))
}

func (h *handler) startSession(c echo.Context) error {
	userID, err := readerID(c)
	if err != nil {
		return err
	}

	params := StartSessionPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	session, err := h.activityService.StartSession(c.Request().Context(), userID, params.BookID)
	if err != nil {
		return err
	}
	return errors.WithStack(c.JSON(http.StatusCreated, session))
}

func (h *handler) endSession(c echo.Context) error {
	userID, err := readerID(c)
	if err != nil {
		return err
	}
	sessionID, err := intParam(c, "id", "Reading session")
	if err != nil {
		return err
	}

	session, err := h.activityService.EndSession(c.Request().Context(), userID, sessionID)
	if err != nil {
		return err
	}
	return errors.WithStack(c.JSON(http.StatusOK, session))
}

// recordView counts a view from anyone. Signed-in readers are attributed.
func (h *handler) recordView(c echo.Context) error {
	bookID, err := intParam(c, "id", "Book")
	if err != nil {
		return err
	}

	var userID *int
	if p, ok := auth.PrincipalFromContext(c); ok && p.Kind == auth.KindReader {
		userID = &p.ID
	}

	if err := h.activityService.RecordView(c.Request().Context(), bookID, userID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

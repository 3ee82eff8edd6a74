package stats

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type handler struct {
	statsService *Service
}

func (h *handler) dashboard(c echo.Context) error {
	d, err := h.statsService.Dashboard(c.Request().Context())
	if err != nil {
		return err
	}
	return errors.WithStack(c.JSON(http.StatusOK, d))
}

func (h *handler) trending(c echo.Context) error {
	params := LimitQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	books, err := h.statsService.TrendingBooks(c.Request().Context(), params.Limit)
	if err != nil {
		return err
	}
	return errors.WithStack(c.JSON(http.StatusOK, books))
}

func (h *handler) topSubjects(c echo.Context) error {
	params := LimitQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	subjects, err := h.statsService.TopSubjects(c.Request().Context(), params.Limit)
	if err != nil {
		return err
	}
	return errors.WithStack(c.JSON(http.StatusOK, subjects))
}

func (h *handler) history(c echo.Context) error {
	params := LimitQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	snapshots, err := h.statsService.ListSnapshots(c.Request().Context(), params.Limit)
	if err != nil {
		return err
	}
	return errors.WithStack(c.JSON(http.StatusOK, snapshots))
}

package settings

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type handler struct {
	store *Store
}

func (h *handler) retrieve(c echo.Context) error {
	settings, err := h.store.Load(c.Request().Context())
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, settings))
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()

	params := UpdateSettingsPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	settings, err := h.store.Load(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	changed := false
	if params.ItemsPerPage != nil && settings.ItemsPerPage != *params.ItemsPerPage {
		settings.ItemsPerPage = *params.ItemsPerPage
		changed = true
	}

	if changed {
		if err := h.store.Save(settings); err != nil {
			return errors.WithStack(err)
		}
	}

	return errors.WithStack(c.JSON(http.StatusOK, settings))
}

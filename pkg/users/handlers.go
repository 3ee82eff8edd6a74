package users

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	echologger "github.com/robinjoseph08/golib/echo/v4/middleware/logger"
	"github.com/robinjoseph08/golib/logger"
	"github.com/shishobooks/shelf/pkg/auth"
	"github.com/shishobooks/shelf/pkg/errcodes"
	"github.com/shishobooks/shelf/pkg/models"
)

type handler struct {
	userService *Service
	authService *auth.Service
}

func (h *handler) signup(c echo.Context) error {
	ctx := c.Request().Context()
	log := echologger.FromEchoContext(c)

	params := SignupPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}
	if params.Password != params.ConfirmPassword {
		return errcodes.ValidationError("Passwords do not match")
	}

	user, err := h.userService.Create(ctx, CreateUserOptions{
		Username: params.Username,
		Password: params.Password,
		Email:    params.Email,
		Phone:    params.Phone,
	})
	if err != nil {
		return err
	}

	log.Info("reader signed up", logger.Data{"user_id": user.ID})

	return c.JSON(http.StatusCreated, user)
}

func (h *handler) login(c echo.Context) error {
	ctx := c.Request().Context()

	params := LoginPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	user, err := h.userService.VerifyCredentials(ctx, params.Username, params.Password)
	if err != nil {
		return err
	}

	token, err := auth.IssueSession(c, h.authService, auth.Principal{
		ID:       user.ID,
		Username: user.Username,
		Kind:     auth.KindReader,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, LoginResponse{
		ID:       user.ID,
		Username: user.Username,
		Kind:     auth.KindReader,
		Token:    token,
	})
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	params := SearchUsersQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	users, err := h.userService.Search(ctx, params.Query)
	if err != nil {
		return err
	}

	resp := struct {
		Users []*models.User `json:"users"`
		Total int            `json:"total"`
	}{users, len(users)}

	return c.JSON(http.StatusOK, resp)
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("User")
	}

	user, err := h.userService.Retrieve(ctx, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, user)
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("User")
	}

	params := UpdateUserPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	user, err := h.userService.SetActive(ctx, id, *params.IsActive)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, user)
}

func (h *handler) delete(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("User")
	}

	if err := h.userService.Delete(ctx, id); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

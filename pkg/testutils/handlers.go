package testutils

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/shishobooks/shelf/pkg/database"
	"github.com/shishobooks/shelf/pkg/models"
	"github.com/shishobooks/shelf/pkg/users"
	"github.com/uptrace/bun"
)

type handler struct {
	db          *bun.DB
	userService *users.Service
}

// createUserRequest is the request body for creating a test reader.
type createUserRequest struct {
	Username string  `json:"username" validate:"required"`
	Password string  `json:"password" validate:"required"`
	Email    *string `json:"email"`
}

// createUserResponse is the response body for creating a test reader.
type createUserResponse struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
}

// createUser creates an active reader.
// POST /test/users.
func (h *handler) createUser(c echo.Context) error {
	ctx := c.Request().Context()

	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return errors.WithStack(err)
	}

	user, err := h.userService.Create(ctx, users.CreateUserOptions{
		Username: req.Username,
		Password: req.Password,
		Email:    req.Email,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, createUserResponse{
		ID:       user.ID,
		Username: user.Username,
	})
}

// createBooksRequest seeds Count books titled "<Prefix> 1".."<Prefix> N".
type createBooksRequest struct {
	Count     int     `json:"count" default:"1" validate:"min=1,max=1000"`
	Prefix    string  `json:"prefix" default:"Book"`
	Subject   *string `json:"subject"`
	Publisher *string `json:"publisher"`
	PDFLink   *string `json:"pdf_link"`
}

type createBooksResponse struct {
	IDs []int `json:"ids"`
}

// createBooks bulk-inserts books.
// POST /test/books.
func (h *handler) createBooks(c echo.Context) error {
	ctx := c.Request().Context()

	var req createBooksRequest
	if err := c.Bind(&req); err != nil {
		return errors.WithStack(err)
	}

	now := time.Now().UTC()
	books := make([]*models.Book, 0, req.Count)
	for i := 1; i <= req.Count; i++ {
		books = append(books, &models.Book{
			CreatedAt: now,
			Title:     fmt.Sprintf("%s %d", req.Prefix, i),
			Subject:   req.Subject,
			Publisher: req.Publisher,
			PDFLink:   req.PDFLink,
		})
	}

	_, err := h.db.NewInsert().Model(&books).Exec(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to create books")
	}

	resp := createBooksResponse{IDs: make([]int, 0, len(books))}
	for _, b := range books {
		resp.IDs = append(resp.IDs, b.ID)
	}
	return c.JSON(http.StatusCreated, resp)
}

// resetTables are emptied by resetCatalog. Admins are kept so the seeded
// account keeps working.
var resetTables = append([]string{"users", "books", "system_stats"}, models.DependentTables...)

type resetCatalogResponse struct {
	Deleted int `json:"deleted"`
}

// resetCatalog empties every catalog table except admins.
// DELETE /test/catalog.
func (h *handler) resetCatalog(c echo.Context) error {
	ctx := c.Request().Context()

	var deleted int64
	for _, table := range resetTables {
		result, err := h.db.NewDelete().
			TableExpr(table).
			Where("1=1").
			Exec(ctx)
		if err != nil {
			if database.IsMissingTable(err) {
				continue
			}
			return errors.Wrapf(err, "failed to empty %s", table)
		}
		n, _ := result.RowsAffected()
		deleted += n
	}

	return c.JSON(http.StatusOK, resetCatalogResponse{
		Deleted: int(deleted),
	})
}

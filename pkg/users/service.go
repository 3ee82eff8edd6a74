package users

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shishobooks/shelf/pkg/auth"
	"github.com/shishobooks/shelf/pkg/database"
	"github.com/shishobooks/shelf/pkg/errcodes"
	"github.com/shishobooks/shelf/pkg/models"
	"github.com/uptrace/bun"
)

// Service handles reader accounts.
type Service struct {
	db *bun.DB
}

// NewService creates a new users service.
func NewService(db *bun.DB) *Service {
	return &Service{db: db}
}

// CreateUserOptions contains options for creating a user.
type CreateUserOptions struct {
	Username string
	Password string
	Email    *string
	Phone    *string
}

// Create registers a new reader. A taken username fails with a duplicate
// error and leaves the existing row alone.
func (s *Service) Create(ctx context.Context, opts CreateUserOptions) (*models.User, error) {
	username := strings.TrimSpace(opts.Username)
	if username == "" {
		return nil, errcodes.ValidationError("Username is required")
	}
	if len(opts.Password) < auth.MinPasswordLength {
		return nil, errcodes.WeakPassword(auth.MinPasswordLength)
	}

	exists, err := s.db.NewSelect().
		Model((*models.User)(nil)).
		Where("username = ?", username).
		Exists(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if exists {
		return nil, errcodes.Duplicate("Username")
	}

	hashedPassword, err := auth.HashPassword(opts.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		CreatedAt:    time.Now().UTC(),
		Username:     username,
		PasswordHash: hashedPassword,
		Email:        blankToNil(opts.Email),
		Phone:        blankToNil(opts.Phone),
		IsActive:     true,
	}

	_, err = s.db.NewInsert().Model(user).Exec(ctx)
	if err != nil {
		// Lost a race with a concurrent signup.
		if database.IsUniqueViolation(err) {
			return nil, errcodes.Duplicate("Username")
		}
		return nil, errors.WithStack(err)
	}

	return user, nil
}

// VerifyCredentials checks a reader's password and stamps last_login.
// Unknown usernames, wrong passwords and deactivated accounts all fail with
// the same error.
func (s *Service) VerifyCredentials(ctx context.Context, username, password string) (*models.User, error) {
	user := &models.User{}
	err := s.db.NewSelect().
		Model(user).
		Where("u.username = ?", strings.TrimSpace(username)).
		Scan(ctx)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, errors.WithStack(err)
		}
		auth.DummyCheck(password)
		return nil, errcodes.InvalidCredentials()
	}

	if !auth.CheckPassword(password, user.PasswordHash) || !user.IsActive {
		return nil, errcodes.InvalidCredentials()
	}

	upgraded, err := auth.UpgradeHash(password, user.PasswordHash)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	q := s.db.NewUpdate().
		Model(user).
		Set("last_login = ?", now).
		WherePK()
	if upgraded != "" {
		q = q.Set("password_hash = ?", upgraded)
	}
	if _, err := q.Exec(ctx); err != nil {
		return nil, errors.WithStack(err)
	}
	user.LastLogin = &now
	if upgraded != "" {
		user.PasswordHash = upgraded
	}

	return user, nil
}

// Retrieve gets a user by ID.
func (s *Service) Retrieve(ctx context.Context, id int) (*models.User, error) {
	user := &models.User{}
	err := s.db.NewSelect().
		Model(user).
		Where("u.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("User")
		}
		return nil, errors.WithStack(err)
	}
	return user, nil
}

// Search matches query against username, email and the id as text, newest
// accounts first. An empty query returns every user.
func (s *Service) Search(ctx context.Context, query string) ([]*models.User, error) {
	users := []*models.User{}

	q := s.db.NewSelect().
		Model(&users).
		Order("u.created_at DESC", "u.id DESC")

	if query = strings.TrimSpace(query); query != "" {
		like := database.ContainsPattern(strings.ToLower(query))
		q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				Where(`LOWER(u.username) LIKE ? ESCAPE '\'`, like).
				WhereOr(`LOWER(u.email) LIKE ? ESCAPE '\'`, like).
				WhereOr(`CAST(u.id AS TEXT) LIKE ? ESCAPE '\'`, like)
		})
	}

	if err := q.Scan(ctx); err != nil {
		return nil, errors.WithStack(err)
	}
	return users, nil
}

// SetActive enables or disables a reader. Setting the current value again is
// fine.
func (s *Service) SetActive(ctx context.Context, id int, active bool) (*models.User, error) {
	res, err := s.db.NewUpdate().
		Model((*models.User)(nil)).
		Set("is_active = ?", active).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, errcodes.NotFound("User")
	}
	return s.Retrieve(ctx, id)
}

// Delete removes a reader for good, along with their watchlist, history and
// reading sessions. Their book views stay counted but become anonymous.
func (s *Service) Delete(ctx context.Context, id int) error {
	return s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		for _, table := range []string{"watchlist", "reading_history", "reading_sessions"} {
			_, err := tx.NewDelete().
				TableExpr(table).
				Where("user_id = ?", id).
				Exec(ctx)
			if err != nil && !database.IsMissingTable(err) {
				return errors.WithStack(err)
			}
		}

		_, err := tx.NewUpdate().
			Model((*models.BookView)(nil)).
			Set("user_id = NULL").
			Where("user_id = ?", id).
			Exec(ctx)
		if err != nil && !database.IsMissingTable(err) {
			return errors.WithStack(err)
		}

		res, err := tx.NewDelete().
			Model((*models.User)(nil)).
			Where("id = ?", id).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return errcodes.NotFound("User")
		}
		return nil
	})
}

func blankToNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

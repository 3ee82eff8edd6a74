// Package sessions persists the single signed-in admin to a flat JSON file.
package sessions

import (
	"context"
	"io/fs"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/segmentio/encoding/json"
	"github.com/shishobooks/shelf/pkg/fileutils"
)

type Session struct {
	AdminID   int       `json:"admin_id"`
	Username  string    `json:"username"`
	LoggedIn  bool      `json:"logged_in"`
	SessionID string    `json:"session_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Store has no locking. Concurrent writers race and the last write wins.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Path() string {
	return s.path
}

// Save records adminID as the signed-in admin, replacing any previous session.
func (s *Store) Save(adminID int, username string) (*Session, error) {
	session := &Session{
		AdminID:   adminID,
		Username:  username,
		LoggedIn:  true,
		SessionID: uuid.NewString(),
		CreatedAt: time.Now().UTC(),
	}

	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return nil, errors.WithStack(err)
	}

	if err := fileutils.WriteFileAtomic(s.path, data, 0600); err != nil {
		return nil, err
	}

	return session, nil
}

// Load returns the current session, or nil when nobody is signed in. A
// missing or unreadable file counts as signed out.
func (s *Store) Load(ctx context.Context) *Session {
	log := logger.FromContext(ctx)

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Warn("unable to read admin session", logger.Data{"path": s.path, "error": err.Error()})
		}
		return nil
	}

	session := &Session{}
	if err := json.Unmarshal(data, session); err != nil {
		log.Warn("ignoring corrupt admin session", logger.Data{"path": s.path, "error": err.Error()})
		return nil
	}
	if !session.LoggedIn {
		return nil
	}

	return session
}

// Clear signs the admin out. Clearing when nobody is signed in is a no-op.
func (s *Store) Clear() error {
	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return errors.WithStack(err)
	}
	return nil
}

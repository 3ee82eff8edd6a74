// Package settings persists application preferences to a flat JSON file.
package settings

import (
	"context"
	"io/fs"
	"os"

	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/segmentio/encoding/json"
	"github.com/shishobooks/shelf/pkg/fileutils"
	"github.com/shishobooks/shelf/pkg/pagination"
)

type Settings struct {
	ItemsPerPage int `json:"items_per_page"`
}

func Defaults() *Settings {
	return &Settings{
		ItemsPerPage: pagination.DefaultPageSize,
	}
}

type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads the settings file over the defaults, so keys missing from the
// file keep their default values. A missing or corrupt file yields the
// defaults.
func (s *Store) Load(ctx context.Context) (*Settings, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Defaults(), nil
		}
		return nil, errors.WithStack(err)
	}

	settings := Defaults()
	if err := json.Unmarshal(data, settings); err != nil {
		logger.FromContext(ctx).Warn("ignoring corrupt settings file", logger.Data{"path": s.path, "error": err.Error()})
		return Defaults(), nil
	}
	if settings.ItemsPerPage <= 0 {
		settings.ItemsPerPage = Defaults().ItemsPerPage
	}

	return settings, nil
}

func (s *Store) Save(settings *Settings) error {
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return errors.WithStack(err)
	}

	return fileutils.WriteFileAtomic(s.path, data, 0644)
}

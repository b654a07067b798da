// Package cachefile persists the format registry's cache (spec §6) to local
// disk or, optionally, to S3-compatible remote storage.
package cachefile

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/nervalabs/routecore/internal/apperrors"
	"github.com/nervalabs/routecore/internal/registry"
)

// LocalStore persists the registry cache as a single JSON file on disk,
// mirroring the teacher's local-filesystem storage adapter pattern but
// specialized to the one-file cache shape spec §6 describes.
type LocalStore struct {
	path string
	perm os.FileMode
}

// NewLocalStore returns a LocalStore writing to path. The parent directory
// is created on first Save if missing.
func NewLocalStore(path string) *LocalStore {
	return &LocalStore{path: path, perm: 0o644}
}

// Load reads and decodes the cache file. A missing file is not an error; it
// returns a nil Cache so callers can treat "no cache yet" as "build fresh."
func (s *LocalStore) Load() (registry.Cache, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, apperrors.Wrap(apperrors.CategoryCache, "cachefile.local.load", err)
	}
	cache, err := registry.DecodeCache(data)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryCache, "cachefile.local.decode", err)
	}
	return cache, nil
}

// Save writes cache to disk as a bare JSON array, overwriting any existing
// file.
func (s *LocalStore) Save(cache registry.Cache) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return apperrors.Wrap(apperrors.CategoryCache, "cachefile.local.mkdir", err)
	}
	data, err := json.MarshalIndent(cache, "", "  ")
	if err != nil {
		return apperrors.Wrap(apperrors.CategoryCache, "cachefile.local.encode", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, s.perm); err != nil {
		return apperrors.Wrap(apperrors.CategoryCache, "cachefile.local.write", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return apperrors.Wrap(apperrors.CategoryCache, "cachefile.local.rename", err)
	}
	return nil
}

// Store is the persistence seam the routecore core depends on; LocalStore
// and S3Store both satisfy it.
type Store interface {
	Load() (registry.Cache, error)
	Save(cache registry.Cache) error
}

var _ Store = (*LocalStore)(nil)

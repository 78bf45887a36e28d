// Package storage writes uploaded photos to a flat directory per bucket.
// Filenames are generated, never taken from the client verbatim.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tooltag/tooltag-backend/internal/apperr"
	"github.com/tooltag/tooltag-backend/internal/logger"
)

type PhotoStore struct {
	dir     string
	allowed map[string]struct{}
	log     *logger.Logger
}

func NewPhotoStore(dir string, allowedExts []string, baseLog *logger.Logger) (*PhotoStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, apperr.Storage(fmt.Sprintf("create photo dir %s", dir), err)
	}
	allowed := make(map[string]struct{}, len(allowedExts))
	for _, ext := range allowedExts {
		allowed[strings.ToLower(strings.TrimPrefix(ext, "."))] = struct{}{}
	}
	return &PhotoStore{
		dir:     dir,
		allowed: allowed,
		log:     baseLog.With("store", "PhotoStore", "dir", dir),
	}, nil
}

// Allowed reports whether the filename carries an accepted extension.
func (s *PhotoStore) Allowed(filename string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if ext == "" {
		return false
	}
	_, ok := s.allowed[ext]
	return ok
}

// Save stores data under "<prefix>_<timestamp>_<sanitized original name>" and
// returns the stored filename.
func (s *PhotoStore) Save(prefix, originalName string, data []byte) (string, error) {
	if !s.Allowed(originalName) {
		return "", apperr.Ef(apperr.KindInvalidFileFormat, "file type not allowed: %s", originalName)
	}
	name := fmt.Sprintf("%s_%s_%s", prefix, time.Now().Format("20060102_150405"), sanitize(originalName))
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", apperr.Storage(fmt.Sprintf("write photo %s", name), err)
	}
	return name, nil
}

// Delete removes a stored photo. A missing file is not an error.
func (s *PhotoStore) Delete(name string) error {
	path, ok := s.safePath(name)
	if !ok {
		return nil
	}
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		s.log.Warn("Failed to remove photo", "name", name, "error", err)
		return apperr.Storage(fmt.Sprintf("remove photo %s", name), err)
	}
	return nil
}

// Path returns the on-disk path for a stored filename, or "" if the name
// escapes the bucket directory.
func (s *PhotoStore) Path(name string) string {
	path, ok := s.safePath(name)
	if !ok {
		return ""
	}
	return path
}

func (s *PhotoStore) Dir() string { return s.dir }

func (s *PhotoStore) safePath(name string) (string, bool) {
	if name == "" || name != filepath.Base(name) {
		return "", false
	}
	return filepath.Join(s.dir, name), true
}

// sanitize keeps letters, digits, dot, dash and underscore, collapsing runs
// of anything else to a single underscore.
func sanitize(name string) string {
	name = filepath.Base(name)
	var b strings.Builder
	lastUnderscore := false
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	out := strings.Trim(b.String(), "_")
	if out == "" || out == "." || out == ".." {
		out = "file"
	}
	return out
}

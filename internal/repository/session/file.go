package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"klassart-storefront/internal/domain"
)

type fileRepo struct {
	path string
}

// NewFile stores the session as a small JSON document, the way a browser
// keeps user_id and session_id in local storage.
func NewFile(path string) Repository {
	return &fileRepo{path: path}
}

func (r *fileRepo) Load(_ context.Context) (*domain.Session, error) {
	raw, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	var s domain.Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decode session file: %w", err)
	}
	if !s.Valid() {
		return nil, domain.ErrNotFound
	}
	return &s, nil
}

func (r *fileRepo) Save(_ context.Context, s domain.Session) error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0o700); err != nil {
		return err
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, r.path)
}

func (r *fileRepo) Delete(_ context.Context) error {
	if err := os.Remove(r.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

package repositories

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/desertthunder/spotstats/internal/models"
	"github.com/desertthunder/spotstats/internal/shared"
)

type tokenFile struct {
	Token models.Token `toml:"token"`
}

// FileTokenStore persists the token as a TOML document.
type FileTokenStore struct {
	path string
	mu   sync.Mutex
}

// NewFileTokenStore creates a store backed by path. A leading ~ is expanded.
func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{path: shared.ExpandPath(path)}
}

// Path returns the expanded file location.
func (f *FileTokenStore) Path() string {
	return f.path
}

func (f *FileTokenStore) Load(ctx context.Context) (models.Token, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return models.Token{}, shared.ErrNoToken
	}
	if err != nil {
		return models.Token{}, fmt.Errorf("failed to read token file: %w", err)
	}

	var doc tokenFile
	if err := toml.Unmarshal(data, &doc); err != nil {
		return models.Token{}, fmt.Errorf("failed to parse token file: %w", err)
	}

	if doc.Token.IsZero() {
		return models.Token{}, shared.ErrNoToken
	}

	return doc.Token, nil
}

// Save writes the token to a temporary file and renames it over the previous one.
func (f *FileTokenStore) Save(ctx context.Context, token models.Token) error {
	if token.IsZero() {
		return fmt.Errorf("%w: refusing to store an empty access token", shared.ErrInvalidInput)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(tokenFile{Token: token}); err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(f.path), 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}

	if err := os.Rename(tmp, f.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace token file: %w", err)
	}

	return nil
}

func (f *FileTokenStore) Clear(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove token file: %w", err)
	}
	return nil
}

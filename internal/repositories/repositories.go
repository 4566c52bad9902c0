package repositories

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/desertthunder/spotstats/internal/models"
	"github.com/desertthunder/spotstats/internal/shared"
)

// Store persists the current token. Implementations are safe for concurrent use.
type Store interface {
	Load(ctx context.Context) (models.Token, error) // Load returns [shared.ErrNoToken] when nothing is stored
	Save(ctx context.Context, token models.Token) error
	Clear(ctx context.Context) error
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open builds the [Store] configured in cfg.Storage.
//
// The returned [io.Closer] releases the backend's resources (the SQLite handle) and must be closed by the caller.
func Open(ctx context.Context, cfg *shared.Config) (Store, io.Closer, error) {
	switch backend := strings.ToLower(strings.TrimSpace(cfg.Storage.Backend)); backend {
	case "", "sqlite":
		db, err := shared.NewDatabase(cfg.Database.Path)
		if err != nil {
			return nil, nil, err
		}
		if cfg.Database.Path != ":memory:" {
			shared.ConfigureDatabase(db, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns)
		}
		if err := shared.RunMigrations(ctx, db); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		return NewTokenRepository(db), db, nil
	case "file":
		if cfg.Storage.FilePath == "" {
			return nil, nil, fmt.Errorf("%w: storage.file_path is required for the file backend", shared.ErrMissingConfig)
		}
		return NewFileTokenStore(cfg.Storage.FilePath), nopCloser{}, nil
	case "memory":
		return NewMemoryTokenStore(), nopCloser{}, nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown storage backend %q", shared.ErrInvalidConfig, backend)
	}
}

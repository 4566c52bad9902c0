package repositories

import (
	"context"
	"fmt"
	"sync"

	"github.com/desertthunder/spotstats/internal/models"
	"github.com/desertthunder/spotstats/internal/shared"
)

// MemoryTokenStore keeps the token in process memory.
type MemoryTokenStore struct {
	mu    sync.RWMutex
	token *models.Token
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{}
}

func (m *MemoryTokenStore) Load(ctx context.Context) (models.Token, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.token == nil {
		return models.Token{}, shared.ErrNoToken
	}
	return *m.token, nil
}

func (m *MemoryTokenStore) Save(ctx context.Context, token models.Token) error {
	if token.IsZero() {
		return fmt.Errorf("%w: refusing to store an empty access token", shared.ErrInvalidInput)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = &token
	return nil
}

func (m *MemoryTokenStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = nil
	return nil
}

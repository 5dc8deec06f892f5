package registry

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/openhive-oss/openhive/internal/card"
	"github.com/openhive-oss/openhive/internal/errors"
)

// MemoryAdapter is a volatile in-process adapter. All mutation of the
// underlying maps happens under the mutex so concurrent adds never lose a
// write.
type MemoryAdapter struct {
	mu     sync.RWMutex
	cards  map[string]*card.AgentCard // keyed by identifier
	byName map[string]string          // name -> identifier
	order  []string                   // identifiers in insertion order
}

// NewMemoryAdapter creates an empty in-memory adapter.
func NewMemoryAdapter() *MemoryAdapter {
	return &MemoryAdapter{
		cards:  make(map[string]*card.AgentCard),
		byName: make(map[string]string),
	}
}

// Add stores a copy of the card, assigning an identifier when absent.
func (m *MemoryAdapter) Add(_ context.Context, c *card.AgentCard, _ ...CallOption) (*card.AgentCard, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	stored := c.Clone()
	if stored.ID == "" {
		stored.ID = uuid.New().String()
	}
	if _, exists := m.cards[stored.ID]; exists {
		return nil, errors.Newf(errors.CodeDuplicateID, "agent %q already exists", stored.ID)
	}
	if _, exists := m.byName[stored.Name]; exists {
		return nil, errors.Newf(errors.CodeDuplicateID, "agent named %q already exists", stored.Name)
	}

	m.cards[stored.ID] = stored
	m.byName[stored.Name] = stored.ID
	m.order = append(m.order, stored.ID)
	return stored.Clone(), nil
}

// Get returns the card matching the identifier or name.
func (m *MemoryAdapter) Get(_ context.Context, id string, _ ...CallOption) (*card.AgentCard, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stored, ok := m.resolve(id)
	if !ok {
		return nil, errors.Newf(errors.CodeNotFound, "agent %q not found", id)
	}
	return stored.Clone(), nil
}

// List returns cards in insertion order.
func (m *MemoryAdapter) List(_ context.Context, page Page, _ ...CallOption) ([]*card.AgentCard, error) {
	if err := page.Validate(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	all := make([]*card.AgentCard, 0, len(m.order))
	for _, id := range m.order {
		all = append(all, m.cards[id].Clone())
	}
	return page.Slice(all), nil
}

// Update replaces the stored card, keeping its identifier stable.
func (m *MemoryAdapter) Update(_ context.Context, id string, c *card.AgentCard, _ ...CallOption) (*card.AgentCard, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.resolve(id)
	if !ok {
		return nil, errors.Newf(errors.CodeNotFound, "agent %q not found", id)
	}

	stored := c.Clone()
	stored.ID = existing.ID
	if other, taken := m.byName[stored.Name]; taken && other != existing.ID {
		return nil, errors.Newf(errors.CodeDuplicateID, "agent named %q already exists", stored.Name)
	}

	delete(m.byName, existing.Name)
	m.cards[stored.ID] = stored
	m.byName[stored.Name] = stored.ID
	return stored.Clone(), nil
}

// Delete removes the card matching the identifier or name.
func (m *MemoryAdapter) Delete(_ context.Context, id string, _ ...CallOption) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.resolve(id)
	if !ok {
		return errors.Newf(errors.CodeNotFound, "agent %q not found", id)
	}

	delete(m.cards, existing.ID)
	delete(m.byName, existing.Name)
	for i, oid := range m.order {
		if oid == existing.ID {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

// Clear removes all cards.
func (m *MemoryAdapter) Clear(_ context.Context, _ ...CallOption) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cards = make(map[string]*card.AgentCard)
	m.byName = make(map[string]string)
	m.order = nil
	return nil
}

// Close releases the adapter. Data is discarded with the process.
func (m *MemoryAdapter) Close() error {
	return nil
}

// resolve finds a card by identifier, falling back to name. Callers hold the
// mutex.
func (m *MemoryAdapter) resolve(id string) (*card.AgentCard, bool) {
	if stored, ok := m.cards[id]; ok {
		return stored, true
	}
	if cid, ok := m.byName[id]; ok {
		return m.cards[cid], true
	}
	return nil, false
}

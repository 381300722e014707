package schema

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/KoukeNeko/IPAC/internal/models"
)

// MemoryRegistry is an in-memory Registry used in tests and tooling.
type MemoryRegistry struct {
	mu   sync.RWMutex
	defs map[uuid.UUID][]models.AttributeDefinition
}

// NewMemoryRegistry returns an empty in-memory registry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{defs: make(map[uuid.UUID][]models.AttributeDefinition)}
}

// Put replaces the schema stored for a category.
func (m *MemoryRegistry) Put(categoryID uuid.UUID, defs []models.AttributeDefinition) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := make([]models.AttributeDefinition, len(defs))
	copy(copied, defs)
	m.defs[categoryID] = copied
}

func (m *MemoryRegistry) DefinitionsFor(_ context.Context, categoryID uuid.UUID) ([]models.AttributeDefinition, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	defs := make([]models.AttributeDefinition, len(m.defs[categoryID]))
	copy(defs, m.defs[categoryID])
	sort.SliceStable(defs, func(i, j int) bool {
		if defs[i].SortOrder != defs[j].SortOrder {
			return defs[i].SortOrder < defs[j].SortOrder
		}
		return defs[i].Name < defs[j].Name
	})
	return defs, nil
}

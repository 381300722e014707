package schema

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/KoukeNeko/IPAC/internal/models"
)

func TestMemoryRegistryOrdersBySortOrderThenName(t *testing.T) {
	registry := NewMemoryRegistry()
	categoryID := uuid.New()

	registry.Put(categoryID, []models.AttributeDefinition{
		{Name: "Zeta", FieldType: models.FieldText, SortOrder: 1},
		{Name: "Alpha", FieldType: models.FieldText, SortOrder: 1},
		{Name: "Omega", FieldType: models.FieldText, SortOrder: 0},
	})

	defs, err := registry.DefinitionsFor(context.Background(), categoryID)
	if err != nil {
		t.Fatalf("DefinitionsFor() error = %v", err)
	}

	got := make([]string, 0, len(defs))
	for _, d := range defs {
		got = append(got, d.Name)
	}
	want := []string{"Omega", "Alpha", "Zeta"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestMemoryRegistryUnknownCategoryIsEmpty(t *testing.T) {
	registry := NewMemoryRegistry()
	defs, err := registry.DefinitionsFor(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("DefinitionsFor() error = %v", err)
	}
	if len(defs) != 0 {
		t.Fatalf("len(defs) = %d, want 0", len(defs))
	}
}

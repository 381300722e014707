package schema

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/KoukeNeko/IPAC/internal/models"
)

// Registry resolves the ordered attribute schema of a category.
type Registry interface {
	DefinitionsFor(ctx context.Context, categoryID uuid.UUID) ([]models.AttributeDefinition, error)
}

type gormRegistry struct {
	db *gorm.DB
}

// NewRegistry returns a Registry backed by the durable store.
func NewRegistry(db *gorm.DB) Registry {
	return &gormRegistry{db: db}
}

func (r *gormRegistry) DefinitionsFor(ctx context.Context, categoryID uuid.UUID) ([]models.AttributeDefinition, error) {
	var defs []models.AttributeDefinition
	err := r.db.WithContext(ctx).
		Where("category_id = ?", categoryID).
		Order("sort_order, name").
		Find(&defs).Error
	if err != nil {
		return nil, err
	}
	return defs, nil
}

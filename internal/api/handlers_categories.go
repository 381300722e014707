package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/KoukeNeko/IPAC/internal/models"
)

type categoryView struct {
	models.Category
	DeviceCount int64 `json:"device_count"`
}

func categoryRepr(c models.Category) string {
	return c.Name
}

func (a *API) handleListCategories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	query := a.store.ORM.WithContext(ctx).
		Preload("Definitions", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order, name")
		}).
		Order("name")

	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		pattern := "%" + strings.ToLower(q) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}

	var categories []models.Category
	if err := query.Find(&categories).Error; err != nil {
		a.respondMapped(w, r, err)
		return
	}

	views, err := a.categoryViews(r, categories)
	if err != nil {
		a.respondMapped(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"categories": views})
}

func (a *API) categoryViews(r *http.Request, categories []models.Category) ([]categoryView, error) {
	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	type categoryCount struct {
		CategoryID uuid.UUID
		Count      int64
	}
	var counts []categoryCount
	err := a.store.ORM.WithContext(ctx).
		Model(&models.Device{}).
		Select("category_id", "COUNT(*) AS count").
		Group("category_id").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}

	byCategory := make(map[uuid.UUID]int64, len(counts))
	for _, c := range counts {
		byCategory[c.CategoryID] = c.Count
	}

	views := make([]categoryView, 0, len(categories))
	for _, c := range categories {
		views = append(views, categoryView{Category: c, DeviceCount: byCategory[c.ID]})
	}
	return views, nil
}

func (a *API) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, errors.New("valid category id is required"))
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	var category models.Category
	err = a.store.ORM.WithContext(ctx).
		Preload("Definitions", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order, name")
		}).
		First(&category, "id = ?", id).Error
	if err != nil {
		a.respondMapped(w, r, err)
		return
	}

	var count int64
	if err := a.store.ORM.WithContext(ctx).Model(&models.Device{}).Where("category_id = ?", id).Count(&count).Error; err != nil {
		a.respondMapped(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"category": categoryView{Category: category, DeviceCount: count}})
}

func (a *API) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, errors.New("name is required"))
		return
	}

	category := models.Category{
		ID:          uuid.New(),
		Name:        req.Name,
		Description: req.Description,
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	err := a.store.ORM.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&category).Error; err != nil {
			return err
		}
		return a.recordAudit(tx, r, models.ActionCreate, "Category", category.ID.String(), categoryRepr(category), nil)
	})
	if err != nil {
		a.respondMapped(w, r, err)
		return
	}

	subject, payload := auditEvent(models.ActionCreate, "Category", category.ID.String(), categoryRepr(category))
	a.publishEvent(r.Context(), subject, payload)
	respondJSON(w, http.StatusCreated, map[string]any{"category": category})
}

func (a *API) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, errors.New("valid category id is required"))
		return
	}

	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	var category models.Category
	if err := a.store.ORM.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		a.respondMapped(w, r, err)
		return
	}

	before := map[string]string{}
	after := map[string]string{}
	updates := map[string]any{}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			respondError(w, http.StatusBadRequest, errors.New("name cannot be empty"))
			return
		}
		before["name"], after["name"] = category.Name, name
		updates["name"] = name
	}
	if req.Description != nil {
		before["description"], after["description"] = category.Description, *req.Description
		updates["description"] = *req.Description
	}

	if len(updates) == 0 {
		respondJSON(w, http.StatusOK, map[string]any{"category": category})
		return
	}

	changes := models.DiffChanges(before, after)

	err = a.store.ORM.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&category).Updates(updates).Error; err != nil {
			return err
		}
		if err := tx.First(&category, "id = ?", id).Error; err != nil {
			return err
		}
		return a.recordAudit(tx, r, models.ActionUpdate, "Category", category.ID.String(), categoryRepr(category), changes)
	})
	if err != nil {
		a.respondMapped(w, r, err)
		return
	}

	subject, payload := auditEvent(models.ActionUpdate, "Category", category.ID.String(), categoryRepr(category))
	a.publishEvent(r.Context(), subject, payload)
	respondJSON(w, http.StatusOK, map[string]any{"category": category})
}

func (a *API) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, errors.New("valid category id is required"))
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	var category models.Category
	if err := a.store.ORM.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		a.respondMapped(w, r, err)
		return
	}

	// Protect-on-delete: a category stays as long as devices reference it.
	var count int64
	if err := a.store.ORM.WithContext(ctx).Model(&models.Device{}).Where("category_id = ?", id).Count(&count).Error; err != nil {
		a.respondMapped(w, r, err)
		return
	}
	if count > 0 {
		a.respondMapped(w, r, fmt.Errorf("%w: %d device(s)", errCategoryInUse, count))
		return
	}

	err = a.store.ORM.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.Category{}, "id = ?", id).Error; err != nil {
			return err
		}
		return a.recordAudit(tx, r, models.ActionDelete, "Category", id.String(), categoryRepr(category), nil)
	})
	if err != nil {
		a.respondMapped(w, r, err)
		return
	}

	subject, payload := auditEvent(models.ActionDelete, "Category", id.String(), categoryRepr(category))
	a.publishEvent(r.Context(), subject, payload)
	respondJSON(w, http.StatusOK, map[string]any{"deleted": id})
}

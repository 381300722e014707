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

func definitionRepr(d models.AttributeDefinition) string {
	return d.Name
}

func (a *API) handleListDefinitions(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	query := a.store.ORM.WithContext(ctx).Order("sort_order, name")

	if raw := r.URL.Query().Get("category_id"); raw != "" {
		categoryID, err := uuid.Parse(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, errors.New("valid category_id is required"))
			return
		}
		query = query.Where("category_id = ?", categoryID)
	}
	if raw := r.URL.Query().Get("field_type"); raw != "" {
		if !models.FieldType(raw).Valid() {
			respondError(w, http.StatusBadRequest, fmt.Errorf("unknown field_type %q", raw))
			return
		}
		query = query.Where("field_type = ?", raw)
	}
	if raw := r.URL.Query().Get("required"); raw != "" {
		switch raw {
		case "true":
			query = query.Where("required = ?", true)
		case "false":
			query = query.Where("required = ?", false)
		default:
			respondError(w, http.StatusBadRequest, errors.New("required must be true or false"))
			return
		}
	}

	var definitions []models.AttributeDefinition
	if err := query.Find(&definitions).Error; err != nil {
		a.respondMapped(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"attribute_definitions": definitions})
}

func (a *API) handleGetDefinition(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, errors.New("valid definition id is required"))
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	var definition models.AttributeDefinition
	if err := a.store.ORM.WithContext(ctx).First(&definition, "id = ?", id).Error; err != nil {
		a.respondMapped(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"attribute_definition": definition})
}

type definitionRequest struct {
	CategoryID *uuid.UUID        `json:"category_id"`
	Name       *string           `json:"name"`
	FieldType  *models.FieldType `json:"field_type"`
	Required   *bool             `json:"required"`
	Choices    []string          `json:"choices"`
	Default    *string           `json:"default_value"`
	HelpText   *string           `json:"help_text"`
	SortOrder  *int              `json:"sort_order"`
}

func (a *API) handleCreateDefinition(w http.ResponseWriter, r *http.Request) {
	var req definitionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	if req.CategoryID == nil {
		respondError(w, http.StatusBadRequest, errors.New("category_id is required"))
		return
	}
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		respondError(w, http.StatusBadRequest, errors.New("name is required"))
		return
	}
	if req.FieldType == nil {
		respondError(w, http.StatusBadRequest, errors.New("field_type is required"))
		return
	}
	if !req.FieldType.Valid() {
		respondError(w, http.StatusBadRequest, fmt.Errorf("unknown field_type %q", *req.FieldType))
		return
	}
	if *req.FieldType == models.FieldChoice && len(req.Choices) == 0 {
		respondError(w, http.StatusBadRequest, errors.New("choice fields require at least one choice"))
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	var category models.Category
	if err := a.store.ORM.WithContext(ctx).First(&category, "id = ?", *req.CategoryID).Error; err != nil {
		a.respondMapped(w, r, err)
		return
	}

	definition := models.AttributeDefinition{
		ID:         uuid.New(),
		CategoryID: *req.CategoryID,
		Name:       strings.TrimSpace(*req.Name),
		FieldType:  *req.FieldType,
	}
	if req.Required != nil {
		definition.Required = *req.Required
	}
	if req.Default != nil {
		definition.DefaultValue = *req.Default
	}
	if req.HelpText != nil {
		definition.HelpText = *req.HelpText
	}
	if req.SortOrder != nil {
		definition.SortOrder = *req.SortOrder
	}
	if err := definition.SetChoices(req.Choices); err != nil {
		a.respondMapped(w, r, err)
		return
	}

	err := a.store.ORM.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&definition).Error; err != nil {
			return err
		}
		return a.recordAudit(tx, r, models.ActionCreate, "AttributeDefinition", definition.ID.String(), definitionRepr(definition), nil)
	})
	if err != nil {
		a.respondMapped(w, r, err)
		return
	}

	subject, payload := auditEvent(models.ActionCreate, "AttributeDefinition", definition.ID.String(), definitionRepr(definition))
	a.publishEvent(r.Context(), subject, payload)
	respondJSON(w, http.StatusCreated, map[string]any{"attribute_definition": definition})
}

func (a *API) handleUpdateDefinition(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, errors.New("valid definition id is required"))
		return
	}

	var req definitionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if req.CategoryID != nil {
		respondError(w, http.StatusBadRequest, errors.New("category_id cannot be changed"))
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	var definition models.AttributeDefinition
	if err := a.store.ORM.WithContext(ctx).First(&definition, "id = ?", id).Error; err != nil {
		a.respondMapped(w, r, err)
		return
	}

	before := map[string]string{}
	after := map[string]string{}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			respondError(w, http.StatusBadRequest, errors.New("name cannot be empty"))
			return
		}
		before["name"], after["name"] = definition.Name, name
		definition.Name = name
	}
	if req.FieldType != nil {
		if !req.FieldType.Valid() {
			respondError(w, http.StatusBadRequest, fmt.Errorf("unknown field_type %q", *req.FieldType))
			return
		}
		before["field_type"], after["field_type"] = string(definition.FieldType), string(*req.FieldType)
		definition.FieldType = *req.FieldType
	}
	if req.Required != nil {
		before["required"], after["required"] = fmt.Sprint(definition.Required), fmt.Sprint(*req.Required)
		definition.Required = *req.Required
	}
	if req.Default != nil {
		before["default_value"], after["default_value"] = definition.DefaultValue, *req.Default
		definition.DefaultValue = *req.Default
	}
	if req.HelpText != nil {
		before["help_text"], after["help_text"] = definition.HelpText, *req.HelpText
		definition.HelpText = *req.HelpText
	}
	if req.SortOrder != nil {
		before["sort_order"], after["sort_order"] = fmt.Sprint(definition.SortOrder), fmt.Sprint(*req.SortOrder)
		definition.SortOrder = *req.SortOrder
	}
	if req.Choices != nil {
		prior := definition.ChoiceValues()
		before["choices"], after["choices"] = strings.Join(prior, ", "), strings.Join(req.Choices, ", ")
		if err := definition.SetChoices(req.Choices); err != nil {
			a.respondMapped(w, r, err)
			return
		}
	}
	if definition.FieldType == models.FieldChoice && len(definition.ChoiceValues()) == 0 {
		respondError(w, http.StatusBadRequest, errors.New("choice fields require at least one choice"))
		return
	}

	changes := models.DiffChanges(before, after)
	if len(changes) == 0 {
		respondJSON(w, http.StatusOK, map[string]any{"attribute_definition": definition})
		return
	}

	err = a.store.ORM.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&definition).Error; err != nil {
			return err
		}
		return a.recordAudit(tx, r, models.ActionUpdate, "AttributeDefinition", definition.ID.String(), definitionRepr(definition), changes)
	})
	if err != nil {
		a.respondMapped(w, r, err)
		return
	}

	subject, payload := auditEvent(models.ActionUpdate, "AttributeDefinition", definition.ID.String(), definitionRepr(definition))
	a.publishEvent(r.Context(), subject, payload)
	respondJSON(w, http.StatusOK, map[string]any{"attribute_definition": definition})
}

func (a *API) handleDeleteDefinition(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, errors.New("valid definition id is required"))
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	var definition models.AttributeDefinition
	if err := a.store.ORM.WithContext(ctx).First(&definition, "id = ?", id).Error; err != nil {
		a.respondMapped(w, r, err)
		return
	}

	err = a.store.ORM.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.AttributeDefinition{}, "id = ?", id).Error; err != nil {
			return err
		}
		return a.recordAudit(tx, r, models.ActionDelete, "AttributeDefinition", id.String(), definitionRepr(definition), nil)
	})
	if err != nil {
		a.respondMapped(w, r, err)
		return
	}

	subject, payload := auditEvent(models.ActionDelete, "AttributeDefinition", id.String(), definitionRepr(definition))
	a.publishEvent(r.Context(), subject, payload)
	respondJSON(w, http.StatusOK, map[string]any{"deleted": id})
}

package api

import (
	"net/http"

	"github.com/KoukeNeko/IPAC/internal/models"
)

// handleListAuditEntries exposes the audit trail read-only, newest first.
// There is deliberately no write or delete counterpart.
func (a *API) handleListAuditEntries(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	query := a.store.ORM.WithContext(ctx).Order("created_at DESC")

	params := r.URL.Query()
	if actor := params.Get("actor"); actor != "" {
		query = query.Where("actor = ?", actor)
	}
	if action := params.Get("action"); action != "" {
		query = query.Where("action = ?", action)
	}
	if entityType := params.Get("entity_type"); entityType != "" {
		query = query.Where("entity_type = ?", entityType)
	}
	if entityID := params.Get("entity_id"); entityID != "" {
		query = query.Where("entity_id = ?", entityID)
	}

	limit, offset := pagination(params.Get("limit"), params.Get("offset"))
	query = query.Limit(limit).Offset(offset)

	var entries []models.AuditEntry
	if err := query.Find(&entries).Error; err != nil {
		a.respondMapped(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"audit_entries": entries})
}

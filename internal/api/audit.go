package api

import (
	"context"
	"encoding/json"
	"net/http"

	"gorm.io/gorm"

	"github.com/KoukeNeko/IPAC/internal/models"
	"github.com/KoukeNeko/IPAC/pkg/bus"
)

// recordAudit appends one immutable audit entry inside the caller's
// transaction, so a failed append aborts the triggering write.
func (a *API) recordAudit(tx *gorm.DB, r *http.Request, action models.AuditAction, entityType, entityID, entityRepr string, changes map[string]models.FieldChange) error {
	entry := models.AuditEntry{
		Actor:      actorName(r.Context()),
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		EntityRepr: entityRepr,
		SourceIP:   clientIP(r),
		UserAgent:  r.UserAgent(),
	}
	if len(changes) > 0 {
		raw, err := json.Marshal(changes)
		if err != nil {
			return err
		}
		entry.Changes = raw
	}

	if err := tx.Create(&entry).Error; err != nil {
		return err
	}

	auditEntriesTotal.Inc()
	mutationsTotal.WithLabelValues(entityType, string(action)).Inc()
	return nil
}

// publishEvent best-effort notifies downstream consumers after a committed
// write. The bus is optional at runtime.
func (a *API) publishEvent(ctx context.Context, subject string, payload map[string]any) {
	if a.store.Bus == nil || subject == "" {
		return
	}
	if err := a.store.Bus.Publish(ctx, subject, payload); err != nil {
		a.log.Warn().Err(err).Str("subject", subject).Msg("publish event")
	}
}

func deviceEvent(action models.AuditAction, device models.Device) (string, map[string]any) {
	return bus.SubjectDeviceChanged, map[string]any{
		"action":        string(action),
		"device_id":     device.ID,
		"serial_number": device.SerialNumber,
		"category_id":   device.CategoryID,
		"status":        device.Status,
	}
}

func auditEvent(action models.AuditAction, entityType, entityID, entityRepr string) (string, map[string]any) {
	return bus.SubjectAuditRecorded, map[string]any{
		"action":      string(action),
		"entity_type": entityType,
		"entity_id":   entityID,
		"entity_repr": entityRepr,
	}
}

func networkEvent(action models.AuditAction, record models.NetworkRecord) (string, map[string]any) {
	return bus.SubjectNetworkChanged, map[string]any{
		"action":      string(action),
		"record_id":   record.ID,
		"device_id":   record.DeviceID,
		"ip_address":  record.IPAddress,
		"mac_address": record.MACAddress,
		"is_active":   record.Active,
	}
}

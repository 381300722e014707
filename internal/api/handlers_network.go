package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/KoukeNeko/IPAC/internal/models"
)

func networkRepr(rec models.NetworkRecord) string {
	return fmt.Sprintf("%s / %s", rec.IPAddress, rec.MACAddress)
}

func (a *API) handleListNetworkRecords(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	query := a.store.ORM.WithContext(ctx).Preload("Device").Order("assigned_at DESC")

	params := r.URL.Query()
	if raw := params.Get("device_id"); raw != "" {
		deviceID, err := uuid.Parse(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, errors.New("valid device_id is required"))
			return
		}
		query = query.Where("device_id = ?", deviceID)
	}
	if raw := params.Get("is_active"); raw != "" {
		switch raw {
		case "true":
			query = query.Where("active = ?", true)
		case "false":
			query = query.Where("active = ?", false)
		default:
			respondError(w, http.StatusBadRequest, errors.New("is_active must be true or false"))
			return
		}
	}
	if q := strings.TrimSpace(params.Get("q")); q != "" {
		pattern := "%" + strings.ToUpper(q) + "%"
		query = query.Where("ip_address LIKE ? OR UPPER(mac_address) LIKE ?", "%"+q+"%", pattern)
	}

	limit, offset := pagination(params.Get("limit"), params.Get("offset"))
	query = query.Limit(limit).Offset(offset)

	var records []models.NetworkRecord
	if err := query.Find(&records).Error; err != nil {
		a.respondMapped(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"network_records": records})
}

func (a *API) handleGetNetworkRecord(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, errors.New("valid record id is required"))
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	var record models.NetworkRecord
	if err := a.store.ORM.WithContext(ctx).Preload("Device").First(&record, "id = ?", id).Error; err != nil {
		a.respondMapped(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"network_record": record})
}

type networkRequest struct {
	DeviceID   *uuid.UUID `json:"device_id"`
	IPAddress  *string    `json:"ip_address"`
	MACAddress *string    `json:"mac_address"`
	Active     *bool      `json:"is_active"`
	Notes      *string    `json:"notes"`
	AssignedAt *string    `json:"assigned_at"`
}

func (a *API) handleCreateNetworkRecord(w http.ResponseWriter, r *http.Request) {
	var req networkRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	if req.DeviceID == nil {
		respondError(w, http.StatusBadRequest, errors.New("device_id is required"))
		return
	}
	if req.IPAddress == nil {
		respondError(w, http.StatusBadRequest, errors.New("ip_address is required"))
		return
	}
	if req.MACAddress == nil {
		respondError(w, http.StatusBadRequest, errors.New("mac_address is required"))
		return
	}

	ip := strings.TrimSpace(*req.IPAddress)
	if err := models.ValidateIPv4(ip); err != nil {
		a.respondMapped(w, r, err)
		return
	}
	mac, err := models.CanonicalMAC(*req.MACAddress)
	if err != nil {
		a.respondMapped(w, r, err)
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	var device models.Device
	if err := a.store.ORM.WithContext(ctx).First(&device, "id = ?", *req.DeviceID).Error; err != nil {
		a.respondMapped(w, r, err)
		return
	}

	now := time.Now().UTC()
	record := models.NetworkRecord{
		ID:         uuid.New(),
		DeviceID:   device.ID,
		IPAddress:  ip,
		MACAddress: mac,
		AssignedAt: now,
		Active:     true,
	}
	if req.Active != nil {
		record.Active = *req.Active
	}
	if req.Notes != nil {
		record.Notes = *req.Notes
	}
	if req.AssignedAt != nil {
		assigned, err := parseDatePtr(req.AssignedAt, "assigned_at")
		if err != nil {
			respondError(w, http.StatusBadRequest, err)
			return
		}
		if assigned != nil {
			record.AssignedAt = *assigned
		}
	}
	if err := record.AppendHistory("created", actorName(r.Context()), now); err != nil {
		a.respondMapped(w, r, err)
		return
	}

	err = a.store.ORM.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&record).Error; err != nil {
			return err
		}
		return a.recordAudit(tx, r, models.ActionCreate, "NetworkRecord", record.ID.String(), networkRepr(record), nil)
	})
	if err != nil {
		a.respondMapped(w, r, err)
		return
	}

	subject, payload := networkEvent(models.ActionCreate, record)
	a.publishEvent(r.Context(), subject, payload)
	respondJSON(w, http.StatusCreated, map[string]any{"network_record": record})
}

func (a *API) handleUpdateNetworkRecord(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, errors.New("valid record id is required"))
		return
	}

	var req networkRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	var record models.NetworkRecord
	if err := a.store.ORM.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		a.respondMapped(w, r, err)
		return
	}

	before := map[string]string{}
	after := map[string]string{}
	oldIP, oldMAC := record.IPAddress, record.MACAddress

	if req.DeviceID != nil && *req.DeviceID != record.DeviceID {
		var device models.Device
		if err := a.store.ORM.WithContext(ctx).First(&device, "id = ?", *req.DeviceID).Error; err != nil {
			a.respondMapped(w, r, err)
			return
		}
		before["device_id"], after["device_id"] = record.DeviceID.String(), device.ID.String()
		record.DeviceID = device.ID
	}
	if req.IPAddress != nil {
		ip := strings.TrimSpace(*req.IPAddress)
		if err := models.ValidateIPv4(ip); err != nil {
			a.respondMapped(w, r, err)
			return
		}
		if ip != record.IPAddress {
			before["ip_address"], after["ip_address"] = record.IPAddress, ip
			record.IPAddress = ip
		}
	}
	if req.MACAddress != nil {
		mac, err := models.CanonicalMAC(*req.MACAddress)
		if err != nil {
			a.respondMapped(w, r, err)
			return
		}
		if mac != record.MACAddress {
			before["mac_address"], after["mac_address"] = record.MACAddress, mac
			record.MACAddress = mac
		}
	}
	if req.Active != nil {
		before["is_active"], after["is_active"] = fmt.Sprint(record.Active), fmt.Sprint(*req.Active)
		record.Active = *req.Active
	}
	if req.Notes != nil {
		before["notes"], after["notes"] = record.Notes, *req.Notes
		record.Notes = *req.Notes
	}
	if req.AssignedAt != nil {
		assigned, err := parseDatePtr(req.AssignedAt, "assigned_at")
		if err != nil {
			respondError(w, http.StatusBadRequest, err)
			return
		}
		if assigned != nil && !assigned.Equal(record.AssignedAt) {
			before["assigned_at"], after["assigned_at"] = record.AssignedAt.Format(time.RFC3339), assigned.Format(time.RFC3339)
			record.AssignedAt = *assigned
		}
	}

	changes := models.DiffChanges(before, after)
	if len(changes) == 0 {
		respondJSON(w, http.StatusOK, map[string]any{"network_record": record})
		return
	}

	// The history log only tracks address identity, not flags or notes.
	if oldIP != record.IPAddress || oldMAC != record.MACAddress {
		if err := record.AppendChange(oldIP, oldMAC, actorName(r.Context()), time.Now().UTC()); err != nil {
			a.respondMapped(w, r, err)
			return
		}
	}

	err = a.store.ORM.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&record).Error; err != nil {
			return err
		}
		return a.recordAudit(tx, r, models.ActionUpdate, "NetworkRecord", record.ID.String(), networkRepr(record), changes)
	})
	if err != nil {
		a.respondMapped(w, r, err)
		return
	}

	subject, payload := networkEvent(models.ActionUpdate, record)
	a.publishEvent(r.Context(), subject, payload)
	respondJSON(w, http.StatusOK, map[string]any{"network_record": record})
}

func (a *API) handleDeleteNetworkRecord(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, errors.New("valid record id is required"))
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	var record models.NetworkRecord
	if err := a.store.ORM.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		a.respondMapped(w, r, err)
		return
	}

	err = a.store.ORM.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.NetworkRecord{}, "id = ?", id).Error; err != nil {
			return err
		}
		return a.recordAudit(tx, r, models.ActionDelete, "NetworkRecord", id.String(), networkRepr(record), nil)
	})
	if err != nil {
		a.respondMapped(w, r, err)
		return
	}

	subject, payload := networkEvent(models.ActionDelete, record)
	a.publishEvent(r.Context(), subject, payload)
	respondJSON(w, http.StatusOK, map[string]any{"deleted": id})
}

// handleCheckIPAvailable reports whether an IPv4 address is free of active
// assignments.
func (a *API) handleCheckIPAvailable(w http.ResponseWriter, r *http.Request) {
	ip := strings.TrimSpace(r.URL.Query().Get("ip"))
	if err := models.ValidateIPv4(ip); err != nil {
		a.respondMapped(w, r, err)
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	var count int64
	err := a.store.ORM.WithContext(ctx).
		Model(&models.NetworkRecord{}).
		Where("ip_address = ? AND active = ?", ip, true).
		Count(&count).Error
	if err != nil {
		a.respondMapped(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"ip_address": ip,
		"available":  count == 0,
	})
}

// handleSearchByIP resolves the devices holding an active assignment of the
// given address.
func (a *API) handleSearchByIP(w http.ResponseWriter, r *http.Request) {
	ip := strings.TrimSpace(r.URL.Query().Get("ip"))
	if err := models.ValidateIPv4(ip); err != nil {
		a.respondMapped(w, r, err)
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	var records []models.NetworkRecord
	err := a.store.ORM.WithContext(ctx).
		Preload("Device").
		Preload("Device.Category").
		Where("ip_address = ? AND active = ?", ip, true).
		Order("assigned_at DESC").
		Find(&records).Error
	if err != nil {
		a.respondMapped(w, r, err)
		return
	}

	now := time.Now().UTC()
	type match struct {
		Record models.NetworkRecord `json:"network_record"`
		Device *deviceView          `json:"device,omitempty"`
	}
	matches := make([]match, 0, len(records))
	for _, rec := range records {
		m := match{Record: rec}
		if rec.Device != nil {
			view := newDeviceView(*rec.Device, now)
			m.Device = &view
			m.Record.Device = nil
		}
		matches = append(matches, m)
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"ip_address": ip,
		"matches":    matches,
	})
}

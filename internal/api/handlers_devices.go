package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/KoukeNeko/IPAC/internal/asset"
	"github.com/KoukeNeko/IPAC/internal/models"
	"github.com/KoukeNeko/IPAC/internal/schema"
)

// deviceView augments the stored device with its depreciated value at the
// time of the request.
type deviceView struct {
	models.Device
	CurrentValue *float64 `json:"current_value"`
}

func newDeviceView(d models.Device, now time.Time) deviceView {
	return deviceView{
		Device:       d,
		CurrentValue: asset.CurrentValue(d.Cost, d.DepreciationRate, d.PurchaseDate, now),
	}
}

func deviceRepr(d models.Device) string {
	return fmt.Sprintf("%s (%s)", d.Name, d.SerialNumber)
}

type deviceRequest struct {
	SerialNumber      *string             `json:"serial_number"`
	Name              *string             `json:"name"`
	CategoryID        *uuid.UUID          `json:"category_id"`
	Status            *models.DeviceStatus `json:"status"`
	ResponsiblePerson *string             `json:"responsible_person"`
	Attributes        map[string]any      `json:"attributes"`

	PurchaseDate     *string  `json:"purchase_date"`
	Cost             *float64 `json:"cost"`
	Department       *string  `json:"department"`
	Location         *string  `json:"location"`
	DepreciationRate *float64 `json:"depreciation_rate"`
	WarrantyEndDate  *string  `json:"warranty_end_date"`
	Supplier         *string  `json:"supplier"`
	MaintenanceNotes *string  `json:"maintenance_notes"`
	RetirementDate   *string  `json:"retirement_date"`
}

func (req deviceRequest) assetErrors() error {
	if req.Cost != nil && *req.Cost < 0 {
		return fmt.Errorf("%w: cost must be non-negative", errOutOfRange)
	}
	if req.DepreciationRate != nil && (*req.DepreciationRate < 0 || *req.DepreciationRate > 100) {
		return fmt.Errorf("%w: depreciation_rate must be between 0 and 100", errOutOfRange)
	}
	return nil
}

func parseDatePtr(raw *string, field string) (*time.Time, error) {
	if raw == nil {
		return nil, nil
	}
	if strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	t, err := parseDate(*raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", field, err)
	}
	return &t, nil
}

func checkDateOrdering(purchase, retirement *time.Time) error {
	if purchase != nil && retirement != nil && retirement.Before(*purchase) {
		return errDateOrdering
	}
	return nil
}

func (a *API) handleListDevices(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	query := a.store.ORM.WithContext(ctx).Preload("Category").Order("created_at DESC")

	params := r.URL.Query()
	if raw := params.Get("category_id"); raw != "" {
		categoryID, err := uuid.Parse(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, errors.New("valid category_id is required"))
			return
		}
		query = query.Where("category_id = ?", categoryID)
	}
	if status := params.Get("status"); status != "" {
		if !models.DeviceStatus(status).Valid() {
			respondError(w, http.StatusBadRequest, fmt.Errorf("unknown status %q", status))
			return
		}
		query = query.Where("status = ?", status)
	}
	if dept := params.Get("department"); dept != "" {
		query = query.Where("department = ?", dept)
	}
	if loc := params.Get("location"); loc != "" {
		query = query.Where("location = ?", loc)
	}
	if person := params.Get("responsible_person"); person != "" {
		query = query.Where("responsible_person = ?", person)
	}
	if q := strings.TrimSpace(params.Get("q")); q != "" {
		pattern := "%" + strings.ToLower(q) + "%"
		query = query.Where(
			"LOWER(serial_number) LIKE ? OR LOWER(name) LIKE ? OR LOWER(department) LIKE ? OR LOWER(location) LIKE ? OR LOWER(supplier) LIKE ?",
			pattern, pattern, pattern, pattern, pattern,
		)
	}

	limit, offset := pagination(params.Get("limit"), params.Get("offset"))
	query = query.Limit(limit).Offset(offset)

	var devices []models.Device
	if err := query.Find(&devices).Error; err != nil {
		a.respondMapped(w, r, err)
		return
	}

	now := time.Now().UTC()
	views := make([]deviceView, 0, len(devices))
	for _, d := range devices {
		views = append(views, newDeviceView(d, now))
	}

	respondJSON(w, http.StatusOK, map[string]any{"devices": views})
}

func pagination(rawLimit, rawOffset string) (int, int) {
	limit := 50
	if n, err := strconv.Atoi(rawLimit); err == nil && n > 0 && n <= 500 {
		limit = n
	}
	offset := 0
	if n, err := strconv.Atoi(rawOffset); err == nil && n > 0 {
		offset = n
	}
	return limit, offset
}

func (a *API) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, errors.New("valid device id is required"))
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	var device models.Device
	err = a.store.ORM.WithContext(ctx).
		Preload("Category.Definitions", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order, name")
		}).
		Preload("NetworkRecords", func(db *gorm.DB) *gorm.DB {
			return db.Order("assigned_at DESC")
		}).
		First(&device, "id = ?", id).Error
	if err != nil {
		a.respondMapped(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"device": newDeviceView(device, time.Now().UTC())})
}

func (a *API) handleCreateDevice(w http.ResponseWriter, r *http.Request) {
	var req deviceRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	if req.SerialNumber == nil || strings.TrimSpace(*req.SerialNumber) == "" {
		respondError(w, http.StatusBadRequest, errors.New("serial_number is required"))
		return
	}
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		respondError(w, http.StatusBadRequest, errors.New("name is required"))
		return
	}
	if req.CategoryID == nil {
		respondError(w, http.StatusBadRequest, errors.New("category_id is required"))
		return
	}
	if req.Status != nil && !req.Status.Valid() {
		respondError(w, http.StatusBadRequest, fmt.Errorf("unknown status %q", *req.Status))
		return
	}
	if err := req.assetErrors(); err != nil {
		a.respondMapped(w, r, err)
		return
	}

	purchase, err := parseDatePtr(req.PurchaseDate, "purchase_date")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	warranty, err := parseDatePtr(req.WarrantyEndDate, "warranty_end_date")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	retirement, err := parseDatePtr(req.RetirementDate, "retirement_date")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if err := checkDateOrdering(purchase, retirement); err != nil {
		a.respondMapped(w, r, err)
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	var category models.Category
	if err := a.store.ORM.WithContext(ctx).First(&category, "id = ?", *req.CategoryID).Error; err != nil {
		a.respondMapped(w, r, err)
		return
	}

	attrs := req.Attributes
	if attrs == nil {
		attrs = map[string]any{}
	}
	if err := a.validateAttributes(r, category.ID, attrs); err != nil {
		a.respondMapped(w, r, err)
		return
	}

	device := models.Device{
		ID:           uuid.New(),
		SerialNumber: strings.TrimSpace(*req.SerialNumber),
		Name:         strings.TrimSpace(*req.Name),
		CategoryID:   category.ID,
		Status:       models.StatusActive,
		Attributes:   datatypes.JSONMap(attrs),

		PurchaseDate:     purchase,
		Cost:             req.Cost,
		DepreciationRate: req.DepreciationRate,
		WarrantyEndDate:  warranty,
		RetirementDate:   retirement,
	}
	if req.Status != nil {
		device.Status = *req.Status
	}
	if req.ResponsiblePerson != nil {
		device.ResponsiblePerson = *req.ResponsiblePerson
	}
	if req.Department != nil {
		device.Department = *req.Department
	}
	if req.Location != nil {
		device.Location = *req.Location
	}
	if req.Supplier != nil {
		device.Supplier = *req.Supplier
	}
	if req.MaintenanceNotes != nil {
		device.MaintenanceNotes = *req.MaintenanceNotes
	}
	if actor, ok := ActorFromContext(r.Context()); ok {
		device.CreatedBy = actor.Name
	}

	err = a.store.ORM.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&device).Error; err != nil {
			return err
		}
		return a.recordAudit(tx, r, models.ActionCreate, "Device", device.ID.String(), deviceRepr(device), nil)
	})
	if err != nil {
		a.respondMapped(w, r, err)
		return
	}

	subject, payload := deviceEvent(models.ActionCreate, device)
	a.publishEvent(r.Context(), subject, payload)
	respondJSON(w, http.StatusCreated, map[string]any{"device": newDeviceView(device, time.Now().UTC())})
}

// validateAttributes checks an attribute document against the category
// schema and counts rejections.
func (a *API) validateAttributes(r *http.Request, categoryID uuid.UUID, attrs map[string]any) error {
	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	defs, err := a.registry.DefinitionsFor(ctx, categoryID)
	if err != nil {
		return err
	}
	if err := schema.Validate(defs, attrs); err != nil {
		validationFailuresTotal.Inc()
		return err
	}
	return nil
}

func (a *API) handleUpdateDevice(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, errors.New("valid device id is required"))
		return
	}

	var req deviceRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if req.Status != nil && !req.Status.Valid() {
		respondError(w, http.StatusBadRequest, fmt.Errorf("unknown status %q", *req.Status))
		return
	}
	if err := req.assetErrors(); err != nil {
		a.respondMapped(w, r, err)
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	var device models.Device
	if err := a.store.ORM.WithContext(ctx).First(&device, "id = ?", id).Error; err != nil {
		a.respondMapped(w, r, err)
		return
	}

	before := map[string]string{}
	after := map[string]string{}

	if req.SerialNumber != nil {
		serial := strings.TrimSpace(*req.SerialNumber)
		if serial == "" {
			respondError(w, http.StatusBadRequest, errors.New("serial_number cannot be empty"))
			return
		}
		before["serial_number"], after["serial_number"] = device.SerialNumber, serial
		device.SerialNumber = serial
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			respondError(w, http.StatusBadRequest, errors.New("name cannot be empty"))
			return
		}
		before["name"], after["name"] = device.Name, name
		device.Name = name
	}
	if req.CategoryID != nil && *req.CategoryID != device.CategoryID {
		var category models.Category
		if err := a.store.ORM.WithContext(ctx).First(&category, "id = ?", *req.CategoryID).Error; err != nil {
			a.respondMapped(w, r, err)
			return
		}
		before["category_id"], after["category_id"] = device.CategoryID.String(), category.ID.String()
		device.CategoryID = category.ID
	}
	if req.Status != nil {
		before["status"], after["status"] = string(device.Status), string(*req.Status)
		device.Status = *req.Status
	}
	if req.ResponsiblePerson != nil {
		before["responsible_person"], after["responsible_person"] = device.ResponsiblePerson, *req.ResponsiblePerson
		device.ResponsiblePerson = *req.ResponsiblePerson
	}
	if req.Department != nil {
		before["department"], after["department"] = device.Department, *req.Department
		device.Department = *req.Department
	}
	if req.Location != nil {
		before["location"], after["location"] = device.Location, *req.Location
		device.Location = *req.Location
	}
	if req.Supplier != nil {
		before["supplier"], after["supplier"] = device.Supplier, *req.Supplier
		device.Supplier = *req.Supplier
	}
	if req.MaintenanceNotes != nil {
		before["maintenance_notes"], after["maintenance_notes"] = device.MaintenanceNotes, *req.MaintenanceNotes
		device.MaintenanceNotes = *req.MaintenanceNotes
	}
	if req.Cost != nil {
		before["cost"], after["cost"] = formatFloat(device.Cost), formatFloat(req.Cost)
		device.Cost = req.Cost
	}
	if req.DepreciationRate != nil {
		before["depreciation_rate"], after["depreciation_rate"] = formatFloat(device.DepreciationRate), formatFloat(req.DepreciationRate)
		device.DepreciationRate = req.DepreciationRate
	}
	if req.PurchaseDate != nil {
		purchase, err := parseDatePtr(req.PurchaseDate, "purchase_date")
		if err != nil {
			respondError(w, http.StatusBadRequest, err)
			return
		}
		before["purchase_date"], after["purchase_date"] = formatDate(device.PurchaseDate), formatDate(purchase)
		device.PurchaseDate = purchase
	}
	if req.WarrantyEndDate != nil {
		warranty, err := parseDatePtr(req.WarrantyEndDate, "warranty_end_date")
		if err != nil {
			respondError(w, http.StatusBadRequest, err)
			return
		}
		before["warranty_end_date"], after["warranty_end_date"] = formatDate(device.WarrantyEndDate), formatDate(warranty)
		device.WarrantyEndDate = warranty
	}
	if req.RetirementDate != nil {
		retirement, err := parseDatePtr(req.RetirementDate, "retirement_date")
		if err != nil {
			respondError(w, http.StatusBadRequest, err)
			return
		}
		before["retirement_date"], after["retirement_date"] = formatDate(device.RetirementDate), formatDate(retirement)
		device.RetirementDate = retirement
	}
	if err := checkDateOrdering(device.PurchaseDate, device.RetirementDate); err != nil {
		a.respondMapped(w, r, err)
		return
	}
	if req.Attributes != nil {
		if err := a.validateAttributes(r, device.CategoryID, req.Attributes); err != nil {
			a.respondMapped(w, r, err)
			return
		}
		before["attributes"], after["attributes"] = formatAttrs(device.Attributes), formatAttrs(datatypes.JSONMap(req.Attributes))
		device.Attributes = datatypes.JSONMap(req.Attributes)
	} else if req.CategoryID != nil {
		// A category move revalidates the existing document against the
		// new schema.
		if err := a.validateAttributes(r, device.CategoryID, device.Attributes); err != nil {
			a.respondMapped(w, r, err)
			return
		}
	}

	changes := models.DiffChanges(before, after)
	if len(changes) == 0 {
		respondJSON(w, http.StatusOK, map[string]any{"device": newDeviceView(device, time.Now().UTC())})
		return
	}

	err = a.store.ORM.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&device).Error; err != nil {
			return err
		}
		return a.recordAudit(tx, r, models.ActionUpdate, "Device", device.ID.String(), deviceRepr(device), changes)
	})
	if err != nil {
		a.respondMapped(w, r, err)
		return
	}

	subject, payload := deviceEvent(models.ActionUpdate, device)
	a.publishEvent(r.Context(), subject, payload)
	respondJSON(w, http.StatusOK, map[string]any{"device": newDeviceView(device, time.Now().UTC())})
}

func (a *API) handleDeleteDevice(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, errors.New("valid device id is required"))
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	var device models.Device
	if err := a.store.ORM.WithContext(ctx).First(&device, "id = ?", id).Error; err != nil {
		a.respondMapped(w, r, err)
		return
	}

	err = a.store.ORM.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Network records cascade at the schema level.
		if err := tx.Delete(&models.Device{}, "id = ?", id).Error; err != nil {
			return err
		}
		return a.recordAudit(tx, r, models.ActionDelete, "Device", id.String(), deviceRepr(device), nil)
	})
	if err != nil {
		a.respondMapped(w, r, err)
		return
	}

	subject, payload := deviceEvent(models.ActionDelete, device)
	a.publishEvent(r.Context(), subject, payload)
	respondJSON(w, http.StatusOK, map[string]any{"deleted": id})
}

// handleDeviceHistory returns the audit trail of a single device, newest
// first.
func (a *API) handleDeviceHistory(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, errors.New("valid device id is required"))
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	var device models.Device
	if err := a.store.ORM.WithContext(ctx).First(&device, "id = ?", id).Error; err != nil {
		a.respondMapped(w, r, err)
		return
	}

	limit, offset := pagination(r.URL.Query().Get("limit"), r.URL.Query().Get("offset"))

	var entries []models.AuditEntry
	err = a.store.ORM.WithContext(ctx).
		Where("entity_type = ? AND entity_id = ?", "Device", id.String()).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&entries).Error
	if err != nil {
		a.respondMapped(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"device_id": id,
		"history":   entries,
	})
}

func formatFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func formatAttrs(m datatypes.JSONMap) string {
	raw, err := m.MarshalJSON()
	if err != nil {
		return ""
	}
	return string(raw)
}

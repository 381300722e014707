package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// FieldType tags the value kind an attribute definition accepts.
type FieldType string

const (
	FieldText    FieldType = "text"
	FieldNumber  FieldType = "number"
	FieldDate    FieldType = "date"
	FieldBoolean FieldType = "boolean"
	FieldChoice  FieldType = "choice"
)

// Valid reports whether t is one of the supported field types.
func (t FieldType) Valid() bool {
	switch t {
	case FieldText, FieldNumber, FieldDate, FieldBoolean, FieldChoice:
		return true
	default:
		return false
	}
}

// DeviceStatus is the lifecycle state of a device.
type DeviceStatus string

const (
	StatusActive      DeviceStatus = "active"
	StatusInactive    DeviceStatus = "inactive"
	StatusMaintenance DeviceStatus = "maintenance"
	StatusRetired     DeviceStatus = "retired"
)

// Valid reports whether s is a known lifecycle status.
func (s DeviceStatus) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusMaintenance, StatusRetired:
		return true
	default:
		return false
	}
}

// AuditAction is the kind of mutation an audit entry records.
type AuditAction string

const (
	ActionCreate AuditAction = "create"
	ActionUpdate AuditAction = "update"
	ActionDelete AuditAction = "delete"
	ActionView   AuditAction = "view"
)

// Category groups devices that share an attribute schema.
type Category struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"type:text;uniqueIndex;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `gorm:"type:timestamptz;not null;default:now();autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"type:timestamptz;not null;default:now();autoUpdateTime" json:"updated_at"`

	Definitions []AttributeDefinition `gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"attribute_definitions,omitempty"`
}

func (Category) TableName() string { return "categories" }

// AttributeDefinition describes one dynamic field of a category's schema.
// (CategoryID, Name) is unique; Choices holds a JSON string list and is
// required when FieldType is choice.
type AttributeDefinition struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CategoryID   uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_definitions_category_name,priority:1" json:"category_id"`
	Name         string         `gorm:"type:text;not null;uniqueIndex:idx_definitions_category_name,priority:2" json:"name"`
	FieldType    FieldType      `gorm:"type:text;not null" json:"field_type"`
	Required     bool           `gorm:"not null;default:false" json:"required"`
	DefaultValue string         `gorm:"type:text" json:"default_value"`
	Choices      datatypes.JSON `gorm:"type:jsonb" json:"choices,omitempty"`
	HelpText     string         `gorm:"type:text" json:"help_text"`
	SortOrder    int            `gorm:"not null;default:0" json:"sort_order"`
}

func (AttributeDefinition) TableName() string { return "attribute_definitions" }

// ChoiceValues decodes the stored choice list. Malformed or absent JSON
// yields nil, which the validator treats as an unconstrained choice.
func (d AttributeDefinition) ChoiceValues() []string {
	if len(d.Choices) == 0 {
		return nil
	}
	var out []string
	if err := json.Unmarshal(d.Choices, &out); err != nil {
		return nil
	}
	return out
}

// SetChoices stores the choice list as JSON.
func (d *AttributeDefinition) SetChoices(values []string) error {
	raw, err := json.Marshal(values)
	if err != nil {
		return err
	}
	d.Choices = raw
	return nil
}

// Device is one tracked asset. Attributes holds the category's dynamic
// fields as a schemaless document validated against the category schema.
type Device struct {
	ID                uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	SerialNumber      string            `gorm:"type:text;uniqueIndex;not null" json:"serial_number"`
	Name              string            `gorm:"type:text;not null" json:"name"`
	CategoryID        uuid.UUID         `gorm:"type:uuid;not null;index" json:"category_id"`
	Status            DeviceStatus      `gorm:"type:text;not null;default:'active';index" json:"status"`
	ResponsiblePerson string            `gorm:"type:text;index" json:"responsible_person"`
	Attributes        datatypes.JSONMap `gorm:"type:jsonb" json:"attributes"`

	PurchaseDate     *time.Time `gorm:"type:date" json:"purchase_date"`
	Cost             *float64   `gorm:"type:numeric(12,2)" json:"cost"`
	Department       string     `gorm:"type:text;index" json:"department"`
	Location         string     `gorm:"type:text;index" json:"location"`
	DepreciationRate *float64   `gorm:"type:numeric(5,2)" json:"depreciation_rate"`
	WarrantyEndDate  *time.Time `gorm:"type:date" json:"warranty_end_date"`
	Supplier         string     `gorm:"type:text" json:"supplier"`
	MaintenanceNotes string     `gorm:"type:text" json:"maintenance_notes"`
	RetirementDate   *time.Time `gorm:"type:date" json:"retirement_date"`

	CreatedBy string    `gorm:"type:text" json:"created_by"`
	CreatedAt time.Time `gorm:"type:timestamptz;not null;default:now();autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"type:timestamptz;not null;default:now();autoUpdateTime" json:"updated_at"`

	Category       *Category       `gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"category,omitempty"`
	NetworkRecords []NetworkRecord `gorm:"foreignKey:DeviceID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"network_records,omitempty"`
}

func (Device) TableName() string { return "devices" }

// NetworkRecord assigns a network identity to a device. History is an
// append-only JSON list of past assignment events.
type NetworkRecord struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	DeviceID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"device_id"`
	IPAddress  string         `gorm:"type:text;not null;index" json:"ip_address"`
	MACAddress string         `gorm:"type:text;not null;index" json:"mac_address"`
	AssignedAt time.Time      `gorm:"type:timestamptz;not null;default:now()" json:"assigned_at"`
	Active     bool           `gorm:"not null;default:true;index" json:"is_active"`
	Notes      string         `gorm:"type:text" json:"notes"`
	History    datatypes.JSON `gorm:"type:jsonb;default:'[]'" json:"history"`
	CreatedAt  time.Time      `gorm:"type:timestamptz;not null;default:now();autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"type:timestamptz;not null;default:now();autoUpdateTime" json:"updated_at"`

	Device *Device `gorm:"foreignKey:DeviceID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"device,omitempty"`
}

func (NetworkRecord) TableName() string { return "network_records" }

// AuditEntry is an immutable record of one mutating operation. Entries are
// only ever inserted; the API exposes list and filter, never write.
type AuditEntry struct {
	ID         int64          `gorm:"type:bigserial;primaryKey" json:"id"`
	Actor      *string        `gorm:"type:text;index" json:"actor"`
	Action     AuditAction    `gorm:"type:text;not null;index" json:"action"`
	EntityType string         `gorm:"type:text;not null;index" json:"entity_type"`
	EntityID   string         `gorm:"type:text;not null;index" json:"entity_id"`
	EntityRepr string         `gorm:"type:text" json:"entity_repr"`
	Changes    datatypes.JSON `gorm:"type:jsonb" json:"changes,omitempty"`
	SourceIP   string         `gorm:"type:text" json:"source_ip"`
	UserAgent  string         `gorm:"type:text" json:"user_agent"`
	CreatedAt  time.Time      `gorm:"type:timestamptz;not null;default:now();autoCreateTime;index:idx_audit_created,sort:desc" json:"created_at"`
}

func (AuditEntry) TableName() string { return "audit_entries" }

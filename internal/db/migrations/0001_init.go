package migrations

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

func init() {
	goose.AddMigrationContext(upInit, downInit)
}

// The structs below snapshot the schema at the time of this migration and
// intentionally do not reference the live model package.

type Category struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name        string    `gorm:"type:text;uniqueIndex;not null"`
	Description string    `gorm:"type:text"`
	CreatedAt   time.Time `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
	UpdatedAt   time.Time `gorm:"type:timestamptz;not null;default:now();autoUpdateTime"`
}

func (Category) TableName() string { return "categories" }

type AttributeDefinition struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey"`
	CategoryID   uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_definitions_category_name,priority:1"`
	Name         string         `gorm:"type:text;not null;uniqueIndex:idx_definitions_category_name,priority:2"`
	FieldType    string         `gorm:"type:text;not null"`
	Required     bool           `gorm:"not null;default:false"`
	DefaultValue string         `gorm:"type:text"`
	Choices      datatypes.JSON `gorm:"type:jsonb"`
	HelpText     string         `gorm:"type:text"`
	SortOrder    int            `gorm:"not null;default:0"`
	Category     Category       `gorm:"foreignKey:CategoryID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (AttributeDefinition) TableName() string { return "attribute_definitions" }

type Device struct {
	ID                uuid.UUID         `gorm:"type:uuid;primaryKey"`
	SerialNumber      string            `gorm:"type:text;uniqueIndex;not null"`
	Name              string            `gorm:"type:text;not null"`
	CategoryID        uuid.UUID         `gorm:"type:uuid;not null;index"`
	Status            string            `gorm:"type:text;not null;default:'active';index"`
	ResponsiblePerson string            `gorm:"type:text;index"`
	Attributes        datatypes.JSONMap `gorm:"type:jsonb"`
	PurchaseDate      *time.Time        `gorm:"type:date"`
	Cost              *float64          `gorm:"type:numeric(12,2)"`
	Department        string            `gorm:"type:text;index"`
	Location          string            `gorm:"type:text;index"`
	DepreciationRate  *float64          `gorm:"type:numeric(5,2)"`
	WarrantyEndDate   *time.Time        `gorm:"type:date"`
	Supplier          string            `gorm:"type:text"`
	MaintenanceNotes  string            `gorm:"type:text"`
	RetirementDate    *time.Time        `gorm:"type:date"`
	CreatedBy         string            `gorm:"type:text"`
	CreatedAt         time.Time         `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
	UpdatedAt         time.Time         `gorm:"type:timestamptz;not null;default:now();autoUpdateTime"`
	Category          Category          `gorm:"foreignKey:CategoryID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

func (Device) TableName() string { return "devices" }

type NetworkRecord struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey"`
	DeviceID   uuid.UUID      `gorm:"type:uuid;not null;index"`
	IPAddress  string         `gorm:"type:text;not null;index"`
	MACAddress string         `gorm:"type:text;not null;index"`
	AssignedAt time.Time      `gorm:"type:timestamptz;not null;default:now()"`
	Active     bool           `gorm:"not null;default:true;index"`
	Notes      string         `gorm:"type:text"`
	History    datatypes.JSON `gorm:"type:jsonb;default:'[]'"`
	CreatedAt  time.Time      `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
	UpdatedAt  time.Time      `gorm:"type:timestamptz;not null;default:now();autoUpdateTime"`
	Device     Device         `gorm:"foreignKey:DeviceID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (NetworkRecord) TableName() string { return "network_records" }

type AuditEntry struct {
	ID         int64          `gorm:"type:bigserial;primaryKey"`
	Actor      *string        `gorm:"type:text;index"`
	Action     string         `gorm:"type:text;not null;index"`
	EntityType string         `gorm:"type:text;not null;index"`
	EntityID   string         `gorm:"type:text;not null;index"`
	EntityRepr string         `gorm:"type:text"`
	Changes    datatypes.JSON `gorm:"type:jsonb"`
	SourceIP   string         `gorm:"type:text"`
	UserAgent  string         `gorm:"type:text"`
	CreatedAt  time.Time      `gorm:"type:timestamptz;not null;default:now();autoCreateTime;index:idx_audit_created,sort:desc"`
}

func (AuditEntry) TableName() string { return "audit_entries" }

func upInit(ctx context.Context, tx *sql.Tx) error {
	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: tx, PreferSimpleProtocol: true}), &gorm.Config{
		NamingStrategy: schema.NamingStrategy{SingularTable: false},
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return err
	}

	if err := gormDB.WithContext(ctx).AutoMigrate(
		&Category{},
		&AttributeDefinition{},
		&Device{},
		&NetworkRecord{},
		&AuditEntry{},
	); err != nil {
		return err
	}

	m := gormDB.WithContext(ctx).Migrator()
	if err := m.CreateConstraint(&AttributeDefinition{}, "Category"); err != nil {
		return err
	}
	if err := m.CreateConstraint(&Device{}, "Category"); err != nil {
		return err
	}
	if err := m.CreateConstraint(&NetworkRecord{}, "Device"); err != nil {
		return err
	}

	return nil
}

func downInit(ctx context.Context, tx *sql.Tx) error {
	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: tx, PreferSimpleProtocol: true}), &gorm.Config{
		NamingStrategy: schema.NamingStrategy{SingularTable: false},
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return err
	}

	return gormDB.WithContext(ctx).Migrator().DropTable(
		&AuditEntry{},
		&NetworkRecord{},
		&Device{},
		&AttributeDefinition{},
		&Category{},
	)
}

package db

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"github.com/KoukeNeko/IPAC/internal/models"
)

//go:embed seed.yaml
var seedData []byte

type seedDefinition struct {
	Name     string   `yaml:"name"`
	Type     string   `yaml:"type"`
	Required bool     `yaml:"required"`
	Default  string   `yaml:"default"`
	Choices  []string `yaml:"choices"`
	Help     string   `yaml:"help"`
	Order    int      `yaml:"order"`
}

type seedCategory struct {
	Name        string           `yaml:"name"`
	Description string           `yaml:"description"`
	Definitions []seedDefinition `yaml:"definitions"`
}

type seedDevice struct {
	Serial           string         `yaml:"serial"`
	Name             string         `yaml:"name"`
	Category         string         `yaml:"category"`
	Status           string         `yaml:"status"`
	Department       string         `yaml:"department"`
	Location         string         `yaml:"location"`
	Supplier         string         `yaml:"supplier"`
	Cost             *float64       `yaml:"cost"`
	DepreciationRate *float64       `yaml:"depreciation_rate"`
	PurchaseDate     string         `yaml:"purchase_date"`
	Attributes       map[string]any `yaml:"attributes"`
}

type seedFile struct {
	Categories []seedCategory `yaml:"categories"`
	Devices    []seedDevice   `yaml:"devices"`
}

// Seed inserts baseline sample categories, schemas, and devices. Existing
// rows are left untouched, so seeding is safe to repeat.
func Seed(ctx context.Context, database *gorm.DB) error {
	var file seedFile
	if err := yaml.Unmarshal(seedData, &file); err != nil {
		return fmt.Errorf("decode seed data: %w", err)
	}

	categoryIDs := make(map[string]uuid.UUID, len(file.Categories))

	for _, sc := range file.Categories {
		category := models.Category{}
		err := database.WithContext(ctx).
			Where(models.Category{Name: sc.Name}).
			Attrs(models.Category{ID: uuid.New(), Description: sc.Description}).
			FirstOrCreate(&category).Error
		if err != nil {
			return fmt.Errorf("seed category %q: %w", sc.Name, err)
		}
		categoryIDs[sc.Name] = category.ID

		for _, sd := range sc.Definitions {
			def := models.AttributeDefinition{
				ID:           uuid.New(),
				FieldType:    models.FieldType(sd.Type),
				Required:     sd.Required,
				DefaultValue: sd.Default,
				HelpText:     sd.Help,
				SortOrder:    sd.Order,
			}
			if len(sd.Choices) > 0 {
				if err := def.SetChoices(sd.Choices); err != nil {
					return err
				}
			}
			err := database.WithContext(ctx).
				Where(models.AttributeDefinition{CategoryID: category.ID, Name: sd.Name}).
				Attrs(def).
				FirstOrCreate(&models.AttributeDefinition{}).Error
			if err != nil {
				return fmt.Errorf("seed definition %q/%q: %w", sc.Name, sd.Name, err)
			}
		}
	}

	for _, sd := range file.Devices {
		categoryID, ok := categoryIDs[sd.Category]
		if !ok {
			return fmt.Errorf("seed device %q: unknown category %q", sd.Serial, sd.Category)
		}

		status := models.DeviceStatus(sd.Status)
		if status == "" {
			status = models.StatusActive
		}
		if !status.Valid() {
			return fmt.Errorf("seed device %q: invalid status %q", sd.Serial, sd.Status)
		}

		device := models.Device{
			ID:               uuid.New(),
			Name:             sd.Name,
			CategoryID:       categoryID,
			Status:           status,
			Department:       sd.Department,
			Location:         sd.Location,
			Supplier:         sd.Supplier,
			Cost:             sd.Cost,
			DepreciationRate: sd.DepreciationRate,
			Attributes:       sd.Attributes,
		}
		if sd.PurchaseDate != "" {
			purchased, err := time.Parse("2006-01-02", sd.PurchaseDate)
			if err != nil {
				return fmt.Errorf("seed device %q: purchase date: %w", sd.Serial, err)
			}
			device.PurchaseDate = &purchased
		}

		err := database.WithContext(ctx).
			Where(models.Device{SerialNumber: sd.Serial}).
			Attrs(device).
			FirstOrCreate(&models.Device{}).Error
		if err != nil {
			return fmt.Errorf("seed device %q: %w", sd.Serial, err)
		}
	}

	return nil
}

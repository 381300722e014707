package schema

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/KoukeNeko/IPAC/internal/models"
)

func printerSchema(t *testing.T) []models.AttributeDefinition {
	t.Helper()

	ink := models.AttributeDefinition{
		ID:         uuid.New(),
		Name:       "Ink",
		FieldType:  models.FieldChoice,
		Required:   true,
		SortOrder:  0,
	}
	if err := ink.SetChoices([]string{"Black", "Color", "Mixed"}); err != nil {
		t.Fatalf("SetChoices() error = %v", err)
	}

	return []models.AttributeDefinition{
		ink,
		{ID: uuid.New(), Name: "Print Speed", FieldType: models.FieldNumber, SortOrder: 1},
		{ID: uuid.New(), Name: "Duplex", FieldType: models.FieldBoolean, SortOrder: 2},
		{ID: uuid.New(), Name: "Installed", FieldType: models.FieldDate, SortOrder: 3},
		{ID: uuid.New(), Name: "Model", FieldType: models.FieldText, SortOrder: 4},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		attrs   map[string]any
		wantErr error
	}{
		{
			name: "fully valid",
			attrs: map[string]any{
				"Ink":         "Black",
				"Print Speed": 22.5,
				"Duplex":      true,
				"Installed":   "2024-03-01",
				"Model":       "LaserJet 4100",
			},
		},
		{
			name:    "missing required",
			attrs:   map[string]any{"Print Speed": 10},
			wantErr: ErrMissingRequired,
		},
		{
			name:  "optional fields absent",
			attrs: map[string]any{"Ink": "Color"},
		},
		{
			name:    "choice outside set",
			attrs:   map[string]any{"Ink": "Cyan"},
			wantErr: ErrInvalidChoice,
		},
		{
			name:    "choice wrong type",
			attrs:   map[string]any{"Ink": 3},
			wantErr: ErrInvalidChoice,
		},
		{
			name:    "number rejects non numeric string",
			attrs:   map[string]any{"Ink": "Black", "Print Speed": "fast"},
			wantErr: ErrInvalidType,
		},
		{
			name:  "number accepts numeric string",
			attrs: map[string]any{"Ink": "Black", "Print Speed": "22"},
		},
		{
			name:  "number accepts integer",
			attrs: map[string]any{"Ink": "Black", "Print Speed": 22},
		},
		{
			name:    "boolean rejects string",
			attrs:   map[string]any{"Ink": "Black", "Duplex": "yes"},
			wantErr: ErrInvalidType,
		},
		{
			name:    "date rejects free text",
			attrs:   map[string]any{"Ink": "Black", "Installed": "last spring"},
			wantErr: ErrInvalidType,
		},
		{
			name:  "date accepts rfc3339",
			attrs: map[string]any{"Ink": "Black", "Installed": "2024-03-01T09:00:00Z"},
		},
		{
			name: "unknown keys accepted",
			attrs: map[string]any{
				"Ink":      "Black",
				"Firmware": "v2.1",
				"Extra":    42,
			},
		},
		{
			name:  "text needs no structural check",
			attrs: map[string]any{"Ink": "Black", "Model": "anything at all"},
		},
	}

	defs := printerSchema(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(defs, tt.attrs)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateFailsFastInSchemaOrder(t *testing.T) {
	defs := printerSchema(t)

	// Both the choice and the number are violated; the choice definition
	// sorts first so its error must win within the type-check pass.
	err := Validate(defs, map[string]any{"Ink": "Cyan", "Print Speed": "fast"})
	if !errors.Is(err, ErrInvalidChoice) {
		t.Fatalf("Validate() error = %v, want %v", err, ErrInvalidChoice)
	}
}

func TestValidateChecksAllRequiredBeforeTypes(t *testing.T) {
	defs := []models.AttributeDefinition{
		{ID: uuid.New(), Name: "Speed", FieldType: models.FieldNumber, SortOrder: 0},
		{ID: uuid.New(), Name: "Ink", FieldType: models.FieldText, Required: true, SortOrder: 1},
	}

	// The earlier optional attribute carries a bad value, but the later
	// required attribute is absent; the presence violation must surface.
	err := Validate(defs, map[string]any{"Speed": "fast"})
	if !errors.Is(err, ErrMissingRequired) {
		t.Fatalf("Validate() error = %v, want %v", err, ErrMissingRequired)
	}

	// With the required attribute supplied the type violation surfaces.
	err = Validate(defs, map[string]any{"Speed": "fast", "Ink": "Black"})
	if !errors.Is(err, ErrInvalidType) {
		t.Fatalf("Validate() error = %v, want %v", err, ErrInvalidType)
	}
}

func TestValidateEmptyChoiceListIsUnconstrained(t *testing.T) {
	defs := []models.AttributeDefinition{
		{ID: uuid.New(), Name: "Tier", FieldType: models.FieldChoice},
	}
	if err := Validate(defs, map[string]any{"Tier": "anything"}); err != nil {
		t.Fatalf("Validate() error = %v, want nil", err)
	}
}

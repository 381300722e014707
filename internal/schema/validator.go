package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/KoukeNeko/IPAC/internal/models"
)

var (
	// ErrMissingRequired reports a required attribute absent from the map.
	ErrMissingRequired = errors.New("missing required attribute")
	// ErrInvalidType reports a value that does not conform to the
	// definition's type tag.
	ErrInvalidType = errors.New("invalid attribute type")
	// ErrInvalidChoice reports a choice value outside the definition's
	// choice set.
	ErrInvalidChoice = errors.New("invalid attribute choice")
)

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Validate checks an attribute map against a category's schema. Presence of
// every required attribute is checked before any value is type-checked; each
// pass walks definitions in schema order and fails fast on the first
// violation. Keys without a matching definition are accepted for forward
// compatibility.
func Validate(defs []models.AttributeDefinition, attrs map[string]any) error {
	for _, def := range defs {
		if !def.Required {
			continue
		}
		if _, present := attrs[def.Name]; !present {
			return fmt.Errorf("%w: %q", ErrMissingRequired, def.Name)
		}
	}

	for _, def := range defs {
		value, present := attrs[def.Name]
		if !present {
			continue
		}

		switch def.FieldType {
		case models.FieldNumber:
			if !coercesToNumber(value) {
				return fmt.Errorf("%w: %q must be a number", ErrInvalidType, def.Name)
			}
		case models.FieldBoolean:
			if _, ok := value.(bool); !ok {
				return fmt.Errorf("%w: %q must be a boolean", ErrInvalidType, def.Name)
			}
		case models.FieldDate:
			if !coercesToDate(value) {
				return fmt.Errorf("%w: %q must be an ISO-8601 date", ErrInvalidType, def.Name)
			}
		case models.FieldChoice:
			choices := def.ChoiceValues()
			if len(choices) == 0 {
				continue
			}
			s, ok := value.(string)
			if !ok || !contains(choices, s) {
				return fmt.Errorf("%w: %q must be one of %v", ErrInvalidChoice, def.Name, choices)
			}
		case models.FieldText:
			// no structural check
		}
	}
	return nil
}

func coercesToNumber(value any) bool {
	switch v := value.(type) {
	case float64, float32, int, int64:
		return true
	case json.Number:
		_, err := v.Float64()
		return err == nil
	case string:
		_, err := strconv.ParseFloat(v, 64)
		return err == nil
	default:
		return false
	}
}

func coercesToDate(value any) bool {
	s, ok := value.(string)
	if !ok {
		return false
	}
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

func contains(values []string, s string) bool {
	for _, v := range values {
		if v == s {
			return true
		}
	}
	return false
}

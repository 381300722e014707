package models

import (
	"reflect"
	"testing"
)

func TestDiffChanges(t *testing.T) {
	tests := []struct {
		name   string
		before map[string]string
		after  map[string]string
		want   map[string]FieldChange
	}{
		{
			name:   "no fields touched",
			before: map[string]string{},
			after:  map[string]string{},
			want:   map[string]FieldChange{},
		},
		{
			name:   "identical values dropped",
			before: map[string]string{"name": "Printer A", "status": "active"},
			after:  map[string]string{"name": "Printer A", "status": "active"},
			want:   map[string]FieldChange{},
		},
		{
			name:   "only differing fields reported",
			before: map[string]string{"name": "Printer A", "status": "active"},
			after:  map[string]string{"name": "Printer A", "status": "retired"},
			want: map[string]FieldChange{
				"status": {Old: "active", New: "retired"},
			},
		},
		{
			name:   "field set from empty",
			before: map[string]string{"location": ""},
			after:  map[string]string{"location": "Building 2"},
			want: map[string]FieldChange{
				"location": {Old: "", New: "Building 2"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DiffChanges(tt.before, tt.after)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("DiffChanges() = %v, want %v", got, tt.want)
			}
		})
	}
}

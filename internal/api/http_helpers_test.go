package api

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{
			name:  "plain date",
			input: "2024-03-01",
			want:  time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "rfc3339",
			input: "2024-03-01T09:30:00Z",
			want:  time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC),
		},
		{name: "free text", input: "last tuesday", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseDate(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseDate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if !got.Equal(tt.want) {
				t.Fatalf("parseDate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPagination(t *testing.T) {
	tests := []struct {
		name       string
		limit      string
		offset     string
		wantLimit  int
		wantOffset int
	}{
		{name: "defaults", wantLimit: 50, wantOffset: 0},
		{name: "explicit", limit: "25", offset: "100", wantLimit: 25, wantOffset: 100},
		{name: "limit capped", limit: "10000", wantLimit: 50},
		{name: "negative ignored", limit: "-5", offset: "-1", wantLimit: 50, wantOffset: 0},
		{name: "garbage ignored", limit: "abc", offset: "xyz", wantLimit: 50, wantOffset: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limit, offset := pagination(tt.limit, tt.offset)
			if limit != tt.wantLimit || offset != tt.wantOffset {
				t.Fatalf("pagination() = (%d, %d), want (%d, %d)", limit, offset, tt.wantLimit, tt.wantOffset)
			}
		})
	}
}

func TestCheckDateOrdering(t *testing.T) {
	purchase := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	earlier := purchase.AddDate(-1, 0, 0)
	later := purchase.AddDate(2, 0, 0)

	if err := checkDateOrdering(nil, nil); err != nil {
		t.Fatalf("nil dates: error = %v", err)
	}
	if err := checkDateOrdering(&purchase, nil); err != nil {
		t.Fatalf("nil retirement: error = %v", err)
	}
	if err := checkDateOrdering(&purchase, &later); err != nil {
		t.Fatalf("ordered dates: error = %v", err)
	}
	if err := checkDateOrdering(&purchase, &purchase); err != nil {
		t.Fatalf("same day: error = %v", err)
	}
	if err := checkDateOrdering(&purchase, &earlier); err != errDateOrdering {
		t.Fatalf("reversed dates: error = %v, want %v", err, errDateOrdering)
	}
}

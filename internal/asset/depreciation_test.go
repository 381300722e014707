package asset

import (
	"math"
	"testing"
	"time"
)

func ptr(f float64) *float64 { return &f }

func TestCurrentValue(t *testing.T) {
	purchased := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		cost      *float64
		rate      *float64
		purchased *time.Time
		today     time.Time
		want      *float64
		tolerance float64
	}{
		{
			name:      "missing cost",
			rate:      ptr(20),
			purchased: &purchased,
			today:     purchased.AddDate(1, 0, 0),
			want:      nil,
		},
		{
			name:      "missing rate",
			cost:      ptr(15000),
			purchased: &purchased,
			today:     purchased.AddDate(1, 0, 0),
			want:      nil,
		},
		{
			name:  "missing purchase date",
			cost:  ptr(15000),
			rate:  ptr(20),
			today: purchased.AddDate(1, 0, 0),
			want:  nil,
		},
		{
			name:      "same day",
			cost:      ptr(15000),
			rate:      ptr(20),
			purchased: &purchased,
			today:     purchased,
			want:      ptr(15000),
		},
		{
			name:      "one year at twenty percent",
			cost:      ptr(15000),
			rate:      ptr(20),
			purchased: &purchased,
			today:     purchased.Add(time.Duration(365.25 * 24 * float64(time.Hour))),
			want:      ptr(12000),
			tolerance: 0.01,
		},
		{
			name:      "clamped at zero",
			cost:      ptr(15000),
			rate:      ptr(20),
			purchased: &purchased,
			today:     purchased.AddDate(10, 0, 0),
			want:      ptr(0),
		},
		{
			name:      "zero rate holds value",
			cost:      ptr(15000),
			rate:      ptr(0),
			purchased: &purchased,
			today:     purchased.AddDate(5, 0, 0),
			want:      ptr(15000),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CurrentValue(tt.cost, tt.rate, tt.purchased, tt.today)
			if tt.want == nil {
				if got != nil {
					t.Fatalf("CurrentValue() = %v, want nil", *got)
				}
				return
			}
			if got == nil {
				t.Fatalf("CurrentValue() = nil, want %v", *tt.want)
			}
			if math.Abs(*got-*tt.want) > tt.tolerance {
				t.Fatalf("CurrentValue() = %v, want %v", *got, *tt.want)
			}
		})
	}
}

func TestCurrentValueMonotonicOverTime(t *testing.T) {
	purchased := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	cost, rate := ptr(8000.0), ptr(15.0)

	prev := math.Inf(1)
	for months := 0; months <= 120; months += 6 {
		v := CurrentValue(cost, rate, &purchased, purchased.AddDate(0, months, 0))
		if v == nil {
			t.Fatalf("CurrentValue() = nil at month %d", months)
		}
		if *v > prev {
			t.Fatalf("value rose from %v to %v at month %d", prev, *v, months)
		}
		if *v < 0 {
			t.Fatalf("value went negative: %v at month %d", *v, months)
		}
		prev = *v
	}
}

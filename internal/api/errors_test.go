package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/KoukeNeko/IPAC/internal/models"
	"github.com/KoukeNeko/IPAC/internal/schema"
)

func TestStatusForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: http.StatusOK},
		{name: "missing required attribute", err: fmt.Errorf("%w: %q", schema.ErrMissingRequired, "Ink"), want: http.StatusBadRequest},
		{name: "invalid type", err: schema.ErrInvalidType, want: http.StatusBadRequest},
		{name: "invalid choice", err: schema.ErrInvalidChoice, want: http.StatusBadRequest},
		{name: "bad mac", err: models.ErrInvalidMAC, want: http.StatusBadRequest},
		{name: "bad ip", err: models.ErrInvalidIP, want: http.StatusBadRequest},
		{name: "out of range", err: fmt.Errorf("%w: cost", errOutOfRange), want: http.StatusBadRequest},
		{name: "date ordering", err: errDateOrdering, want: http.StatusBadRequest},
		{name: "not found", err: gorm.ErrRecordNotFound, want: http.StatusNotFound},
		{name: "category in use", err: fmt.Errorf("%w: 3 device(s)", errCategoryInUse), want: http.StatusConflict},
		{name: "unique violation", err: &pgconn.PgError{Code: pgUniqueViolation}, want: http.StatusConflict},
		{name: "other pg error", err: &pgconn.PgError{Code: "42P01"}, want: http.StatusInternalServerError},
		{name: "unknown", err: errors.New("boom"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := statusForError(tt.err); got != tt.want {
				t.Fatalf("statusForError() = %d, want %d", got, tt.want)
			}
		})
	}
}

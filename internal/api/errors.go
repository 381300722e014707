package api

import (
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/KoukeNeko/IPAC/internal/models"
	"github.com/KoukeNeko/IPAC/internal/schema"
)

var (
	errOutOfRange          = errors.New("value out of range")
	errDateOrdering        = errors.New("retirement date precedes purchase date")
	errCategoryInUse       = errors.New("category is referenced by devices")
	errReadPoolUnavailable = errors.New("read pool not configured")
)

const pgUniqueViolation = "23505"

// statusForError maps the validation/storage error taxonomy onto HTTP
// status codes. Unknown errors are treated as internal.
func statusForError(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, schema.ErrMissingRequired),
		errors.Is(err, schema.ErrInvalidType),
		errors.Is(err, schema.ErrInvalidChoice),
		errors.Is(err, models.ErrInvalidMAC),
		errors.Is(err, models.ErrInvalidIP),
		errors.Is(err, errOutOfRange),
		errors.Is(err, errDateOrdering):
		return http.StatusBadRequest
	case errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, errCategoryInUse), isUniqueViolation(err):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

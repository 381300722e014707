package api

import (
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/KoukeNeko/IPAC/internal/schema"
	"github.com/KoukeNeko/IPAC/pkg/bus"
)

const (
	defaultRateLimitPerMinute = 300
	defaultRequestTimeout     = 60 * time.Second
)

// Store holds external dependencies required by the API layer.
type Store struct {
	DB  *pgxpool.Pool
	ORM *gorm.DB
	Bus *bus.Bus
}

// Config controls runtime behaviour for the API handlers.
type Config struct {
	AllowedOrigins     []string
	RateLimitPerMinute int
	RequestTimeout     time.Duration
}

// API wires dependencies and configuration for the HTTP handlers.
type API struct {
	store    *Store
	registry schema.Registry
	config   Config
	log      zerolog.Logger
}

// New initialises the API layer with sane defaults applied to the provided
// configuration.
func New(store *Store, logger zerolog.Logger, cfg Config) (*API, error) {
	if store == nil {
		return nil, errors.New("store is required")
	}
	if store.ORM == nil {
		return nil, errors.New("store ORM is required")
	}

	if cfg.RateLimitPerMinute <= 0 {
		cfg.RateLimitPerMinute = defaultRateLimitPerMinute
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}

	return &API{
		store:    store,
		registry: schema.NewRegistry(store.ORM),
		config:   cfg,
		log:      logger,
	}, nil
}

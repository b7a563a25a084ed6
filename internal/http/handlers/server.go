package handlers

import (
	"context"

	"github.com/rogerio-castellano/inventory-app/internal/notify"
	"github.com/rogerio-castellano/inventory-app/internal/repo"
	"github.com/sirupsen/logrus"
)

// Pinger reports whether storage is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Config struct {
	Products  repo.ProductRepository
	Metrics   repo.MetricsRepository
	Hub       *notify.Hub
	Storage   Pinger
	Logger    logrus.FieldLogger
	SeedCount int
}

// Handlers holds the collaborators every route needs. Build it once in main
// and hand it to the router.
type Handlers struct {
	products  repo.ProductRepository
	metrics   repo.MetricsRepository
	hub       *notify.Hub
	storage   Pinger
	log       logrus.FieldLogger
	seedCount int
}

func New(cfg Config) *Handlers {
	log := cfg.Logger
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.WarnLevel)
		log = l
	}
	seedCount := cfg.SeedCount
	if seedCount <= 0 {
		seedCount = repo.DefaultSeedCount
	}
	return &Handlers{
		products:  cfg.Products,
		metrics:   cfg.Metrics,
		hub:       cfg.Hub,
		storage:   cfg.Storage,
		log:       log,
		seedCount: seedCount,
	}
}

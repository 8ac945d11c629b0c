package services

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/kerbaras/mangareader/pkg/catalog"
	"github.com/kerbaras/mangareader/pkg/config"
	"github.com/kerbaras/mangareader/pkg/data"
	"github.com/kerbaras/mangareader/pkg/sources"
)

// Controller wires the catalog source, store, reader and exporter from
// configuration. Front-ends build one and share it.
type Controller struct {
	Source   sources.Source
	Store    *catalog.Store
	Reader   *Reader
	Exporter *Exporter

	mirror *data.Repository
}

// NewController opens the configured backend.
func NewController(cfg *config.Config, log *zap.Logger) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}

	var (
		source sources.Source
		mirror *data.Repository
	)
	switch cfg.Source.Backend {
	case config.BackendDuckDB:
		db, err := data.InitDuckDB(cfg.DuckDB.Path)
		if err != nil {
			return nil, fmt.Errorf("open mirror %s: %w", cfg.DuckDB.Path, err)
		}
		mirror = data.NewDuckDBRepository(db)
		source = mirror
	default:
		source = sources.NewSupabase(cfg.Source.URL, cfg.Source.Key, cfg.Source.Timeout)
	}

	log.Debug("controller ready", zap.String("backend", cfg.Source.Backend))
	return NewControllerWithSource(source, cfg.Export, log, mirror), nil
}

// NewControllerWithSource builds a controller over an existing source. mirror
// may be nil; when set it is closed with the controller.
func NewControllerWithSource(source sources.Source, export config.ExportConfig, log *zap.Logger, mirror *data.Repository) *Controller {
	reader := NewReader(source, log)
	return &Controller{
		Source:   source,
		Store:    catalog.NewStore(source, log),
		Reader:   reader,
		Exporter: NewExporter(reader, export, log),
		mirror:   mirror,
	}
}

// Close releases the exporter and the mirror database.
func (c *Controller) Close() error {
	c.Exporter.Close()
	if c.mirror != nil {
		return c.mirror.Close()
	}
	return nil
}

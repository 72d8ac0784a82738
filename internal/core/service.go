package core

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"immunizetrack/internal/presentation"
	"immunizetrack/internal/seed"
	"immunizetrack/pkg/domain"
)

// PersistentStore aliases the durable snapshot backend contract.
type PersistentStore = domain.PersistentStore

// ErrNoPersistentStore is returned by Persist and Reload when the service was
// built without a backend.
var ErrNoPersistentStore = errors.New("core: no persistent store configured")

// ErrUnknownKind is returned for record kinds the service does not serve.
var ErrUnknownKind = errors.New("core: unknown record kind")

// Service exposes the list, summary and lookup operations of every dashboard
// page plus the parent portal.
type Service struct {
	dir   *Directory
	pages *pages

	mu      sync.RWMutex
	catalog presentation.Catalog

	clock      Clock
	logger     Logger
	metrics    MetricsRecorder
	tracer     Tracer
	persistent PersistentStore
}

// NewService builds the stores from snap. When a persistent store is
// configured its snapshot takes precedence; an empty backend is seeded with
// snap unless WithoutSeeding is given.
func NewService(ctx context.Context, snap domain.Snapshot, opts ...Option) (*Service, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.strictStyles {
		if err := o.catalog.Validate(); err != nil {
			return nil, fmt.Errorf("presentation catalog: %w", err)
		}
	}
	if o.persistent != nil {
		stored, err := o.persistent.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("load snapshot: %w", err)
		}
		switch {
		case !stored.Empty():
			snap = stored
		case o.seedOnEmpty:
			if err := o.persistent.Save(ctx, snap); err != nil {
				return nil, fmt.Errorf("seed snapshot: %w", err)
			}
			o.logger.Info("seeded empty persistent store")
		default:
			snap = stored
		}
	}
	dir, err := NewDirectory(snap)
	if err != nil {
		return nil, err
	}
	p, err := newPages(dir, o.filterCache)
	if err != nil {
		return nil, err
	}
	return &Service{
		dir:        dir,
		pages:      p,
		catalog:    o.catalog,
		clock:      o.clock,
		logger:     o.logger,
		metrics:    o.metrics,
		tracer:     o.tracer,
		persistent: o.persistent,
	}, nil
}

// NewDefaultService builds a service over the built-in records.
func NewDefaultService(ctx context.Context, opts ...Option) (*Service, error) {
	snap, err := seed.Default()
	if err != nil {
		return nil, err
	}
	return NewService(ctx, snap, opts...)
}

// Directory returns the underlying stores.
func (s *Service) Directory() *Directory { return s.dir }

// Catalog returns the active presentation catalog.
func (s *Service) Catalog() presentation.Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog
}

// Kinds lists the record kinds served by the service.
func (s *Service) Kinds() []domain.EntityType { return domain.EntityTypes() }

func (s *Service) run(ctx context.Context, op string, fn func(context.Context) error) error {
	ctx, span := s.tracer.Start(ctx, op)
	started := s.clock.Now()
	err := fn(ctx)
	elapsed := s.clock.Now().Sub(started)
	span.End(err)
	s.metrics.Observe(ctx, op, err == nil, elapsed)
	if err != nil {
		var notFound domain.ErrNotFound
		if errors.As(err, &notFound) {
			s.logger.Debug("record lookup missed", "operation", op, "kind", notFound.Entity, "id", notFound.ID)
		} else {
			s.logger.Error("operation failed", "operation", op, "error", err)
		}
		return err
	}
	s.logger.Debug("operation completed", "operation", op, "duration", elapsed)
	return nil
}

func (s *Service) page(kind domain.EntityType) (pageAPI, error) {
	p, ok := s.pages.byKind[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
	return p, nil
}

// List returns the records of kind matching q over fields, or over the page's
// default search fields when fields is empty.
func (s *Service) List(ctx context.Context, kind domain.EntityType, q string, fields ...string) (Listing, error) {
	var out Listing
	err := s.run(ctx, "list."+string(kind), func(context.Context) error {
		p, err := s.page(kind)
		if err != nil {
			return err
		}
		out = p.list(q, fields, s.Catalog())
		return nil
	})
	return out, err
}

// Summary returns the category counts of kind over the full store. The result
// never depends on any active query.
func (s *Service) Summary(ctx context.Context, kind domain.EntityType) (Summary, error) {
	var out Summary
	err := s.run(ctx, "summary."+string(kind), func(context.Context) error {
		p, err := s.page(kind)
		if err != nil {
			return err
		}
		out = p.summary(s.Catalog())
		return nil
	})
	return out, err
}

// Find looks a record of kind up by id.
func (s *Service) Find(ctx context.Context, kind domain.EntityType, id string) (Row, error) {
	var out Row
	err := s.run(ctx, "find."+string(kind), func(context.Context) error {
		p, err := s.page(kind)
		if err != nil {
			return err
		}
		row, ok := p.find(id, s.Catalog())
		if !ok {
			return domain.ErrNotFound{Entity: kind, ID: id}
		}
		out = row
		return nil
	})
	return out, err
}

// SearchFields returns the default search fields of kind.
func (s *Service) SearchFields(kind domain.EntityType) ([]string, error) {
	p, err := s.page(kind)
	if err != nil {
		return nil, err
	}
	return p.fields(), nil
}

// Patients filters the patient page.
func (s *Service) Patients(ctx context.Context, q string) []domain.Patient {
	var out []domain.Patient
	_ = s.run(ctx, "patients.filter", func(context.Context) error {
		out = s.pages.patients.engine.Filter(q)
		return nil
	})
	return out
}

// Patient looks a patient up by id.
func (s *Service) Patient(ctx context.Context, id string) (domain.Patient, error) {
	return lookup(ctx, s, s.pages.patients, id)
}

// Users filters the user page.
func (s *Service) Users(ctx context.Context, q string) []domain.User {
	var out []domain.User
	_ = s.run(ctx, "users.filter", func(context.Context) error {
		out = s.pages.users.engine.Filter(q)
		return nil
	})
	return out
}

// User looks an account up by id.
func (s *Service) User(ctx context.Context, id string) (domain.User, error) {
	return lookup(ctx, s, s.pages.users, id)
}

// Vaccines filters the inventory page.
func (s *Service) Vaccines(ctx context.Context, q string) []domain.VaccineLot {
	var out []domain.VaccineLot
	_ = s.run(ctx, "vaccines.filter", func(context.Context) error {
		out = s.pages.vaccines.engine.Filter(q)
		return nil
	})
	return out
}

// Vaccine looks a vaccine lot up by id.
func (s *Service) Vaccine(ctx context.Context, id string) (domain.VaccineLot, error) {
	return lookup(ctx, s, s.pages.vaccines, id)
}

// Activities filters the activity feed.
func (s *Service) Activities(ctx context.Context, q string) []domain.Activity {
	var out []domain.Activity
	_ = s.run(ctx, "activities.filter", func(context.Context) error {
		out = s.pages.activities.engine.Filter(q)
		return nil
	})
	return out
}

func lookup[T domain.Record](ctx context.Context, s *Service, p *page[T], id string) (T, error) {
	var out T
	err := s.run(ctx, "get."+string(p.entity), func(context.Context) error {
		rec, ok := p.engine.Get(id)
		if !ok {
			return domain.ErrNotFound{Entity: p.entity, ID: id}
		}
		out = rec
		return nil
	})
	return out, err
}

// PatientSummary returns patient counts by status.
func (s *Service) PatientSummary(ctx context.Context) Summary {
	out, _ := s.Summary(ctx, domain.EntityPatient)
	return out
}

// UserSummary returns account counts by role and by status.
func (s *Service) UserSummary(ctx context.Context) Summary {
	out, _ := s.Summary(ctx, domain.EntityUser)
	return out
}

// InventorySummary returns lot counts by stock state plus total doses.
func (s *Service) InventorySummary(ctx context.Context) Summary {
	out, _ := s.Summary(ctx, domain.EntityVaccine)
	return out
}

// ActivitySummary returns activity counts by severity and by type.
func (s *Service) ActivitySummary(ctx context.Context) Summary {
	out, _ := s.Summary(ctx, domain.EntityActivity)
	return out
}

// Persist writes the current records to the persistent store.
func (s *Service) Persist(ctx context.Context) error {
	return s.run(ctx, "persist", func(ctx context.Context) error {
		if s.persistent == nil {
			return ErrNoPersistentStore
		}
		return s.persistent.Save(ctx, s.dir.Snapshot())
	})
}

// Reload replaces the records with the persistent store's snapshot. Readers
// see either the previous or the reloaded content of each store.
func (s *Service) Reload(ctx context.Context) error {
	return s.run(ctx, "reload", func(ctx context.Context) error {
		if s.persistent == nil {
			return ErrNoPersistentStore
		}
		snap, err := s.persistent.Load(ctx)
		if err != nil {
			return err
		}
		return s.dir.Replace(snap)
	})
}

// Replace swaps every store to snap.
func (s *Service) Replace(ctx context.Context, snap domain.Snapshot) error {
	return s.run(ctx, "replace", func(context.Context) error {
		return s.dir.Replace(snap)
	})
}

// SetCatalog swaps the presentation catalog.
func (s *Service) SetCatalog(catalog presentation.Catalog) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.catalog = catalog
}

// Close releases the persistent store.
func (s *Service) Close() error {
	if s.persistent == nil {
		return nil
	}
	return s.persistent.Close()
}

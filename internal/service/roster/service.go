// Package roster manages the people and places of the franchise: students,
// professionals, units and classes, plus the plan catalog.
package roster

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mamadbah2/franchise/internal/cache"
	"github.com/mamadbah2/franchise/internal/domain/models"
	"github.com/mamadbah2/franchise/internal/service/listing"
	"github.com/mamadbah2/franchise/internal/validation"
	"github.com/mamadbah2/franchise/pkg/clients/backend"
)

// Backend is the REST surface the roster is stored behind.
type Backend interface {
	ListStudents(ctx context.Context, q string) ([]models.Student, error)
	CreateStudent(ctx context.Context, s models.Student) (models.Student, error)
	UpdateStudent(ctx context.Context, id string, s models.Student) (models.Student, error)
	DeleteStudent(ctx context.Context, id string) error

	ListProfessionals(ctx context.Context, q string) ([]models.Professional, error)
	CreateProfessional(ctx context.Context, p models.Professional) (models.Professional, error)
	UpdateProfessional(ctx context.Context, id string, p models.Professional) (models.Professional, error)
	DeleteProfessional(ctx context.Context, id string) error

	ListUnits(ctx context.Context, q string) ([]models.Unit, error)
	CreateUnit(ctx context.Context, u models.Unit) (models.Unit, error)
	UpdateUnit(ctx context.Context, id string, u models.Unit) (models.Unit, error)
	DeleteUnit(ctx context.Context, id string) error

	ListClasses(ctx context.Context, q backend.ClassQuery) ([]models.Class, error)
	CreateClass(ctx context.Context, c models.Class) (models.Class, error)
	UpdateClass(ctx context.Context, id string, c models.Class) (models.Class, error)
	DeleteClass(ctx context.Context, id string) error

	ListPlans(ctx context.Context, unitID string) ([]models.Plan, error)
	ListRecurrences(ctx context.Context) ([]models.Recurrence, error)
}

// Query filters a roster list. Collections are fetched whole and filtered
// in memory.
type Query struct {
	Search string
	UnitID string
	Status string
	listing.Window
}

func (q Query) filters() map[string]string {
	return map[string]string{"search": q.Search, "unit": q.UnitID, "status": q.Status}
}

// List is one page of a roster collection.
type List[T any] struct {
	listing.Page[T]
	View listing.ViewState `json:"view"`
}

func page[T any](filtered []T, q Query) List[T] {
	view := listing.Resume(q.Prior, q.filters(), q.Page, q.PageSize)
	return List[T]{Page: listing.Paginate(filtered, view.Page, view.Size), View: view}
}

// Service reads the roster through a cache and drops the cached collection
// after every mutation.
type Service struct {
	backend Backend
	cache   *cache.Cache
	logger  *zap.Logger
}

// NewService wires the roster service. A nil cache disables caching.
func NewService(b Backend, c *cache.Cache, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if c == nil {
		c = cache.New(nil, 0, logger)
	}
	return &Service{backend: b, cache: c, logger: logger.Named("roster")}
}

// mutated invalidates the collections affected by a write.
func (s *Service) mutated(ctx context.Context, collections ...string) {
	for _, c := range collections {
		s.cache.Invalidate(ctx, c)
	}
}

// Students lists students matching name, CPF or guardian name.
func (s *Service) Students(ctx context.Context, q Query) (List[models.Student], error) {
	all, err := cache.Remember(ctx, s.cache, cache.Key(ctx, cache.Students, "all"), 0,
		func(ctx context.Context) ([]models.Student, error) { return s.backend.ListStudents(ctx, "") })
	if err != nil {
		return List[models.Student]{}, fmt.Errorf("list students: %w", err)
	}
	filtered := listing.Filter(all,
		func(st models.Student) bool {
			return listing.Contains(st.Name, q.Search) || listing.Contains(st.CPF, q.Search) ||
				listing.Contains(st.Guardian.Name, q.Search)
		},
		func(st models.Student) bool { return listing.Equals(st.UnitID, q.UnitID) },
		func(st models.Student) bool { return listing.Equals(string(st.Status), q.Status) },
	)
	return page(filtered, q), nil
}

// CreateStudent enrolls a student.
func (s *Service) CreateStudent(ctx context.Context, st models.Student) (models.Student, error) {
	created, err := s.backend.CreateStudent(ctx, trimStudent(st))
	if err != nil {
		return models.Student{}, fmt.Errorf("create student: %w", err)
	}
	s.mutated(ctx, cache.Students, cache.Dashboard)
	s.logger.Info("student created", zap.String("id", created.ID))
	return created, nil
}

// UpdateStudent replaces a student's data.
func (s *Service) UpdateStudent(ctx context.Context, id string, st models.Student) (models.Student, error) {
	updated, err := s.backend.UpdateStudent(ctx, id, trimStudent(st))
	if err != nil {
		return models.Student{}, fmt.Errorf("update student %s: %w", id, err)
	}
	s.mutated(ctx, cache.Students, cache.Dashboard)
	return updated, nil
}

// DeleteStudent removes a student.
func (s *Service) DeleteStudent(ctx context.Context, id string) error {
	if err := s.backend.DeleteStudent(ctx, id); err != nil {
		return fmt.Errorf("delete student %s: %w", id, err)
	}
	s.mutated(ctx, cache.Students, cache.Dashboard)
	return nil
}

// Professionals lists staff matching name, CPF or e-mail.
func (s *Service) Professionals(ctx context.Context, q Query) (List[models.Professional], error) {
	all, err := cache.Remember(ctx, s.cache, cache.Key(ctx, cache.Professionals, "all"), 0,
		func(ctx context.Context) ([]models.Professional, error) { return s.backend.ListProfessionals(ctx, "") })
	if err != nil {
		return List[models.Professional]{}, fmt.Errorf("list professionals: %w", err)
	}
	filtered := listing.Filter(all,
		func(p models.Professional) bool {
			return listing.Contains(p.Name, q.Search) || listing.Contains(p.CPF, q.Search) ||
				listing.Contains(p.Email, q.Search)
		},
		func(p models.Professional) bool { return q.UnitID == "" || containsID(p.UnitIDs, q.UnitID) },
		func(p models.Professional) bool { return listing.Equals(string(p.Status), q.Status) },
	)
	return page(filtered, q), nil
}

// CreateProfessional hires a professional.
func (s *Service) CreateProfessional(ctx context.Context, p models.Professional) (models.Professional, error) {
	p.Name = strings.TrimSpace(p.Name)
	if err := checkTerms(p, &p.Payout); err != nil {
		return models.Professional{}, err
	}
	created, err := s.backend.CreateProfessional(ctx, p)
	if err != nil {
		return models.Professional{}, fmt.Errorf("create professional: %w", err)
	}
	s.mutated(ctx, cache.Professionals, cache.Movements)
	return created, nil
}

// UpdateProfessional replaces a professional's data.
func (s *Service) UpdateProfessional(ctx context.Context, id string, p models.Professional) (models.Professional, error) {
	p.Name = strings.TrimSpace(p.Name)
	if err := checkTerms(p, &p.Payout); err != nil {
		return models.Professional{}, err
	}
	updated, err := s.backend.UpdateProfessional(ctx, id, p)
	if err != nil {
		return models.Professional{}, fmt.Errorf("update professional %s: %w", id, err)
	}
	s.mutated(ctx, cache.Professionals, cache.Movements)
	return updated, nil
}

// DeleteProfessional removes a professional.
func (s *Service) DeleteProfessional(ctx context.Context, id string) error {
	if err := s.backend.DeleteProfessional(ctx, id); err != nil {
		return fmt.Errorf("delete professional %s: %w", id, err)
	}
	s.mutated(ctx, cache.Professionals, cache.Movements)
	return nil
}

// Units lists units matching name, city or responsible.
func (s *Service) Units(ctx context.Context, q Query) (List[models.Unit], error) {
	all, err := s.allUnits(ctx)
	if err != nil {
		return List[models.Unit]{}, err
	}
	filtered := listing.Filter(all,
		func(u models.Unit) bool {
			return listing.Contains(u.Name, q.Search) || listing.Contains(u.City, q.Search) ||
				listing.Contains(u.Responsible, q.Search)
		},
		func(u models.Unit) bool { return listing.Equals(string(u.Status), q.Status) },
	)
	return page(filtered, q), nil
}

func (s *Service) allUnits(ctx context.Context) ([]models.Unit, error) {
	all, err := cache.Remember(ctx, s.cache, cache.Key(ctx, cache.Units, "all"), 0,
		func(ctx context.Context) ([]models.Unit, error) { return s.backend.ListUnits(ctx, "") })
	if err != nil {
		return nil, fmt.Errorf("list units: %w", err)
	}
	return all, nil
}

// CreateUnit opens a unit.
func (s *Service) CreateUnit(ctx context.Context, u models.Unit) (models.Unit, error) {
	u.Name = strings.TrimSpace(u.Name)
	if err := checkTerms(u, &u.Payout); err != nil {
		return models.Unit{}, err
	}
	created, err := s.backend.CreateUnit(ctx, u)
	if err != nil {
		return models.Unit{}, fmt.Errorf("create unit: %w", err)
	}
	s.mutated(ctx, cache.Units, cache.Dashboard)
	return created, nil
}

// UpdateUnit replaces a unit's data.
func (s *Service) UpdateUnit(ctx context.Context, id string, u models.Unit) (models.Unit, error) {
	u.Name = strings.TrimSpace(u.Name)
	if err := checkTerms(u, &u.Payout); err != nil {
		return models.Unit{}, err
	}
	updated, err := s.backend.UpdateUnit(ctx, id, u)
	if err != nil {
		return models.Unit{}, fmt.Errorf("update unit %s: %w", id, err)
	}
	s.mutated(ctx, cache.Units, cache.Dashboard)
	return updated, nil
}

// checkTerms validates entity and normalizes its payout type spelling.
func checkTerms(entity interface{}, terms *models.PayoutTerms) error {
	if err := validation.Struct(entity); err != nil {
		return err
	}
	if terms.Type != "" {
		terms.Type = models.ParsePayoutType(string(terms.Type))
	}
	return nil
}

// DeleteUnit closes a unit.
func (s *Service) DeleteUnit(ctx context.Context, id string) error {
	if err := s.backend.DeleteUnit(ctx, id); err != nil {
		return fmt.Errorf("delete unit %s: %w", id, err)
	}
	s.mutated(ctx, cache.Units, cache.Classes, cache.Dashboard)
	return nil
}

// Classes lists the classes of a unit or status; the unit and status go to
// the backend, the search is applied here.
func (s *Service) Classes(ctx context.Context, q Query) (List[models.Class], error) {
	key := cache.Key(ctx, cache.Classes, q.UnitID, q.Status)
	all, err := cache.Remember(ctx, s.cache, key, 0, func(ctx context.Context) ([]models.Class, error) {
		return s.backend.ListClasses(ctx, backend.ClassQuery{UnitID: q.UnitID, Status: q.Status})
	})
	if err != nil {
		return List[models.Class]{}, fmt.Errorf("list classes: %w", err)
	}
	filtered := listing.Filter(all, func(c models.Class) bool {
		return listing.Contains(c.Name, q.Search) || listing.Contains(c.Category, q.Search)
	})
	return page(filtered, q), nil
}

// CreateClass opens a class.
func (s *Service) CreateClass(ctx context.Context, c models.Class) (models.Class, error) {
	created, err := s.backend.CreateClass(ctx, c)
	if err != nil {
		return models.Class{}, fmt.Errorf("create class: %w", err)
	}
	s.mutated(ctx, cache.Classes)
	return created, nil
}

// UpdateClass replaces a class.
func (s *Service) UpdateClass(ctx context.Context, id string, c models.Class) (models.Class, error) {
	updated, err := s.backend.UpdateClass(ctx, id, c)
	if err != nil {
		return models.Class{}, fmt.Errorf("update class %s: %w", id, err)
	}
	s.mutated(ctx, cache.Classes)
	return updated, nil
}

// DeleteClass removes a class.
func (s *Service) DeleteClass(ctx context.Context, id string) error {
	if err := s.backend.DeleteClass(ctx, id); err != nil {
		return fmt.Errorf("delete class %s: %w", id, err)
	}
	s.mutated(ctx, cache.Classes)
	return nil
}

// Plans lists the active plans, optionally of one unit.
func (s *Service) Plans(ctx context.Context, unitID string) ([]models.Plan, error) {
	plans, err := cache.Remember(ctx, s.cache, cache.Key(ctx, cache.Plans, unitID), 0,
		func(ctx context.Context) ([]models.Plan, error) { return s.backend.ListPlans(ctx, unitID) })
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	return plans, nil
}

// Recurrences lists the active billing recurrences.
func (s *Service) Recurrences(ctx context.Context) ([]models.Recurrence, error) {
	out, err := cache.Remember(ctx, s.cache, cache.Key(ctx, cache.Recurrences, "all"), 0, s.backend.ListRecurrences)
	if err != nil {
		return nil, fmt.Errorf("list recurrences: %w", err)
	}
	return out, nil
}

func trimStudent(st models.Student) models.Student {
	st.Name = strings.TrimSpace(st.Name)
	st.Guardian.Name = strings.TrimSpace(st.Guardian.Name)
	st.Guardian.Phone = strings.TrimSpace(st.Guardian.Phone)
	return st
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

package payoutrun

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mamadbah2/franchise/internal/domain/models"
	"github.com/mamadbah2/franchise/internal/format"
)

// Step is the wizard state.
type Step string

const (
	StepConfig    Step = "config"
	StepPreview   Step = "preview"
	StepConfirmed Step = "confirmed"
)

// Scope selects which entities a run covers.
type Scope string

const (
	ScopeProfessional Scope = "Profissional"
	ScopeUnit         Scope = "Unidade"
	ScopeBoth         Scope = "Ambos"
)

// EntityType returns the entity type covered by the scope; empty for both.
func (s Scope) EntityType() models.EntityType {
	switch s {
	case ScopeProfessional:
		return models.EntityProfessional
	case ScopeUnit:
		return models.EntityUnit
	default:
		return ""
	}
}

var (
	ErrSessionNotFound   = errors.New("payout session not found")
	ErrInvalidTransition = errors.New("invalid payout wizard transition")
	ErrUnknownRow        = errors.New("row not in preview")
	ErrRowConfirmed      = errors.New("row already confirmed")
	ErrEmptySelection    = errors.New("no rows selected")
	ErrBusy              = errors.New("payout session is being confirmed")
)

// RunConfig is the data of the config step.
type RunConfig struct {
	Month     string   `json:"month" validate:"required"`
	Scope     Scope    `json:"scope" validate:"required,oneof=Profissional Unidade Ambos"`
	EntityIDs []string `json:"entity_ids,omitempty"`
}

// Preview is the data of the preview step.
type Preview struct {
	Rows      []models.PreviewRow `json:"rows"`
	Selected  map[string]bool     `json:"selected"`
	Confirmed map[string]string   `json:"confirmed"`
}

// Session is one payout wizard. Only the data of the current step is set.
type Session struct {
	ID        string         `json:"id"`
	Tenant    string         `json:"-"`
	Step      Step           `json:"step"`
	Config    RunConfig      `json:"config"`
	Preview   *Preview       `json:"preview,omitempty"`
	Report    *ConfirmReport `json:"report,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	ExpiresAt time.Time      `json:"expires_at"`

	month      format.Month
	confirming bool
}

func (s *Session) clone() *Session {
	out := *s
	if s.Preview != nil {
		p := Preview{
			Rows:      append([]models.PreviewRow(nil), s.Preview.Rows...),
			Selected:  make(map[string]bool, len(s.Preview.Selected)),
			Confirmed: make(map[string]string, len(s.Preview.Confirmed)),
		}
		for k, v := range s.Preview.Selected {
			p.Selected[k] = v
		}
		for k, v := range s.Preview.Confirmed {
			p.Confirmed[k] = v
		}
		out.Preview = &p
	}
	if s.Report != nil {
		r := *s.Report
		out.Report = &r
	}
	return &out
}

func (s *Session) enterPreview(rows []models.PreviewRow) {
	p := &Preview{
		Rows:      rows,
		Selected:  make(map[string]bool, len(rows)),
		Confirmed: map[string]string{},
	}
	for _, row := range rows {
		p.Selected[row.Key()] = preselected(row)
	}
	s.Step = StepPreview
	s.Preview = p
	s.Report = nil
}

// Toggle flips the selection of a preview row.
func (s *Session) Toggle(key string) error {
	if s.Step != StepPreview || s.Preview == nil {
		return ErrInvalidTransition
	}
	if s.confirming {
		return ErrBusy
	}
	selected, ok := s.Preview.Selected[key]
	if !ok {
		return ErrUnknownRow
	}
	if _, done := s.Preview.Confirmed[key]; done {
		return ErrRowConfirmed
	}
	s.Preview.Selected[key] = !selected
	return nil
}

// SelectAll selects or clears every row not yet confirmed.
func (s *Session) SelectAll(on bool) error {
	if s.Step != StepPreview || s.Preview == nil {
		return ErrInvalidTransition
	}
	if s.confirming {
		return ErrBusy
	}
	for key := range s.Preview.Selected {
		if _, done := s.Preview.Confirmed[key]; done {
			continue
		}
		s.Preview.Selected[key] = on
	}
	return nil
}

// Back discards the preview and returns to the config step.
func (s *Session) Back() error {
	if s.Step != StepPreview {
		return ErrInvalidTransition
	}
	if s.confirming {
		return ErrBusy
	}
	if s.Preview != nil && len(s.Preview.Confirmed) > 0 {
		// Confirmed payouts exist server-side; the run can only be finished.
		return ErrInvalidTransition
	}
	s.Step = StepConfig
	s.Preview = nil
	s.Report = nil
	return nil
}

// pending returns the selected rows not yet confirmed, in preview order.
func (s *Session) pending() []models.PreviewRow {
	var out []models.PreviewRow
	for _, row := range s.Preview.Rows {
		key := row.Key()
		if _, done := s.Preview.Confirmed[key]; done {
			continue
		}
		if s.Preview.Selected[key] {
			out = append(out, row)
		}
	}
	return out
}

// Store keeps wizard sessions in memory.
type Store struct {
	sessions map[string]*Session
	mu       sync.RWMutex
	ttl      time.Duration
	now      func() time.Time
}

// NewStore creates a session store whose sessions expire after ttl.
func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (st *Store) create(tenantID string) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.sweepLocked()

	now := st.now()
	s := &Session{
		ID:        uuid.NewString(),
		Tenant:    tenantID,
		Step:      StepConfig,
		CreatedAt: now,
		ExpiresAt: now.Add(st.ttl),
	}
	st.sessions[s.ID] = s
	return s.clone()
}

// Get returns a snapshot of a session of the tenant.
func (st *Store) Get(tenantID, id string) (*Session, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[id]
	if !ok || s.Tenant != tenantID || st.now().After(s.ExpiresAt) {
		return nil, ErrSessionNotFound
	}
	return s.clone(), nil
}

// Update applies fn to a session under the store lock and returns a snapshot.
func (st *Store) Update(tenantID, id string, fn func(*Session) error) (*Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[id]
	if !ok || s.Tenant != tenantID || st.now().After(s.ExpiresAt) {
		return nil, ErrSessionNotFound
	}
	if err := fn(s); err != nil {
		return nil, err
	}
	s.ExpiresAt = st.now().Add(st.ttl)
	return s.clone(), nil
}

// release clears the confirm lock of a session even after it expired, so
// the sweep can collect it.
func (st *Store) release(tenantID, id string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if s, ok := st.sessions[id]; ok && s.Tenant == tenantID {
		s.confirming = false
	}
}

// Delete removes a session.
func (st *Store) Delete(tenantID, id string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if s, ok := st.sessions[id]; ok && s.Tenant == tenantID {
		delete(st.sessions, id)
	}
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

func (st *Store) sweepLocked() {
	now := st.now()
	for id, s := range st.sessions {
		if now.After(s.ExpiresAt) && !s.confirming {
			delete(st.sessions, id)
		}
	}
}

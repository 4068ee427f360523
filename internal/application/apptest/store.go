// Package apptest ofrece una persistencia en memoria para probar los casos de uso
// sin base de datos.
package apptest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jhoicas/Agenda-api/internal/domain"
	"github.com/jhoicas/Agenda-api/internal/domain/entity"
	"github.com/jhoicas/Agenda-api/internal/domain/repository"
)

// Store implementa todos los puertos de repository sobre mapas.
type Store struct {
	mu      sync.Mutex
	nextID  int64
	users   map[int64]*entity.User
	sectors map[int64]*entity.Sector
	events  map[int64]*entity.Event
	audit   []*entity.AuditEntry

	// Fail, si no es nil, se devuelve en toda operación.
	Fail error
}

var (
	_ repository.UserRepository   = (*userRepo)(nil)
	_ repository.SectorRepository = (*sectorRepo)(nil)
	_ repository.EventRepository  = (*eventRepo)(nil)
	_ repository.AuditRepository  = (*auditRepo)(nil)
	_ repository.TxRunner         = (*Store)(nil)
)

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{
		nextID:  100,
		users:   map[int64]*entity.User{},
		sectors: map[int64]*entity.Sector{},
		events:  map[int64]*entity.Event{},
	}
}

// Repos devuelve los puertos sobre el almacén.
func (s *Store) Repos() repository.Repos {
	return repository.Repos{
		Users:   &userRepo{s},
		Sectors: &sectorRepo{s},
		Events:  &eventRepo{s},
		Audit:   &auditRepo{s},
	}
}

// Run ejecuta fn con los mismos repos (sin rollback).
func (s *Store) Run(_ context.Context, fn func(repository.Repos) error) error {
	if s.Fail != nil {
		return s.Fail
	}
	return fn(s.Repos())
}

// AddSector inserta un sector con id fijo.
func (s *Store) AddSector(id int64, name string, parentID *int64) *entity.Sector {
	s.mu.Lock()
	defer s.mu.Unlock()
	sec := &entity.Sector{ID: id, Name: name, ParentID: parentID}
	s.sectors[id] = sec
	return sec
}

// AddUser inserta un usuario activo con id fijo; PasswordHash se guarda tal cual.
func (s *Store) AddUser(u entity.User) *entity.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := u
	cp.IsActive = true
	cp.SectorName = s.sectorName(cp.SectorID)
	s.users[cp.ID] = &cp
	return &cp
}

// Deactivate marca un usuario como inactivo.
func (s *Store) Deactivate(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		u.IsActive = false
	}
}

// AddEvent inserta un evento con id fijo.
func (s *Store) AddEvent(e entity.Event) *entity.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := e
	s.events[cp.ID] = &cp
	return &cp
}

// Audit devuelve las entradas registradas, en orden de inserción.
func (s *Store) Audit() []*entity.AuditEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*entity.AuditEntry(nil), s.audit...)
}

// Event devuelve una copia del evento almacenado.
func (s *Store) Event(id int64) *entity.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.events[id]; ok {
		cp := *e
		return &cp
	}
	return nil
}

// User devuelve una copia del usuario almacenado.
func (s *Store) User(id int64) *entity.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		cp := *u
		return &cp
	}
	return nil
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *Store) sectorName(id int64) string {
	if sec, ok := s.sectors[id]; ok {
		return sec.Name
	}
	return ""
}

// ── users ─────────────────────────────────────────────────────────────────────

type userRepo struct{ s *Store }

func (r *userRepo) Create(_ context.Context, u *entity.User) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return s.Fail
	}
	for _, x := range s.users {
		if strings.EqualFold(x.Email, u.Email) {
			return domain.ErrEmailAlreadyExists
		}
	}
	if _, ok := s.sectors[u.SectorID]; !ok {
		return domain.ErrInvalidInput
	}
	u.ID = s.id()
	u.CreatedAt, u.UpdatedAt = time.Now(), time.Now()
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (r *userRepo) get(match func(*entity.User) bool) (*entity.User, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return nil, s.Fail
	}
	for _, u := range s.users {
		if match(u) {
			cp := *u
			cp.SectorName = s.sectorName(cp.SectorID)
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *userRepo) GetByID(_ context.Context, id int64) (*entity.User, error) {
	return r.get(func(u *entity.User) bool { return u.ID == id })
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	return r.get(func(u *entity.User) bool { return strings.EqualFold(u.Email, email) })
}

func (r *userRepo) Update(_ context.Context, u *entity.User) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return s.Fail
	}
	if _, ok := s.users[u.ID]; !ok {
		return domain.ErrUserNotFound
	}
	for _, x := range s.users {
		if x.ID != u.ID && strings.EqualFold(x.Email, u.Email) {
			return domain.ErrEmailAlreadyExists
		}
	}
	u.UpdatedAt = time.Now()
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (r *userRepo) UpdateLastLogin(_ context.Context, id int64) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return s.Fail
	}
	if u, ok := s.users[id]; ok {
		now := time.Now()
		u.LastLogin = &now
	}
	return nil
}

func (r *userRepo) List(_ context.Context, f repository.UserFilter) ([]*entity.User, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return nil, s.Fail
	}
	allowed := map[int64]bool{}
	for _, id := range f.SectorIDs {
		allowed[id] = true
	}
	var out []*entity.User
	for _, u := range s.users {
		if len(allowed) > 0 && !allowed[u.SectorID] {
			continue
		}
		cp := *u
		cp.SectorName = s.sectorName(cp.SectorID)
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if f.Limit > 0 {
		if f.Offset >= len(out) {
			return []*entity.User{}, nil
		}
		end := f.Offset + f.Limit
		if end > len(out) {
			end = len(out)
		}
		out = out[f.Offset:end]
	}
	return out, nil
}

func (r *userRepo) Delete(_ context.Context, id int64) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return s.Fail
	}
	if _, ok := s.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(s.users, id)
	return nil
}

// ── sectors ───────────────────────────────────────────────────────────────────

type sectorRepo struct{ s *Store }

func (r *sectorRepo) withCounts(sec *entity.Sector) *entity.Sector {
	cp := *sec
	cp.Users, cp.SubSectors, cp.Events = 0, 0, 0
	for _, u := range r.s.users {
		if u.SectorID == sec.ID {
			cp.Users++
		}
	}
	for _, c := range r.s.sectors {
		if c.ParentID != nil && *c.ParentID == sec.ID {
			cp.SubSectors++
		}
	}
	for _, e := range r.s.events {
		if e.SectorID == sec.ID {
			cp.Events++
		}
	}
	return &cp
}

func (r *sectorRepo) Create(_ context.Context, sec *entity.Sector) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return s.Fail
	}
	for _, x := range s.sectors {
		if strings.EqualFold(x.Name, sec.Name) {
			return domain.ErrConflict
		}
	}
	sec.ID = s.id()
	cp := *sec
	s.sectors[sec.ID] = &cp
	return nil
}

func (r *sectorRepo) GetByID(_ context.Context, id int64) (*entity.Sector, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return nil, s.Fail
	}
	if sec, ok := s.sectors[id]; ok {
		return r.withCounts(sec), nil
	}
	return nil, nil
}

func (r *sectorRepo) Update(_ context.Context, sec *entity.Sector) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return s.Fail
	}
	if _, ok := s.sectors[sec.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *sec
	s.sectors[sec.ID] = &cp
	return nil
}

func (r *sectorRepo) List(_ context.Context) ([]*entity.Sector, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return nil, s.Fail
	}
	out := make([]*entity.Sector, 0, len(s.sectors))
	for _, sec := range s.sectors {
		out = append(out, r.withCounts(sec))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *sectorRepo) Delete(_ context.Context, id int64) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return s.Fail
	}
	sec, ok := s.sectors[id]
	if !ok {
		return domain.ErrNotFound
	}
	if c := r.withCounts(sec); c.Users > 0 || c.SubSectors > 0 || c.Events > 0 {
		return domain.ErrConflict
	}
	delete(s.sectors, id)
	return nil
}

// ── events ────────────────────────────────────────────────────────────────────

type eventRepo struct{ s *Store }

func (r *eventRepo) Create(_ context.Context, e *entity.Event) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return s.Fail
	}
	e.ID = s.id()
	e.CreatedAt, e.UpdatedAt = time.Now(), time.Now()
	e.SectorName = s.sectorName(e.SectorID)
	cp := *e
	s.events[e.ID] = &cp
	return nil
}

func (r *eventRepo) GetByID(_ context.Context, id int64) (*entity.Event, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return nil, s.Fail
	}
	if e, ok := s.events[id]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, nil
}

func (r *eventRepo) Update(_ context.Context, e *entity.Event) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return s.Fail
	}
	if _, ok := s.events[e.ID]; !ok {
		return domain.ErrNotFound
	}
	e.UpdatedAt = time.Now()
	e.SectorName = s.sectorName(e.SectorID)
	cp := *e
	s.events[e.ID] = &cp
	return nil
}

func (r *eventRepo) UpdateStatus(_ context.Context, id int64, status entity.Status, details entity.EventDetails) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return s.Fail
	}
	e, ok := s.events[id]
	if !ok {
		return domain.ErrNotFound
	}
	e.Status = status
	e.Details = details
	e.UpdatedAt = time.Now()
	return nil
}

func (r *eventRepo) List(_ context.Context, f repository.EventFilter) ([]*entity.Event, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return nil, s.Fail
	}
	types := map[entity.EventType]bool{}
	for _, t := range f.Types {
		types[t] = true
	}
	var out []*entity.Event
	for _, e := range s.events {
		if len(types) > 0 && !types[e.Type] {
			continue
		}
		if !f.From.IsZero() && e.End().Before(f.From) {
			continue
		}
		if !f.To.IsZero() && e.StartDate.After(f.To) {
			continue
		}
		cp := *e
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartDate.Equal(out[j].StartDate) {
			return out[i].ID < out[j].ID
		}
		return out[i].StartDate.Before(out[j].StartDate)
	})
	return out, nil
}

func (r *eventRepo) Delete(_ context.Context, id int64) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return s.Fail
	}
	if _, ok := s.events[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.events, id)
	return nil
}

// ── audit ─────────────────────────────────────────────────────────────────────

type auditRepo struct{ s *Store }

func (r *auditRepo) Log(_ context.Context, a *entity.AuditEntry) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return s.Fail
	}
	a.ID = s.id()
	a.CreatedAt = time.Now()
	cp := *a
	s.audit = append(s.audit, &cp)
	return nil
}

func (r *auditRepo) List(_ context.Context, limit, offset int) ([]*entity.AuditEntry, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return nil, s.Fail
	}
	out := make([]*entity.AuditEntry, 0, len(s.audit))
	for i := len(s.audit) - 1; i >= 0; i-- {
		out = append(out, s.audit[i])
	}
	if offset >= len(out) {
		return []*entity.AuditEntry{}, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

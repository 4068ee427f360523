package access

import (
	"github.com/jhoicas/Agenda-api/internal/domain/entity"
	"github.com/jhoicas/Agenda-api/pkg/textfold"
)

// DefaultExecutiveSectors nombres de sector cuyos miembros pueden crear reuniones Direx.
var DefaultExecutiveSectors = []string{"Presidência", "DIREX", "Diretoria Executiva"}

// UserTarget descriptor del usuario sobre el que se actúa.
type UserTarget struct {
	ID       int64
	SectorID int64
}

// Evaluator combina la tabla de permisos con la jerarquía de sectores.
type Evaluator struct {
	hierarchy *Hierarchy
	executive map[string]struct{}
}

// Option configura el Evaluator.
type Option func(*Evaluator)

// WithExecutiveSectors reemplaza la lista de sectores ejecutivos.
func WithExecutiveSectors(names ...string) Option {
	return func(e *Evaluator) {
		e.executive = make(map[string]struct{}, len(names))
		for _, n := range names {
			if k := textfold.Fold(n); k != "" {
				e.executive[k] = struct{}{}
			}
		}
	}
}

// NewEvaluator construye el evaluador sobre la jerarquía dada.
func NewEvaluator(h *Hierarchy, opts ...Option) *Evaluator {
	e := &Evaluator{hierarchy: h}
	WithExecutiveSectors(DefaultExecutiveSectors...)(e)
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Hierarchy devuelve la jerarquía usada por el evaluador.
func (e *Evaluator) Hierarchy() *Hierarchy { return e.hierarchy }

// AccessibleSectors sectores que el actor puede ver o gestionar.
//   - ADMIN, IT_ADMIN: todos los sectores conocidos.
//   - MANAGER: su sector y los descendientes.
//   - COLLABORATOR: su sector.
func (e *Evaluator) AccessibleSectors(a *Actor) SectorSet {
	if a == nil {
		return SectorSet{}
	}
	switch a.Role {
	case entity.RoleAdmin, entity.RoleITAdmin:
		return e.hierarchy.All()
	case entity.RoleManager:
		return NewSectorSet(e.hierarchy.Descendants(a.SectorID)...)
	case entity.RoleCollaborator:
		return NewSectorSet(a.SectorID)
	}
	return SectorSet{}
}

// CanAccessSector informa si el sector es alcanzable por el actor.
func (e *Evaluator) CanAccessSector(a *Actor, sectorID int64) bool {
	if a == nil {
		return false
	}
	switch a.Role {
	case entity.RoleAdmin, entity.RoleITAdmin:
		return true
	case entity.RoleManager:
		return e.AccessibleSectors(a).Has(sectorID)
	case entity.RoleCollaborator:
		return sectorID == a.SectorID
	}
	return false
}

// CanEditUser requiere edit_user; un COLLABORATOR solo podría editarse a sí mismo.
func (e *Evaluator) CanEditUser(a *Actor, targetUserID *int64) bool {
	if !HasPermission(a, EditUser) {
		return false
	}
	if a.is(entity.RoleAdmin, entity.RoleITAdmin, entity.RoleManager) {
		return true
	}
	return a.Role == entity.RoleCollaborator && targetUserID != nil && *targetUserID == a.ID
}

// CanManageUser decide el alcance sobre un usuario concreto.
func (e *Evaluator) CanManageUser(a *Actor, target UserTarget) bool {
	if a == nil {
		return false
	}
	switch a.Role {
	case entity.RoleAdmin, entity.RoleITAdmin:
		return true
	case entity.RoleManager:
		return e.AccessibleSectors(a).Has(target.SectorID)
	case entity.RoleCollaborator:
		return target.ID == a.ID
	}
	return false
}

// CanViewUser: view_all_users, alcance de gestión o el propio perfil.
func (e *Evaluator) CanViewUser(a *Actor, target UserTarget) bool {
	if a == nil {
		return false
	}
	return HasPermission(a, ViewAllUsers) || target.ID == a.ID || e.CanManageUser(a, target)
}

// CanAssignRole decide qué roles puede otorgar el actor al crear o editar usuarios.
func (e *Evaluator) CanAssignRole(a *Actor, role entity.Role) bool {
	if a == nil || !role.Valid() {
		return false
	}
	switch a.Role {
	case entity.RoleAdmin:
		return true
	case entity.RoleITAdmin:
		return role != entity.RoleAdmin
	case entity.RoleManager:
		return role == entity.RoleCollaborator
	}
	return false
}

// CanEditSector: edit_sector, IT_ADMIN, o edit_own_sector sobre el sector propio.
func (e *Evaluator) CanEditSector(a *Actor, sectorID *int64) bool {
	if a == nil {
		return false
	}
	if HasPermission(a, EditSector) || a.Role == entity.RoleITAdmin {
		return true
	}
	return HasPermission(a, EditOwnSector) && sectorID != nil && *sectorID == a.SectorID
}

// CanViewSector: view_all_sectors o sector alcanzable.
func (e *Evaluator) CanViewSector(a *Actor, sectorID int64) bool {
	if a == nil {
		return false
	}
	return HasPermission(a, ViewAllSectors) || e.CanAccessSector(a, sectorID)
}

// CanCreateEvent: create_event y sector del evento alcanzable.
func (e *Evaluator) CanCreateEvent(a *Actor, sectorID int64) bool {
	return HasPermission(a, CreateEvent) && e.CanAccessSector(a, sectorID)
}

// CanEditEvent evalúa en orden edit_all_events, edit_subordinate_events y edit_own_events.
func (e *Evaluator) CanEditEvent(a *Actor, eventSectorID, eventCreatorID *int64) bool {
	if a == nil {
		return false
	}
	if HasPermission(a, EditAllEvents) {
		return true
	}
	if HasPermission(a, EditSubordinateEvents) && eventSectorID != nil {
		return e.CanAccessSector(a, *eventSectorID)
	}
	if HasPermission(a, EditOwnEvents) && eventCreatorID != nil && *eventCreatorID == a.ID {
		return true
	}
	return false
}

// CanDeleteEvent: delete_all_events o CanEditEvent.
func (e *Evaluator) CanDeleteEvent(a *Actor, eventSectorID, eventCreatorID *int64) bool {
	return HasPermission(a, DeleteAllEvents) || e.CanEditEvent(a, eventSectorID, eventCreatorID)
}

// CanCreateDirexMeeting: ADMIN, miembro de un sector ejecutivo o capacidad explícita.
func (e *Evaluator) CanCreateDirexMeeting(a *Actor) bool {
	if a == nil {
		return false
	}
	if a.Role == entity.RoleAdmin {
		return true
	}
	if _, ok := e.executive[textfold.Fold(a.SectorName)]; ok && a.SectorName != "" {
		return true
	}
	return HasPermission(a, CreateDirexMeeting)
}

// CanViewEvent: view_all_events, o sector alcanzable con view_subordinate_events
// o view_own_sector_events.
func (e *Evaluator) CanViewEvent(a *Actor, eventSectorID *int64) bool {
	if a == nil {
		return false
	}
	if HasPermission(a, ViewAllEvents) {
		return true
	}
	if eventSectorID == nil {
		return false
	}
	reachable := e.CanAccessSector(a, *eventSectorID)
	if HasPermission(a, ViewSubordinateEvents) && reachable {
		return true
	}
	return HasPermission(a, ViewOwnSectorEvents) && reachable
}

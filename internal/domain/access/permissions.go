// Package access implementa el control de acceso del directorio: tabla de
// permisos por rol, resolución de la jerarquía de sectores y los predicados
// can* que combinan ambos con chequeos de propiedad.
//
// Todas las funciones son puras y totales: un actor nil produce false (o un
// conjunto vacío) y nunca se entra en pánico.
package access

import (
	"sort"

	"github.com/jhoicas/Agenda-api/internal/domain/entity"
)

// Capability nombre de una capacidad otorgada por rol.
type Capability string

// Capacidades sobre usuarios.
const (
	CreateUser     Capability = "create_user"
	EditUser       Capability = "edit_user"
	DeleteUser     Capability = "delete_user"
	ViewAllUsers   Capability = "view_all_users"
	ViewOwnProfile Capability = "view_own_profile"
	ResetPasswords Capability = "reset_passwords"
)

// Capacidades sobre sectores.
const (
	CreateSector   Capability = "create_sector"
	EditSector     Capability = "edit_sector"
	DeleteSector   Capability = "delete_sector"
	ViewAllSectors Capability = "view_all_sectors"
	ViewOwnSector  Capability = "view_own_sector"
	EditOwnSector  Capability = "edit_own_sector"
)

// Capacidades sobre eventos.
const (
	CreateEvent           Capability = "create_event"
	EditAllEvents         Capability = "edit_all_events"
	EditSubordinateEvents Capability = "edit_subordinate_events"
	EditOwnEvents         Capability = "edit_own_events"
	DeleteAllEvents       Capability = "delete_all_events"
	ViewAllEvents         Capability = "view_all_events"
	ViewSubordinateEvents Capability = "view_subordinate_events"
	ViewOwnSectorEvents   Capability = "view_own_sector_events"
	CreateDirexMeeting    Capability = "create_direx_meeting"
)

// Capacidades de sistema.
const (
	ManageSystem         Capability = "manage_system"
	ManageSystemSettings Capability = "manage_system_settings"
	ViewLogs             Capability = "view_logs"
)

type capSet map[Capability]struct{}

func setOf(caps ...Capability) capSet {
	s := make(capSet, len(caps))
	for _, c := range caps {
		s[c] = struct{}{}
	}
	return s
}

// rolePermissions tabla estática rol → capacidades.
var rolePermissions = map[entity.Role]capSet{
	entity.RoleAdmin: setOf(
		CreateUser, EditUser, DeleteUser, ViewAllUsers,
		CreateSector, EditSector, DeleteSector, ViewAllSectors,
		CreateEvent, EditAllEvents, DeleteAllEvents, ViewAllEvents,
		ManageSystem,
	),
	entity.RoleManager: setOf(
		CreateUser, EditUser, DeleteUser,
		ViewOwnSector, EditOwnSector,
		CreateEvent, EditOwnEvents, ViewOwnSectorEvents,
	),
	entity.RoleCollaborator: setOf(
		CreateEvent, EditOwnEvents, ViewOwnSectorEvents, ViewOwnProfile,
	),
	entity.RoleITAdmin: setOf(
		CreateUser, EditUser, ViewAllUsers,
		CreateSector, EditSector, ViewAllSectors, DeleteSector,
		ResetPasswords, ManageSystemSettings, ViewLogs,
	),
}

// PermissionsOf devuelve las capacidades del rol ordenadas. Rol desconocido: vacío.
func PermissionsOf(role entity.Role) []Capability {
	set := rolePermissions[role]
	out := make([]Capability, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// HasPermission informa si el rol del actor otorga la capacidad.
func HasPermission(a *Actor, c Capability) bool {
	if a == nil {
		return false
	}
	_, ok := rolePermissions[a.Role][c]
	return ok
}

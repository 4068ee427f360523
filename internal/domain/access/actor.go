package access

import "github.com/jhoicas/Agenda-api/internal/domain/entity"

// Actor usuario autenticado sobre el que se evalúan los predicados.
// Lo construye el colaborador de sesión (token) y se pasa explícitamente.
type Actor struct {
	ID         int64
	Name       string
	Role       entity.Role
	SectorID   int64
	SectorName string
}

// ActorFromUser construye el actor desde un usuario del directorio.
func ActorFromUser(u *entity.User) *Actor {
	if u == nil {
		return nil
	}
	return &Actor{
		ID:         u.ID,
		Name:       u.Name,
		Role:       u.Role,
		SectorID:   u.SectorID,
		SectorName: u.SectorName,
	}
}

func (a *Actor) is(roles ...entity.Role) bool {
	if a == nil {
		return false
	}
	for _, r := range roles {
		if a.Role == r {
			return true
		}
	}
	return false
}

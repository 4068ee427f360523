// Package visibility decide qué eventos aparecen en el calendario y el kanban
// de un usuario: participación en el evento, el toggle "ver todos" de ADMIN y
// los filtros por categoría o por sector.
package visibility

import (
	"github.com/jhoicas/Agenda-api/internal/domain/access"
	"github.com/jhoicas/Agenda-api/internal/domain/entity"
	"github.com/jhoicas/Agenda-api/pkg/textfold"
)

// IsInvolved informa si el usuario es autor, compañero de sector, asignado,
// participante o responsable del evento.
func IsInvolved(a *access.Actor, e *entity.Event) bool {
	if a == nil || e == nil {
		return false
	}
	if isCreator(a, e) || e.SectorID == a.SectorID {
		return true
	}
	return refersTo(e.Assignees, a.ID) || refersTo(e.Participants, a.ID) || refersTo(e.Responsibles, a.ID)
}

// isCreator compara por id cuando existe; si no, por nombre del autor.
func isCreator(a *access.Actor, e *entity.Event) bool {
	if e.CreatorID != nil {
		return *e.CreatorID == a.ID
	}
	return e.Author != "" && a.Name != "" && textfold.Equal(e.Author, a.Name)
}

func refersTo(refs []entity.Ref, userID int64) bool {
	for _, r := range refs {
		if r.Refers(userID) {
			return true
		}
	}
	return false
}

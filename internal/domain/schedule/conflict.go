// Package schedule detecta choques de horario entre reuniones. El resultado
// es solo una advertencia: el usuario puede crear el evento igualmente.
package schedule

import (
	"time"

	"github.com/jhoicas/Agenda-api/internal/domain/entity"
)

// Candidate reunión que se va a crear o editar. ID cero para altas.
type Candidate struct {
	ID       int64
	Start    time.Time
	End      time.Time
	Type     entity.EventType
	SectorID int64
}

// CandidateOf construye el candidato desde un evento.
func CandidateOf(e *entity.Event) Candidate {
	return Candidate{ID: e.ID, Start: e.StartDate, End: e.End(), Type: e.Type, SectorID: e.SectorID}
}

// Overlaps intervalos semiabiertos [aStart, aEnd) y [bStart, bEnd): tocarse en un
// extremo no es solapamiento.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// FindConflicts devuelve las reuniones existentes cuyo horario se solapa con el
// candidato. El propio candidato (mismo ID) se excluye al editar. Un candidato
// que no es reunión no tiene conflictos.
func FindConflicts(c Candidate, existing []*entity.Event) []*entity.Event {
	out := []*entity.Event{}
	if c.Type != entity.EventMeeting {
		return out
	}
	for _, e := range existing {
		if e == nil || e.Type != entity.EventMeeting {
			continue
		}
		if c.ID != 0 && e.ID == c.ID {
			continue
		}
		if Overlaps(c.Start, c.End, e.StartDate, e.End()) {
			out = append(out, e)
		}
	}
	return out
}

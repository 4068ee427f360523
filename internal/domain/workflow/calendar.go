package workflow

import (
	"time"

	"github.com/jhoicas/Agenda-api/internal/domain/entity"
)

// colores por tipo para la vista de calendario.
var typeColors = map[entity.EventType]string{
	entity.EventMeeting:          "#1E88E5",
	entity.EventActivity:         "#43A047",
	entity.EventExternalActivity: "#FB8C00",
	entity.EventDocument:         "#8E24AA",
}

const (
	defaultColor   = "#757575"
	cancelledColor = "#BDBDBD"
)

// CalendarEntry proyección de un evento para el calendario.
type CalendarEntry struct {
	ID     int64
	Title  string
	Start  time.Time
	End    time.Time
	AllDay bool
	Type   entity.EventType
	Status entity.Status
	Column Column
	Color  string
}

// CalendarEntryOf proyecta el evento. Documentos se ubican en su fecha límite y
// actividades externas en su ventana de salida/regreso cuando existen.
func CalendarEntryOf(e *entity.Event) CalendarEntry {
	start, end := e.StartDate, e.End()
	switch {
	case e.Type == entity.EventDocument && e.Details.Document != nil && !e.Details.Document.DueDate.IsZero():
		start = e.Details.Document.DueDate
		end = start
	case e.Type == entity.EventExternalActivity && e.Details.External != nil &&
		!e.Details.External.DepartureTime.IsZero() && !e.Details.External.ReturnTime.Before(e.Details.External.DepartureTime):
		start = e.Details.External.DepartureTime
		end = e.Details.External.ReturnTime
	}
	col := KanbanColumnOf(e)
	color, ok := typeColors[e.Type]
	if !ok {
		color = defaultColor
	}
	if col == ColumnCancelled {
		color = cancelledColor
	}
	return CalendarEntry{
		ID:     e.ID,
		Title:  e.Title,
		Start:  start,
		End:    end,
		AllDay: isMidnight(start) && isMidnight(end),
		Type:   e.Type,
		Status: NormalizeStatus(string(e.Status), e.Type),
		Column: col,
		Color:  color,
	}
}

// Calendar proyecta los eventos que intersectan [from, to). Límites cero no restringen.
func Calendar(events []*entity.Event, from, to time.Time) []CalendarEntry {
	out := make([]CalendarEntry, 0, len(events))
	for _, e := range events {
		if e == nil {
			continue
		}
		entry := CalendarEntryOf(e)
		if !to.IsZero() && !entry.Start.Before(to) {
			continue
		}
		if !from.IsZero() && entry.End.Before(from) {
			continue
		}
		out = append(out, entry)
	}
	return out
}

func isMidnight(t time.Time) bool {
	h, m, s := t.Clock()
	return h == 0 && m == 0 && s == 0 && t.Nanosecond() == 0
}

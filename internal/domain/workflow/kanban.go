package workflow

import "github.com/jhoicas/Agenda-api/internal/domain/entity"

// Column columna del kanban.
type Column string

// Las cuatro columnas, en orden de tablero.
const (
	ColumnPending    Column = "pendente"
	ColumnInProgress Column = "em-andamento"
	ColumnDone       Column = "concluido"
	ColumnCancelled  Column = "cancelado"
)

// Columns devuelve las columnas en orden de tablero.
func Columns() []Column {
	return []Column{ColumnPending, ColumnInProgress, ColumnDone, ColumnCancelled}
}

// Valid informa si la columna es una de las cuatro.
func (c Column) Valid() bool {
	switch c {
	case ColumnPending, ColumnInProgress, ColumnDone, ColumnCancelled:
		return true
	}
	return false
}

// Label título de la columna para mostrar.
func (c Column) Label() string {
	switch c {
	case ColumnPending:
		return "Pendente"
	case ColumnInProgress:
		return "Em andamento"
	case ColumnDone:
		return "Concluído"
	case ColumnCancelled:
		return "Cancelado"
	}
	return string(c)
}

// columns único punto donde los cuatro vocabularios convergen en el tablero.
var columns = map[statusKey]Column{
	{entity.EventMeeting, string(MeetingScheduled)}: ColumnPending,
	{entity.EventMeeting, string(MeetingOngoing)}:   ColumnInProgress,
	{entity.EventMeeting, string(MeetingCompleted)}: ColumnDone,
	{entity.EventMeeting, string(MeetingCancelled)}: ColumnCancelled,

	{entity.EventActivity, string(ActivityPending)}:    ColumnPending,
	{entity.EventActivity, string(ActivityOverdue)}:    ColumnPending,
	{entity.EventActivity, string(ActivityInProgress)}: ColumnInProgress,
	{entity.EventActivity, string(ActivityCompleted)}:  ColumnDone,

	{entity.EventExternalActivity, string(ExternalPlanned)}:     ColumnPending,
	{entity.EventExternalActivity, string(ExternalInExecution)}: ColumnInProgress,
	{entity.EventExternalActivity, string(ExternalCompleted)}:   ColumnDone,
	{entity.EventExternalActivity, string(ExternalCancelled)}:   ColumnCancelled,

	{entity.EventDocument, string(DocumentPending)}:     ColumnPending,
	{entity.EventDocument, string(DocumentUnderReview)}: ColumnInProgress,
	{entity.EventDocument, string(DocumentSigned)}:      ColumnDone,
	{entity.EventDocument, string(DocumentSent)}:        ColumnDone,
	{entity.EventDocument, string(DocumentArchived)}:    ColumnDone,
}

// ColumnOf columna de un estado (crudo o canónico) de un tipo. Nunca falla:
// lo desconocido cae en pendente.
func ColumnOf(t entity.EventType, raw entity.Status) Column {
	s := NormalizeStatus(string(raw), t)
	if c, ok := columns[statusKey{t, string(s)}]; ok {
		return c
	}
	return ColumnPending
}

// KanbanColumnOf columna del tablero para el evento.
func KanbanColumnOf(e *entity.Event) Column {
	if e == nil {
		return ColumnPending
	}
	return ColumnOf(e.Type, e.Status)
}

// StatusForColumn primer estado del enum del tipo que cae en la columna, para
// mover una tarjeta de columna. false si el tipo no tiene estado en esa columna.
func StatusForColumn(t entity.EventType, c Column) (entity.Status, bool) {
	for _, s := range canonical[t] {
		if columns[statusKey{t, string(s)}] == c {
			return s, true
		}
	}
	return "", false
}

// BoardColumn una columna del tablero con sus eventos.
type BoardColumn struct {
	Column Column
	Events []*entity.Event
}

// Board agrupa los eventos en las cuatro columnas, en orden fijo. Las
// columnas vacías se incluyen.
func Board(events []*entity.Event) []BoardColumn {
	idx := make(map[Column]int, 4)
	board := make([]BoardColumn, 0, 4)
	for i, c := range Columns() {
		idx[c] = i
		board = append(board, BoardColumn{Column: c, Events: []*entity.Event{}})
	}
	for _, e := range events {
		if e == nil {
			continue
		}
		i := idx[KanbanColumnOf(e)]
		board[i].Events = append(board[i].Events, e)
	}
	return board
}

package agenda

import (
	"context"
	"time"
)

// AgendaRow una línea del informe de agenda.
type AgendaRow struct {
	Start  time.Time
	End    time.Time
	Type   string
	Title  string
	Sector string
	Status string
	Column string
	Author string
}

// AgendaReport datos del PDF de agenda.
type AgendaReport struct {
	Title       string
	GeneratedBy string
	GeneratedAt time.Time
	From        time.Time
	To          time.Time
	Rows        []AgendaRow
}

// AgendaPDFGenerator puerto del generador de PDF (implementado con Maroto).
type AgendaPDFGenerator interface {
	GenerateAgendaPDF(ctx context.Context, report AgendaReport) ([]byte, error)
}

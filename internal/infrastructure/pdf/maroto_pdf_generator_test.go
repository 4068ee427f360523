package pdf

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Agenda-api/internal/application/agenda"
)

func TestGenerateAgendaPDF_EncabezadoPDF(t *testing.T) {
	start := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	report := agenda.AgendaReport{
		Title:       "Agenda DAF",
		GeneratedBy: "Ana",
		GeneratedAt: start,
		From:        start,
		To:          start.Add(7 * 24 * time.Hour),
		Rows: []agenda.AgendaRow{
			{Start: start, End: start.Add(time.Hour), Type: "Reunião", Title: "Semanal", Sector: "DAF", Column: "Pendente", Author: "Ana"},
			{Start: start.Add(2 * time.Hour), Type: "Documento", Title: "Ofício", Column: "Concluído"},
		},
	}

	out, err := NewMarotoPDFGenerator().GenerateAgendaPDF(context.Background(), report)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestGenerateAgendaPDF_SinEventos(t *testing.T) {
	out, err := NewMarotoPDFGenerator().GenerateAgendaPDF(context.Background(), agenda.AgendaReport{})
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestGenerateAgendaPDF_ContextoCancelado(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewMarotoPDFGenerator().GenerateAgendaPDF(ctx, agenda.AgendaReport{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPeriod(t *testing.T) {
	d := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "todos", period(agenda.AgendaReport{}))
	assert.Equal(t, "10/03/2026 a …", period(agenda.AgendaReport{From: d}))
	assert.Equal(t, "10/03/2026 a 17/03/2026", period(agenda.AgendaReport{From: d, To: d.AddDate(0, 0, 7)}))
}

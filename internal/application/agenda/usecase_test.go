package agenda_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Agenda-api/internal/application/agenda"
	"github.com/jhoicas/Agenda-api/internal/application/apptest"
	"github.com/jhoicas/Agenda-api/internal/application/dto"
	"github.com/jhoicas/Agenda-api/internal/application/policy"
	"github.com/jhoicas/Agenda-api/internal/domain"
	"github.com/jhoicas/Agenda-api/internal/domain/entity"
	"github.com/jhoicas/Agenda-api/internal/domain/workflow"
	"github.com/jhoicas/Agenda-api/pkg/logger"
)

type fakePDF struct {
	report agenda.AgendaReport
	err    error
}

func (f *fakePDF) GenerateAgendaPDF(_ context.Context, r agenda.AgendaReport) ([]byte, error) {
	f.report = r
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF-1.4"), nil
}

type fixture struct {
	store *apptest.Store
	pdf   *fakePDF
	uc    *agenda.EventUseCase
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store := apptest.NewStore()
	apptest.Seed(store, "hash")
	repos := store.Repos()
	pdf := &fakePDF{}
	return fixture{
		store: store,
		pdf:   pdf,
		uc:    agenda.NewEventUseCase(repos.Events, store, policy.NewProvider(repos.Sectors, nil), pdf, logger.Nop()),
	}
}

var base = time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)

func at(h, m int) *time.Time {
	t := base.Add(time.Duration(h-10)*time.Hour + time.Duration(m)*time.Minute)
	return &t
}

func meeting(title string, start, end *time.Time) dto.EventRequest {
	return dto.EventRequest{Type: "MEETING", Title: title, StartDate: *start, EndDate: end}
}

func (f fixture) create(t *testing.T, userID int64, in dto.EventRequest) *dto.EventMutationResponse {
	t.Helper()
	out, err := f.uc.Create(context.Background(), f.store.Actor(userID), in)
	require.NoError(t, err)
	return out
}

// ─── Alta ─────────────────────────────────────────────────────────────────────

func TestCreate_SectorEstadoYAutorPorDefecto(t *testing.T) {
	f := newFixture(t)
	out := f.create(t, apptest.UserCollabBuying, meeting("Compras semanal", at(10, 0), at(11, 0)))

	ev := out.Event
	assert.NotZero(t, ev.ID)
	assert.Equal(t, apptest.SectorPurchasing, ev.SectorID)
	assert.Equal(t, "Compras", ev.SectorName)
	assert.Equal(t, "Bia", ev.Author)
	assert.Equal(t, apptest.UserCollabBuying, *ev.CreatorID)
	assert.Equal(t, string(workflow.MeetingScheduled), ev.Status)
	assert.Equal(t, string(workflow.ColumnPending), ev.Column)
	require.NotNil(t, ev.Meeting)
	assert.Equal(t, entity.LocationPresencial, ev.Meeting.Location)
	assert.Equal(t, entity.MeetingRegular, ev.Meeting.Kind)
	assert.Empty(t, out.Conflicts)

	audit := f.store.Audit()
	require.Len(t, audit, 1)
	assert.Equal(t, entity.AuditCreateEvent, audit[0].Action)
	assert.Equal(t, ev.ID, *audit[0].EntityID)
}

func TestCreate_TipoDesconocidoEsInvalido(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.Create(context.Background(), f.store.Actor(apptest.UserCollabBuying),
		dto.EventRequest{Type: "PARTY", Title: "x", StartDate: base})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCreate_FinAntesDeInicioEsInvalido(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.Create(context.Background(), f.store.Actor(apptest.UserCollabBuying),
		meeting("x", at(11, 0), at(10, 0)))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCreate_ColaboradorNoCreaEnOtroSector(t *testing.T) {
	f := newFixture(t)
	in := meeting("x", at(10, 0), at(11, 0))
	in.SectorID = apptest.SectorAccounting
	_, err := f.uc.Create(context.Background(), f.store.Actor(apptest.UserCollabBuying), in)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Empty(t, f.store.Audit())
}

func TestCreate_ManagerCreaEnSubsector(t *testing.T) {
	f := newFixture(t)
	in := meeting("Fechamento", at(10, 0), at(11, 0))
	in.SectorID = apptest.SectorAccounting
	out := f.create(t, apptest.UserManagerDAF, in)
	assert.Equal(t, apptest.SectorAccounting, out.Event.SectorID)
}

func TestCreate_ITAdminSinPermisoDeEventos(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.Create(context.Background(), f.store.Actor(apptest.UserITAdmin), meeting("x", at(10, 0), nil))
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestCreate_SectorDesconocidoEsInvalido(t *testing.T) {
	f := newFixture(t)
	in := meeting("x", at(10, 0), nil)
	in.SectorID = 999
	_, err := f.uc.Create(context.Background(), f.store.Actor(apptest.UserAdmin), in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCreate_DirexExigeSectorEjecutivo(t *testing.T) {
	f := newFixture(t)
	in := meeting("Direx", at(9, 0), at(10, 0))
	in.Meeting = &entity.MeetingDetails{Kind: entity.MeetingDirex}

	_, err := f.uc.Create(context.Background(), f.store.Actor(apptest.UserManagerDAF), in)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	out := f.create(t, apptest.UserPresident, in)
	assert.Equal(t, entity.MeetingDirex, out.Event.Meeting.Kind)
}

func TestCreate_EstadoHeredadoSeNormaliza(t *testing.T) {
	f := newFixture(t)
	in := dto.EventRequest{Type: "activity", Title: "Relatório", StartDate: base, Status: "em_andamento"}
	out := f.create(t, apptest.UserCollabBuying, in)
	assert.Equal(t, string(workflow.ActivityInProgress), out.Event.Status)
	assert.Equal(t, string(entity.PriorityMedium), string(out.Event.Activity.Priority))
}

func TestCreate_InformaChoquesDeReuniones(t *testing.T) {
	f := newFixture(t)
	first := f.create(t, apptest.UserCollabBuying, meeting("A", at(10, 0), at(11, 0)))

	out := f.create(t, apptest.UserManagerDAF, meeting("B", at(10, 30), at(11, 30)))
	require.Len(t, out.Conflicts, 1)
	assert.Equal(t, first.Event.ID, out.Conflicts[0].ID)

	touching := f.create(t, apptest.UserManagerDAF, meeting("C", at(11, 30), at(12, 0)))
	assert.Empty(t, touching.Conflicts)
}

func TestCreate_ActividadNuncaChoca(t *testing.T) {
	f := newFixture(t)
	f.create(t, apptest.UserCollabBuying, meeting("A", at(10, 0), at(11, 0)))
	out := f.create(t, apptest.UserCollabBuying, dto.EventRequest{Type: "ACTIVITY", Title: "T", StartDate: *at(10, 0), EndDate: at(11, 0)})
	assert.Empty(t, out.Conflicts)
}

func TestCreate_SinActor(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.Create(context.Background(), nil, meeting("x", at(10, 0), nil))
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

// ─── Lectura y visibilidad ────────────────────────────────────────────────────

func TestGet_ManagerVeEventoDeSectorSubordinado(t *testing.T) {
	f := newFixture(t)
	created := f.create(t, apptest.UserCollabBuying, meeting("A", at(10, 0), nil))

	got, err := f.uc.Get(context.Background(), f.store.Actor(apptest.UserManagerDAF), created.Event.ID)
	require.NoError(t, err)
	assert.Equal(t, "A", got.Title)

	_, err = f.uc.Get(context.Background(), f.store.Actor(apptest.UserCollabIT), created.Event.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestGet_ParticipantePuedeVer(t *testing.T) {
	f := newFixture(t)
	in := meeting("A", at(10, 0), nil)
	in.Participants = []entity.Ref{entity.RefByID(apptest.UserCollabIT)}
	created := f.create(t, apptest.UserCollabBuying, in)

	got, err := f.uc.Get(context.Background(), f.store.Actor(apptest.UserCollabIT), created.Event.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{apptest.UserCollabIT}, got.Participants)
}

func TestGet_NoExiste(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.Get(context.Background(), f.store.Actor(apptest.UserAdmin), 4242)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestList_SoloInvolucradosSalvoAdminShowAll(t *testing.T) {
	f := newFixture(t)
	f.create(t, apptest.UserCollabBuying, meeting("Compras", at(10, 0), nil))
	withAna := meeting("Com Ana", at(14, 0), nil)
	withAna.Participants = []entity.Ref{entity.RefByID(apptest.UserManagerDAF)}
	f.create(t, apptest.UserCollabBuying, withAna)

	ana, err := f.uc.List(context.Background(), f.store.Actor(apptest.UserManagerDAF), dto.EventQuery{})
	require.NoError(t, err)
	require.Len(t, ana, 1)
	assert.Equal(t, "Com Ana", ana[0].Title)

	admin, err := f.uc.List(context.Background(), f.store.Actor(apptest.UserAdmin), dto.EventQuery{})
	require.NoError(t, err)
	assert.Empty(t, admin)

	admin, err = f.uc.List(context.Background(), f.store.Actor(apptest.UserAdmin), dto.EventQuery{ShowAll: true})
	require.NoError(t, err)
	assert.Len(t, admin, 2)

	// ShowAll solo vale para ADMIN.
	ana, err = f.uc.List(context.Background(), f.store.Actor(apptest.UserManagerDAF), dto.EventQuery{ShowAll: true})
	require.NoError(t, err)
	assert.Len(t, ana, 1)
}

func TestList_FiltrosCategoriaYSector(t *testing.T) {
	f := newFixture(t)
	f.create(t, apptest.UserManagerDAF, meeting("Reunião DAF", at(10, 0), nil))
	in := dto.EventRequest{Type: "DOCUMENT", Title: "Ofício", StartDate: base, SectorID: apptest.SectorAccounting,
		Document: &entity.DocumentDetails{DocumentType: "oficio"}}
	f.create(t, apptest.UserManagerDAF, in)
	actor := f.store.Actor(apptest.UserAdmin)

	docs, err := f.uc.List(context.Background(), actor, dto.EventQuery{ShowAll: true, Categories: []string{"documento"}})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Ofício", docs[0].Title)

	sector := apptest.SectorDAF
	bySector, err := f.uc.List(context.Background(), actor, dto.EventQuery{ShowAll: true, Tab: "sector", Sector: &sector})
	require.NoError(t, err)
	require.Len(t, bySector, 1)
	assert.Equal(t, "Reunião DAF", bySector[0].Title)

	sub, err := f.uc.List(context.Background(), actor, dto.EventQuery{
		ShowAll: true, Tab: "sector", Sector: &sector, SubSectors: []int64{apptest.SectorAccounting},
	})
	require.NoError(t, err)
	require.Len(t, sub, 1)
	assert.Equal(t, "Ofício", sub[0].Title)
}

func TestBoard_CuatroColumnasEnOrden(t *testing.T) {
	f := newFixture(t)
	f.create(t, apptest.UserCollabBuying, dto.EventRequest{Type: "ACTIVITY", Title: "T", StartDate: base, Status: "COMPLETED"})

	board, err := f.uc.Board(context.Background(), f.store.Actor(apptest.UserCollabBuying), dto.EventQuery{})
	require.NoError(t, err)
	require.Len(t, board.Columns, 4)
	assert.Equal(t, "Pendente", board.Columns[0].Label)
	assert.Equal(t, string(workflow.ColumnDone), board.Columns[2].Column)
	assert.Len(t, board.Columns[2].Events, 1)
	assert.Empty(t, board.Columns[0].Events)
}

func TestCalendar_RechazaVentanaInvertida(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.Calendar(context.Background(), f.store.Actor(apptest.UserAdmin),
		dto.EventQuery{From: base, To: base.Add(-time.Hour)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCalendar_EntradasEnLaVentana(t *testing.T) {
	f := newFixture(t)
	f.create(t, apptest.UserCollabBuying, meeting("Dentro", at(10, 0), at(11, 0)))
	f.create(t, apptest.UserCollabBuying, meeting("Fora", at(10+48, 0), at(11+48, 0)))

	out, err := f.uc.Calendar(context.Background(), f.store.Actor(apptest.UserCollabBuying),
		dto.EventQuery{From: base.Add(-time.Hour), To: base.Add(6 * time.Hour)})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Dentro", out[0].Title)
	assert.Equal(t, "MEETING", out[0].Type)
}

// ─── Edición y estados ────────────────────────────────────────────────────────

func TestUpdate_AutorEditaLosDemasNo(t *testing.T) {
	f := newFixture(t)
	created := f.create(t, apptest.UserCollabBuying, meeting("A", at(10, 0), at(11, 0)))
	in := meeting("A revisada", at(10, 0), at(11, 0))

	_, err := f.uc.Update(context.Background(), f.store.Actor(apptest.UserManagerDAF), created.Event.ID, in)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	out, err := f.uc.Update(context.Background(), f.store.Actor(apptest.UserCollabBuying), created.Event.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "A revisada", out.Event.Title)
	assert.Equal(t, "A revisada", f.store.Event(created.Event.ID).Title)

	out, err = f.uc.Update(context.Background(), f.store.Actor(apptest.UserAdmin), created.Event.ID, meeting("Admin", at(10, 0), nil))
	require.NoError(t, err)
	assert.Equal(t, "Bia", out.Event.Author)
}

func TestUpdate_TipoNoCambia(t *testing.T) {
	f := newFixture(t)
	created := f.create(t, apptest.UserCollabBuying, meeting("A", at(10, 0), nil))
	in := dto.EventRequest{Type: "ACTIVITY", Title: "A", StartDate: base}
	_, err := f.uc.Update(context.Background(), f.store.Actor(apptest.UserCollabBuying), created.Event.ID, in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestUpdate_ColaboradorNoMueveDeSector(t *testing.T) {
	f := newFixture(t)
	created := f.create(t, apptest.UserCollabBuying, meeting("A", at(10, 0), nil))
	in := meeting("A", at(10, 0), nil)
	in.SectorID = apptest.SectorAccounting
	_, err := f.uc.Update(context.Background(), f.store.Actor(apptest.UserCollabBuying), created.Event.ID, in)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestUpdate_SeExcluyeDeLosChoques(t *testing.T) {
	f := newFixture(t)
	created := f.create(t, apptest.UserCollabBuying, meeting("A", at(10, 0), at(11, 0)))
	out, err := f.uc.Update(context.Background(), f.store.Actor(apptest.UserCollabBuying), created.Event.ID,
		meeting("A", at(10, 15), at(11, 15)))
	require.NoError(t, err)
	assert.Empty(t, out.Conflicts)
}

func TestChangeStatus_PorColumnaFijaFechaDeConclusion(t *testing.T) {
	f := newFixture(t)
	created := f.create(t, apptest.UserCollabBuying, dto.EventRequest{Type: "ACTIVITY", Title: "T", StartDate: base})
	actor := f.store.Actor(apptest.UserCollabBuying)

	out, err := f.uc.ChangeStatus(context.Background(), actor, created.Event.ID, dto.StatusChangeRequest{Column: "concluido"})
	require.NoError(t, err)
	assert.Equal(t, string(workflow.ActivityCompleted), out.Status)
	assert.Equal(t, string(workflow.ColumnDone), out.Column)
	require.NotNil(t, f.store.Event(created.Event.ID).Details.Activity.CompletedDate)

	out, err = f.uc.ChangeStatus(context.Background(), actor, created.Event.ID, dto.StatusChangeRequest{Status: "pendente"})
	require.NoError(t, err)
	assert.Equal(t, string(workflow.ActivityPending), out.Status)
	assert.Nil(t, f.store.Event(created.Event.ID).Details.Activity.CompletedDate)

	last := f.store.Audit()[len(f.store.Audit())-1]
	assert.Equal(t, entity.AuditChangeStatus, last.Action)
}

func TestChangeStatus_ColumnaSinEstadoEsInvalida(t *testing.T) {
	f := newFixture(t)
	created := f.create(t, apptest.UserCollabBuying, dto.EventRequest{Type: "ACTIVITY", Title: "T", StartDate: base})
	actor := f.store.Actor(apptest.UserCollabBuying)

	_, err := f.uc.ChangeStatus(context.Background(), actor, created.Event.ID, dto.StatusChangeRequest{Column: "cancelado"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.uc.ChangeStatus(context.Background(), actor, created.Event.ID, dto.StatusChangeRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDelete_Permisos(t *testing.T) {
	f := newFixture(t)
	created := f.create(t, apptest.UserCollabBuying, meeting("A", at(10, 0), nil))

	err := f.uc.Delete(context.Background(), f.store.Actor(apptest.UserCollabIT), created.Event.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	require.NoError(t, f.uc.Delete(context.Background(), f.store.Actor(apptest.UserAdmin), created.Event.ID))
	assert.Nil(t, f.store.Event(created.Event.ID))

	err = f.uc.Delete(context.Background(), f.store.Actor(apptest.UserAdmin), created.Event.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEscrituras_FalloDelAlmacen(t *testing.T) {
	f := newFixture(t)
	created := f.create(t, apptest.UserCollabBuying, meeting("A", at(10, 0), nil))
	f.store.Fail = errors.New("db down")
	err := f.uc.Delete(context.Background(), f.store.Actor(apptest.UserAdmin), created.Event.ID)
	assert.Error(t, err)
	f.store.Fail = nil
	assert.NotNil(t, f.store.Event(created.Event.ID))
}

// ─── Choques, tipos y exportación ─────────────────────────────────────────────

func TestCheckConflicts_ConsultaPrevia(t *testing.T) {
	f := newFixture(t)
	created := f.create(t, apptest.UserCollabBuying, meeting("A", at(10, 0), at(11, 0)))
	actor := f.store.Actor(apptest.UserManagerDAF)

	out, err := f.uc.CheckConflicts(context.Background(), actor, dto.ConflictCheckRequest{StartDate: *at(10, 30), EndDate: at(12, 0)})
	require.NoError(t, err)
	assert.True(t, out.HasConflicts)
	assert.Equal(t, created.Event.ID, out.Conflicts[0].ID)

	out, err = f.uc.CheckConflicts(context.Background(), actor,
		dto.ConflictCheckRequest{ID: created.Event.ID, StartDate: *at(10, 30), EndDate: at(12, 0)})
	require.NoError(t, err)
	assert.False(t, out.HasConflicts)

	_, err = f.uc.CheckConflicts(context.Background(), f.store.Actor(apptest.UserITAdmin), dto.ConflictCheckRequest{StartDate: base})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestEventTypes_DirexSoloSiPuedeCrearla(t *testing.T) {
	f := newFixture(t)

	opts, err := f.uc.EventTypes(context.Background(), f.store.Actor(apptest.UserCollabBuying))
	require.NoError(t, err)
	require.Len(t, opts, 4)
	assert.Equal(t, "reuniao", opts[0].Category)
	assert.Equal(t, []string{entity.MeetingRegular}, opts[0].Kinds)
	assert.Equal(t, "documento", opts[3].Category)

	opts, err = f.uc.EventTypes(context.Background(), f.store.Actor(apptest.UserPresident))
	require.NoError(t, err)
	assert.Contains(t, opts[0].Kinds, entity.MeetingDirex)
}

func TestExportPDF_UsaEventosVisibles(t *testing.T) {
	f := newFixture(t)
	f.create(t, apptest.UserCollabBuying, meeting("A", at(10, 0), at(11, 0)))

	data, name, err := f.uc.ExportPDF(context.Background(), f.store.Actor(apptest.UserCollabBuying), dto.EventQuery{})
	require.NoError(t, err)
	assert.NotEmpty(t, data)
	assert.Regexp(t, `^agenda_\d{8}\.pdf$`, name)
	require.Len(t, f.pdf.report.Rows, 1)
	assert.Equal(t, "Reunião", f.pdf.report.Rows[0].Type)
	assert.Equal(t, "Pendente", f.pdf.report.Rows[0].Column)
	assert.Equal(t, "Bia", f.pdf.report.GeneratedBy)
}

func TestExportPDF_ErrorDelGenerador(t *testing.T) {
	f := newFixture(t)
	f.pdf.err = errors.New("boom")
	_, _, err := f.uc.ExportPDF(context.Background(), f.store.Actor(apptest.UserAdmin), dto.EventQuery{})
	assert.Error(t, err)
}

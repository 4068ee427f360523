package visibility_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Agenda-api/internal/domain/access"
	"github.com/jhoicas/Agenda-api/internal/domain/entity"
	"github.com/jhoicas/Agenda-api/internal/domain/visibility"
)

func ptr(v int64) *int64 { return &v }

func ids(events []*entity.Event) []int64 {
	out := make([]int64, 0, len(events))
	for _, e := range events {
		out = append(out, e.ID)
	}
	return out
}

// Fixture: el usuario 7 del sector 2 está involucrado en 1..5 y no en 6..8.
func fixtureEvents() []*entity.Event {
	return []*entity.Event{
		{ID: 1, Type: entity.EventMeeting, SectorID: 9, CreatorID: ptr(7)},
		{ID: 2, Type: entity.EventActivity, SectorID: 2},
		{ID: 3, Type: entity.EventActivity, SectorID: 9, Assignees: []entity.Ref{entity.RefByObject(nil, nil, ptr(7))}},
		{ID: 4, Type: entity.EventMeeting, SectorID: 4, Participants: []entity.Ref{entity.RefByID(7)}},
		{ID: 5, Type: entity.EventDocument, SectorID: 9, Responsibles: []entity.Ref{entity.RefByObject(ptr(7), nil, nil)}},
		{ID: 6, Type: entity.EventExternalActivity, SectorID: 3},
		{ID: 7, Type: entity.EventDocument, SectorID: 4, CreatorID: ptr(8), Author: "Ana"},
		{ID: 8, Type: entity.EventMeeting, SectorID: 3, Participants: []entity.Ref{entity.RefByObject(ptr(8), ptr(7), nil)}},
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// IsInvolved
// ──────────────────────────────────────────────────────────────────────────────

func TestIsInvolved(t *testing.T) {
	u := &access.Actor{ID: 7, Name: "Ana", Role: entity.RoleCollaborator, SectorID: 2}
	want := map[int64]bool{1: true, 2: true, 3: true, 4: true, 5: true, 6: false, 7: false, 8: false}
	for _, e := range fixtureEvents() {
		assert.Equal(t, want[e.ID], visibility.IsInvolved(u, e), "evento %d", e.ID)
	}
}

func TestIsInvolved_AutorPorNombreSoloSinID(t *testing.T) {
	u := &access.Actor{ID: 7, Name: "João Silva", SectorID: 2}
	assert.True(t, visibility.IsInvolved(u, &entity.Event{SectorID: 5, Author: "joao silva"}))
	assert.False(t, visibility.IsInvolved(u, &entity.Event{SectorID: 5, Author: "João Silva", CreatorID: ptr(9)}),
		"el id del creador tiene prioridad sobre el nombre")
	assert.False(t, visibility.IsInvolved(nil, &entity.Event{}))
	assert.False(t, visibility.IsInvolved(u, nil))
}

// ──────────────────────────────────────────────────────────────────────────────
// VisibleEvents
// ──────────────────────────────────────────────────────────────────────────────

func TestVisibleEvents_CollaboratorNuncaVeNoInvolucrados(t *testing.T) {
	u := &access.Actor{ID: 7, Role: entity.RoleCollaborator, SectorID: 2}
	events := fixtureEvents()

	states := []visibility.FilterState{
		visibility.NewFilterState(),
		{ShowAll: true},
		{ShowAll: true, Tab: visibility.TabSector, Sector: ptr(3)},
		{Tab: visibility.TabCategory, Categories: []string{"reuniao", "documento"}},
		{Tab: "bogus", SubSectors: []int64{3, 4}},
	}
	for _, f := range states {
		for _, e := range visibility.VisibleEvents(u, events, f) {
			assert.True(t, visibility.IsInvolved(u, e), "evento %d con filtro %+v", e.ID, f)
		}
	}
}

// Escenario: ADMIN con ShowAll=false solo ve lo suyo; con ShowAll=true ve todo.
func TestVisibleEvents_AdminShowAll(t *testing.T) {
	admin := &access.Actor{ID: 7, Role: entity.RoleAdmin, SectorID: 2}
	events := fixtureEvents()

	f := visibility.NewFilterState()
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, ids(visibility.VisibleEvents(admin, events, f)))

	f.ShowAll = true
	assert.Equal(t, []int64{1, 2, 3, 4, 5, 6, 7, 8}, ids(visibility.VisibleEvents(admin, events, f)))
}

func TestVisibleEvents_ShowAllIgnoradoParaNoAdmin(t *testing.T) {
	mgr := &access.Actor{ID: 7, Role: entity.RoleManager, SectorID: 2}
	got := visibility.VisibleEvents(mgr, fixtureEvents(), visibility.FilterState{ShowAll: true})
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, ids(got))
}

func TestVisibleEvents_FiltroCategoriaPermisivo(t *testing.T) {
	admin := &access.Actor{ID: 1, Role: entity.RoleAdmin, SectorID: 1}
	f := visibility.FilterState{ShowAll: true}

	f.SelectCategories("documento")
	assert.Equal(t, []int64{5, 7}, ids(visibility.VisibleEvents(admin, fixtureEvents(), f)))

	// "ACTIVITY" está contenido en "EXTERNAL_ACTIVITY": la coincidencia es permisiva.
	f.SelectCategories("ATIVIDADE")
	assert.Equal(t, []int64{2, 3, 6}, ids(visibility.VisibleEvents(admin, fixtureEvents(), f)))

	f.SelectCategories("inexistente")
	assert.Empty(t, visibility.VisibleEvents(admin, fixtureEvents(), f))
}

func TestVisibleEvents_FiltroSector(t *testing.T) {
	admin := &access.Actor{ID: 1, Role: entity.RoleAdmin, SectorID: 1}
	f := visibility.FilterState{ShowAll: true}

	f.SelectSector(ptr(3))
	assert.Equal(t, []int64{6, 8}, ids(visibility.VisibleEvents(admin, fixtureEvents(), f)))

	f.SelectSubSectors(4, 2)
	assert.Equal(t, []int64{2, 4, 7}, ids(visibility.VisibleEvents(admin, fixtureEvents(), f)))

	f.SelectSubSectors()
	assert.Equal(t, []int64{6, 8}, ids(visibility.VisibleEvents(admin, fixtureEvents(), f)),
		"sin sub-sectores vuelve al sector de primer nivel")
}

func TestVisibleEvents_ActorNil(t *testing.T) {
	assert.Empty(t, visibility.VisibleEvents(nil, fixtureEvents(), visibility.FilterState{ShowAll: true}))
}

// ──────────────────────────────────────────────────────────────────────────────
// FilterState
// ──────────────────────────────────────────────────────────────────────────────

func TestFilterState_CambiarPestanaLimpiaLaOtra(t *testing.T) {
	f := visibility.NewFilterState()
	f.SelectSector(ptr(2))
	f.SelectSubSectors(4)
	require.Equal(t, visibility.TabSector, f.Tab)

	f.SelectTab(visibility.TabCategory)
	assert.Nil(t, f.Sector)
	assert.Empty(t, f.SubSectors)

	f.SelectCategories("reuniao")
	f.SelectTab(visibility.TabSector)
	assert.Empty(t, f.Categories)
}

func TestFilterState_CambiarSectorDescartaSubSectores(t *testing.T) {
	f := visibility.NewFilterState()
	f.SelectSector(ptr(2))
	f.SelectSubSectors(4)
	f.SelectSector(ptr(2))
	assert.Equal(t, []int64{4}, f.SubSectors)
	f.SelectSector(ptr(3))
	assert.Empty(t, f.SubSectors)
}

func TestFilterState_NormalizeMantieneInvariante(t *testing.T) {
	f := visibility.FilterState{Tab: visibility.TabSector, Categories: []string{"reuniao"}, Sector: ptr(1)}
	f.Normalize()
	assert.Empty(t, f.Categories)
	assert.NotNil(t, f.Sector)

	g := visibility.FilterState{Tab: "", Categories: []string{"reuniao"}, SubSectors: []int64{1}}
	g.Normalize()
	assert.Equal(t, visibility.TabCategory, g.Tab)
	assert.Empty(t, g.SubSectors)
	assert.Equal(t, []string{"reuniao"}, g.Categories)
}

func TestCanFilterBySector(t *testing.T) {
	assert.False(t, visibility.CanFilterBySector(&access.Actor{Role: entity.RoleCollaborator}))
	assert.True(t, visibility.CanFilterBySector(&access.Actor{Role: entity.RoleManager}))
	assert.True(t, visibility.CanFilterBySector(&access.Actor{Role: entity.RoleAdmin}))
	assert.False(t, visibility.CanFilterBySector(nil))
}

func TestForActor_CollaboratorForzadoACategorias(t *testing.T) {
	f := visibility.FilterState{Tab: visibility.TabSector, Sector: ptr(3), ShowAll: true}
	got := f.ForActor(&access.Actor{ID: 7, Role: entity.RoleCollaborator, SectorID: 2})
	assert.Equal(t, visibility.TabCategory, got.Tab)
	assert.Nil(t, got.Sector)
	assert.False(t, got.ShowAll)
	assert.Equal(t, visibility.TabSector, f.Tab, "el estado original no se modifica")
}

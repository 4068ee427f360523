package visibility

import (
	"strings"

	"github.com/jhoicas/Agenda-api/internal/domain/access"
	"github.com/jhoicas/Agenda-api/internal/domain/entity"
)

// Tab pestaña de filtrado activa.
type Tab string

// Pestañas disponibles.
const (
	TabCategory Tab = "category"
	TabSector   Tab = "sector"
)

// Category categoría seleccionable con sus alias de tipo.
type Category struct {
	ID      string
	Label   string
	Aliases []string
}

// Categories categorías ofrecidas en la pestaña "por categoría".
var Categories = []Category{
	{ID: "reuniao", Label: "Reunião", Aliases: []string{"MEETING", "REUNIAO"}},
	{ID: "atividade", Label: "Atividade", Aliases: []string{"ACTIVITY", "ATIVIDADE", "TAREFA"}},
	{ID: "atividade-externa", Label: "Atividade Externa", Aliases: []string{"EXTERNAL_ACTIVITY", "ATIVIDADE_EXTERNA"}},
	{ID: "documento", Label: "Documento", Aliases: []string{"DOCUMENT", "DOCUMENTO"}},
}

// CategoryByID busca una categoría sin distinguir mayúsculas.
func CategoryByID(id string) (Category, bool) {
	for _, c := range Categories {
		if strings.EqualFold(c.ID, id) {
			return c, true
		}
	}
	return Category{}, false
}

// FilterState selección del usuario en la vista de eventos.
// Invariante: como mucho uno de {Categories, Sector/SubSectors} es no vacío.
type FilterState struct {
	ShowAll    bool
	Tab        Tab
	Categories []string
	Sector     *int64
	SubSectors []int64
}

// NewFilterState estado inicial: pestaña de categorías sin selección.
func NewFilterState() FilterState {
	return FilterState{Tab: TabCategory}
}

// SelectTab cambia de pestaña limpiando la selección de la otra.
func (f *FilterState) SelectTab(t Tab) {
	if t != TabSector {
		t = TabCategory
	}
	f.Tab = t
	f.Normalize()
}

// SelectCategories activa la pestaña de categorías con la selección dada.
func (f *FilterState) SelectCategories(ids ...string) {
	f.SelectTab(TabCategory)
	f.Categories = append([]string(nil), ids...)
}

// SelectSector activa la pestaña de sectores con el sector de primer nivel.
// Cambiar de sector descarta los sub-sectores elegidos.
func (f *FilterState) SelectSector(id *int64) {
	f.SelectTab(TabSector)
	if !sameSector(f.Sector, id) {
		f.SubSectors = nil
	}
	f.Sector = id
}

// SelectSubSectors activa la pestaña de sectores con los sub-sectores dados.
func (f *FilterState) SelectSubSectors(ids ...int64) {
	f.SelectTab(TabSector)
	f.SubSectors = append([]int64(nil), ids...)
}

// Normalize restablece el invariante para estados construidos a mano (p. ej.
// desde query params): solo sobrevive la selección de la pestaña activa.
func (f *FilterState) Normalize() {
	switch f.Tab {
	case TabSector:
		f.Categories = nil
	default:
		f.Tab = TabCategory
		f.Sector = nil
		f.SubSectors = nil
	}
}

// ForActor adapta el estado al actor: solo ADMIN conserva ShowAll y los
// colaboradores quedan en la pestaña de categorías.
func (f FilterState) ForActor(a *access.Actor) FilterState {
	out := f
	out.Categories = append([]string(nil), f.Categories...)
	out.SubSectors = append([]int64(nil), f.SubSectors...)
	if a == nil || a.Role != entity.RoleAdmin {
		out.ShowAll = false
	}
	if !CanFilterBySector(a) {
		out.SelectTab(TabCategory)
	}
	out.Normalize()
	return out
}

// CanFilterBySector la pestaña de sectores no se ofrece a colaboradores.
func CanFilterBySector(a *access.Actor) bool {
	return a != nil && a.Role != entity.RoleCollaborator
}

// VisibleEvents eventos que el actor ve con el filtro dado.
//  1. Base: todos si es ADMIN con ShowAll; si no, solo aquellos en que está involucrado.
//  2. Pestaña categorías con selección: tipos que coinciden con algún alias.
//  3. Pestaña sectores: sub-sectores elegidos, o el sector de primer nivel.
func VisibleEvents(a *access.Actor, events []*entity.Event, f FilterState) []*entity.Event {
	if a == nil {
		return []*entity.Event{}
	}
	f = f.ForActor(a)
	out := make([]*entity.Event, 0, len(events))
	for _, e := range events {
		if e == nil {
			continue
		}
		if !(f.ShowAll && a.Role == entity.RoleAdmin) && !IsInvolved(a, e) {
			continue
		}
		if !matchesTab(e, f) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func matchesTab(e *entity.Event, f FilterState) bool {
	switch f.Tab {
	case TabSector:
		if len(f.SubSectors) > 0 {
			for _, id := range f.SubSectors {
				if e.SectorID == id {
					return true
				}
			}
			return false
		}
		if f.Sector != nil {
			return e.SectorID == *f.Sector
		}
		return true
	default:
		if len(f.Categories) == 0 {
			return true
		}
		return matchesCategories(e.Type, f.Categories)
	}
}

// matchesCategories coincidencia permisiva: igualdad o alias contenido en el tipo.
func matchesCategories(t entity.EventType, ids []string) bool {
	typ := strings.ToUpper(string(t))
	for _, id := range ids {
		cat, ok := CategoryByID(id)
		if !ok {
			continue
		}
		for _, alias := range cat.Aliases {
			a := strings.ToUpper(alias)
			if typ == a || strings.Contains(typ, a) {
				return true
			}
		}
	}
	return false
}

func sameSector(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

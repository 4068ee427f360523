package access

import (
	"sort"

	"github.com/jhoicas/Agenda-api/internal/domain/entity"
)

// SectorSet conjunto de ids de sector.
type SectorSet map[int64]struct{}

// NewSectorSet construye un conjunto con los ids dados.
func NewSectorSet(ids ...int64) SectorSet {
	s := make(SectorSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has informa si el id pertenece al conjunto.
func (s SectorSet) Has(id int64) bool {
	_, ok := s[id]
	return ok
}

// Sorted devuelve los ids en orden ascendente.
func (s SectorSet) Sorted() []int64 {
	out := make([]int64, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Hierarchy tabla padre → [sí mismo + descendientes].
type Hierarchy struct {
	descendants map[int64][]int64
	known       SectorSet
}

// NewHierarchy construye la jerarquía desde una tabla estática. Cada entrada se
// completa con el propio id si faltaba.
func NewHierarchy(table map[int64][]int64) *Hierarchy {
	h := &Hierarchy{descendants: make(map[int64][]int64, len(table)), known: SectorSet{}}
	for parent, ids := range table {
		set := NewSectorSet(ids...)
		set[parent] = struct{}{}
		h.descendants[parent] = set.Sorted()
		for id := range set {
			h.known[id] = struct{}{}
		}
	}
	return h
}

// HierarchyFromSectors deriva la jerarquía transitiva desde los enlaces ParentID.
// Un ciclo preexistente en los datos no provoca bucles: cada nodo se visita una vez.
func HierarchyFromSectors(sectors []*entity.Sector) *Hierarchy {
	children := make(map[int64][]int64, len(sectors))
	table := make(map[int64][]int64, len(sectors))
	for _, s := range sectors {
		if s == nil {
			continue
		}
		table[s.ID] = nil
		if s.ParentID != nil && *s.ParentID != s.ID {
			children[*s.ParentID] = append(children[*s.ParentID], s.ID)
		}
	}
	for id := range table {
		seen := NewSectorSet(id)
		stack := append([]int64(nil), children[id]...)
		for len(stack) > 0 {
			n := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if seen.Has(n) {
				continue
			}
			seen[n] = struct{}{}
			stack = append(stack, children[n]...)
		}
		table[id] = seen.Sorted()
	}
	return NewHierarchy(table)
}

// Descendants devuelve el sector y sus descendientes. Un sector desconocido
// se devuelve solo.
func (h *Hierarchy) Descendants(id int64) []int64 {
	if h != nil {
		if ids, ok := h.descendants[id]; ok {
			return append([]int64(nil), ids...)
		}
	}
	return []int64{id}
}

// All devuelve todos los sectores conocidos.
func (h *Hierarchy) All() SectorSet {
	out := SectorSet{}
	if h == nil {
		return out
	}
	for id := range h.known {
		out[id] = struct{}{}
	}
	return out
}

// WouldCreateCycle informa si asignar parentID como padre de sectorID cerraría
// un ciclo (incluye el caso sectorID == parentID).
func WouldCreateCycle(sectors []*entity.Sector, sectorID int64, parentID *int64) bool {
	if parentID == nil {
		return false
	}
	parentOf := make(map[int64]*int64, len(sectors))
	for _, s := range sectors {
		if s != nil {
			parentOf[s.ID] = s.ParentID
		}
	}
	seen := SectorSet{}
	cur := parentID
	for cur != nil {
		if *cur == sectorID {
			return true
		}
		if seen.Has(*cur) {
			return true
		}
		seen[*cur] = struct{}{}
		cur = parentOf[*cur]
	}
	return false
}

package dto

import (
	"time"

	"github.com/jhoicas/Agenda-api/internal/domain/entity"
)

// SectorRequest alta o reemplazo completo de un sector.
type SectorRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	ManagerID   *int64 `json:"managerId"`
	ParentID    *int64 `json:"parentId"`
}

// SectorResponse sector con sus conteos derivados.
type SectorResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	ManagerID   *int64    `json:"managerId"`
	ParentID    *int64    `json:"parentId"`
	Users       int       `json:"users"`
	SubSectors  int       `json:"subSectors"`
	Events      int       `json:"events"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// SectorDetailResponse ficha del sector: gerente, miembros, hijos directos y alcance.
type SectorDetailResponse struct {
	SectorResponse
	Manager    *UserResponse    `json:"manager,omitempty"`
	Members    []UserResponse   `json:"members"`
	Children   []SectorResponse `json:"children"`
	Accessible []int64          `json:"accessible"`
}

// AccessibleSectorsResponse ids alcanzables desde un sector.
type AccessibleSectorsResponse struct {
	SectorID   int64   `json:"sectorId"`
	Accessible []int64 `json:"accessible"`
}

// NewSectorResponse convierte la entidad en DTO.
func NewSectorResponse(s *entity.Sector) SectorResponse {
	return SectorResponse{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
		ManagerID:   s.ManagerID,
		ParentID:    s.ParentID,
		Users:       s.Users,
		SubSectors:  s.SubSectors,
		Events:      s.Events,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

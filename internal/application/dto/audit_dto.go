package dto

import (
	"time"

	"github.com/jhoicas/Agenda-api/internal/domain/entity"
)

// AuditEntryResponse una entrada de la bitácora.
type AuditEntryResponse struct {
	ID        int64     `json:"id"`
	ActorID   *int64    `json:"actorId"`
	Action    string    `json:"action"`
	Entity    string    `json:"entity"`
	EntityID  *int64    `json:"entityId"`
	Detail    string    `json:"detail"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewAuditEntryResponse convierte la entidad en DTO.
func NewAuditEntryResponse(a *entity.AuditEntry) AuditEntryResponse {
	return AuditEntryResponse{
		ID:        a.ID,
		ActorID:   a.ActorID,
		Action:    a.Action,
		Entity:    a.Entity,
		EntityID:  a.EntityID,
		Detail:    a.Detail,
		CreatedAt: a.CreatedAt,
	}
}

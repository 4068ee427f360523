package usecase

import (
	"fmt"

	"github.com/jhoicas/Agenda-api/internal/domain"
	"github.com/jhoicas/Agenda-api/internal/domain/access"
	"github.com/jhoicas/Agenda-api/internal/domain/entity"
	"github.com/jhoicas/Agenda-api/pkg/logger"
)

// auditOf arma una entrada de bitácora para una entidad.
func auditOf(actor *access.Actor, action, kind string, id int64, detail string) *entity.AuditEntry {
	entry := &entity.AuditEntry{Action: action, Entity: kind, Detail: detail}
	if actor != nil {
		actorID := actor.ID
		entry.ActorID = &actorID
	}
	if id != 0 {
		entry.EntityID = &id
	}
	return entry
}

// denied registra la denegación y devuelve ErrForbidden (ErrUnauthorized sin actor).
func denied(log *logger.Logger, actor *access.Actor, op, kind string, target int64) error {
	if actor == nil {
		return domain.ErrUnauthorized
	}
	log.Warn().
		Int64("actor_id", actor.ID).
		Str("role", string(actor.Role)).
		Str("op", op).
		Str("entity", kind).
		Int64("target_id", target).
		Msg("acceso denegado")
	return fmt.Errorf("%s: %w", op, domain.ErrForbidden)
}

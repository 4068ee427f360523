package repository

import (
	"context"

	"github.com/jhoicas/Agenda-api/internal/domain/entity"
)

// AuditRepository bitácora de acciones (solo inserción y lectura).
type AuditRepository interface {
	Log(ctx context.Context, entry *entity.AuditEntry) error
	List(ctx context.Context, limit, offset int) ([]*entity.AuditEntry, error)
}

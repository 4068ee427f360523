package usecase

import (
	"context"
	"fmt"

	"github.com/jhoicas/Agenda-api/internal/application/dto"
	"github.com/jhoicas/Agenda-api/internal/domain/access"
	"github.com/jhoicas/Agenda-api/internal/domain/repository"
	"github.com/jhoicas/Agenda-api/pkg/logger"
)

// AuditUseCase lectura de la bitácora (view_logs).
type AuditUseCase struct {
	repo repository.AuditRepository
	log  *logger.Logger
}

// NewAuditUseCase construye el caso de uso.
func NewAuditUseCase(repo repository.AuditRepository, log *logger.Logger) *AuditUseCase {
	return &AuditUseCase{repo: repo, log: log.Component("audit")}
}

// List devuelve las entradas más recientes.
func (uc *AuditUseCase) List(ctx context.Context, actor *access.Actor, page dto.PageRequest) ([]dto.AuditEntryResponse, error) {
	if !access.HasPermission(actor, access.ViewLogs) {
		return nil, denied(uc.log, actor, "ver bitácora", "audit", 0)
	}
	page.DefaultPage()
	entries, err := uc.repo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("bitácora: %w", err)
	}
	out := make([]dto.AuditEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.NewAuditEntryResponse(e))
	}
	return out, nil
}

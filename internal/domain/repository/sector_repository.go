package repository

import (
	"context"

	"github.com/jhoicas/Agenda-api/internal/domain/entity"
)

// SectorRepository define el puerto de persistencia para Sector (DIP).
// Los conteos derivados (Users, SubSectors, Events) se rellenan al leer.
type SectorRepository interface {
	Create(ctx context.Context, sector *entity.Sector) error
	GetByID(ctx context.Context, id int64) (*entity.Sector, error)
	Update(ctx context.Context, sector *entity.Sector) error
	List(ctx context.Context) ([]*entity.Sector, error)
	Delete(ctx context.Context, id int64) error
}

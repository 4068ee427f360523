package repository

import (
	"context"

	"github.com/jhoicas/Agenda-api/internal/domain/entity"
)

// UserFilter restricciones de listado. SectorIDs vacío significa sin restricción.
type UserFilter struct {
	SectorIDs []int64
	Limit     int
	Offset    int
}

// UserRepository define el puerto de persistencia para User (DIP).
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	UpdateLastLogin(ctx context.Context, id int64) error
	List(ctx context.Context, f UserFilter) ([]*entity.User, error)
	Delete(ctx context.Context, id int64) error
}

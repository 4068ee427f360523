package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Agenda-api/internal/domain/entity"
)

// EventFilter restricciones de listado en la consulta. From/To cero no restringen.
type EventFilter struct {
	Types []entity.EventType
	From  time.Time
	To    time.Time
}

// EventRepository define el puerto de persistencia para Event (DIP).
type EventRepository interface {
	Create(ctx context.Context, event *entity.Event) error
	GetByID(ctx context.Context, id int64) (*entity.Event, error)
	Update(ctx context.Context, event *entity.Event) error
	UpdateStatus(ctx context.Context, id int64, status entity.Status, details entity.EventDetails) error
	List(ctx context.Context, f EventFilter) ([]*entity.Event, error)
	Delete(ctx context.Context, id int64) error
}

package repository

import "context"

// Repos agrupa los puertos atados a una misma transacción.
type Repos struct {
	Users   UserRepository
	Sectors SectorRepository
	Events  EventRepository
	Audit   AuditRepository
}

// TxRunner ejecuta fn dentro de una transacción; si fn devuelve error se hace rollback.
type TxRunner interface {
	Run(ctx context.Context, fn func(r Repos) error) error
}

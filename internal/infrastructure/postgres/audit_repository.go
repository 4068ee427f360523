package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Agenda-api/internal/domain/entity"
	"github.com/jhoicas/Agenda-api/internal/domain/repository"
)

var _ repository.AuditRepository = (*AuditRepo)(nil)

// AuditRepo bitácora sobre la tabla audit_log.
type AuditRepo struct {
	db *DB
}

// NewAuditRepository construye el adaptador de bitácora.
func NewAuditRepository(db *DB) *AuditRepo {
	return &AuditRepo{db: db}
}

// Log inserta una entrada.
func (r *AuditRepo) Log(ctx context.Context, entry *entity.AuditEntry) error {
	query := `
		INSERT INTO audit_log (actor_id, action, entity, entity_id, detail)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`
	err := r.db.doWrite(ctx, "insert audit", func(ctx context.Context, q Querier) error {
		return q.QueryRow(ctx, query, entry.ActorID, entry.Action, entry.Entity, entry.EntityID, entry.Detail).
			Scan(&entry.ID, &entry.CreatedAt)
	})
	if err != nil {
		return fmt.Errorf("insert audit: %w", err)
	}
	return nil
}

// List devuelve las entradas más recientes primero.
func (r *AuditRepo) List(ctx context.Context, limit, offset int) ([]*entity.AuditEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, actor_id, action, entity, entity_id, detail, created_at
		FROM audit_log ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`
	var list []*entity.AuditEntry
	err := r.db.do(ctx, "list audit", func(ctx context.Context, q Querier) error {
		list = nil
		rows, err := q.Query(ctx, query, limit, offset)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var a entity.AuditEntry
			if err := rows.Scan(&a.ID, &a.ActorID, &a.Action, &a.Entity, &a.EntityID, &a.Detail, &a.CreatedAt); err != nil {
				return fmt.Errorf("scan audit: %w", err)
			}
			list = append(list, &a)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("list audit: %w", err)
	}
	return list, nil
}

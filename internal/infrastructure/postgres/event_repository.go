package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Agenda-api/internal/domain"
	"github.com/jhoicas/Agenda-api/internal/domain/entity"
	"github.com/jhoicas/Agenda-api/internal/domain/repository"
)

var _ repository.EventRepository = (*EventRepo)(nil)

const eventSelect = `
		SELECT e.id, e.type, e.title, e.description, e.start_date, e.end_date, e.sector_id,
		       COALESCE(s.name, ''), e.creator_id, e.author, e.status,
		       e.participants, e.assignees, e.responsibles, e.details, e.created_at, e.updated_at
		FROM events e LEFT JOIN sectors s ON s.id = e.sector_id`

// EventRepo implementación del puerto EventRepository sobre PostgreSQL.
// Las referencias se guardan ya resueltas como arrays JSONB de ids.
type EventRepo struct {
	db *DB
}

// NewEventRepository construye el adaptador de persistencia para eventos.
func NewEventRepository(db *DB) *EventRepo {
	return &EventRepo{db: db}
}

// eventRow columnas JSONB serializadas para escritura.
type eventRow struct {
	participants, assignees, responsibles, details []byte
}

func encodeEvent(e *entity.Event) (eventRow, error) {
	var row eventRow
	var err error
	if row.participants, err = toJSONB(entity.ResolveRefs(e.Participants), "[]"); err != nil {
		return row, err
	}
	if row.assignees, err = toJSONB(entity.ResolveRefs(e.Assignees), "[]"); err != nil {
		return row, err
	}
	if row.responsibles, err = toJSONB(entity.ResolveRefs(e.Responsibles), "[]"); err != nil {
		return row, err
	}
	row.details, err = toJSONB(e.Details, "{}")
	return row, err
}

func refsFromIDs(raw []byte) ([]entity.Ref, error) {
	var ids []int64
	if err := fromJSONB(raw, &ids); err != nil {
		return nil, err
	}
	refs := make([]entity.Ref, 0, len(ids))
	for _, id := range ids {
		refs = append(refs, entity.RefByID(id))
	}
	return refs, nil
}

func scanEvent(row scanner) (*entity.Event, error) {
	var e entity.Event
	var typ, status string
	var end *time.Time
	var participants, assignees, responsibles, details []byte
	if err := row.Scan(
		&e.ID, &typ, &e.Title, &e.Description, &e.StartDate, &end, &e.SectorID,
		&e.SectorName, &e.CreatorID, &e.Author, &status,
		&participants, &assignees, &responsibles, &details, &e.CreatedAt, &e.UpdatedAt,
	); err != nil {
		return nil, err
	}
	e.Type = entity.EventType(typ)
	e.Status = entity.Status(status)
	if end != nil {
		e.EndDate = *end
	}
	var err error
	if e.Participants, err = refsFromIDs(participants); err != nil {
		return nil, fmt.Errorf("participants: %w", err)
	}
	if e.Assignees, err = refsFromIDs(assignees); err != nil {
		return nil, fmt.Errorf("assignees: %w", err)
	}
	if e.Responsibles, err = refsFromIDs(responsibles); err != nil {
		return nil, fmt.Errorf("responsibles: %w", err)
	}
	if err := fromJSONB(details, &e.Details); err != nil {
		return nil, fmt.Errorf("details: %w", err)
	}
	return &e, nil
}

// Create persiste un evento nuevo.
func (r *EventRepo) Create(ctx context.Context, e *entity.Event) error {
	row, err := encodeEvent(e)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	query := `
		INSERT INTO events (type, title, description, start_date, end_date, sector_id, creator_id, author,
		                    status, participants, assignees, responsibles, details)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at, updated_at`
	err = r.db.doWrite(ctx, "insert event", func(ctx context.Context, q Querier) error {
		return q.QueryRow(ctx, query,
			string(e.Type), e.Title, e.Description, e.StartDate, nullTime(e.EndDate), e.SectorID, e.CreatorID,
			e.Author, string(e.Status), row.participants, row.assignees, row.responsibles, row.details,
		).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	})
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("insert event: sector o creador inexistente: %w", domain.ErrInvalidInput)
		}
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// GetByID obtiene un evento. Devuelve (nil, nil) si no existe.
func (r *EventRepo) GetByID(ctx context.Context, id int64) (*entity.Event, error) {
	var e *entity.Event
	err := r.db.do(ctx, "get event", func(ctx context.Context, q Querier) error {
		var err error
		e, err = scanEvent(q.QueryRow(ctx, eventSelect+` WHERE e.id = $1`, id))
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return e, nil
}

// Update reemplaza los campos editables del evento. El creador no cambia.
func (r *EventRepo) Update(ctx context.Context, e *entity.Event) error {
	row, err := encodeEvent(e)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	query := `
		UPDATE events SET title = $2, description = $3, start_date = $4, end_date = $5, sector_id = $6,
		       status = $7, participants = $8, assignees = $9, responsibles = $10, details = $11,
		       updated_at = now()
		WHERE id = $1
		RETURNING updated_at`
	err = r.db.do(ctx, "update event", func(ctx context.Context, q Querier) error {
		return q.QueryRow(ctx, query,
			e.ID, e.Title, e.Description, e.StartDate, nullTime(e.EndDate), e.SectorID,
			string(e.Status), row.participants, row.assignees, row.responsibles, row.details,
		).Scan(&e.UpdatedAt)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("update event: sector inexistente: %w", domain.ErrInvalidInput)
		}
		return fmt.Errorf("update event: %w", err)
	}
	return nil
}

// UpdateStatus cambia solo el estado y los detalles (p. ej. fecha de finalización).
func (r *EventRepo) UpdateStatus(ctx context.Context, id int64, status entity.Status, details entity.EventDetails) error {
	raw, err := toJSONB(details, "{}")
	if err != nil {
		return fmt.Errorf("encode details: %w", err)
	}
	var affected int64
	err = r.db.do(ctx, "update event status", func(ctx context.Context, q Querier) error {
		tag, err := q.Exec(ctx,
			`UPDATE events SET status = $2, details = $3, updated_at = now() WHERE id = $1`,
			id, string(status), raw)
		affected = tag.RowsAffected()
		return err
	})
	if err != nil {
		return fmt.Errorf("update event status: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List devuelve eventos ordenados por inicio. La ventana From/To selecciona eventos que la intersectan.
func (r *EventRepo) List(ctx context.Context, f repository.EventFilter) ([]*entity.Event, error) {
	query := eventSelect + ` WHERE TRUE`
	args := []any{}
	if len(f.Types) > 0 {
		types := make([]string, 0, len(f.Types))
		for _, t := range f.Types {
			types = append(types, string(t))
		}
		args = append(args, types)
		query += fmt.Sprintf(` AND e.type = ANY($%d)`, len(args))
	}
	if !f.From.IsZero() {
		args = append(args, f.From)
		query += fmt.Sprintf(` AND COALESCE(e.end_date, e.start_date) >= $%d`, len(args))
	}
	if !f.To.IsZero() {
		args = append(args, f.To)
		query += fmt.Sprintf(` AND e.start_date <= $%d`, len(args))
	}
	query += ` ORDER BY e.start_date, e.id`

	var list []*entity.Event
	err := r.db.do(ctx, "list events", func(ctx context.Context, q Querier) error {
		list = nil
		rows, err := q.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			e, err := scanEvent(rows)
			if err != nil {
				return fmt.Errorf("scan event: %w", err)
			}
			list = append(list, e)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return list, nil
}

// Delete elimina un evento por ID.
func (r *EventRepo) Delete(ctx context.Context, id int64) error {
	var affected int64
	err := r.db.doWrite(ctx, "delete event", func(ctx context.Context, q Querier) error {
		tag, err := q.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
		affected = tag.RowsAffected()
		return err
	})
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

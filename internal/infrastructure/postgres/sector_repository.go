package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Agenda-api/internal/domain"
	"github.com/jhoicas/Agenda-api/internal/domain/entity"
	"github.com/jhoicas/Agenda-api/internal/domain/repository"
)

var _ repository.SectorRepository = (*SectorRepo)(nil)

const sectorSelect = `
		SELECT s.id, s.name, s.description, s.manager_id, s.parent_id, s.created_at, s.updated_at,
		       (SELECT count(*) FROM users u WHERE u.sector_id = s.id),
		       (SELECT count(*) FROM sectors c WHERE c.parent_id = s.id),
		       (SELECT count(*) FROM events e WHERE e.sector_id = s.id)
		FROM sectors s`

// SectorRepo implementación del puerto SectorRepository sobre PostgreSQL.
type SectorRepo struct {
	db *DB
}

// NewSectorRepository construye el adaptador de persistencia para sectores.
func NewSectorRepository(db *DB) *SectorRepo {
	return &SectorRepo{db: db}
}

func scanSector(row scanner) (*entity.Sector, error) {
	var s entity.Sector
	if err := row.Scan(
		&s.ID, &s.Name, &s.Description, &s.ManagerID, &s.ParentID, &s.CreatedAt, &s.UpdatedAt,
		&s.Users, &s.SubSectors, &s.Events,
	); err != nil {
		return nil, err
	}
	return &s, nil
}

// Create persiste un sector nuevo.
func (r *SectorRepo) Create(ctx context.Context, sector *entity.Sector) error {
	query := `
		INSERT INTO sectors (name, description, manager_id, parent_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`
	err := r.db.doWrite(ctx, "insert sector", func(ctx context.Context, q Querier) error {
		return q.QueryRow(ctx, query, sector.Name, sector.Description, sector.ManagerID, sector.ParentID).
			Scan(&sector.ID, &sector.CreatedAt, &sector.UpdatedAt)
	})
	if err != nil {
		return mapSectorWriteErr("insert sector", err)
	}
	return nil
}

// GetByID obtiene un sector con sus conteos. Devuelve (nil, nil) si no existe.
func (r *SectorRepo) GetByID(ctx context.Context, id int64) (*entity.Sector, error) {
	var s *entity.Sector
	err := r.db.do(ctx, "get sector", func(ctx context.Context, q Querier) error {
		var err error
		s, err = scanSector(q.QueryRow(ctx, sectorSelect+` WHERE s.id = $1`, id))
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sector: %w", err)
	}
	return s, nil
}

// Update actualiza nombre, descripción, gerente y padre.
func (r *SectorRepo) Update(ctx context.Context, sector *entity.Sector) error {
	query := `
		UPDATE sectors SET name = $2, description = $3, manager_id = $4, parent_id = $5, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`
	err := r.db.do(ctx, "update sector", func(ctx context.Context, q Querier) error {
		return q.QueryRow(ctx, query, sector.ID, sector.Name, sector.Description, sector.ManagerID, sector.ParentID).
			Scan(&sector.UpdatedAt)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		return mapSectorWriteErr("update sector", err)
	}
	return nil
}

// List devuelve todos los sectores ordenados por nombre.
func (r *SectorRepo) List(ctx context.Context) ([]*entity.Sector, error) {
	var list []*entity.Sector
	err := r.db.do(ctx, "list sectors", func(ctx context.Context, q Querier) error {
		list = nil
		rows, err := q.Query(ctx, sectorSelect+` ORDER BY s.name, s.id`)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			s, err := scanSector(rows)
			if err != nil {
				return fmt.Errorf("scan sector: %w", err)
			}
			list = append(list, s)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("list sectors: %w", err)
	}
	return list, nil
}

// Delete elimina un sector; falla con ErrConflict si aún tiene usuarios, hijos o eventos.
func (r *SectorRepo) Delete(ctx context.Context, id int64) error {
	var affected int64
	err := r.db.doWrite(ctx, "delete sector", func(ctx context.Context, q Querier) error {
		tag, err := q.Exec(ctx, `DELETE FROM sectors WHERE id = $1`, id)
		affected = tag.RowsAffected()
		return err
	})
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("delete sector: %w", domain.ErrConflict)
		}
		return fmt.Errorf("delete sector: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func mapSectorWriteErr(op string, err error) error {
	switch {
	case isUniqueViolation(err):
		return fmt.Errorf("%s: nombre duplicado: %w", op, domain.ErrConflict)
	case isForeignKeyViolation(err):
		return fmt.Errorf("%s: gerente o sector padre inexistente: %w", op, domain.ErrInvalidInput)
	}
	return fmt.Errorf("%s: %w", op, err)
}

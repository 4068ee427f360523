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

var _ repository.UserRepository = (*UserRepo)(nil)

// scanner es lo común entre pgx.Row y pgx.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const userSelect = `
		SELECT u.id, u.email, u.name, u.password_hash, u.role, u.sector_id, COALESCE(s.name, ''),
		       u.is_active, u.last_login, u.created_at, u.updated_at
		FROM users u LEFT JOIN sectors s ON s.id = u.sector_id`

// UserRepo implementación del puerto UserRepository sobre PostgreSQL.
type UserRepo struct {
	db *DB
}

// NewUserRepository construye el adaptador de persistencia para usuarios.
func NewUserRepository(db *DB) *UserRepo {
	return &UserRepo{db: db}
}

func scanUser(row scanner) (*entity.User, error) {
	var u entity.User
	var role string
	if err := row.Scan(
		&u.ID, &u.Email, &u.Name, &u.PasswordHash, &role, &u.SectorID, &u.SectorName,
		&u.IsActive, &u.LastLogin, &u.CreatedAt, &u.UpdatedAt,
	); err != nil {
		return nil, err
	}
	u.Role = entity.Role(role)
	return &u, nil
}

// Create persiste un nuevo usuario y completa ID y fechas.
func (r *UserRepo) Create(ctx context.Context, user *entity.User) error {
	query := `
		INSERT INTO users (email, name, password_hash, role, sector_id, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`
	err := r.db.doWrite(ctx, "insert user", func(ctx context.Context, q Querier) error {
		return q.QueryRow(ctx, query,
			user.Email, user.Name, user.PasswordHash, string(user.Role), user.SectorID, user.IsActive,
		).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	})
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailAlreadyExists
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("sector %d: %w", user.SectorID, domain.ErrInvalidInput)
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByID obtiene un usuario por ID. Devuelve (nil, nil) si no existe.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	return r.getOne(ctx, "get user by id", userSelect+` WHERE u.id = $1`, id)
}

// GetByEmail obtiene un usuario por email sin distinguir mayúsculas.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.getOne(ctx, "get user by email", userSelect+` WHERE lower(u.email) = lower($1) LIMIT 1`, email)
}

func (r *UserRepo) getOne(ctx context.Context, op, query string, arg any) (*entity.User, error) {
	var u *entity.User
	err := r.db.do(ctx, op, func(ctx context.Context, q Querier) error {
		var err error
		u, err = scanUser(q.QueryRow(ctx, query, arg))
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// Update actualiza datos editables del usuario (incluido el hash de contraseña).
func (r *UserRepo) Update(ctx context.Context, user *entity.User) error {
	query := `
		UPDATE users SET email = $2, name = $3, password_hash = $4, role = $5, sector_id = $6,
		       is_active = $7, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`
	err := r.db.do(ctx, "update user", func(ctx context.Context, q Querier) error {
		return q.QueryRow(ctx, query,
			user.ID, user.Email, user.Name, user.PasswordHash, string(user.Role), user.SectorID, user.IsActive,
		).Scan(&user.UpdatedAt)
	})
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return domain.ErrUserNotFound
		case isUniqueViolation(err):
			return domain.ErrEmailAlreadyExists
		case isForeignKeyViolation(err):
			return fmt.Errorf("sector %d: %w", user.SectorID, domain.ErrInvalidInput)
		}
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

// UpdateLastLogin registra el instante del último login.
func (r *UserRepo) UpdateLastLogin(ctx context.Context, id int64) error {
	err := r.db.do(ctx, "update last login", func(ctx context.Context, q Querier) error {
		_, err := q.Exec(ctx, `UPDATE users SET last_login = now() WHERE id = $1`, id)
		return err
	})
	if err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}

// List lista usuarios ordenados por nombre; SectorIDs restringe a esos sectores.
func (r *UserRepo) List(ctx context.Context, f repository.UserFilter) ([]*entity.User, error) {
	query := userSelect
	args := []any{}
	if len(f.SectorIDs) > 0 {
		args = append(args, f.SectorIDs)
		query += ` WHERE u.sector_id = ANY($1)`
	}
	query += ` ORDER BY u.name, u.id`
	if f.Limit > 0 {
		args = append(args, f.Limit, f.Offset)
		query += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)-1, len(args))
	}

	var list []*entity.User
	err := r.db.do(ctx, "list users", func(ctx context.Context, q Querier) error {
		list = nil
		rows, err := q.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			u, err := scanUser(rows)
			if err != nil {
				return fmt.Errorf("scan user: %w", err)
			}
			list = append(list, u)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return list, nil
}

// Delete elimina un usuario por ID.
func (r *UserRepo) Delete(ctx context.Context, id int64) error {
	var affected int64
	err := r.db.doWrite(ctx, "delete user", func(ctx context.Context, q Querier) error {
		tag, err := q.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
		affected = tag.RowsAffected()
		return err
	})
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("delete user: %w", domain.ErrConflict)
		}
		return fmt.Errorf("delete user: %w", err)
	}
	if affected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

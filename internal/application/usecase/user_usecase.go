package usecase

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"github.com/jhoicas/Agenda-api/internal/application/dto"
	"github.com/jhoicas/Agenda-api/internal/application/policy"
	"github.com/jhoicas/Agenda-api/internal/domain"
	"github.com/jhoicas/Agenda-api/internal/domain/access"
	"github.com/jhoicas/Agenda-api/internal/domain/entity"
	"github.com/jhoicas/Agenda-api/internal/domain/repository"
	"github.com/jhoicas/Agenda-api/pkg/logger"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLen = 8

// UserUseCase aplica reglas de negocio y de acceso para usuarios.
type UserUseCase struct {
	repo   repository.UserRepository
	tx     repository.TxRunner
	policy *policy.Provider
	log    *logger.Logger
	cost   int
}

// NewUserUseCase construye el caso de uso con el puerto de persistencia.
func NewUserUseCase(repo repository.UserRepository, tx repository.TxRunner, provider *policy.Provider, log *logger.Logger) *UserUseCase {
	return &UserUseCase{repo: repo, tx: tx, policy: provider, log: log.Component("users"), cost: bcrypt.DefaultCost}
}

// WithBcryptCost ajusta el coste de bcrypt (tests).
func (uc *UserUseCase) WithBcryptCost(cost int) *UserUseCase {
	uc.cost = cost
	return uc
}

// List lista usuarios según alcance: view_all_users ve todos, MANAGER su subárbol,
// el resto solo su propio perfil.
func (uc *UserUseCase) List(ctx context.Context, actor *access.Actor, page dto.PageRequest) (*dto.UserListResponse, error) {
	if actor == nil {
		return nil, domain.ErrUnauthorized
	}
	page.DefaultPage()
	filter := repository.UserFilter{Limit: page.Limit, Offset: page.Offset}

	switch {
	case access.HasPermission(actor, access.ViewAllUsers):
	case actor.Role == entity.RoleManager:
		snap, err := uc.policy.Load(ctx)
		if err != nil {
			return nil, err
		}
		filter.SectorIDs = snap.Evaluator.AccessibleSectors(actor).Sorted()
	default:
		self, err := uc.repo.GetByID(ctx, actor.ID)
		if err != nil {
			return nil, fmt.Errorf("listar usuarios: %w", err)
		}
		items := []dto.UserResponse{}
		if self != nil && page.Offset == 0 {
			items = append(items, dto.NewUserResponse(self))
		}
		return &dto.UserListResponse{Items: items, Page: dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: len(items)}}, nil
	}

	users, err := uc.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listar usuarios: %w", err)
	}
	items := make([]dto.UserResponse, 0, len(users))
	for _, u := range users {
		items = append(items, dto.NewUserResponse(u))
	}
	return &dto.UserListResponse{Items: items, Page: dto.PageResponse{Limit: page.Limit, Offset: page.Offset}}, nil
}

// Get obtiene un usuario si el actor puede verlo.
func (uc *UserUseCase) Get(ctx context.Context, actor *access.Actor, id int64) (*dto.UserResponse, error) {
	user, snap, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !snap.Evaluator.CanViewUser(actor, access.UserTarget{ID: user.ID, SectorID: user.SectorID}) {
		return nil, uc.deny(actor, "ver usuario", id)
	}
	out := dto.NewUserResponse(user)
	return &out, nil
}

// Create crea un usuario: create_user, alcance sobre el sector destino y rol asignable.
func (uc *UserUseCase) Create(ctx context.Context, actor *access.Actor, in dto.CreateUserRequest) (*dto.UserResponse, error) {
	email := strings.TrimSpace(in.Email)
	name := strings.TrimSpace(in.Name)
	role := entity.Role(strings.ToUpper(strings.TrimSpace(in.Role)))
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if len(in.Password) < minPasswordLen {
		return nil, fmt.Errorf("%w: password debe tener al menos %d caracteres", domain.ErrInvalidInput, minPasswordLen)
	}
	if name == "" {
		name = email
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: rol desconocido %q", domain.ErrInvalidInput, in.Role)
	}

	snap, err := uc.policy.Load(ctx)
	if err != nil {
		return nil, err
	}
	if snap.Sector(in.SectorID) == nil {
		return nil, fmt.Errorf("%w: sector %d no existe", domain.ErrInvalidInput, in.SectorID)
	}
	ev := snap.Evaluator
	if !access.HasPermission(actor, access.CreateUser) ||
		!ev.CanManageUser(actor, access.UserTarget{SectorID: in.SectorID}) ||
		!ev.CanAssignRole(actor, role) {
		return nil, uc.deny(actor, "crear usuario", 0)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), uc.cost)
	if err != nil {
		return nil, err
	}
	user := &entity.User{
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		Role:         role,
		SectorID:     in.SectorID,
		IsActive:     true,
	}
	err = uc.tx.Run(ctx, func(r repository.Repos) error {
		if err := r.Users.Create(ctx, user); err != nil {
			return err
		}
		return r.Audit.Log(ctx, auditOf(actor, entity.AuditCreateUser, "user", user.ID, user.Email))
	})
	if err != nil {
		return nil, err
	}
	user.SectorName = snap.Sector(user.SectorID).Name
	out := dto.NewUserResponse(user)
	return &out, nil
}

// Update actualización parcial. El rol actual del destino y el nuevo deben ser
// asignables por el actor; cambios de sector exigen alcance sobre el destino. La
// contraseña ajena solo la cambia quien tiene reset_passwords.
func (uc *UserUseCase) Update(ctx context.Context, actor *access.Actor, id int64, in dto.UpdateUserRequest) (*dto.UserResponse, error) {
	user, snap, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	ev := snap.Evaluator
	if !ev.CanEditUser(actor, &id) || !ev.CanManageUser(actor, access.UserTarget{ID: user.ID, SectorID: user.SectorID}) {
		return nil, uc.deny(actor, "editar usuario", id)
	}
	if !outranks(ev, actor, user) {
		return nil, uc.deny(actor, "editar usuario de rol superior", id)
	}

	if in.Email != nil {
		email := strings.TrimSpace(*in.Email)
		if err := validateEmail(email); err != nil {
			return nil, err
		}
		user.Email = email
	}
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, fmt.Errorf("%w: nombre vacío", domain.ErrInvalidInput)
		}
		user.Name = strings.TrimSpace(*in.Name)
	}
	if in.Role != nil {
		role := entity.Role(strings.ToUpper(strings.TrimSpace(*in.Role)))
		if !role.Valid() {
			return nil, fmt.Errorf("%w: rol desconocido %q", domain.ErrInvalidInput, *in.Role)
		}
		if role != user.Role && !ev.CanAssignRole(actor, role) {
			return nil, uc.deny(actor, "asignar rol", id)
		}
		user.Role = role
	}
	if in.SectorID != nil && *in.SectorID != user.SectorID {
		target := snap.Sector(*in.SectorID)
		if target == nil {
			return nil, fmt.Errorf("%w: sector %d no existe", domain.ErrInvalidInput, *in.SectorID)
		}
		if !ev.CanManageUser(actor, access.UserTarget{ID: user.ID, SectorID: target.ID}) {
			return nil, uc.deny(actor, "mover usuario de sector", id)
		}
		user.SectorID = target.ID
		user.SectorName = target.Name
	}
	if in.IsActive != nil {
		if actor.ID == id && !*in.IsActive {
			return nil, fmt.Errorf("%w: no puede desactivarse a sí mismo", domain.ErrInvalidInput)
		}
		user.IsActive = *in.IsActive
	}
	if in.Password != nil {
		if actor.ID != id && !access.HasPermission(actor, access.ResetPasswords) {
			return nil, uc.deny(actor, "cambiar contraseña ajena", id)
		}
		if len(*in.Password) < minPasswordLen {
			return nil, fmt.Errorf("%w: password debe tener al menos %d caracteres", domain.ErrInvalidInput, minPasswordLen)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), uc.cost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = string(hash)
	}

	err = uc.tx.Run(ctx, func(r repository.Repos) error {
		if err := r.Users.Update(ctx, user); err != nil {
			return err
		}
		return r.Audit.Log(ctx, auditOf(actor, entity.AuditUpdateUser, "user", user.ID, user.Email))
	})
	if err != nil {
		return nil, err
	}
	out := dto.NewUserResponse(user)
	return &out, nil
}

// outranks exige que el rol actual del destino sea asignable por el actor; sobre
// sí mismo no aplica.
func outranks(ev *access.Evaluator, actor *access.Actor, target *entity.User) bool {
	return actor.ID == target.ID || ev.CanAssignRole(actor, target.Role)
}

// Delete elimina un usuario: delete_user y alcance. Nadie se elimina a sí mismo.
func (uc *UserUseCase) Delete(ctx context.Context, actor *access.Actor, id int64) error {
	user, snap, err := uc.load(ctx, id)
	if err != nil {
		return err
	}
	if !access.HasPermission(actor, access.DeleteUser) ||
		!snap.Evaluator.CanManageUser(actor, access.UserTarget{ID: user.ID, SectorID: user.SectorID}) ||
		!outranks(snap.Evaluator, actor, user) {
		return uc.deny(actor, "eliminar usuario", id)
	}
	if actor.ID == id {
		return fmt.Errorf("%w: no puede eliminarse a sí mismo", domain.ErrInvalidInput)
	}
	return uc.tx.Run(ctx, func(r repository.Repos) error {
		if err := r.Users.Delete(ctx, id); err != nil {
			return err
		}
		return r.Audit.Log(ctx, auditOf(actor, entity.AuditDeleteUser, "user", id, user.Email))
	})
}

// ResetPassword requiere reset_passwords. Sin contraseña nueva genera una temporal.
func (uc *UserUseCase) ResetPassword(ctx context.Context, actor *access.Actor, id int64, in dto.ResetPasswordRequest) (*dto.ResetPasswordResponse, error) {
	if !access.HasPermission(actor, access.ResetPasswords) {
		return nil, uc.deny(actor, "restablecer contraseña", id)
	}
	user, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("restablecer contraseña: %w", err)
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}

	out := &dto.ResetPasswordResponse{}
	pass := in.NewPassword
	if pass == "" {
		pass = strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
		out.TemporaryPassword = pass
	} else if len(pass) < minPasswordLen {
		return nil, fmt.Errorf("%w: password debe tener al menos %d caracteres", domain.ErrInvalidInput, minPasswordLen)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pass), uc.cost)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = string(hash)

	err = uc.tx.Run(ctx, func(r repository.Repos) error {
		if err := r.Users.Update(ctx, user); err != nil {
			return err
		}
		return r.Audit.Log(ctx, auditOf(actor, entity.AuditResetPassword, "user", id, user.Email))
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (uc *UserUseCase) load(ctx context.Context, id int64) (*entity.User, *policy.Snapshot, error) {
	user, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("obtener usuario: %w", err)
	}
	if user == nil {
		return nil, nil, domain.ErrUserNotFound
	}
	snap, err := uc.policy.Load(ctx)
	if err != nil {
		return nil, nil, err
	}
	return user, snap, nil
}

func (uc *UserUseCase) deny(actor *access.Actor, op string, target int64) error {
	return denied(uc.log, actor, op, "user", target)
}

func validateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("%w: email requerido", domain.ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return fmt.Errorf("%w: email inválido", domain.ErrInvalidInput)
	}
	return nil
}

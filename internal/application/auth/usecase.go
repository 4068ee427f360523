package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/Agenda-api/internal/application/dto"
	"github.com/jhoicas/Agenda-api/internal/application/policy"
	"github.com/jhoicas/Agenda-api/internal/domain"
	"github.com/jhoicas/Agenda-api/internal/domain/access"
	"github.com/jhoicas/Agenda-api/internal/domain/entity"
	"github.com/jhoicas/Agenda-api/internal/domain/repository"
	"github.com/jhoicas/Agenda-api/internal/domain/visibility"
	"github.com/jhoicas/Agenda-api/pkg/jwt"
	"github.com/jhoicas/Agenda-api/pkg/logger"
	"golang.org/x/crypto/bcrypt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase casos de uso de sesión: login, logout y perfil actual.
type AuthUseCase struct {
	userRepo  repository.UserRepository
	auditRepo repository.AuditRepository
	policy    *policy.Provider
	revoked   *Revocations
	jwtCfg    JWTConfig
	log       *logger.Logger
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(
	userRepo repository.UserRepository,
	auditRepo repository.AuditRepository,
	provider *policy.Provider,
	revoked *Revocations,
	jwtCfg JWTConfig,
	log *logger.Logger,
) *AuthUseCase {
	return &AuthUseCase{
		userRepo:  userRepo,
		auditRepo: auditRepo,
		policy:    provider,
		revoked:   revoked,
		jwtCfg:    jwtCfg,
		log:       log.Component("auth"),
	}
}

// Login verifica email/password, registra el último acceso y retorna token + sesión.
// Email desconocido y password incorrecto devuelven el mismo ErrUnauthorized.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: email y password son requeridos", domain.ErrInvalidInput)
	}
	user, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if user == nil {
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	if !user.IsActive {
		return nil, domain.ErrForbidden
	}

	tok, err := jwt.Generate(uc.jwtCfg.Secret, jwt.Session{
		UserID:     user.ID,
		Name:       user.Name,
		SectorID:   user.SectorID,
		SectorName: user.SectorName,
		Role:       string(user.Role),
	}, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, fmt.Errorf("login: generar token: %w", err)
	}

	if err := uc.userRepo.UpdateLastLogin(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	now := time.Now()
	user.LastLogin = &now

	if err := uc.auditRepo.Log(ctx, &entity.AuditEntry{
		ActorID: &user.ID, Action: entity.AuditLogin, Entity: "user", EntityID: &user.ID,
	}); err != nil {
		uc.log.Warn().Err(err).Int64("user_id", user.ID).Msg("no se pudo registrar el login en la bitácora")
	}

	return &dto.LoginResponse{
		Token:       tok.Value,
		ExpiresAt:   tok.ExpiresAt,
		User:        dto.NewUserResponse(user),
		Permissions: Permissions(user.Role),
	}, nil
}

// Logout revoca el token hasta su expiración.
func (uc *AuthUseCase) Logout(jti string, exp time.Time) {
	uc.revoked.Revoke(jti, exp)
}

// IsRevoked informa si el token fue cerrado con logout.
func (uc *AuthUseCase) IsRevoked(jti string) bool {
	return uc.revoked.IsRevoked(jti)
}

// SessionActor recarga al usuario del token. Un usuario eliminado o inactivo ya no tiene
// sesión; rol y sector salen del directorio, no de los claims.
func (uc *AuthUseCase) SessionActor(ctx context.Context, userID int64) (*access.Actor, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("sesión: %w", err)
	}
	if user == nil || !user.IsActive {
		return nil, domain.ErrUnauthorized
	}
	return access.ActorFromUser(user), nil
}

// Me devuelve el perfil actual con permisos y sectores alcanzables.
func (uc *AuthUseCase) Me(ctx context.Context, actor *access.Actor) (*dto.MeResponse, error) {
	if actor == nil {
		return nil, domain.ErrUnauthorized
	}
	user, err := uc.userRepo.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("me: %w", err)
	}
	if user == nil || !user.IsActive {
		return nil, domain.ErrUnauthorized
	}
	snap, err := uc.policy.Load(ctx)
	if err != nil {
		return nil, err
	}
	current := access.ActorFromUser(user)
	return &dto.MeResponse{
		User:              dto.NewUserResponse(user),
		Permissions:       Permissions(user.Role),
		AccessibleSectors: snap.Evaluator.AccessibleSectors(current).Sorted(),
		CanFilterBySector: visibility.CanFilterBySector(current),
		CanCreateDirex:    snap.Evaluator.CanCreateDirexMeeting(current),
	}, nil
}

// Permissions capacidades del rol como strings.
func Permissions(role entity.Role) []string {
	caps := access.PermissionsOf(role)
	out := make([]string, 0, len(caps))
	for _, c := range caps {
		out = append(out, string(c))
	}
	return out
}

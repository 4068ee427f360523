package http

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Agenda-api/internal/application/dto"
	"github.com/jhoicas/Agenda-api/internal/domain"
	"github.com/jhoicas/Agenda-api/internal/domain/access"
	"github.com/jhoicas/Agenda-api/internal/domain/entity"
	"github.com/jhoicas/Agenda-api/pkg/jwt"
)

// Locals keys de la sesión en Fiber.
const (
	LocalUserID  = "user_id"
	LocalRole    = "role"
	LocalActor   = "actor"
	LocalTokenID = "token_id"
	LocalExpiry  = "token_exp"
)

// revocationChecker lo implementa *auth.AuthUseCase.
type revocationChecker interface {
	IsRevoked(jti string) bool
}

// sessionLoader lo implementa *auth.AuthUseCase.
type sessionLoader interface {
	SessionActor(ctx context.Context, userID int64) (*access.Actor, error)
}

// AuthMiddleware valida el Bearer Token JWT, descarta tokens cerrados con logout
// y deja el actor de la sesión en c.Locals. Con sessions el actor se recarga del
// directorio en cada petición; sin él se arma solo con los claims.
func AuthMiddleware(jwtSecret string, revoked revocationChecker, sessions sessionLoader) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "Authorization header requerido"})
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "formato: Bearer <token>"})
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "token vacío"})
		}
		claims, err := jwt.Parse(jwtSecret, tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
		}
		if revoked != nil && revoked.IsRevoked(claims.ID) {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "REVOKED_TOKEN", Message: "sesión cerrada"})
		}
		role := entity.Role(claims.Role)
		if !role.Valid() {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_ROLE", Message: "el token no contiene un rol válido"})
		}
		actor := &access.Actor{
			ID:         claims.UserID,
			Name:       claims.Name,
			Role:       role,
			SectorID:   claims.SectorID,
			SectorName: claims.SectorName,
		}
		if sessions != nil {
			current, err := sessions.SessionActor(c.UserContext(), claims.UserID)
			if errors.Is(err, domain.ErrUnauthorized) {
				return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INACTIVE_USER", Message: "usuario inexistente o inactivo"})
			}
			if err != nil {
				return writeError(c, err)
			}
			actor = current
		}
		c.Locals(LocalUserID, actor.ID)
		c.Locals(LocalRole, string(actor.Role))
		c.Locals(LocalTokenID, claims.ID)
		c.Locals(LocalExpiry, claims.ExpiresAtTime())
		c.Locals(LocalActor, actor)
		return c.Next()
	}
}

// RequireRole permite el paso solo a los roles indicados. Debe usarse DESPUÉS de AuthMiddleware.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := GetRole(c)
		if role == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_ROLE", Message: "rol no encontrado en el token"})
		}
		for _, r := range roles {
			if strings.EqualFold(r, role) {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "el rol " + role + " no tiene acceso a este recurso"})
	}
}

// RequirePermission permite el paso si el rol del actor otorga la capacidad.
func RequirePermission(capability access.Capability) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor := GetActor(c)
		if actor == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "sesión requerida"})
		}
		if !access.HasPermission(actor, capability) {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "permiso requerido: " + string(capability)})
		}
		return c.Next()
	}
}

// GetActor devuelve el actor de la sesión (nil sin AuthMiddleware).
func GetActor(c *fiber.Ctx) *access.Actor {
	a, _ := c.Locals(LocalActor).(*access.Actor)
	return a
}

// GetUserID devuelve el UserID del contexto (cero sin sesión).
func GetUserID(c *fiber.Ctx) int64 {
	id, _ := c.Locals(LocalUserID).(int64)
	return id
}

// GetRole devuelve el rol del contexto.
func GetRole(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalRole).(string)
	return s
}

// tokenOf jti y expiración del token de la petición.
func tokenOf(c *fiber.Ctx) (string, time.Time) {
	jti, _ := c.Locals(LocalTokenID).(string)
	exp, _ := c.Locals(LocalExpiry).(time.Time)
	return jti, exp
}

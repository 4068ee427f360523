package jwt

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims incluye los claims estándar JWT más la sesión del usuario.
// Con sector y rol en el token el middleware arma el actor sin consultar la DB.
type Claims struct {
	jwt.RegisteredClaims
	UserID     int64  `json:"user_id"`
	Name       string `json:"name"`
	SectorID   int64  `json:"sector_id"`
	SectorName string `json:"sector_name"`
	Role       string `json:"role"` // ADMIN | MANAGER | COLLABORATOR | IT_ADMIN
}

// Session datos de sesión que viajan en el token.
type Session struct {
	UserID     int64
	Name       string
	SectorID   int64
	SectorName string
	Role       string
}

// Token resultado de Generate.
type Token struct {
	Value     string
	ID        string // jti, usado para revocar en logout
	ExpiresAt time.Time
}

// Generate genera un token JWT HS256 firmado con la sesión indicada.
func Generate(secret string, s Session, issuer string, expMinutes int) (Token, error) {
	if secret == "" {
		return Token{}, fmt.Errorf("jwt: secret vacío")
	}
	now := time.Now()
	exp := now.Add(time.Duration(expMinutes) * time.Minute)
	jti := uuid.NewString()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Issuer:    issuer,
			Subject:   strconv.FormatInt(s.UserID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		UserID:     s.UserID,
		Name:       s.Name,
		SectorID:   s.SectorID,
		SectorName: s.SectorName,
		Role:       s.Role,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return Token{}, err
	}
	return Token{Value: signed, ID: jti, ExpiresAt: exp}, nil
}

// Parse valida el token y devuelve sus claims.
// Retorna error si el token es inválido, expirado o tiene firma incorrecta.
func Parse(secret, tokenString string) (*Claims, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt: secret vacío")
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de firma inesperado: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("claims inválidos")
	}
	return claims, nil
}

// Session devuelve la sesión contenida en los claims.
func (c *Claims) Session() Session {
	return Session{
		UserID:     c.UserID,
		Name:       c.Name,
		SectorID:   c.SectorID,
		SectorName: c.SectorName,
		Role:       c.Role,
	}
}

// ExpiresAtTime devuelve la expiración (cero si el token no la tiene).
func (c *Claims) ExpiresAtTime() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

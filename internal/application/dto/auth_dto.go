package dto

import "time"

// LoginRequest credenciales de inicio de sesión.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse token JWT más la sesión resultante.
type LoginResponse struct {
	Token       string       `json:"token"`
	ExpiresAt   time.Time    `json:"expiresAt"`
	User        UserResponse `json:"user"`
	Permissions []string     `json:"permissions"`
}

// MeResponse perfil de la sesión actual.
type MeResponse struct {
	User              UserResponse `json:"user"`
	Permissions       []string     `json:"permissions"`
	AccessibleSectors []int64      `json:"accessibleSectors"`
	CanFilterBySector bool         `json:"canFilterBySector"`
	CanCreateDirex    bool         `json:"canCreateDirex"`
}

package dto

import (
	"time"

	"github.com/jhoicas/Agenda-api/internal/domain/entity"
)

// CreateUserRequest entrada para crear un usuario (password en texto, se hashea en use case).
type CreateUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	SectorID int64  `json:"sectorId"`
}

// UpdateUserRequest actualización parcial; los campos nil no cambian.
type UpdateUserRequest struct {
	Email    *string `json:"email,omitempty"`
	Name     *string `json:"name,omitempty"`
	Role     *string `json:"role,omitempty"`
	SectorID *int64  `json:"sectorId,omitempty"`
	IsActive *bool   `json:"isActive,omitempty"`
	Password *string `json:"password,omitempty"`
}

// UserResponse salida de un usuario (sin password).
type UserResponse struct {
	ID         int64      `json:"id"`
	Email      string     `json:"email"`
	Name       string     `json:"name"`
	Role       string     `json:"role"`
	SectorID   int64      `json:"sectorId"`
	SectorName string     `json:"sectorName"`
	IsActive   bool       `json:"isActive"`
	LastLogin  *time.Time `json:"lastLogin,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// UserListResponse página de usuarios.
type UserListResponse struct {
	Items []UserResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}

// ResetPasswordRequest nueva contraseña opcional; vacía genera una temporal.
type ResetPasswordRequest struct {
	NewPassword string `json:"newPassword,omitempty"`
}

// ResetPasswordResponse contraseña temporal (solo si fue generada).
type ResetPasswordResponse struct {
	TemporaryPassword string `json:"temporaryPassword,omitempty"`
}

// NewUserResponse convierte la entidad en DTO (sin hash).
func NewUserResponse(u *entity.User) UserResponse {
	return UserResponse{
		ID:         u.ID,
		Email:      u.Email,
		Name:       u.Name,
		Role:       string(u.Role),
		SectorID:   u.SectorID,
		SectorName: u.SectorName,
		IsActive:   u.IsActive,
		LastLogin:  u.LastLogin,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

package entity

import "time"

// Role rol de un usuario dentro del directorio. Conjunto cerrado.
type Role string

// Roles válidos para User.
const (
	RoleAdmin        Role = "ADMIN"
	RoleManager      Role = "MANAGER"
	RoleCollaborator Role = "COLLABORATOR"
	RoleITAdmin      Role = "IT_ADMIN"
)

// Roles devuelve todos los roles conocidos en orden estable.
func Roles() []Role {
	return []Role{RoleAdmin, RoleManager, RoleCollaborator, RoleITAdmin}
}

// Valid informa si el rol pertenece al conjunto cerrado.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleCollaborator, RoleITAdmin:
		return true
	}
	return false
}

// User representa un usuario del directorio (pertenece a exactamente un Sector).
type User struct {
	ID           int64
	Email        string
	Name         string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Role         Role
	SectorID     int64
	SectorName   string // derivado del sector al leer
	IsActive     bool
	LastLogin    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

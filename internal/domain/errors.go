package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrSectorCycle        = errors.New("la jerarquía de sectores no admite ciclos")
	ErrUnavailable        = errors.New("servicio de persistencia no disponible")
)

// UnavailableError falla de red o timeout de la persistencia tras agotar reintentos.
type UnavailableError struct {
	Op       string
	Attempts int
	Err      error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("%s: %d intento(s): %v", e.Op, e.Attempts, e.Err)
}

// Unwrap expone tanto ErrUnavailable como la causa original.
func (e *UnavailableError) Unwrap() []error {
	return []error{ErrUnavailable, e.Err}
}

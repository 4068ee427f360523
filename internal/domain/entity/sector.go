package entity

import "time"

// Sector representa un departamento de la organización. Forma un árbol vía ParentID.
type Sector struct {
	ID          int64
	Name        string
	Description string
	ManagerID   *int64
	ParentID    *int64
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Conteos derivados (solo lectura, calculados por el repositorio).
	Users      int
	SubSectors int
	Events     int
}

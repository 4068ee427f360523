package dto

import (
	"time"

	"github.com/jhoicas/Agenda-api/internal/domain/entity"
)

// EventRequest alta o edición de un evento. Solo se considera el bloque de
// detalles que corresponde al tipo. Las referencias aceptan id o objeto.
type EventRequest struct {
	Type         string       `json:"type"`
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	StartDate    time.Time    `json:"startDate"`
	EndDate      *time.Time   `json:"endDate"`
	SectorID     int64        `json:"sectorId"`
	Status       string       `json:"status"`
	Participants []entity.Ref `json:"participants"`
	Assignees    []entity.Ref `json:"assignees"`
	Responsibles []entity.Ref `json:"responsibles"`
	Responsible  *entity.Ref  `json:"responsible"`

	Meeting          *entity.MeetingDetails          `json:"meeting"`
	Activity         *entity.ActivityDetails         `json:"activity"`
	ExternalActivity *entity.ExternalActivityDetails `json:"externalActivity"`
	Document         *entity.DocumentDetails         `json:"document"`
}

// EventResponse evento con su columna de tablero.
type EventResponse struct {
	ID           int64      `json:"id"`
	Type         string     `json:"type"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	StartDate    time.Time  `json:"startDate"`
	EndDate      *time.Time `json:"endDate"`
	SectorID     int64      `json:"sectorId"`
	SectorName   string     `json:"sectorName"`
	CreatorID    *int64     `json:"creatorId"`
	Author       string     `json:"author"`
	Status       string     `json:"status"`
	Column       string     `json:"column"`
	Participants []int64    `json:"participants"`
	Assignees    []int64    `json:"assignees"`
	Responsibles []int64    `json:"responsibles"`

	Meeting          *entity.MeetingDetails          `json:"meeting,omitempty"`
	Activity         *entity.ActivityDetails         `json:"activity,omitempty"`
	ExternalActivity *entity.ExternalActivityDetails `json:"externalActivity,omitempty"`
	Document         *entity.DocumentDetails         `json:"document,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ConflictResponse reunión que choca con el horario propuesto.
type ConflictResponse struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	StartDate  time.Time `json:"startDate"`
	EndDate    time.Time `json:"endDate"`
	SectorID   int64     `json:"sectorId"`
	SectorName string    `json:"sectorName"`
}

// EventMutationResponse resultado de alta/edición con advertencias de choque.
type EventMutationResponse struct {
	Event     EventResponse      `json:"event"`
	Conflicts []ConflictResponse `json:"conflicts"`
}

// StatusChangeRequest cambio de estado por valor o por columna de tablero.
type StatusChangeRequest struct {
	Status string `json:"status"`
	Column string `json:"column"`
}

// ConflictCheckRequest consulta previa de choques de horario.
type ConflictCheckRequest struct {
	ID        int64      `json:"id"`
	Type      string     `json:"type"`
	StartDate time.Time  `json:"startDate"`
	EndDate   *time.Time `json:"endDate"`
	SectorID  int64      `json:"sectorId"`
}

// ConflictCheckResponse resultado de la consulta previa.
type ConflictCheckResponse struct {
	HasConflicts bool               `json:"hasConflicts"`
	Conflicts    []ConflictResponse `json:"conflicts"`
}

// EventQuery filtro de la vista de eventos más ventana temporal opcional.
type EventQuery struct {
	ShowAll    bool
	Tab        string
	Categories []string
	Sector     *int64
	SubSectors []int64
	From       time.Time
	To         time.Time
}

// BoardColumnResponse columna del tablero kanban.
type BoardColumnResponse struct {
	Column string          `json:"column"`
	Label  string          `json:"label"`
	Events []EventResponse `json:"events"`
}

// BoardResponse tablero completo (cuatro columnas en orden fijo).
type BoardResponse struct {
	Columns []BoardColumnResponse `json:"columns"`
}

// CalendarEntryResponse evento proyectado al calendario.
type CalendarEntryResponse struct {
	ID     int64     `json:"id"`
	Title  string    `json:"title"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	AllDay bool      `json:"allDay"`
	Type   string    `json:"type"`
	Status string    `json:"status"`
	Column string    `json:"column"`
	Color  string    `json:"color"`
}

// EventTypeOption opción de creación ofrecida al actor.
type EventTypeOption struct {
	Type     string   `json:"type"`
	Label    string   `json:"label"`
	Category string   `json:"category"`
	Statuses []string `json:"statuses"`
	Kinds    []string `json:"kinds,omitempty"`
}

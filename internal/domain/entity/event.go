package entity

import (
	"strings"
	"time"
)

// EventType discriminante de las cuatro variantes de evento.
type EventType string

// Tipos de evento.
const (
	EventMeeting          EventType = "MEETING"
	EventActivity         EventType = "ACTIVITY"
	EventExternalActivity EventType = "EXTERNAL_ACTIVITY"
	EventDocument         EventType = "DOCUMENT"
)

// EventTypes devuelve los tipos conocidos en orden estable.
func EventTypes() []EventType {
	return []EventType{EventMeeting, EventActivity, EventExternalActivity, EventDocument}
}

// Valid informa si el tipo pertenece al conjunto cerrado.
func (t EventType) Valid() bool {
	switch t {
	case EventMeeting, EventActivity, EventExternalActivity, EventDocument:
		return true
	}
	return false
}

// ParseEventType acepta el tipo sin distinguir mayúsculas.
func ParseEventType(s string) (EventType, bool) {
	t := EventType(strings.ToUpper(strings.TrimSpace(s)))
	return t, t.Valid()
}

// Status estado canónico de un evento (el vocabulario depende del tipo).
type Status string

// Modalidad de una reunión.
const (
	LocationPresencial = "presencial"
	LocationVirtual    = "virtual"
)

// Subtipos de reunión.
const (
	MeetingRegular = "regular"
	MeetingDirex   = "direx"
)

// Prioridad de una actividad.
type Priority string

// Prioridades válidas.
const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

// Valid informa si la prioridad es conocida.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// MeetingDetails campos propios de MEETING.
type MeetingDetails struct {
	Location     string `json:"location"`
	Room         string `json:"room,omitempty"`
	MeetingLink  string `json:"meetingLink,omitempty"`
	MinutesOwner *int64 `json:"minutesOwner,omitempty"`
	Kind         string `json:"kind,omitempty"`
}

// ActivityDetails campos propios de ACTIVITY.
type ActivityDetails struct {
	Priority      Priority   `json:"priority"`
	Subtasks      []string   `json:"subtasks,omitempty"`
	Comments      string     `json:"comments,omitempty"`
	CompletedDate *time.Time `json:"completedDate,omitempty"`
}

// ExternalActivityDetails campos propios de EXTERNAL_ACTIVITY.
type ExternalActivityDetails struct {
	Destination   string    `json:"destination"`
	TransportMode string    `json:"transportMode,omitempty"`
	DepartureTime time.Time `json:"departureTime"`
	ReturnTime    time.Time `json:"returnTime"`
	Team          []string  `json:"team,omitempty"`
}

// DocumentDetails campos propios de DOCUMENT.
type DocumentDetails struct {
	DocumentType       string     `json:"documentType"`
	DueDate            time.Time  `json:"dueDate"`
	ReceivedOrSentDate *time.Time `json:"receivedOrSentDate,omitempty"`
	Attachment         string     `json:"attachment,omitempty"`
}

// EventDetails agrupa los detalles de variante; solo uno es no-nil según Type.
type EventDetails struct {
	Meeting  *MeetingDetails          `json:"meeting,omitempty"`
	Activity *ActivityDetails         `json:"activity,omitempty"`
	External *ExternalActivityDetails `json:"externalActivity,omitempty"`
	Document *DocumentDetails         `json:"document,omitempty"`
}

// Event evento de agenda. Pertenece a su creador y a su sector; participantes,
// asignados y responsables son referencias débiles.
type Event struct {
	ID          int64
	Type        EventType
	Title       string
	Description string
	StartDate   time.Time
	EndDate     time.Time
	SectorID    int64
	SectorName  string
	CreatorID   *int64
	Author      string
	Status      Status

	Participants []Ref
	Assignees    []Ref
	Responsibles []Ref

	Details EventDetails

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasValidRange informa si EndDate >= StartDate. EndDate cero se interpreta como instantáneo.
func (e *Event) HasValidRange() bool {
	if e.EndDate.IsZero() {
		return true
	}
	return !e.EndDate.Before(e.StartDate)
}

// End devuelve el fin efectivo del evento (StartDate si no hay fin).
func (e *Event) End() time.Time {
	if e.EndDate.IsZero() {
		return e.StartDate
	}
	return e.EndDate
}

// IsDirex informa si el evento es una reunión Direx.
func (e *Event) IsDirex() bool {
	return e.Type == EventMeeting && e.Details.Meeting != nil && e.Details.Meeting.Kind == MeetingDirex
}

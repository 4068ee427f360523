// Package workflow normaliza los vocabularios de estado de cada tipo de
// evento y los proyecta sobre las vistas de kanban y calendario.
//
// Cada tipo tiene su enum cerrado; los textos heredados ("agendada",
// "concluída", ...) se traducen con una única tabla (tipo, texto) → estado
// canónico. La normalización es total: lo desconocido cae en el estado
// pendiente equivalente del tipo.
package workflow

import (
	"github.com/jhoicas/Agenda-api/internal/domain/entity"
	"github.com/jhoicas/Agenda-api/pkg/textfold"
)

// Estados canónicos de MEETING.
const (
	MeetingScheduled entity.Status = "SCHEDULED"
	MeetingOngoing   entity.Status = "ONGOING"
	MeetingCompleted entity.Status = "COMPLETED"
	MeetingCancelled entity.Status = "CANCELLED"
)

// Estados canónicos de ACTIVITY.
const (
	ActivityPending    entity.Status = "PENDING"
	ActivityInProgress entity.Status = "IN_PROGRESS"
	ActivityCompleted  entity.Status = "COMPLETED"
	ActivityOverdue    entity.Status = "OVERDUE"
)

// Estados canónicos de EXTERNAL_ACTIVITY.
const (
	ExternalPlanned     entity.Status = "PLANNED"
	ExternalInExecution entity.Status = "IN_EXECUTION"
	ExternalCompleted   entity.Status = "COMPLETED"
	ExternalCancelled   entity.Status = "CANCELLED"
)

// Estados canónicos de DOCUMENT.
const (
	DocumentPending     entity.Status = "PENDING"
	DocumentUnderReview entity.Status = "UNDER_REVIEW"
	DocumentSigned      entity.Status = "SIGNED"
	DocumentSent        entity.Status = "SENT"
	DocumentArchived    entity.Status = "ARCHIVED"
)

// FallbackStatus estado usado cuando el tipo tampoco es conocido.
const FallbackStatus entity.Status = "PENDING"

// canonical enum por tipo, en orden de flujo.
var canonical = map[entity.EventType][]entity.Status{
	entity.EventMeeting:          {MeetingScheduled, MeetingOngoing, MeetingCompleted, MeetingCancelled},
	entity.EventActivity:         {ActivityPending, ActivityInProgress, ActivityCompleted, ActivityOverdue},
	entity.EventExternalActivity: {ExternalPlanned, ExternalInExecution, ExternalCompleted, ExternalCancelled},
	entity.EventDocument:         {DocumentPending, DocumentUnderReview, DocumentSigned, DocumentSent, DocumentArchived},
}

type statusKey struct {
	t   entity.EventType
	key string
}

// legacy tabla de migración (tipo, texto heredado plegado) → estado canónico.
// Los propios nombres canónicos se agregan en init como puntos fijos.
var legacy = map[statusKey]entity.Status{
	{entity.EventMeeting, "agendada"}:     MeetingScheduled,
	{entity.EventMeeting, "agendado"}:     MeetingScheduled,
	{entity.EventMeeting, "pendente"}:     MeetingScheduled,
	{entity.EventMeeting, "pending"}:      MeetingScheduled,
	{entity.EventMeeting, "em_andamento"}: MeetingOngoing,
	{entity.EventMeeting, "andamento"}:    MeetingOngoing,
	{entity.EventMeeting, "in_progress"}:  MeetingOngoing,
	{entity.EventMeeting, "realizada"}:    MeetingCompleted,
	{entity.EventMeeting, "concluida"}:    MeetingCompleted,
	{entity.EventMeeting, "concluido"}:    MeetingCompleted,
	{entity.EventMeeting, "cancelada"}:    MeetingCancelled,
	{entity.EventMeeting, "cancelado"}:    MeetingCancelled,
	{entity.EventMeeting, "canceled"}:     MeetingCancelled,

	{entity.EventActivity, "pendente"}:     ActivityPending,
	{entity.EventActivity, "a_fazer"}:      ActivityPending,
	{entity.EventActivity, "em_andamento"}: ActivityInProgress,
	{entity.EventActivity, "andamento"}:    ActivityInProgress,
	{entity.EventActivity, "concluida"}:    ActivityCompleted,
	{entity.EventActivity, "concluido"}:    ActivityCompleted,
	{entity.EventActivity, "done"}:         ActivityCompleted,
	{entity.EventActivity, "atrasada"}:     ActivityOverdue,
	{entity.EventActivity, "atrasado"}:     ActivityOverdue,

	{entity.EventExternalActivity, "planejada"}:    ExternalPlanned,
	{entity.EventExternalActivity, "planejado"}:    ExternalPlanned,
	{entity.EventExternalActivity, "pendente"}:     ExternalPlanned,
	{entity.EventExternalActivity, "em_execucao"}:  ExternalInExecution,
	{entity.EventExternalActivity, "em_andamento"}: ExternalInExecution,
	{entity.EventExternalActivity, "realizada"}:    ExternalCompleted,
	{entity.EventExternalActivity, "concluida"}:    ExternalCompleted,
	{entity.EventExternalActivity, "concluido"}:    ExternalCompleted,
	{entity.EventExternalActivity, "cancelada"}:    ExternalCancelled,
	{entity.EventExternalActivity, "cancelado"}:    ExternalCancelled,

	{entity.EventDocument, "pendente"}:   DocumentPending,
	{entity.EventDocument, "em_analise"}: DocumentUnderReview,
	{entity.EventDocument, "em_revisao"}: DocumentUnderReview,
	{entity.EventDocument, "revisao"}:    DocumentUnderReview,
	{entity.EventDocument, "assinado"}:   DocumentSigned,
	{entity.EventDocument, "assinada"}:   DocumentSigned,
	{entity.EventDocument, "enviado"}:    DocumentSent,
	{entity.EventDocument, "enviada"}:    DocumentSent,
	{entity.EventDocument, "arquivado"}:  DocumentArchived,
	{entity.EventDocument, "arquivada"}:  DocumentArchived,
}

func init() {
	for t, statuses := range canonical {
		for _, s := range statuses {
			legacy[statusKey{t, textfold.Key(string(s))}] = s
		}
	}
}

// Statuses devuelve el enum canónico del tipo (nil si el tipo no existe).
func Statuses(t entity.EventType) []entity.Status {
	return append([]entity.Status(nil), canonical[t]...)
}

// InitialStatus estado pendiente equivalente del tipo.
func InitialStatus(t entity.EventType) entity.Status {
	if s := canonical[t]; len(s) > 0 {
		return s[0]
	}
	return FallbackStatus
}

// NormalizeStatus traduce raw al estado canónico del tipo. Nunca falla.
func NormalizeStatus(raw string, t entity.EventType) entity.Status {
	if s, ok := Lookup(raw, t); ok {
		return s
	}
	return InitialStatus(t)
}

// Lookup como NormalizeStatus, pero informa si raw era conocido.
func Lookup(raw string, t entity.EventType) (entity.Status, bool) {
	s, ok := legacy[statusKey{t, textfold.Key(raw)}]
	return s, ok
}

// ValidStatus informa si s pertenece al enum canónico del tipo.
func ValidStatus(t entity.EventType, s entity.Status) bool {
	for _, c := range canonical[t] {
		if c == s {
			return true
		}
	}
	return false
}

package agenda

import (
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/Agenda-api/internal/application/dto"
	"github.com/jhoicas/Agenda-api/internal/domain"
	"github.com/jhoicas/Agenda-api/internal/domain/entity"
	"github.com/jhoicas/Agenda-api/internal/domain/workflow"
)

// typeLabels etiquetas de los tipos de evento.
var typeLabels = map[entity.EventType]string{
	entity.EventMeeting:          "Reunião",
	entity.EventActivity:         "Atividade",
	entity.EventExternalActivity: "Atividade Externa",
	entity.EventDocument:         "Documento",
}

// TypeLabel etiqueta del tipo (el propio valor si es desconocido).
func TypeLabel(t entity.EventType) string {
	if l, ok := typeLabels[t]; ok {
		return l
	}
	return string(t)
}

// ToEventResponse proyecta el evento con su columna de tablero.
func ToEventResponse(e *entity.Event) dto.EventResponse {
	out := dto.EventResponse{
		ID:               e.ID,
		Type:             string(e.Type),
		Title:            e.Title,
		Description:      e.Description,
		StartDate:        e.StartDate,
		SectorID:         e.SectorID,
		SectorName:       e.SectorName,
		CreatorID:        e.CreatorID,
		Author:           e.Author,
		Status:           string(workflow.NormalizeStatus(string(e.Status), e.Type)),
		Column:           string(workflow.KanbanColumnOf(e)),
		Participants:     entity.ResolveRefs(e.Participants),
		Assignees:        entity.ResolveRefs(e.Assignees),
		Responsibles:     entity.ResolveRefs(e.Responsibles),
		Meeting:          e.Details.Meeting,
		Activity:         e.Details.Activity,
		ExternalActivity: e.Details.External,
		Document:         e.Details.Document,
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        e.UpdatedAt,
	}
	if !e.EndDate.IsZero() {
		end := e.EndDate
		out.EndDate = &end
	}
	return out
}

func toEventResponses(events []*entity.Event) []dto.EventResponse {
	out := make([]dto.EventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, ToEventResponse(e))
	}
	return out
}

func toConflicts(events []*entity.Event) []dto.ConflictResponse {
	out := make([]dto.ConflictResponse, 0, len(events))
	for _, e := range events {
		out = append(out, dto.ConflictResponse{
			ID:         e.ID,
			Title:      e.Title,
			StartDate:  e.StartDate,
			EndDate:    e.End(),
			SectorID:   e.SectorID,
			SectorName: e.SectorName,
		})
	}
	return out
}

// applyRequest copia los campos de la petición sobre el evento y valida según el tipo.
// El tipo ya debe estar fijado en e.
func applyRequest(e *entity.Event, in dto.EventRequest) error {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return invalid("título requerido")
	}
	if in.StartDate.IsZero() {
		return invalid("startDate requerido")
	}
	e.Title = title
	e.Description = strings.TrimSpace(in.Description)
	e.StartDate = in.StartDate
	e.EndDate = timeOrZero(in.EndDate)
	if in.SectorID != 0 {
		e.SectorID = in.SectorID
	}
	if !e.HasValidRange() {
		return invalid("endDate debe ser posterior o igual a startDate")
	}

	e.Participants, e.Assignees, e.Responsibles = nil, nil, nil
	e.Details = entity.EventDetails{}
	switch e.Type {
	case entity.EventMeeting:
		d := entity.MeetingDetails{Location: entity.LocationPresencial, Kind: entity.MeetingRegular}
		if in.Meeting != nil {
			d = *in.Meeting
		}
		d.Location = strings.ToLower(strings.TrimSpace(d.Location))
		if d.Location == "" {
			d.Location = entity.LocationPresencial
		}
		if d.Location != entity.LocationPresencial && d.Location != entity.LocationVirtual {
			return invalid("location debe ser presencial o virtual")
		}
		d.Kind = strings.ToLower(strings.TrimSpace(d.Kind))
		if d.Kind == "" {
			d.Kind = entity.MeetingRegular
		}
		if d.Kind != entity.MeetingRegular && d.Kind != entity.MeetingDirex {
			return invalid("kind debe ser regular o direx")
		}
		e.Details.Meeting = &d
		e.Participants = in.Participants
	case entity.EventActivity:
		d := entity.ActivityDetails{Priority: entity.PriorityMedium}
		if in.Activity != nil {
			d = *in.Activity
		}
		d.Priority = entity.Priority(strings.ToUpper(strings.TrimSpace(string(d.Priority))))
		if d.Priority == "" {
			d.Priority = entity.PriorityMedium
		}
		if !d.Priority.Valid() {
			return invalid("priority debe ser LOW, MEDIUM o HIGH")
		}
		e.Details.Activity = &d
		e.Assignees = in.Assignees
	case entity.EventExternalActivity:
		if in.ExternalActivity == nil || strings.TrimSpace(in.ExternalActivity.Destination) == "" {
			return invalid("destination requerido")
		}
		d := *in.ExternalActivity
		if !d.DepartureTime.IsZero() && !d.ReturnTime.IsZero() && d.ReturnTime.Before(d.DepartureTime) {
			return invalid("returnTime debe ser posterior a departureTime")
		}
		e.Details.External = &d
		e.Participants = in.Participants
	case entity.EventDocument:
		if in.Document == nil || strings.TrimSpace(in.Document.DocumentType) == "" {
			return invalid("documentType requerido")
		}
		d := *in.Document
		e.Details.Document = &d
		e.Responsibles = in.Responsibles
		if in.Responsible != nil {
			e.Responsibles = append([]entity.Ref{*in.Responsible}, e.Responsibles...)
		}
	}
	return nil
}

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", domain.ErrInvalidInput, msg)
}

func timeOrZero(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

// Package agenda contiene los casos de uso de eventos: alta, edición, estados,
// vistas (lista, kanban, calendario), choques de horario y exportación a PDF.
package agenda

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/Agenda-api/internal/application/dto"
	"github.com/jhoicas/Agenda-api/internal/application/policy"
	"github.com/jhoicas/Agenda-api/internal/domain"
	"github.com/jhoicas/Agenda-api/internal/domain/access"
	"github.com/jhoicas/Agenda-api/internal/domain/entity"
	"github.com/jhoicas/Agenda-api/internal/domain/repository"
	"github.com/jhoicas/Agenda-api/internal/domain/schedule"
	"github.com/jhoicas/Agenda-api/internal/domain/visibility"
	"github.com/jhoicas/Agenda-api/internal/domain/workflow"
	"github.com/jhoicas/Agenda-api/pkg/logger"
)

// EventUseCase orquesta evaluador de acceso, modelo de estados, filtro de
// visibilidad y detector de choques sobre la persistencia de eventos.
type EventUseCase struct {
	events    repository.EventRepository
	tx        repository.TxRunner
	policy    *policy.Provider
	generator AgendaPDFGenerator
	log       *logger.Logger
	now       func() time.Time
}

// NewEventUseCase construye el caso de uso.
func NewEventUseCase(
	events repository.EventRepository,
	tx repository.TxRunner,
	provider *policy.Provider,
	generator AgendaPDFGenerator,
	log *logger.Logger,
) *EventUseCase {
	return &EventUseCase{
		events:    events,
		tx:        tx,
		policy:    provider,
		generator: generator,
		log:       log.Component("events"),
		now:       time.Now,
	}
}

// ── Lecturas ──────────────────────────────────────────────────────────────────

// visible carga los eventos de la ventana y aplica el filtro de visibilidad.
func (uc *EventUseCase) visible(ctx context.Context, actor *access.Actor, q dto.EventQuery) ([]*entity.Event, error) {
	if actor == nil {
		return nil, domain.ErrUnauthorized
	}
	all, err := uc.events.List(ctx, repository.EventFilter{From: q.From, To: q.To})
	if err != nil {
		return nil, fmt.Errorf("listar eventos: %w", err)
	}
	return visibility.VisibleEvents(actor, all, FilterFromQuery(q)), nil
}

// FilterFromQuery traduce la consulta HTTP al estado de filtro.
func FilterFromQuery(q dto.EventQuery) visibility.FilterState {
	f := visibility.NewFilterState()
	f.ShowAll = q.ShowAll
	if strings.EqualFold(q.Tab, string(visibility.TabSector)) {
		f.SelectTab(visibility.TabSector)
		f.SelectSector(q.Sector)
		if len(q.SubSectors) > 0 {
			f.SelectSubSectors(q.SubSectors...)
		}
	} else {
		f.SelectCategories(q.Categories...)
	}
	f.Normalize()
	return f
}

// List eventos visibles para el actor.
func (uc *EventUseCase) List(ctx context.Context, actor *access.Actor, q dto.EventQuery) ([]dto.EventResponse, error) {
	events, err := uc.visible(ctx, actor, q)
	if err != nil {
		return nil, err
	}
	return toEventResponses(events), nil
}

// Board eventos visibles agrupados en las cuatro columnas del kanban.
func (uc *EventUseCase) Board(ctx context.Context, actor *access.Actor, q dto.EventQuery) (*dto.BoardResponse, error) {
	events, err := uc.visible(ctx, actor, q)
	if err != nil {
		return nil, err
	}
	out := &dto.BoardResponse{}
	for _, col := range workflow.Board(events) {
		out.Columns = append(out.Columns, dto.BoardColumnResponse{
			Column: string(col.Column),
			Label:  col.Column.Label(),
			Events: toEventResponses(col.Events),
		})
	}
	return out, nil
}

// Calendar entradas de calendario de los eventos visibles en [from, to].
func (uc *EventUseCase) Calendar(ctx context.Context, actor *access.Actor, q dto.EventQuery) ([]dto.CalendarEntryResponse, error) {
	if !q.From.IsZero() && !q.To.IsZero() && q.To.Before(q.From) {
		return nil, invalid("to debe ser posterior a from")
	}
	events, err := uc.visible(ctx, actor, q)
	if err != nil {
		return nil, err
	}
	entries := workflow.Calendar(events, q.From, q.To)
	out := make([]dto.CalendarEntryResponse, 0, len(entries))
	for _, c := range entries {
		out = append(out, dto.CalendarEntryResponse{
			ID:     c.ID,
			Title:  c.Title,
			Start:  c.Start,
			End:    c.End,
			AllDay: c.AllDay,
			Type:   string(c.Type),
			Status: string(c.Status),
			Column: string(c.Column),
			Color:  c.Color,
		})
	}
	return out, nil
}

// Get un evento si el actor puede verlo o está involucrado.
func (uc *EventUseCase) Get(ctx context.Context, actor *access.Actor, id int64) (*dto.EventResponse, error) {
	e, snap, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !snap.Evaluator.CanViewEvent(actor, &e.SectorID) && !visibility.IsInvolved(actor, e) {
		return nil, uc.deny(actor, "ver evento", id)
	}
	out := ToEventResponse(e)
	return &out, nil
}

// EventTypes opciones de creación; la reunión Direx solo se ofrece a quien puede crearla.
func (uc *EventUseCase) EventTypes(ctx context.Context, actor *access.Actor) ([]dto.EventTypeOption, error) {
	if actor == nil {
		return nil, domain.ErrUnauthorized
	}
	snap, err := uc.policy.Load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.EventTypeOption, 0, len(entity.EventTypes()))
	for _, t := range entity.EventTypes() {
		opt := dto.EventTypeOption{
			Type:     string(t),
			Label:    TypeLabel(t),
			Category: categoryOf(t),
		}
		for _, s := range workflow.Statuses(t) {
			opt.Statuses = append(opt.Statuses, string(s))
		}
		if t == entity.EventMeeting {
			opt.Kinds = []string{entity.MeetingRegular}
			if snap.Evaluator.CanCreateDirexMeeting(actor) {
				opt.Kinds = append(opt.Kinds, entity.MeetingDirex)
			}
		}
		out = append(out, opt)
	}
	return out, nil
}

// ── Escrituras ────────────────────────────────────────────────────────────────

// Create crea un evento en el sector indicado (por defecto el del actor). El
// resultado incluye las reuniones que chocan, solo como advertencia.
func (uc *EventUseCase) Create(ctx context.Context, actor *access.Actor, in dto.EventRequest) (*dto.EventMutationResponse, error) {
	if actor == nil {
		return nil, domain.ErrUnauthorized
	}
	t, ok := entity.ParseEventType(in.Type)
	if !ok {
		return nil, invalid(fmt.Sprintf("tipo de evento desconocido %q", in.Type))
	}
	e := &entity.Event{Type: t, SectorID: actor.SectorID}
	if err := applyRequest(e, in); err != nil {
		return nil, err
	}

	snap, err := uc.policy.Load(ctx)
	if err != nil {
		return nil, err
	}
	if snap.Sector(e.SectorID) == nil {
		return nil, invalid(fmt.Sprintf("sector %d no existe", e.SectorID))
	}
	if !snap.Evaluator.CanCreateEvent(actor, e.SectorID) {
		return nil, uc.deny(actor, "crear evento", 0)
	}
	if e.IsDirex() && !snap.Evaluator.CanCreateDirexMeeting(actor) {
		return nil, uc.deny(actor, "crear reunión direx", 0)
	}

	creator := actor.ID
	e.CreatorID = &creator
	e.Author = actor.Name
	e.Status = uc.writeStatus(in.Status, e.Type)
	uc.stampCompletion(e)

	conflicts, err := uc.conflictsFor(ctx, schedule.CandidateOf(e))
	if err != nil {
		return nil, err
	}

	err = uc.tx.Run(ctx, func(r repository.Repos) error {
		if err := r.Events.Create(ctx, e); err != nil {
			return err
		}
		return r.Audit.Log(ctx, auditOf(actor, entity.AuditCreateEvent, e.ID, e.Title))
	})
	if err != nil {
		return nil, err
	}
	e.SectorName = snap.Sector(e.SectorID).Name
	uc.logConflicts(e, conflicts)
	return &dto.EventMutationResponse{Event: ToEventResponse(e), Conflicts: toConflicts(conflicts)}, nil
}

// Update reemplaza los campos editables. El tipo y el creador no cambian; mover el
// evento a otro sector exige poder crear en el destino.
func (uc *EventUseCase) Update(ctx context.Context, actor *access.Actor, id int64, in dto.EventRequest) (*dto.EventMutationResponse, error) {
	current, snap, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	ev := snap.Evaluator
	if !ev.CanEditEvent(actor, &current.SectorID, current.CreatorID) {
		return nil, uc.deny(actor, "editar evento", id)
	}
	if in.Type != "" {
		if t, ok := entity.ParseEventType(in.Type); !ok || t != current.Type {
			return nil, invalid("el tipo de evento no puede cambiar")
		}
	}

	e := *current
	if err := applyRequest(&e, in); err != nil {
		return nil, err
	}
	if e.SectorID != current.SectorID {
		if snap.Sector(e.SectorID) == nil {
			return nil, invalid(fmt.Sprintf("sector %d no existe", e.SectorID))
		}
		if !access.HasPermission(actor, access.EditAllEvents) && !ev.CanCreateEvent(actor, e.SectorID) {
			return nil, uc.deny(actor, "mover evento de sector", id)
		}
	}
	if e.IsDirex() && !current.IsDirex() && !ev.CanCreateDirexMeeting(actor) {
		return nil, uc.deny(actor, "convertir en reunión direx", id)
	}
	if strings.TrimSpace(in.Status) != "" {
		e.Status = uc.writeStatus(in.Status, e.Type)
	} else {
		e.Status = workflow.NormalizeStatus(string(current.Status), e.Type)
	}
	uc.stampCompletion(&e)

	conflicts, err := uc.conflictsFor(ctx, schedule.CandidateOf(&e))
	if err != nil {
		return nil, err
	}
	err = uc.tx.Run(ctx, func(r repository.Repos) error {
		if err := r.Events.Update(ctx, &e); err != nil {
			return err
		}
		return r.Audit.Log(ctx, auditOf(actor, entity.AuditUpdateEvent, e.ID, e.Title))
	})
	if err != nil {
		return nil, err
	}
	if s := snap.Sector(e.SectorID); s != nil {
		e.SectorName = s.Name
	}
	uc.logConflicts(&e, conflicts)
	return &dto.EventMutationResponse{Event: ToEventResponse(&e), Conflicts: toConflicts(conflicts)}, nil
}

// ChangeStatus mueve el evento de estado, por valor (normalizado) o por columna.
func (uc *EventUseCase) ChangeStatus(ctx context.Context, actor *access.Actor, id int64, in dto.StatusChangeRequest) (*dto.EventResponse, error) {
	e, snap, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !snap.Evaluator.CanEditEvent(actor, &e.SectorID, e.CreatorID) {
		return nil, uc.deny(actor, "cambiar estado", id)
	}

	var status entity.Status
	switch {
	case strings.TrimSpace(in.Status) != "":
		status = uc.writeStatus(in.Status, e.Type)
	case strings.TrimSpace(in.Column) != "":
		col := workflow.Column(strings.ToLower(strings.TrimSpace(in.Column)))
		s, ok := workflow.StatusForColumn(e.Type, col)
		if !ok {
			return nil, invalid(fmt.Sprintf("el tipo %s no tiene estado en la columna %q", e.Type, in.Column))
		}
		status = s
	default:
		return nil, invalid("status o column requerido")
	}

	e.Status = status
	uc.stampCompletion(e)
	err = uc.tx.Run(ctx, func(r repository.Repos) error {
		if err := r.Events.UpdateStatus(ctx, e.ID, e.Status, e.Details); err != nil {
			return err
		}
		return r.Audit.Log(ctx, auditOf(actor, entity.AuditChangeStatus, e.ID, string(e.Status)))
	})
	if err != nil {
		return nil, err
	}
	out := ToEventResponse(e)
	return &out, nil
}

// Delete elimina un evento (delete_all_events o permiso de edición).
func (uc *EventUseCase) Delete(ctx context.Context, actor *access.Actor, id int64) error {
	e, snap, err := uc.load(ctx, id)
	if err != nil {
		return err
	}
	if !snap.Evaluator.CanDeleteEvent(actor, &e.SectorID, e.CreatorID) {
		return uc.deny(actor, "eliminar evento", id)
	}
	return uc.tx.Run(ctx, func(r repository.Repos) error {
		if err := r.Events.Delete(ctx, id); err != nil {
			return err
		}
		return r.Audit.Log(ctx, auditOf(actor, entity.AuditDeleteEvent, id, e.Title))
	})
}

// CheckConflicts consulta previa de choques para un horario propuesto.
func (uc *EventUseCase) CheckConflicts(ctx context.Context, actor *access.Actor, in dto.ConflictCheckRequest) (*dto.ConflictCheckResponse, error) {
	if !access.HasPermission(actor, access.CreateEvent) {
		return nil, uc.deny(actor, "consultar choques", in.ID)
	}
	t := entity.EventMeeting
	if in.Type != "" {
		var ok bool
		if t, ok = entity.ParseEventType(in.Type); !ok {
			return nil, invalid(fmt.Sprintf("tipo de evento desconocido %q", in.Type))
		}
	}
	if in.StartDate.IsZero() {
		return nil, invalid("startDate requerido")
	}
	c := schedule.Candidate{ID: in.ID, Start: in.StartDate, End: timeOrZero(in.EndDate), Type: t, SectorID: in.SectorID}
	if c.End.IsZero() {
		c.End = c.Start
	}
	if c.End.Before(c.Start) {
		return nil, invalid("endDate debe ser posterior o igual a startDate")
	}
	conflicts, err := uc.conflictsFor(ctx, c)
	if err != nil {
		return nil, err
	}
	return &dto.ConflictCheckResponse{HasConflicts: len(conflicts) > 0, Conflicts: toConflicts(conflicts)}, nil
}

// ── Exportación ───────────────────────────────────────────────────────────────

// ExportPDF genera la agenda en PDF con los eventos visibles de la consulta.
func (uc *EventUseCase) ExportPDF(ctx context.Context, actor *access.Actor, q dto.EventQuery) ([]byte, string, error) {
	events, err := uc.visible(ctx, actor, q)
	if err != nil {
		return nil, "", err
	}
	now := uc.now()
	report := AgendaReport{
		Title:       "Agenda",
		GeneratedBy: actor.Name,
		GeneratedAt: now,
		From:        q.From,
		To:          q.To,
		Rows:        make([]AgendaRow, 0, len(events)),
	}
	for _, e := range events {
		report.Rows = append(report.Rows, AgendaRow{
			Start:  e.StartDate,
			End:    e.End(),
			Type:   TypeLabel(e.Type),
			Title:  e.Title,
			Sector: e.SectorName,
			Status: string(workflow.NormalizeStatus(string(e.Status), e.Type)),
			Column: workflow.KanbanColumnOf(e).Label(),
			Author: e.Author,
		})
	}
	pdf, err := uc.generator.GenerateAgendaPDF(ctx, report)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generación fallida: %w", err)
	}
	return pdf, fmt.Sprintf("agenda_%s.pdf", now.Format("20060102")), nil
}

// ── helpers ───────────────────────────────────────────────────────────────────

func (uc *EventUseCase) load(ctx context.Context, id int64) (*entity.Event, *policy.Snapshot, error) {
	e, err := uc.events.GetByID(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("obtener evento: %w", err)
	}
	if e == nil {
		return nil, nil, domain.ErrNotFound
	}
	snap, err := uc.policy.Load(ctx)
	if err != nil {
		return nil, nil, err
	}
	return e, snap, nil
}

// writeStatus normaliza el estado pedido; vacío o desconocido es el inicial del tipo.
func (uc *EventUseCase) writeStatus(raw string, t entity.EventType) entity.Status {
	if strings.TrimSpace(raw) == "" {
		return workflow.InitialStatus(t)
	}
	s, known := workflow.Lookup(raw, t)
	if !known {
		uc.log.Info().Str("status", raw).Str("type", string(t)).Msg("estado desconocido, se usa el inicial")
		return workflow.InitialStatus(t)
	}
	return s
}

// stampCompletion fija o limpia la fecha de finalización de una actividad.
func (uc *EventUseCase) stampCompletion(e *entity.Event) {
	if e.Type != entity.EventActivity || e.Details.Activity == nil {
		return
	}
	d := *e.Details.Activity
	if e.Status == workflow.ActivityCompleted {
		if d.CompletedDate == nil {
			now := uc.now()
			d.CompletedDate = &now
		}
	} else {
		d.CompletedDate = nil
	}
	e.Details.Activity = &d
}

// conflictsFor reuniones existentes que se solapan con el candidato.
func (uc *EventUseCase) conflictsFor(ctx context.Context, c schedule.Candidate) ([]*entity.Event, error) {
	if c.Type != entity.EventMeeting {
		return []*entity.Event{}, nil
	}
	existing, err := uc.events.List(ctx, repository.EventFilter{
		Types: []entity.EventType{entity.EventMeeting},
		From:  c.Start,
		To:    c.End,
	})
	if err != nil {
		return nil, fmt.Errorf("consultar choques: %w", err)
	}
	return schedule.FindConflicts(c, existing), nil
}

// categoryOf id de la categoría cuyo primer alias es el tipo.
func categoryOf(t entity.EventType) string {
	for _, c := range visibility.Categories {
		if len(c.Aliases) > 0 && c.Aliases[0] == string(t) {
			return c.ID
		}
	}
	return ""
}

func (uc *EventUseCase) logConflicts(e *entity.Event, conflicts []*entity.Event) {
	if len(conflicts) == 0 {
		return
	}
	ids := make([]int64, 0, len(conflicts))
	for _, c := range conflicts {
		ids = append(ids, c.ID)
	}
	uc.log.Info().Int64("event_id", e.ID).Ints64("conflicts", ids).Msg("reunión con choque de horario")
}

func (uc *EventUseCase) deny(actor *access.Actor, op string, target int64) error {
	if actor == nil {
		return domain.ErrUnauthorized
	}
	uc.log.Warn().
		Int64("actor_id", actor.ID).
		Str("role", string(actor.Role)).
		Str("op", op).
		Int64("event_id", target).
		Msg("acceso denegado")
	return fmt.Errorf("%s: %w", op, domain.ErrForbidden)
}

func auditOf(actor *access.Actor, action string, id int64, detail string) *entity.AuditEntry {
	actorID := actor.ID
	entry := &entity.AuditEntry{ActorID: &actorID, Action: action, Entity: "event", Detail: detail}
	if id != 0 {
		entry.EntityID = &id
	}
	return entry
}

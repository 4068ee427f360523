package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Agenda-api/internal/application/agenda"
	"github.com/jhoicas/Agenda-api/internal/application/dto"
)

// EventHandler maneja los eventos de agenda (protegido).
type EventHandler struct {
	uc *agenda.EventUseCase
}

// NewEventHandler construye el handler.
func NewEventHandler(uc *agenda.EventUseCase) *EventHandler {
	return &EventHandler{uc: uc}
}

// List godoc
// @Summary      Eventos visibles para la sesión
// @Description  Sin showAll solo se listan eventos en que el usuario está involucrado.
// @Tags         events
// @Security     BearerAuth
// @Produce      json
// @Param        showAll     query  bool    false  "solo ADMIN"
// @Param        tab         query  string  false  "category | sector"
// @Param        categories  query  string  false  "reuniao,atividade,atividade-externa,documento"
// @Param        sector      query  int     false  "sector de primer nivel"
// @Param        subSectors  query  string  false  "ids separados por coma"
// @Param        from        query  string  false  "RFC3339 o YYYY-MM-DD"
// @Param        to          query  string  false  "RFC3339 o YYYY-MM-DD"
// @Success      200  {array}  dto.EventResponse
// @Router       /api/events [get]
func (h *EventHandler) List(c *fiber.Ctx) error {
	q, err := eventQuery(c)
	if err != nil {
		return invalidParams(c, err.Error())
	}
	out, err := h.uc.List(c.Context(), GetActor(c), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Board columnas kanban de los eventos visibles.
// GET /api/events/board
func (h *EventHandler) Board(c *fiber.Ctx) error {
	q, err := eventQuery(c)
	if err != nil {
		return invalidParams(c, err.Error())
	}
	out, err := h.uc.Board(c.Context(), GetActor(c), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Calendar entradas de calendario en [from, to].
// GET /api/events/calendar
func (h *EventHandler) Calendar(c *fiber.Ctx) error {
	q, err := eventQuery(c)
	if err != nil {
		return invalidParams(c, err.Error())
	}
	out, err := h.uc.Calendar(c.Context(), GetActor(c), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ExportPDF godoc
// @Summary      Agenda en PDF
// @Tags         events
// @Security     BearerAuth
// @Produce      application/pdf
// @Success      200  {file}  binary
// @Router       /api/events/export.pdf [get]
func (h *EventHandler) ExportPDF(c *fiber.Ctx) error {
	q, err := eventQuery(c)
	if err != nil {
		return invalidParams(c, err.Error())
	}
	data, name, err := h.uc.ExportPDF(c.Context(), GetActor(c), q)
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Attachment(name)
	return c.Send(data)
}

// GetByID obtiene un evento.
// GET /api/events/:id
func (h *EventHandler) GetByID(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return invalidParams(c, "id inválido")
	}
	out, err := h.uc.Get(c.Context(), GetActor(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Crear evento
// @Description  Devuelve el evento y las reuniones que chocan en horario (solo advertencia).
// @Tags         events
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.EventRequest  true  "evento"
// @Success      201  {object}  dto.EventMutationResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/events [post]
func (h *EventHandler) Create(c *fiber.Ctx) error {
	var in dto.EventRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Create(c.Context(), GetActor(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Update reemplaza los campos editables.
// PUT /api/events/:id
func (h *EventHandler) Update(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return invalidParams(c, "id inválido")
	}
	var in dto.EventRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Update(c.Context(), GetActor(c), id, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ChangeStatus mueve el evento de estado o de columna.
// PATCH /api/events/:id/status
func (h *EventHandler) ChangeStatus(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return invalidParams(c, "id inválido")
	}
	var in dto.StatusChangeRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.ChangeStatus(c.Context(), GetActor(c), id, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Delete elimina un evento.
// DELETE /api/events/:id
func (h *EventHandler) Delete(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return invalidParams(c, "id inválido")
	}
	if err := h.uc.Delete(c.Context(), GetActor(c), id); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// CheckConflicts consulta de choques antes de guardar.
// POST /api/events/conflicts
func (h *EventHandler) CheckConflicts(c *fiber.Ctx) error {
	var in dto.ConflictCheckRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.CheckConflicts(c.Context(), GetActor(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// EventTypes opciones de creación para la sesión.
// GET /api/event-types
func (h *EventHandler) EventTypes(c *fiber.Ctx) error {
	out, err := h.uc.EventTypes(c.Context(), GetActor(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

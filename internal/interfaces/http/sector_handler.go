package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Agenda-api/internal/application/dto"
	"github.com/jhoicas/Agenda-api/internal/application/usecase"
)

// SectorHandler maneja la jerarquía de sectores (protegido).
type SectorHandler struct {
	uc *usecase.SectorUseCase
}

// NewSectorHandler construye el handler.
func NewSectorHandler(uc *usecase.SectorUseCase) *SectorHandler {
	return &SectorHandler{uc: uc}
}

// List sectores visibles para la sesión.
// GET /api/sectors
func (h *SectorHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.Context(), GetActor(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Detalle de sector con gerente, miembros y sub-sectores
// @Tags         sectors
// @Security     BearerAuth
// @Produce      json
// @Param        id   path  int  true  "id del sector"
// @Success      200  {object}  dto.SectorDetailResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sectors/{id} [get]
func (h *SectorHandler) GetByID(c *fiber.Ctx) error {
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

// Accessible ids alcanzables por la sesión bajo el sector.
// GET /api/sectors/:id/accessible
func (h *SectorHandler) Accessible(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return invalidParams(c, "id inválido")
	}
	out, err := h.uc.Accessible(c.Context(), GetActor(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Create crea un sector.
// POST /api/sectors
func (h *SectorHandler) Create(c *fiber.Ctx) error {
	var in dto.SectorRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Create(c.Context(), GetActor(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Update actualiza un sector; cambiar el padre verifica ciclos.
// PUT /api/sectors/:id
func (h *SectorHandler) Update(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return invalidParams(c, "id inválido")
	}
	var in dto.SectorRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Update(c.Context(), GetActor(c), id, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Delete elimina un sector vacío.
// DELETE /api/sectors/:id
func (h *SectorHandler) Delete(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return invalidParams(c, "id inválido")
	}
	if err := h.uc.Delete(c.Context(), GetActor(c), id); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/litio-erp/internal/application/dto"
	"github.com/jhoicas/litio-erp/internal/application/usecase"
)

// AttendanceHandler registro de asistencia.
type AttendanceHandler struct {
	uc *usecase.AttendanceUseCase
}

// NewAttendanceHandler construye el handler.
func NewAttendanceHandler(uc *usecase.AttendanceUseCase) *AttendanceHandler {
	return &AttendanceHandler{uc: uc}
}

// List godoc
// @Summary      Listar asistencia
// @Tags         attendance
// @Security     Bearer
// @Produce      json
// @Param        userId  query  string  false  "Usuario"
// @Param        date    query  string  false  "Fecha exacta YYYY-MM-DD"
// @Param        from    query  string  false  "Desde YYYY-MM-DD"
// @Param        to      query  string  false  "Hasta YYYY-MM-DD"
// @Param        status  query  string  false  "present, late, absent"
// @Router       /api/attendance [get]
func (h *AttendanceHandler) List(c *fiber.Ctx) error {
	var f dto.AttendanceFilter
	if err := c.QueryParser(&f); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "filtros inválidos"})
	}
	items, err := h.uc.List(c.UserContext(), f)
	if err != nil {
		return writeError(c, err)
	}
	return listResponse(c, items)
}

// Summary conteos por estado y presentes de hoy.
func (h *AttendanceHandler) Summary(c *fiber.Ctx) error {
	s, err := h.uc.Summary(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(s)
}

// CheckIn godoc
// @Summary      Marcar entrada de hoy
// @Tags         attendance
// @Security     Bearer
// @Produce      json
// @Success      201  {object}  entity.AttendanceRecord
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/attendance/check-in [post]
func (h *AttendanceHandler) CheckIn(c *fiber.Ctx) error {
	rec, err := h.uc.CheckIn(c.UserContext(), GetSession(c).User)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(rec)
}

// CheckOut godoc
// @Summary      Marcar salida de hoy
// @Tags         attendance
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  entity.AttendanceRecord
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/attendance/check-out [post]
func (h *AttendanceHandler) CheckOut(c *fiber.Ctx) error {
	rec, err := h.uc.CheckOut(c.UserContext(), GetSession(c).User)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(rec)
}

func (h *AttendanceHandler) GetByID(c *fiber.Ctx) error {
	rec, err := h.uc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(rec)
}

// Create registro manual (admin+).
func (h *AttendanceHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateAttendanceRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	rec, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(rec)
}

func (h *AttendanceHandler) Update(c *fiber.Ctx) error {
	patch, ok := parsePatch(c)
	if !ok {
		return invalidBody(c)
	}
	rec, err := h.uc.Update(c.UserContext(), c.Params("id"), patch)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(rec)
}

func (h *AttendanceHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// WorkshopHandler órdenes de taller.
type WorkshopHandler struct {
	uc *usecase.WorkshopUseCase
}

// NewWorkshopHandler construye el handler.
func NewWorkshopHandler(uc *usecase.WorkshopUseCase) *WorkshopHandler {
	return &WorkshopHandler{uc: uc}
}

// List godoc
// @Summary      Listar órdenes de taller
// @Tags         workshop
// @Security     Bearer
// @Produce      json
// @Param        q           query  string  false  "Patente, cliente o descripción"
// @Param        status      query  string  false  "pending, in_progress, completed, cancelled"
// @Param        assignedTo  query  string  false  "Responsable"
// @Param        clientId    query  string  false  "Cliente"
// @Router       /api/workshop-orders [get]
func (h *WorkshopHandler) List(c *fiber.Ctx) error {
	var f dto.WorkshopFilter
	if err := c.QueryParser(&f); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "filtros inválidos"})
	}
	items, err := h.uc.List(c.UserContext(), f)
	if err != nil {
		return writeError(c, err)
	}
	return listResponse(c, items)
}

func (h *WorkshopHandler) GetByID(c *fiber.Ctx) error {
	o, err := h.uc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(o)
}

// Create godoc
// @Summary      Abrir orden de taller
// @Tags         workshop
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateWorkshopOrderRequest  true  "Vehículo, servicios y estimación"
// @Success      201   {object}  entity.WorkshopOrder
// @Router       /api/workshop-orders [post]
func (h *WorkshopHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateWorkshopOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if in.ReceivedBy == "" {
		in.ReceivedBy = GetUserID(c)
	}
	o, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(o)
}

func (h *WorkshopHandler) Update(c *fiber.Ctx) error {
	patch, ok := parsePatch(c)
	if !ok {
		return invalidBody(c)
	}
	o, err := h.uc.Update(c.UserContext(), c.Params("id"), patch)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(o)
}

// UpdateStatus godoc
// @Summary      Cambiar estado de la orden
// @Tags         workshop
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true  "ID de la orden"
// @Param        body  body  dto.WorkshopStatusRequest  true  "Estado y costo real"
// @Success      200   {object}  entity.WorkshopOrder
// @Router       /api/workshop-orders/{id}/status [patch]
func (h *WorkshopHandler) UpdateStatus(c *fiber.Ctx) error {
	var in dto.WorkshopStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	o, err := h.uc.UpdateStatus(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(o)
}

func (h *WorkshopHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

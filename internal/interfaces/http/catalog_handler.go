package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/litio-erp/internal/application/dto"
	"github.com/jhoicas/litio-erp/internal/application/usecase"
	"github.com/jhoicas/litio-erp/internal/domain/entity"
)

// ServiceHandler catálogo de servicios del taller.
type ServiceHandler struct {
	uc *usecase.ServiceUseCase
}

// NewServiceHandler construye el handler.
func NewServiceHandler(uc *usecase.ServiceUseCase) *ServiceHandler {
	return &ServiceHandler{uc: uc}
}

// List godoc
// @Summary      Listar servicios
// @Tags         services
// @Security     Bearer
// @Produce      json
// @Param        q         query  string  false  "Búsqueda"
// @Param        category  query  string  false  "Categoría"
// @Param        active    query  bool    false  "Solo activos"
// @Router       /api/services [get]
func (h *ServiceHandler) List(c *fiber.Ctx) error {
	var f dto.ServiceFilter
	if err := c.QueryParser(&f); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "filtros inválidos"})
	}
	items, err := h.uc.List(c.UserContext(), f)
	if err != nil {
		return writeError(c, err)
	}
	return listResponse(c, items)
}

func (h *ServiceHandler) GetByID(c *fiber.Ctx) error {
	s, err := h.uc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(s)
}

func (h *ServiceHandler) Create(c *fiber.Ctx) error {
	var in entity.Service
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	s, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(s)
}

func (h *ServiceHandler) Update(c *fiber.Ctx) error {
	patch, ok := parsePatch(c)
	if !ok {
		return invalidBody(c)
	}
	s, err := h.uc.Update(c.UserContext(), c.Params("id"), patch)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(s)
}

func (h *ServiceHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ClientHandler clientes de la empresa.
type ClientHandler struct {
	uc *usecase.ClientUseCase
}

// NewClientHandler construye el handler.
func NewClientHandler(uc *usecase.ClientUseCase) *ClientHandler {
	return &ClientHandler{uc: uc}
}

// List godoc
// @Summary      Listar clientes
// @Tags         clients
// @Security     Bearer
// @Produce      json
// @Param        q     query  string  false  "Nombre, email, teléfono o ciudad"
// @Param        city  query  string  false  "Ciudad"
// @Router       /api/clients [get]
func (h *ClientHandler) List(c *fiber.Ctx) error {
	var f dto.ClientFilter
	if err := c.QueryParser(&f); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "filtros inválidos"})
	}
	items, err := h.uc.List(c.UserContext(), f)
	if err != nil {
		return writeError(c, err)
	}
	return listResponse(c, items)
}

func (h *ClientHandler) GetByID(c *fiber.Ctx) error {
	cl, err := h.uc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(cl)
}

func (h *ClientHandler) Create(c *fiber.Ctx) error {
	var in entity.Client
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	cl, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(cl)
}

func (h *ClientHandler) Update(c *fiber.Ctx) error {
	patch, ok := parsePatch(c)
	if !ok {
		return invalidBody(c)
	}
	cl, err := h.uc.Update(c.UserContext(), c.Params("id"), patch)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(cl)
}

func (h *ClientHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// VehicleHandler vehículos de clientes.
type VehicleHandler struct {
	uc *usecase.VehicleUseCase
}

// NewVehicleHandler construye el handler.
func NewVehicleHandler(uc *usecase.VehicleUseCase) *VehicleHandler {
	return &VehicleHandler{uc: uc}
}

// List godoc
// @Summary      Listar vehículos
// @Tags         vehicles
// @Security     Bearer
// @Produce      json
// @Param        q         query  string  false  "Patente, marca, modelo, VIN o cliente"
// @Param        clientId  query  string  false  "Vehículos de un cliente"
// @Router       /api/vehicles [get]
func (h *VehicleHandler) List(c *fiber.Ctx) error {
	var f dto.VehicleFilter
	if err := c.QueryParser(&f); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "filtros inválidos"})
	}
	items, err := h.uc.List(c.UserContext(), f)
	if err != nil {
		return writeError(c, err)
	}
	return listResponse(c, items)
}

func (h *VehicleHandler) GetByID(c *fiber.Ctx) error {
	v, err := h.uc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(v)
}

func (h *VehicleHandler) Create(c *fiber.Ctx) error {
	var in entity.Vehicle
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	v, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(v)
}

func (h *VehicleHandler) Update(c *fiber.Ctx) error {
	patch, ok := parsePatch(c)
	if !ok {
		return invalidBody(c)
	}
	v, err := h.uc.Update(c.UserContext(), c.Params("id"), patch)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(v)
}

func (h *VehicleHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

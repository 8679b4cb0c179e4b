package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/litio-erp/internal/application/dto"
	"github.com/jhoicas/litio-erp/internal/application/inventory"
	"github.com/jhoicas/litio-erp/internal/application/usecase"
	"github.com/jhoicas/litio-erp/internal/domain/entity"
)

// InventoryHandler productos en bodega.
type InventoryHandler struct {
	uc            *usecase.InventoryUseCase
	replenishment *inventory.ReplenishmentUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *usecase.InventoryUseCase, replenishment *inventory.ReplenishmentUseCase) *InventoryHandler {
	return &InventoryHandler{uc: uc, replenishment: replenishment}
}

// stockAdjustment cuerpo de POST /api/inventory/:id/stock.
type stockAdjustment struct {
	Delta int `json:"delta"`
}

// List godoc
// @Summary      Listar inventario
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        q         query  string  false  "Búsqueda"
// @Param        category  query  string  false  "Categoría"
// @Param        lowStock  query  bool    false  "Solo stock bajo"
// @Param        limit     query  int     false  "Límite"
// @Param        offset    query  int     false  "Offset"
// @Success      200  {object}  dto.ListResponse[entity.InventoryItem]
// @Router       /api/inventory [get]
func (h *InventoryHandler) List(c *fiber.Ctx) error {
	var f dto.InventoryFilter
	if err := c.QueryParser(&f); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "filtros inválidos"})
	}
	items, err := h.uc.List(c.UserContext(), f)
	if err != nil {
		return writeError(c, err)
	}
	return listResponse(c, items)
}

// LowStock godoc
// @Summary      Productos con stock bajo
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  entity.InventoryItem
// @Router       /api/inventory/low-stock [get]
func (h *InventoryHandler) LowStock(c *fiber.Ctx) error {
	items, err := h.uc.LowStock(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(items)
}

// Categories devuelve las categorías usadas, sin repetir.
func (h *InventoryHandler) Categories(c *fiber.Ctx) error {
	cats, err := h.uc.Categories(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(cats)
}

// Replenishment godoc
// @Summary      Lista de reposición
// @Description  Productos bajo el mínimo con la cantidad sugerida, priorizados por ventas de los últimos 90 días.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.ReplenishmentSuggestion
// @Router       /api/inventory/replenishment [get]
func (h *InventoryHandler) Replenishment(c *fiber.Ctx) error {
	list, err := h.replenishment.GenerateReplenishmentList(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(list)
}

// GetByID godoc
// @Summary      Obtener producto
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  entity.InventoryItem
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/{id} [get]
func (h *InventoryHandler) GetByID(c *fiber.Ctx) error {
	item, err := h.uc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(item)
}

// Create godoc
// @Summary      Crear producto
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  entity.InventoryItem  true  "Datos del producto"
// @Success      201   {object}  entity.InventoryItem
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/inventory [post]
func (h *InventoryHandler) Create(c *fiber.Ctx) error {
	var in entity.InventoryItem
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	item, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

// Update godoc
// @Summary      Actualizar producto (parcial)
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del producto"
// @Success      200   {object}  entity.InventoryItem
// @Router       /api/inventory/{id} [put]
func (h *InventoryHandler) Update(c *fiber.Ctx) error {
	patch, ok := parsePatch(c)
	if !ok {
		return invalidBody(c)
	}
	item, err := h.uc.Update(c.UserContext(), c.Params("id"), patch)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(item)
}

// AdjustStock godoc
// @Summary      Ajustar stock (entrada o salida)
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del producto"
// @Success      200   {object}  entity.InventoryItem
// @Router       /api/inventory/{id}/stock [post]
func (h *InventoryHandler) AdjustStock(c *fiber.Ctx) error {
	var in stockAdjustment
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	item, err := h.uc.AdjustStock(c.UserContext(), c.Params("id"), in.Delta)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(item)
}

// Delete godoc
// @Summary      Eliminar producto
// @Tags         inventory
// @Security     Bearer
// @Param        id   path  string  true  "ID del producto"
// @Success      204
// @Router       /api/inventory/{id} [delete]
func (h *InventoryHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

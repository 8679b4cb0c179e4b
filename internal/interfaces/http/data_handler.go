package http

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/litio-erp/internal/application/analytics"
	"github.com/jhoicas/litio-erp/internal/application/backup"
	"github.com/jhoicas/litio-erp/internal/application/stats"
	"github.com/jhoicas/litio-erp/internal/application/usecase"
)

// SettingsHandler configuración de empresa.
type SettingsHandler struct {
	uc *usecase.SettingsUseCase
}

// NewSettingsHandler construye el handler.
func NewSettingsHandler(uc *usecase.SettingsUseCase) *SettingsHandler {
	return &SettingsHandler{uc: uc}
}

// Get godoc
// @Summary      Configuración
// @Tags         settings
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  entity.Settings
// @Router       /api/settings [get]
func (h *SettingsHandler) Get(c *fiber.Ctx) error {
	s, err := h.uc.Get(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(s)
}

// Update godoc
// @Summary      Actualizar configuración
// @Tags         settings
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Success      200  {object}  entity.Settings
// @Router       /api/settings [put]
func (h *SettingsHandler) Update(c *fiber.Ctx) error {
	patch, ok := parsePatch(c)
	if !ok {
		return invalidBody(c)
	}
	s, err := h.uc.Update(c.UserContext(), patch)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(s)
}

// DataHandler estadísticas y respaldo del almacén.
type DataHandler struct {
	backup *backup.UseCase
	stats  *stats.UseCase
}

// NewDataHandler construye el handler.
func NewDataHandler(b *backup.UseCase, s *stats.UseCase) *DataHandler {
	return &DataHandler{backup: b, stats: s}
}

// Stats godoc
// @Summary      Cantidad de registros por colección
// @Tags         data
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  map[string]int
// @Router       /api/data/stats [get]
func (h *DataHandler) Stats(c *fiber.Ctx) error {
	s, err := h.stats.Stats(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(s)
}

// Export godoc
// @Summary      Exportar respaldo JSON
// @Tags         data
// @Security     Bearer
// @Produce      json
// @Success      200  {file}  binary
// @Router       /api/data/export [get]
func (h *DataHandler) Export(c *fiber.Ctx) error {
	doc, err := h.backup.Export(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, backup.FileName(time.Now())))
	return c.Send(doc)
}

// Import godoc
// @Summary      Importar respaldo JSON
// @Description  Reemplaza cada colección presente en el documento. Se valida todo antes de escribir.
// @Tags         data
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]int
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/data/import [post]
func (h *DataHandler) Import(c *fiber.Ctx) error {
	res, err := h.backup.Import(c.UserContext(), c.Body())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"imported": res})
}

// Clear godoc
// @Summary      Borrar todos los datos
// @Tags         data
// @Security     Bearer
// @Success      204
// @Router       /api/data/clear [post]
func (h *DataHandler) Clear(c *fiber.Ctx) error {
	if err := h.backup.Clear(c.UserContext()); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// DashboardHandler indicadores del panel principal.
type DashboardHandler struct {
	uc *analytics.DashboardUseCase
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc *analytics.DashboardUseCase) *DashboardHandler {
	return &DashboardHandler{uc: uc}
}

// Summary godoc
// @Summary      Resumen del panel
// @Tags         dashboard
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.DashboardSummary
// @Router       /api/dashboard [get]
func (h *DashboardHandler) Summary(c *fiber.Ctx) error {
	s, err := h.uc.GetSummary(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(s)
}

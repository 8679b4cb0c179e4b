package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/litio-erp/internal/application/auth"
	"github.com/jhoicas/litio-erp/internal/application/dto"
	"github.com/jhoicas/litio-erp/internal/domain"
	"github.com/jhoicas/litio-erp/internal/domain/entity"
)

// UserHandler administración de usuarios (admin+).
type UserHandler struct {
	uc *auth.AuthUseCase
}

// NewUserHandler construye el handler.
func NewUserHandler(uc *auth.AuthUseCase) *UserHandler {
	return &UserHandler{uc: uc}
}

// List godoc
// @Summary      Listar usuarios
// @Tags         users
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ListResponse[entity.User]
// @Router       /api/users [get]
func (h *UserHandler) List(c *fiber.Ctx) error {
	users, err := h.uc.ListUsers(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return listResponse(c, users)
}

// GetByID godoc
// @Summary      Obtener usuario
// @Tags         users
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del usuario"
// @Success      200  {object}  entity.User
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/users/{id} [get]
func (h *UserHandler) GetByID(c *fiber.Ctx) error {
	u, err := h.uc.GetUserByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeUserError(c, err)
	}
	return c.JSON(u)
}

// Create godoc
// @Summary      Crear usuario
// @Tags         users
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateUserRequest  true  "Datos del usuario"
// @Success      201   {object}  entity.User
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/users [post]
func (h *UserHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateUserRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if !canGrant(c, in.Role) {
		return forbiddenGrant(c, in.Role)
	}
	u, err := h.uc.CreateUser(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(u)
}

// Update godoc
// @Summary      Actualizar usuario
// @Tags         users
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "ID del usuario"
// @Param        body  body  dto.UpdateUserRequest  true  "Campos a actualizar"
// @Success      200   {object}  entity.User
// @Router       /api/users/{id} [put]
func (h *UserHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateUserRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if in.Role != nil && !canGrant(c, *in.Role) {
		return forbiddenGrant(c, *in.Role)
	}
	if handled, err := h.guardTarget(c); handled {
		return err
	}
	u, err := h.uc.UpdateUser(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeUserError(c, err)
	}
	return c.JSON(u)
}

// Delete godoc
// @Summary      Eliminar usuario
// @Tags         users
// @Security     Bearer
// @Param        id   path  string  true  "ID del usuario"
// @Success      204
// @Router       /api/users/{id} [delete]
func (h *UserHandler) Delete(c *fiber.Ctx) error {
	if c.Params("id") == GetUserID(c) {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "SELF_DELETE", Message: "no puede eliminar su propio usuario"})
	}
	if handled, err := h.guardTarget(c); handled {
		return err
	}
	if err := h.uc.DeleteUser(c.UserContext(), c.Params("id")); err != nil {
		return writeUserError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// canGrant impide asignar un rol superior al de quien opera. Roles inválidos los rechaza el use case.
func canGrant(c *fiber.Ctx, role entity.Role) bool {
	if role == "" || !role.Valid() {
		return true
	}
	s := GetSession(c)
	return s != nil && s.Role.Satisfies(role)
}

// guardTarget carga el usuario de la ruta y corta con 403 si su rango supera al de quien opera.
// handled=true indica que la respuesta ya fue escrita.
func (h *UserHandler) guardTarget(c *fiber.Ctx) (handled bool, err error) {
	target, err := h.uc.GetUserByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return true, writeUserError(c, err)
	}
	s := GetSession(c)
	if s == nil || target.Role.Rank() > s.Role.Rank() {
		return true, c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "no puede modificar a un usuario de rango superior"})
	}
	return false, nil
}

func forbiddenGrant(c *fiber.Ctx, role entity.Role) error {
	return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "no puede asignar el rol " + string(role)})
}

// writeUserError en la administración ErrUserNotFound es 404, no un fallo de login.
func writeUserError(c *fiber.Ctx, err error) error {
	if errors.Is(err, domain.ErrUserNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
	}
	return writeError(c, err)
}

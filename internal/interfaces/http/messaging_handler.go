package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/litio-erp/internal/application/dto"
	"github.com/jhoicas/litio-erp/internal/application/usecase"
)

// NotificationHandler avisos del usuario autenticado.
type NotificationHandler struct {
	uc *usecase.NotificationUseCase
}

// NewNotificationHandler construye el handler.
func NewNotificationHandler(uc *usecase.NotificationUseCase) *NotificationHandler {
	return &NotificationHandler{uc: uc}
}

// List godoc
// @Summary      Mis notificaciones
// @Tags         notifications
// @Security     Bearer
// @Produce      json
// @Param        unread  query  bool  false  "Solo no leídas"
// @Success      200  {array}  entity.Notification
// @Router       /api/notifications [get]
func (h *NotificationHandler) List(c *fiber.Ctx) error {
	items, err := h.uc.ListForUser(c.UserContext(), GetUserID(c), c.QueryBool("unread", false))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(items)
}

// UnreadCount devuelve {"count": n}.
func (h *NotificationHandler) UnreadCount(c *fiber.Ctx) error {
	n, err := h.uc.UnreadCount(c.UserContext(), GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"count": n})
}

// Create aviso manual para cualquier usuario (admin+).
func (h *NotificationHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateNotificationRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	n, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(n)
}

func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	n, err := h.uc.MarkRead(c.UserContext(), GetUserID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(n)
}

func (h *NotificationHandler) MarkAllRead(c *fiber.Ctx) error {
	n, err := h.uc.MarkAllRead(c.UserContext(), GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"updated": n})
}

func (h *NotificationHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), GetUserID(c), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ChatHandler chat interno por polling.
type ChatHandler struct {
	uc *usecase.ChatUseCase
}

// NewChatHandler construye el handler.
func NewChatHandler(uc *usecase.ChatUseCase) *ChatHandler {
	return &ChatHandler{uc: uc}
}

// Messages godoc
// @Summary      Mensajes visibles
// @Tags         chat
// @Security     Bearer
// @Produce      json
// @Param        since  query  string  false  "RFC3339; solo mensajes posteriores"
// @Param        with   query  string  false  "Conversación directa con este usuario"
// @Success      200  {array}  entity.ChatMessage
// @Router       /api/chat/messages [get]
func (h *ChatHandler) Messages(c *fiber.Ctx) error {
	q := dto.ChatQuery{With: c.Query("with")}
	if raw := c.Query("since"); raw != "" {
		since, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "since debe ser RFC3339"})
		}
		q.Since = since
	}
	msgs, err := h.uc.Messages(c.UserContext(), GetUserID(c), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(msgs)
}

// Send godoc
// @Summary      Enviar mensaje
// @Tags         chat
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SendMessageRequest  true  "Mensaje; receiverId null = para todos"
// @Success      201   {object}  entity.ChatMessage
// @Router       /api/chat/messages [post]
func (h *ChatHandler) Send(c *fiber.Ctx) error {
	var in dto.SendMessageRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	msg, err := h.uc.Send(c.UserContext(), GetSession(c).User, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(msg)
}

// Users usuarios activos disponibles para conversar.
func (h *ChatHandler) Users(c *fiber.Ctx) error {
	users, err := h.uc.ChatUsers(c.UserContext(), GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(users)
}

package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/litio-erp/internal/application/dto"
	"github.com/jhoicas/litio-erp/internal/application/storage"
	"github.com/jhoicas/litio-erp/internal/domain"
	"github.com/jhoicas/litio-erp/internal/domain/entity"
	"github.com/jhoicas/litio-erp/internal/domain/repository"
	"github.com/jhoicas/litio-erp/pkg/logger"
)

// maxMessageLength largo máximo de un mensaje de chat.
const maxMessageLength = 2000

// ChatUseCase chat interno entre usuarios.
type ChatUseCase struct {
	messages *storage.Collection[entity.ChatMessage, *entity.ChatMessage]
	users    *storage.Collection[entity.User, *entity.User]
	now      func() time.Time
}

// NewChatUseCase construye el caso de uso.
func NewChatUseCase(store repository.RecordStore, log *logger.Logger) *ChatUseCase {
	return &ChatUseCase{
		messages: storage.NewCollection[entity.ChatMessage](store, storage.KeyChatMessages, log),
		users:    storage.NewCollection[entity.User](store, storage.KeyUsers, log),
		now:      time.Now,
	}
}

// Send publica un mensaje del remitente. ReceiverID nil lo envía a todos.
func (uc *ChatUseCase) Send(ctx context.Context, sender entity.User, in dto.SendMessageRequest) (*entity.ChatMessage, error) {
	text := strings.TrimSpace(in.Message)
	if text == "" {
		return nil, fmt.Errorf("%w: el mensaje está vacío", domain.ErrInvalidInput)
	}
	if len([]rune(text)) > maxMessageLength {
		return nil, fmt.Errorf("%w: el mensaje supera %d caracteres", domain.ErrInvalidInput, maxMessageLength)
	}
	var receiver *string
	if in.ReceiverID != nil && *in.ReceiverID != "" {
		if _, err := uc.users.Find(ctx, *in.ReceiverID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, fmt.Errorf("%w: destinatario %s no existe", domain.ErrInvalidInput, *in.ReceiverID)
			}
			return nil, err
		}
		id := *in.ReceiverID
		receiver = &id
	}
	created, err := uc.messages.Add(ctx, entity.ChatMessage{
		SenderID:   sender.ID,
		SenderName: sender.Name,
		SenderRole: sender.Role,
		ReceiverID: receiver,
		Message:    text,
		CreatedAt:  uc.now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// Messages mensajes visibles para userID en orden cronológico. Con q.With solo la conversación
// directa entre ambos; con q.Since solo los posteriores a esa marca.
func (uc *ChatUseCase) Messages(ctx context.Context, userID string, q dto.ChatQuery) ([]entity.ChatMessage, error) {
	return uc.messages.Filter(ctx, func(m entity.ChatMessage) bool {
		if !m.VisibleTo(userID) {
			return false
		}
		if !q.Since.IsZero() && !m.CreatedAt.After(q.Since) {
			return false
		}
		if q.With == "" {
			return true
		}
		if m.ReceiverID == nil {
			return false
		}
		return (m.SenderID == userID && *m.ReceiverID == q.With) ||
			(m.SenderID == q.With && *m.ReceiverID == userID)
	})
}

// ChatUsers usuarios activos con quienes se puede conversar, sin incluir a userID.
func (uc *ChatUseCase) ChatUsers(ctx context.Context, userID string) ([]entity.User, error) {
	return uc.users.Filter(ctx, func(u entity.User) bool {
		return u.ID != userID && u.IsActive()
	})
}

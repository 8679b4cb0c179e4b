package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/litio-erp/internal/application/dto"
	"github.com/jhoicas/litio-erp/internal/application/storage"
	"github.com/jhoicas/litio-erp/internal/domain"
	"github.com/jhoicas/litio-erp/internal/domain/entity"
	"github.com/jhoicas/litio-erp/internal/domain/repository"
	"github.com/jhoicas/litio-erp/pkg/logger"
)

// NotificationUseCase avisos por usuario.
type NotificationUseCase struct {
	notifications *storage.Collection[entity.Notification, *entity.Notification]
	now           func() time.Time
}

// NewNotificationUseCase construye el caso de uso.
func NewNotificationUseCase(store repository.RecordStore, log *logger.Logger) *NotificationUseCase {
	return &NotificationUseCase{
		notifications: storage.NewCollection[entity.Notification](store, storage.KeyNotifications, log),
		now:           time.Now,
	}
}

func validNotificationType(t string) bool {
	switch t {
	case entity.NotificationInfo, entity.NotificationSuccess, entity.NotificationWarning,
		entity.NotificationError, entity.NotificationOverdue, entity.NotificationDeadline:
		return true
	}
	return false
}

// Create registra una notificación no leída.
func (uc *NotificationUseCase) Create(ctx context.Context, in dto.CreateNotificationRequest) (*entity.Notification, error) {
	if err := requireText("userId", in.UserID); err != nil {
		return nil, err
	}
	if err := requireText("title", in.Title); err != nil {
		return nil, err
	}
	if in.Type == "" {
		in.Type = entity.NotificationInfo
	}
	if !validNotificationType(in.Type) {
		return nil, fmt.Errorf("%w: tipo %q", domain.ErrInvalidInput, in.Type)
	}
	created, err := uc.notifications.Add(ctx, entity.Notification{
		UserID:        in.UserID,
		Title:         in.Title,
		Message:       in.Message,
		Type:          in.Type,
		ReferenceType: in.ReferenceType,
		ReferenceID:   in.ReferenceID,
		CreatedAt:     uc.now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// ListForUser notificaciones del usuario, más recientes primero.
func (uc *NotificationUseCase) ListForUser(ctx context.Context, userID string, unreadOnly bool) ([]entity.Notification, error) {
	out, err := uc.notifications.Filter(ctx, func(n entity.Notification) bool {
		return n.UserID == userID && (!unreadOnly || !n.Read)
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// UnreadCount cantidad de notificaciones no leídas del usuario.
func (uc *NotificationUseCase) UnreadCount(ctx context.Context, userID string) (int, error) {
	unread, err := uc.ListForUser(ctx, userID, true)
	if err != nil {
		return 0, err
	}
	return len(unread), nil
}

// MarkRead marca como leída una notificación del usuario. ErrNotFound si es de otro.
func (uc *NotificationUseCase) MarkRead(ctx context.Context, userID, id string) (*entity.Notification, error) {
	updated, err := uc.notifications.Mutate(ctx, id, func(n *entity.Notification) error {
		if n.UserID != userID {
			return domain.ErrNotFound
		}
		n.Read = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// MarkAllRead marca como leídas todas las del usuario y devuelve cuántas cambiaron.
func (uc *NotificationUseCase) MarkAllRead(ctx context.Context, userID string) (int, error) {
	unread, err := uc.ListForUser(ctx, userID, true)
	if err != nil {
		return 0, err
	}
	for _, n := range unread {
		if _, err := uc.MarkRead(ctx, userID, n.ID); err != nil {
			return 0, err
		}
	}
	return len(unread), nil
}

// Delete elimina una notificación del usuario.
func (uc *NotificationUseCase) Delete(ctx context.Context, userID, id string) error {
	n, err := uc.notifications.Find(ctx, id)
	if err != nil {
		return err
	}
	if n.UserID != userID {
		return domain.ErrNotFound
	}
	return uc.notifications.Delete(ctx, id)
}

// Exists informa si el usuario ya tiene un aviso del tipo para la referencia.
func (uc *NotificationUseCase) Exists(ctx context.Context, userID, notificationType, referenceID string) (bool, error) {
	n, err := uc.notifications.First(ctx, func(n entity.Notification) bool {
		return n.UserID == userID && n.Type == notificationType && n.ReferenceID == referenceID
	})
	if err != nil {
		return false, err
	}
	return n != nil, nil
}

package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/litio-erp/internal/application/dto"
	"github.com/jhoicas/litio-erp/internal/application/storage"
	"github.com/jhoicas/litio-erp/internal/domain"
	"github.com/jhoicas/litio-erp/internal/domain/entity"
	"github.com/jhoicas/litio-erp/internal/domain/repository"
	"github.com/jhoicas/litio-erp/pkg/logger"
	"github.com/jhoicas/litio-erp/pkg/textfold"
)

// ClientUseCase cartera de clientes.
type ClientUseCase struct {
	clients *storage.Collection[entity.Client, *entity.Client]
	now     func() time.Time
}

// NewClientUseCase construye el caso de uso.
func NewClientUseCase(store repository.RecordStore, log *logger.Logger) *ClientUseCase {
	return &ClientUseCase{
		clients: storage.NewCollection[entity.Client](store, storage.KeyClients, log),
		now:     time.Now,
	}
}

// List busca por nombre, email, teléfono, ciudad o RFC.
func (uc *ClientUseCase) List(ctx context.Context, f dto.ClientFilter) ([]entity.Client, error) {
	return uc.clients.Filter(ctx, func(c entity.Client) bool {
		if f.City != "" && !textfold.Equal(c.City, f.City) {
			return false
		}
		return textfold.Contains(f.Query, c.Name, c.Email, c.Phone, c.City, c.RFC)
	})
}

// Get obtiene un cliente por id.
func (uc *ClientUseCase) Get(ctx context.Context, id string) (*entity.Client, error) {
	c, err := uc.clients.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create valida y persiste un cliente.
func (uc *ClientUseCase) Create(ctx context.Context, in entity.Client) (*entity.Client, error) {
	if err := requireText("name", in.Name); err != nil {
		return nil, err
	}
	if in.Email != "" && !strings.Contains(in.Email, "@") {
		return nil, fmt.Errorf("%w: email inválido", domain.ErrInvalidInput)
	}
	in.CreatedAt = uc.now().UTC()
	created, err := uc.clients.Add(ctx, in)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// Update mezcla patch sobre el cliente. Los nombres copiados en facturas y vehículos no se tocan.
func (uc *ClientUseCase) Update(ctx context.Context, id string, patch map[string]any) (*entity.Client, error) {
	updated, err := uc.clients.Update(ctx, id, withoutKeys(patch, "createdAt"))
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete elimina el cliente.
func (uc *ClientUseCase) Delete(ctx context.Context, id string) error {
	return uc.clients.Delete(ctx, id)
}

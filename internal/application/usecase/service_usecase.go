package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/litio-erp/internal/application/dto"
	"github.com/jhoicas/litio-erp/internal/application/storage"
	"github.com/jhoicas/litio-erp/internal/domain"
	"github.com/jhoicas/litio-erp/internal/domain/entity"
	"github.com/jhoicas/litio-erp/internal/domain/repository"
	"github.com/jhoicas/litio-erp/pkg/logger"
	"github.com/jhoicas/litio-erp/pkg/textfold"
)

// ServiceUseCase catálogo de servicios del taller.
type ServiceUseCase struct {
	services *storage.Collection[entity.Service, *entity.Service]
	now      func() time.Time
}

// NewServiceUseCase construye el caso de uso.
func NewServiceUseCase(store repository.RecordStore, log *logger.Logger) *ServiceUseCase {
	return &ServiceUseCase{
		services: storage.NewCollection[entity.Service](store, storage.KeyServices, log),
		now:      time.Now,
	}
}

// List filtra por texto, categoría y activos.
func (uc *ServiceUseCase) List(ctx context.Context, f dto.ServiceFilter) ([]entity.Service, error) {
	return uc.services.Filter(ctx, func(s entity.Service) bool {
		if f.ActiveOnly && !s.Active {
			return false
		}
		if f.Category != "" && !textfold.Equal(s.Category, f.Category) {
			return false
		}
		return textfold.Contains(f.Query, s.Name, s.Description, s.Category)
	})
}

// Get obtiene un servicio por id.
func (uc *ServiceUseCase) Get(ctx context.Context, id string) (*entity.Service, error) {
	s, err := uc.services.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Create valida y persiste un servicio.
func (uc *ServiceUseCase) Create(ctx context.Context, in entity.Service) (*entity.Service, error) {
	if err := requireText("name", in.Name); err != nil {
		return nil, err
	}
	if in.Price.IsNegative() || in.Duration < 0 {
		return nil, fmt.Errorf("%w: precio y duración no pueden ser negativos", domain.ErrInvalidInput)
	}
	in.CreatedAt = uc.now().UTC()
	created, err := uc.services.Add(ctx, in)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// Update mezcla patch sobre el servicio.
func (uc *ServiceUseCase) Update(ctx context.Context, id string, patch map[string]any) (*entity.Service, error) {
	updated, err := uc.services.Update(ctx, id, withoutKeys(patch, "createdAt"))
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete elimina el servicio (borrado físico).
func (uc *ServiceUseCase) Delete(ctx context.Context, id string) error {
	return uc.services.Delete(ctx, id)
}

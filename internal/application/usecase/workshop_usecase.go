package usecase

import (
	"context"
	"errors"
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

// WorkshopUseCase órdenes de trabajo del taller.
type WorkshopUseCase struct {
	orders   *storage.Collection[entity.WorkshopOrder, *entity.WorkshopOrder]
	vehicles *storage.Collection[entity.Vehicle, *entity.Vehicle]
	clients  *storage.Collection[entity.Client, *entity.Client]
	now      func() time.Time
}

// NewWorkshopUseCase construye el caso de uso.
func NewWorkshopUseCase(store repository.RecordStore, log *logger.Logger) *WorkshopUseCase {
	return &WorkshopUseCase{
		orders:   storage.NewCollection[entity.WorkshopOrder](store, storage.KeyWorkshopOrders, log),
		vehicles: storage.NewCollection[entity.Vehicle](store, storage.KeyVehicles, log),
		clients:  storage.NewCollection[entity.Client](store, storage.KeyClients, log),
		now:      time.Now,
	}
}

// List filtra por texto, estado, responsable y cliente.
func (uc *WorkshopUseCase) List(ctx context.Context, f dto.WorkshopFilter) ([]entity.WorkshopOrder, error) {
	return uc.orders.Filter(ctx, func(o entity.WorkshopOrder) bool {
		switch {
		case f.Status != "" && o.Status != f.Status,
			f.AssignedTo != "" && o.AssignedTo != f.AssignedTo,
			f.ClientID != "" && o.ClientID != f.ClientID:
			return false
		}
		return textfold.Contains(f.Query, o.VehiclePlates, o.ClientName, o.Description)
	})
}

// Open órdenes que no están completadas ni canceladas.
func (uc *WorkshopUseCase) Open(ctx context.Context) ([]entity.WorkshopOrder, error) {
	return uc.orders.Filter(ctx, func(o entity.WorkshopOrder) bool { return o.IsOpen() })
}

// Get obtiene una orden por id.
func (uc *WorkshopUseCase) Get(ctx context.Context, id string) (*entity.WorkshopOrder, error) {
	o, err := uc.orders.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// Create abre una orden en estado pending copiando patente y cliente del vehículo.
func (uc *WorkshopUseCase) Create(ctx context.Context, in dto.CreateWorkshopOrderRequest) (*entity.WorkshopOrder, error) {
	if err := requireText("vehicleId", in.VehicleID); err != nil {
		return nil, err
	}
	if err := validDate("estimatedCompletion", in.EstimatedCompletion); err != nil {
		return nil, err
	}
	if in.EstimatedCost.IsNegative() {
		return nil, fmt.Errorf("%w: estimatedCost no puede ser negativo", domain.ErrInvalidInput)
	}
	vehicle, err := uc.vehicles.Find(ctx, in.VehicleID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: vehículo %s no existe", domain.ErrInvalidInput, in.VehicleID)
		}
		return nil, err
	}
	clientID := in.ClientID
	if clientID == "" {
		clientID = vehicle.ClientID
	}
	clientName := vehicle.ClientName
	if clientID != "" {
		client, err := uc.clients.Find(ctx, clientID)
		switch {
		case err == nil:
			clientName = client.Name
		case errors.Is(err, domain.ErrNotFound):
			return nil, fmt.Errorf("%w: cliente %s no existe", domain.ErrInvalidInput, clientID)
		default:
			return nil, err
		}
	}
	services := in.Services
	if services == nil {
		services = []string{}
	}
	order := entity.WorkshopOrder{
		VehicleID:           vehicle.ID,
		VehiclePlates:       vehicle.Plates,
		ClientID:            clientID,
		ClientName:          clientName,
		Services:            services,
		Description:         in.Description,
		Status:              entity.WorkshopPending,
		AssignedTo:          in.AssignedTo,
		ReceivedBy:          in.ReceivedBy,
		EstimatedCost:       in.EstimatedCost,
		EstimatedCompletion: in.EstimatedCompletion,
		CreatedAt:           uc.now().UTC(),
	}
	created, err := uc.orders.Add(ctx, order)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// Update mezcla patch. El estado se cambia con UpdateStatus.
func (uc *WorkshopUseCase) Update(ctx context.Context, id string, patch map[string]any) (*entity.WorkshopOrder, error) {
	p := withoutKeys(patch, "createdAt", "startedAt", "completedAt", "status")
	if v, ok := p["estimatedCompletion"].(string); ok {
		if err := validDate("estimatedCompletion", v); err != nil {
			return nil, err
		}
	}
	updated, err := uc.orders.Update(ctx, id, p)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// UpdateStatus cambia el estado. Registra el inicio del trabajo al pasar a in_progress
// y la fecha y el costo real al completar.
func (uc *WorkshopUseCase) UpdateStatus(ctx context.Context, id string, in dto.WorkshopStatusRequest) (*entity.WorkshopOrder, error) {
	if !entity.ValidWorkshopStatus(in.Status) {
		return nil, fmt.Errorf("%w: estado %q", domain.ErrInvalidInput, in.Status)
	}
	if in.ActualCost != nil && in.ActualCost.IsNegative() {
		return nil, fmt.Errorf("%w: actualCost no puede ser negativo", domain.ErrInvalidInput)
	}
	now := uc.now().UTC()
	updated, err := uc.orders.Mutate(ctx, id, func(o *entity.WorkshopOrder) error {
		o.Status = in.Status
		if in.ActualCost != nil {
			cost := *in.ActualCost
			o.ActualCost = &cost
		}
		switch {
		case in.Status == entity.WorkshopPending:
			o.StartedAt = nil
		case in.Status == entity.WorkshopInProgress && o.StartedAt == nil:
			o.StartedAt = &now
		}
		if in.Status == entity.WorkshopCompleted {
			if o.CompletedAt == nil {
				o.CompletedAt = &now
			}
		} else {
			o.CompletedAt = nil
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete elimina la orden.
func (uc *WorkshopUseCase) Delete(ctx context.Context, id string) error {
	return uc.orders.Delete(ctx, id)
}

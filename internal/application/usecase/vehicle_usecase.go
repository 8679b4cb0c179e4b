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
	"github.com/jhoicas/litio-erp/pkg/textfold"
)

// VehicleUseCase vehículos de clientes.
type VehicleUseCase struct {
	vehicles *storage.Collection[entity.Vehicle, *entity.Vehicle]
	clients  *storage.Collection[entity.Client, *entity.Client]
	now      func() time.Time
}

// NewVehicleUseCase construye el caso de uso.
func NewVehicleUseCase(store repository.RecordStore, log *logger.Logger) *VehicleUseCase {
	return &VehicleUseCase{
		vehicles: storage.NewCollection[entity.Vehicle](store, storage.KeyVehicles, log),
		clients:  storage.NewCollection[entity.Client](store, storage.KeyClients, log),
		now:      time.Now,
	}
}

// List busca por patente, marca, modelo, VIN o cliente.
func (uc *VehicleUseCase) List(ctx context.Context, f dto.VehicleFilter) ([]entity.Vehicle, error) {
	return uc.vehicles.Filter(ctx, func(v entity.Vehicle) bool {
		if f.ClientID != "" && v.ClientID != f.ClientID {
			return false
		}
		return textfold.Contains(f.Query, v.Plates, v.Brand, v.Model, v.VIN, v.ClientName)
	})
}

// ByClient vehículos de un cliente.
func (uc *VehicleUseCase) ByClient(ctx context.Context, clientID string) ([]entity.Vehicle, error) {
	return uc.List(ctx, dto.VehicleFilter{ClientID: clientID})
}

// Get obtiene un vehículo por id.
func (uc *VehicleUseCase) Get(ctx context.Context, id string) (*entity.Vehicle, error) {
	v, err := uc.vehicles.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Create valida, copia el nombre del cliente y persiste el vehículo.
func (uc *VehicleUseCase) Create(ctx context.Context, in entity.Vehicle) (*entity.Vehicle, error) {
	if err := requireText("plates", in.Plates); err != nil {
		return nil, err
	}
	in.Plates = strings.ToUpper(strings.TrimSpace(in.Plates))
	if in.Year != 0 && (in.Year < 1900 || in.Year > uc.now().Year()+1) {
		return nil, fmt.Errorf("%w: año %d", domain.ErrInvalidInput, in.Year)
	}
	if in.ClientID != "" {
		name, err := uc.clientName(ctx, in.ClientID)
		if err != nil {
			return nil, err
		}
		in.ClientName = name
	}
	in.CreatedAt = uc.now().UTC()
	created, err := uc.vehicles.Add(ctx, in)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// Update mezcla patch; si cambia clientId se vuelve a copiar el nombre del cliente.
func (uc *VehicleUseCase) Update(ctx context.Context, id string, patch map[string]any) (*entity.Vehicle, error) {
	p := withoutKeys(patch, "createdAt")
	if clientID, ok := p["clientId"].(string); ok && clientID != "" {
		name, err := uc.clientName(ctx, clientID)
		if err != nil {
			return nil, err
		}
		p["clientName"] = name
	}
	updated, err := uc.vehicles.Update(ctx, id, p)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete elimina el vehículo.
func (uc *VehicleUseCase) Delete(ctx context.Context, id string) error {
	return uc.vehicles.Delete(ctx, id)
}

func (uc *VehicleUseCase) clientName(ctx context.Context, clientID string) (string, error) {
	c, err := uc.clients.Find(ctx, clientID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", fmt.Errorf("%w: cliente %s no existe", domain.ErrInvalidInput, clientID)
		}
		return "", err
	}
	return c.Name, nil
}

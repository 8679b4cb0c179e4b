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

// InventoryUseCase productos en bodega.
type InventoryUseCase struct {
	items *storage.Collection[entity.InventoryItem, *entity.InventoryItem]
	now   func() time.Time
}

// NewInventoryUseCase construye el caso de uso.
func NewInventoryUseCase(store repository.RecordStore, log *logger.Logger) *InventoryUseCase {
	return &InventoryUseCase{
		items: storage.NewCollection[entity.InventoryItem](store, storage.KeyInventory, log),
		now:   time.Now,
	}
}

// List filtra por texto (nombre, descripción, categoría, proveedor, SKU), categoría y stock bajo.
func (uc *InventoryUseCase) List(ctx context.Context, f dto.InventoryFilter) ([]entity.InventoryItem, error) {
	return uc.items.Filter(ctx, func(i entity.InventoryItem) bool {
		if f.Category != "" && !textfold.Equal(i.Category, f.Category) {
			return false
		}
		if f.LowStock && !i.IsLowStock() {
			return false
		}
		return textfold.Contains(f.Query, i.Name, i.Description, i.Category, i.Supplier, i.SKU)
	})
}

// LowStock productos con stock menor o igual al mínimo.
func (uc *InventoryUseCase) LowStock(ctx context.Context) ([]entity.InventoryItem, error) {
	return uc.List(ctx, dto.InventoryFilter{LowStock: true})
}

// Categories categorías en uso.
func (uc *InventoryUseCase) Categories(ctx context.Context) ([]string, error) {
	all, err := uc.items.Get(ctx)
	if err != nil {
		return nil, err
	}
	cats := make([]string, 0, len(all))
	for _, i := range all {
		cats = append(cats, i.Category)
	}
	return distinct(cats), nil
}

// Get obtiene un producto por id.
func (uc *InventoryUseCase) Get(ctx context.Context, id string) (*entity.InventoryItem, error) {
	item, err := uc.items.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// Create valida y persiste un producto nuevo.
func (uc *InventoryUseCase) Create(ctx context.Context, in entity.InventoryItem) (*entity.InventoryItem, error) {
	if err := requireText("name", in.Name); err != nil {
		return nil, err
	}
	if in.Stock < 0 || in.MinStock < 0 || in.Price.IsNegative() {
		return nil, fmt.Errorf("%w: precio y stock no pueden ser negativos", domain.ErrInvalidInput)
	}
	now := uc.now().UTC()
	in.CreatedAt, in.UpdatedAt = now, now
	created, err := uc.items.Add(ctx, in)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// Update mezcla patch sobre el producto y actualiza updatedAt.
func (uc *InventoryUseCase) Update(ctx context.Context, id string, patch map[string]any) (*entity.InventoryItem, error) {
	for _, k := range []string{"stock", "minStock"} {
		if n, ok := numeric(patch[k]); ok && n < 0 {
			return nil, fmt.Errorf("%w: %s no puede ser negativo", domain.ErrInvalidInput, k)
		}
	}
	if price, ok, err := decimalField(patch, "price"); err != nil {
		return nil, err
	} else if ok && price.IsNegative() {
		return nil, fmt.Errorf("%w: price no puede ser negativo", domain.ErrInvalidInput)
	}
	p := withoutKeys(patch, "createdAt")
	p["updatedAt"] = uc.now().UTC()
	updated, err := uc.items.Update(ctx, id, p)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// AdjustStock suma delta al stock. No permite quedar en negativo.
func (uc *InventoryUseCase) AdjustStock(ctx context.Context, id string, delta int) (*entity.InventoryItem, error) {
	updated, err := uc.items.Mutate(ctx, id, func(i *entity.InventoryItem) error {
		if i.Stock+delta < 0 {
			return fmt.Errorf("%w: stock insuficiente (%d)", domain.ErrInvalidInput, i.Stock)
		}
		i.Stock += delta
		i.UpdatedAt = uc.now().UTC()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete elimina el producto.
func (uc *InventoryUseCase) Delete(ctx context.Context, id string) error {
	return uc.items.Delete(ctx, id)
}

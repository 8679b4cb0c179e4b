// Package inventory calcula la lista de reposición de bodega.
package inventory

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/litio-erp/internal/application/dto"
	"github.com/jhoicas/litio-erp/internal/domain/entity"
	"github.com/jhoicas/litio-erp/pkg/textfold"
)

// salesWindowDays ventana de ventas considerada para priorizar.
const salesWindowDays = 90

// LowStockSource entrega los productos con stock bajo el mínimo.
type LowStockSource interface {
	LowStock(ctx context.Context) ([]entity.InventoryItem, error)
}

// SalesSource entrega las facturas emitidas.
type SalesSource interface {
	List(ctx context.Context, f dto.InvoiceFilter) ([]entity.Invoice, error)
}

// ReplenishmentUseCase genera la lista de reposición.
// Combina el stock con las unidades facturadas para priorizar los productos que más se venden.
type ReplenishmentUseCase struct {
	items LowStockSource
	sales SalesSource
	now   func() time.Time
}

// NewReplenishmentUseCase construye el caso de uso de reposición.
func NewReplenishmentUseCase(items LowStockSource, sales SalesSource) *ReplenishmentUseCase {
	return &ReplenishmentUseCase{items: items, sales: sales, now: time.Now}
}

// GenerateReplenishmentList devuelve los productos bajo el mínimo con la cantidad sugerida
// para volver a 1,5 veces el mínimo, ordenados por unidades vendidas en los últimos 90 días
// y luego por déficit.
func (uc *ReplenishmentUseCase) GenerateReplenishmentList(ctx context.Context) ([]dto.ReplenishmentSuggestion, error) {
	low, err := uc.items.LowStock(ctx)
	if err != nil {
		return nil, err
	}
	if len(low) == 0 {
		return []dto.ReplenishmentSuggestion{}, nil
	}

	sold, err := uc.unitsSold(ctx)
	if err != nil {
		return nil, err
	}

	suggestions := make([]dto.ReplenishmentSuggestion, 0, len(low))
	for _, item := range low {
		ideal := IdealStock(item.MinStock)
		qty := ideal - item.Stock
		if qty < 0 {
			qty = 0
		}
		units, ok := sold[textfold.Fold(item.Name)]
		if !ok {
			units = decimal.Zero
		}
		suggestions = append(suggestions, dto.ReplenishmentSuggestion{
			ItemID:            item.ID,
			SKU:               item.SKU,
			Name:              item.Name,
			Supplier:          item.Supplier,
			CurrentStock:      item.Stock,
			MinStock:          item.MinStock,
			IdealStock:        ideal,
			SuggestedOrderQty: qty,
			UnitPrice:         item.Price,
			EstimatedCost:     item.Price.Mul(decimal.NewFromInt(int64(qty))),
			UnitsSold:         units,
		})
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		if !a.UnitsSold.Equal(b.UnitsSold) {
			return a.UnitsSold.GreaterThan(b.UnitsSold)
		}
		// Desempate: mayor déficit bajo el mínimo
		return a.MinStock-a.CurrentStock > b.MinStock-b.CurrentStock
	})

	// Prioridad 1 = más urgente
	for i := range suggestions {
		suggestions[i].Priority = i + 1
	}
	return suggestions, nil
}

// IdealStock 1,5 veces el mínimo redondeado hacia arriba, siempre por encima del mínimo.
func IdealStock(minStock int) int {
	ideal := int(math.Ceil(float64(minStock) * 1.5))
	if ideal <= minStock {
		ideal = minStock + 1
	}
	return ideal
}

// unitsSold suma las cantidades facturadas (no borradores) por nombre de línea normalizado.
func (uc *ReplenishmentUseCase) unitsSold(ctx context.Context) (map[string]decimal.Decimal, error) {
	invoices, err := uc.sales.List(ctx, dto.InvoiceFilter{})
	if err != nil {
		return nil, err
	}
	since := uc.now().AddDate(0, 0, -salesWindowDays)
	out := make(map[string]decimal.Decimal)
	for _, inv := range invoices {
		if inv.Status == entity.InvoiceStatusDraft || inv.CreatedAt.Before(since) {
			continue
		}
		for _, line := range inv.Items {
			key := textfold.Fold(line.Name)
			out[key] = out[key].Add(line.Quantity)
		}
	}
	return out, nil
}

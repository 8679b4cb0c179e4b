package inventory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/litio-erp/internal/application/dto"
	"github.com/jhoicas/litio-erp/internal/domain/entity"
)

type fakeItems struct {
	items []entity.InventoryItem
	err   error
}

func (f fakeItems) LowStock(context.Context) ([]entity.InventoryItem, error) { return f.items, f.err }

type fakeSales []entity.Invoice

func (f fakeSales) List(context.Context, dto.InvoiceFilter) ([]entity.Invoice, error) { return f, nil }

var now = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

func sale(status string, created time.Time, name string, qty int64) entity.Invoice {
	return entity.Invoice{
		Status:    status,
		CreatedAt: created,
		Items:     []entity.InvoiceItem{{Name: name, Quantity: decimal.NewFromInt(qty)}},
	}
}

func TestIdealStock(t *testing.T) {
	assert.Equal(t, 1, IdealStock(0))
	assert.Equal(t, 2, IdealStock(1))
	assert.Equal(t, 8, IdealStock(5))
	assert.Equal(t, 15, IdealStock(10))
}

func TestGenerateReplenishmentList_PriorizaVentas(t *testing.T) {
	items := fakeItems{items: []entity.InventoryItem{
		{Base: entity.Base{ID: "a"}, Name: "Filtro de aceite", Price: decimal.NewFromInt(5000), Stock: 1, MinStock: 10},
		{Base: entity.Base{ID: "b"}, Name: "Batería 60Ah", Price: decimal.NewFromInt(45000), Stock: 2, MinStock: 4},
		{Base: entity.Base{ID: "c"}, Name: "Bujía", Price: decimal.NewFromInt(3000), Stock: 0, MinStock: 2},
	}}
	sales := fakeSales{
		sale(entity.InvoiceStatusPaid, now.AddDate(0, 0, -10), "BATERIA 60ah", 3),
		sale(entity.InvoiceStatusSent, now.AddDate(0, 0, -5), "Batería 60Ah", 2),
		sale(entity.InvoiceStatusDraft, now.AddDate(0, 0, -1), "Filtro de aceite", 50),
		sale(entity.InvoiceStatusPaid, now.AddDate(0, 0, -120), "Bujía", 40),
	}
	uc := NewReplenishmentUseCase(items, sales)
	uc.now = func() time.Time { return now }

	list, err := uc.GenerateReplenishmentList(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 3)

	assert.Equal(t, "b", list[0].ItemID, "la más vendida primero")
	assert.True(t, list[0].UnitsSold.Equal(decimal.NewFromInt(5)))
	assert.Equal(t, 6, list[0].IdealStock)
	assert.Equal(t, 4, list[0].SuggestedOrderQty)
	assert.True(t, list[0].EstimatedCost.Equal(decimal.NewFromInt(180000)))

	// Sin ventas válidas: borradores y fuera de ventana no cuentan; desempata el déficit.
	assert.Equal(t, "a", list[1].ItemID)
	assert.True(t, list[1].UnitsSold.IsZero())
	assert.Equal(t, 14, list[1].SuggestedOrderQty)
	assert.Equal(t, "c", list[2].ItemID)

	for i, s := range list {
		assert.Equal(t, i+1, s.Priority)
	}
}

func TestGenerateReplenishmentList_SinStockBajo(t *testing.T) {
	uc := NewReplenishmentUseCase(fakeItems{}, fakeSales{})
	list, err := uc.GenerateReplenishmentList(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestGenerateReplenishmentList_ErrorDelAlmacen(t *testing.T) {
	boom := errors.New("boom")
	uc := NewReplenishmentUseCase(fakeItems{err: boom}, fakeSales{})
	_, err := uc.GenerateReplenishmentList(context.Background())
	assert.ErrorIs(t, err, boom)
}

package dto

import "github.com/shopspring/decimal"

// InventoryFilter filtros del listado de inventario.
type InventoryFilter struct {
	Query    string `query:"q"`
	Category string `query:"category"`
	LowStock bool   `query:"lowStock"`
}

// ServiceFilter filtros del listado de servicios.
type ServiceFilter struct {
	Query      string `query:"q"`
	Category   string `query:"category"`
	ActiveOnly bool   `query:"active"`
}

// ClientFilter filtros del listado de clientes.
type ClientFilter struct {
	Query string `query:"q"`
	City  string `query:"city"`
}

// VehicleFilter filtros del listado de vehículos.
type VehicleFilter struct {
	Query    string `query:"q"`
	ClientID string `query:"clientId"`
}

// ReplenishmentSuggestion producto bajo el mínimo con la cantidad sugerida de pedido.
// Priority 1 es el más urgente.
type ReplenishmentSuggestion struct {
	ItemID            string          `json:"itemId"`
	SKU               string          `json:"sku,omitempty"`
	Name              string          `json:"name"`
	Supplier          string          `json:"supplier"`
	CurrentStock      int             `json:"currentStock"`
	MinStock          int             `json:"minStock"`
	IdealStock        int             `json:"idealStock"`
	SuggestedOrderQty int             `json:"suggestedOrderQty"`
	UnitPrice         decimal.Decimal `json:"unitPrice"`
	EstimatedCost     decimal.Decimal `json:"estimatedCost"`
	UnitsSold         decimal.Decimal `json:"unitsSoldLast90Days"`
	Priority          int             `json:"priority"`
}

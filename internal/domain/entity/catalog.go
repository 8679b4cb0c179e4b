package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventoryItem producto en bodega.
type InventoryItem struct {
	Base
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	MinStock    int             `json:"minStock"`
	Supplier    string          `json:"supplier"`
	SKU         string          `json:"sku,omitempty"`
	Location    string          `json:"location,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// IsLowStock informa si el stock llegó al mínimo configurado.
func (i *InventoryItem) IsLowStock() bool { return i.Stock <= i.MinStock }

// Service servicio ofrecido por el taller. Duration en minutos.
type Service struct {
	Base
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Duration    int             `json:"duration"`
	Active      bool            `json:"active"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// Client cliente de la empresa.
type Client struct {
	Base
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	City      string    `json:"city"`
	RFC       string    `json:"rfc,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Vehicle vehículo de un cliente. ClientName se copia del cliente.
type Vehicle struct {
	Base
	Brand      string    `json:"brand"`
	Model      string    `json:"model"`
	Year       int       `json:"year"`
	Plates     string    `json:"plates"`
	VIN        string    `json:"vin"`
	Color      string    `json:"color"`
	ClientID   string    `json:"clientId"`
	ClientName string    `json:"clientName"`
	CreatedAt  time.Time `json:"createdAt"`
}

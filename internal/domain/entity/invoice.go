package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una factura.
const (
	InvoiceStatusDraft   = "draft"
	InvoiceStatusSent    = "sent"
	InvoiceStatusPaid    = "paid"
	InvoiceStatusOverdue = "overdue"
)

// InvoiceItem línea de una factura. Name se copia del servicio/producto (sin FK).
type InvoiceItem struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Quantity decimal.Decimal `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Total    decimal.Decimal `json:"total"`
}

// Invoice representa una factura emitida a un cliente.
type Invoice struct {
	Base
	ClientID   string          `json:"clientId"`
	ClientName string          `json:"clientName"`
	Items      []InvoiceItem   `json:"items"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	Tax        decimal.Decimal `json:"tax"`
	Total      decimal.Decimal `json:"total"`
	Status     string          `json:"status"` // draft, sent, paid, overdue
	CreatedAt  time.Time       `json:"createdAt"`
	DueDate    string          `json:"dueDate"` // YYYY-MM-DD
}

// ValidInvoiceStatus informa si s es un estado de factura conocido.
func ValidInvoiceStatus(s string) bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusPaid, InvoiceStatusOverdue:
		return true
	}
	return false
}

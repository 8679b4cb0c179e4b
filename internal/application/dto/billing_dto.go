package dto

import "github.com/shopspring/decimal"

// InvoiceItemRequest línea de factura; el total se calcula en el use case.
type InvoiceItemRequest struct {
	Name     string          `json:"name"`
	Quantity decimal.Decimal `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// CreateInvoiceRequest entrada para crear una factura.
type CreateInvoiceRequest struct {
	ClientID string               `json:"clientId"`
	Items    []InvoiceItemRequest `json:"items"`
	Status   string               `json:"status"`
	DueDate  string               `json:"dueDate"` // YYYY-MM-DD
}

// UpdateInvoiceRequest edición de factura; si cambian los ítems se recalculan los totales.
type UpdateInvoiceRequest struct {
	ClientID *string              `json:"clientId"`
	Items    []InvoiceItemRequest `json:"items"`
	Status   *string              `json:"status"`
	DueDate  *string              `json:"dueDate"`
}

// InvoiceFilter filtros del listado de facturas.
type InvoiceFilter struct {
	Query    string `query:"q"`
	Status   string `query:"status"`
	ClientID string `query:"clientId"`
}

// InvoiceSummary totales del panel de facturas.
type InvoiceSummary struct {
	Total       int             `json:"total"`
	Pending     int             `json:"pending"` // draft + sent
	Paid        int             `json:"paid"`
	Overdue     int             `json:"overdue"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	PaidAmount  decimal.Decimal `json:"paidAmount"`
}

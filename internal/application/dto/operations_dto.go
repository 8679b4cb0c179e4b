package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateAttendanceRequest registro manual de asistencia.
type CreateAttendanceRequest struct {
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
	Date     string `json:"date"`     // YYYY-MM-DD
	CheckIn  string `json:"checkIn"`  // HH:MM
	CheckOut string `json:"checkOut"` // HH:MM
	Notes    string `json:"notes"`
}

// AttendanceFilter filtros del listado de asistencia.
type AttendanceFilter struct {
	UserID string `query:"userId"`
	Date   string `query:"date"`
	From   string `query:"from"`
	To     string `query:"to"`
	Status string `query:"status"`
	Query  string `query:"q"`
}

// AttendanceSummary conteos del panel de asistencia.
type AttendanceSummary struct {
	Total        int `json:"total"`
	Present      int `json:"present"`
	Late         int `json:"late"`
	Absent       int `json:"absent"`
	TodayPresent int `json:"todayPresent"`
}

// CreateWorkshopOrderRequest alta de orden de taller.
type CreateWorkshopOrderRequest struct {
	VehicleID           string          `json:"vehicleId"`
	ClientID            string          `json:"clientId"`
	Services            []string        `json:"services"`
	Description         string          `json:"description"`
	AssignedTo          string          `json:"assignedTo"`
	ReceivedBy          string          `json:"receivedBy"`
	EstimatedCost       decimal.Decimal `json:"estimatedCost"`
	EstimatedCompletion string          `json:"estimatedCompletion"`
}

// WorkshopStatusRequest cambio de estado de una orden.
type WorkshopStatusRequest struct {
	Status     string           `json:"status"`
	ActualCost *decimal.Decimal `json:"actualCost"`
}

// WorkshopFilter filtros del listado de órdenes.
type WorkshopFilter struct {
	Query      string `query:"q"`
	Status     string `query:"status"`
	AssignedTo string `query:"assignedTo"`
	ClientID   string `query:"clientId"`
}

// CreateNotificationRequest alta manual de notificación.
type CreateNotificationRequest struct {
	UserID        string `json:"userId"`
	Title         string `json:"title"`
	Message       string `json:"message"`
	Type          string `json:"type"`
	ReferenceType string `json:"referenceType"`
	ReferenceID   string `json:"referenceId"`
}

// SendMessageRequest mensaje de chat; ReceiverID nil = para todos.
type SendMessageRequest struct {
	ReceiverID *string `json:"receiverId"`
	Message    string  `json:"message"`
}

// ChatQuery consulta de mensajes para polling.
type ChatQuery struct {
	Since time.Time
	With  string // id del otro usuario; vacío = todos los visibles
}

// TopItem línea más vendida del mes.
type TopItem struct {
	Name     string          `json:"name"`
	Quantity decimal.Decimal `json:"quantity"`
	Revenue  decimal.Decimal `json:"revenue"`
}

// DashboardSummary indicadores del panel principal.
type DashboardSummary struct {
	TotalProducts    int             `json:"totalProducts"`
	LowStockProducts int             `json:"lowStockProducts"`
	ActiveOrders     int             `json:"activeOrders"`
	PendingInvoices  int             `json:"pendingInvoices"`
	TodayAttendance  int             `json:"todayAttendance"`
	TodaySales       decimal.Decimal `json:"todaySales"`
	MonthlySales     decimal.Decimal `json:"monthlySales"`
	TopItems         []TopItem       `json:"topItems"`
	DateLabel        string          `json:"dateLabel"`
}

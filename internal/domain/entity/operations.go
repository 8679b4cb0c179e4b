package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de asistencia.
const (
	AttendancePresent = "present"
	AttendanceAbsent  = "absent"
	AttendanceLate    = "late"
)

// AttendanceRecord registro diario de asistencia. Date en YYYY-MM-DD, horas en HH:MM.
type AttendanceRecord struct {
	Base
	UserID   string   `json:"userId"`
	UserName string   `json:"userName"`
	Date     string   `json:"date"`
	CheckIn  string   `json:"checkIn"`
	CheckOut string   `json:"checkOut,omitempty"`
	Hours    *float64 `json:"hours,omitempty"`
	Status   string   `json:"status"`
	Notes    string   `json:"notes,omitempty"`
}

// Estados de una orden de taller.
const (
	WorkshopPending    = "pending"
	WorkshopInProgress = "in_progress"
	WorkshopCompleted  = "completed"
	WorkshopCancelled  = "cancelled"
)

// ValidWorkshopStatus informa si s es un estado de orden conocido.
func ValidWorkshopStatus(s string) bool {
	switch s {
	case WorkshopPending, WorkshopInProgress, WorkshopCompleted, WorkshopCancelled:
		return true
	}
	return false
}

// WorkshopOrder orden de trabajo del taller sobre un vehículo.
type WorkshopOrder struct {
	Base
	VehicleID           string           `json:"vehicleId"`
	VehiclePlates       string           `json:"vehiclePlates"`
	ClientID            string           `json:"clientId"`
	ClientName          string           `json:"clientName"`
	Services            []string         `json:"services"`
	Description         string           `json:"description"`
	Status              string           `json:"status"`
	AssignedTo          string           `json:"assignedTo,omitempty"` // id de usuario
	ReceivedBy          string           `json:"receivedBy,omitempty"` // id de quien recibió el vehículo
	EstimatedCost       decimal.Decimal  `json:"estimatedCost"`
	ActualCost          *decimal.Decimal `json:"actualCost,omitempty"`
	EstimatedCompletion string           `json:"estimatedCompletion,omitempty"` // YYYY-MM-DD
	CreatedAt           time.Time        `json:"createdAt"`
	StartedAt           *time.Time       `json:"startedAt,omitempty"` // primer paso a in_progress
	CompletedAt         *time.Time       `json:"completedAt,omitempty"`
}

// IsOpen informa si la orden sigue en curso.
func (o *WorkshopOrder) IsOpen() bool {
	return o.Status != WorkshopCompleted && o.Status != WorkshopCancelled
}

// Tipos de notificación.
const (
	NotificationInfo     = "info"
	NotificationSuccess  = "success"
	NotificationWarning  = "warning"
	NotificationError    = "error"
	NotificationOverdue  = "overdue"
	NotificationDeadline = "deadline"
)

// Notification aviso dirigido a un usuario.
type Notification struct {
	Base
	UserID        string    `json:"userId"`
	Title         string    `json:"title"`
	Message       string    `json:"message"`
	Type          string    `json:"type"`
	ReferenceType string    `json:"referenceType,omitempty"`
	ReferenceID   string    `json:"referenceId,omitempty"`
	Read          bool      `json:"read"`
	CreatedAt     time.Time `json:"createdAt"`
}

// ChatMessage mensaje del chat interno. ReceiverID nil = mensaje para todos.
type ChatMessage struct {
	Base
	SenderID   string    `json:"senderId"`
	SenderName string    `json:"senderName"`
	SenderRole Role      `json:"senderRole"`
	ReceiverID *string   `json:"receiverId"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"createdAt"`
}

// VisibleTo informa si el mensaje lo puede leer el usuario indicado.
func (m *ChatMessage) VisibleTo(userID string) bool {
	return m.ReceiverID == nil || *m.ReceiverID == userID || m.SenderID == userID
}

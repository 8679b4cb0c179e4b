package entity

import "time"

// SettingsID id fijo del único registro de configuración.
const SettingsID = "1"

// Settings configuración de empresa y sistema. Registro único (primer elemento de su colección);
// conserva los nombres snake_case del formato persistido.
type Settings struct {
	Base
	CompanyName          string    `json:"company_name"`
	CompanyAddress       string    `json:"company_address"`
	CompanyPhone         string    `json:"company_phone"`
	CompanyEmail         string    `json:"company_email"`
	Currency             string    `json:"currency"`
	Timezone             string    `json:"timezone"`
	Language             string    `json:"language"`
	Theme                string    `json:"theme"`
	NotificationsEnabled bool      `json:"notifications_enabled"`
	EmailNotifications   bool      `json:"email_notifications"`
	BackupEnabled        bool      `json:"backup_enabled"`
	BackupFrequency      string    `json:"backup_frequency"`
	MaxFileSize          int       `json:"max_file_size"`   // MB
	SessionTimeout       int       `json:"session_timeout"` // minutos
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// DefaultSettings configuración inicial creada en la primera lectura.
func DefaultSettings(now time.Time) Settings {
	return Settings{
		Base:                 Base{ID: SettingsID},
		CompanyName:          "Litio Service SpA",
		CompanyAddress:       "Av. Providencia 1234, Santiago, Chile",
		CompanyPhone:         "+56 2 2345 6789",
		CompanyEmail:         "contacto@litioservice.cl",
		Currency:             "CLP",
		Timezone:             "America/Santiago",
		Language:             "es",
		Theme:                "light",
		NotificationsEnabled: true,
		EmailNotifications:   true,
		BackupEnabled:        true,
		BackupFrequency:      "daily",
		MaxFileSize:          10,
		SessionTimeout:       60,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
}

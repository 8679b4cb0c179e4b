// Package storage expone colecciones tipadas sobre el puerto RecordStore y el catálogo
// de claves persistidas.
package storage

// Key describe una colección persistida.
type Key struct {
	Name        string // clave en el almacén
	ExportField string // campo en el documento de respaldo; vacío si no se exporta
	Counted     bool   // entra en las estadísticas
}

// Exported informa si la colección forma parte del respaldo.
func (k Key) Exported() bool { return k.ExportField != "" }

func (k Key) String() string { return k.Name }

var (
	KeyUsers          = Key{Name: "litio_erp_users", ExportField: "users", Counted: true}
	KeyInventory      = Key{Name: "litio_erp_inventory", ExportField: "inventory", Counted: true}
	KeyServices       = Key{Name: "litio_erp_services", ExportField: "services", Counted: true}
	KeyClients        = Key{Name: "litio_erp_clients", ExportField: "clients", Counted: true}
	KeyInvoices       = Key{Name: "litio_erp_invoices", ExportField: "invoices", Counted: true}
	KeyVehicles       = Key{Name: "litio_erp_vehicles", ExportField: "vehicles", Counted: true}
	KeyAttendance     = Key{Name: "litio_erp_attendance", ExportField: "attendance", Counted: true}
	KeyWorkshopOrders = Key{Name: "litio_erp_workshop_orders", ExportField: "workshopOrders", Counted: true}
	KeySettings       = Key{Name: "litio_erp_settings", ExportField: "settings"}
	KeyNotifications  = Key{Name: "litio_erp_notifications", ExportField: "notifications", Counted: true}
	KeyChatMessages   = Key{Name: "litio_erp_chat_messages", ExportField: "chatMessages", Counted: true}

	// Nunca salen del almacén.
	KeyCredentials = Key{Name: "litio_erp_passwords"}
	KeySessions    = Key{Name: "litio_erp_current_user"}
)

var allKeys = []Key{
	KeyUsers, KeyInventory, KeyServices, KeyClients, KeyInvoices, KeyVehicles, KeyAttendance,
	KeyWorkshopOrders, KeySettings, KeyNotifications, KeyChatMessages, KeyCredentials, KeySessions,
}

// AllKeys devuelve todas las claves conocidas en orden estable.
func AllKeys() []Key {
	out := make([]Key, len(allKeys))
	copy(out, allKeys)
	return out
}

// ExportedKeys devuelve las claves incluidas en el respaldo, en el orden del documento.
func ExportedKeys() []Key {
	return filterKeys(func(k Key) bool { return k.Exported() })
}

// CountedKeys devuelve las claves que cuentan en las estadísticas.
func CountedKeys() []Key {
	return filterKeys(func(k Key) bool { return k.Counted })
}

func filterKeys(keep func(Key) bool) []Key {
	var out []Key
	for _, k := range allKeys {
		if keep(k) {
			out = append(out, k)
		}
	}
	return out
}

package entity

// Base es el campo común de todo registro de una colección.
// Se embebe en cada entidad para que el id serialice como "id" al inicio del JSON.
type Base struct {
	ID string `json:"id"`
}

// GetID devuelve el identificador del registro.
func (b *Base) GetID() string { return b.ID }

// SetID asigna el identificador del registro.
func (b *Base) SetID(id string) { b.ID = id }

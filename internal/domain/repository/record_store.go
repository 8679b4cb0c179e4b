package repository

import (
	"context"
	"encoding/json"
)

// Record registro persistido de una colección. Body es el JSON compacto del registro, guardado
// tal cual; Seq conserva el orden de inserción y Version habilita la concurrencia optimista.
type Record struct {
	ID      string
	Seq     int64
	Version int64
	Body    json.RawMessage
}

// RecordInput registro a escribir en un reemplazo completo de colección.
type RecordInput struct {
	ID   string
	Body json.RawMessage
}

// RecordStore define el puerto de persistencia por registro (DIP). Cada colección es un conjunto
// de registros direccionables por id. Una colección puede estar ausente (nunca escrita o eliminada)
// o presente y vacía.
type RecordStore interface {
	// List devuelve los registros ordenados por inserción. Colección ausente => slice vacío.
	List(ctx context.Context, collection string) ([]Record, error)
	// Get devuelve el registro o nil si no existe.
	Get(ctx context.Context, collection, id string) (*Record, error)
	// Insert crea el registro con Version 1. domain.ErrDuplicate si el id ya existe.
	Insert(ctx context.Context, collection, id string, body json.RawMessage) (*Record, error)
	// Update reemplaza el cuerpo si la versión almacenada es expectedVersion.
	// domain.ErrNotFound si no existe, domain.ErrConflict si la versión cambió.
	Update(ctx context.Context, collection, id string, body json.RawMessage, expectedVersion int64) (*Record, error)
	// Delete elimina el registro e informa si existía.
	Delete(ctx context.Context, collection, id string) (bool, error)
	// Replace sobrescribe la colección completa y la marca como presente.
	Replace(ctx context.Context, collection string, records []RecordInput) error
	// Drop elimina la colección completa (queda ausente).
	Drop(ctx context.Context, collection string) error
	// Exists informa si la colección está presente.
	Exists(ctx context.Context, collection string) (bool, error)
	// Count devuelve la cantidad de registros.
	Count(ctx context.Context, collection string) (int, error)
}

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jhoicas/litio-erp/internal/domain"
	"github.com/jhoicas/litio-erp/internal/domain/repository"
	"github.com/jhoicas/litio-erp/pkg/logger"
)

// maxWriteAttempts reintentos de lectura-modificación-escritura ante ErrConflict.
const maxWriteAttempts = 3

// Record restringe T a entidades con id (las que embeben entity.Base).
type Record[T any] interface {
	*T
	GetID() string
	SetID(string)
}

// Collection colección tipada sobre el almacén de registros.
//
//	services := storage.NewCollection[entity.Service](store, storage.KeyServices, log)
type Collection[T any, PT Record[T]] struct {
	store repository.RecordStore
	key   Key
	log   *logger.Logger
}

// NewCollection construye la colección para key.
func NewCollection[T any, PT Record[T]](store repository.RecordStore, key Key, log *logger.Logger) *Collection[T, PT] {
	if log == nil {
		log = logger.Nop()
	}
	return &Collection[T, PT]{store: store, key: key, log: log}
}

// Key devuelve la clave de la colección.
func (c *Collection[T, PT]) Key() Key { return c.key }

// Get devuelve todos los elementos en orden de inserción. Colección ausente => slice vacío.
func (c *Collection[T, PT]) Get(ctx context.Context) ([]T, error) {
	recs, err := c.store.List(ctx, c.key.Name)
	if err != nil {
		return nil, c.storeErr("list", err)
	}
	out := make([]T, 0, len(recs))
	for _, r := range recs {
		item, err := c.decode(r)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

// Set sobrescribe la colección completa. Los elementos sin id reciben uno nuevo.
func (c *Collection[T, PT]) Set(ctx context.Context, items []T) error {
	inputs := make([]repository.RecordInput, 0, len(items))
	for i := range items {
		p := PT(&items[i])
		if p.GetID() == "" {
			p.SetID(uuid.NewString())
		}
		body, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
		inputs = append(inputs, repository.RecordInput{ID: p.GetID(), Body: body})
	}
	if err := c.store.Replace(ctx, c.key.Name, inputs); err != nil {
		return c.storeErr("replace", err)
	}
	return nil
}

// Add asigna un id nuevo al elemento, lo inserta y lo devuelve.
func (c *Collection[T, PT]) Add(ctx context.Context, item T) (T, error) {
	PT(&item).SetID(uuid.NewString())
	return c.insert(ctx, item)
}

// Insert inserta el elemento con el id que ya trae. ErrDuplicate si el id existe.
func (c *Collection[T, PT]) Insert(ctx context.Context, item T) (T, error) {
	if PT(&item).GetID() == "" {
		var zero T
		return zero, fmt.Errorf("%w: id vacío", domain.ErrInvalidInput)
	}
	return c.insert(ctx, item)
}

func (c *Collection[T, PT]) insert(ctx context.Context, item T) (T, error) {
	var zero T
	p := PT(&item)
	body, err := json.Marshal(p)
	if err != nil {
		return zero, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if _, err := c.store.Insert(ctx, c.key.Name, p.GetID(), body); err != nil {
		return zero, c.storeErr("insert", err)
	}
	return item, nil
}

// Put inserta o reemplaza el elemento con su id.
func (c *Collection[T, PT]) Put(ctx context.Context, item T) error {
	p := PT(&item)
	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		rec, err := c.store.Get(ctx, c.key.Name, p.GetID())
		if err != nil {
			return c.storeErr("get", err)
		}
		if rec == nil {
			_, err = c.store.Insert(ctx, c.key.Name, p.GetID(), body)
		} else {
			_, err = c.store.Update(ctx, c.key.Name, p.GetID(), body, rec.Version)
		}
		if errors.Is(err, domain.ErrConflict) || errors.Is(err, domain.ErrDuplicate) || errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return c.storeErr("put", err)
		}
		return nil
	}
	return c.exhausted(p.GetID())
}

// Find devuelve el elemento con id. ErrNotFound si no existe.
func (c *Collection[T, PT]) Find(ctx context.Context, id string) (T, error) {
	var zero T
	rec, err := c.store.Get(ctx, c.key.Name, id)
	if err != nil {
		return zero, c.storeErr("get", err)
	}
	if rec == nil {
		return zero, domain.ErrNotFound
	}
	return c.decode(*rec)
}

// Filter devuelve los elementos que cumplen keep, en orden de inserción.
func (c *Collection[T, PT]) Filter(ctx context.Context, keep func(T) bool) ([]T, error) {
	all, err := c.Get(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(all))
	for _, item := range all {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out, nil
}

// First devuelve el primer elemento que cumple match, o nil.
func (c *Collection[T, PT]) First(ctx context.Context, match func(T) bool) (*T, error) {
	all, err := c.Get(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if match(all[i]) {
			return &all[i], nil
		}
	}
	return nil, nil
}

// Update mezcla superficialmente patch sobre el registro almacenado ({...viejo, ...patch}).
// El id se conserva. ErrNotFound si no existe.
func (c *Collection[T, PT]) Update(ctx context.Context, id string, patch any) (T, error) {
	var zero T
	raw, err := json.Marshal(patch)
	if err != nil {
		return zero, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return zero, fmt.Errorf("%w: el patch debe ser un objeto JSON", domain.ErrInvalidInput)
	}
	return c.rewrite(ctx, id, func(rec repository.Record) (json.RawMessage, error) {
		var merged map[string]json.RawMessage
		if err := json.Unmarshal(rec.Body, &merged); err != nil || merged == nil {
			return nil, c.corrupt(rec.ID, err)
		}
		for k, v := range fields {
			merged[k] = v
		}
		idJSON, _ := json.Marshal(id)
		merged["id"] = idJSON
		body, err := json.Marshal(merged)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
		var probe T
		if err := json.Unmarshal(body, &probe); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
		return body, nil
	})
}

// Mutate aplica fn sobre el elemento decodificado y lo guarda. ErrNotFound si no existe.
func (c *Collection[T, PT]) Mutate(ctx context.Context, id string, fn func(*T) error) (T, error) {
	return c.rewrite(ctx, id, func(rec repository.Record) (json.RawMessage, error) {
		item, err := c.decode(rec)
		if err != nil {
			return nil, err
		}
		if err := fn(&item); err != nil {
			return nil, err
		}
		PT(&item).SetID(id)
		body, err := json.Marshal(PT(&item))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
		return body, nil
	})
}

// rewrite ciclo leer-modificar-escribir guardado por la versión del registro.
func (c *Collection[T, PT]) rewrite(ctx context.Context, id string, build func(repository.Record) (json.RawMessage, error)) (T, error) {
	var zero T
	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		rec, err := c.store.Get(ctx, c.key.Name, id)
		if err != nil {
			return zero, c.storeErr("get", err)
		}
		if rec == nil {
			return zero, domain.ErrNotFound
		}
		body, err := build(*rec)
		if err != nil {
			return zero, err
		}
		updated, err := c.store.Update(ctx, c.key.Name, id, body, rec.Version)
		if errors.Is(err, domain.ErrConflict) {
			c.log.Debug().Str("collection", c.key.Name).Str("id", id).Int("attempt", attempt+1).Msg("conflicto de versión, reintentando")
			continue
		}
		if err != nil {
			return zero, c.storeErr("update", err)
		}
		return c.decode(*updated)
	}
	return zero, c.exhausted(id)
}

// Delete elimina el elemento. ErrNotFound si no había nada que eliminar.
func (c *Collection[T, PT]) Delete(ctx context.Context, id string) error {
	removed, err := c.store.Delete(ctx, c.key.Name, id)
	if err != nil {
		return c.storeErr("delete", err)
	}
	if !removed {
		return domain.ErrNotFound
	}
	return nil
}

// Count devuelve la cantidad de elementos.
func (c *Collection[T, PT]) Count(ctx context.Context) (int, error) {
	n, err := c.store.Count(ctx, c.key.Name)
	if err != nil {
		return 0, c.storeErr("count", err)
	}
	return n, nil
}

// Exists informa si la colección está presente (aunque esté vacía).
func (c *Collection[T, PT]) Exists(ctx context.Context) (bool, error) {
	ok, err := c.store.Exists(ctx, c.key.Name)
	if err != nil {
		return false, c.storeErr("exists", err)
	}
	return ok, nil
}

func (c *Collection[T, PT]) decode(rec repository.Record) (T, error) {
	var item T
	if err := json.Unmarshal(rec.Body, &item); err != nil {
		return item, c.corrupt(rec.ID, err)
	}
	if PT(&item).GetID() == "" {
		PT(&item).SetID(rec.ID)
	}
	return item, nil
}

func (c *Collection[T, PT]) corrupt(id string, err error) error {
	c.log.Error().Err(err).Str("collection", c.key.Name).Str("id", id).Msg("registro ilegible")
	return fmt.Errorf("%w: %s/%s", domain.ErrCorruptData, c.key.Name, id)
}

func (c *Collection[T, PT]) exhausted(id string) error {
	c.log.Warn().Str("collection", c.key.Name).Str("id", id).Msg("reintentos agotados por escrituras concurrentes")
	return fmt.Errorf("%w: %s/%s", domain.ErrConflict, c.key.Name, id)
}

// storeErr deja pasar los errores de dominio del almacén y envuelve el resto como ErrStorageUnavailable.
func (c *Collection[T, PT]) storeErr(op string, err error) error {
	for _, known := range []error{domain.ErrNotFound, domain.ErrDuplicate, domain.ErrConflict} {
		if errors.Is(err, known) {
			return err
		}
	}
	c.log.Error().Err(err).Str("collection", c.key.Name).Str("op", op).Msg("fallo del almacén")
	return fmt.Errorf("%w: %s %s: %v", domain.ErrStorageUnavailable, op, c.key.Name, err)
}

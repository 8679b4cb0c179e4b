// Package memory implementa el almacén de registros en memoria, usado en tests,
// en la CLI contra respaldos y en despliegues efímeros (STORE_DRIVER=memory).
package memory

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/jhoicas/litio-erp/internal/domain"
	"github.com/jhoicas/litio-erp/internal/domain/repository"
)

var _ repository.RecordStore = (*RecordStore)(nil)

type collection struct {
	records map[string]repository.Record
}

// RecordStore almacén thread-safe; un único escritor a la vez.
type RecordStore struct {
	mu          sync.RWMutex
	collections map[string]*collection
	seq         int64
}

// NewRecordStore construye un almacén vacío.
func NewRecordStore() *RecordStore {
	return &RecordStore{collections: make(map[string]*collection)}
}

func (s *RecordStore) nextSeq() int64 {
	s.seq++
	return s.seq
}

// ensure devuelve la colección, creándola si está ausente. Requiere el lock de escritura.
func (s *RecordStore) ensure(name string) *collection {
	c, ok := s.collections[name]
	if !ok {
		c = &collection{records: make(map[string]repository.Record)}
		s.collections[name] = c
	}
	return c
}

// List devuelve los registros ordenados por inserción.
func (s *RecordStore) List(_ context.Context, name string) ([]repository.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.collections[name]
	if !ok {
		return []repository.Record{}, nil
	}
	out := make([]repository.Record, 0, len(c.records))
	for _, r := range c.records {
		out = append(out, clone(r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out, nil
}

// Get devuelve el registro o nil si no existe.
func (s *RecordStore) Get(_ context.Context, name, id string) (*repository.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.collections[name]
	if !ok {
		return nil, nil
	}
	r, ok := c.records[id]
	if !ok {
		return nil, nil
	}
	cp := clone(r)
	return &cp, nil
}

// Insert crea un registro nuevo.
func (s *RecordStore) Insert(_ context.Context, name, id string, body json.RawMessage) (*repository.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.ensure(name)
	if _, exists := c.records[id]; exists {
		return nil, domain.ErrDuplicate
	}
	r := repository.Record{ID: id, Seq: s.nextSeq(), Version: 1, Body: copyBytes(body)}
	c.records[id] = r
	cp := clone(r)
	return &cp, nil
}

// Update reemplaza el cuerpo si la versión coincide.
func (s *RecordStore) Update(_ context.Context, name, id string, body json.RawMessage, expectedVersion int64) (*repository.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.collections[name]
	if !ok {
		return nil, domain.ErrNotFound
	}
	r, ok := c.records[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if r.Version != expectedVersion {
		return nil, domain.ErrConflict
	}
	r.Version++
	r.Body = copyBytes(body)
	c.records[id] = r
	cp := clone(r)
	return &cp, nil
}

// Delete elimina el registro.
func (s *RecordStore) Delete(_ context.Context, name, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.collections[name]
	if !ok {
		return false, nil
	}
	if _, exists := c.records[id]; !exists {
		return false, nil
	}
	delete(c.records, id)
	return true, nil
}

// Replace sobrescribe la colección completa.
func (s *RecordStore) Replace(_ context.Context, name string, records []repository.RecordInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := &collection{records: make(map[string]repository.Record, len(records))}
	for _, in := range records {
		if _, dup := c.records[in.ID]; dup {
			return domain.ErrDuplicate
		}
		c.records[in.ID] = repository.Record{ID: in.ID, Seq: s.nextSeq(), Version: 1, Body: copyBytes(in.Body)}
	}
	s.collections[name] = c
	return nil
}

// Drop elimina la colección.
func (s *RecordStore) Drop(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.collections, name)
	return nil
}

// Exists informa si la colección está presente.
func (s *RecordStore) Exists(_ context.Context, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.collections[name]
	return ok, nil
}

// Count devuelve la cantidad de registros.
func (s *RecordStore) Count(_ context.Context, name string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.collections[name]
	if !ok {
		return 0, nil
	}
	return len(c.records), nil
}

func clone(r repository.Record) repository.Record {
	r.Body = copyBytes(r.Body)
	return r
}

func copyBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

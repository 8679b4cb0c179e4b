package memory

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/litio-erp/internal/domain"
	"github.com/jhoicas/litio-erp/internal/domain/repository"
)

func TestRecordStore_InsertListOrden(t *testing.T) {
	ctx := context.Background()
	s := NewRecordStore()

	_, err := s.Insert(ctx, "svc", "b", json.RawMessage(`{"id":"b"}`))
	require.NoError(t, err)
	_, err = s.Insert(ctx, "svc", "a", json.RawMessage(`{"id":"a"}`))
	require.NoError(t, err)

	list, err := s.List(ctx, "svc")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "b", list[0].ID, "el orden es el de inserción, no el alfabético")
	assert.Equal(t, "a", list[1].ID)
}

func TestRecordStore_InsertDuplicado(t *testing.T) {
	ctx := context.Background()
	s := NewRecordStore()
	_, err := s.Insert(ctx, "c", "1", json.RawMessage(`{}`))
	require.NoError(t, err)

	_, err = s.Insert(ctx, "c", "1", json.RawMessage(`{}`))
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestRecordStore_UpdateVersionado(t *testing.T) {
	ctx := context.Background()
	s := NewRecordStore()
	rec, err := s.Insert(ctx, "c", "1", json.RawMessage(`{"v":1}`))
	require.NoError(t, err)

	updated, err := s.Update(ctx, "c", "1", json.RawMessage(`{"v":2}`), rec.Version)
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated.Version)

	_, err = s.Update(ctx, "c", "1", json.RawMessage(`{"v":3}`), rec.Version)
	assert.ErrorIs(t, err, domain.ErrConflict, "una versión vieja no debe pisar la nueva")

	_, err = s.Update(ctx, "c", "nope", json.RawMessage(`{}`), 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRecordStore_AusenteVsVacia(t *testing.T) {
	ctx := context.Background()
	s := NewRecordStore()

	ok, err := s.Exists(ctx, "c")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Replace(ctx, "c", nil))
	ok, err = s.Exists(ctx, "c")
	require.NoError(t, err)
	assert.True(t, ok, "Replace con cero registros deja la colección presente")

	n, err := s.Count(ctx, "c")
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, s.Drop(ctx, "c"))
	ok, _ = s.Exists(ctx, "c")
	assert.False(t, ok)
}

func TestRecordStore_ReplaceConserva(t *testing.T) {
	ctx := context.Background()
	s := NewRecordStore()
	_, _ = s.Insert(ctx, "c", "old", json.RawMessage(`{}`))

	err := s.Replace(ctx, "c", []repository.RecordInput{
		{ID: "x", Body: json.RawMessage(`{"id":"x"}`)},
		{ID: "y", Body: json.RawMessage(`{"id":"y"}`)},
	})
	require.NoError(t, err)

	list, err := s.List(ctx, "c")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, `{"id":"x"}`, string(list[0].Body))
	assert.Equal(t, "y", list[1].ID)

	err = s.Replace(ctx, "c", []repository.RecordInput{{ID: "z"}, {ID: "z"}})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestRecordStore_DeleteYCopiasIndependientes(t *testing.T) {
	ctx := context.Background()
	s := NewRecordStore()
	_, _ = s.Insert(ctx, "c", "1", json.RawMessage(`{"a":1}`))

	got, err := s.Get(ctx, "c", "1")
	require.NoError(t, err)
	got.Body[0] = 'X'
	again, _ := s.Get(ctx, "c", "1")
	assert.Equal(t, `{"a":1}`, string(again.Body), "mutar la copia devuelta no altera el almacén")

	removed, err := s.Delete(ctx, "c", "1")
	require.NoError(t, err)
	assert.True(t, removed)
	removed, _ = s.Delete(ctx, "c", "1")
	assert.False(t, removed)
}

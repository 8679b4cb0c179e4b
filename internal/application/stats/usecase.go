// Package stats calcula los conteos por colección del panel de datos.
package stats

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/litio-erp/internal/application/storage"
	"github.com/jhoicas/litio-erp/internal/domain"
	"github.com/jhoicas/litio-erp/internal/domain/repository"
)

// Stats cantidad de registros por campo de respaldo (users, inventory, ...).
type Stats map[string]int

// UseCase agrega los conteos; se recalculan en cada llamada.
type UseCase struct {
	store repository.RecordStore
}

// NewUseCase construye el agregador.
func NewUseCase(store repository.RecordStore) *UseCase {
	return &UseCase{store: store}
}

// Stats cuenta cada colección contable en paralelo. Cualquier fallo del almacén se devuelve.
func (uc *UseCase) Stats(ctx context.Context) (Stats, error) {
	keys := storage.CountedKeys()
	out := make(Stats, len(keys))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for _, k := range keys {
		g.Go(func() error {
			n, err := uc.store.Count(gctx, k.Name)
			if err != nil {
				return fmt.Errorf("%w: count %s: %v", domain.ErrStorageUnavailable, k.Name, err)
			}
			mu.Lock()
			out[k.ExportField] = n
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

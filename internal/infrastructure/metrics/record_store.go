// Package metrics instrumenta el almacén de registros con métricas Prometheus.
package metrics

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jhoicas/litio-erp/internal/domain"
	"github.com/jhoicas/litio-erp/internal/domain/repository"
)

var _ repository.RecordStore = (*RecordStore)(nil)

// RecordStore decorador que cuenta y cronometra cada operación del almacén.
type RecordStore struct {
	next     repository.RecordStore
	ops      *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewRecordStore registra los colectores en reg y envuelve next.
func NewRecordStore(next repository.RecordStore, reg prometheus.Registerer) (*RecordStore, error) {
	s := &RecordStore{
		next: next,
		ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "litio",
			Subsystem: "store",
			Name:      "operations_total",
			Help:      "Operaciones sobre el almacén de registros por colección y resultado.",
		}, []string{"op", "collection", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "litio",
			Subsystem: "store",
			Name:      "operation_duration_seconds",
			Help:      "Latencia de las operaciones del almacén.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}, []string{"op"}),
	}
	for _, c := range []prometheus.Collector{s.ops, s.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *RecordStore) observe(op, collection string, start time.Time, err error) {
	s.duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	s.ops.WithLabelValues(op, collection, result(err)).Inc()
}

func result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrDuplicate):
		return "rejected"
	default:
		return "error"
	}
}

func (s *RecordStore) List(ctx context.Context, collection string) (_ []repository.Record, err error) {
	defer func(start time.Time) { s.observe("list", collection, start, err) }(time.Now())
	return s.next.List(ctx, collection)
}

func (s *RecordStore) Get(ctx context.Context, collection, id string) (_ *repository.Record, err error) {
	defer func(start time.Time) { s.observe("get", collection, start, err) }(time.Now())
	return s.next.Get(ctx, collection, id)
}

func (s *RecordStore) Insert(ctx context.Context, collection, id string, body json.RawMessage) (_ *repository.Record, err error) {
	defer func(start time.Time) { s.observe("insert", collection, start, err) }(time.Now())
	return s.next.Insert(ctx, collection, id, body)
}

func (s *RecordStore) Update(ctx context.Context, collection, id string, body json.RawMessage, expectedVersion int64) (_ *repository.Record, err error) {
	defer func(start time.Time) { s.observe("update", collection, start, err) }(time.Now())
	return s.next.Update(ctx, collection, id, body, expectedVersion)
}

func (s *RecordStore) Delete(ctx context.Context, collection, id string) (_ bool, err error) {
	defer func(start time.Time) { s.observe("delete", collection, start, err) }(time.Now())
	return s.next.Delete(ctx, collection, id)
}

func (s *RecordStore) Replace(ctx context.Context, collection string, records []repository.RecordInput) (err error) {
	defer func(start time.Time) { s.observe("replace", collection, start, err) }(time.Now())
	return s.next.Replace(ctx, collection, records)
}

func (s *RecordStore) Drop(ctx context.Context, collection string) (err error) {
	defer func(start time.Time) { s.observe("drop", collection, start, err) }(time.Now())
	return s.next.Drop(ctx, collection)
}

func (s *RecordStore) Exists(ctx context.Context, collection string) (_ bool, err error) {
	defer func(start time.Time) { s.observe("exists", collection, start, err) }(time.Now())
	return s.next.Exists(ctx, collection)
}

func (s *RecordStore) Count(ctx context.Context, collection string) (_ int, err error) {
	defer func(start time.Time) { s.observe("count", collection, start, err) }(time.Now())
	return s.next.Count(ctx, collection)
}

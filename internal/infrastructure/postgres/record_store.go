package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/litio-erp/internal/domain"
	"github.com/jhoicas/litio-erp/internal/domain/repository"
)

var _ repository.RecordStore = (*RecordStore)(nil)

// schema usa JSON (no JSONB) para que el cuerpo se devuelva byte a byte como se guardó.
const schema = `
CREATE TABLE IF NOT EXISTS kv_collections (
	name       TEXT PRIMARY KEY,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS kv_records (
	collection TEXT   NOT NULL REFERENCES kv_collections(name) ON DELETE CASCADE,
	id         TEXT   NOT NULL,
	seq        BIGSERIAL,
	version    BIGINT NOT NULL DEFAULT 1,
	body       JSON   NOT NULL,
	PRIMARY KEY (collection, id)
);
CREATE INDEX IF NOT EXISTS idx_kv_records_seq ON kv_records (collection, seq);`

// RecordStore implementación del puerto RecordStore sobre PostgreSQL.
type RecordStore struct {
	pool *pgxpool.Pool
}

// NewRecordStore construye el adaptador de persistencia por registro.
func NewRecordStore(pool *pgxpool.Pool) *RecordStore {
	return &RecordStore{pool: pool}
}

// Migrate crea las tablas si no existen.
func (s *RecordStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate record store: %w", err)
	}
	return nil
}

// List devuelve los registros ordenados por inserción.
func (s *RecordStore) List(ctx context.Context, collection string) ([]repository.Record, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, seq, version, body::text
		FROM kv_records WHERE collection = $1
		ORDER BY seq`, collection)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	out := make([]repository.Record, 0)
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Get devuelve el registro o nil si no existe.
func (s *RecordStore) Get(ctx context.Context, collection, id string) (*repository.Record, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, seq, version, body::text
		FROM kv_records WHERE collection = $1 AND id = $2`, collection, id)
	r, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get record: %w", err)
	}
	return &r, nil
}

// Insert crea el registro con versión 1.
func (s *RecordStore) Insert(ctx context.Context, collection, id string, body json.RawMessage) (*repository.Record, error) {
	var rec repository.Record
	err := withTx(ctx, s.pool, func(q querier) error {
		if err := touchCollection(ctx, q, collection); err != nil {
			return err
		}
		row := q.QueryRow(ctx, `
			INSERT INTO kv_records (collection, id, version, body)
			VALUES ($1, $2, 1, $3::json)
			RETURNING id, seq, version, body::text`, collection, id, string(body))
		var err error
		rec, err = scanRecord(row)
		return err
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrDuplicate
		}
		return nil, fmt.Errorf("insert record: %w", err)
	}
	return &rec, nil
}

// Update reemplaza el cuerpo si la versión almacenada coincide.
func (s *RecordStore) Update(ctx context.Context, collection, id string, body json.RawMessage, expectedVersion int64) (*repository.Record, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE kv_records SET body = $4::json, version = version + 1
		WHERE collection = $1 AND id = $2 AND version = $3
		RETURNING id, seq, version, body::text`, collection, id, expectedVersion, string(body))
	rec, err := scanRecord(row)
	if err == nil {
		return &rec, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("update record: %w", err)
	}
	// Sin filas: o no existe o cambió la versión.
	current, err := s.Get(ctx, collection, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, domain.ErrNotFound
	}
	return nil, domain.ErrConflict
}

// Delete elimina el registro e informa si existía.
func (s *RecordStore) Delete(ctx context.Context, collection, id string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM kv_records WHERE collection = $1 AND id = $2`, collection, id)
	if err != nil {
		return false, fmt.Errorf("delete record: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Replace sobrescribe la colección completa en una transacción.
func (s *RecordStore) Replace(ctx context.Context, collection string, records []repository.RecordInput) error {
	err := withTx(ctx, s.pool, func(q querier) error {
		if err := touchCollection(ctx, q, collection); err != nil {
			return err
		}
		if _, err := q.Exec(ctx, `DELETE FROM kv_records WHERE collection = $1`, collection); err != nil {
			return err
		}
		for _, in := range records {
			if _, err := q.Exec(ctx, `
				INSERT INTO kv_records (collection, id, version, body)
				VALUES ($1, $2, 1, $3::json)`, collection, in.ID, string(in.Body)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("replace collection: %w", err)
	}
	return nil
}

// Drop elimina la colección y sus registros (ON DELETE CASCADE).
func (s *RecordStore) Drop(ctx context.Context, collection string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM kv_collections WHERE name = $1`, collection); err != nil {
		return fmt.Errorf("drop collection: %w", err)
	}
	return nil
}

// Exists informa si la colección está presente.
func (s *RecordStore) Exists(ctx context.Context, collection string) (bool, error) {
	var ok bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM kv_collections WHERE name = $1)`, collection).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("collection exists: %w", err)
	}
	return ok, nil
}

// Count devuelve la cantidad de registros.
func (s *RecordStore) Count(ctx context.Context, collection string) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM kv_records WHERE collection = $1`, collection).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return n, nil
}

func touchCollection(ctx context.Context, q querier, collection string) error {
	_, err := q.Exec(ctx, `INSERT INTO kv_collections (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, collection)
	return err
}

func scanRecord(row pgx.Row) (repository.Record, error) {
	var (
		r    repository.Record
		body string
	)
	if err := row.Scan(&r.ID, &r.Seq, &r.Version, &body); err != nil {
		return repository.Record{}, err
	}
	r.Body = json.RawMessage(body)
	return r, nil
}

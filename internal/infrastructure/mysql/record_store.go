package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"github.com/jhoicas/litio-erp/internal/domain"
	"github.com/jhoicas/litio-erp/internal/domain/repository"
)

var _ repository.RecordStore = (*RecordStore)(nil)

const errDuplicateEntry = 1062

// El cuerpo va en LONGTEXT: el tipo JSON de MySQL normaliza el texto y rompería la copia exacta.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS kv_collections (
		name       VARCHAR(191) NOT NULL PRIMARY KEY,
		created_at TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS kv_records (
		seq        BIGINT       NOT NULL AUTO_INCREMENT PRIMARY KEY,
		collection VARCHAR(191) NOT NULL,
		id         VARCHAR(191) NOT NULL,
		version    BIGINT       NOT NULL DEFAULT 1,
		body       LONGTEXT     NOT NULL,
		UNIQUE KEY uq_kv_records (collection, id),
		FOREIGN KEY (collection) REFERENCES kv_collections(name) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// RecordStore implementación del puerto RecordStore sobre MySQL.
type RecordStore struct {
	db *sql.DB
}

// NewRecordStore construye el adaptador.
func NewRecordStore(db *sql.DB) *RecordStore {
	return &RecordStore{db: db}
}

// EnsureSchema crea las tablas si no existen.
func (s *RecordStore) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *RecordStore) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// List devuelve los registros ordenados por inserción.
func (s *RecordStore) List(ctx context.Context, collection string) ([]repository.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, seq, version, body FROM kv_records
		WHERE collection = ? ORDER BY seq`, collection)
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
	r, err := scanRecord(s.db.QueryRowContext(ctx, `
		SELECT id, seq, version, body FROM kv_records
		WHERE collection = ? AND id = ?`, collection, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get record: %w", err)
	}
	return &r, nil
}

// Insert crea el registro con versión 1.
func (s *RecordStore) Insert(ctx context.Context, collection, id string, body json.RawMessage) (*repository.Record, error) {
	var seq int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := touchCollection(ctx, tx, collection); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `
			INSERT INTO kv_records (collection, id, version, body) VALUES (?, ?, 1, ?)`,
			collection, id, string(body))
		if err != nil {
			return err
		}
		seq, err = res.LastInsertId()
		return err
	})
	if err != nil {
		if isDuplicate(err) {
			return nil, domain.ErrDuplicate
		}
		return nil, fmt.Errorf("insert record: %w", err)
	}
	return &repository.Record{ID: id, Seq: seq, Version: 1, Body: body}, nil
}

// Update reemplaza el cuerpo si la versión almacenada coincide.
func (s *RecordStore) Update(ctx context.Context, collection, id string, body json.RawMessage, expectedVersion int64) (*repository.Record, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE kv_records SET body = ?, version = version + 1
		WHERE collection = ? AND id = ? AND version = ?`,
		string(body), collection, id, expectedVersion)
	if err != nil {
		return nil, fmt.Errorf("update record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update record: %w", err)
	}
	current, err := s.Get(ctx, collection, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, domain.ErrNotFound
	}
	if n == 0 {
		return nil, domain.ErrConflict
	}
	return current, nil
}

// Delete elimina el registro e informa si existía.
func (s *RecordStore) Delete(ctx context.Context, collection, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM kv_records WHERE collection = ? AND id = ?`, collection, id)
	if err != nil {
		return false, fmt.Errorf("delete record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete record: %w", err)
	}
	return n > 0, nil
}

// Replace sobrescribe la colección completa en una transacción.
func (s *RecordStore) Replace(ctx context.Context, collection string, records []repository.RecordInput) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := touchCollection(ctx, tx, collection); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM kv_records WHERE collection = ?`, collection); err != nil {
			return err
		}
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO kv_records (collection, id, version, body) VALUES (?, ?, 1, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, in := range records {
			if _, err := stmt.ExecContext(ctx, collection, in.ID, string(in.Body)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if isDuplicate(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("replace collection: %w", err)
	}
	return nil
}

// Drop elimina la colección y sus registros.
func (s *RecordStore) Drop(ctx context.Context, collection string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv_collections WHERE name = ?`, collection); err != nil {
		return fmt.Errorf("drop collection: %w", err)
	}
	return nil
}

// Exists informa si la colección está presente.
func (s *RecordStore) Exists(ctx context.Context, collection string) (bool, error) {
	var ok bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM kv_collections WHERE name = ?)`, collection).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("collection exists: %w", err)
	}
	return ok, nil
}

// Count devuelve la cantidad de registros.
func (s *RecordStore) Count(ctx context.Context, collection string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM kv_records WHERE collection = ?`, collection).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return n, nil
}

func touchCollection(ctx context.Context, e execer, collection string) error {
	_, err := e.ExecContext(ctx, `INSERT IGNORE INTO kv_collections (name) VALUES (?)`, collection)
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (repository.Record, error) {
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

func isDuplicate(err error) bool {
	var myErr *mysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == errDuplicateEntry
}

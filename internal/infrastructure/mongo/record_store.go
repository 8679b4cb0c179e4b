package mongo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jhoicas/litio-erp/internal/domain"
	"github.com/jhoicas/litio-erp/internal/domain/repository"
)

var _ repository.RecordStore = (*RecordStore)(nil)

// recordDoc documento persistido. Body se guarda como string para conservar el JSON exacto.
type recordDoc struct {
	Collection string `bson:"collection"`
	ID         string `bson:"id"`
	Seq        int64  `bson:"seq"`
	Version    int64  `bson:"version"`
	Body       string `bson:"body"`
}

func (d recordDoc) toRecord() repository.Record {
	return repository.Record{ID: d.ID, Seq: d.Seq, Version: d.Version, Body: json.RawMessage(d.Body)}
}

// RecordStore implementación del puerto RecordStore sobre MongoDB. Sin replica set no hay
// transacciones, así que Replace no es atómico frente a lectores concurrentes.
type RecordStore struct {
	records     *mongo.Collection
	collections *mongo.Collection
	counters    *mongo.Collection
}

// NewRecordStore construye el adaptador sobre la base dada.
func NewRecordStore(db *mongo.Database) *RecordStore {
	return &RecordStore{
		records:     db.Collection(recordsCollection),
		collections: db.Collection(collectionsCollection),
		counters:    db.Collection(countersCollection),
	}
}

// nextSeq reserva n valores consecutivos del contador global y devuelve el primero.
func (s *RecordStore) nextSeq(ctx context.Context, n int64) (int64, error) {
	var out struct {
		Value int64 `bson:"value"`
	}
	err := s.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": "records_seq"},
		bson.M{"$inc": bson.M{"value": n}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&out)
	if err != nil {
		return 0, fmt.Errorf("next seq: %w", err)
	}
	return out.Value - n + 1, nil
}

func (s *RecordStore) touchCollection(ctx context.Context, collection string) error {
	_, err := s.collections.UpdateOne(ctx,
		bson.M{"_id": collection},
		bson.M{"$setOnInsert": bson.M{"_id": collection}},
		options.Update().SetUpsert(true),
	)
	return err
}

// List devuelve los registros ordenados por inserción.
func (s *RecordStore) List(ctx context.Context, collection string) ([]repository.Record, error) {
	cur, err := s.records.Find(ctx, bson.M{"collection": collection},
		options.Find().SetSort(bson.D{{Key: "seq", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer cur.Close(ctx)

	out := make([]repository.Record, 0)
	for cur.Next(ctx) {
		var d recordDoc
		if err := cur.Decode(&d); err != nil {
			return nil, fmt.Errorf("decode record: %w", err)
		}
		out = append(out, d.toRecord())
	}
	return out, cur.Err()
}

// Get devuelve el registro o nil si no existe.
func (s *RecordStore) Get(ctx context.Context, collection, id string) (*repository.Record, error) {
	var d recordDoc
	err := s.records.FindOne(ctx, bson.M{"collection": collection, "id": id}).Decode(&d)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("get record: %w", err)
	}
	r := d.toRecord()
	return &r, nil
}

// Insert crea el registro con versión 1.
func (s *RecordStore) Insert(ctx context.Context, collection, id string, body json.RawMessage) (*repository.Record, error) {
	if err := s.touchCollection(ctx, collection); err != nil {
		return nil, fmt.Errorf("insert record: %w", err)
	}
	seq, err := s.nextSeq(ctx, 1)
	if err != nil {
		return nil, err
	}
	d := recordDoc{Collection: collection, ID: id, Seq: seq, Version: 1, Body: string(body)}
	if _, err := s.records.InsertOne(ctx, d); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrDuplicate
		}
		return nil, fmt.Errorf("insert record: %w", err)
	}
	r := d.toRecord()
	return &r, nil
}

// Update reemplaza el cuerpo si la versión almacenada coincide.
func (s *RecordStore) Update(ctx context.Context, collection, id string, body json.RawMessage, expectedVersion int64) (*repository.Record, error) {
	var d recordDoc
	err := s.records.FindOneAndUpdate(ctx,
		bson.M{"collection": collection, "id": id, "version": expectedVersion},
		bson.M{"$set": bson.M{"body": string(body)}, "$inc": bson.M{"version": 1}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&d)
	if err == nil {
		r := d.toRecord()
		return &r, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("update record: %w", err)
	}
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
	res, err := s.records.DeleteOne(ctx, bson.M{"collection": collection, "id": id})
	if err != nil {
		return false, fmt.Errorf("delete record: %w", err)
	}
	return res.DeletedCount > 0, nil
}

// Replace sobrescribe la colección completa.
func (s *RecordStore) Replace(ctx context.Context, collection string, records []repository.RecordInput) error {
	seen := make(map[string]struct{}, len(records))
	for _, in := range records {
		if _, dup := seen[in.ID]; dup {
			return domain.ErrDuplicate
		}
		seen[in.ID] = struct{}{}
	}
	if err := s.touchCollection(ctx, collection); err != nil {
		return fmt.Errorf("replace collection: %w", err)
	}
	if _, err := s.records.DeleteMany(ctx, bson.M{"collection": collection}); err != nil {
		return fmt.Errorf("replace collection: %w", err)
	}
	if len(records) == 0 {
		return nil
	}
	first, err := s.nextSeq(ctx, int64(len(records)))
	if err != nil {
		return err
	}
	docs := make([]any, 0, len(records))
	for i, in := range records {
		docs = append(docs, recordDoc{
			Collection: collection, ID: in.ID, Seq: first + int64(i), Version: 1, Body: string(in.Body),
		})
	}
	if _, err := s.records.InsertMany(ctx, docs); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("replace collection: %w", err)
	}
	return nil
}

// Drop elimina la colección y sus registros.
func (s *RecordStore) Drop(ctx context.Context, collection string) error {
	if _, err := s.records.DeleteMany(ctx, bson.M{"collection": collection}); err != nil {
		return fmt.Errorf("drop collection: %w", err)
	}
	if _, err := s.collections.DeleteOne(ctx, bson.M{"_id": collection}); err != nil {
		return fmt.Errorf("drop collection: %w", err)
	}
	return nil
}

// Exists informa si la colección está presente.
func (s *RecordStore) Exists(ctx context.Context, collection string) (bool, error) {
	n, err := s.collections.CountDocuments(ctx, bson.M{"_id": collection}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("collection exists: %w", err)
	}
	return n > 0, nil
}

// Count devuelve la cantidad de registros.
func (s *RecordStore) Count(ctx context.Context, collection string) (int, error) {
	n, err := s.records.CountDocuments(ctx, bson.M{"collection": collection})
	if err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return int(n), nil
}

// Package store abre el backend del almacén de registros elegido por STORE_DRIVER.
package store

import (
	"context"
	"fmt"

	"github.com/jhoicas/litio-erp/internal/domain/repository"
	"github.com/jhoicas/litio-erp/internal/infrastructure/memory"
	"github.com/jhoicas/litio-erp/internal/infrastructure/mongo"
	"github.com/jhoicas/litio-erp/internal/infrastructure/mysql"
	"github.com/jhoicas/litio-erp/internal/infrastructure/postgres"
	"github.com/jhoicas/litio-erp/pkg/config"
	"github.com/jhoicas/litio-erp/pkg/logger"
)

// Open conecta el driver configurado, prepara su esquema y devuelve el almacén junto con
// la función que libera la conexión.
func Open(ctx context.Context, cfg *config.Config, log *logger.Logger) (repository.RecordStore, func(), error) {
	switch cfg.Store.Driver {
	case config.DriverMemory, "":
		log.Warn().Msg("almacén en memoria: los datos se pierden al reiniciar")
		return memory.NewRecordStore(), func() {}, nil

	case config.DriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, nil, err
		}
		s := postgres.NewRecordStore(pool)
		if err := s.Migrate(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		log.Info().Str("driver", cfg.Store.Driver).Msg("almacén conectado")
		return s, pool.Close, nil

	case config.DriverMySQL:
		db, err := mysql.Connect(ctx, cfg.MySQL)
		if err != nil {
			return nil, nil, err
		}
		s := mysql.NewRecordStore(db)
		if err := s.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		log.Info().Str("driver", cfg.Store.Driver).Str("db", cfg.MySQL.DBName).Msg("almacén conectado")
		return s, func() { _ = db.Close() }, nil

	case config.DriverMongo:
		client, db, err := mongo.Connect(ctx, cfg.Mongo)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() { _ = client.Disconnect(context.Background()) }
		if err := mongo.EnsureIndexes(ctx, db); err != nil {
			closeFn()
			return nil, nil, err
		}
		log.Info().Str("driver", cfg.Store.Driver).Str("db", cfg.Mongo.DBName).Msg("almacén conectado")
		return mongo.NewRecordStore(db), closeFn, nil
	}
	return nil, nil, fmt.Errorf("store: driver desconocido %q", cfg.Store.Driver)
}

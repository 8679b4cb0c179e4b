package usecase

import (
	"context"
	"time"

	"github.com/jhoicas/litio-erp/internal/application/storage"
	"github.com/jhoicas/litio-erp/internal/domain/entity"
	"github.com/jhoicas/litio-erp/internal/domain/repository"
	"github.com/jhoicas/litio-erp/pkg/logger"
)

// SettingsUseCase configuración de empresa. La colección guarda un único elemento.
type SettingsUseCase struct {
	settings *storage.Collection[entity.Settings, *entity.Settings]
	log      *logger.Logger
	now      func() time.Time
}

// NewSettingsUseCase construye el caso de uso.
func NewSettingsUseCase(store repository.RecordStore, log *logger.Logger) *SettingsUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &SettingsUseCase{
		settings: storage.NewCollection[entity.Settings](store, storage.KeySettings, log),
		log:      log,
		now:      time.Now,
	}
}

// Get devuelve la configuración; si no hay ninguna guarda y devuelve la de fábrica.
func (uc *SettingsUseCase) Get(ctx context.Context) (*entity.Settings, error) {
	all, err := uc.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	if len(all) > 0 {
		return &all[0], nil
	}
	defaults := entity.DefaultSettings(uc.now().UTC())
	if err := uc.settings.Set(ctx, []entity.Settings{defaults}); err != nil {
		return nil, err
	}
	uc.log.Info().Msg("configuración inicial creada")
	return &defaults, nil
}

// Update mezcla patch sobre la configuración vigente y marca updated_at.
func (uc *SettingsUseCase) Update(ctx context.Context, patch map[string]any) (*entity.Settings, error) {
	current, err := uc.Get(ctx)
	if err != nil {
		return nil, err
	}
	p := withoutKeys(patch, "id", "created_at")
	p["updated_at"] = uc.now().UTC()
	updated, err := uc.settings.Update(ctx, current.ID, p)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Location zona horaria configurada. Si falta o no se reconoce se usa UTC.
func (uc *SettingsUseCase) Location(ctx context.Context) (*time.Location, error) {
	s, err := uc.Get(ctx)
	if err != nil {
		return nil, err
	}
	if s.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		uc.log.Warn().Err(err).Str("timezone", s.Timezone).Msg("zona horaria desconocida, se usa UTC")
		return time.UTC, nil
	}
	return loc, nil
}

package usecase

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/jhoicas/litio-erp/internal/application/dto"
	"github.com/jhoicas/litio-erp/internal/application/storage"
	"github.com/jhoicas/litio-erp/internal/domain"
	"github.com/jhoicas/litio-erp/internal/domain/entity"
	"github.com/jhoicas/litio-erp/internal/domain/repository"
	"github.com/jhoicas/litio-erp/pkg/logger"
	"github.com/jhoicas/litio-erp/pkg/textfold"
)

const (
	clockLayout = "15:04"
	// lateAfterMinutes minuto del día (08:15) a partir del cual la entrada es tardanza.
	lateAfterMinutes = 8*60 + 15
)

// ZoneSource entrega la zona horaria del negocio.
type ZoneSource interface {
	Location(ctx context.Context) (*time.Location, error)
}

// AttendanceUseCase registro de asistencia diaria.
type AttendanceUseCase struct {
	records *storage.Collection[entity.AttendanceRecord, *entity.AttendanceRecord]
	zone    ZoneSource
	now     func() time.Time
}

// NewAttendanceUseCase construye el caso de uso. Con zone nil se usa la hora del servidor.
func NewAttendanceUseCase(store repository.RecordStore, zone ZoneSource, log *logger.Logger) *AttendanceUseCase {
	return &AttendanceUseCase{
		records: storage.NewCollection[entity.AttendanceRecord](store, storage.KeyAttendance, log),
		zone:    zone,
		now:     time.Now,
	}
}

// parseClock interpreta una marca HH:MM (acepta H:MM). Vacío devuelve ok=false.
func parseClock(field, v string) (t time.Time, ok bool, err error) {
	if v == "" {
		return time.Time{}, false, nil
	}
	t, err = time.Parse(clockLayout, v)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("%w: %s debe tener formato HH:MM", domain.ErrInvalidInput, field)
	}
	return t, true, nil
}

// NormalizeClock valida una marca y la devuelve como HH:MM. Vacío se conserva.
func NormalizeClock(field, v string) (string, error) {
	t, ok, err := parseClock(field, v)
	if err != nil || !ok {
		return "", err
	}
	return t.Format(clockLayout), nil
}

func isLate(t time.Time) bool {
	return t.Hour()*60+t.Minute() > lateAfterMinutes
}

// WorkedHours horas entre entrada y salida redondeadas a 2 decimales. Sin alguna de las dos, 0.
func WorkedHours(checkIn, checkOut string) (float64, error) {
	in, hasIn, err := parseClock("checkIn", checkIn)
	if err != nil {
		return 0, err
	}
	out, hasOut, err := parseClock("checkOut", checkOut)
	if err != nil {
		return 0, err
	}
	if !hasIn || !hasOut {
		return 0, nil
	}
	if out.Before(in) {
		return 0, fmt.Errorf("%w: la salida es anterior a la entrada", domain.ErrInvalidInput)
	}
	return math.Round(out.Sub(in).Hours()*100) / 100, nil
}

// AttendanceStatus absent si falta alguna marca, late si entró después de las 08:15, si no present.
func AttendanceStatus(checkIn, checkOut string) (string, error) {
	in, hasIn, err := parseClock("checkIn", checkIn)
	if err != nil {
		return "", err
	}
	_, hasOut, err := parseClock("checkOut", checkOut)
	if err != nil {
		return "", err
	}
	switch {
	case !hasIn || !hasOut:
		return entity.AttendanceAbsent, nil
	case isLate(in):
		return entity.AttendanceLate, nil
	default:
		return entity.AttendancePresent, nil
	}
}

// localNow hora actual en la zona del negocio.
func (uc *AttendanceUseCase) localNow(ctx context.Context) (time.Time, error) {
	now := uc.now()
	if uc.zone == nil {
		return now, nil
	}
	loc, err := uc.zone.Location(ctx)
	if err != nil {
		return time.Time{}, err
	}
	return now.In(loc), nil
}

// Create registro manual: calcula horas y estado.
func (uc *AttendanceUseCase) Create(ctx context.Context, in dto.CreateAttendanceRequest) (*entity.AttendanceRecord, error) {
	if err := requireText("userName", in.UserName); err != nil {
		return nil, err
	}
	if err := requireText("date", in.Date); err != nil {
		return nil, err
	}
	if err := validDate("date", in.Date); err != nil {
		return nil, err
	}
	checkIn, err := NormalizeClock("checkIn", in.CheckIn)
	if err != nil {
		return nil, err
	}
	checkOut, err := NormalizeClock("checkOut", in.CheckOut)
	if err != nil {
		return nil, err
	}
	hours, err := WorkedHours(checkIn, checkOut)
	if err != nil {
		return nil, err
	}
	status, err := AttendanceStatus(checkIn, checkOut)
	if err != nil {
		return nil, err
	}
	rec := entity.AttendanceRecord{
		UserID:   in.UserID,
		UserName: in.UserName,
		Date:     in.Date,
		CheckIn:  checkIn,
		CheckOut: checkOut,
		Hours:    &hours,
		Status:   status,
		Notes:    in.Notes,
	}
	created, err := uc.records.Add(ctx, rec)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// CheckIn marca la entrada de hoy. ErrConflict si ya marcó.
func (uc *AttendanceUseCase) CheckIn(ctx context.Context, user entity.User) (*entity.AttendanceRecord, error) {
	now, err := uc.localNow(ctx)
	if err != nil {
		return nil, err
	}
	existing, err := uc.today(ctx, user.ID, now)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: la entrada de hoy ya fue registrada", domain.ErrConflict)
	}
	checkIn := now.Format(clockLayout)
	status := entity.AttendancePresent
	if isLate(now) {
		status = entity.AttendanceLate
	}
	created, err := uc.records.Add(ctx, entity.AttendanceRecord{
		UserID:   user.ID,
		UserName: user.Name,
		Date:     now.Format(dateLayout),
		CheckIn:  checkIn,
		Status:   status,
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// CheckOut marca la salida de hoy y calcula las horas. ErrNotFound si no hay entrada abierta.
func (uc *AttendanceUseCase) CheckOut(ctx context.Context, user entity.User) (*entity.AttendanceRecord, error) {
	now, err := uc.localNow(ctx)
	if err != nil {
		return nil, err
	}
	existing, err := uc.today(ctx, user.ID, now)
	if err != nil {
		return nil, err
	}
	if existing == nil || existing.CheckOut != "" {
		return nil, fmt.Errorf("%w: no hay una entrada abierta hoy", domain.ErrNotFound)
	}
	updated, err := uc.records.Mutate(ctx, existing.ID, func(r *entity.AttendanceRecord) error {
		r.CheckOut = now.Format(clockLayout)
		hours, err := WorkedHours(r.CheckIn, r.CheckOut)
		if err != nil {
			return err
		}
		r.Hours = &hours
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (uc *AttendanceUseCase) today(ctx context.Context, userID string, now time.Time) (*entity.AttendanceRecord, error) {
	date := now.Format(dateLayout)
	return uc.records.First(ctx, func(r entity.AttendanceRecord) bool {
		return r.UserID == userID && r.Date == date
	})
}

// List filtra por usuario, fecha, rango, estado y nombre; más recientes primero.
func (uc *AttendanceUseCase) List(ctx context.Context, f dto.AttendanceFilter) ([]entity.AttendanceRecord, error) {
	out, err := uc.records.Filter(ctx, func(r entity.AttendanceRecord) bool {
		switch {
		case f.UserID != "" && r.UserID != f.UserID,
			f.Date != "" && r.Date != f.Date,
			f.From != "" && r.Date < f.From,
			f.To != "" && r.Date > f.To,
			f.Status != "" && r.Status != f.Status:
			return false
		}
		return textfold.Contains(f.Query, r.UserName, r.Notes)
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out, nil
}

// Get obtiene un registro por id.
func (uc *AttendanceUseCase) Get(ctx context.Context, id string) (*entity.AttendanceRecord, error) {
	r, err := uc.records.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// Update mezcla patch; horas y estado se recalculan con las marcas resultantes.
func (uc *AttendanceUseCase) Update(ctx context.Context, id string, patch map[string]any) (*entity.AttendanceRecord, error) {
	current, err := uc.records.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	p := withoutKeys(patch, "hours", "status")
	checkIn, checkOut := current.CheckIn, current.CheckOut
	if v, ok := p["checkIn"].(string); ok {
		if checkIn, err = NormalizeClock("checkIn", v); err != nil {
			return nil, err
		}
		p["checkIn"] = checkIn
	}
	if v, ok := p["checkOut"].(string); ok {
		if checkOut, err = NormalizeClock("checkOut", v); err != nil {
			return nil, err
		}
		p["checkOut"] = checkOut
	}
	if v, ok := p["date"].(string); ok {
		if err := validDate("date", v); err != nil {
			return nil, err
		}
	}
	hours, err := WorkedHours(checkIn, checkOut)
	if err != nil {
		return nil, err
	}
	status, err := AttendanceStatus(checkIn, checkOut)
	if err != nil {
		return nil, err
	}
	p["hours"] = hours
	p["status"] = status
	updated, err := uc.records.Update(ctx, id, p)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete elimina el registro.
func (uc *AttendanceUseCase) Delete(ctx context.Context, id string) error {
	return uc.records.Delete(ctx, id)
}

// Summary conteos por estado y presentes de hoy.
func (uc *AttendanceUseCase) Summary(ctx context.Context) (*dto.AttendanceSummary, error) {
	all, err := uc.records.Get(ctx)
	if err != nil {
		return nil, err
	}
	now, err := uc.localNow(ctx)
	if err != nil {
		return nil, err
	}
	today := now.Format(dateLayout)
	s := &dto.AttendanceSummary{Total: len(all)}
	for _, r := range all {
		switch r.Status {
		case entity.AttendancePresent:
			s.Present++
		case entity.AttendanceLate:
			s.Late++
		case entity.AttendanceAbsent:
			s.Absent++
		}
		if r.Date == today && (r.Status == entity.AttendancePresent || r.Status == entity.AttendanceLate) {
			s.TodayPresent++
		}
	}
	return s, nil
}

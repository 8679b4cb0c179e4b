package usecase

import (
	"context"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/litio-erp/internal/application/dto"
	"github.com/jhoicas/litio-erp/internal/domain"
	"github.com/jhoicas/litio-erp/internal/domain/entity"
	"github.com/jhoicas/litio-erp/internal/infrastructure/memory"
)

func TestWorkedHoursYEstado(t *testing.T) {
	tests := []struct {
		in, out string
		hours   float64
		status  string
	}{
		{"08:00", "17:30", 9.5, entity.AttendancePresent},
		{"08:15", "12:00", 3.75, entity.AttendancePresent},
		{"08:16", "17:00", 8.73, entity.AttendanceLate},
		{"08:00", "", 0, entity.AttendanceAbsent},
		{"", "", 0, entity.AttendanceAbsent},
		{"7:30", "17:00", 9.5, entity.AttendancePresent},
		{"9:05", "17:00", 7.92, entity.AttendanceLate},
	}
	for _, tt := range tests {
		t.Run(tt.in+"-"+tt.out, func(t *testing.T) {
			h, err := WorkedHours(tt.in, tt.out)
			require.NoError(t, err)
			assert.Equal(t, tt.hours, h)
			status, err := AttendanceStatus(tt.in, tt.out)
			require.NoError(t, err)
			assert.Equal(t, tt.status, status)
		})
	}

	_, err := WorkedHours("9am", "17:00")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = WorkedHours("17:00", "08:00")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = WorkedHours("zz", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "una marca inválida se rechaza aunque falte la otra")
	_, err = AttendanceStatus("zz", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	hhmm, err := NormalizeClock("checkIn", "7:30")
	require.NoError(t, err)
	assert.Equal(t, "07:30", hhmm)
}

func TestAttendance_EntradaYSalida(t *testing.T) {
	ctx := context.Background()
	uc := NewAttendanceUseCase(memory.NewRecordStore(), nil, nil)
	user := entity.User{Base: entity.Base{ID: "u1"}, Name: "Pedro"}

	uc.now = clock(time.Date(2026, 3, 2, 8, 30, 0, 0, time.UTC))
	rec, err := uc.CheckIn(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-02", rec.Date)
	assert.Equal(t, "08:30", rec.CheckIn)
	assert.Equal(t, entity.AttendanceLate, rec.Status)

	_, err = uc.CheckIn(ctx, user)
	assert.ErrorIs(t, err, domain.ErrConflict, "una sola entrada por día")

	uc.now = clock(time.Date(2026, 3, 2, 17, 0, 0, 0, time.UTC))
	out, err := uc.CheckOut(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, "17:00", out.CheckOut)
	require.NotNil(t, out.Hours)
	assert.Equal(t, 8.5, *out.Hours)

	_, err = uc.CheckOut(ctx, user)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = uc.CheckOut(ctx, entity.User{Base: entity.Base{ID: "u2"}})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	summary, err := uc.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Late)
	assert.Equal(t, 1, summary.TodayPresent)
}

func TestAttendance_ManualListarYRecalcular(t *testing.T) {
	ctx := context.Background()
	uc := NewAttendanceUseCase(memory.NewRecordStore(), nil, nil)

	first, err := uc.Create(ctx, dto.CreateAttendanceRequest{UserID: "u1", UserName: "Pedro", Date: "2026-03-01", CheckIn: "08:00", CheckOut: "16:00"})
	require.NoError(t, err)
	assert.Equal(t, entity.AttendancePresent, first.Status)
	_, err = uc.Create(ctx, dto.CreateAttendanceRequest{UserID: "u2", UserName: "María", Date: "2026-03-03", CheckIn: "08:00"})
	require.NoError(t, err)

	_, err = uc.Create(ctx, dto.CreateAttendanceRequest{UserName: "x", Date: "03/03/2026"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.Create(ctx, dto.CreateAttendanceRequest{UserName: "x", Date: "2026-03-04", CheckIn: "zz"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "checkIn se valida aunque no haya salida")

	early, err := uc.Create(ctx, dto.CreateAttendanceRequest{UserID: "u3", UserName: "Rosa", Date: "2026-02-20", CheckIn: "7:45", CheckOut: "16:00"})
	require.NoError(t, err)
	assert.Equal(t, "07:45", early.CheckIn, "las marcas se guardan como HH:MM")
	assert.Equal(t, entity.AttendancePresent, early.Status)
	require.NoError(t, uc.Delete(ctx, early.ID))

	list, err := uc.List(ctx, dto.AttendanceFilter{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "2026-03-03", list[0].Date, "más recientes primero")

	ranged, err := uc.List(ctx, dto.AttendanceFilter{From: "2026-03-02", Query: "maria"})
	require.NoError(t, err)
	require.Len(t, ranged, 1)
	assert.Equal(t, entity.AttendanceAbsent, ranged[0].Status)

	updated, err := uc.Update(ctx, first.ID, map[string]any{"checkIn": "09:00", "status": "present"})
	require.NoError(t, err)
	assert.Equal(t, entity.AttendanceLate, updated.Status, "el estado se recalcula, no se acepta del cliente")
	require.NotNil(t, updated.Hours)
	assert.Equal(t, 7.0, *updated.Hours)

	require.NoError(t, uc.Delete(ctx, first.ID))
	assert.ErrorIs(t, uc.Delete(ctx, first.ID), domain.ErrNotFound)
}

func TestAttendance_ZonaHorariaDeConfiguracion(t *testing.T) {
	ctx := context.Background()
	store := memory.NewRecordStore()
	uc := NewAttendanceUseCase(store, NewSettingsUseCase(store, nil), nil)
	// 12:10 UTC en julio son las 08:10 en Santiago (UTC-4).
	uc.now = clock(time.Date(2026, 7, 1, 12, 10, 0, 0, time.UTC))

	rec, err := uc.CheckIn(ctx, entity.User{Base: entity.Base{ID: "u1"}, Name: "Pedro"})
	require.NoError(t, err)
	assert.Equal(t, "2026-07-01", rec.Date)
	assert.Equal(t, "08:10", rec.CheckIn)
	assert.Equal(t, entity.AttendancePresent, rec.Status)
}

func TestSettings_Location(t *testing.T) {
	ctx := context.Background()
	store := memory.NewRecordStore()
	uc := NewSettingsUseCase(store, nil)

	loc, err := uc.Location(ctx)
	require.NoError(t, err)
	assert.Equal(t, "America/Santiago", loc.String())

	_, err = uc.Update(ctx, map[string]any{"timezone": "Marte/Olympus"})
	require.NoError(t, err)
	loc, err = uc.Location(ctx)
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc, "una zona desconocida cae a UTC")
}

func TestWorkshop_CrearYCompletar(t *testing.T) {
	ctx := context.Background()
	store := memory.NewRecordStore()
	clients := NewClientUseCase(store, nil)
	vehicles := NewVehicleUseCase(store, nil)
	uc := NewWorkshopUseCase(store, nil)
	uc.now = clock(fixedNow)

	ana, err := clients.Create(ctx, entity.Client{Name: "Ana"})
	require.NoError(t, err)
	v, err := vehicles.Create(ctx, entity.Vehicle{Plates: "KLMN34", ClientID: ana.ID})
	require.NoError(t, err)

	order, err := uc.Create(ctx, dto.CreateWorkshopOrderRequest{VehicleID: v.ID, Description: "Cambio de celdas", ReceivedBy: "u9", EstimatedCost: decimal.NewFromInt(90000)})
	require.NoError(t, err)
	assert.Equal(t, entity.WorkshopPending, order.Status)
	assert.Equal(t, "u9", order.ReceivedBy)
	assert.Equal(t, "KLMN34", order.VehiclePlates)
	assert.Equal(t, ana.ID, order.ClientID)
	assert.Equal(t, "Ana", order.ClientName)
	assert.NotNil(t, order.Services)

	_, err = uc.Create(ctx, dto.CreateWorkshopOrderRequest{VehicleID: "nope"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.UpdateStatus(ctx, order.ID, dto.WorkshopStatusRequest{Status: "done"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	started, err := uc.UpdateStatus(ctx, order.ID, dto.WorkshopStatusRequest{Status: entity.WorkshopInProgress})
	require.NoError(t, err)
	require.NotNil(t, started.StartedAt)
	assert.True(t, started.StartedAt.Equal(fixedNow))

	cost := decimal.NewFromInt(95000)
	done, err := uc.UpdateStatus(ctx, order.ID, dto.WorkshopStatusRequest{Status: entity.WorkshopCompleted, ActualCost: &cost})
	require.NoError(t, err)
	require.NotNil(t, done.CompletedAt)
	assert.True(t, done.CompletedAt.Equal(fixedNow))
	require.NotNil(t, done.ActualCost)
	assert.True(t, done.ActualCost.Equal(cost))

	open, err := uc.Open(ctx)
	require.NoError(t, err)
	assert.Empty(t, open)

	patched, err := uc.Update(ctx, order.ID, map[string]any{"status": entity.WorkshopPending, "description": "Cambio de celdas y BMS"})
	require.NoError(t, err)
	assert.Equal(t, entity.WorkshopCompleted, patched.Status, "el estado solo cambia por UpdateStatus")
	assert.Equal(t, "Cambio de celdas y BMS", patched.Description)

	list, err := uc.List(ctx, dto.WorkshopFilter{Query: "klmn"})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestSettings_DefaultsPerezosos(t *testing.T) {
	ctx := context.Background()
	store := memory.NewRecordStore()
	uc := NewSettingsUseCase(store, nil)
	uc.now = clock(fixedNow)

	s, err := uc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "CLP", s.Currency)
	assert.Equal(t, entity.SettingsID, s.ID)

	n, err := store.Count(ctx, "litio_erp_settings")
	require.NoError(t, err)
	assert.Equal(t, 1, n, "la primera lectura persiste la configuración")

	later := fixedNow.Add(time.Hour)
	uc.now = clock(later)
	updated, err := uc.Update(ctx, map[string]any{"company_name": "Litio Norte", "created_at": "1999-01-01T00:00:00Z"})
	require.NoError(t, err)
	assert.Equal(t, "Litio Norte", updated.CompanyName)
	assert.True(t, updated.UpdatedAt.Equal(later))
	assert.True(t, updated.CreatedAt.Equal(fixedNow))
}

func TestNotifications_PorUsuario(t *testing.T) {
	ctx := context.Background()
	uc := NewNotificationUseCase(memory.NewRecordStore(), nil)

	uc.now = clock(fixedNow)
	older, err := uc.Create(ctx, dto.CreateNotificationRequest{UserID: "u1", Title: "Primera", Type: entity.NotificationOverdue, ReferenceID: "o1"})
	require.NoError(t, err)
	uc.now = clock(fixedNow.Add(time.Minute))
	newer, err := uc.Create(ctx, dto.CreateNotificationRequest{UserID: "u1", Title: "Segunda"})
	require.NoError(t, err)
	assert.Equal(t, entity.NotificationInfo, newer.Type)
	_, err = uc.Create(ctx, dto.CreateNotificationRequest{UserID: "u2", Title: "Ajena"})
	require.NoError(t, err)

	_, err = uc.Create(ctx, dto.CreateNotificationRequest{UserID: "u1", Title: "x", Type: "spam"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	list, err := uc.ListForUser(ctx, "u1", false)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID)

	_, err = uc.MarkRead(ctx, "u2", older.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound, "no se marcan avisos de otro usuario")

	_, err = uc.MarkRead(ctx, "u1", older.ID)
	require.NoError(t, err)
	n, err := uc.UnreadCount(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	changed, err := uc.MarkAllRead(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, changed)

	ok, err := uc.Exists(ctx, "u1", entity.NotificationOverdue, "o1")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = uc.Exists(ctx, "u1", entity.NotificationDeadline, "o1")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.ErrorIs(t, uc.Delete(ctx, "u2", older.ID), domain.ErrNotFound)
	require.NoError(t, uc.Delete(ctx, "u1", older.ID))
}

func TestChat_VisibilidadYPolling(t *testing.T) {
	ctx := context.Background()
	store := memory.NewRecordStore()
	uc := NewChatUseCase(store, nil)

	ana := entity.User{Base: entity.Base{ID: "ana"}, Name: "Ana", Role: entity.RoleAdmin, Status: entity.UserStatusActive}
	beto := entity.User{Base: entity.Base{ID: "beto"}, Name: "Beto", Role: entity.RoleColaborador, Status: entity.UserStatusActive}
	caro := entity.User{Base: entity.Base{ID: "caro"}, Name: "Caro", Role: entity.RoleColaborador, Status: entity.UserStatusInactive}
	require.NoError(t, uc.users.Set(ctx, []entity.User{ana, beto, caro}))

	uc.now = clock(fixedNow)
	_, err := uc.Send(ctx, ana, dto.SendMessageRequest{Message: "Hola a todos"})
	require.NoError(t, err)
	uc.now = clock(fixedNow.Add(time.Minute))
	toBeto := "beto"
	direct, err := uc.Send(ctx, ana, dto.SendMessageRequest{ReceiverID: &toBeto, Message: " solo para ti "})
	require.NoError(t, err)
	assert.Equal(t, "solo para ti", direct.Message)
	assert.Equal(t, entity.RoleAdmin, direct.SenderRole)

	_, err = uc.Send(ctx, ana, dto.SendMessageRequest{Message: "   "})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	ghost := "ghost"
	_, err = uc.Send(ctx, ana, dto.SendMessageRequest{ReceiverID: &ghost, Message: "hola"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	forCaro, err := uc.Messages(ctx, "caro", dto.ChatQuery{})
	require.NoError(t, err)
	assert.Len(t, forCaro, 1, "los mensajes directos no son visibles para terceros")

	forBeto, err := uc.Messages(ctx, "beto", dto.ChatQuery{Since: fixedNow})
	require.NoError(t, err)
	require.Len(t, forBeto, 1)
	assert.Equal(t, direct.ID, forBeto[0].ID)

	conv, err := uc.Messages(ctx, "ana", dto.ChatQuery{With: "beto"})
	require.NoError(t, err)
	assert.Len(t, conv, 1)

	users, err := uc.ChatUsers(ctx, "ana")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "beto", users[0].ID)
}

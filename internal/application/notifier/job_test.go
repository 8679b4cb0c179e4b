package notifier

import (
	"context"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/litio-erp/internal/application/storage"
	"github.com/jhoicas/litio-erp/internal/application/usecase"
	"github.com/jhoicas/litio-erp/internal/domain/entity"
	"github.com/jhoicas/litio-erp/internal/infrastructure/memory"
	"github.com/jhoicas/litio-erp/pkg/logger"
)

type stubInvoices struct{ calls int }

func (s *stubInvoices) MarkOverdue(context.Context) (int, error) {
	s.calls++
	return 2, nil
}

func TestRunOnce_AvisosSinDuplicar(t *testing.T) {
	ctx := context.Background()
	store := memory.NewRecordStore()
	orders := storage.NewCollection[entity.WorkshopOrder](store, storage.KeyWorkshopOrders, nil)
	seed := []entity.WorkshopOrder{
		{Base: entity.Base{ID: "late"}, VehiclePlates: "AB12", ClientName: "Ana", Status: entity.WorkshopInProgress, AssignedTo: "tec1", EstimatedCompletion: "2026-03-01", EstimatedCost: decimal.Zero},
		{Base: entity.Base{ID: "soon"}, VehiclePlates: "CD34", ClientName: "Luis", Status: entity.WorkshopPending, AssignedTo: "tec2", EstimatedCompletion: "2026-03-03", EstimatedCost: decimal.Zero},
		{Base: entity.Base{ID: "later"}, Status: entity.WorkshopPending, AssignedTo: "tec1", EstimatedCompletion: "2026-03-10", EstimatedCost: decimal.Zero},
		{Base: entity.Base{ID: "done"}, Status: entity.WorkshopCompleted, AssignedTo: "tec1", EstimatedCompletion: "2026-02-01", EstimatedCost: decimal.Zero},
		{Base: entity.Base{ID: "nobody"}, Status: entity.WorkshopPending, EstimatedCompletion: "2026-02-01", EstimatedCost: decimal.Zero},
	}
	require.NoError(t, orders.Set(ctx, seed))

	notifications := usecase.NewNotificationUseCase(store, nil)
	invoices := &stubInvoices{}
	job := NewJob(usecase.NewWorkshopUseCase(store, nil), notifications, invoices, nil, time.Hour, logger.Nop())
	job.now = func() time.Time { return time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC) }

	res, err := job.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, Result{Overdue: 1, Deadline: 1, InvoicesOverdue: 2}, res)

	tec1, err := notifications.ListForUser(ctx, "tec1", false)
	require.NoError(t, err)
	require.Len(t, tec1, 1)
	assert.Equal(t, "Servicio Vencido", tec1[0].Title)
	assert.Equal(t, "El servicio AB12 para Ana está vencido. Revisar urgentemente.", tec1[0].Message)
	assert.Equal(t, "late", tec1[0].ReferenceID)

	tec2, err := notifications.ListForUser(ctx, "tec2", false)
	require.NoError(t, err)
	require.Len(t, tec2, 1)
	assert.Equal(t, entity.NotificationDeadline, tec2[0].Type)

	again, err := job.RunOnce(ctx)
	require.NoError(t, err)
	assert.Zero(t, again.Overdue+again.Deadline, "una segunda pasada no repite avisos")
	assert.Equal(t, 2, invoices.calls)
}

func TestRunOnce_AvisaTambienAQuienRecibio(t *testing.T) {
	ctx := context.Background()
	store := memory.NewRecordStore()
	orders := storage.NewCollection[entity.WorkshopOrder](store, storage.KeyWorkshopOrders, nil)
	started := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	seed := []entity.WorkshopOrder{
		{Base: entity.Base{ID: "late"}, VehiclePlates: "AB12", ClientName: "Ana", Status: entity.WorkshopPending, AssignedTo: "tec1", ReceivedBy: "rec1", EstimatedCompletion: "2026-03-01", EstimatedCost: decimal.Zero},
		{Base: entity.Base{ID: "slow"}, VehiclePlates: "CD34", ClientName: "Luis", Status: entity.WorkshopInProgress, AssignedTo: "tec2", ReceivedBy: "rec1", StartedAt: &started, EstimatedCost: decimal.Zero},
		{Base: entity.Base{ID: "fresh"}, Status: entity.WorkshopInProgress, AssignedTo: "tec2", StartedAt: ptrTime(time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)), EstimatedCost: decimal.Zero},
		{Base: entity.Base{ID: "self"}, VehiclePlates: "EF56", Status: entity.WorkshopPending, AssignedTo: "tec3", ReceivedBy: "tec3", EstimatedCompletion: "2026-03-03", EstimatedCost: decimal.Zero},
	}
	require.NoError(t, orders.Set(ctx, seed))

	notifications := usecase.NewNotificationUseCase(store, nil)
	job := NewJob(usecase.NewWorkshopUseCase(store, nil), notifications, nil, nil, time.Hour, logger.Nop())
	job.now = func() time.Time { return time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC) }

	res, err := job.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, Result{Overdue: 2, Deadline: 1, Delayed: 2}, res)

	rec1, err := notifications.ListForUser(ctx, "rec1", false)
	require.NoError(t, err)
	require.Len(t, rec1, 2)
	messages := []string{rec1[0].Message, rec1[1].Message}
	assert.Contains(t, messages, "El servicio AB12 que recibiste está vencido. Contactar al técnico.")
	assert.Contains(t, messages, "El servicio CD34 está demorado. Consultar con el técnico.")

	tec2, err := notifications.ListForUser(ctx, "tec2", false)
	require.NoError(t, err)
	require.Len(t, tec2, 1, "la orden iniciada hace una hora no está demorada")
	assert.Equal(t, entity.NotificationWarning, tec2[0].Type)
	assert.Equal(t, "slow", tec2[0].ReferenceID)

	tec3, err := notifications.ListForUser(ctx, "tec3", false)
	require.NoError(t, err)
	assert.Len(t, tec3, 1, "técnico y receptor iguales reciben un solo aviso")

	again, err := job.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, Result{}, again)
}

type fixedZone struct{ loc *time.Location }

func (z fixedZone) Location(context.Context) (*time.Location, error) { return z.loc, nil }

func TestRunOnce_UsaZonaDelNegocio(t *testing.T) {
	ctx := context.Background()
	store := memory.NewRecordStore()
	orders := storage.NewCollection[entity.WorkshopOrder](store, storage.KeyWorkshopOrders, nil)
	require.NoError(t, orders.Set(ctx, []entity.WorkshopOrder{
		{Base: entity.Base{ID: "o1"}, VehiclePlates: "AB12", Status: entity.WorkshopPending, AssignedTo: "tec1", EstimatedCompletion: "2026-07-02", EstimatedCost: decimal.Zero},
	}))
	santiago, err := time.LoadLocation("America/Santiago")
	require.NoError(t, err)

	notifications := usecase.NewNotificationUseCase(store, nil)
	job := NewJob(usecase.NewWorkshopUseCase(store, nil), notifications, nil, fixedZone{santiago}, time.Hour, logger.Nop())
	// 02:00 UTC del 2 de julio es todavía 1 de julio en Santiago: la orden vence mañana.
	job.now = func() time.Time { return time.Date(2026, 7, 2, 2, 0, 0, 0, time.UTC) }

	res, err := job.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, Result{Deadline: 1}, res)
}

func ptrTime(t time.Time) *time.Time { return &t }

func TestStart_SeDetieneConElContexto(t *testing.T) {
	store := memory.NewRecordStore()
	job := NewJob(usecase.NewWorkshopUseCase(store, nil), usecase.NewNotificationUseCase(store, nil), nil, nil, time.Millisecond, logger.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		job.Start(ctx)
		close(done)
	}()
	time.Sleep(5 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Start no terminó tras cancelar el contexto")
	}
}

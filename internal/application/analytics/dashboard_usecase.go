// Package analytics calcula los indicadores del panel principal.
package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/litio-erp/internal/application/dto"
	"github.com/jhoicas/litio-erp/internal/application/storage"
	"github.com/jhoicas/litio-erp/internal/domain/entity"
	"github.com/jhoicas/litio-erp/internal/domain/repository"
	"github.com/jhoicas/litio-erp/pkg/textfold"
)

const dashboardTopItems = 5 // líneas en el widget de más vendidos

// ZoneSource entrega la zona horaria del negocio.
type ZoneSource interface {
	Location(ctx context.Context) (*time.Location, error)
}

// DashboardUseCase genera el resumen del día y del mes en curso.
// Lee las colecciones directamente; no guarda nada.
type DashboardUseCase struct {
	items      *storage.Collection[entity.InventoryItem, *entity.InventoryItem]
	orders     *storage.Collection[entity.WorkshopOrder, *entity.WorkshopOrder]
	invoices   *storage.Collection[entity.Invoice, *entity.Invoice]
	attendance *storage.Collection[entity.AttendanceRecord, *entity.AttendanceRecord]
	zone       ZoneSource
	now        func() time.Time
}

// NewDashboardUseCase construye el caso de uso. Con zone nil "hoy" es el de la hora del servidor.
func NewDashboardUseCase(store repository.RecordStore, zone ZoneSource) *DashboardUseCase {
	return &DashboardUseCase{
		items:      storage.NewCollection[entity.InventoryItem](store, storage.KeyInventory, nil),
		orders:     storage.NewCollection[entity.WorkshopOrder](store, storage.KeyWorkshopOrders, nil),
		invoices:   storage.NewCollection[entity.Invoice](store, storage.KeyInvoices, nil),
		attendance: storage.NewCollection[entity.AttendanceRecord](store, storage.KeyAttendance, nil),
		zone:       zone,
		now:        time.Now,
	}
}

// GetSummary construye el resumen. Las cuatro colecciones se leen en paralelo.
//
// Ventas: facturas que no son borrador, por fecha de creación.
// Pendientes: facturas enviadas o vencidas.
func (uc *DashboardUseCase) GetSummary(ctx context.Context) (*dto.DashboardSummary, error) {
	now := uc.now()
	if uc.zone != nil {
		loc, err := uc.zone.Location(ctx)
		if err != nil {
			return nil, err
		}
		now = now.In(loc)
	}
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	today := now.Format("2006-01-02")

	var (
		items      []entity.InventoryItem
		orders     []entity.WorkshopOrder
		invoices   []entity.Invoice
		attendance []entity.AttendanceRecord
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		items, err = uc.items.Get(gctx)
		return err
	})
	g.Go(func() (err error) {
		orders, err = uc.orders.Get(gctx)
		return err
	})
	g.Go(func() (err error) {
		invoices, err = uc.invoices.Get(gctx)
		return err
	})
	g.Go(func() (err error) {
		attendance, err = uc.attendance.Get(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}

	out := &dto.DashboardSummary{
		TotalProducts: len(items),
		TodaySales:    decimal.Zero,
		MonthlySales:  decimal.Zero,
		DateLabel:     monthLabel(now),
	}
	for i := range items {
		if items[i].IsLowStock() {
			out.LowStockProducts++
		}
	}
	for i := range orders {
		if orders[i].IsOpen() {
			out.ActiveOrders++
		}
	}
	for _, r := range attendance {
		if r.Date == today && r.Status != entity.AttendanceAbsent {
			out.TodayAttendance++
		}
	}

	top := make(map[string]*dto.TopItem)
	for _, inv := range invoices {
		switch inv.Status {
		case entity.InvoiceStatusSent, entity.InvoiceStatusOverdue:
			out.PendingInvoices++
		case entity.InvoiceStatusDraft:
			continue
		}
		created := inv.CreatedAt.In(now.Location())
		if created.Before(monthStart) || created.After(now) {
			continue
		}
		out.MonthlySales = out.MonthlySales.Add(inv.Total)
		if !created.Before(todayStart) {
			out.TodaySales = out.TodaySales.Add(inv.Total)
		}
		for _, line := range inv.Items {
			key := textfold.Fold(line.Name)
			t, ok := top[key]
			if !ok {
				t = &dto.TopItem{Name: line.Name, Quantity: decimal.Zero, Revenue: decimal.Zero}
				top[key] = t
			}
			t.Quantity = t.Quantity.Add(line.Quantity)
			t.Revenue = t.Revenue.Add(line.Total)
		}
	}
	out.TodaySales = out.TodaySales.Round(2)
	out.MonthlySales = out.MonthlySales.Round(2)
	out.TopItems = topItems(top, dashboardTopItems)
	return out, nil
}

// topItems ordena por ingresos y luego por nombre.
func topItems(m map[string]*dto.TopItem, n int) []dto.TopItem {
	out := make([]dto.TopItem, 0, len(m))
	for _, t := range m {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Revenue.Equal(out[j].Revenue) {
			return out[i].Revenue.GreaterThan(out[j].Revenue)
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// monthLabel devuelve una etiqueta legible del mes, ej: "Marzo 2026".
func monthLabel(t time.Time) string {
	months := [...]string{
		"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
		"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
	}
	return fmt.Sprintf("%s %d", months[t.Month()-1], t.Year())
}

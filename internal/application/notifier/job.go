// Package notifier revisa periódicamente las órdenes de taller y avisa al técnico asignado y a
// quien recibió el vehículo de las vencidas, las que vencen mañana y las demoradas en curso.
package notifier

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/litio-erp/internal/application/dto"
	"github.com/jhoicas/litio-erp/internal/domain/entity"
	"github.com/jhoicas/litio-erp/pkg/logger"
)

const (
	dateLayout    = "2006-01-02"
	referenceType = "workshop_order"
	// delayAfter tiempo en curso a partir del cual una orden se considera demorada.
	delayAfter = 24 * time.Hour
)

// OrderSource entrega las órdenes de taller abiertas.
type OrderSource interface {
	Open(ctx context.Context) ([]entity.WorkshopOrder, error)
}

// Notifications persiste avisos y consulta si ya existen.
type Notifications interface {
	Exists(ctx context.Context, userID, notificationType, referenceID string) (bool, error)
	Create(ctx context.Context, in dto.CreateNotificationRequest) (*entity.Notification, error)
}

// InvoiceMarker pasa a overdue las facturas vencidas.
type InvoiceMarker interface {
	MarkOverdue(ctx context.Context) (int, error)
}

// ZoneSource entrega la zona horaria del negocio.
type ZoneSource interface {
	Location(ctx context.Context) (*time.Location, error)
}

// Result resumen de una pasada: avisos creados por tipo y facturas marcadas.
type Result struct {
	Overdue         int
	Deadline        int
	Delayed         int
	InvoicesOverdue int
}

// Job revisión periódica de vencimientos.
type Job struct {
	orders        OrderSource
	notifications Notifications
	invoices      InvoiceMarker
	zone          ZoneSource
	interval      time.Duration
	log           *logger.Logger
	now           func() time.Time
}

// NewJob construye el job. invoices y zone pueden ser nil.
func NewJob(orders OrderSource, notifications Notifications, invoices InvoiceMarker, zone ZoneSource, interval time.Duration, log *logger.Logger) *Job {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Job{
		orders:        orders,
		notifications: notifications,
		invoices:      invoices,
		zone:          zone,
		interval:      interval,
		log:           log.Component("notifier"),
		now:           time.Now,
	}
}

// Start ejecuta una pasada inmediata y luego una por intervalo hasta que ctx se cancele.
func (j *Job) Start(ctx context.Context) {
	j.log.Info().Dur("interval", j.interval).Msg("notificador iniciado")
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()
	for {
		if _, err := j.RunOnce(ctx); err != nil && ctx.Err() == nil {
			j.log.Error().Err(err).Msg("revisión de vencimientos fallida")
		}
		select {
		case <-ctx.Done():
			j.log.Info().Msg("notificador detenido")
			return
		case <-ticker.C:
		}
	}
}

// notice aviso con su texto para el técnico y para quien recibió la orden.
type notice struct {
	kind, title         string
	forTech, forReceipt string
}

// RunOnce revisa las órdenes abiertas: vencidas (estimación anterior a hoy), que vencen mañana
// y en curso hace más de 24 horas. No repite un aviso para el mismo (usuario, tipo, orden).
func (j *Job) RunOnce(ctx context.Context) (Result, error) {
	var res Result
	now := j.now()
	if j.zone != nil {
		loc, err := j.zone.Location(ctx)
		if err != nil {
			return res, fmt.Errorf("zona horaria: %w", err)
		}
		now = now.In(loc)
	}
	today := now.Format(dateLayout)
	tomorrow := now.AddDate(0, 0, 1).Format(dateLayout)

	open, err := j.orders.Open(ctx)
	if err != nil {
		return res, fmt.Errorf("listar órdenes abiertas: %w", err)
	}
	for _, o := range open {
		for _, n := range notices(o, today, tomorrow, now) {
			created, err := j.deliver(ctx, o, n)
			if err != nil {
				return res, err
			}
			switch n.kind {
			case entity.NotificationOverdue:
				res.Overdue += created
			case entity.NotificationDeadline:
				res.Deadline += created
			default:
				res.Delayed += created
			}
		}
	}

	if j.invoices != nil {
		n, err := j.invoices.MarkOverdue(ctx)
		if err != nil {
			return res, fmt.Errorf("marcar facturas vencidas: %w", err)
		}
		res.InvoicesOverdue = n
	}

	j.log.Info().
		Int("open_orders", len(open)).
		Int("overdue", res.Overdue).
		Int("deadline", res.Deadline).
		Int("delayed", res.Delayed).
		Int("invoices_overdue", res.InvoicesOverdue).
		Msg("revisión de vencimientos")
	return res, nil
}

// notices avisos que corresponden a la orden en este momento.
func notices(o entity.WorkshopOrder, today, tomorrow string, now time.Time) []notice {
	var out []notice
	f := folio(o)
	switch {
	case o.EstimatedCompletion == "":
	case o.EstimatedCompletion < today:
		out = append(out, notice{
			kind:       entity.NotificationOverdue,
			title:      "Servicio Vencido",
			forTech:    fmt.Sprintf("El servicio %s para %s está vencido. Revisar urgentemente.", f, o.ClientName),
			forReceipt: fmt.Sprintf("El servicio %s que recibiste está vencido. Contactar al técnico.", f),
		})
	case o.EstimatedCompletion == tomorrow:
		out = append(out, notice{
			kind:       entity.NotificationDeadline,
			title:      "Servicio Próximo a Vencer",
			forTech:    fmt.Sprintf("El servicio %s para %s vence mañana. Revisar progreso.", f, o.ClientName),
			forReceipt: fmt.Sprintf("El servicio %s que recibiste vence mañana. Verificar estado.", f),
		})
	}
	if o.Status == entity.WorkshopInProgress && o.StartedAt != nil && now.Sub(*o.StartedAt) > delayAfter {
		out = append(out, notice{
			kind:       entity.NotificationWarning,
			title:      "Servicio Demorado",
			forTech:    fmt.Sprintf("El servicio %s lleva más de 24 horas en curso. Completar el trabajo.", f),
			forReceipt: fmt.Sprintf("El servicio %s está demorado. Consultar con el técnico.", f),
		})
	}
	return out
}

// deliver crea el aviso para el técnico y para quien recibió la orden, salvo los ya existentes.
func (j *Job) deliver(ctx context.Context, o entity.WorkshopOrder, n notice) (int, error) {
	created := 0
	targets := []struct{ userID, message string }{
		{o.AssignedTo, n.forTech},
		{o.ReceivedBy, n.forReceipt},
	}
	for i, t := range targets {
		if t.userID == "" || (i == 1 && t.userID == o.AssignedTo) {
			continue
		}
		exists, err := j.notifications.Exists(ctx, t.userID, n.kind, o.ID)
		if err != nil {
			return created, err
		}
		if exists {
			continue
		}
		if _, err := j.notifications.Create(ctx, dto.CreateNotificationRequest{
			UserID:        t.userID,
			Title:         n.title,
			Message:       t.message,
			Type:          n.kind,
			ReferenceType: referenceType,
			ReferenceID:   o.ID,
		}); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

// folio identifica la orden en el mensaje: patente del vehículo o, si falta, el id.
func folio(o entity.WorkshopOrder) string {
	if o.VehiclePlates != "" {
		return o.VehiclePlates
	}
	return o.ID
}

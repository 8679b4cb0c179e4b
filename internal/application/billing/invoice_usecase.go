// Package billing facturas: cálculo de totales con IVA, estados y PDF.
package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/litio-erp/internal/application/dto"
	"github.com/jhoicas/litio-erp/internal/application/storage"
	"github.com/jhoicas/litio-erp/internal/domain"
	"github.com/jhoicas/litio-erp/internal/domain/entity"
	"github.com/jhoicas/litio-erp/internal/domain/repository"
	"github.com/jhoicas/litio-erp/pkg/logger"
	"github.com/jhoicas/litio-erp/pkg/textfold"
)

const dateLayout = "2006-01-02"

// DefaultTaxRate IVA aplicado cuando no se configura otro.
var DefaultTaxRate = decimal.RequireFromString("0.19")

// ParseTaxRate interpreta INVOICE_TAX_RATE. Vacío => DefaultTaxRate.
func ParseTaxRate(s string) (decimal.Decimal, error) {
	if strings.TrimSpace(s) == "" {
		return DefaultTaxRate, nil
	}
	rate, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("tasa de impuesto %q: %w", s, err)
	}
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return decimal.Zero, fmt.Errorf("tasa de impuesto %s fuera de rango [0,1]", rate)
	}
	return rate, nil
}

// InvoiceUseCase alta, edición y estados de facturas.
type InvoiceUseCase struct {
	invoices *storage.Collection[entity.Invoice, *entity.Invoice]
	clients  *storage.Collection[entity.Client, *entity.Client]
	taxRate  decimal.Decimal
	log      *logger.Logger
	now      func() time.Time
}

// NewInvoiceUseCase construye el caso de uso con la tasa de IVA indicada.
func NewInvoiceUseCase(store repository.RecordStore, taxRate decimal.Decimal, log *logger.Logger) *InvoiceUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &InvoiceUseCase{
		invoices: storage.NewCollection[entity.Invoice](store, storage.KeyInvoices, log),
		clients:  storage.NewCollection[entity.Client](store, storage.KeyClients, log),
		taxRate:  taxRate,
		log:      log,
		now:      time.Now,
	}
}

// TaxRate tasa de IVA vigente.
func (uc *InvoiceUseCase) TaxRate() decimal.Decimal { return uc.taxRate }

// List filtra por estado, cliente y texto (nombre de cliente o de ítem).
func (uc *InvoiceUseCase) List(ctx context.Context, f dto.InvoiceFilter) ([]entity.Invoice, error) {
	return uc.invoices.Filter(ctx, func(inv entity.Invoice) bool {
		if f.Status != "" && inv.Status != f.Status {
			return false
		}
		if f.ClientID != "" && inv.ClientID != f.ClientID {
			return false
		}
		if f.Query == "" {
			return true
		}
		fields := []string{inv.ID, inv.ClientName}
		for _, it := range inv.Items {
			fields = append(fields, it.Name)
		}
		return textfold.Contains(f.Query, fields...)
	})
}

// Get obtiene una factura por id.
func (uc *InvoiceUseCase) Get(ctx context.Context, id string) (*entity.Invoice, error) {
	inv, err := uc.invoices.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// Create valida el cliente y los ítems, calcula totales y guarda la factura.
func (uc *InvoiceUseCase) Create(ctx context.Context, in dto.CreateInvoiceRequest) (*entity.Invoice, error) {
	if in.Status == "" {
		in.Status = entity.InvoiceStatusDraft
	}
	if !entity.ValidInvoiceStatus(in.Status) {
		return nil, fmt.Errorf("%w: estado %q", domain.ErrInvalidInput, in.Status)
	}
	if err := validDueDate(in.DueDate); err != nil {
		return nil, err
	}
	client, err := uc.client(ctx, in.ClientID)
	if err != nil {
		return nil, err
	}
	items, err := buildItems(in.Items)
	if err != nil {
		return nil, err
	}
	inv := entity.Invoice{
		ClientID:   client.ID,
		ClientName: client.Name,
		Items:      items,
		Status:     in.Status,
		CreatedAt:  uc.now().UTC(),
		DueDate:    in.DueDate,
	}
	uc.applyTotals(&inv)
	created, err := uc.invoices.Add(ctx, inv)
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("invoice_id", created.ID).Str("total", created.Total.String()).Msg("factura creada")
	return &created, nil
}

// Update edita cliente, ítems, vencimiento o estado. Una factura pagada no se edita.
func (uc *InvoiceUseCase) Update(ctx context.Context, id string, in dto.UpdateInvoiceRequest) (*entity.Invoice, error) {
	if in.DueDate != nil {
		if err := validDueDate(*in.DueDate); err != nil {
			return nil, err
		}
	}
	if in.Status != nil && !entity.ValidInvoiceStatus(*in.Status) {
		return nil, fmt.Errorf("%w: estado %q", domain.ErrInvalidInput, *in.Status)
	}
	var client *entity.Client
	if in.ClientID != nil {
		c, err := uc.client(ctx, *in.ClientID)
		if err != nil {
			return nil, err
		}
		client = c
	}
	var items []entity.InvoiceItem
	if in.Items != nil {
		built, err := buildItems(in.Items)
		if err != nil {
			return nil, err
		}
		items = built
	}
	updated, err := uc.invoices.Mutate(ctx, id, func(inv *entity.Invoice) error {
		if inv.Status == entity.InvoiceStatusPaid {
			return fmt.Errorf("%w: la factura ya está pagada", domain.ErrConflict)
		}
		if client != nil {
			inv.ClientID, inv.ClientName = client.ID, client.Name
		}
		if items != nil {
			inv.Items = items
			uc.applyTotals(inv)
		}
		if in.DueDate != nil {
			inv.DueDate = *in.DueDate
		}
		if in.Status != nil {
			inv.Status = *in.Status
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// UpdateStatus cambia el estado. paid es final: no vuelve a otro estado.
func (uc *InvoiceUseCase) UpdateStatus(ctx context.Context, id, status string) (*entity.Invoice, error) {
	if !entity.ValidInvoiceStatus(status) {
		return nil, fmt.Errorf("%w: estado %q", domain.ErrInvalidInput, status)
	}
	updated, err := uc.invoices.Mutate(ctx, id, func(inv *entity.Invoice) error {
		if inv.Status == entity.InvoiceStatusPaid && status != entity.InvoiceStatusPaid {
			return fmt.Errorf("%w: la factura ya está pagada", domain.ErrConflict)
		}
		inv.Status = status
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// MarkOverdue pasa a overdue las facturas enviadas con vencimiento anterior a hoy.
func (uc *InvoiceUseCase) MarkOverdue(ctx context.Context) (int, error) {
	today := uc.now().Format(dateLayout)
	due, err := uc.invoices.Filter(ctx, func(inv entity.Invoice) bool {
		return inv.Status == entity.InvoiceStatusSent && inv.DueDate != "" && inv.DueDate < today
	})
	if err != nil {
		return 0, err
	}
	for _, inv := range due {
		if _, err := uc.UpdateStatus(ctx, inv.ID, entity.InvoiceStatusOverdue); err != nil {
			return 0, err
		}
	}
	return len(due), nil
}

// Delete elimina la factura.
func (uc *InvoiceUseCase) Delete(ctx context.Context, id string) error {
	return uc.invoices.Delete(ctx, id)
}

// Summary conteos por estado y montos totales.
func (uc *InvoiceUseCase) Summary(ctx context.Context) (*dto.InvoiceSummary, error) {
	all, err := uc.invoices.Get(ctx)
	if err != nil {
		return nil, err
	}
	s := &dto.InvoiceSummary{Total: len(all), TotalAmount: decimal.Zero, PaidAmount: decimal.Zero}
	for _, inv := range all {
		s.TotalAmount = s.TotalAmount.Add(inv.Total)
		switch inv.Status {
		case entity.InvoiceStatusDraft, entity.InvoiceStatusSent:
			s.Pending++
		case entity.InvoiceStatusPaid:
			s.Paid++
			s.PaidAmount = s.PaidAmount.Add(inv.Total)
		case entity.InvoiceStatusOverdue:
			s.Overdue++
		}
	}
	return s, nil
}

// applyTotals subtotal = Σ cantidad×precio; IVA redondeado a 2 decimales; total = subtotal + IVA.
func (uc *InvoiceUseCase) applyTotals(inv *entity.Invoice) {
	subtotal := decimal.Zero
	for _, it := range inv.Items {
		subtotal = subtotal.Add(it.Total)
	}
	inv.Subtotal = subtotal
	inv.Tax = subtotal.Mul(uc.taxRate).Round(2)
	inv.Total = inv.Subtotal.Add(inv.Tax)
}

func (uc *InvoiceUseCase) client(ctx context.Context, id string) (*entity.Client, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: clientId es obligatorio", domain.ErrInvalidInput)
	}
	c, err := uc.clients.Find(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: cliente %s no existe", domain.ErrInvalidInput, id)
		}
		return nil, err
	}
	return &c, nil
}

func buildItems(in []dto.InvoiceItemRequest) ([]entity.InvoiceItem, error) {
	if len(in) == 0 {
		return nil, fmt.Errorf("%w: la factura necesita al menos un ítem", domain.ErrInvalidInput)
	}
	items := make([]entity.InvoiceItem, 0, len(in))
	for i, it := range in {
		if strings.TrimSpace(it.Name) == "" {
			return nil, fmt.Errorf("%w: ítem %d sin nombre", domain.ErrInvalidInput, i+1)
		}
		if !it.Quantity.IsPositive() {
			return nil, fmt.Errorf("%w: ítem %d con cantidad no positiva", domain.ErrInvalidInput, i+1)
		}
		if it.Price.IsNegative() {
			return nil, fmt.Errorf("%w: ítem %d con precio negativo", domain.ErrInvalidInput, i+1)
		}
		items = append(items, entity.InvoiceItem{
			ID:       uuid.NewString(),
			Name:     it.Name,
			Quantity: it.Quantity,
			Price:    it.Price,
			Total:    it.Quantity.Mul(it.Price),
		})
	}
	return items, nil
}

func validDueDate(s string) error {
	if s == "" {
		return nil
	}
	if _, err := time.Parse(dateLayout, s); err != nil {
		return fmt.Errorf("%w: dueDate debe tener formato YYYY-MM-DD", domain.ErrInvalidInput)
	}
	return nil
}

package billing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/litio-erp/internal/application/dto"
	"github.com/jhoicas/litio-erp/internal/application/usecase"
	"github.com/jhoicas/litio-erp/internal/domain"
	"github.com/jhoicas/litio-erp/internal/domain/entity"
)

type fakeGenerator struct {
	company *entity.Settings
	client  *entity.Client
	err     error
}

func (f *fakeGenerator) GenerateInvoicePDF(_ context.Context, _ *entity.Invoice, company *entity.Settings, client *entity.Client) ([]byte, error) {
	f.company, f.client = company, client
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF-fake"), nil
}

func TestDownloadInvoicePDF(t *testing.T) {
	invoices, store, client := newTestInvoices(t)
	ctx := context.Background()
	inv, err := invoices.Create(ctx, dto.CreateInvoiceRequest{ClientID: client.ID, Items: []dto.InvoiceItemRequest{item("x", "1", "10")}})
	require.NoError(t, err)

	gen := &fakeGenerator{}
	uc := NewPDFUseCase(store, usecase.NewSettingsUseCase(store, nil), gen, nil)

	out, name, err := uc.DownloadInvoicePDF(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-fake", string(out))
	assert.Equal(t, "factura_"+inv.ID[:8]+".pdf", name)
	assert.Equal(t, "Litio Service SpA", gen.company.CompanyName, "usa la configuración por defecto")
	assert.Equal(t, "Ana Pérez", gen.client.Name)

	_, _, err = uc.DownloadInvoicePDF(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	gen.err = errors.New("boom")
	_, _, err = uc.DownloadInvoicePDF(ctx, inv.ID)
	assert.Error(t, err)
}

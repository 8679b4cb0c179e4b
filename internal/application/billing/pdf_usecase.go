package billing

import (
	"context"
	"errors"
	"fmt"

	"github.com/jhoicas/litio-erp/internal/application/storage"
	"github.com/jhoicas/litio-erp/internal/application/usecase"
	"github.com/jhoicas/litio-erp/internal/domain"
	"github.com/jhoicas/litio-erp/internal/domain/entity"
	"github.com/jhoicas/litio-erp/internal/domain/repository"
	"github.com/jhoicas/litio-erp/pkg/logger"
)

// PDFUseCase arma los datos de la factura (empresa y cliente) y delega el render.
type PDFUseCase struct {
	invoices  *storage.Collection[entity.Invoice, *entity.Invoice]
	clients   *storage.Collection[entity.Client, *entity.Client]
	settings  *usecase.SettingsUseCase
	generator InvoicePDFGenerator
}

// NewPDFUseCase construye el caso de uso.
func NewPDFUseCase(store repository.RecordStore, settings *usecase.SettingsUseCase, generator InvoicePDFGenerator, log *logger.Logger) *PDFUseCase {
	return &PDFUseCase{
		invoices:  storage.NewCollection[entity.Invoice](store, storage.KeyInvoices, log),
		clients:   storage.NewCollection[entity.Client](store, storage.KeyClients, log),
		settings:  settings,
		generator: generator,
	}
}

// DownloadInvoicePDF devuelve el PDF y el nombre de archivo sugerido.
// Si el cliente fue eliminado se usa el nombre copiado en la factura.
func (uc *PDFUseCase) DownloadInvoicePDF(ctx context.Context, invoiceID string) ([]byte, string, error) {
	inv, err := uc.invoices.Find(ctx, invoiceID)
	if err != nil {
		return nil, "", err
	}
	company, err := uc.settings.Get(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener configuración: %w", err)
	}
	client, err := uc.clients.Find(ctx, inv.ClientID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		client = entity.Client{Base: entity.Base{ID: inv.ClientID}, Name: inv.ClientName}
	case err != nil:
		return nil, "", err
	}
	pdfBytes, err := uc.generator.GenerateInvoicePDF(ctx, &inv, company, &client)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generación fallida: %w", err)
	}
	return pdfBytes, FileName(inv), nil
}

// FileName nombre de descarga: factura_<primeros 8 caracteres del id>.pdf.
func FileName(inv entity.Invoice) string {
	short := inv.ID
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("factura_%s.pdf", short)
}

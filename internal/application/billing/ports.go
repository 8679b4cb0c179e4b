package billing

import (
	"context"

	"github.com/jhoicas/litio-erp/internal/domain/entity"
)

// InvoicePDFGenerator genera la representación en PDF de una factura.
// La implementación vive en infrastructure/pdf.
type InvoicePDFGenerator interface {
	GenerateInvoicePDF(ctx context.Context, invoice *entity.Invoice, company *entity.Settings, client *entity.Client) ([]byte, error)
}

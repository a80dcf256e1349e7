// Package adapters wires one module's service to another module's port
// without the two importing each other.
package adapters

import (
	"context"

	"github.com/google/uuid"

	"dealer_backoffice_backend/internal/email"
	"dealer_backoffice_backend/internal/pdf"
	"dealer_backoffice_backend/internal/quotes/service"
)

// QuotePDFAdapter renders quote documents for outbound email.
// It implements the email module's PDFSource interface.
type QuotePDFAdapter struct {
	quotes   *service.Service
	renderer *pdf.QuoteRenderer
}

func NewQuotePDFAdapter(quotes *service.Service, renderer *pdf.QuoteRenderer) *QuotePDFAdapter {
	return &QuotePDFAdapter{quotes: quotes, renderer: renderer}
}

func (a *QuotePDFAdapter) RenderQuotePDF(ctx context.Context, quoteID uuid.UUID) (email.Attachment, error) {
	quote, err := a.quotes.Get(ctx, quoteID)
	if err != nil {
		return email.Attachment{}, err
	}
	data, err := a.renderer.RenderQuote(quote)
	if err != nil {
		return email.Attachment{}, err
	}
	return email.Attachment{
		Content:  data,
		FileName: quote.QuoteNumber + ".pdf",
		MIMEType: "application/pdf",
	}, nil
}

var _ email.PDFSource = (*QuotePDFAdapter)(nil)

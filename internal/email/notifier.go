package email

import (
	"context"

	"github.com/google/uuid"

	domainevents "dealer_backoffice_backend/internal/events"
	"dealer_backoffice_backend/platform/events"
	"dealer_backoffice_backend/platform/logger"
)

// PDFSource renders the printable document for a quote. Implemented by an
// adapter over the quotes service and the PDF renderer.
type PDFSource interface {
	RenderQuotePDF(ctx context.Context, quoteID uuid.UUID) (Attachment, error)
}

// Notifier listens for quote lifecycle events and sends the matching mail.
type Notifier struct {
	sender Sender
	pdfs   PDFSource
	log    *logger.Logger
}

// NewNotifier creates a notifier over the given sender.
func NewNotifier(sender Sender, log *logger.Logger) *Notifier {
	return &Notifier{sender: sender, log: log}
}

// SetPDFSource wires the quote PDF renderer so sent-quote mail carries the
// document as an attachment.
func (n *Notifier) SetPDFSource(src PDFSource) {
	n.pdfs = src
}

// Register subscribes the notifier to the event bus.
func (n *Notifier) Register(bus events.Bus) {
	bus.Subscribe(domainevents.QuoteSentEvent, events.HandlerFunc(n.handleQuoteSent))
}

func (n *Notifier) handleQuoteSent(ctx context.Context, event events.Event) error {
	sent, ok := event.(domainevents.QuoteSent)
	if !ok {
		return nil
	}
	if sent.CustomerEmail == "" {
		n.log.Info("quote sent without customer email, skipping notification",
			"quote_number", sent.QuoteNumber)
		return nil
	}

	var attachments []Attachment
	if n.pdfs != nil {
		att, err := n.pdfs.RenderQuotePDF(ctx, sent.QuoteID)
		if err != nil {
			// The mail still goes out without the document.
			n.log.Error("failed to render quote pdf for email",
				"quote_number", sent.QuoteNumber, "error", err)
		} else {
			attachments = append(attachments, att)
		}
	}

	return n.sender.SendQuoteEmail(ctx, sent.CustomerEmail, sent.CustomerName, sent.QuoteNumber, attachments...)
}

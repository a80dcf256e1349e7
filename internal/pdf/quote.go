// Package pdf renders quotes to PDF documents for download and email
// attachment.
package pdf

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"dealer_backoffice_backend/internal/quotes/transport"
)

// QuoteRenderer renders quotes with the store letterhead.
type QuoteRenderer struct {
	storeName string
}

// NewQuoteRenderer creates a renderer with the given store name.
func NewQuoteRenderer(storeName string) *QuoteRenderer {
	if storeName == "" {
		storeName = "Dealer Back Office"
	}
	return &QuoteRenderer{storeName: storeName}
}

// RenderQuote produces the PDF document for a quote.
func (r *QuoteRenderer) RenderQuote(quote *transport.QuoteResponse) ([]byte, error) {
	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetTitle(fmt.Sprintf("Quote %s", quote.QuoteNumber), false)
	doc.AddPage()

	// Letterhead
	doc.SetFont("Helvetica", "B", 18)
	doc.Cell(0, 10, r.storeName)
	doc.Ln(12)
	doc.SetFont("Helvetica", "", 11)
	doc.Cell(0, 6, fmt.Sprintf("Quote %s", quote.QuoteNumber))
	doc.Ln(6)
	doc.Cell(0, 6, fmt.Sprintf("Prepared for: %s", quote.CustomerName))
	doc.Ln(6)
	if quote.ValidUntil != nil {
		doc.Cell(0, 6, fmt.Sprintf("Valid until: %s", quote.ValidUntil.Format("January 2, 2006")))
		doc.Ln(6)
	}
	doc.Ln(4)

	// Line item table
	doc.SetFont("Helvetica", "B", 10)
	doc.SetFillColor(235, 235, 235)
	doc.CellFormat(80, 8, "Item", "1", 0, "L", true, 0, "")
	doc.CellFormat(20, 8, "Qty", "1", 0, "C", true, 0, "")
	doc.CellFormat(35, 8, "Unit Price", "1", 0, "R", true, 0, "")
	doc.CellFormat(35, 8, "Total", "1", 1, "R", true, 0, "")

	doc.SetFont("Helvetica", "", 10)
	for _, item := range quote.Items {
		name := item.Product.Name
		if name == "" {
			name = item.Product.SKU
		}
		doc.CellFormat(80, 8, truncate(name, 48), "1", 0, "L", false, 0, "")
		doc.CellFormat(20, 8, fmt.Sprintf("%d", item.Quantity), "1", 0, "C", false, 0, "")
		doc.CellFormat(35, 8, "$"+item.UnitRetail.StringFixed(2), "1", 0, "R", false, 0, "")
		doc.CellFormat(35, 8, "$"+item.LineTotal.StringFixed(2), "1", 1, "R", false, 0, "")
	}
	doc.Ln(4)

	// Totals block
	writeTotal := func(label, amount string, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		doc.SetFont("Helvetica", style, 10)
		doc.CellFormat(135, 7, "", "", 0, "L", false, 0, "")
		doc.CellFormat(20, 7, label, "", 0, "R", false, 0, "")
		doc.CellFormat(35, 7, amount, "", 1, "R", false, 0, "")
	}
	writeTotal("Subtotal", "$"+quote.Subtotal.StringFixed(2), false)
	writeTotal("Tax", "$"+quote.Tax.StringFixed(2), false)
	writeTotal("Fees", "$"+quote.Fees.StringFixed(2), false)
	if !quote.CardFee.IsZero() {
		writeTotal("Card fee", "$"+quote.CardFee.StringFixed(2), false)
	}
	writeTotal("Total", "$"+quote.Total.StringFixed(2), true)

	if quote.Notes != "" {
		doc.Ln(6)
		doc.SetFont("Helvetica", "I", 9)
		doc.MultiCell(0, 5, quote.Notes, "", "L", false)
	}

	doc.Ln(8)
	doc.SetFont("Helvetica", "", 8)
	doc.SetTextColor(120, 120, 120)
	doc.MultiCell(0, 4,
		"All firearm transfers require a completed background check. "+
			"Transfer and processing fees are due at pickup.", "", "L", false)

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("render quote pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// truncate shortens a product name to max runes. Slicing by rune keeps
// multibyte names intact, and the plain "..." stays inside the cp1252
// range the core fonts cover.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}

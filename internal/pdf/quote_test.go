package pdf

import (
	"bytes"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"dealer_backoffice_backend/internal/pricing"
	"dealer_backoffice_backend/internal/quotes/domain"
	"dealer_backoffice_backend/internal/quotes/transport"
)

func TestTruncateSlicesByRune(t *testing.T) {
	tests := []struct {
		name  string
		input string
		max   int
		want  string
	}{
		{name: "short string untouched", input: "Glock 19 Gen5", max: 48, want: "Glock 19 Gen5"},
		{name: "ascii string shortened", input: strings.Repeat("x", 60), max: 10, want: "xxxxxxx..."},
		{name: "multibyte name not cut mid rune", input: "Kalashnikov – Jubiläumsmodell – Sonderedition längere Bezeichnung", max: 20, want: "Kalashnikov – Jub..."},
		{name: "exactly max untouched", input: strings.Repeat("ä", 10), max: 10, want: strings.Repeat("ä", 10)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := truncate(tc.input, tc.max)
			if got != tc.want {
				t.Fatalf("truncate(%q, %d) = %q, want %q", tc.input, tc.max, got, tc.want)
			}
			if !utf8.ValidString(got) {
				t.Fatalf("truncate produced invalid UTF-8: %q", got)
			}
		})
	}
}

func TestRenderQuoteProducesPDF(t *testing.T) {
	renderer := NewQuoteRenderer("Test Armory")
	validUntil := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)

	quote := &transport.QuoteResponse{
		ID:           uuid.New(),
		QuoteNumber:  "QT-2026-0042",
		Status:       domain.StatusDraft,
		CustomerID:   uuid.New(),
		CustomerName: "Jordan Müller",
		Items: []transport.LineItemResponse{
			{
				Product:    pricing.Product{SKU: "GLK19G5", Name: "Glock 19 Gen5 9mm Luger Jubiläumsedition mit längerem Namen als die Tabelle"},
				Quantity:   2,
				UnitRetail: decimal.RequireFromString("531.25"),
				LineTotal:  decimal.RequireFromString("1062.50"),
			},
		},
		Subtotal:   decimal.RequireFromString("1062.50"),
		Tax:        decimal.RequireFromString("87.66"),
		Fees:       decimal.RequireFromString("25.00"),
		CardFee:    decimal.Zero,
		Total:      decimal.RequireFromString("1175.16"),
		Notes:      "FFL transfer at pickup.",
		ValidUntil: &validUntil,
	}

	data, err := renderer.RenderQuote(quote)
	if err != nil {
		t.Fatalf("expected render to succeed, got %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("expected a PDF document, got %d bytes without the header", len(data))
	}
}

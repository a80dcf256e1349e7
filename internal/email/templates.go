package email

import (
	"bytes"
	"html/template"
)

var quoteEmailTmpl = template.Must(template.New("quote").Parse(`<!DOCTYPE html>
<html>
  <body style="font-family: Arial, sans-serif; color: #222;">
    <h2>Your quote is ready</h2>
    <p>Hi {{.CustomerName}},</p>
    <p>Thanks for your interest. Your quote <strong>{{.QuoteNumber}}</strong>
    is attached. Prices and availability are held until the date shown on the
    quote.</p>
    <p>Reply to this email or give us a call with any questions.</p>
  </body>
</html>`))

type quoteEmailData struct {
	CustomerName string
	QuoteNumber  string
}

func renderQuoteEmail(customerName, quoteNumber string) (string, error) {
	var buf bytes.Buffer
	err := quoteEmailTmpl.Execute(&buf, quoteEmailData{
		CustomerName: customerName,
		QuoteNumber:  quoteNumber,
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

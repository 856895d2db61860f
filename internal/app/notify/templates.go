package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"invoicing-app/internal/infra/mailer"

	"github.com/shopspring/decimal"
)

var paymentConfirmationTmpl = template.Must(template.New("payment").Parse(`<p>Hello {{.CustomerName}},</p>
<p>We received your payment of <strong>{{.Currency}} {{.Amount}}</strong>{{if .InvoiceNumber}} for invoice {{.InvoiceNumber}}{{end}}.</p>
<p>Receipt number: <strong>{{.ReceiptNumber}}</strong><br>Reference: {{.Reference}}<br>Date: {{.Date}}</p>
<p>Thank you,<br>{{.BusinessName}}</p>`))

var invoiceTmpl = template.Must(template.New("invoice").Parse(`<p>Hello {{.CustomerName}},</p>
<p>{{.BusinessName}} has sent you invoice <strong>{{.InvoiceNumber}}</strong> for <strong>{{.Currency}} {{.Amount}}</strong>{{if .DueDate}}, due {{.DueDate}}{{end}}.</p>
{{if .PayURL}}<p><a href="{{.PayURL}}">Pay online</a></p>{{end}}`))

type PaymentConfirmation struct {
	To            string
	CustomerName  string
	BusinessName  string
	InvoiceNumber string
	ReceiptNumber string
	Reference     string
	Amount        decimal.Decimal
	Currency      string
	PaidAt        time.Time
}

func (p PaymentConfirmation) Message() (mailer.Message, error) {
	var buf bytes.Buffer
	err := paymentConfirmationTmpl.Execute(&buf, map[string]any{
		"CustomerName":  p.CustomerName,
		"BusinessName":  p.BusinessName,
		"InvoiceNumber": p.InvoiceNumber,
		"ReceiptNumber": p.ReceiptNumber,
		"Reference":     p.Reference,
		"Amount":        p.Amount.StringFixed(2),
		"Currency":      p.Currency,
		"Date":          p.PaidAt.Format("02 Jan 2006"),
	})
	if err != nil {
		return mailer.Message{}, err
	}
	return mailer.Message{
		To:      p.To,
		Subject: fmt.Sprintf("Payment received - %s", p.ReceiptNumber),
		HTML:    buf.String(),
		Tag:     "payment-confirmation",
	}, nil
}

type InvoiceNotice struct {
	To            string
	CustomerName  string
	BusinessName  string
	InvoiceNumber string
	Amount        decimal.Decimal
	Currency      string
	DueDate       *time.Time
	PayURL        string
}

func (n InvoiceNotice) due() string {
	if n.DueDate == nil {
		return ""
	}
	return n.DueDate.Format("02 Jan 2006")
}

func (n InvoiceNotice) Message() (mailer.Message, error) {
	var buf bytes.Buffer
	err := invoiceTmpl.Execute(&buf, map[string]any{
		"CustomerName":  n.CustomerName,
		"BusinessName":  n.BusinessName,
		"InvoiceNumber": n.InvoiceNumber,
		"Amount":        n.Amount.StringFixed(2),
		"Currency":      n.Currency,
		"DueDate":       n.due(),
		"PayURL":        n.PayURL,
	})
	if err != nil {
		return mailer.Message{}, err
	}
	return mailer.Message{
		To:      n.To,
		Subject: fmt.Sprintf("Invoice %s from %s", n.InvoiceNumber, n.BusinessName),
		HTML:    buf.String(),
		Tag:     "invoice",
	}, nil
}

// Text is the short form used for SMS and WhatsApp.
func (n InvoiceNotice) Text() string {
	s := fmt.Sprintf("%s: invoice %s for %s %s", n.BusinessName, n.InvoiceNumber, n.Currency, n.Amount.StringFixed(2))
	if due := n.due(); due != "" {
		s += ", due " + due
	}
	if n.PayURL != "" {
		s += ". Pay: " + n.PayURL
	}
	return s
}

package email

import (
	"strings"
	"text/template"
	"time"
)

// ReceiptData is the flat parameter set handed to the relay template.
// It carries copies of the order fields rather than the order itself so
// this package stays independent of the order model.
type ReceiptData struct {
	Reference string
	Customer  string
	Email     string
	Courses   []string
	Amount    int
	Status    string
	CreatedAt time.Time
}

const receiptTmpl = `KLASEMY ORDER RECEIPT
=====================

Reference: {{.Reference}}
Date:      {{.CreatedAt.Format "02 Jan 2006 15:04 MST"}}
Customer:  {{.Customer}} <{{.Email}}>
Status:    {{.Status}}

Items:
{{- range .Courses}}
  - {{.}}
{{- end}}

Total: {{.Amount}}

Thank you for your purchase. Keep the payment reference above for any
support request.
`

var receipt = template.Must(template.New("receipt").Parse(receiptTmpl))

// Render produces the fixed human-readable receipt layout used both for
// the outgoing email body and for the local fallback artifact.
func Render(data ReceiptData) string {
	var b strings.Builder
	if err := receipt.Execute(&b, data); err != nil {
		return "receipt unavailable: " + err.Error()
	}
	return b.String()
}

// Package email delivers order receipts. Delivery is best-effort by
// design: when the relay is not configured or refuses the message, the
// receipt is written to a local file instead and the caller is told the
// email did not go out. Nothing here ever blocks or undoes an order.
package email

import (
	"fmt"
	"net/smtp"
	"os"
	"path/filepath"
	"strings"
)

type Mailer struct {
	address    string
	password   string
	host       string
	port       string
	receiptDir string
}

func New(address, password, host, port, receiptDir string) *Mailer {
	return &Mailer{
		address:    address,
		password:   password,
		host:       host,
		port:       port,
		receiptDir: receiptDir,
	}
}

// SendReceipt mails the receipt for data to the customer. It returns
// true only when the relay accepted the message; on an unconfigured
// relay or a failed send it writes the plain-text fallback under the
// receipt directory and returns false. The returned error only ever
// concerns the fallback write itself.
func (m *Mailer) SendReceipt(data ReceiptData) (delivered bool, err error) {
	if m.configured() {
		if err := m.send(data.Email, "Your receipt from Klasemy", Render(data)); err == nil {
			return true, nil
		}
	}

	if err := m.writeFallback(data); err != nil {
		return false, fmt.Errorf("writing fallback receipt for order[%s]: %w", data.Reference, err)
	}

	return false, nil
}

// FallbackPath is where the local receipt artifact for the given
// payment reference lives, whether or not it has been written yet.
func (m *Mailer) FallbackPath(reference string) string {
	return filepath.Join(m.receiptDir, sanitize(reference)+".txt")
}

func (m *Mailer) configured() bool {
	return m.host != "" && m.address != ""
}

func (m *Mailer) send(to string, subject string, body string) error {
	msg := fmt.Sprintf("To: %s\r\nFrom: %s\r\nSubject: %s\r\n\r\n%s", to, m.address, subject, body)

	auth := smtp.PlainAuth("", m.address, m.password, m.host)
	return smtp.SendMail(m.host+":"+m.port, auth, m.address, []string{to}, []byte(msg))
}

func (m *Mailer) writeFallback(data ReceiptData) error {
	if err := os.MkdirAll(m.receiptDir, 0o755); err != nil {
		return err
	}

	return os.WriteFile(m.FallbackPath(data.Reference), []byte(Render(data)), 0o644)
}

// sanitize keeps the reference usable as a file name. References are
// customer-supplied, so anything outside a safe charset is dropped.
func sanitize(reference string) string {
	keep := func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_' || r == '.':
			return r
		default:
			return -1
		}
	}
	s := strings.Map(keep, reference)
	if s == "" {
		s = "receipt"
	}
	return s
}

package email

import (
	"os"
	"strings"
	"testing"
	"time"
)

func testData() ReceiptData {
	return ReceiptData{
		Reference: "TXN-001",
		Customer:  "Test Buyer",
		Email:     "buyer@store.test",
		Courses:   []string{"Intro to Go", "Practical SQL"},
		Amount:    2298,
		Status:    "confirmed",
		CreatedAt: time.Date(2024, 3, 10, 14, 30, 0, 0, time.UTC),
	}
}

func TestSendReceiptFallback(t *testing.T) {
	dir := t.TempDir()
	m := New("", "", "", "587", dir)

	delivered, err := m.SendReceipt(testData())
	if err != nil {
		t.Fatalf("fallback write failed: %v", err)
	}
	if delivered {
		t.Fatal("unconfigured mailer reported delivery")
	}

	b, err := os.ReadFile(m.FallbackPath("TXN-001"))
	if err != nil {
		t.Fatalf("reading fallback artifact: %v", err)
	}

	for _, want := range []string{"TXN-001", "Test Buyer", "Intro to Go", "Practical SQL", "2298"} {
		if !strings.Contains(string(b), want) {
			t.Fatalf("artifact does not mention %q:\n%s", want, b)
		}
	}
}

func TestRender(t *testing.T) {
	text := Render(testData())

	for _, want := range []string{
		"Reference: TXN-001",
		"Customer:  Test Buyer <buyer@store.test>",
		"  - Intro to Go",
		"  - Practical SQL",
		"Total: 2298",
		"Status:    confirmed",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("receipt missing %q:\n%s", want, text)
		}
	}
}

func TestFallbackPathSanitizes(t *testing.T) {
	m := New("", "", "", "587", "receipts")

	tests := map[string]string{
		"TXN-001":        "receipts/TXN-001.txt",
		"../../etc/pass": "receipts/....etcpass.txt",
		"###":            "receipts/receipt.txt",
	}

	for ref, want := range tests {
		if got := m.FallbackPath(ref); got != want {
			t.Fatalf("FallbackPath(%q) = %q, want %q", ref, got, want)
		}
	}
}

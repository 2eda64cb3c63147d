package handler

import (
	"testing"
	"time"
)

func TestFormatInvoiceNo(t *testing.T) {
	day := time.Date(2025, 6, 1, 14, 30, 0, 0, time.UTC)

	got := FormatInvoiceNo(day, 1)
	if got != "INV-20250601-001" {
		t.Fatalf("expected INV-20250601-001, got %s", got)
	}

	got = FormatInvoiceNo(day, 42)
	if got != "INV-20250601-042" {
		t.Fatalf("expected INV-20250601-042, got %s", got)
	}

	// Sequences past 999 widen rather than wrap.
	got = FormatInvoiceNo(day, 1234)
	if got != "INV-20250601-1234" {
		t.Fatalf("expected INV-20250601-1234, got %s", got)
	}
}

func TestParseSequence(t *testing.T) {
	cases := []struct {
		in       string
		expected int
	}{
		{"INV-20250601-001", 1},
		{"INV-20250601-099", 99},
		{"INV-20250601-1234", 1234},
		{"INV-20250601-", 0},
		{"INV-20250601-abc", 0},
		{"freeform", 0},
		{"", 0},
	}
	for _, tc := range cases {
		if got := ParseSequence(tc.in); got != tc.expected {
			t.Fatalf("ParseSequence(%q) expected %d, got %d", tc.in, tc.expected, got)
		}
	}
}

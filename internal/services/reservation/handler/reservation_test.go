package handler

import (
	"testing"
	"time"

	"vastra-system/internal/database/models"
)

func TestGenerateCodeShape(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		code := generateCode()
		if len(code) != codeLength {
			t.Fatalf("code %q has length %d, expected %d", code, len(code), codeLength)
		}
		for _, r := range code {
			if r < '0' || r > '9' {
				t.Fatalf("code %q contains non-digit %q", code, r)
			}
		}
		seen[code] = true
	}
	// With a 4-digit space collisions happen, but 200 draws should not all
	// land on a handful of values.
	if len(seen) < 50 {
		t.Fatalf("expected varied codes, got %d distinct out of 200", len(seen))
	}
}

func TestReservationExpiry(t *testing.T) {
	now := time.Now()
	r := models.Reservation{
		Status:        models.ReservationStatusReserved,
		ReservedUntil: now.Add(time.Hour),
	}

	if r.IsExpired(now) {
		t.Fatalf("reservation with future deadline should not be expired")
	}
	if !r.IsExpired(now.Add(2 * time.Hour)) {
		t.Fatalf("reservation past deadline should be expired")
	}
}

func TestReservationTerminalStates(t *testing.T) {
	cases := []struct {
		status   string
		terminal bool
	}{
		{models.ReservationStatusReserved, false},
		{models.ReservationStatusCompleted, true},
		{models.ReservationStatusCancelled, true},
		{models.ReservationStatusExpired, true},
	}
	for _, tc := range cases {
		r := models.Reservation{Status: tc.status}
		if r.IsTerminal() != tc.terminal {
			t.Fatalf("IsTerminal() for %q expected %v", tc.status, tc.terminal)
		}
	}
}

package handler

import (
	"testing"

	"github.com/shopspring/decimal"

	"vastra-system/internal/database/models"
)

func entries(amounts ...string) []models.CustomerCredit {
	out := make([]models.CustomerCredit, 0, len(amounts))
	for i, a := range amounts {
		out = append(out, models.CustomerCredit{
			ID:     int64(i + 1),
			Amount: decimal.RequireFromString(a),
		})
	}
	return out
}

func TestAllocateSettlementZeroesEntriesInOrder(t *testing.T) {
	list := entries("100", "50", "30")

	applied := allocateSettlement(list, decimal.RequireFromString("120"))

	if !applied.Equal(decimal.RequireFromString("120")) {
		t.Fatalf("applied expected 120, got %s", applied)
	}
	if !list[0].Amount.IsZero() {
		t.Fatalf("first entry should be fully settled, got %s", list[0].Amount)
	}
	if !list[1].Amount.Equal(decimal.RequireFromString("30")) {
		t.Fatalf("second entry expected 30 remaining, got %s", list[1].Amount)
	}
	if !list[2].Amount.Equal(decimal.RequireFromString("30")) {
		t.Fatalf("third entry should be untouched, got %s", list[2].Amount)
	}
}

func TestAllocateSettlementOverpaymentDropsExcess(t *testing.T) {
	list := entries("40", "10")

	applied := allocateSettlement(list, decimal.RequireFromString("75"))

	if !applied.Equal(decimal.RequireFromString("50")) {
		t.Fatalf("applied should cap at total outstanding 50, got %s", applied)
	}
	for i := range list {
		if !list[i].Amount.IsZero() {
			t.Fatalf("entry %d should be zero, got %s", i, list[i].Amount)
		}
	}
}

func TestAllocateSettlementExactSingleEntry(t *testing.T) {
	list := entries("25.50")

	applied := allocateSettlement(list, decimal.RequireFromString("25.50"))

	if !applied.Equal(decimal.RequireFromString("25.50")) {
		t.Fatalf("applied expected 25.50, got %s", applied)
	}
	if !list[0].Amount.IsZero() {
		t.Fatalf("entry should be zero, got %s", list[0].Amount)
	}
}

func TestAllocateSettlementPartialFirstEntry(t *testing.T) {
	list := entries("100")

	applied := allocateSettlement(list, decimal.RequireFromString("60"))

	if !applied.Equal(decimal.RequireFromString("60")) {
		t.Fatalf("applied expected 60, got %s", applied)
	}
	if !list[0].Amount.Equal(decimal.RequireFromString("40")) {
		t.Fatalf("entry expected 40 remaining, got %s", list[0].Amount)
	}
}

func TestAllocateSettlementNoEntries(t *testing.T) {
	applied := allocateSettlement(nil, decimal.RequireFromString("10"))
	if !applied.IsZero() {
		t.Fatalf("applied expected 0 with no entries, got %s", applied)
	}
}

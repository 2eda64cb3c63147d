package handler

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"vastra-system/internal/database/models"
)

// SettlementOrder is the ordering applied when walking outstanding entries
// during settlement. The system settles newest debt first — most-recent-first
// by creation time. Economically a FIFO-by-oldest-debt might seem more
// natural, but most-recent-first is the established behavior and billing
// history depends on it, so the order is an explicit parameter rather than
// a hardcoded clause.
type SettlementOrder string

const (
	SettleNewestFirst SettlementOrder = "created_at DESC"
	SettleOldestFirst SettlementOrder = "created_at ASC"
)

var (
	ErrInvalidAmount       = errors.New("amount must be greater than 0")
	ErrNoOutstandingCredit = errors.New("no outstanding credit to settle")
	ErrPhoneRequired       = errors.New("customer phone required")
)

// Accrue records a new outstanding entry. Entries are never merged; each
// credit event stays independently auditable.
func Accrue(tx *gorm.DB, storeID int64, customerName, customerPhone *string, amount decimal.Decimal, referenceSaleID *int64) (*models.CustomerCredit, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidAmount
	}

	entry := models.CustomerCredit{
		StoreID:         storeID,
		CustomerName:    customerName,
		CustomerPhone:   customerPhone,
		Amount:          amount,
		ReferenceSaleID: referenceSaleID,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// OutstandingBalance sums the remaining amounts across all entries for the
// phone in the store. Zero when there are none.
func OutstandingBalance(tx *gorm.DB, storeID int64, phone string) (decimal.Decimal, error) {
	var entries []models.CustomerCredit
	if err := tx.Where("store_id = ? AND customer_phone = ?", storeID, phone).
		Find(&entries).Error; err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.Amount)
	}
	return total, nil
}

// allocateSettlement walks entries in their given order, fully zeroing each
// before moving on, until the amount is exhausted. It mutates the slice in
// place and returns the amount actually applied, capped at the sum of the
// entries. The excess of an overpayment is dropped, not carried as store
// credit.
func allocateSettlement(entries []models.CustomerCredit, amount decimal.Decimal) decimal.Decimal {
	remaining := amount
	applied := decimal.Zero

	for i := range entries {
		if remaining.LessThanOrEqual(decimal.Zero) {
			break
		}
		if entries[i].Amount.LessThanOrEqual(remaining) {
			remaining = remaining.Sub(entries[i].Amount)
			applied = applied.Add(entries[i].Amount)
			entries[i].Amount = decimal.Zero
		} else {
			entries[i].Amount = entries[i].Amount.Sub(remaining)
			applied = applied.Add(remaining)
			remaining = decimal.Zero
		}
	}
	return applied
}

// Settle applies a payment against the customer's outstanding entries and
// returns (applied, remaining balance). Entries are updated in place, never
// deleted.
func Settle(tx *gorm.DB, storeID int64, phone string, amount decimal.Decimal, order SettlementOrder) (decimal.Decimal, decimal.Decimal, error) {
	if phone == "" {
		return decimal.Zero, decimal.Zero, ErrPhoneRequired
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, decimal.Zero, ErrInvalidAmount
	}

	var entries []models.CustomerCredit
	if err := tx.Where("store_id = ? AND customer_phone = ? AND amount > 0", storeID, phone).
		Order(string(order)).
		Find(&entries).Error; err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	applied := allocateSettlement(entries, amount)
	for i := range entries {
		if err := tx.Model(&models.CustomerCredit{}).
			Where("id = ?", entries[i].ID).
			Update("amount", entries[i].Amount).Error; err != nil {
			return decimal.Zero, decimal.Zero, err
		}
	}

	remaining, err := OutstandingBalance(tx, storeID, phone)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	return applied, remaining, nil
}

// --- Handler ---

type CreditHandler struct {
	db *gorm.DB
}

func NewCreditHandler(db *gorm.DB) *CreditHandler {
	return &CreditHandler{db: db}
}

type SettleResult struct {
	SettledAmount   decimal.Decimal `json:"settled_amount"`
	RemainingCredit decimal.Decimal `json:"remaining_credit"`
}

// SettleCredit is the manual settlement endpoint: the customer pays back old
// debt outside a sale. Fails when there is nothing outstanding.
func (s *CreditHandler) SettleCredit(ctx context.Context, storeID int64, phone string, amount decimal.Decimal) (*SettleResult, error) {
	if phone == "" {
		return nil, ErrPhoneRequired
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidAmount
	}

	tx := s.db.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	outstanding, err := OutstandingBalance(tx, storeID, phone)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if outstanding.LessThanOrEqual(decimal.Zero) {
		tx.Rollback()
		return nil, ErrNoOutstandingCredit
	}

	applied, remaining, err := Settle(tx, storeID, phone, amount, SettleNewestFirst)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return &SettleResult{SettledAmount: applied, RemainingCredit: remaining}, nil
}

// Outstanding returns the customer's current outstanding balance.
func (s *CreditHandler) Outstanding(ctx context.Context, storeID int64, phone string) (decimal.Decimal, error) {
	return OutstandingBalance(s.db.WithContext(ctx), storeID, phone)
}

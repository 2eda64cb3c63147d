package handler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"vastra-system/internal/database/models"
)

const invoicePrefix = "INV"

// FormatInvoiceNo builds the store-day invoice identifier, e.g.
// INV-20250601-001.
func FormatInvoiceNo(day time.Time, seq int) string {
	return fmt.Sprintf("%s-%s-%03d", invoicePrefix, day.Format("20060102"), seq)
}

// ParseSequence extracts the trailing sequence number from an invoice
// identifier. Malformed trailers count as sequence 0, matching how earlier
// records with hand-edited invoice numbers are treated.
func ParseSequence(invoiceNo string) int {
	idx := strings.LastIndex(invoiceNo, "-")
	if idx < 0 || idx == len(invoiceNo)-1 {
		return 0
	}
	seq, err := strconv.Atoi(invoiceNo[idx+1:])
	if err != nil {
		return 0
	}
	return seq
}

// NextInvoiceNo computes the next store-day scoped invoice number inside the
// caller's transaction: highest existing sequence for today plus one. The
// read-then-increment is best-effort-sequential; the composite unique
// constraint on (store_id, invoice_no) is the correctness backstop. On a
// constraint violation at commit the caller retries the computation once.
func NextInvoiceNo(tx *gorm.DB, storeID int64, now time.Time) (string, error) {
	dayPrefix := fmt.Sprintf("%s-%s-", invoicePrefix, now.Format("20060102"))

	var lastSale models.Sale
	err := tx.Where("store_id = ? AND invoice_no LIKE ?", storeID, dayPrefix+"%").
		Order("id DESC").
		First(&lastSale).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	lastSeq := 0
	if err == nil {
		lastSeq = ParseSequence(lastSale.InvoiceNo)
	}

	return FormatInvoiceNo(now, lastSeq+1), nil
}

package handler

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"

	"vastra-system/internal/database"
	"vastra-system/internal/database/models"
	inventory "vastra-system/internal/services/inventory/handler"
)

func TestVerifyCodeLifecycleAgainstPostgres(t *testing.T) {
	dsn := os.Getenv("POS_TEST_DSN")
	if dsn == "" {
		t.Skip("set POS_TEST_DSN to run postgres integration test")
	}

	db, err := database.NewConnection(dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	ctx := context.Background()
	stamp := time.Now().UnixNano()

	owner := models.User{
		Username: fmt.Sprintf("it-resv-%d", stamp),
		Email:    fmt.Sprintf("it-resv-%d@example.com", stamp),
		Phone:    fmt.Sprintf("7%09d", stamp%1_000_000_000),
		IsStore:  true,
	}
	if err := db.Create(&owner).Error; err != nil {
		t.Fatalf("create owner: %v", err)
	}

	store := models.Store{
		OwnerID:   owner.ID,
		StoreName: fmt.Sprintf("it-resv-store-%d", stamp),
		Place:     "Test Town",
		Category:  "clothing",
	}
	if err := db.Create(&store).Error; err != nil {
		t.Fatalf("create store: %v", err)
	}

	product := models.Product{
		StoreID: store.ID,
		Name:    fmt.Sprintf("it-saree-%d", stamp),
		Sizes: []models.ProductSize{
			{SizeLabel: "M", Price: decimal.RequireFromString("250.00"), Quantity: 1},
		},
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	sizeID := product.Sizes[0].ID

	advance := decimal.RequireFromString("50.00")
	future := time.Now().Add(24 * time.Hour)
	past := time.Now().Add(-time.Hour)

	newHold := func(code string, until time.Time) models.Reservation {
		r := models.Reservation{
			CustomerID:    owner.ID,
			ProductID:     product.ID,
			SizeID:        sizeID,
			StoreID:       store.ID,
			Quantity:      1,
			AdvanceAmount: advance,
			Status:        models.ReservationStatusReserved,
			UniqueCode:    code,
			ReservedUntil: until,
		}
		if err := db.Create(&r).Error; err != nil {
			t.Fatalf("create reservation %s: %v", code, err)
		}
		return r
	}

	first := newHold(fmt.Sprintf("%04d", stamp%10000), future)
	second := newHold(fmt.Sprintf("%04d", (stamp+1)%10000), future)
	stale := newHold(fmt.Sprintf("%04d", (stamp+2)%10000), past)

	t.Cleanup(func() {
		db.Exec("DELETE FROM sale_items WHERE sale_id IN (SELECT id FROM sales WHERE store_id = ?)", store.ID)
		db.Where("store_id = ?", store.ID).Delete(&models.Sale{})
		db.Where("store_id = ?", store.ID).Delete(&models.Reservation{})
		db.Where("product_id = ?", product.ID).Delete(&models.ProductSize{})
		db.Delete(&models.Product{}, product.ID)
		db.Delete(&models.Store{}, store.ID)
		db.Delete(&models.User{}, owner.ID)
	})

	// Event publishing is fire-and-forget; a dead client is fine here.
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	svc := NewReservationHandler(db, rdb)

	reloadStatus := func(id int64) string {
		var r models.Reservation
		if err := db.First(&r, id).Error; err != nil {
			t.Fatalf("reload reservation %d: %v", id, err)
		}
		return r.Status
	}
	reloadStock := func() int64 {
		var s models.ProductSize
		if err := db.First(&s, sizeID).Error; err != nil {
			t.Fatalf("reload size: %v", err)
		}
		return s.Quantity
	}

	// Wrong code on an active hold: rejected, no state change.
	if _, err := svc.VerifyCode(ctx, store.ID, first.ID, "bad!"); !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("expected invalid code error, got %v", err)
	}
	if got := reloadStatus(first.ID); got != models.ReservationStatusReserved {
		t.Fatalf("wrong code must not change state, got %q", got)
	}

	// Wrong code on a stale hold: the code guard runs first, so the expired
	// transition is not persisted either.
	if _, err := svc.VerifyCode(ctx, store.ID, stale.ID, "bad!"); !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("expected invalid code error on stale hold, got %v", err)
	}
	if got := reloadStatus(stale.ID); got != models.ReservationStatusReserved {
		t.Fatalf("wrong code on stale hold must not change state, got %q", got)
	}

	// Correct code on a stale hold: rejected, the expired state is persisted,
	// and stock is never touched.
	if _, err := svc.VerifyCode(ctx, store.ID, stale.ID, stale.UniqueCode); !errors.Is(err, ErrReservationExpired) {
		t.Fatalf("expected expired error, got %v", err)
	}
	if got := reloadStatus(stale.ID); got != models.ReservationStatusExpired {
		t.Fatalf("expired redemption must persist expired state, got %q", got)
	}
	if got := reloadStock(); got != 1 {
		t.Fatalf("expired redemption must not deduct stock, got %d", got)
	}

	// Successful redemption: stock deducted, hold completed, auto-sale for
	// exactly the advance amount.
	result, err := svc.VerifyCode(ctx, store.ID, first.ID, first.UniqueCode)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !result.Sale.TotalAmount.Equal(advance) {
		t.Fatalf("auto-sale total expected %s, got %s", advance, result.Sale.TotalAmount)
	}
	if !strings.HasPrefix(result.Sale.InvoiceNo, "INV-") {
		t.Fatalf("unexpected invoice number %q", result.Sale.InvoiceNo)
	}
	if got := reloadStatus(first.ID); got != models.ReservationStatusCompleted {
		t.Fatalf("expected completed, got %q", got)
	}
	if got := reloadStock(); got != 0 {
		t.Fatalf("expected stock 0 after redemption, got %d", got)
	}

	// Redeeming the same hold again fails on the terminal-state guard.
	if _, err := svc.VerifyCode(ctx, store.ID, first.ID, first.UniqueCode); !errors.Is(err, ErrReservationNotActive) {
		t.Fatalf("expected not-active error on second redemption, got %v", err)
	}

	// The competing hold on the same last unit loses at the stock deduction
	// and stays reserved; only one of the two redemptions completes.
	if _, err := svc.VerifyCode(ctx, store.ID, second.ID, second.UniqueCode); !errors.Is(err, inventory.ErrInsufficientStock) {
		t.Fatalf("expected insufficient stock for competing hold, got %v", err)
	}
	if got := reloadStatus(second.ID); got != models.ReservationStatusReserved {
		t.Fatalf("losing hold must stay reserved, got %q", got)
	}
	if got := reloadStock(); got != 0 {
		t.Fatalf("failed redemption must not change stock, got %d", got)
	}
}

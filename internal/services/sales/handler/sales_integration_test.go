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
	credit "vastra-system/internal/services/credit/handler"
	inventory "vastra-system/internal/services/inventory/handler"
)

func TestCreateSaleAgainstPostgres(t *testing.T) {
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
		Username: fmt.Sprintf("it-owner-%d", stamp),
		Email:    fmt.Sprintf("it-owner-%d@example.com", stamp),
		Phone:    fmt.Sprintf("9%09d", stamp%1_000_000_000),
		IsStore:  true,
	}
	if err := db.Create(&owner).Error; err != nil {
		t.Fatalf("create owner: %v", err)
	}

	store := models.Store{
		OwnerID:   owner.ID,
		StoreName: fmt.Sprintf("it-store-%d", stamp),
		Place:     "Test Town",
		Category:  "clothing",
	}
	if err := db.Create(&store).Error; err != nil {
		t.Fatalf("create store: %v", err)
	}

	product := models.Product{
		StoreID: store.ID,
		Name:    fmt.Sprintf("it-kurta-%d", stamp),
		Sizes: []models.ProductSize{
			{SizeLabel: "M", Price: decimal.RequireFromString("100.00"), Quantity: 5},
		},
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}

	t.Cleanup(func() {
		db.Where("store_id = ?", store.ID).Delete(&models.CustomerCredit{})
		db.Exec("DELETE FROM sale_items WHERE sale_id IN (SELECT id FROM sales WHERE store_id = ?)", store.ID)
		db.Where("store_id = ?", store.ID).Delete(&models.Sale{})
		db.Where("product_id = ?", product.ID).Delete(&models.ProductSize{})
		db.Delete(&models.Product{}, product.ID)
		db.Delete(&models.Store{}, store.ID)
		db.Delete(&models.User{}, owner.ID)
	})

	// Event publishing is fire-and-forget; a dead client is fine here.
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	svc := NewSalesHandler(db, rdb)

	name := "Asha"
	phone := fmt.Sprintf("8%09d", stamp%1_000_000_000)

	result, err := svc.CreateSale(ctx, store.ID, CreateSaleRequest{
		Items: []SaleLineRequest{
			{ProductID: product.ID, SizeLabel: "M", Quantity: 2},
		},
		PaidAmount:    decimal.RequireFromString("150"),
		CreditAmount:  decimal.RequireFromString("50"),
		CustomerName:  &name,
		CustomerPhone: &phone,
	})
	if err != nil {
		t.Fatalf("create sale: %v", err)
	}

	if !strings.HasPrefix(result.Sale.InvoiceNo, "INV-") {
		t.Fatalf("unexpected invoice number %q", result.Sale.InvoiceNo)
	}
	if !result.Sale.TotalAmount.Equal(decimal.RequireFromString("200")) {
		t.Fatalf("expected total 200, got %s", result.Sale.TotalAmount)
	}
	if !result.Sale.IsCredit {
		t.Fatalf("sale with credit amount should be flagged as credit")
	}

	var size models.ProductSize
	if err := db.Where("product_id = ? AND size_label = ?", product.ID, "M").First(&size).Error; err != nil {
		t.Fatalf("reload size: %v", err)
	}
	if size.Quantity != 3 {
		t.Fatalf("expected stock 3 after selling 2 of 5, got %d", size.Quantity)
	}

	outstanding, err := credit.OutstandingBalance(db, store.ID, phone)
	if err != nil {
		t.Fatalf("outstanding: %v", err)
	}
	if !outstanding.Equal(decimal.RequireFromString("50")) {
		t.Fatalf("expected outstanding 50, got %s", outstanding)
	}

	// Overselling the remaining stock rolls the whole sale back.
	_, err = svc.CreateSale(ctx, store.ID, CreateSaleRequest{
		Items: []SaleLineRequest{
			{ProductID: product.ID, SizeLabel: "M", Quantity: 10},
		},
		PaidAmount: decimal.RequireFromString("1000"),
	})
	if !errors.Is(err, inventory.ErrInsufficientStock) {
		t.Fatalf("expected insufficient stock error, got %v", err)
	}

	if err := db.Where("product_id = ? AND size_label = ?", product.ID, "M").First(&size).Error; err != nil {
		t.Fatalf("reload size: %v", err)
	}
	if size.Quantity != 3 {
		t.Fatalf("stock should be unchanged after failed sale, got %d", size.Quantity)
	}

	// Settlement inside a sale pays down the customer's newest debt first.
	settleResult, err := svc.CreateSale(ctx, store.ID, CreateSaleRequest{
		Items: []SaleLineRequest{
			{ProductID: product.ID, SizeLabel: "M", Quantity: 1},
		},
		PaidAmount:         decimal.RequireFromString("100"),
		SettleCreditAmount: decimal.RequireFromString("30"),
		CustomerName:       &name,
		CustomerPhone:      &phone,
	})
	if err != nil {
		t.Fatalf("create settling sale: %v", err)
	}
	if !settleResult.SettledCredit.Equal(decimal.RequireFromString("30")) {
		t.Fatalf("expected 30 settled, got %s", settleResult.SettledCredit)
	}
	if !settleResult.RemainingCredit.Equal(decimal.RequireFromString("20")) {
		t.Fatalf("expected 20 remaining, got %s", settleResult.RemainingCredit)
	}

	// One sale can accrue new credit and settle old credit at the same time.
	// The accrual lands first, so the settlement pays down the newest entry:
	// 20 outstanding + 40 accrued - 20 settled leaves 40.
	mixedResult, err := svc.CreateSale(ctx, store.ID, CreateSaleRequest{
		Items: []SaleLineRequest{
			{ProductID: product.ID, SizeLabel: "M", Quantity: 1},
		},
		PaidAmount:         decimal.RequireFromString("60"),
		CreditAmount:       decimal.RequireFromString("40"),
		SettleCreditAmount: decimal.RequireFromString("20"),
		CustomerName:       &name,
		CustomerPhone:      &phone,
	})
	if err != nil {
		t.Fatalf("create mixed accrue/settle sale: %v", err)
	}
	if !mixedResult.Sale.IsCredit {
		t.Fatalf("sale with credit amount should be flagged as credit")
	}
	if !mixedResult.SettledCredit.Equal(decimal.RequireFromString("20")) {
		t.Fatalf("expected 20 settled in mixed sale, got %s", mixedResult.SettledCredit)
	}
	if !mixedResult.RemainingCredit.Equal(decimal.RequireFromString("40")) {
		t.Fatalf("expected 40 remaining after mixed sale, got %s", mixedResult.RemainingCredit)
	}

	outstanding, err = credit.OutstandingBalance(db, store.ID, phone)
	if err != nil {
		t.Fatalf("outstanding after mixed sale: %v", err)
	}
	if !outstanding.Equal(decimal.RequireFromString("40")) {
		t.Fatalf("expected outstanding 40 after mixed sale, got %s", outstanding)
	}
}

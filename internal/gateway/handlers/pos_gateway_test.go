package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"vastra-system/internal/database/models"
	"vastra-system/internal/gateway/middleware"
	credit "vastra-system/internal/services/credit/handler"
	inventory "vastra-system/internal/services/inventory/handler"
	sales "vastra-system/internal/services/sales/handler"
)

type fakeSalesService struct {
	createErr error
	lastReq   sales.CreateSaleRequest
}

func (f *fakeSalesService) CreateSale(ctx context.Context, storeID int64, req sales.CreateSaleRequest) (*sales.SaleResult, error) {
	f.lastReq = req
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &sales.SaleResult{
		Sale: &models.Sale{
			ID:        7,
			StoreID:   storeID,
			InvoiceNo: "INV-20250601-001",
		},
		SettledCredit:   decimal.Zero,
		RemainingCredit: decimal.Zero,
	}, nil
}

func (f *fakeSalesService) ProcessReturn(ctx context.Context, storeID, processedBy int64, req sales.ReturnRequest) (*models.Return, error) {
	return &models.Return{ID: 1, StoreID: storeID, ProcessedBy: processedBy}, nil
}

func (f *fakeSalesService) ListSales(ctx context.Context, storeID int64) ([]models.Sale, error) {
	return []models.Sale{}, nil
}

func (f *fakeSalesService) GetSale(ctx context.Context, storeID, saleID int64) (*models.Sale, error) {
	return nil, sales.ErrSaleNotFound
}

func (f *fakeSalesService) LookupCustomer(ctx context.Context, storeID int64, phone string) (*sales.CustomerInfo, error) {
	return &sales.CustomerInfo{CustomerPhone: phone, OutstandingCredit: decimal.Zero}, nil
}

type fakeCreditService struct {
	settleErr error
}

func (f *fakeCreditService) SettleCredit(ctx context.Context, storeID int64, phone string, amount decimal.Decimal) (*credit.SettleResult, error) {
	if f.settleErr != nil {
		return nil, f.settleErr
	}
	return &credit.SettleResult{SettledAmount: amount, RemainingCredit: decimal.Zero}, nil
}

func (f *fakeCreditService) Outstanding(ctx context.Context, storeID int64, phone string) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

type fakeInventoryService struct{}

func (f *fakeInventoryService) CheckStock(ctx context.Context, storeID, productID int64) ([]models.ProductSize, error) {
	return []models.ProductSize{}, nil
}

func (f *fakeInventoryService) UpdateStockAfterSale(ctx context.Context, storeID int64, items []inventory.StockUpdateItem) error {
	return nil
}

func newTestRouter(salesSvc salesService, creditSvc creditService, inventorySvc inventoryService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserID, int64(1))
		c.Set(middleware.ContextStoreID, int64(10))
		c.Next()
	})

	h := NewPOSHTTPHandler(salesSvc, creditSvc, inventorySvc)
	r.POST("/sales", h.CreateSale)
	r.GET("/sales/:id", h.GetSale)
	r.POST("/credit/settle", h.SettleCredit)
	r.GET("/credit/outstanding", h.OutstandingCredit)
	return r
}

func TestCreateSaleSuccess(t *testing.T) {
	fake := &fakeSalesService{}
	r := newTestRouter(fake, &fakeCreditService{}, &fakeInventoryService{})

	body := `{"items":[{"product_id":1,"size_label":"M","quantity":2}],"paid_amount":"100","credit_amount":"0"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/sales", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var resp APIResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if !resp.Success {
		t.Fatalf("expected success response, got %+v", resp)
	}
	if len(fake.lastReq.Items) != 1 || fake.lastReq.Items[0].Quantity != 2 {
		t.Fatalf("request not forwarded to service: %+v", fake.lastReq)
	}
}

func TestCreateSaleInsufficientStockMapsToConflict(t *testing.T) {
	fake := &fakeSalesService{
		createErr: &inventory.InsufficientStockError{ProductName: "Kurta", SizeLabel: "M"},
	}
	r := newTestRouter(fake, &fakeCreditService{}, &fakeInventoryService{})

	body := `{"items":[{"product_id":1,"size_label":"M","quantity":5}],"paid_amount":"100"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/sales", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", w.Code, w.Body.String())
	}
}

func TestCreateSaleRejectsMalformedBody(t *testing.T) {
	r := newTestRouter(&fakeSalesService{}, &fakeCreditService{}, &fakeInventoryService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/sales", strings.NewReader(`{"items":`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestGetSaleNotFound(t *testing.T) {
	r := newTestRouter(&fakeSalesService{}, &fakeCreditService{}, &fakeInventoryService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/sales/99", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestSettleCreditNoOutstandingMapsToBadRequest(t *testing.T) {
	r := newTestRouter(&fakeSalesService{}, &fakeCreditService{settleErr: credit.ErrNoOutstandingCredit}, &fakeInventoryService{})

	body := `{"customer_phone":"9876500000","amount":"50"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/credit/settle", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestOutstandingCreditRequiresPhone(t *testing.T) {
	r := newTestRouter(&fakeSalesService{}, &fakeCreditService{}, &fakeInventoryService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/credit/outstanding", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

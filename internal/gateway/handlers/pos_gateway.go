package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"vastra-system/internal/database/models"
	"vastra-system/internal/gateway/middleware"
	credit "vastra-system/internal/services/credit/handler"
	inventory "vastra-system/internal/services/inventory/handler"
	sales "vastra-system/internal/services/sales/handler"
)

type salesService interface {
	CreateSale(ctx context.Context, storeID int64, req sales.CreateSaleRequest) (*sales.SaleResult, error)
	ProcessReturn(ctx context.Context, storeID, processedBy int64, req sales.ReturnRequest) (*models.Return, error)
	ListSales(ctx context.Context, storeID int64) ([]models.Sale, error)
	GetSale(ctx context.Context, storeID, saleID int64) (*models.Sale, error)
	LookupCustomer(ctx context.Context, storeID int64, phone string) (*sales.CustomerInfo, error)
}

type creditService interface {
	SettleCredit(ctx context.Context, storeID int64, phone string, amount decimal.Decimal) (*credit.SettleResult, error)
	Outstanding(ctx context.Context, storeID int64, phone string) (decimal.Decimal, error)
}

type inventoryService interface {
	CheckStock(ctx context.Context, storeID, productID int64) ([]models.ProductSize, error)
	UpdateStockAfterSale(ctx context.Context, storeID int64, items []inventory.StockUpdateItem) error
}

type POSHTTPHandler struct {
	sales     salesService
	credit    creditService
	inventory inventoryService
}

func NewPOSHTTPHandler(salesSvc salesService, creditSvc creditService, inventorySvc inventoryService) *POSHTTPHandler {
	return &POSHTTPHandler{
		sales:     salesSvc,
		credit:    creditSvc,
		inventory: inventorySvc,
	}
}

type SettleCreditRequest struct {
	CustomerPhone string          `json:"customer_phone" binding:"required"`
	Amount        decimal.Decimal `json:"amount" binding:"required"`
}

func (h *POSHTTPHandler) CreateSale(c *gin.Context) {
	var req sales.CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	storeID := c.GetInt64(middleware.ContextStoreID)
	result, err := h.sales.CreateSale(c.Request.Context(), storeID, req)
	if err != nil {
		status, message := statusFromError(err)
		c.JSON(status, errorResponse(message))
		return
	}

	c.JSON(http.StatusCreated, successResponse("Sale recorded", gin.H{
		"sale":             result.Sale,
		"settled_credit":   result.SettledCredit,
		"remaining_credit": result.RemainingCredit,
	}))
}

// CreateReservationSale is the reservation checkout: a regular sale that must
// reference the reservation it settles.
func (h *POSHTTPHandler) CreateReservationSale(c *gin.Context) {
	var req sales.CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}
	if req.ReservationID == nil {
		c.JSON(http.StatusBadRequest, errorResponse("reservation_id is required"))
		return
	}

	storeID := c.GetInt64(middleware.ContextStoreID)
	result, err := h.sales.CreateSale(c.Request.Context(), storeID, req)
	if err != nil {
		status, message := statusFromError(err)
		c.JSON(status, errorResponse(message))
		return
	}

	c.JSON(http.StatusCreated, successResponse("Reservation sale recorded", gin.H{
		"sale":             result.Sale,
		"settled_credit":   result.SettledCredit,
		"remaining_credit": result.RemainingCredit,
	}))
}

func (h *POSHTTPHandler) ListSales(c *gin.Context) {
	storeID := c.GetInt64(middleware.ContextStoreID)
	salesList, err := h.sales.ListSales(c.Request.Context(), storeID)
	if err != nil {
		status, message := statusFromError(err)
		c.JSON(status, errorResponse(message))
		return
	}

	c.JSON(http.StatusOK, successResponse("Sales retrieved", salesList))
}

func (h *POSHTTPHandler) GetSale(c *gin.Context) {
	saleID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid sale ID"))
		return
	}

	storeID := c.GetInt64(middleware.ContextStoreID)
	sale, err := h.sales.GetSale(c.Request.Context(), storeID, saleID)
	if err != nil {
		status, message := statusFromError(err)
		c.JSON(status, errorResponse(message))
		return
	}

	c.JSON(http.StatusOK, successResponse("Sale retrieved", sale))
}

func (h *POSHTTPHandler) ProcessReturn(c *gin.Context) {
	var req sales.ReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	storeID := c.GetInt64(middleware.ContextStoreID)
	userID := c.GetInt64(middleware.ContextUserID)
	ret, err := h.sales.ProcessReturn(c.Request.Context(), storeID, userID, req)
	if err != nil {
		status, message := statusFromError(err)
		c.JSON(status, errorResponse(message))
		return
	}

	c.JSON(http.StatusCreated, successResponse("Return processed", ret))
}

func (h *POSHTTPHandler) SettleCredit(c *gin.Context) {
	var req SettleCreditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	storeID := c.GetInt64(middleware.ContextStoreID)
	result, err := h.credit.SettleCredit(c.Request.Context(), storeID, req.CustomerPhone, req.Amount)
	if err != nil {
		status, message := statusFromError(err)
		c.JSON(status, errorResponse(message))
		return
	}

	c.JSON(http.StatusOK, successResponse("Credit settled", result))
}

func (h *POSHTTPHandler) OutstandingCredit(c *gin.Context) {
	phone := c.Query("phone")
	if phone == "" {
		c.JSON(http.StatusBadRequest, errorResponse("phone query parameter required"))
		return
	}

	storeID := c.GetInt64(middleware.ContextStoreID)
	outstanding, err := h.credit.Outstanding(c.Request.Context(), storeID, phone)
	if err != nil {
		status, message := statusFromError(err)
		c.JSON(status, errorResponse(message))
		return
	}

	c.JSON(http.StatusOK, successResponse("Outstanding credit retrieved", gin.H{
		"customer_phone": phone,
		"outstanding":    outstanding,
	}))
}

func (h *POSHTTPHandler) LookupCustomer(c *gin.Context) {
	phone := c.Param("phone")

	storeID := c.GetInt64(middleware.ContextStoreID)
	info, err := h.sales.LookupCustomer(c.Request.Context(), storeID, phone)
	if err != nil {
		status, message := statusFromError(err)
		c.JSON(status, errorResponse(message))
		return
	}

	c.JSON(http.StatusOK, successResponse("Customer retrieved", info))
}

func (h *POSHTTPHandler) CheckStock(c *gin.Context) {
	productID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid product ID"))
		return
	}

	storeID := c.GetInt64(middleware.ContextStoreID)
	sizes, err := h.inventory.CheckStock(c.Request.Context(), storeID, productID)
	if err != nil {
		status, message := statusFromError(err)
		c.JSON(status, errorResponse(message))
		return
	}

	c.JSON(http.StatusOK, successResponse("Stock retrieved", sizes))
}

type DeductStockRequest struct {
	Items []inventory.StockUpdateItem `json:"items" binding:"required,min=1"`
}

func (h *POSHTTPHandler) DeductStock(c *gin.Context) {
	var req DeductStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	storeID := c.GetInt64(middleware.ContextStoreID)
	if err := h.inventory.UpdateStockAfterSale(c.Request.Context(), storeID, req.Items); err != nil {
		status, message := statusFromError(err)
		c.JSON(status, errorResponse(message))
		return
	}

	c.JSON(http.StatusOK, successResponse("Stock updated", nil))
}

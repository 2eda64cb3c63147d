package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"vastra-system/internal/database/models"
	"vastra-system/internal/gateway/middleware"
	orders "vastra-system/internal/services/orders/handler"
)

type ordersService interface {
	CreateOrder(ctx context.Context, customerID int64, req orders.CreateOrderRequest) (*models.BuyNowOrder, error)
	UpdateStatus(ctx context.Context, storeID int64, orderID, newStatus string) (*models.BuyNowOrder, error)
	CancelByCustomer(ctx context.Context, customerID int64, orderID string) (*models.BuyNowOrder, error)
	ListStoreOrders(ctx context.Context, storeID int64) ([]models.BuyNowOrder, error)
	ListCustomerOrders(ctx context.Context, customerID int64) ([]models.BuyNowOrder, error)
}

type OrdersHTTPHandler struct {
	orders ordersService
}

func NewOrdersHTTPHandler(svc ordersService) *OrdersHTTPHandler {
	return &OrdersHTTPHandler{orders: svc}
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *OrdersHTTPHandler) CreateOrder(c *gin.Context) {
	var req orders.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	customerID := c.GetInt64(middleware.ContextUserID)
	order, err := h.orders.CreateOrder(c.Request.Context(), customerID, req)
	if err != nil {
		status, message := statusFromError(err)
		c.JSON(status, errorResponse(message))
		return
	}

	c.JSON(http.StatusCreated, successResponse("Order placed", order))
}

func (h *OrdersHTTPHandler) UpdateStatus(c *gin.Context) {
	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	storeID := c.GetInt64(middleware.ContextStoreID)
	order, err := h.orders.UpdateStatus(c.Request.Context(), storeID, c.Param("id"), req.Status)
	if err != nil {
		status, message := statusFromError(err)
		c.JSON(status, errorResponse(message))
		return
	}

	c.JSON(http.StatusOK, successResponse("Order updated", order))
}

func (h *OrdersHTTPHandler) CancelMyOrder(c *gin.Context) {
	customerID := c.GetInt64(middleware.ContextUserID)
	order, err := h.orders.CancelByCustomer(c.Request.Context(), customerID, c.Param("id"))
	if err != nil {
		status, message := statusFromError(err)
		c.JSON(status, errorResponse(message))
		return
	}

	c.JSON(http.StatusOK, successResponse("Order cancelled", order))
}

func (h *OrdersHTTPHandler) ListStoreOrders(c *gin.Context) {
	storeID := c.GetInt64(middleware.ContextStoreID)
	orderList, err := h.orders.ListStoreOrders(c.Request.Context(), storeID)
	if err != nil {
		status, message := statusFromError(err)
		c.JSON(status, errorResponse(message))
		return
	}

	c.JSON(http.StatusOK, successResponse("Orders retrieved", orderList))
}

func (h *OrdersHTTPHandler) ListMyOrders(c *gin.Context) {
	customerID := c.GetInt64(middleware.ContextUserID)
	orderList, err := h.orders.ListCustomerOrders(c.Request.Context(), customerID)
	if err != nil {
		status, message := statusFromError(err)
		c.JSON(status, errorResponse(message))
		return
	}

	c.JSON(http.StatusOK, successResponse("Orders retrieved", orderList))
}

package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"vastra-system/internal/database/models"
	"vastra-system/internal/gateway/middleware"
	reservation "vastra-system/internal/services/reservation/handler"
)

type reservationService interface {
	CreateReservation(ctx context.Context, customerID int64, req reservation.CreateReservationRequest) (*models.Reservation, error)
	VerifyCode(ctx context.Context, storeID, reservationID int64, code string) (*reservation.VerifyResult, error)
	CancelReservation(ctx context.Context, reservationID, actorID int64, isStore bool) (*models.Reservation, error)
	GetReservation(ctx context.Context, reservationID int64) (*models.Reservation, error)
	ListStoreReservations(ctx context.Context, storeID int64) ([]models.Reservation, error)
	ListCustomerReservations(ctx context.Context, customerID int64) ([]models.Reservation, error)
}

type ReservationHTTPHandler struct {
	reservations reservationService
}

func NewReservationHTTPHandler(svc reservationService) *ReservationHTTPHandler {
	return &ReservationHTTPHandler{reservations: svc}
}

type CreateReservationRequest struct {
	ProductID     int64           `json:"product_id" binding:"required"`
	SizeID        int64           `json:"size_id" binding:"required"`
	Quantity      int64           `json:"quantity" binding:"required"`
	AdvanceAmount decimal.Decimal `json:"advance_amount" binding:"required"`
	ReservedUntil time.Time       `json:"reserved_until" binding:"required"`
	CustomerName  *string         `json:"customer_name"`
	CustomerPhone *string         `json:"customer_phone"`
}

type VerifyCodeRequest struct {
	Code string `json:"code" binding:"required"`
}

func (h *ReservationHTTPHandler) CreateReservation(c *gin.Context) {
	var req CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	customerID := c.GetInt64(middleware.ContextUserID)
	res, err := h.reservations.CreateReservation(c.Request.Context(), customerID, reservation.CreateReservationRequest{
		ProductID:     req.ProductID,
		SizeID:        req.SizeID,
		Quantity:      req.Quantity,
		AdvanceAmount: req.AdvanceAmount,
		ReservedUntil: req.ReservedUntil,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
	})
	if err != nil {
		status, message := statusFromError(err)
		c.JSON(status, errorResponse(message))
		return
	}

	c.JSON(http.StatusCreated, successResponse("Reservation created", res))
}

func (h *ReservationHTTPHandler) VerifyCode(c *gin.Context) {
	reservationID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid reservation ID"))
		return
	}

	var req VerifyCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	storeID := c.GetInt64(middleware.ContextStoreID)
	result, err := h.reservations.VerifyCode(c.Request.Context(), storeID, reservationID, req.Code)
	if err != nil {
		status, message := statusFromError(err)
		c.JSON(status, errorResponse(message))
		return
	}

	c.JSON(http.StatusOK, successResponse("Reservation redeemed", gin.H{
		"reservation":    result.Reservation,
		"sale":           result.Sale,
		"advance_amount": result.AdvanceAmount,
	}))
}

func (h *ReservationHTTPHandler) CancelReservation(c *gin.Context) {
	reservationID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid reservation ID"))
		return
	}

	actorID := c.GetInt64(middleware.ContextUserID)
	isStore := c.GetBool(middleware.ContextIsStore)
	res, err := h.reservations.CancelReservation(c.Request.Context(), reservationID, actorID, isStore)
	if err != nil {
		status, message := statusFromError(err)
		c.JSON(status, errorResponse(message))
		return
	}

	c.JSON(http.StatusOK, successResponse("Reservation cancelled", res))
}

func (h *ReservationHTTPHandler) GetReservation(c *gin.Context) {
	reservationID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid reservation ID"))
		return
	}

	res, err := h.reservations.GetReservation(c.Request.Context(), reservationID)
	if err != nil {
		status, message := statusFromError(err)
		c.JSON(status, errorResponse(message))
		return
	}

	c.JSON(http.StatusOK, successResponse("Reservation retrieved", res))
}

func (h *ReservationHTTPHandler) ListStoreReservations(c *gin.Context) {
	storeID := c.GetInt64(middleware.ContextStoreID)
	reservations, err := h.reservations.ListStoreReservations(c.Request.Context(), storeID)
	if err != nil {
		status, message := statusFromError(err)
		c.JSON(status, errorResponse(message))
		return
	}

	c.JSON(http.StatusOK, successResponse("Reservations retrieved", reservations))
}

func (h *ReservationHTTPHandler) ListMyReservations(c *gin.Context) {
	customerID := c.GetInt64(middleware.ContextUserID)
	reservations, err := h.reservations.ListCustomerReservations(c.Request.Context(), customerID)
	if err != nil {
		status, message := statusFromError(err)
		c.JSON(status, errorResponse(message))
		return
	}

	c.JSON(http.StatusOK, successResponse("Reservations retrieved", reservations))
}

package handlers

import (
	"errors"
	"net/http"

	catalog "vastra-system/internal/services/catalog/handler"
	credit "vastra-system/internal/services/credit/handler"
	inventory "vastra-system/internal/services/inventory/handler"
	orders "vastra-system/internal/services/orders/handler"
	reservation "vastra-system/internal/services/reservation/handler"
	sales "vastra-system/internal/services/sales/handler"
	staff "vastra-system/internal/services/staff/handler"
	store "vastra-system/internal/services/store/handler"
)

type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
}

func successResponse(message string, data interface{}) APIResponse {
	return APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	}
}

func errorResponse(message string) APIResponse {
	return APIResponse{
		Success: false,
		Message: message,
	}
}

// statusFromError maps service errors onto HTTP statuses. Unknown errors are
// 500s with a generic message so internals never leak to clients.
func statusFromError(err error) (int, string) {
	switch {
	case errors.Is(err, inventory.ErrInsufficientStock):
		return http.StatusConflict, err.Error()
	case errors.Is(err, inventory.ErrInvalidQuantity),
		errors.Is(err, sales.ErrEmptySale),
		errors.Is(err, sales.ErrPaymentMismatch),
		errors.Is(err, sales.ErrCreditRequiresPhone),
		errors.Is(err, credit.ErrInvalidAmount),
		errors.Is(err, credit.ErrPhoneRequired),
		errors.Is(err, credit.ErrNoOutstandingCredit),
		errors.Is(err, catalog.ErrNoSizes),
		errors.Is(err, staff.ErrInvalidStatus),
		errors.Is(err, staff.ErrInvalidMonth),
		errors.Is(err, reservation.ErrInvalidCode):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, inventory.ErrVariantNotFound),
		errors.Is(err, sales.ErrSaleNotFound),
		errors.Is(err, catalog.ErrProductNotFound),
		errors.Is(err, catalog.ErrStoreNotFound),
		errors.Is(err, store.ErrUserNotFound),
		errors.Is(err, store.ErrStoreNotFound),
		errors.Is(err, staff.ErrStaffNotFound),
		errors.Is(err, orders.ErrOrderNotFound),
		errors.Is(err, reservation.ErrReservationNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, reservation.ErrReservationMismatch):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, reservation.ErrReservationExpired),
		errors.Is(err, reservation.ErrReservationNotActive),
		errors.Is(err, reservation.ErrConcurrencyConflict),
		errors.Is(err, reservation.ErrCodeGenerationExhausted),
		errors.Is(err, store.ErrAlreadyStore),
		errors.Is(err, staff.ErrDuplicateStaffName),
		errors.Is(err, staff.ErrMonthAlreadyPaid),
		errors.Is(err, staff.ErrNothingToCheckout),
		errors.Is(err, orders.ErrOrderNotPending),
		errors.Is(err, orders.ErrInvalidTransition):
		return http.StatusConflict, err.Error()
	}
	return http.StatusInternalServerError, "internal server error"
}

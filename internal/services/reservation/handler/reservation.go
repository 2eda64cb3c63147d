package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"vastra-system/config"
	"vastra-system/internal/database/models"
	inventory "vastra-system/internal/services/inventory/handler"
	invoice "vastra-system/internal/services/invoice/handler"
)

const (
	EventReservationCreated   = "reservation.created"
	EventReservationCompleted = "reservation.completed"
	EventReservationCancelled = "reservation.cancelled"

	codeLength      = 4
	codeGenAttempts = 3
)

var (
	ErrReservationNotFound     = errors.New("reservation not found")
	ErrReservationMismatch     = errors.New("reservation does not belong to this store")
	ErrReservationNotActive    = errors.New("reservation is no longer active")
	ErrReservationExpired      = errors.New("reservation expired")
	ErrInvalidCode             = errors.New("invalid reservation code")
	ErrCodeGenerationExhausted = errors.New("could not generate a unique reservation code")
	ErrConcurrencyConflict     = errors.New("reservation was modified concurrently")
)

// generateCode derives a short numeric confirmation code from a random
// 128-bit identifier: the decimal rendering of the UUID's integer value,
// truncated. Uniqueness is enforced by the DB constraint, not here; a
// collision fails the insert and the caller retries.
func generateCode() string {
	id := uuid.New()
	digits := new(big.Int).SetBytes(id[:]).String()
	return digits[:codeLength]
}

type ReservationHandler struct {
	db    *gorm.DB
	redis *redis.Client
}

func NewReservationHandler(db *gorm.DB, redisClient *redis.Client) *ReservationHandler {
	return &ReservationHandler{
		db:    db,
		redis: redisClient,
	}
}

type CreateReservationRequest struct {
	ProductID     int64
	SizeID        int64
	Quantity      int64
	AdvanceAmount decimal.Decimal
	ReservedUntil time.Time
	CustomerName  *string
	CustomerPhone *string
}

// CreateReservation places a customer hold on a product size. No stock is
// deducted here: the optimistic-reservation policy defers the check-and-
// deduct to redemption, so two holds on the last unit can coexist and the
// first redeemer wins.
func (s *ReservationHandler) CreateReservation(ctx context.Context, customerID int64, req CreateReservationRequest) (*models.Reservation, error) {
	if req.Quantity <= 0 {
		return nil, inventory.ErrInvalidQuantity
	}

	var size models.ProductSize
	if err := s.db.WithContext(ctx).
		Where("id = ? AND product_id = ?", req.SizeID, req.ProductID).
		Preload("Product").
		First(&size).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, inventory.ErrVariantNotFound
		}
		return nil, err
	}

	reservation := models.Reservation{
		CustomerID:    customerID,
		ProductID:     req.ProductID,
		SizeID:        req.SizeID,
		StoreID:       size.Product.StoreID,
		Quantity:      req.Quantity,
		AdvanceAmount: req.AdvanceAmount,
		Status:        models.ReservationStatusReserved,
		ReservedUntil: req.ReservedUntil,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
	}

	var lastErr error
	for attempt := 0; attempt < codeGenAttempts; attempt++ {
		reservation.ID = 0
		reservation.UniqueCode = generateCode()
		err := s.db.WithContext(ctx).Create(&reservation).Error
		if err == nil {
			// Events are best effort; a dead broker must not fail the hold.
			if err := s.publishReservationEvent(ctx, EventReservationCreated, &reservation); err != nil {
				config.LogError(config.GetLogger(), "reservation", "CreateReservation", strconv.FormatInt(reservation.ID, 10), err)
			}
			return &reservation, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, err
		}
		lastErr = err
	}

	return nil, fmt.Errorf("%w: %v", ErrCodeGenerationExhausted, lastErr)
}

type VerifyResult struct {
	Reservation   *models.Reservation
	Sale          *models.Sale
	AdvanceAmount decimal.Decimal
}

// VerifyCode redeems a reservation at the counter. The guard order matters:
// exact code match first, then lazy expiry (which persists the expired state
// even though the request is rejected), then the atomic stock deduction.
// Completion emits the auto-sale that settles the advance deposit; the
// remaining balance is collected out-of-band.
func (s *ReservationHandler) VerifyCode(ctx context.Context, storeID, reservationID int64, code string) (*VerifyResult, error) {
	var reservation models.Reservation
	if err := s.db.WithContext(ctx).
		Preload("Product").
		Preload("Size").
		First(&reservation, reservationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}

	if reservation.StoreID != storeID {
		return nil, ErrReservationMismatch
	}

	if code != reservation.UniqueCode {
		return nil, ErrInvalidCode
	}

	if reservation.IsTerminal() {
		return nil, ErrReservationNotActive
	}

	if reservation.IsExpired(time.Now()) {
		if err := s.db.WithContext(ctx).Model(&models.Reservation{}).
			Where("id = ? AND status = ?", reservation.ID, models.ReservationStatusReserved).
			Update("status", models.ReservationStatusExpired).Error; err != nil {
			return nil, err
		}
		return nil, ErrReservationExpired
	}

	sale, err := s.completeWithSale(ctx, &reservation)
	if err != nil {
		return nil, err
	}

	if err := s.publishReservationEvent(ctx, EventReservationCompleted, &reservation); err != nil {
		config.LogError(config.GetLogger(), "reservation", "VerifyCode", strconv.FormatInt(reservation.ID, 10), err)
	}

	return &VerifyResult{
		Reservation:   &reservation,
		Sale:          sale,
		AdvanceAmount: reservation.AdvanceAmount,
	}, nil
}

// completeWithSale runs the redemption transaction: deduct stock, flip the
// reservation to completed, record the advance-amount sale. All or nothing.
func (s *ReservationHandler) completeWithSale(ctx context.Context, reservation *models.Reservation) (*models.Sale, error) {
	var sale *models.Sale

	run := func() error {
		tx := s.db.WithContext(ctx).Begin()
		defer func() {
			if r := recover(); r != nil {
				tx.Rollback()
			}
		}()

		if _, err := inventory.ReserveStock(tx, reservation.SizeID, reservation.Quantity); err != nil {
			tx.Rollback()
			return err
		}

		res := tx.Model(&models.Reservation{}).
			Where("id = ? AND status = ?", reservation.ID, models.ReservationStatusReserved).
			Update("status", models.ReservationStatusCompleted)
		if res.Error != nil {
			tx.Rollback()
			return res.Error
		}
		if res.RowsAffected == 0 {
			tx.Rollback()
			return ErrConcurrencyConflict
		}

		invoiceNo, err := invoice.NextInvoiceNo(tx, reservation.StoreID, time.Now())
		if err != nil {
			tx.Rollback()
			return err
		}

		advance := reservation.AdvanceAmount
		autoSale := models.Sale{
			StoreID:       reservation.StoreID,
			InvoiceNo:     invoiceNo,
			Subtotal:      advance,
			TotalAmount:   advance,
			PaidAmount:    advance,
			CustomerName:  reservation.CustomerName,
			CustomerPhone: reservation.CustomerPhone,
			ReservationID: &reservation.ID,
			Items: []models.SaleItem{
				{
					ProductID:     reservation.ProductID,
					ProductName:   reservation.Product.Name,
					SizeLabel:     reservation.Size.SizeLabel,
					UnitPrice:     reservation.Size.Price,
					Quantity:      reservation.Quantity,
					AdvanceAmount: &advance,
				},
			},
		}
		if err := tx.Create(&autoSale).Error; err != nil {
			tx.Rollback()
			return err
		}

		if err := tx.Commit().Error; err != nil {
			return err
		}
		sale = &autoSale
		return nil
	}

	err := run()
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// Invoice sequence raced another commit; recompute once.
		err = run()
	}
	if err != nil {
		return nil, err
	}

	reservation.Status = models.ReservationStatusCompleted
	return sale, nil
}

// CompleteReservation flips a reserved reservation to completed inside the
// caller's transaction. Used by the sale engine when a reservation checkout
// commits; the conditional update keeps a racing redemption from completing
// the same reservation twice.
func CompleteReservation(tx *gorm.DB, storeID, reservationID int64) (*models.Reservation, error) {
	var reservation models.Reservation
	if err := tx.First(&reservation, reservationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}

	if reservation.StoreID != storeID {
		return nil, ErrReservationMismatch
	}

	if reservation.IsExpired(time.Now()) && reservation.Status == models.ReservationStatusReserved {
		return nil, ErrReservationExpired
	}

	res := tx.Model(&models.Reservation{}).
		Where("id = ? AND status = ?", reservationID, models.ReservationStatusReserved).
		Update("status", models.ReservationStatusCompleted)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrReservationNotActive
	}

	reservation.Status = models.ReservationStatusCompleted
	return &reservation, nil
}

// CancelReservation cancels a still-active hold. No stock is released
// because none was deducted at creation time.
func (s *ReservationHandler) CancelReservation(ctx context.Context, reservationID, actorID int64, isStore bool) (*models.Reservation, error) {
	var reservation models.Reservation
	if err := s.db.WithContext(ctx).First(&reservation, reservationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}

	if !isStore && reservation.CustomerID != actorID {
		return nil, ErrReservationNotFound
	}

	res := s.db.WithContext(ctx).Model(&models.Reservation{}).
		Where("id = ? AND status = ?", reservationID, models.ReservationStatusReserved).
		Update("status", models.ReservationStatusCancelled)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrReservationNotActive
	}

	reservation.Status = models.ReservationStatusCancelled
	if err := s.publishReservationEvent(ctx, EventReservationCancelled, &reservation); err != nil {
		config.LogError(config.GetLogger(), "reservation", "CancelReservation", strconv.FormatInt(reservation.ID, 10), err)
	}
	return &reservation, nil
}

// GetReservation loads one reservation, applying lazy expiry.
func (s *ReservationHandler) GetReservation(ctx context.Context, reservationID int64) (*models.Reservation, error) {
	var reservation models.Reservation
	if err := s.db.WithContext(ctx).
		Preload("Product").
		Preload("Size").
		First(&reservation, reservationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}

	s.applyLazyExpiry(ctx, &reservation)
	return &reservation, nil
}

// ListStoreReservations returns the store's reservations newest first,
// applying lazy expiry to each stale hold.
func (s *ReservationHandler) ListStoreReservations(ctx context.Context, storeID int64) ([]models.Reservation, error) {
	var reservations []models.Reservation
	if err := s.db.WithContext(ctx).
		Where("store_id = ?", storeID).
		Preload("Product").
		Preload("Size").
		Order("created_at DESC").
		Find(&reservations).Error; err != nil {
		return nil, err
	}

	for i := range reservations {
		s.applyLazyExpiry(ctx, &reservations[i])
	}
	return reservations, nil
}

// ListCustomerReservations returns the customer's own reservations.
func (s *ReservationHandler) ListCustomerReservations(ctx context.Context, customerID int64) ([]models.Reservation, error) {
	var reservations []models.Reservation
	if err := s.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Preload("Product").
		Preload("Size").
		Order("created_at DESC").
		Find(&reservations).Error; err != nil {
		return nil, err
	}

	for i := range reservations {
		s.applyLazyExpiry(ctx, &reservations[i])
	}
	return reservations, nil
}

func (s *ReservationHandler) applyLazyExpiry(ctx context.Context, reservation *models.Reservation) {
	if reservation.Status != models.ReservationStatusReserved {
		return
	}
	if !reservation.IsExpired(time.Now()) {
		return
	}

	res := s.db.WithContext(ctx).Model(&models.Reservation{}).
		Where("id = ? AND status = ?", reservation.ID, models.ReservationStatusReserved).
		Update("status", models.ReservationStatusExpired)
	if res.Error == nil && res.RowsAffected > 0 {
		reservation.Status = models.ReservationStatusExpired
	}
}

type ReservationEvent struct {
	EventType     string    `json:"event_type"`
	ReservationID int64     `json:"reservation_id"`
	StoreID       int64     `json:"store_id"`
	Status        string    `json:"status"`
	Timestamp     time.Time `json:"timestamp"`
}

func (s *ReservationHandler) publishReservationEvent(ctx context.Context, eventType string, reservation *models.Reservation) error {
	event := ReservationEvent{
		EventType:     eventType,
		ReservationID: reservation.ID,
		StoreID:       reservation.StoreID,
		Status:        reservation.Status,
		Timestamp:     time.Now(),
	}

	eventJSON, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	channel := fmt.Sprintf("pos:events:%s", eventType)
	if err := s.redis.Publish(ctx, channel, eventJSON).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}

package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"vastra-system/internal/database/models"
	inventory "vastra-system/internal/services/inventory/handler"
)

const EventOrderStatusChanged = "order.status_changed"

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrOrderNotPending   = errors.New("order is not pending")
	ErrInvalidTransition = errors.New("invalid order status transition")
)

// validTransitions encodes the delivery lifecycle. Cancellation is only
// possible before delivery.
var validTransitions = map[string][]string{
	models.OrderStatusPending:   {models.OrderStatusConfirmed, models.OrderStatusCancelled},
	models.OrderStatusConfirmed: {models.OrderStatusDelivered, models.OrderStatusCancelled},
}

func transitionAllowed(from, to string) bool {
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type OrdersHandler struct {
	db    *gorm.DB
	redis *redis.Client
}

func NewOrdersHandler(db *gorm.DB, redisClient *redis.Client) *OrdersHandler {
	return &OrdersHandler{
		db:    db,
		redis: redisClient,
	}
}

type CreateOrderRequest struct {
	ProductID    int64   `json:"product_id" binding:"required"`
	SizeID       int64   `json:"size_id" binding:"required"`
	Quantity     int64   `json:"quantity" binding:"required"`
	CustomerName string  `json:"customer_name" binding:"required"`
	Phone        string  `json:"phone" binding:"required"`
	Address      string  `json:"address" binding:"required"`
	Pincode      string  `json:"pincode" binding:"required"`
	Landmark     *string `json:"landmark"`
	District     string  `json:"district" binding:"required"`
	State        string  `json:"state"`
	Country      string  `json:"country"`
}

// CreateOrder places a buy-now delivery order. Unlike reservations, stock is
// deducted immediately: the item leaves the shelf for packing, so the hold
// must be real. Cancellation puts it back.
func (s *OrdersHandler) CreateOrder(ctx context.Context, customerID int64, req CreateOrderRequest) (*models.BuyNowOrder, error) {
	if req.Quantity <= 0 {
		return nil, inventory.ErrInvalidQuantity
	}

	tx := s.db.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var size models.ProductSize
	if err := tx.Where("id = ? AND product_id = ?", req.SizeID, req.ProductID).
		Preload("Product").
		First(&size).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, inventory.ErrVariantNotFound
		}
		return nil, err
	}

	if _, err := inventory.ReserveStock(tx, req.SizeID, req.Quantity); err != nil {
		tx.Rollback()
		return nil, err
	}

	order := models.BuyNowOrder{
		ID:           uuid.New().String(),
		ProductID:    req.ProductID,
		SizeID:       req.SizeID,
		CustomerID:   customerID,
		StoreID:      size.Product.StoreID,
		CustomerName: req.CustomerName,
		Phone:        req.Phone,
		Address:      req.Address,
		Pincode:      req.Pincode,
		Landmark:     req.Landmark,
		District:     req.District,
		Quantity:     req.Quantity,
		TotalPrice:   size.Price.Mul(decimal.NewFromInt(req.Quantity)),
		Status:       models.OrderStatusPending,
	}
	if req.State != "" {
		order.State = req.State
	}
	if req.Country != "" {
		order.Country = req.Country
	}

	if err := tx.Create(&order).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	s.publishOrderEvent(ctx, &order)
	return &order, nil
}

// UpdateStatus moves an order along the delivery lifecycle. A cancellation
// from any pre-delivery state restores the deducted stock in the same
// transaction as the status flip.
func (s *OrdersHandler) UpdateStatus(ctx context.Context, storeID int64, orderID, newStatus string) (*models.BuyNowOrder, error) {
	tx := s.db.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var order models.BuyNowOrder
	if err := tx.Where("id = ? AND store_id = ?", orderID, storeID).
		First(&order).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	if !transitionAllowed(order.Status, newStatus) {
		tx.Rollback()
		return nil, ErrInvalidTransition
	}

	res := tx.Model(&models.BuyNowOrder{}).
		Where("id = ? AND status = ?", orderID, order.Status).
		Update("status", newStatus)
	if res.Error != nil {
		tx.Rollback()
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		tx.Rollback()
		return nil, ErrInvalidTransition
	}

	if newStatus == models.OrderStatusCancelled {
		if _, err := inventory.ReleaseStock(tx, order.SizeID, order.Quantity); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	order.Status = newStatus
	s.publishOrderEvent(ctx, &order)
	return &order, nil
}

// CancelByCustomer lets the buyer back out while the order is still pending.
func (s *OrdersHandler) CancelByCustomer(ctx context.Context, customerID int64, orderID string) (*models.BuyNowOrder, error) {
	tx := s.db.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var order models.BuyNowOrder
	if err := tx.Where("id = ? AND customer_id = ?", orderID, customerID).
		First(&order).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	res := tx.Model(&models.BuyNowOrder{}).
		Where("id = ? AND status = ?", orderID, models.OrderStatusPending).
		Update("status", models.OrderStatusCancelled)
	if res.Error != nil {
		tx.Rollback()
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		tx.Rollback()
		return nil, ErrOrderNotPending
	}

	if _, err := inventory.ReleaseStock(tx, order.SizeID, order.Quantity); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	order.Status = models.OrderStatusCancelled
	s.publishOrderEvent(ctx, &order)
	return &order, nil
}

// ListStoreOrders returns the store's incoming orders, newest first.
func (s *OrdersHandler) ListStoreOrders(ctx context.Context, storeID int64) ([]models.BuyNowOrder, error) {
	var orders []models.BuyNowOrder
	err := s.db.WithContext(ctx).
		Where("store_id = ?", storeID).
		Preload("Product").
		Preload("Size").
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// ListCustomerOrders returns the buyer's own orders.
func (s *OrdersHandler) ListCustomerOrders(ctx context.Context, customerID int64) ([]models.BuyNowOrder, error) {
	var orders []models.BuyNowOrder
	err := s.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Preload("Product").
		Preload("Size").
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

type OrderEvent struct {
	EventType string    `json:"event_type"`
	OrderID   string    `json:"order_id"`
	StoreID   int64     `json:"store_id"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

func (s *OrdersHandler) publishOrderEvent(ctx context.Context, order *models.BuyNowOrder) error {
	event := OrderEvent{
		EventType: EventOrderStatusChanged,
		OrderID:   order.ID,
		StoreID:   order.StoreID,
		Status:    order.Status,
		Timestamp: time.Now(),
	}

	eventJSON, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	channel := fmt.Sprintf("pos:events:%s", EventOrderStatusChanged)
	if err := s.redis.Publish(ctx, channel, eventJSON).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}

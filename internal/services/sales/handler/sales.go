package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"vastra-system/config"
	"vastra-system/internal/database/models"
	credit "vastra-system/internal/services/credit/handler"
	inventory "vastra-system/internal/services/inventory/handler"
	invoice "vastra-system/internal/services/invoice/handler"
	reservation "vastra-system/internal/services/reservation/handler"
)

const (
	EventSaleCompleted   = "sale.completed"
	EventReturnProcessed = "return.processed"
)

var (
	ErrEmptySale           = errors.New("sale must contain at least one item")
	ErrPaymentMismatch     = errors.New("paid amount plus credit amount must equal the total")
	ErrCreditRequiresPhone = errors.New("credit sale requires a customer phone")
	ErrSaleNotFound        = errors.New("sale not found")
)

type SalesHandler struct {
	db    *gorm.DB
	redis *redis.Client
}

func NewSalesHandler(db *gorm.DB, redisClient *redis.Client) *SalesHandler {
	return &SalesHandler{
		db:    db,
		redis: redisClient,
	}
}

type SaleLineRequest struct {
	ProductID int64  `json:"product_id" binding:"required"`
	SizeLabel string `json:"size_label" binding:"required"`
	Quantity  int64  `json:"quantity" binding:"required"`
}

type CreateSaleRequest struct {
	Items              []SaleLineRequest `json:"items" binding:"required"`
	Discount           decimal.Decimal   `json:"discount"`
	PaidAmount         decimal.Decimal   `json:"paid_amount"`
	CreditAmount       decimal.Decimal   `json:"credit_amount"`
	SettleCreditAmount decimal.Decimal   `json:"settle_credit_amount"`
	CustomerName       *string           `json:"customer_name"`
	CustomerPhone      *string           `json:"customer_phone"`
	ReservationID      *int64            `json:"reservation_id"`
}

type SaleResult struct {
	Sale            *models.Sale
	SettledCredit   decimal.Decimal
	RemainingCredit decimal.Decimal
}

// CreateSale commits a point-of-sale checkout as one transaction: every line
// deducts stock atomically, line snapshots are copied from the catalog, the
// invoice number is assigned, credit is accrued and/or settled, and an
// optional reservation is completed. Any failure rolls back everything,
// including stock already deducted for earlier lines.
func (s *SalesHandler) CreateSale(ctx context.Context, storeID int64, req CreateSaleRequest) (*SaleResult, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptySale
	}
	for _, line := range req.Items {
		if line.Quantity <= 0 {
			return nil, inventory.ErrInvalidQuantity
		}
	}

	phone := ""
	if req.CustomerPhone != nil {
		phone = *req.CustomerPhone
	}
	if req.CreditAmount.GreaterThan(decimal.Zero) && phone == "" {
		return nil, ErrCreditRequiresPhone
	}
	if req.SettleCreditAmount.GreaterThan(decimal.Zero) && phone == "" {
		return nil, ErrCreditRequiresPhone
	}

	result, err := s.commitSale(ctx, storeID, req, phone)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// Invoice sequence raced another commit; recompute once.
		result, err = s.commitSale(ctx, storeID, req, phone)
	}
	if err != nil {
		return nil, err
	}

	// Events are best effort; a dead broker must not fail a committed sale.
	if err := s.publishSaleEvent(ctx, EventSaleCompleted, result.Sale); err != nil {
		config.LogError(config.GetLogger(), "sales", "CreateSale", result.Sale.InvoiceNo, err)
	}
	return result, nil
}

func (s *SalesHandler) commitSale(ctx context.Context, storeID int64, req CreateSaleRequest, phone string) (*SaleResult, error) {
	tx := s.db.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	subtotal := decimal.Zero
	items := make([]models.SaleItem, 0, len(req.Items))
	for _, line := range req.Items {
		size, err := inventory.ResolveSize(tx, storeID, line.ProductID, line.SizeLabel)
		if err != nil {
			tx.Rollback()
			return nil, err
		}

		if _, err := inventory.ReserveStock(tx, size.ID, line.Quantity); err != nil {
			tx.Rollback()
			return nil, err
		}

		lineTotal := size.Price.Mul(decimal.NewFromInt(line.Quantity))
		subtotal = subtotal.Add(lineTotal)
		items = append(items, models.SaleItem{
			ProductID:   line.ProductID,
			ProductName: size.Product.Name,
			SizeLabel:   size.SizeLabel,
			UnitPrice:   size.Price,
			Quantity:    line.Quantity,
		})
	}

	total := subtotal.Sub(req.Discount)
	if total.LessThan(decimal.Zero) {
		tx.Rollback()
		return nil, ErrPaymentMismatch
	}
	if !req.PaidAmount.Add(req.CreditAmount).Equal(total) {
		tx.Rollback()
		return nil, ErrPaymentMismatch
	}

	invoiceNo, err := invoice.NextInvoiceNo(tx, storeID, time.Now())
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	sale := models.Sale{
		StoreID:       storeID,
		InvoiceNo:     invoiceNo,
		Subtotal:      subtotal,
		Discount:      req.Discount,
		TotalAmount:   total,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		PaidAmount:    req.PaidAmount,
		IsCredit:      req.CreditAmount.GreaterThan(decimal.Zero),
		CreditAmount:  req.CreditAmount,
		ReservationID: req.ReservationID,
		Items:         items,
	}
	if err := tx.Create(&sale).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if req.CreditAmount.GreaterThan(decimal.Zero) {
		if _, err := credit.Accrue(tx, storeID, req.CustomerName, req.CustomerPhone, req.CreditAmount, &sale.ID); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	settled := decimal.Zero
	remaining := decimal.Zero
	if req.SettleCreditAmount.GreaterThan(decimal.Zero) {
		settled, remaining, err = credit.Settle(tx, storeID, phone, req.SettleCreditAmount, credit.SettleNewestFirst)
		if err != nil {
			tx.Rollback()
			return nil, err
		}
	} else if phone != "" {
		remaining, err = credit.OutstandingBalance(tx, storeID, phone)
		if err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if req.ReservationID != nil {
		if _, err := reservation.CompleteReservation(tx, storeID, *req.ReservationID); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return &SaleResult{
		Sale:            &sale,
		SettledCredit:   settled,
		RemainingCredit: remaining,
	}, nil
}

type ReturnRequest struct {
	ProductID int64   `json:"product_id" binding:"required"`
	SizeLabel string  `json:"size_label" binding:"required"`
	Quantity  int64   `json:"quantity" binding:"required"`
	Reason    *string `json:"reason"`
	InvoiceNo *string `json:"invoice_no"`
}

// ProcessReturn restores stock and records the return as its own append-only
// row. The original sale is never modified; refund accounting stays readable
// from the returns ledger alone.
func (s *SalesHandler) ProcessReturn(ctx context.Context, storeID, processedBy int64, req ReturnRequest) (*models.Return, error) {
	if req.Quantity <= 0 {
		return nil, inventory.ErrInvalidQuantity
	}

	tx := s.db.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	size, err := inventory.ResolveSize(tx, storeID, req.ProductID, req.SizeLabel)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if _, err := inventory.ReleaseStock(tx, size.ID, req.Quantity); err != nil {
		tx.Rollback()
		return nil, err
	}

	ret := models.Return{
		StoreID:     storeID,
		ProductID:   req.ProductID,
		SizeLabel:   size.SizeLabel,
		Quantity:    req.Quantity,
		UnitPrice:   size.Price,
		Reason:      req.Reason,
		InvoiceNo:   req.InvoiceNo,
		ProcessedBy: processedBy,
	}
	if err := tx.Create(&ret).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	if err := s.publishReturnEvent(ctx, &ret); err != nil {
		config.LogError(config.GetLogger(), "sales", "ProcessReturn", ret.SizeLabel, err)
	}
	return &ret, nil
}

// ListSales returns the store's sales newest first with their line items.
func (s *SalesHandler) ListSales(ctx context.Context, storeID int64) ([]models.Sale, error) {
	var sales []models.Sale
	err := s.db.WithContext(ctx).
		Where("store_id = ?", storeID).
		Preload("Items").
		Order("created_at DESC").
		Find(&sales).Error
	if err != nil {
		return nil, err
	}
	return sales, nil
}

// GetSale loads one sale with items, scoped to the store.
func (s *SalesHandler) GetSale(ctx context.Context, storeID, saleID int64) (*models.Sale, error) {
	var sale models.Sale
	err := s.db.WithContext(ctx).
		Where("id = ? AND store_id = ?", saleID, storeID).
		Preload("Items").
		First(&sale).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSaleNotFound
		}
		return nil, err
	}
	return &sale, nil
}

type CustomerInfo struct {
	CustomerName      *string         `json:"customer_name"`
	CustomerPhone     string          `json:"customer_phone"`
	OutstandingCredit decimal.Decimal `json:"outstanding_credit"`
	LastSaleAt        *time.Time      `json:"last_sale_at"`
}

// LookupCustomer answers the counter question "who is this phone number":
// the name from the most recent sale plus the current outstanding balance.
func (s *SalesHandler) LookupCustomer(ctx context.Context, storeID int64, phone string) (*CustomerInfo, error) {
	if phone == "" {
		return nil, credit.ErrPhoneRequired
	}

	info := CustomerInfo{CustomerPhone: phone}

	var lastSale models.Sale
	err := s.db.WithContext(ctx).
		Where("store_id = ? AND customer_phone = ?", storeID, phone).
		Order("created_at DESC").
		First(&lastSale).Error
	if err == nil {
		info.CustomerName = lastSale.CustomerName
		info.LastSaleAt = &lastSale.CreatedAt
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	outstanding, err := credit.OutstandingBalance(s.db.WithContext(ctx), storeID, phone)
	if err != nil {
		return nil, err
	}
	info.OutstandingCredit = outstanding

	return &info, nil
}

type SaleEvent struct {
	EventType   string          `json:"event_type"`
	SaleID      int64           `json:"sale_id"`
	StoreID     int64           `json:"store_id"`
	InvoiceNo   string          `json:"invoice_no"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	IsCredit    bool            `json:"is_credit"`
	Timestamp   time.Time       `json:"timestamp"`
}

func (s *SalesHandler) publishSaleEvent(ctx context.Context, eventType string, sale *models.Sale) error {
	event := SaleEvent{
		EventType:   eventType,
		SaleID:      sale.ID,
		StoreID:     sale.StoreID,
		InvoiceNo:   sale.InvoiceNo,
		TotalAmount: sale.TotalAmount,
		IsCredit:    sale.IsCredit,
		Timestamp:   time.Now(),
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

type ReturnEvent struct {
	EventType string    `json:"event_type"`
	ReturnID  int64     `json:"return_id"`
	StoreID   int64     `json:"store_id"`
	ProductID int64     `json:"product_id"`
	Quantity  int64     `json:"quantity"`
	Timestamp time.Time `json:"timestamp"`
}

func (s *SalesHandler) publishReturnEvent(ctx context.Context, ret *models.Return) error {
	event := ReturnEvent{
		EventType: EventReturnProcessed,
		ReturnID:  ret.ID,
		StoreID:   ret.StoreID,
		ProductID: ret.ProductID,
		Quantity:  ret.Quantity,
		Timestamp: time.Now(),
	}

	eventJSON, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	channel := fmt.Sprintf("pos:events:%s", EventReturnProcessed)
	if err := s.redis.Publish(ctx, channel, eventJSON).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}

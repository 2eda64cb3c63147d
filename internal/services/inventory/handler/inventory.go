package handler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"vastra-system/internal/database/models"
)

const (
	INVENTORY_CACHE_PREFIX = "inventory:"
	STOREFRONT_CACHE_KEY   = "inventory:storefront"
	CACHE_TTL_SHORT        = 5 * time.Minute
	CACHE_TTL_MEDIUM       = 30 * time.Minute
)

var (
	ErrInvalidQuantity   = errors.New("quantity must be greater than 0")
	ErrVariantNotFound   = errors.New("product size not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// InsufficientStockError carries the product/size the deduction failed on so
// callers can surface a line-level message.
type InsufficientStockError struct {
	ProductName string
	SizeLabel   string
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s (%s)", e.ProductName, e.SizeLabel)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// ResolveSize looks up a product size by (product, size_label) scoped to the
// given store. Returns ErrVariantNotFound when the line cannot be resolved.
func ResolveSize(tx *gorm.DB, storeID, productID int64, sizeLabel string) (*models.ProductSize, error) {
	var size models.ProductSize
	err := tx.Joins("JOIN products ON products.id = product_sizes.product_id").
		Where("products.store_id = ? AND product_sizes.product_id = ? AND product_sizes.size_label = ?",
			storeID, productID, sizeLabel).
		Preload("Product").
		First(&size).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVariantNotFound
		}
		return nil, err
	}
	return &size, nil
}

// ReserveStock atomically decrements the size's quantity. The conditional
// UPDATE (quantity >= requested) is where concurrent deductions serialize:
// of two racing callers asking for the last unit, exactly one row update
// wins and the other gets InsufficientStockError. Deduction is deliberately
// lazy — it happens at sale commit or reservation redemption, never at
// reservation creation.
func ReserveStock(tx *gorm.DB, sizeID int64, quantity int64) (int64, error) {
	if quantity <= 0 {
		return 0, ErrInvalidQuantity
	}

	res := tx.Model(&models.ProductSize{}).
		Where("id = ? AND quantity >= ?", sizeID, quantity).
		UpdateColumn("quantity", gorm.Expr("quantity - ?", quantity))
	if res.Error != nil {
		return 0, res.Error
	}

	if res.RowsAffected == 0 {
		var size models.ProductSize
		if err := tx.Preload("Product").First(&size, sizeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, ErrVariantNotFound
			}
			return 0, err
		}
		name := ""
		if size.Product != nil {
			name = size.Product.Name
		}
		return size.Quantity, &InsufficientStockError{ProductName: name, SizeLabel: size.SizeLabel}
	}

	var size models.ProductSize
	if err := tx.Select("quantity").First(&size, sizeID).Error; err != nil {
		return 0, err
	}
	return size.Quantity, nil
}

// ReleaseStock is the inverse of ReserveStock, used by returns and
// reservation cancellation. There is no upper bound check; stock counts do
// not model a fixed warehouse capacity.
func ReleaseStock(tx *gorm.DB, sizeID int64, quantity int64) (int64, error) {
	if quantity <= 0 {
		return 0, ErrInvalidQuantity
	}

	res := tx.Model(&models.ProductSize{}).
		Where("id = ?", sizeID).
		UpdateColumn("quantity", gorm.Expr("quantity + ?", quantity))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, ErrVariantNotFound
	}

	var size models.ProductSize
	if err := tx.Select("quantity").First(&size, sizeID).Error; err != nil {
		return 0, err
	}
	return size.Quantity, nil
}

// --- Handler ---

type InventoryHandler struct {
	db    *gorm.DB
	redis *redis.Client
}

func NewInventoryHandler(db *gorm.DB, redisClient *redis.Client) *InventoryHandler {
	return &InventoryHandler{
		db:    db,
		redis: redisClient,
	}
}

func (s *InventoryHandler) InvalidateInventoryCaches(ctx context.Context, productIDs ...int64) {
	_ = s.redis.Del(ctx, STOREFRONT_CACHE_KEY)

	for _, id := range productIDs {
		cacheKey := fmt.Sprintf("%s%d", INVENTORY_CACHE_PREFIX, id)
		_ = s.redis.Del(ctx, cacheKey)
	}
}

type StockUpdateItem struct {
	SizeID   int64 `json:"size_id"`
	Quantity int64 `json:"quantity"`
}

// UpdateStockAfterSale reduces stock for a batch of sizes in one
// transaction. Any failing line rolls back the whole batch.
func (s *InventoryHandler) UpdateStockAfterSale(ctx context.Context, storeID int64, items []StockUpdateItem) error {
	if len(items) == 0 {
		return ErrInvalidQuantity
	}

	tx := s.db.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	productIDs := make([]int64, 0, len(items))
	for _, item := range items {
		if item.SizeID == 0 || item.Quantity <= 0 {
			continue
		}

		var size models.ProductSize
		if err := tx.Joins("JOIN products ON products.id = product_sizes.product_id").
			Where("product_sizes.id = ? AND products.store_id = ?", item.SizeID, storeID).
			First(&size).Error; err != nil {
			tx.Rollback()
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrVariantNotFound
			}
			return err
		}

		if _, err := ReserveStock(tx, item.SizeID, item.Quantity); err != nil {
			tx.Rollback()
			return err
		}
		productIDs = append(productIDs, size.ProductID)
	}

	if err := tx.Commit().Error; err != nil {
		return err
	}

	s.InvalidateInventoryCaches(ctx, productIDs...)
	return nil
}

// CheckStock returns current stock for all sizes of a product.
func (s *InventoryHandler) CheckStock(ctx context.Context, storeID, productID int64) ([]models.ProductSize, error) {
	var sizes []models.ProductSize
	err := s.db.WithContext(ctx).
		Joins("JOIN products ON products.id = product_sizes.product_id").
		Where("products.store_id = ? AND product_sizes.product_id = ?", storeID, productID).
		Find(&sizes).Error
	if err != nil {
		return nil, err
	}
	return sizes, nil
}

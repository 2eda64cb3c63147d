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

	"vastra-system/internal/database/models"
)

const (
	PRODUCT_CACHE_PREFIX = "catalog:product:"
	STORE_CACHE_PREFIX   = "catalog:store:"
	ADS_CACHE_KEY        = "catalog:ads"
	CACHE_TTL_SHORT      = 5 * time.Minute
	CACHE_TTL_MEDIUM     = 30 * time.Minute
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrStoreNotFound   = errors.New("store not found")
	ErrNoSizes         = errors.New("product must have at least one size")
)

type CatalogHandler struct {
	db    *gorm.DB
	redis *redis.Client
}

func NewCatalogHandler(db *gorm.DB, redisClient *redis.Client) *CatalogHandler {
	return &CatalogHandler{
		db:    db,
		redis: redisClient,
	}
}

type SizeRequest struct {
	SizeLabel string          `json:"size_label" binding:"required"`
	Price     decimal.Decimal `json:"price" binding:"required"`
	Quantity  int64           `json:"quantity"`
}

type CreateProductRequest struct {
	Name          string        `json:"name" binding:"required"`
	Description   *string       `json:"description"`
	MainImageURL  *string       `json:"main_image_url"`
	Keywords      string        `json:"keywords"`
	CategoryID    *int64        `json:"category_id"`
	SubcategoryID *int64        `json:"subcategory_id"`
	OfferID       *int64        `json:"offer_id"`
	Sizes         []SizeRequest `json:"sizes" binding:"required"`
	ImageURLs     []string      `json:"image_urls"`
}

func (s *CatalogHandler) CreateProduct(ctx context.Context, storeID int64, req CreateProductRequest) (*models.Product, error) {
	if len(req.Sizes) == 0 {
		return nil, ErrNoSizes
	}

	product := models.Product{
		StoreID:       storeID,
		CategoryID:    req.CategoryID,
		SubcategoryID: req.SubcategoryID,
		OfferID:       req.OfferID,
		Name:          req.Name,
		Description:   req.Description,
		MainImageURL:  req.MainImageURL,
		Keywords:      req.Keywords,
	}
	for _, size := range req.Sizes {
		product.Sizes = append(product.Sizes, models.ProductSize{
			SizeLabel: size.SizeLabel,
			Price:     size.Price,
			Quantity:  size.Quantity,
		})
	}
	for _, url := range req.ImageURLs {
		product.Images = append(product.Images, models.ProductImage{ImageURL: url})
	}

	if err := s.db.WithContext(ctx).Create(&product).Error; err != nil {
		return nil, err
	}

	s.invalidateProductCaches(ctx, product.ID, storeID)
	return &product, nil
}

type UpdateProductRequest struct {
	Name          *string `json:"name"`
	Description   *string `json:"description"`
	MainImageURL  *string `json:"main_image_url"`
	Keywords      *string `json:"keywords"`
	CategoryID    *int64  `json:"category_id"`
	SubcategoryID *int64  `json:"subcategory_id"`
	OfferID       *int64  `json:"offer_id"`
}

func (s *CatalogHandler) UpdateProduct(ctx context.Context, storeID, productID int64, req UpdateProductRequest) (*models.Product, error) {
	var product models.Product
	if err := s.db.WithContext(ctx).
		Where("id = ? AND store_id = ?", productID, storeID).
		First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.MainImageURL != nil {
		updates["main_image_url"] = *req.MainImageURL
	}
	if req.Keywords != nil {
		updates["keywords"] = *req.Keywords
	}
	if req.CategoryID != nil {
		updates["category_id"] = *req.CategoryID
	}
	if req.SubcategoryID != nil {
		updates["subcategory_id"] = *req.SubcategoryID
	}
	if req.OfferID != nil {
		updates["offer_id"] = *req.OfferID
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(&product).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	s.invalidateProductCaches(ctx, productID, storeID)
	return s.GetProduct(ctx, productID)
}

func (s *CatalogHandler) DeleteProduct(ctx context.Context, storeID, productID int64) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND store_id = ?", productID, storeID).
		Delete(&models.Product{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrProductNotFound
	}

	s.db.WithContext(ctx).Where("product_id = ?", productID).Delete(&models.ProductSize{})
	s.db.WithContext(ctx).Where("product_id = ?", productID).Delete(&models.ProductImage{})

	s.invalidateProductCaches(ctx, productID, storeID)
	return nil
}

// GetProduct serves the public product detail, cache-aside over redis.
func (s *CatalogHandler) GetProduct(ctx context.Context, productID int64) (*models.Product, error) {
	cacheKey := fmt.Sprintf("%s%d", PRODUCT_CACHE_PREFIX, productID)
	if cached, err := s.redis.Get(ctx, cacheKey).Result(); err == nil {
		var product models.Product
		if err := json.Unmarshal([]byte(cached), &product); err == nil {
			return &product, nil
		}
	}

	var product models.Product
	err := s.db.WithContext(ctx).
		Preload("Sizes").
		Preload("Images").
		Preload("Store").
		Preload("Offer").
		First(&product, productID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	if data, err := json.Marshal(product); err == nil {
		s.redis.Set(ctx, cacheKey, data, CACHE_TTL_MEDIUM)
	}
	return &product, nil
}

// ListStoreProducts returns a store's catalog, newest first.
func (s *CatalogHandler) ListStoreProducts(ctx context.Context, storeID int64) ([]models.Product, error) {
	var products []models.Product
	err := s.db.WithContext(ctx).
		Where("store_id = ?", storeID).
		Preload("Sizes").
		Preload("Images").
		Order("created_at DESC").
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

// SearchProducts matches against name and the keywords column.
func (s *CatalogHandler) SearchProducts(ctx context.Context, query string, limit int) ([]models.Product, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	pattern := "%" + query + "%"
	var products []models.Product
	err := s.db.WithContext(ctx).
		Where("name ILIKE ? OR keywords ILIKE ?", pattern, pattern).
		Preload("Sizes").
		Preload("Store").
		Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

// --- Offers ---

type CreateOfferRequest struct {
	Title     string    `json:"title" binding:"required"`
	StartDate time.Time `json:"start_date" binding:"required"`
	EndDate   time.Time `json:"end_date" binding:"required"`
	BannerURL *string   `json:"banner_url"`
}

func (s *CatalogHandler) CreateOffer(ctx context.Context, storeID int64, req CreateOfferRequest) (*models.OfferCategory, error) {
	offer := models.OfferCategory{
		StoreID:   storeID,
		Title:     req.Title,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		BannerURL: req.BannerURL,
	}
	if err := s.db.WithContext(ctx).Create(&offer).Error; err != nil {
		return nil, err
	}
	return &offer, nil
}

// ListActiveOffers filters on the offer window at read time.
func (s *CatalogHandler) ListActiveOffers(ctx context.Context, storeID int64) ([]models.OfferCategory, error) {
	now := time.Now()
	var offers []models.OfferCategory
	err := s.db.WithContext(ctx).
		Where("store_id = ? AND start_date <= ? AND end_date >= ?", storeID, now, now).
		Order("end_date ASC").
		Find(&offers).Error
	if err != nil {
		return nil, err
	}
	return offers, nil
}

// ListAdvertisements serves the public banner carousel, cache-aside.
func (s *CatalogHandler) ListAdvertisements(ctx context.Context) ([]models.Advertisement, error) {
	if cached, err := s.redis.Get(ctx, ADS_CACHE_KEY).Result(); err == nil {
		var ads []models.Advertisement
		if err := json.Unmarshal([]byte(cached), &ads); err == nil {
			return ads, nil
		}
	}

	var ads []models.Advertisement
	err := s.db.WithContext(ctx).
		Where("active = ?", true).
		Order("created_at DESC").
		Find(&ads).Error
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(ads); err == nil {
		s.redis.Set(ctx, ADS_CACHE_KEY, data, CACHE_TTL_SHORT)
	}
	return ads, nil
}

func (s *CatalogHandler) invalidateProductCaches(ctx context.Context, productID, storeID int64) {
	_ = s.redis.Del(ctx, fmt.Sprintf("%s%d", PRODUCT_CACHE_PREFIX, productID))
	_ = s.redis.Del(ctx, fmt.Sprintf("%s%d", STORE_CACHE_PREFIX, storeID))
}

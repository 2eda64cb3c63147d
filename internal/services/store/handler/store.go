package handler

import (
	"context"
	"errors"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"vastra-system/internal/database/models"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrStoreNotFound = errors.New("store not found")
	ErrAlreadyStore  = errors.New("user already owns a store")
)

// Account creation and token issuance live in the external identity
// service; this handler only works with accounts that already exist.
type StoreHandler struct {
	db    *gorm.DB
	redis *redis.Client
}

func NewStoreHandler(db *gorm.DB, redisClient *redis.Client) *StoreHandler {
	return &StoreHandler{
		db:    db,
		redis: redisClient,
	}
}

type CreateStoreRequest struct {
	StoreName string  `json:"store_name" binding:"required"`
	Place     string  `json:"place" binding:"required"`
	Phone     string  `json:"phone"`
	Category  string  `json:"category" binding:"required"`
	LogoURL   *string `json:"logo_url"`
	CoverURL  *string `json:"cover_url"`
	Bio       *string `json:"bio"`
}

// SwitchToStore upgrades a customer account into a store owner. One store
// per account, enforced by the unique owner constraint.
func (s *StoreHandler) SwitchToStore(ctx context.Context, userID int64, req CreateStoreRequest) (*models.Store, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	store := models.Store{
		OwnerID:   userID,
		StoreName: req.StoreName,
		Place:     req.Place,
		Phone:     req.Phone,
		Category:  req.Category,
		LogoURL:   req.LogoURL,
		CoverURL:  req.CoverURL,
		Bio:       req.Bio,
	}

	tx := s.db.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Create(&store).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyStore
		}
		return nil, err
	}

	if err := tx.Model(&models.User{}).Where("id = ?", userID).
		Update("is_store", true).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &store, nil
}

// MyStore resolves the caller's own store.
func (s *StoreHandler) MyStore(ctx context.Context, ownerID int64) (*models.Store, error) {
	var store models.Store
	if err := s.db.WithContext(ctx).Where("owner_id = ?", ownerID).First(&store).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStoreNotFound
		}
		return nil, err
	}
	return &store, nil
}

type UpdateStoreRequest struct {
	StoreName *string `json:"store_name"`
	Place     *string `json:"place"`
	Phone     *string `json:"phone"`
	Category  *string `json:"category"`
	LogoURL   *string `json:"logo_url"`
	CoverURL  *string `json:"cover_url"`
	Bio       *string `json:"bio"`
}

func (s *StoreHandler) UpdateStore(ctx context.Context, ownerID int64, req UpdateStoreRequest) (*models.Store, error) {
	store, err := s.MyStore(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.StoreName != nil {
		updates["store_name"] = *req.StoreName
	}
	if req.Place != nil {
		updates["place"] = *req.Place
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.LogoURL != nil {
		updates["logo_url"] = *req.LogoURL
	}
	if req.CoverURL != nil {
		updates["cover_url"] = *req.CoverURL
	}
	if req.Bio != nil {
		updates["bio"] = *req.Bio
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(store).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return store, nil
}

// GetPublicStore serves the public storefront header.
func (s *StoreHandler) GetPublicStore(ctx context.Context, storeID int64) (*models.Store, error) {
	var store models.Store
	if err := s.db.WithContext(ctx).First(&store, storeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStoreNotFound
		}
		return nil, err
	}
	return &store, nil
}

// ListStores lists stores for discovery, optionally filtered by category.
func (s *StoreHandler) ListStores(ctx context.Context, category string, limit int) ([]models.Store, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	q := s.db.WithContext(ctx).Order("created_at DESC").Limit(limit)
	if category != "" {
		q = q.Where("category = ?", category)
	}

	var stores []models.Store
	if err := q.Find(&stores).Error; err != nil {
		return nil, err
	}
	return stores, nil
}

// Me returns the caller's account.
func (s *StoreHandler) Me(ctx context.Context, userID int64) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

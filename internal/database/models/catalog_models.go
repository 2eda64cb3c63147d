package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID            int64   `gorm:"primaryKey;autoIncrement"`
	StoreID       int64   `gorm:"not null;index"`
	CategoryID    *int64
	SubcategoryID *int64
	OfferID       *int64
	Name          string  `gorm:"type:varchar(150);not null"`
	Description   *string `gorm:"type:text"`
	MainImageURL  *string `gorm:"type:varchar(256)"`
	Keywords      string  `gorm:"type:varchar(250)"`
	CreatedAt     time.Time

	Store       *Store            `gorm:"foreignKey:StoreID"`
	Category    *StoreCategory    `gorm:"foreignKey:CategoryID"`
	Subcategory *StoreSubCategory `gorm:"foreignKey:SubcategoryID"`
	Offer       *OfferCategory    `gorm:"foreignKey:OfferID"`
	Sizes       []ProductSize     `gorm:"foreignKey:ProductID"`
	Images      []ProductImage    `gorm:"foreignKey:ProductID"`
}

type ProductImage struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	ProductID int64  `gorm:"not null;index"`
	ImageURL  string `gorm:"type:varchar(256);not null"`
}

// ProductSize is the unit of stock tracking: one size/SKU of a product.
// Quantity never goes negative; all mutations go through the inventory
// handler's conditional updates.
type ProductSize struct {
	ID        int64           `gorm:"primaryKey;autoIncrement"`
	ProductID int64           `gorm:"not null;uniqueIndex:idx_product_size_label"`
	SizeLabel string          `gorm:"type:varchar(20);not null;uniqueIndex:idx_product_size_label"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Quantity  int64           `gorm:"not null;default:0;check:quantity >= 0"`

	Product *Product `gorm:"foreignKey:ProductID"`
}

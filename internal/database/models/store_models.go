package models

import "time"

type User struct {
	ID        int64      `gorm:"primaryKey;autoIncrement"`
	Username  string     `gorm:"uniqueIndex;not null"`
	Email     string     `gorm:"uniqueIndex;not null"`
	Phone     string     `gorm:"type:varchar(15);uniqueIndex;not null"`
	PlaceText *string
	IsStore   bool       `gorm:"default:false"`
	LastLogin *time.Time
	CreatedAt *time.Time `gorm:"autoCreateTime"`
	UpdatedAt *time.Time `gorm:"autoUpdateTime"`
}

type Store struct {
	ID        int64   `gorm:"primaryKey;autoIncrement"`
	OwnerID   int64   `gorm:"uniqueIndex;not null"`
	StoreName string  `gorm:"type:varchar(100);not null"`
	Place     string  `gorm:"type:varchar(150);not null"`
	Phone     string  `gorm:"type:varchar(15)"`
	Category  string  `gorm:"type:varchar(50);not null"`
	LogoURL   *string `gorm:"type:varchar(256)"`
	CoverURL  *string `gorm:"type:varchar(256)"`
	Bio       *string `gorm:"type:text"`
	CreatedAt time.Time

	Owner    *User     `gorm:"foreignKey:OwnerID"`
	Products []Product `gorm:"foreignKey:StoreID"`
}

type StoreCategory struct {
	ID        int64   `gorm:"primaryKey;autoIncrement"`
	StoreID   int64   `gorm:"not null;uniqueIndex:idx_store_category_name"`
	Name      string  `gorm:"type:varchar(100);not null;uniqueIndex:idx_store_category_name"`
	ImageURL  *string `gorm:"type:varchar(256)"`
	CreatedAt time.Time

	Subcategories []StoreSubCategory `gorm:"foreignKey:CategoryID"`
}

type StoreSubCategory struct {
	ID         int64   `gorm:"primaryKey;autoIncrement"`
	CategoryID int64   `gorm:"not null;uniqueIndex:idx_subcategory_name"`
	Name       string  `gorm:"type:varchar(100);not null;uniqueIndex:idx_subcategory_name"`
	ImageURL   *string `gorm:"type:varchar(256)"`
	CreatedAt  time.Time
}

type OfferCategory struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	StoreID   int64  `gorm:"not null;index"`
	Title     string `gorm:"type:varchar(150);not null"`
	StartDate time.Time
	EndDate   time.Time
	BannerURL *string `gorm:"type:varchar(256)"`
	CreatedAt time.Time
}

// IsActive reports whether the offer window covers now.
func (o OfferCategory) IsActive(now time.Time) bool {
	return !now.Before(o.StartDate) && !now.After(o.EndDate)
}

type Advertisement struct {
	ID           int64   `gorm:"primaryKey;autoIncrement"`
	Title        string  `gorm:"type:varchar(100)"`
	Subtitle     string  `gorm:"type:varchar(255)"`
	MediaURL     *string `gorm:"type:varchar(256)"`
	Link         *string `gorm:"type:varchar(256)"`
	MediaType    string  `gorm:"type:varchar(10);default:'image'"`
	Active       bool    `gorm:"default:true"`
	TextPosition string  `gorm:"type:varchar(10);default:'center'"`
	OverlayStyle string  `gorm:"type:varchar(10);default:'dark'"`
	CreatedAt    time.Time
}

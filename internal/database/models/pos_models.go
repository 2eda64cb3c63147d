package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	ReservationStatusReserved  = "reserved"
	ReservationStatusCompleted = "completed"
	ReservationStatusCancelled = "cancelled"
	ReservationStatusExpired   = "expired"
)

const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusCancelled = "cancelled"
	OrderStatusDelivered = "delivered"
)

type Reservation struct {
	ID            int64           `gorm:"primaryKey;autoIncrement"`
	CustomerID    int64           `gorm:"not null;index"`
	ProductID     int64           `gorm:"not null;index"`
	SizeID        int64           `gorm:"not null"`
	StoreID       int64           `gorm:"not null;index"`
	Quantity      int64           `gorm:"not null;default:1"`
	AdvanceAmount decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Status        string          `gorm:"type:varchar(20);not null;default:'reserved'"`
	UniqueCode    string          `gorm:"type:varchar(6);uniqueIndex;not null"`
	ReservedUntil time.Time       `gorm:"not null"`
	CustomerName  *string         `gorm:"type:varchar(255)"`
	CustomerPhone *string         `gorm:"type:varchar(20)"`
	CreatedAt     time.Time

	Customer *User        `gorm:"foreignKey:CustomerID"`
	Product  *Product     `gorm:"foreignKey:ProductID"`
	Size     *ProductSize `gorm:"foreignKey:SizeID"`
}

// IsExpired is evaluated lazily on read/verify; there is no background sweep.
func (r Reservation) IsExpired(now time.Time) bool {
	return now.After(r.ReservedUntil)
}

// IsTerminal reports whether the reservation reached a final state.
func (r Reservation) IsTerminal() bool {
	return r.Status != ReservationStatusReserved
}

// Sale is an immutable financial record. Its items are snapshots copied from
// the catalog at commit time, so later catalog edits never alter history.
type Sale struct {
	ID            int64           `gorm:"primaryKey;autoIncrement"`
	StoreID       int64           `gorm:"not null;index;uniqueIndex:idx_store_invoice"`
	InvoiceNo     string          `gorm:"type:varchar(128);not null;uniqueIndex:idx_store_invoice"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Discount      decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CustomerName  *string         `gorm:"type:varchar(255)"`
	CustomerPhone *string         `gorm:"type:varchar(32);index"`
	PaidAmount    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	IsCredit      bool            `gorm:"not null;default:false"`
	CreditAmount  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	ReservationID *int64
	CreatedAt     time.Time

	Items       []SaleItem   `gorm:"foreignKey:SaleID"`
	Reservation *Reservation `gorm:"foreignKey:ReservationID"`
}

type SaleItem struct {
	ID            int64            `gorm:"primaryKey;autoIncrement"`
	SaleID        int64            `gorm:"index;not null"`
	ProductID     int64            `gorm:"not null"`
	ProductName   string           `gorm:"type:varchar(150);not null"`
	SizeLabel     string           `gorm:"type:varchar(20);not null"`
	UnitPrice     decimal.Decimal  `gorm:"type:decimal(10,2);not null"`
	Quantity      int64            `gorm:"not null"`
	AdvanceAmount *decimal.Decimal `gorm:"type:decimal(10,2)"`
	CreatedAt     time.Time
}

// CustomerCredit entries accumulate per customer phone. Settlement reduces
// Amount toward zero in place; entries are never deleted, for audit.
type CustomerCredit struct {
	ID              int64           `gorm:"primaryKey;autoIncrement"`
	StoreID         int64           `gorm:"not null;index:idx_credit_store_phone"`
	CustomerName    *string         `gorm:"type:varchar(255)"`
	CustomerPhone   *string         `gorm:"type:varchar(32);index:idx_credit_store_phone"`
	Amount          decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	ReferenceSaleID *int64
	CreatedAt       time.Time
}

type Return struct {
	ID          int64           `gorm:"primaryKey;autoIncrement"`
	StoreID     int64           `gorm:"not null;index"`
	ProductID   int64           `gorm:"not null"`
	SizeLabel   string          `gorm:"type:varchar(20);not null"`
	Quantity    int64           `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	Reason      *string         `gorm:"type:text"`
	InvoiceNo   *string         `gorm:"type:varchar(128)"`
	ProcessedBy int64           `gorm:"not null"`
	CreatedAt   time.Time
}

type BuyNowOrder struct {
	ID           string          `gorm:"type:varchar(36);primaryKey"`
	ProductID    int64           `gorm:"not null;index"`
	SizeID       int64           `gorm:"not null"`
	CustomerID   int64           `gorm:"not null;index"`
	StoreID      int64           `gorm:"not null;index"`
	CustomerName string          `gorm:"type:varchar(255);not null"`
	Phone        string          `gorm:"type:varchar(20);not null"`
	Address      string          `gorm:"type:text;not null"`
	Pincode      string          `gorm:"type:varchar(15);not null"`
	Landmark     *string         `gorm:"type:varchar(255)"`
	District     string          `gorm:"type:varchar(100);not null"`
	State        string          `gorm:"type:varchar(100);default:'Kerala'"`
	Country      string          `gorm:"type:varchar(100);default:'India'"`
	Quantity     int64           `gorm:"not null;default:1"`
	TotalPrice   decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Status       string          `gorm:"type:varchar(20);not null;default:'pending'"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Product *Product     `gorm:"foreignKey:ProductID"`
	Size    *ProductSize `gorm:"foreignKey:SizeID"`
}

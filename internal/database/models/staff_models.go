package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	AttendanceStatusFull   = "FULL"
	AttendanceStatusHalf   = "HALF"
	AttendanceStatusAbsent = "ABSENT"
)

type Staff struct {
	ID           int64           `gorm:"primaryKey;autoIncrement"`
	OwnerID      int64           `gorm:"not null;uniqueIndex:idx_owner_staff_name"`
	Name         string          `gorm:"type:varchar(255);not null;uniqueIndex:idx_owner_staff_name"`
	Phone        *string         `gorm:"type:varchar(30)"`
	Position     *string         `gorm:"type:varchar(120)"`
	SalaryPerDay decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Attendance struct {
	ID             int64            `gorm:"primaryKey;autoIncrement"`
	OwnerID        int64            `gorm:"not null;index"`
	StaffID        int64            `gorm:"not null;uniqueIndex:idx_staff_date"`
	Date           time.Time        `gorm:"type:date;not null;uniqueIndex:idx_staff_date"`
	Status         string           `gorm:"type:varchar(10);not null"`
	Notes          *string          `gorm:"type:text"`
	OverrideAmount *decimal.Decimal `gorm:"type:decimal(10,2)"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Staff *Staff `gorm:"foreignKey:StaffID"`
}

// ComputeAmount returns the payable amount for this attendance row.
// An override amount wins over the computed daily salary.
func (a Attendance) ComputeAmount(dailySalary decimal.Decimal) decimal.Decimal {
	if a.OverrideAmount != nil {
		return *a.OverrideAmount
	}
	switch a.Status {
	case AttendanceStatusFull:
		return dailySalary
	case AttendanceStatusHalf:
		return dailySalary.Div(decimal.NewFromInt(2))
	}
	return decimal.Zero
}

// SalaryRecord is a payout checkout for one staff for one month,
// unique per staff+year+month.
type SalaryRecord struct {
	ID          int64           `gorm:"primaryKey;autoIncrement"`
	OwnerID     int64           `gorm:"not null;index"`
	StaffID     int64           `gorm:"not null;uniqueIndex:idx_staff_month"`
	Year        int             `gorm:"not null;uniqueIndex:idx_staff_month"`
	Month       int             `gorm:"not null;uniqueIndex:idx_staff_month"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	IsPaid      bool            `gorm:"default:false"`
	Notes       *string         `gorm:"type:text"`
	ComputedAt  time.Time       `gorm:"autoCreateTime"`

	Staff *Staff `gorm:"foreignKey:StaffID"`
}

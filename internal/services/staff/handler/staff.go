package handler

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"vastra-system/internal/database/models"
)

var (
	ErrStaffNotFound      = errors.New("staff not found")
	ErrDuplicateStaffName = errors.New("staff name already exists for this owner")
	ErrInvalidStatus      = errors.New("invalid attendance status")
	ErrInvalidMonth       = errors.New("invalid year or month")
	ErrMonthAlreadyPaid   = errors.New("salary already checked out for this month")
	ErrNothingToCheckout  = errors.New("no attendance recorded for this month")
)

type StaffHandler struct {
	db *gorm.DB
}

func NewStaffHandler(db *gorm.DB) *StaffHandler {
	return &StaffHandler{db: db}
}

type CreateStaffRequest struct {
	Name         string          `json:"name" binding:"required"`
	Phone        *string         `json:"phone"`
	Position     *string         `json:"position"`
	SalaryPerDay decimal.Decimal `json:"salary_per_day"`
}

func (s *StaffHandler) CreateStaff(ctx context.Context, ownerID int64, req CreateStaffRequest) (*models.Staff, error) {
	staff := models.Staff{
		OwnerID:      ownerID,
		Name:         req.Name,
		Phone:        req.Phone,
		Position:     req.Position,
		SalaryPerDay: req.SalaryPerDay,
	}
	if err := s.db.WithContext(ctx).Create(&staff).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateStaffName
		}
		return nil, err
	}
	return &staff, nil
}

func (s *StaffHandler) ListStaff(ctx context.Context, ownerID int64) ([]models.Staff, error) {
	var staff []models.Staff
	err := s.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("name ASC").
		Find(&staff).Error
	if err != nil {
		return nil, err
	}
	return staff, nil
}

type UpdateStaffRequest struct {
	Name         *string          `json:"name"`
	Phone        *string          `json:"phone"`
	Position     *string          `json:"position"`
	SalaryPerDay *decimal.Decimal `json:"salary_per_day"`
}

func (s *StaffHandler) UpdateStaff(ctx context.Context, ownerID, staffID int64, req UpdateStaffRequest) (*models.Staff, error) {
	staff, err := s.getStaff(ctx, ownerID, staffID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.Position != nil {
		updates["position"] = *req.Position
	}
	if req.SalaryPerDay != nil {
		updates["salary_per_day"] = *req.SalaryPerDay
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(staff).Updates(updates).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, ErrDuplicateStaffName
			}
			return nil, err
		}
	}
	return staff, nil
}

func (s *StaffHandler) DeleteStaff(ctx context.Context, ownerID, staffID int64) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", staffID, ownerID).
		Delete(&models.Staff{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaffNotFound
	}
	return nil
}

func (s *StaffHandler) getStaff(ctx context.Context, ownerID, staffID int64) (*models.Staff, error) {
	var staff models.Staff
	err := s.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", staffID, ownerID).
		First(&staff).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStaffNotFound
		}
		return nil, err
	}
	return &staff, nil
}

type MarkAttendanceRequest struct {
	StaffID        int64            `json:"staff_id" binding:"required"`
	Date           time.Time        `json:"date" binding:"required"`
	Status         string           `json:"status" binding:"required"`
	Notes          *string          `json:"notes"`
	OverrideAmount *decimal.Decimal `json:"override_amount"`
}

// MarkAttendance upserts the day's record: marking the same staff+date twice
// replaces the earlier status instead of erroring.
func (s *StaffHandler) MarkAttendance(ctx context.Context, ownerID int64, req MarkAttendanceRequest) (*models.Attendance, error) {
	switch req.Status {
	case models.AttendanceStatusFull, models.AttendanceStatusHalf, models.AttendanceStatusAbsent:
	default:
		return nil, ErrInvalidStatus
	}

	if _, err := s.getStaff(ctx, ownerID, req.StaffID); err != nil {
		return nil, err
	}

	day := req.Date.Truncate(24 * time.Hour)

	var attendance models.Attendance
	err := s.db.WithContext(ctx).
		Where("staff_id = ? AND date = ?", req.StaffID, day).
		First(&attendance).Error
	switch {
	case err == nil:
		attendance.Status = req.Status
		attendance.Notes = req.Notes
		attendance.OverrideAmount = req.OverrideAmount
		if err := s.db.WithContext(ctx).Save(&attendance).Error; err != nil {
			return nil, err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		attendance = models.Attendance{
			OwnerID:        ownerID,
			StaffID:        req.StaffID,
			Date:           day,
			Status:         req.Status,
			Notes:          req.Notes,
			OverrideAmount: req.OverrideAmount,
		}
		if err := s.db.WithContext(ctx).Create(&attendance).Error; err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	return &attendance, nil
}

// MonthAttendance lists one staff member's records for a calendar month.
func (s *StaffHandler) MonthAttendance(ctx context.Context, ownerID, staffID int64, year, month int) ([]models.Attendance, error) {
	if year < 2000 || month < 1 || month > 12 {
		return nil, ErrInvalidMonth
	}
	if _, err := s.getStaff(ctx, ownerID, staffID); err != nil {
		return nil, err
	}

	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	var records []models.Attendance
	err := s.db.WithContext(ctx).
		Where("staff_id = ? AND date >= ? AND date < ?", staffID, start, end).
		Order("date ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

type MonthlySummary struct {
	StaffID     int64           `json:"staff_id"`
	Year        int             `json:"year"`
	Month       int             `json:"month"`
	FullDays    int             `json:"full_days"`
	HalfDays    int             `json:"half_days"`
	AbsentDays  int             `json:"absent_days"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	CheckedOut  bool            `json:"checked_out"`
}

// MonthlySalarySummary folds the month's attendance into a payable total
// using the staff member's current daily rate, with per-day overrides winning.
func (s *StaffHandler) MonthlySalarySummary(ctx context.Context, ownerID, staffID int64, year, month int) (*MonthlySummary, error) {
	staff, err := s.getStaff(ctx, ownerID, staffID)
	if err != nil {
		return nil, err
	}

	records, err := s.MonthAttendance(ctx, ownerID, staffID, year, month)
	if err != nil {
		return nil, err
	}

	summary := MonthlySummary{StaffID: staffID, Year: year, Month: month, TotalAmount: decimal.Zero}
	for _, rec := range records {
		switch rec.Status {
		case models.AttendanceStatusFull:
			summary.FullDays++
		case models.AttendanceStatusHalf:
			summary.HalfDays++
		case models.AttendanceStatusAbsent:
			summary.AbsentDays++
		}
		summary.TotalAmount = summary.TotalAmount.Add(rec.ComputeAmount(staff.SalaryPerDay))
	}

	var existing models.SalaryRecord
	err = s.db.WithContext(ctx).
		Where("staff_id = ? AND year = ? AND month = ?", staffID, year, month).
		First(&existing).Error
	if err == nil {
		summary.CheckedOut = true
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	return &summary, nil
}

// CheckoutSalary freezes the month into a salary record. One checkout per
// staff per month; re-running fails rather than paying twice.
func (s *StaffHandler) CheckoutSalary(ctx context.Context, ownerID, staffID int64, year, month int, notes *string) (*models.SalaryRecord, error) {
	summary, err := s.MonthlySalarySummary(ctx, ownerID, staffID, year, month)
	if err != nil {
		return nil, err
	}
	if summary.CheckedOut {
		return nil, ErrMonthAlreadyPaid
	}
	if summary.FullDays == 0 && summary.HalfDays == 0 && summary.AbsentDays == 0 {
		return nil, ErrNothingToCheckout
	}

	record := models.SalaryRecord{
		OwnerID:     ownerID,
		StaffID:     staffID,
		Year:        year,
		Month:       month,
		TotalAmount: summary.TotalAmount,
		IsPaid:      true,
		Notes:       notes,
	}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrMonthAlreadyPaid
		}
		return nil, err
	}
	return &record, nil
}

// ListSalaryRecords returns the owner's payout history, newest first.
func (s *StaffHandler) ListSalaryRecords(ctx context.Context, ownerID int64) ([]models.SalaryRecord, error) {
	var records []models.SalaryRecord
	err := s.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Preload("Staff").
		Order("year DESC, month DESC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

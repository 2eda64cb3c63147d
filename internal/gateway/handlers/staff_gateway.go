package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"vastra-system/internal/database/models"
	"vastra-system/internal/gateway/middleware"
	staff "vastra-system/internal/services/staff/handler"
)

type staffService interface {
	CreateStaff(ctx context.Context, ownerID int64, req staff.CreateStaffRequest) (*models.Staff, error)
	ListStaff(ctx context.Context, ownerID int64) ([]models.Staff, error)
	UpdateStaff(ctx context.Context, ownerID, staffID int64, req staff.UpdateStaffRequest) (*models.Staff, error)
	DeleteStaff(ctx context.Context, ownerID, staffID int64) error
	MarkAttendance(ctx context.Context, ownerID int64, req staff.MarkAttendanceRequest) (*models.Attendance, error)
	MonthAttendance(ctx context.Context, ownerID, staffID int64, year, month int) ([]models.Attendance, error)
	MonthlySalarySummary(ctx context.Context, ownerID, staffID int64, year, month int) (*staff.MonthlySummary, error)
	CheckoutSalary(ctx context.Context, ownerID, staffID int64, year, month int, notes *string) (*models.SalaryRecord, error)
	ListSalaryRecords(ctx context.Context, ownerID int64) ([]models.SalaryRecord, error)
}

type StaffHTTPHandler struct {
	staff staffService
}

func NewStaffHTTPHandler(svc staffService) *StaffHTTPHandler {
	return &StaffHTTPHandler{staff: svc}
}

func (h *StaffHTTPHandler) CreateStaff(c *gin.Context) {
	var req staff.CreateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	ownerID := c.GetInt64(middleware.ContextUserID)
	created, err := h.staff.CreateStaff(c.Request.Context(), ownerID, req)
	if err != nil {
		status, message := statusFromError(err)
		c.JSON(status, errorResponse(message))
		return
	}

	c.JSON(http.StatusCreated, successResponse("Staff created", created))
}

func (h *StaffHTTPHandler) ListStaff(c *gin.Context) {
	ownerID := c.GetInt64(middleware.ContextUserID)
	staffList, err := h.staff.ListStaff(c.Request.Context(), ownerID)
	if err != nil {
		status, message := statusFromError(err)
		c.JSON(status, errorResponse(message))
		return
	}

	c.JSON(http.StatusOK, successResponse("Staff retrieved", staffList))
}

func (h *StaffHTTPHandler) UpdateStaff(c *gin.Context) {
	staffID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid staff ID"))
		return
	}

	var req staff.UpdateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	ownerID := c.GetInt64(middleware.ContextUserID)
	updated, err := h.staff.UpdateStaff(c.Request.Context(), ownerID, staffID, req)
	if err != nil {
		status, message := statusFromError(err)
		c.JSON(status, errorResponse(message))
		return
	}

	c.JSON(http.StatusOK, successResponse("Staff updated", updated))
}

func (h *StaffHTTPHandler) DeleteStaff(c *gin.Context) {
	staffID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid staff ID"))
		return
	}

	ownerID := c.GetInt64(middleware.ContextUserID)
	if err := h.staff.DeleteStaff(c.Request.Context(), ownerID, staffID); err != nil {
		status, message := statusFromError(err)
		c.JSON(status, errorResponse(message))
		return
	}

	c.JSON(http.StatusOK, successResponse("Staff deleted", nil))
}

func (h *StaffHTTPHandler) MarkAttendance(c *gin.Context) {
	var req staff.MarkAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	ownerID := c.GetInt64(middleware.ContextUserID)
	attendance, err := h.staff.MarkAttendance(c.Request.Context(), ownerID, req)
	if err != nil {
		status, message := statusFromError(err)
		c.JSON(status, errorResponse(message))
		return
	}

	c.JSON(http.StatusOK, successResponse("Attendance recorded", attendance))
}

func (h *StaffHTTPHandler) MonthAttendance(c *gin.Context) {
	staffID, year, month, ok := h.parseMonthParams(c)
	if !ok {
		return
	}

	ownerID := c.GetInt64(middleware.ContextUserID)
	records, err := h.staff.MonthAttendance(c.Request.Context(), ownerID, staffID, year, month)
	if err != nil {
		status, message := statusFromError(err)
		c.JSON(status, errorResponse(message))
		return
	}

	c.JSON(http.StatusOK, successResponse("Attendance retrieved", records))
}

func (h *StaffHTTPHandler) MonthlySalarySummary(c *gin.Context) {
	staffID, year, month, ok := h.parseMonthParams(c)
	if !ok {
		return
	}

	ownerID := c.GetInt64(middleware.ContextUserID)
	summary, err := h.staff.MonthlySalarySummary(c.Request.Context(), ownerID, staffID, year, month)
	if err != nil {
		status, message := statusFromError(err)
		c.JSON(status, errorResponse(message))
		return
	}

	c.JSON(http.StatusOK, successResponse("Salary summary retrieved", summary))
}

type CheckoutSalaryRequest struct {
	Year  int     `json:"year" binding:"required"`
	Month int     `json:"month" binding:"required"`
	Notes *string `json:"notes"`
}

func (h *StaffHTTPHandler) CheckoutSalary(c *gin.Context) {
	staffID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid staff ID"))
		return
	}

	var req CheckoutSalaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	ownerID := c.GetInt64(middleware.ContextUserID)
	record, err := h.staff.CheckoutSalary(c.Request.Context(), ownerID, staffID, req.Year, req.Month, req.Notes)
	if err != nil {
		status, message := statusFromError(err)
		c.JSON(status, errorResponse(message))
		return
	}

	c.JSON(http.StatusCreated, successResponse("Salary checked out", record))
}

func (h *StaffHTTPHandler) ListSalaryRecords(c *gin.Context) {
	ownerID := c.GetInt64(middleware.ContextUserID)
	records, err := h.staff.ListSalaryRecords(c.Request.Context(), ownerID)
	if err != nil {
		status, message := statusFromError(err)
		c.JSON(status, errorResponse(message))
		return
	}

	c.JSON(http.StatusOK, successResponse("Salary records retrieved", records))
}

func (h *StaffHTTPHandler) parseMonthParams(c *gin.Context) (staffID int64, year, month int, ok bool) {
	staffID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid staff ID"))
		return 0, 0, 0, false
	}
	year, err = strconv.Atoi(c.Query("year"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("year query parameter required"))
		return 0, 0, 0, false
	}
	month, err = strconv.Atoi(c.Query("month"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("month query parameter required"))
		return 0, 0, 0, false
	}
	return staffID, year, month, true
}

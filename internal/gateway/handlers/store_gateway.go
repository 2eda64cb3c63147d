package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"vastra-system/internal/database/models"
	"vastra-system/internal/gateway/middleware"
	store "vastra-system/internal/services/store/handler"
)

type storeService interface {
	SwitchToStore(ctx context.Context, userID int64, req store.CreateStoreRequest) (*models.Store, error)
	MyStore(ctx context.Context, ownerID int64) (*models.Store, error)
	UpdateStore(ctx context.Context, ownerID int64, req store.UpdateStoreRequest) (*models.Store, error)
	GetPublicStore(ctx context.Context, storeID int64) (*models.Store, error)
	ListStores(ctx context.Context, category string, limit int) ([]models.Store, error)
	Me(ctx context.Context, userID int64) (*models.User, error)
}

type StoreHTTPHandler struct {
	stores storeService
}

func NewStoreHTTPHandler(svc storeService) *StoreHTTPHandler {
	return &StoreHTTPHandler{stores: svc}
}

func (h *StoreHTTPHandler) Me(c *gin.Context) {
	userID := c.GetInt64(middleware.ContextUserID)
	user, err := h.stores.Me(c.Request.Context(), userID)
	if err != nil {
		status, message := statusFromError(err)
		c.JSON(status, errorResponse(message))
		return
	}

	c.JSON(http.StatusOK, successResponse("Account retrieved", user))
}

func (h *StoreHTTPHandler) SwitchToStore(c *gin.Context) {
	var req store.CreateStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	userID := c.GetInt64(middleware.ContextUserID)
	created, err := h.stores.SwitchToStore(c.Request.Context(), userID, req)
	if err != nil {
		status, message := statusFromError(err)
		c.JSON(status, errorResponse(message))
		return
	}

	c.JSON(http.StatusCreated, successResponse("Store created", created))
}

func (h *StoreHTTPHandler) MyStore(c *gin.Context) {
	userID := c.GetInt64(middleware.ContextUserID)
	myStore, err := h.stores.MyStore(c.Request.Context(), userID)
	if err != nil {
		status, message := statusFromError(err)
		c.JSON(status, errorResponse(message))
		return
	}

	c.JSON(http.StatusOK, successResponse("Store retrieved", myStore))
}

func (h *StoreHTTPHandler) UpdateStore(c *gin.Context) {
	var req store.UpdateStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	userID := c.GetInt64(middleware.ContextUserID)
	updated, err := h.stores.UpdateStore(c.Request.Context(), userID, req)
	if err != nil {
		status, message := statusFromError(err)
		c.JSON(status, errorResponse(message))
		return
	}

	c.JSON(http.StatusOK, successResponse("Store updated", updated))
}

func (h *StoreHTTPHandler) GetPublicStore(c *gin.Context) {
	storeID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid store ID"))
		return
	}

	publicStore, err := h.stores.GetPublicStore(c.Request.Context(), storeID)
	if err != nil {
		status, message := statusFromError(err)
		c.JSON(status, errorResponse(message))
		return
	}

	c.JSON(http.StatusOK, successResponse("Store retrieved", publicStore))
}

func (h *StoreHTTPHandler) ListStores(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	stores, err := h.stores.ListStores(c.Request.Context(), c.Query("category"), limit)
	if err != nil {
		status, message := statusFromError(err)
		c.JSON(status, errorResponse(message))
		return
	}

	c.JSON(http.StatusOK, successResponse("Stores retrieved", stores))
}

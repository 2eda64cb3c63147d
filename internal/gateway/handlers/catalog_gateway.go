package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"vastra-system/internal/database/models"
	"vastra-system/internal/gateway/middleware"
	catalog "vastra-system/internal/services/catalog/handler"
)

type catalogService interface {
	CreateProduct(ctx context.Context, storeID int64, req catalog.CreateProductRequest) (*models.Product, error)
	UpdateProduct(ctx context.Context, storeID, productID int64, req catalog.UpdateProductRequest) (*models.Product, error)
	DeleteProduct(ctx context.Context, storeID, productID int64) error
	GetProduct(ctx context.Context, productID int64) (*models.Product, error)
	ListStoreProducts(ctx context.Context, storeID int64) ([]models.Product, error)
	SearchProducts(ctx context.Context, query string, limit int) ([]models.Product, error)
	CreateOffer(ctx context.Context, storeID int64, req catalog.CreateOfferRequest) (*models.OfferCategory, error)
	ListActiveOffers(ctx context.Context, storeID int64) ([]models.OfferCategory, error)
	ListAdvertisements(ctx context.Context) ([]models.Advertisement, error)
}

type CatalogHTTPHandler struct {
	catalog catalogService
}

func NewCatalogHTTPHandler(svc catalogService) *CatalogHTTPHandler {
	return &CatalogHTTPHandler{catalog: svc}
}

func (h *CatalogHTTPHandler) CreateProduct(c *gin.Context) {
	var req catalog.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	storeID := c.GetInt64(middleware.ContextStoreID)
	product, err := h.catalog.CreateProduct(c.Request.Context(), storeID, req)
	if err != nil {
		status, message := statusFromError(err)
		c.JSON(status, errorResponse(message))
		return
	}

	c.JSON(http.StatusCreated, successResponse("Product created", product))
}

func (h *CatalogHTTPHandler) UpdateProduct(c *gin.Context) {
	productID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid product ID"))
		return
	}

	var req catalog.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	storeID := c.GetInt64(middleware.ContextStoreID)
	product, err := h.catalog.UpdateProduct(c.Request.Context(), storeID, productID, req)
	if err != nil {
		status, message := statusFromError(err)
		c.JSON(status, errorResponse(message))
		return
	}

	c.JSON(http.StatusOK, successResponse("Product updated", product))
}

func (h *CatalogHTTPHandler) DeleteProduct(c *gin.Context) {
	productID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid product ID"))
		return
	}

	storeID := c.GetInt64(middleware.ContextStoreID)
	if err := h.catalog.DeleteProduct(c.Request.Context(), storeID, productID); err != nil {
		status, message := statusFromError(err)
		c.JSON(status, errorResponse(message))
		return
	}

	c.JSON(http.StatusOK, successResponse("Product deleted", nil))
}

func (h *CatalogHTTPHandler) GetProduct(c *gin.Context) {
	productID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid product ID"))
		return
	}

	product, err := h.catalog.GetProduct(c.Request.Context(), productID)
	if err != nil {
		status, message := statusFromError(err)
		c.JSON(status, errorResponse(message))
		return
	}

	c.JSON(http.StatusOK, successResponse("Product retrieved", product))
}

func (h *CatalogHTTPHandler) ListMyProducts(c *gin.Context) {
	storeID := c.GetInt64(middleware.ContextStoreID)
	products, err := h.catalog.ListStoreProducts(c.Request.Context(), storeID)
	if err != nil {
		status, message := statusFromError(err)
		c.JSON(status, errorResponse(message))
		return
	}

	c.JSON(http.StatusOK, successResponse("Products retrieved", products))
}

func (h *CatalogHTTPHandler) ListStoreProducts(c *gin.Context) {
	storeID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid store ID"))
		return
	}

	products, err := h.catalog.ListStoreProducts(c.Request.Context(), storeID)
	if err != nil {
		status, message := statusFromError(err)
		c.JSON(status, errorResponse(message))
		return
	}

	c.JSON(http.StatusOK, successResponse("Products retrieved", products))
}

func (h *CatalogHTTPHandler) SearchProducts(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, errorResponse("q query parameter required"))
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	products, err := h.catalog.SearchProducts(c.Request.Context(), query, limit)
	if err != nil {
		status, message := statusFromError(err)
		c.JSON(status, errorResponse(message))
		return
	}

	c.JSON(http.StatusOK, successResponse("Products retrieved", products))
}

func (h *CatalogHTTPHandler) CreateOffer(c *gin.Context) {
	var req catalog.CreateOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	storeID := c.GetInt64(middleware.ContextStoreID)
	offer, err := h.catalog.CreateOffer(c.Request.Context(), storeID, req)
	if err != nil {
		status, message := statusFromError(err)
		c.JSON(status, errorResponse(message))
		return
	}

	c.JSON(http.StatusCreated, successResponse("Offer created", offer))
}

func (h *CatalogHTTPHandler) ListActiveOffers(c *gin.Context) {
	storeID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid store ID"))
		return
	}

	offers, err := h.catalog.ListActiveOffers(c.Request.Context(), storeID)
	if err != nil {
		status, message := statusFromError(err)
		c.JSON(status, errorResponse(message))
		return
	}

	c.JSON(http.StatusOK, successResponse("Offers retrieved", offers))
}

func (h *CatalogHTTPHandler) ListAdvertisements(c *gin.Context) {
	ads, err := h.catalog.ListAdvertisements(c.Request.Context())
	if err != nil {
		status, message := statusFromError(err)
		c.JSON(status, errorResponse(message))
		return
	}

	c.JSON(http.StatusOK, successResponse("Advertisements retrieved", ads))
}

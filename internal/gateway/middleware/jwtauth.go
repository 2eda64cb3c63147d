package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"vastra-system/internal/database/models"
	"vastra-system/internal/utils"
)

const (
	ContextUserID  = "user_id"
	ContextIsStore = "is_store"
	ContextStoreID = "store_id"
)

// JWTAuth validates the Bearer token and stashes the caller identity on the
// gin context.
func JWTAuth(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "missing or malformed authorization header",
			})
			return
		}

		claims, err := utils.ParseToken(jwtSecret, strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "invalid or expired token",
			})
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextIsStore, claims.IsStore)
		c.Next()
	}
}

// StoreOwner gates owner-only routes: the caller must own a store, and its
// id is resolved once here so handlers never trust a client-supplied store id.
func StoreOwner(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetInt64(ContextUserID)

		var store models.Store
		err := db.Where("owner_id = ?", userID).First(&store).Error
		if err != nil {
			status := http.StatusInternalServerError
			message := "internal server error"
			if errors.Is(err, gorm.ErrRecordNotFound) {
				status = http.StatusForbidden
				message = "store account required"
			}
			c.AbortWithStatusJSON(status, gin.H{
				"success": false,
				"message": message,
			})
			return
		}

		c.Set(ContextStoreID, store.ID)
		c.Next()
	}
}

package wholesaler

import (
	"context"
	"errors"
	"net/http"

	"pharmalync/dto"
	"pharmalync/middleware"
	"pharmalync/model"
	"pharmalync/storage"

	"github.com/gin-gonic/gin"
)

func WholesalerController(router *gin.Engine, store storage.Store, accessSecret []byte) {
	routes := router.Group("/api/wholesaler", middleware.AccessTokenMiddleware(accessSecret))
	{
		routes.POST("/reassign-retailer",
			middleware.RequireUserType(model.UserTypeWholesaler, model.UserTypeAdmin),
			func(c *gin.Context) {
				ReassignRetailer(c, store)
			})
	}
}

func ReassignRetailer(c *gin.Context, store storage.Store) {
	var req dto.ReassignRetailerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	ctx := context.Background()
	if _, err := store.GetAccount(ctx, model.UserTypeWholesaler, req.WholesalerID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Wholesaler not found"})
		return
	}

	if err := store.ReassignRetailer(ctx, req.RetailerID, req.WholesalerID); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Retailer not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reassign retailer"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Retailer reassigned"})
}

package auth

import (
	"context"
	"net/http"
	"time"

	"pharmalync/dto"
	"pharmalync/middleware"
	"pharmalync/model"
	"pharmalync/services"
	"pharmalync/storage"

	fbauth "firebase.google.com/go/auth"
	"github.com/gin-gonic/gin"
)

// AuthController wires the session-exchange routes. Login itself (the phone
// OTP) happens against the managed identity provider on the client; this
// controller only swaps a verified ID token for the service's own JWTs.
func AuthController(router *gin.Engine, authClient *fbauth.Client, store storage.Store, tokens *services.TokenService, refreshSecret []byte) {
	routes := router.Group("/api/auth")
	{
		routes.POST("/session", func(c *gin.Context) {
			Session(c, authClient, store, tokens)
		})
		routes.POST("/refresh", middleware.RefreshTokenMiddleware(refreshSecret), func(c *gin.Context) {
			Refresh(c, tokens)
		})
	}
}

func Session(c *gin.Context, authClient *fbauth.Client, store storage.Store, tokens *services.TokenService) {
	var req dto.SessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	userType, err := model.ParseUserType(req.UserType)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown user type"})
		return
	}

	ctx := context.Background()
	decoded, err := authClient.VerifyIDToken(ctx, req.IDToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid ID token"})
		return
	}

	acc, err := store.GetAccount(ctx, userType, decoded.UID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Account is not registered"})
		return
	}
	if !acc.Active {
		c.JSON(http.StatusForbidden, gin.H{"error": "Account is deactivated"})
		return
	}

	accessToken, err := tokens.CreateAccessToken(acc.ID, userType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create access token"})
		return
	}
	refreshToken, err := tokens.CreateRefreshToken(acc.ID, userType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create refresh token"})
		return
	}
	hashedRefreshToken, err := tokens.HashRefreshToken(refreshToken)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash refresh token"})
		return
	}

	now := time.Now()
	record := &model.TokenRecord{
		UserID:       acc.ID,
		UserType:     string(userType),
		RefreshToken: hashedRefreshToken,
		CreatedAt:    now.Unix(),
		Revoked:      false,
		ExpiresIn:    int64(tokens.RefreshTokenTTL().Seconds()),
	}
	if err := store.SaveRefreshToken(ctx, record); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store refresh token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Session created",
		"token": gin.H{
			"accessToken":  accessToken,
			"refreshToken": refreshToken,
		},
	})
}

func Refresh(c *gin.Context, tokens *services.TokenService) {
	userID := c.MustGet("userId").(string)
	userType := c.MustGet("userType").(model.UserType)

	accessToken, err := tokens.CreateAccessToken(userID, userType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create access token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"accessToken": accessToken})
}

package otp

import (
	"context"
	"errors"
	"net/http"

	"pharmalync/dto"
	"pharmalync/logger"
	"pharmalync/middleware"
	"pharmalync/model"
	"pharmalync/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func OTPController(router *gin.Engine, otps *services.OTPService, accessSecret []byte) {
	routes := router.Group("/api/otp", middleware.AccessTokenMiddleware(accessSecret))
	{
		routes.POST("/verify", func(c *gin.Context) {
			VerifyOTP(c, otps)
		})
	}
}

// VerifyOTP checks the retailer's submitted code. A correct code consumes
// the record and completes the payment atomically. "Not found" deliberately
// covers both never-issued and already-used codes.
func VerifyOTP(c *gin.Context, otps *services.OTPService) {
	var req dto.VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	ctx := context.Background()
	payment, err := otps.Verify(ctx, req.PaymentID, req.OTP)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"valid": false, "error": "OTP not found"})
		case errors.Is(err, model.ErrExpired):
			c.JSON(http.StatusBadRequest, gin.H{"valid": false, "error": "OTP has expired"})
		case errors.Is(err, model.ErrInvalid):
			c.JSON(http.StatusBadRequest, gin.H{"valid": false, "error": "Invalid OTP"})
		default:
			logger.Error("OTP verification failed",
				zap.String("paymentId", req.PaymentID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"valid": false, "error": "Failed to verify OTP"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"valid":     true,
		"message":   "Payment verified successfully",
		"paymentId": payment.PaymentID,
		"state":     payment.State,
	})
}

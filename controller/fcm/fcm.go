package fcm

import (
	"context"
	"errors"
	"net/http"

	"pharmalync/dto"
	"pharmalync/middleware"
	"pharmalync/model"
	"pharmalync/services"

	"github.com/gin-gonic/gin"
)

func FCMController(router *gin.Engine, devices *services.DeviceService, otps *services.OTPService, accessSecret []byte) {
	routes := router.Group("/api/fcm", middleware.AccessTokenMiddleware(accessSecret))
	{
		routes.POST("/register-device", func(c *gin.Context) {
			RegisterDevice(c, devices)
		})
		routes.POST("/unregister-device", func(c *gin.Context) {
			UnregisterDevice(c, devices)
		})
		routes.POST("/send-otp-direct",
			middleware.RequireUserType(model.UserTypeLineWorker, model.UserTypeWholesaler, model.UserTypeAdmin),
			func(c *gin.Context) {
				SendOTPDirect(c, otps)
			})
	}
}

func RegisterDevice(c *gin.Context, devices *services.DeviceService) {
	var req dto.RegisterDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	userType, err := model.ParseUserType(req.UserType)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown user type"})
		return
	}

	userAgent := req.UserAgent
	if userAgent == "" {
		userAgent = c.Request.UserAgent()
	}

	ctx := context.Background()
	dev, err := devices.RegisterDevice(ctx, userType, req.UserID, req.Token, userAgent)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register device"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Device registered",
		"deviceId": dev.DeviceID,
	})
}

func UnregisterDevice(c *gin.Context, devices *services.DeviceService) {
	var req dto.UnregisterDeviceRequest
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
	if err := devices.UnregisterDevice(ctx, userType, req.UserID, req.Token); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to unregister device"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Device unregistered"})
}

// SendOTPDirect re-pushes the verification code for a payment still waiting
// on one. A fresh record supersedes the outstanding code.
func SendOTPDirect(c *gin.Context, otps *services.OTPService) {
	var req dto.SendOTPDirectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	ctx := context.Background()
	rec, err := otps.Resend(ctx, req.PaymentID)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Payment not found"})
		case errors.Is(err, model.ErrInvalid):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Payment is not awaiting verification"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resend OTP"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "OTP has been sent to the retailer",
		"paymentId": rec.PaymentID,
		"expiresAt": rec.ExpiresAt,
	})
}

package payment

import (
	"context"
	"errors"
	"net/http"
	"time"

	"pharmalync/dto"
	"pharmalync/logger"
	"pharmalync/middleware"
	"pharmalync/model"
	"pharmalync/services"
	"pharmalync/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func PaymentController(router *gin.Engine, store storage.Store, otps *services.OTPService, notifier *services.NotificationService, accessSecret []byte) {
	routes := router.Group("/api/payments", middleware.AccessTokenMiddleware(accessSecret))
	{
		routes.POST("/create",
			middleware.RequireUserType(model.UserTypeLineWorker),
			func(c *gin.Context) {
				CreatePayment(c, store, otps)
			})
		routes.POST("/create-completed",
			middleware.RequireUserType(model.UserTypeLineWorker),
			func(c *gin.Context) {
				CreateCompletedPayment(c, store, notifier)
			})
		routes.POST("/:id/cancel",
			middleware.RequireUserType(model.UserTypeLineWorker),
			func(c *gin.Context) {
				CancelPayment(c, otps)
			})
		routes.GET("/:id", func(c *gin.Context) {
			GetPayment(c, store)
		})
	}
}

// CreatePayment starts an OTP-verified collection: the payment document is
// written INITIATED and a code is issued and pushed to the retailer. The
// payment is created even when the push cannot be delivered; the code can be
// re-sent later.
func CreatePayment(c *gin.Context, store storage.Store, otps *services.OTPService) {
	lineWorkerID := c.MustGet("userId").(string)

	var req dto.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	ctx := context.Background()
	lineWorkerName := req.LineWorkerName
	if lineWorkerName == "" {
		if acc, err := store.GetAccount(ctx, model.UserTypeLineWorker, lineWorkerID); err == nil {
			lineWorkerName = acc.Name
		}
	}

	p := &model.Payment{
		PaymentID:      uuid.New().String(),
		RetailerID:     req.RetailerID,
		WholesalerID:   req.WholesalerID,
		LineWorkerID:   lineWorkerID,
		LineWorkerName: lineWorkerName,
		Amount:         req.Amount,
		Method:         model.MethodOTP,
		State:          model.PaymentInitiated,
		CreatedAt:      time.Now(),
	}
	if err := store.CreatePayment(ctx, p); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create payment"})
		return
	}

	rec, err := otps.Issue(ctx, p.PaymentID, p.RetailerID, p.Amount, p.LineWorkerName)
	if err != nil {
		// The payment document exists but has no code; surface the
		// failure so the worker retries via send-otp-direct.
		logger.Error("payment created but OTP issue failed",
			zap.String("paymentId", p.PaymentID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Payment created but OTP could not be issued",
			"paymentId": p.PaymentID,
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":   "Payment initiated, OTP sent to retailer",
		"paymentId": p.PaymentID,
		"expiresAt": rec.ExpiresAt,
	})
}

// CreateCompletedPayment records a cash collection that needs no OTP: the
// document is written COMPLETED directly and both parties are notified.
func CreateCompletedPayment(c *gin.Context, store storage.Store, notifier *services.NotificationService) {
	lineWorkerID := c.MustGet("userId").(string)

	var req dto.CreateCompletedPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	ctx := context.Background()
	lineWorkerName := req.LineWorkerName
	if lineWorkerName == "" {
		if acc, err := store.GetAccount(ctx, model.UserTypeLineWorker, lineWorkerID); err == nil {
			lineWorkerName = acc.Name
		}
	}

	now := time.Now()
	p := &model.Payment{
		PaymentID:      uuid.New().String(),
		RetailerID:     req.RetailerID,
		WholesalerID:   req.WholesalerID,
		LineWorkerID:   lineWorkerID,
		LineWorkerName: lineWorkerName,
		Amount:         req.Amount,
		Method:         model.MethodCash,
		State:          model.PaymentCompleted,
		CreatedAt:      now,
		CompletedAt:    &now,
	}
	if err := store.CreatePayment(ctx, p); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create payment"})
		return
	}

	notifier.NotifyPaymentCompleted(ctx, p)

	c.JSON(http.StatusCreated, gin.H{
		"message":   "Payment recorded",
		"paymentId": p.PaymentID,
	})
}

// CancelPayment abandons an initiated collection. Only payments still
// awaiting verification can be cancelled; completed ones keep their state.
func CancelPayment(c *gin.Context, otps *services.OTPService) {
	p, err := otps.Cancel(context.Background(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, model.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Payment not found"})
		case errors.Is(err, model.ErrInvalid):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Payment is not awaiting verification"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cancel payment"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Payment cancelled",
		"paymentId": p.PaymentID,
		"state":     p.State,
	})
}

func GetPayment(c *gin.Context, store storage.Store) {
	ctx := context.Background()
	p, err := store.GetPayment(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Payment not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve payment"})
		return
	}

	c.JSON(http.StatusOK, p)
}

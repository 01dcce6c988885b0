package connection

import (
	"context"
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pharmalync/config"
	authcontroller "pharmalync/controller/auth"
	fcmcontroller "pharmalync/controller/fcm"
	otpcontroller "pharmalync/controller/otp"
	paymentcontroller "pharmalync/controller/payment"
	wholesalercontroller "pharmalync/controller/wholesaler"
	"pharmalync/logger"
	"pharmalync/middleware"
	"pharmalync/services"
	"pharmalync/storage"
)

func StartServer() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger.Init(cfg.Env, cfg.LogLevel)
	defer logger.Sync()

	ctx := context.Background()
	fb, err := FBConnection(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize Firebase clients", zap.Error(err))
	}
	logger.Info("Firebase connection successful")

	store := storage.NewFirestoreStore(fb.Firestore)

	var sms services.SMSSender
	if cfg.SMSEnabled() {
		twilioSMS, err := services.NewTwilioSMS(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFrom)
		if err != nil {
			logger.Fatal("Failed to initialize Twilio client", zap.Error(err))
		}
		sms = twilioSMS
	} else {
		logger.Warn("Twilio not configured, SMS fallback disabled")
	}

	devices := services.NewDeviceService(store, cfg.DeviceActiveWindow)
	notifier := services.NewNotificationService(devices, services.NewFCMMessenger(fb.Messaging))
	otps := services.NewOTPService(store, notifier, sms, cfg.OTPLength, cfg.OTPExpiry)
	tokens := services.NewTokenService(cfg.JWTSecret, cfg.JWTRefreshSecret)

	router := gin.Default()
	router.Use(cors.Default())
	router.Use(middleware.RateLimitMiddleware(cfg.RateLimit, cfg.RateLimitWindow))

	router.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "Api is running!"})
	})

	accessSecret := []byte(cfg.JWTSecret)
	authcontroller.AuthController(router, fb.Auth, store, tokens, []byte(cfg.JWTRefreshSecret))
	fcmcontroller.FCMController(router, devices, otps, accessSecret)
	paymentcontroller.PaymentController(router, store, otps, notifier, accessSecret)
	otpcontroller.OTPController(router, otps, accessSecret)
	wholesalercontroller.WholesalerController(router, store, accessSecret)

	if err := router.Run(":" + cfg.Port); err != nil {
		logger.Fatal("Server stopped", zap.Error(err))
	}
}

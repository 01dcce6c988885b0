package services

import (
	"context"
	"fmt"
	"time"

	"pharmalync/logger"
	"pharmalync/model"

	"go.uber.org/zap"
)

// Payload is the platform envelope: a visible notification plus a structured
// data map the app reads (type, otp, amount, paymentId).
type Payload struct {
	Title string
	Body  string
	Data  map[string]string
}

// NotificationService resolves a user's devices and pushes to them.
// Delivery is best-effort throughout: callers get counts, never an error
// that could abort the payment operation that triggered the send.
type NotificationService struct {
	devices   *DeviceService
	messenger Messenger
}

func NewNotificationService(devices *DeviceService, messenger Messenger) *NotificationService {
	return &NotificationService{devices: devices, messenger: messenger}
}

// SendToUser fans out to every active device. Tokens the push API rejects
// are deactivated in the registry before returning.
func (n *NotificationService) SendToUser(ctx context.Context, userType model.UserType, userID string, p Payload) (sent, failed int) {
	devices, err := n.devices.GetActiveDevices(ctx, userType, userID)
	if err != nil {
		logger.Warn("could not resolve devices for push",
			zap.String("userType", string(userType)), zap.String("userId", userID), zap.Error(err))
		return 0, 0
	}
	if len(devices) == 0 {
		logger.Info("no active devices, skipping push",
			zap.String("userType", string(userType)), zap.String("userId", userID))
		return 0, 0
	}

	tokens := make([]string, len(devices))
	for i, d := range devices {
		tokens[i] = d.Token
	}

	failedTokens, err := n.messenger.SendMulticast(ctx, tokens, p)
	if err != nil {
		logger.Warn("multicast send failed",
			zap.String("userId", userID), zap.Int("tokens", len(tokens)), zap.Error(err))
	}
	n.cleanupFailedTokens(ctx, userType, userID, failedTokens)
	return len(tokens) - len(failedTokens), len(failedTokens)
}

// SendToPrimary targets only the most recently active device. Used for the
// OTP push, where one copy of the code is enough.
func (n *NotificationService) SendToPrimary(ctx context.Context, userType model.UserType, userID string, p Payload) (sent, failed int) {
	devices, err := n.devices.GetActiveDevices(ctx, userType, userID)
	if err != nil {
		logger.Warn("could not resolve devices for push",
			zap.String("userType", string(userType)), zap.String("userId", userID), zap.Error(err))
		return 0, 0
	}

	dev := SelectMostRecentDevice(devices)
	if dev == nil {
		logger.Info("no active devices, skipping push",
			zap.String("userType", string(userType)), zap.String("userId", userID))
		return 0, 0
	}

	err = Retry(ctx, 3, 200*time.Millisecond, func() error {
		return n.messenger.Send(ctx, dev.Token, p)
	})
	if err != nil {
		logger.Warn("push to primary device failed",
			zap.String("userId", userID), zap.String("deviceId", dev.DeviceID), zap.Error(err))
		n.cleanupFailedTokens(ctx, userType, userID, []string{dev.Token})
		return 0, 1
	}
	return 1, 0
}

// NotifyPaymentCompleted tells the retailer and the wholesaler that a
// payment went through. Fired by both the OTP and cash completion paths.
func (n *NotificationService) NotifyPaymentCompleted(ctx context.Context, p *model.Payment) {
	data := map[string]string{
		"type":      "payment_completed",
		"paymentId": p.PaymentID,
		"amount":    fmt.Sprintf("%.2f", p.Amount),
	}

	n.SendToUser(ctx, model.UserTypeRetailer, p.RetailerID, Payload{
		Title: "Payment Completed",
		Body:  fmt.Sprintf("Your payment of %.2f collected by %s is confirmed.", p.Amount, p.LineWorkerName),
		Data:  data,
	})
	n.SendToUser(ctx, model.UserTypeWholesaler, p.WholesalerID, Payload{
		Title: "Payment Collected",
		Body:  fmt.Sprintf("%s collected %.2f from retailer %s.", p.LineWorkerName, p.Amount, p.RetailerID),
		Data:  data,
	})
}

func (n *NotificationService) cleanupFailedTokens(ctx context.Context, userType model.UserType, userID string, tokens []string) {
	for _, token := range tokens {
		if err := n.devices.UnregisterDevice(ctx, userType, userID, token); err != nil {
			logger.Warn("failed to deactivate dead token",
				zap.String("userId", userID), zap.Error(err))
			continue
		}
		logger.Info("deactivated unreachable device token",
			zap.String("userType", string(userType)), zap.String("userId", userID))
	}
}

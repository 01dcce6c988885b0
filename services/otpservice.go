package services

import (
	"context"
	"fmt"
	"time"

	"pharmalync/logger"
	"pharmalync/model"
	"pharmalync/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OTPService owns the payment-verification code lifecycle: issue a code tied
// to a payment, push it to the retailer, verify the retailer's submission.
// These codes are unrelated to the phone-auth login OTP, which the managed
// identity provider handles end to end.
type OTPService struct {
	store      storage.Store
	notifier   *NotificationService
	sms        SMSSender // nil when the fallback channel is not configured
	codeLength int
	ttl        time.Duration
}

func NewOTPService(store storage.Store, notifier *NotificationService, sms SMSSender, codeLength int, ttl time.Duration) *OTPService {
	return &OTPService{
		store:      store,
		notifier:   notifier,
		sms:        sms,
		codeLength: codeLength,
		ttl:        ttl,
	}
}

// Issue creates a fresh OTP for the payment and dispatches the plaintext
// code to the retailer's primary device, falling back to SMS when no push
// lands. Any OTP still outstanding for the payment is invalidated first, so
// the newest code is always the only valid one. Dispatch problems are
// logged, never returned: issuing must not fail because a phone was off.
func (s *OTPService) Issue(ctx context.Context, paymentID, retailerID string, amount float64, lineWorkerName string) (*model.OTPRecord, error) {
	invalidated, err := s.store.InvalidateActiveOTPs(ctx, paymentID, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to invalidate previous OTPs: %w", err)
	}
	if invalidated > 0 {
		logger.Info("superseded outstanding OTPs",
			zap.String("paymentId", paymentID), zap.Int("count", invalidated))
	}

	code, err := GenerateOTP(s.codeLength)
	if err != nil {
		return nil, fmt.Errorf("failed to generate OTP: %w", err)
	}

	now := time.Now()
	rec := &model.OTPRecord{
		ID:             uuid.New().String(),
		PaymentID:      paymentID,
		RetailerID:     retailerID,
		Code:           EncodeOTP(code),
		Amount:         amount,
		LineWorkerName: lineWorkerName,
		CreatedAt:      now,
		ExpiresAt:      now.Add(s.ttl),
		IsUsed:         false,
	}
	if err := s.store.CreateOTP(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to save OTP record: %w", err)
	}

	s.dispatchCode(ctx, rec, code)
	return rec, nil
}

// Resend re-issues the code for a payment still awaiting verification.
// Backs the send-otp-direct endpoint; a resend supersedes, it never extends
// an existing record's TTL.
func (s *OTPService) Resend(ctx context.Context, paymentID string) (*model.OTPRecord, error) {
	p, err := s.store.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if p.State != model.PaymentInitiated {
		return nil, fmt.Errorf("payment %s is not awaiting verification: %w", paymentID, model.ErrInvalid)
	}
	return s.Issue(ctx, p.PaymentID, p.RetailerID, p.Amount, p.LineWorkerName)
}

// Cancel abandons a collection still awaiting verification: outstanding
// codes are superseded and the payment moves to FAILED, so a later code
// submission or resend is rejected instead of reviving it.
func (s *OTPService) Cancel(ctx context.Context, paymentID string) (*model.Payment, error) {
	p, err := s.store.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if p.State != model.PaymentInitiated {
		return nil, fmt.Errorf("payment %s is not awaiting verification: %w", paymentID, model.ErrInvalid)
	}

	now := time.Now()
	invalidated, err := s.store.InvalidateActiveOTPs(ctx, paymentID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to invalidate outstanding OTPs: %w", err)
	}
	if err := s.store.UpdatePaymentState(ctx, paymentID, model.PaymentFailed, now); err != nil {
		return nil, err
	}

	logger.Info("payment cancelled",
		zap.String("paymentId", paymentID), zap.Int("supersededOtps", invalidated))
	return s.store.GetPayment(ctx, paymentID)
}

// Verify checks a submitted code against the active record for the payment.
// On success the record is consumed and the payment completed in a single
// atomic write, then completion notifications go out best-effort.
//
// ErrNotFound covers both "never issued" and "already used" — the active
// query cannot tell them apart because used records are filtered out, and
// keeping the answers identical avoids confirming to a guesser that a code
// once existed.
func (s *OTPService) Verify(ctx context.Context, paymentID, submitted string) (*model.Payment, error) {
	rec, err := s.store.GetActiveOTP(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	if time.Now().After(rec.ExpiresAt) {
		return nil, fmt.Errorf("OTP for payment %s: %w", paymentID, model.ErrExpired)
	}

	plain, err := DecodeOTP(rec.Code)
	if err != nil {
		return nil, err
	}
	if plain != submitted {
		return nil, fmt.Errorf("OTP mismatch for payment %s: %w", paymentID, model.ErrInvalid)
	}

	if err := s.store.CompletePaymentWithOTP(ctx, paymentID, rec.ID, time.Now()); err != nil {
		return nil, err
	}

	payment, err := s.store.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	s.notifier.NotifyPaymentCompleted(ctx, payment)
	return payment, nil
}

func (s *OTPService) dispatchCode(ctx context.Context, rec *model.OTPRecord, code string) {
	payload := Payload{
		Title: "Payment Verification Code",
		Body:  fmt.Sprintf("Enter %s to confirm the payment of %.2f collected by %s.", code, rec.Amount, rec.LineWorkerName),
		Data: map[string]string{
			"type":      "otp",
			"otp":       code,
			"amount":    fmt.Sprintf("%.2f", rec.Amount),
			"paymentId": rec.PaymentID,
		},
	}

	sent, _ := s.notifier.SendToPrimary(ctx, model.UserTypeRetailer, rec.RetailerID, payload)
	if sent > 0 || s.sms == nil {
		return
	}

	retailer, err := s.store.GetAccount(ctx, model.UserTypeRetailer, rec.RetailerID)
	if err != nil || retailer.Phone == "" {
		logger.Warn("no SMS fallback target for OTP",
			zap.String("retailerId", rec.RetailerID), zap.Error(err))
		return
	}
	if err := s.sms.Send(retailer.Phone, payload.Body); err != nil {
		logger.Warn("OTP SMS fallback failed",
			zap.String("retailerId", rec.RetailerID), zap.Error(err))
	}
}

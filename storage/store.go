package storage

import (
	"context"
	"time"

	"pharmalync/model"
)

// Store defines the persistence operations the services need. The Firestore
// implementation backs production; MemoryStore backs tests.
//
// Lookups return model.ErrNotFound (possibly wrapped) when the document does
// not exist.
type Store interface {
	// OTP operations
	CreateOTP(ctx context.Context, rec *model.OTPRecord) error
	GetActiveOTP(ctx context.Context, paymentID string) (*model.OTPRecord, error)
	// InvalidateActiveOTPs retires the payment's unused codes without
	// consuming them: they are marked superseded rather than used, so the
	// audit trail keeps reissues distinct from successful verifications.
	InvalidateActiveOTPs(ctx context.Context, paymentID string, at time.Time) (int, error)

	// Payment operations
	CreatePayment(ctx context.Context, p *model.Payment) error
	GetPayment(ctx context.Context, paymentID string) (*model.Payment, error)
	UpdatePaymentState(ctx context.Context, paymentID string, state model.PaymentState, at time.Time) error
	// CompletePaymentWithOTP flips the OTP to used and the payment to
	// COMPLETED in one atomic write, so a verified OTP can never be
	// observed alongside a still-pending payment.
	CompletePaymentWithOTP(ctx context.Context, paymentID, otpID string, at time.Time) error

	// Account and device operations
	GetAccount(ctx context.Context, userType model.UserType, userID string) (*model.Account, error)
	SetAccountDevices(ctx context.Context, userType model.UserType, userID string, devices []model.FCMDevice) error
	ReassignRetailer(ctx context.Context, retailerID, wholesalerID string) error

	// Session operations
	SaveRefreshToken(ctx context.Context, rec *model.TokenRecord) error
}

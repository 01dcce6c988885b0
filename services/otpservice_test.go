package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmalync/model"
	"pharmalync/storage"
)

type fakeSMS struct {
	sent []string // recipient numbers
}

func (f *fakeSMS) Send(to, _ string) error {
	f.sent = append(f.sent, to)
	return nil
}

type otpFixture struct {
	store     *storage.MemoryStore
	messenger *fakeMessenger
	sms       *fakeSMS
	svc       *OTPService
}

func newOTPFixture(t *testing.T, ttl time.Duration) *otpFixture {
	t.Helper()

	store := storage.NewMemoryStore()
	seedRetailer(store, "r1",
		model.FCMDevice{Token: "rtok", DeviceID: "a", LastActive: time.Now(), IsActive: true})
	store.PutAccount(model.UserTypeWholesaler, &model.Account{
		ID:     "w1",
		Active: true,
		FCMDevices: []model.FCMDevice{
			{Token: "wtok", DeviceID: "b", LastActive: time.Now(), IsActive: true},
		},
	})

	require.NoError(t, store.CreatePayment(context.Background(), &model.Payment{
		PaymentID:      "p1",
		RetailerID:     "r1",
		WholesalerID:   "w1",
		LineWorkerID:   "lw1",
		LineWorkerName: "Ravi",
		Amount:         500,
		Method:         model.MethodOTP,
		State:          model.PaymentInitiated,
		CreatedAt:      time.Now(),
	}))

	messenger := &fakeMessenger{}
	sms := &fakeSMS{}
	devices := NewDeviceService(store, 30*24*time.Hour)
	notifier := NewNotificationService(devices, messenger)
	return &otpFixture{
		store:     store,
		messenger: messenger,
		sms:       sms,
		svc:       NewOTPService(store, notifier, sms, 6, ttl),
	}
}

// plaintextFor recovers the issued code from the stored (encoded) record.
func plaintextFor(t *testing.T, store *storage.MemoryStore, paymentID string) string {
	t.Helper()
	rec, err := store.GetActiveOTP(context.Background(), paymentID)
	require.NoError(t, err)
	code, err := DecodeOTP(rec.Code)
	require.NoError(t, err)
	return code
}

func TestIssueStoresEncodedCodeAndPushesPlaintext(t *testing.T) {
	f := newOTPFixture(t, 5*time.Minute)
	ctx := context.Background()

	rec, err := f.svc.Issue(ctx, "p1", "r1", 500, "Ravi")
	require.NoError(t, err)
	assert.False(t, rec.IsUsed)
	assert.Equal(t, "p1", rec.PaymentID)
	assert.WithinDuration(t, rec.CreatedAt.Add(5*time.Minute), rec.ExpiresAt, time.Second)

	code := plaintextFor(t, f.store, "p1")
	require.Len(t, code, 6)
	assert.NotEqual(t, code, rec.Code, "stored form must be encoded")

	// The push payload carries the plaintext, not the stored form.
	require.Len(t, f.messenger.payloads, 1)
	assert.Equal(t, code, f.messenger.payloads[0].Data["otp"])
	assert.Equal(t, "otp", f.messenger.payloads[0].Data["type"])
	assert.Empty(t, f.sms.sent, "SMS fallback must not fire when push lands")
}

func TestVerifyScenario(t *testing.T) {
	f := newOTPFixture(t, 5*time.Minute)
	ctx := context.Background()

	_, err := f.svc.Issue(ctx, "p1", "r1", 500, "Ravi")
	require.NoError(t, err)
	code := plaintextFor(t, f.store, "p1")

	// Wrong code: Invalid, record stays live.
	_, err = f.svc.Verify(ctx, "p1", wrongCode(code))
	assert.ErrorIs(t, err, model.ErrInvalid)

	// Correct code: valid exactly once, payment completed atomically.
	payment, err := f.svc.Verify(ctx, "p1", code)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentCompleted, payment.State)
	require.NotNil(t, payment.CompletedAt)

	// Replay: the used record is filtered out, so NotFound.
	_, err = f.svc.Verify(ctx, "p1", code)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestVerifyNeverIssued(t *testing.T) {
	f := newOTPFixture(t, 5*time.Minute)

	_, err := f.svc.Verify(context.Background(), "p1", "123456")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestVerifyExpired(t *testing.T) {
	f := newOTPFixture(t, 5*time.Minute)
	ctx := context.Background()

	// Seed a record issued "6 minutes ago" with a 5 minute TTL.
	created := time.Now().Add(-6 * time.Minute)
	require.NoError(t, f.store.CreateOTP(ctx, &model.OTPRecord{
		ID:         "otp-old",
		PaymentID:  "p1",
		RetailerID: "r1",
		Code:       EncodeOTP("123456"),
		Amount:     500,
		CreatedAt:  created,
		ExpiresAt:  created.Add(5 * time.Minute),
	}))

	_, err := f.svc.Verify(ctx, "p1", "123456")
	assert.ErrorIs(t, err, model.ErrExpired)

	// Expiry wins regardless of code correctness.
	_, err = f.svc.Verify(ctx, "p1", "000000")
	assert.ErrorIs(t, err, model.ErrExpired)
}

func TestIssueSupersedesOutstandingOTP(t *testing.T) {
	f := newOTPFixture(t, 5*time.Minute)
	ctx := context.Background()

	_, err := f.svc.Issue(ctx, "p1", "r1", 500, "Ravi")
	require.NoError(t, err)
	oldCode := plaintextFor(t, f.store, "p1")

	_, err = f.svc.Issue(ctx, "p1", "r1", 500, "Ravi")
	require.NoError(t, err)
	newCode := plaintextFor(t, f.store, "p1")

	if oldCode != newCode {
		_, err = f.svc.Verify(ctx, "p1", oldCode)
		assert.ErrorIs(t, err, model.ErrInvalid, "superseded code must not verify")
	}
	_, err = f.svc.Verify(ctx, "p1", newCode)
	assert.NoError(t, err)
}

func TestResend(t *testing.T) {
	f := newOTPFixture(t, 5*time.Minute)
	ctx := context.Background()

	rec, err := f.svc.Resend(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "p1", rec.PaymentID)
	assert.Equal(t, "r1", rec.RetailerID)

	// A completed payment cannot be re-issued a code.
	code := plaintextFor(t, f.store, "p1")
	_, err = f.svc.Verify(ctx, "p1", code)
	require.NoError(t, err)
	_, err = f.svc.Resend(ctx, "p1")
	assert.ErrorIs(t, err, model.ErrInvalid)

	_, err = f.svc.Resend(ctx, "missing")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestIssueFallsBackToSMS(t *testing.T) {
	f := newOTPFixture(t, 5*time.Minute)
	// Every push attempt fails; Issue itself must still succeed.
	f.messenger.failTokens = map[string]bool{"rtok": true}
	ctx := context.Background()

	rec, err := f.svc.Issue(ctx, "p1", "r1", 500, "Ravi")
	require.NoError(t, err)
	require.NotNil(t, rec)

	require.Len(t, f.sms.sent, 1)
	assert.Equal(t, "+911234567890", f.sms.sent[0])
}

func TestVerifyFiresCompletionNotifications(t *testing.T) {
	f := newOTPFixture(t, 5*time.Minute)
	ctx := context.Background()

	_, err := f.svc.Issue(ctx, "p1", "r1", 500, "Ravi")
	require.NoError(t, err)
	code := plaintextFor(t, f.store, "p1")

	_, err = f.svc.Verify(ctx, "p1", code)
	require.NoError(t, err)

	// One OTP push at issue + completion multicasts to retailer and
	// wholesaler at verify.
	assert.Len(t, f.messenger.singles, 1)
	require.Len(t, f.messenger.multi, 2)
	assert.Equal(t, []string{"rtok"}, f.messenger.multi[0])
	assert.Equal(t, []string{"wtok"}, f.messenger.multi[1])
}

func TestCancelFailsPaymentAndRetiresCode(t *testing.T) {
	f := newOTPFixture(t, 5*time.Minute)
	ctx := context.Background()

	_, err := f.svc.Issue(ctx, "p1", "r1", 500, "Ravi")
	require.NoError(t, err)

	p, err := f.svc.Cancel(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, model.PaymentFailed, p.State)
	assert.Nil(t, p.CompletedAt)

	// The outstanding code is retired; a late submission cannot revive it.
	_, err = f.svc.Verify(ctx, "p1", "000000")
	assert.ErrorIs(t, err, model.ErrNotFound)

	// Neither resend nor a second cancel applies to a FAILED payment.
	_, err = f.svc.Resend(ctx, "p1")
	assert.ErrorIs(t, err, model.ErrInvalid)
	_, err = f.svc.Cancel(ctx, "p1")
	assert.ErrorIs(t, err, model.ErrInvalid)
}

func TestCancelUnknownPayment(t *testing.T) {
	f := newOTPFixture(t, 5*time.Minute)

	_, err := f.svc.Cancel(context.Background(), "missing")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

// wrongCode flips the first digit so the result is the same length but never
// equal to the input.
func wrongCode(code string) string {
	b := []byte(code)
	if b[0] == '9' {
		b[0] = '0'
	} else {
		b[0]++
	}
	return string(b)
}

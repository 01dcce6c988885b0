package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmalync/model"
)

func TestGetActiveOTPReturnsNewest(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, store.CreateOTP(ctx, &model.OTPRecord{
		ID: "old", PaymentID: "p1", CreatedAt: now.Add(-time.Minute),
	}))
	require.NoError(t, store.CreateOTP(ctx, &model.OTPRecord{
		ID: "new", PaymentID: "p1", CreatedAt: now,
	}))
	require.NoError(t, store.CreateOTP(ctx, &model.OTPRecord{
		ID: "other", PaymentID: "p2", CreatedAt: now,
	}))

	rec, err := store.GetActiveOTP(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "new", rec.ID)

	_, err = store.GetActiveOTP(ctx, "p3")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestInvalidateActiveOTPs(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, store.CreateOTP(ctx, &model.OTPRecord{ID: "a", PaymentID: "p1", CreatedAt: now}))
	require.NoError(t, store.CreateOTP(ctx, &model.OTPRecord{ID: "b", PaymentID: "p1", CreatedAt: now}))

	count, err := store.InvalidateActiveOTPs(ctx, "p1", now)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	_, err = store.GetActiveOTP(ctx, "p1")
	assert.ErrorIs(t, err, model.ErrNotFound)

	// Retired records read as superseded, not consumed.
	for _, id := range []string{"a", "b"} {
		rec := store.otps[id]
		assert.True(t, rec.Superseded, id)
		require.NotNil(t, rec.SupersededAt, id)
		assert.Nil(t, rec.UsedAt, id)
	}

	count, err = store.InvalidateActiveOTPs(ctx, "p1", now)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestCompletePaymentWithOTP(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, store.CreatePayment(ctx, &model.Payment{
		PaymentID: "p1", State: model.PaymentInitiated, CreatedAt: now,
	}))
	require.NoError(t, store.CreateOTP(ctx, &model.OTPRecord{ID: "otp1", PaymentID: "p1", CreatedAt: now}))

	require.NoError(t, store.CompletePaymentWithOTP(ctx, "p1", "otp1", now))

	p, err := store.GetPayment(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, model.PaymentCompleted, p.State)
	require.NotNil(t, p.CompletedAt)

	// A consumed record carries usedAt and is not superseded.
	rec := store.otps["otp1"]
	require.NotNil(t, rec.UsedAt)
	assert.False(t, rec.Superseded)

	// Consuming the same record twice must fail.
	err = store.CompletePaymentWithOTP(ctx, "p1", "otp1", now)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestReassignRetailer(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	store.PutAccount(model.UserTypeRetailer, &model.Account{ID: "r1", WholesalerID: "w1"})

	require.NoError(t, store.ReassignRetailer(ctx, "r1", "w2"))
	acc, err := store.GetAccount(ctx, model.UserTypeRetailer, "r1")
	require.NoError(t, err)
	assert.Equal(t, "w2", acc.WholesalerID)

	assert.ErrorIs(t, store.ReassignRetailer(ctx, "missing", "w2"), model.ErrNotFound)
}

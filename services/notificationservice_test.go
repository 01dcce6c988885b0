package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmalync/model"
	"pharmalync/storage"
)

type fakeMessenger struct {
	failTokens map[string]bool
	singles    []string   // tokens hit via Send
	multi      [][]string // token sets hit via SendMulticast
	payloads   []Payload
}

func (f *fakeMessenger) Send(_ context.Context, token string, p Payload) error {
	f.singles = append(f.singles, token)
	f.payloads = append(f.payloads, p)
	if f.failTokens[token] {
		return fmt.Errorf("unregistered token")
	}
	return nil
}

func (f *fakeMessenger) SendMulticast(_ context.Context, tokens []string, p Payload) ([]string, error) {
	f.multi = append(f.multi, tokens)
	f.payloads = append(f.payloads, p)
	var failed []string
	for _, tok := range tokens {
		if f.failTokens[tok] {
			failed = append(failed, tok)
		}
	}
	return failed, nil
}

func seedRetailer(store *storage.MemoryStore, id string, devices ...model.FCMDevice) {
	store.PutAccount(model.UserTypeRetailer, &model.Account{
		ID:         id,
		Phone:      "+911234567890",
		Active:     true,
		FCMDevices: devices,
	})
}

func TestSendToUserDeactivatesFailedTokens(t *testing.T) {
	store := storage.NewMemoryStore()
	now := time.Now()
	seedRetailer(store, "r1",
		model.FCMDevice{Token: "good", DeviceID: "a", LastActive: now, IsActive: true},
		model.FCMDevice{Token: "dead", DeviceID: "b", LastActive: now, IsActive: true},
	)

	devices := NewDeviceService(store, 30*24*time.Hour)
	messenger := &fakeMessenger{failTokens: map[string]bool{"dead": true}}
	notifier := NewNotificationService(devices, messenger)

	sent, failed := notifier.SendToUser(context.Background(), model.UserTypeRetailer, "r1", Payload{Title: "t", Body: "b"})
	assert.Equal(t, 1, sent)
	assert.Equal(t, 1, failed)

	// The rejected token must actually be deactivated, not just logged.
	active, err := devices.GetActiveDevices(context.Background(), model.UserTypeRetailer, "r1")
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "good", active[0].Token)
}

func TestSendToUserNoDevices(t *testing.T) {
	store := storage.NewMemoryStore()
	seedRetailer(store, "r1")

	devices := NewDeviceService(store, 30*24*time.Hour)
	messenger := &fakeMessenger{}
	notifier := NewNotificationService(devices, messenger)

	sent, failed := notifier.SendToUser(context.Background(), model.UserTypeRetailer, "r1", Payload{})
	assert.Zero(t, sent)
	assert.Zero(t, failed)
	assert.Empty(t, messenger.multi)
}

func TestSendToPrimaryPicksMostRecent(t *testing.T) {
	store := storage.NewMemoryStore()
	now := time.Now()
	seedRetailer(store, "r1",
		model.FCMDevice{Token: "older", DeviceID: "a", LastActive: now.Add(-time.Hour), IsActive: true},
		model.FCMDevice{Token: "newest", DeviceID: "b", LastActive: now, IsActive: true},
	)

	devices := NewDeviceService(store, 30*24*time.Hour)
	messenger := &fakeMessenger{}
	notifier := NewNotificationService(devices, messenger)

	sent, failed := notifier.SendToPrimary(context.Background(), model.UserTypeRetailer, "r1", Payload{})
	assert.Equal(t, 1, sent)
	assert.Zero(t, failed)
	require.Len(t, messenger.singles, 1)
	assert.Equal(t, "newest", messenger.singles[0])
}

func TestNotifyPaymentCompletedReachesBothParties(t *testing.T) {
	store := storage.NewMemoryStore()
	now := time.Now()
	seedRetailer(store, "r1",
		model.FCMDevice{Token: "rtok", DeviceID: "a", LastActive: now, IsActive: true})
	store.PutAccount(model.UserTypeWholesaler, &model.Account{
		ID:     "w1",
		Active: true,
		FCMDevices: []model.FCMDevice{
			{Token: "wtok", DeviceID: "b", LastActive: now, IsActive: true},
		},
	})

	devices := NewDeviceService(store, 30*24*time.Hour)
	messenger := &fakeMessenger{}
	notifier := NewNotificationService(devices, messenger)

	notifier.NotifyPaymentCompleted(context.Background(), &model.Payment{
		PaymentID:      "p1",
		RetailerID:     "r1",
		WholesalerID:   "w1",
		LineWorkerName: "Ravi",
		Amount:         1250.50,
	})

	require.Len(t, messenger.multi, 2)
	assert.Equal(t, []string{"rtok"}, messenger.multi[0])
	assert.Equal(t, []string{"wtok"}, messenger.multi[1])
	for _, p := range messenger.payloads {
		assert.Equal(t, "payment_completed", p.Data["type"])
		assert.Equal(t, "p1", p.Data["paymentId"])
	}
}

package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"pharmalync/model"
)

// MemoryStore keeps everything in maps behind a mutex. It exists for tests
// and local development without Firestore credentials.
type MemoryStore struct {
	mu       sync.RWMutex
	otps     map[string]*model.OTPRecord // by record ID
	payments map[string]*model.Payment
	accounts map[string]*model.Account // by collection/userID
	tokens   map[string]*model.TokenRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		otps:     make(map[string]*model.OTPRecord),
		payments: make(map[string]*model.Payment),
		accounts: make(map[string]*model.Account),
		tokens:   make(map[string]*model.TokenRecord),
	}
}

func accountKey(userType model.UserType, userID string) string {
	return userType.CollectionName() + "/" + userID
}

func (m *MemoryStore) CreateOTP(_ context.Context, rec *model.OTPRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *rec
	m.otps[rec.ID] = &cp
	return nil
}

func (m *MemoryStore) GetActiveOTP(_ context.Context, paymentID string) (*model.OTPRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var newest *model.OTPRecord
	for _, rec := range m.otps {
		if rec.PaymentID != paymentID || rec.IsUsed {
			continue
		}
		if newest == nil || rec.CreatedAt.After(newest.CreatedAt) {
			newest = rec
		}
	}
	if newest == nil {
		return nil, fmt.Errorf("no active OTP for payment %s: %w", paymentID, model.ErrNotFound)
	}
	cp := *newest
	return &cp, nil
}

func (m *MemoryStore) InvalidateActiveOTPs(_ context.Context, paymentID string, at time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0
	for _, rec := range m.otps {
		if rec.PaymentID == paymentID && !rec.IsUsed {
			rec.IsUsed = true
			rec.Superseded = true
			supersededAt := at
			rec.SupersededAt = &supersededAt
			count++
		}
	}
	return count, nil
}

func (m *MemoryStore) CreatePayment(_ context.Context, p *model.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *p
	m.payments[p.PaymentID] = &cp
	return nil
}

func (m *MemoryStore) GetPayment(_ context.Context, paymentID string) (*model.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.payments[paymentID]
	if !ok {
		return nil, fmt.Errorf("payment %s: %w", paymentID, model.ErrNotFound)
	}
	cp := *p
	return &cp, nil
}

func (m *MemoryStore) UpdatePaymentState(_ context.Context, paymentID string, state model.PaymentState, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.payments[paymentID]
	if !ok {
		return fmt.Errorf("payment %s: %w", paymentID, model.ErrNotFound)
	}
	p.State = state
	if state == model.PaymentCompleted {
		completedAt := at
		p.CompletedAt = &completedAt
	}
	return nil
}

func (m *MemoryStore) CompletePaymentWithOTP(_ context.Context, paymentID, otpID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.otps[otpID]
	if !ok || rec.IsUsed {
		return fmt.Errorf("otp %s: %w", otpID, model.ErrNotFound)
	}
	p, ok := m.payments[paymentID]
	if !ok {
		return fmt.Errorf("payment %s: %w", paymentID, model.ErrNotFound)
	}

	usedAt := at
	rec.IsUsed = true
	rec.UsedAt = &usedAt
	completedAt := at
	p.State = model.PaymentCompleted
	p.CompletedAt = &completedAt
	return nil
}

func (m *MemoryStore) GetAccount(_ context.Context, userType model.UserType, userID string) (*model.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	acc, ok := m.accounts[accountKey(userType, userID)]
	if !ok {
		return nil, fmt.Errorf("%s %s: %w", userType, userID, model.ErrNotFound)
	}
	cp := *acc
	cp.FCMDevices = append([]model.FCMDevice(nil), acc.FCMDevices...)
	return &cp, nil
}

func (m *MemoryStore) SetAccountDevices(_ context.Context, userType model.UserType, userID string, devices []model.FCMDevice) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := accountKey(userType, userID)
	acc, ok := m.accounts[key]
	if !ok {
		acc = &model.Account{ID: userID}
		m.accounts[key] = acc
	}
	acc.FCMDevices = append([]model.FCMDevice(nil), devices...)
	return nil
}

// PutAccount seeds an account. Test helper; production accounts are created
// through onboarding flows outside this service.
func (m *MemoryStore) PutAccount(userType model.UserType, acc *model.Account) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *acc
	cp.FCMDevices = append([]model.FCMDevice(nil), acc.FCMDevices...)
	m.accounts[accountKey(userType, acc.ID)] = &cp
}

func (m *MemoryStore) ReassignRetailer(_ context.Context, retailerID, wholesalerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	acc, ok := m.accounts[accountKey(model.UserTypeRetailer, retailerID)]
	if !ok {
		return fmt.Errorf("retailer %s: %w", retailerID, model.ErrNotFound)
	}
	acc.WholesalerID = wholesalerID
	return nil
}

func (m *MemoryStore) SaveRefreshToken(_ context.Context, rec *model.TokenRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *rec
	m.tokens[rec.UserID] = &cp
	return nil
}

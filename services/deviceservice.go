package services

import (
	"context"
	"strconv"
	"time"

	"pharmalync/model"
	"pharmalync/storage"
)

// DeviceService is the FCM device registry: the per-account list of push
// tokens with activity timestamps. Entries are upserted by DeviceID and
// deactivated rather than deleted.
type DeviceService struct {
	store        storage.Store
	activeWindow time.Duration
}

func NewDeviceService(store storage.Store, activeWindow time.Duration) *DeviceService {
	return &DeviceService{store: store, activeWindow: activeWindow}
}

// DeviceID derives a stable key for a (token, userAgent) pair using a
// rolling multiplicative hash. Not cryptographic; a collision at worst
// merges two device entries.
func DeviceID(token, userAgent string) string {
	var h int32
	for _, c := range token + ":" + userAgent {
		h = h*31 + c
	}
	return strconv.FormatUint(uint64(uint32(h)), 16)
}

// RegisterDevice upserts a device into the account's fcmDevices array.
// Re-registering the same (token, userAgent) pair refreshes the existing
// entry instead of appending a duplicate.
func (s *DeviceService) RegisterDevice(ctx context.Context, userType model.UserType, userID, token, userAgent string) (*model.FCMDevice, error) {
	acc, err := s.store.GetAccount(ctx, userType, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	deviceID := DeviceID(token, userAgent)
	devices := acc.FCMDevices

	var dev *model.FCMDevice
	for i := range devices {
		if devices[i].DeviceID == deviceID {
			devices[i].Token = token
			devices[i].LastActive = now
			devices[i].IsActive = true
			dev = &devices[i]
			break
		}
	}
	if dev == nil {
		devices = append(devices, model.FCMDevice{
			Token:      token,
			DeviceID:   deviceID,
			UserAgent:  userAgent,
			CreatedAt:  now,
			LastActive: now,
			IsActive:   true,
		})
		dev = &devices[len(devices)-1]
	}

	if err := s.store.SetAccountDevices(ctx, userType, userID, devices); err != nil {
		return nil, err
	}
	cp := *dev
	return &cp, nil
}

// UnregisterDevice marks every entry carrying the token inactive. The entry
// stays in the array for audit.
func (s *DeviceService) UnregisterDevice(ctx context.Context, userType model.UserType, userID, token string) error {
	acc, err := s.store.GetAccount(ctx, userType, userID)
	if err != nil {
		return err
	}

	now := time.Now()
	changed := false
	devices := acc.FCMDevices
	for i := range devices {
		if devices[i].Token == token && devices[i].IsActive {
			devices[i].IsActive = false
			devices[i].LastActive = now
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return s.store.SetAccountDevices(ctx, userType, userID, devices)
}

// GetActiveDevices returns entries that are active and have been seen within
// the configured window. The recency cut-off is applied here, once, for all
// callers.
func (s *DeviceService) GetActiveDevices(ctx context.Context, userType model.UserType, userID string) ([]model.FCMDevice, error) {
	acc, err := s.store.GetAccount(ctx, userType, userID)
	if err != nil {
		return nil, err
	}

	cutoff := time.Now().Add(-s.activeWindow)
	var active []model.FCMDevice
	for _, d := range acc.FCMDevices {
		if d.IsActive && d.LastActive.After(cutoff) {
			active = append(active, d)
		}
	}
	return active, nil
}

// SelectMostRecentDevice picks the entry with the newest LastActive, or nil
// for an empty list. Targeted sends (the OTP push) go to one device;
// broadcasts fan out to all.
func SelectMostRecentDevice(devices []model.FCMDevice) *model.FCMDevice {
	var best *model.FCMDevice
	for i := range devices {
		if best == nil || devices[i].LastActive.After(best.LastActive) {
			best = &devices[i]
		}
	}
	if best == nil {
		return nil
	}
	cp := *best
	return &cp
}

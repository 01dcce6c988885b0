package model

import "time"

// FCMDevice is one registered push target inside an account's fcmDevices
// array. DeviceID is derived from token+userAgent and is the upsert key;
// entries are deactivated rather than removed so delivery problems stay
// diagnosable.
type FCMDevice struct {
	Token      string    `firestore:"token"`
	DeviceID   string    `firestore:"deviceId"`
	UserAgent  string    `firestore:"userAgent"`
	CreatedAt  time.Time `firestore:"createdAt"`
	LastActive time.Time `firestore:"lastActive"`
	IsActive   bool      `firestore:"isActive"`
}

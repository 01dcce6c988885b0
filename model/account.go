package model

import "time"

// Account is the document shape shared by all four user collections.
// Retailer-only fields stay empty on the other kinds.
type Account struct {
	ID           string      `firestore:"id,omitempty"`
	Name         string      `firestore:"name,omitempty"`
	Phone        string      `firestore:"phone,omitempty"`
	Email        string      `firestore:"email,omitempty"`
	WholesalerID string      `firestore:"wholesalerId,omitempty"` // retailers only
	Active       bool        `firestore:"active"`
	FCMDevices   []FCMDevice `firestore:"fcmDevices"`
	CreatedAt    time.Time   `firestore:"createdAt,omitempty"`
}

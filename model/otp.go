package model

import "time"

// OTPRecord is one payment-verification code in the secure_otps collection.
// Code holds the encoded form (see services.EncodeOTP), never the plaintext.
// Records are kept after use or expiry for audit; queries filter on IsUsed
// and ExpiresAt instead of deleting.
//
// UsedAt is set only when the code was consumed by a successful
// verification. A record retired by a reissue or a cancelled payment gets
// Superseded instead and keeps UsedAt nil.
//
// At most one unused, unexpired record exists per PaymentID.
type OTPRecord struct {
	ID             string     `firestore:"id,omitempty"`
	PaymentID      string     `firestore:"paymentId"`
	RetailerID     string     `firestore:"retailerId"`
	Code           string     `firestore:"code"`
	Amount         float64    `firestore:"amount"`
	LineWorkerName string     `firestore:"lineWorkerName"`
	CreatedAt      time.Time  `firestore:"createdAt"`
	ExpiresAt      time.Time  `firestore:"expiresAt"`
	IsUsed         bool       `firestore:"isUsed"`
	UsedAt         *time.Time `firestore:"usedAt,omitempty"`
	Superseded     bool       `firestore:"superseded,omitempty"`
	SupersededAt   *time.Time `firestore:"supersededAt,omitempty"`
}

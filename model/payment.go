package model

import "time"

type PaymentState string

const (
	PaymentInitiated PaymentState = "INITIATED"
	PaymentCompleted PaymentState = "COMPLETED"
	PaymentFailed    PaymentState = "FAILED"
)

type PaymentMethod string

const (
	MethodCash PaymentMethod = "CASH"
	MethodOTP  PaymentMethod = "OTP"
)

// Payment is a collection event recorded by a line worker against a
// retailer. OTP verification is one path from INITIATED to COMPLETED; the
// cash path creates the document COMPLETED directly.
type Payment struct {
	PaymentID      string        `firestore:"paymentId,omitempty" json:"paymentId"`
	RetailerID     string        `firestore:"retailerId" json:"retailerId"`
	WholesalerID   string        `firestore:"wholesalerId" json:"wholesalerId"`
	LineWorkerID   string        `firestore:"lineWorkerId" json:"lineWorkerId"`
	LineWorkerName string        `firestore:"lineWorkerName" json:"lineWorkerName"`
	Amount         float64       `firestore:"amount" json:"amount"`
	Method         PaymentMethod `firestore:"method" json:"method"`
	State          PaymentState  `firestore:"state" json:"state"`
	CreatedAt      time.Time     `firestore:"createdAt" json:"createdAt"`
	CompletedAt    *time.Time    `firestore:"completedAt,omitempty" json:"completedAt,omitempty"`
}

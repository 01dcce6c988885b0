package dto

type CreatePaymentRequest struct {
	RetailerID     string  `json:"retailerId" binding:"required"`
	WholesalerID   string  `json:"wholesalerId" binding:"required"`
	LineWorkerName string  `json:"lineWorkerName"`
	Amount         float64 `json:"amount" binding:"required,gt=0"`
}

type CreateCompletedPaymentRequest struct {
	RetailerID     string  `json:"retailerId" binding:"required"`
	WholesalerID   string  `json:"wholesalerId" binding:"required"`
	LineWorkerName string  `json:"lineWorkerName"`
	Amount         float64 `json:"amount" binding:"required,gt=0"`
}

type VerifyOTPRequest struct {
	PaymentID string `json:"paymentId" binding:"required"`
	OTP       string `json:"otp" binding:"required"`
}

type ReassignRetailerRequest struct {
	RetailerID   string `json:"retailerId" binding:"required"`
	WholesalerID string `json:"wholesalerId" binding:"required"`
}

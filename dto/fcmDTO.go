package dto

type RegisterDeviceRequest struct {
	UserID    string `json:"userId" binding:"required"`
	UserType  string `json:"userType" binding:"required"`
	Token     string `json:"token" binding:"required"`
	UserAgent string `json:"userAgent"`
}

type UnregisterDeviceRequest struct {
	UserID   string `json:"userId" binding:"required"`
	UserType string `json:"userType" binding:"required"`
	Token    string `json:"token" binding:"required"`
}

type SendOTPDirectRequest struct {
	PaymentID string `json:"paymentId" binding:"required"`
}

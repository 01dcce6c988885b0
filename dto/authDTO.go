package dto

type SessionRequest struct {
	IDToken  string `json:"idToken" binding:"required"`
	UserType string `json:"userType" binding:"required"`
}

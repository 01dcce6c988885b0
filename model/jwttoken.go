package model

import "github.com/golang-jwt/jwt/v5"

// TokenRecord is the bcrypt-hashed refresh token stored per user in the
// refreshTokens collection.
type TokenRecord struct {
	UserID       string `firestore:"userId" json:"userId"`
	UserType     string `firestore:"userType" json:"userType"`
	RefreshToken string `firestore:"refreshToken" json:"refreshToken"`
	CreatedAt    int64  `firestore:"createdAt" json:"createdAt"`
	Revoked      bool   `firestore:"revoked" json:"revoked"`
	ExpiresIn    int64  `firestore:"expiresIn" json:"expiresIn"`
}

type AccessClaims struct {
	UserID   string `json:"userId"`
	UserType string `json:"userType"`
	jwt.RegisteredClaims
}

type RefreshClaims struct {
	UserID   string `json:"userId"`
	UserType string `json:"userType"`
	jwt.RegisteredClaims
}

package services

import (
	"crypto/sha256"
	"time"

	"pharmalync/model"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	accessTokenTTL  = 60 * time.Minute
	refreshTokenTTL = 7 * 24 * time.Hour
)

// TokenService signs the service's own JWTs, issued after the managed
// phone-auth login has been verified. Secrets come from config at boot.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
}

func NewTokenService(accessSecret, refreshSecret string) *TokenService {
	return &TokenService{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
	}
}

func (t *TokenService) CreateAccessToken(userID string, userType model.UserType) (string, error) {
	claims := &model.AccessClaims{
		UserID:   userID,
		UserType: string(userType),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "pharmalync",
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(accessTokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.accessSecret)
}

func (t *TokenService) CreateRefreshToken(userID string, userType model.UserType) (string, error) {
	claims := &model.RefreshClaims{
		UserID:   userID,
		UserType: string(userType),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "pharmalync",
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(refreshTokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.refreshSecret)
}

// HashRefreshToken stores refresh tokens bcrypt-hashed. SHA-256 first, since
// bcrypt caps input at 72 bytes and a JWT is far longer.
func (t *TokenService) HashRefreshToken(token string) (string, error) {
	hash := sha256.Sum256([]byte(token))
	hashed, err := bcrypt.GenerateFromPassword(hash[:], bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func (t *TokenService) RefreshTokenTTL() time.Duration {
	return refreshTokenTTL
}

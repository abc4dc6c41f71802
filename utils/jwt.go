package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTSecret is set from config at startup. Tokens are minted by the
// identity service; this side only verifies them.
var JWTSecret = []byte("dev-secret-change-me")

func SetJWTSecret(secret string) {
	if secret != "" {
		JWTSecret = []byte(secret)
	}
}

type CustomClaims struct {
	UserID       string `json:"user_id"`
	Role         string `json:"role"`
	RestaurantID string `json:"restaurant_id"`
	jwt.RegisteredClaims
}

// GenerateToken signs claims the same way the identity service does.
// Used by tests and the local dev tooling.
func GenerateToken(userID, role, restaurantID string, ttl time.Duration) (string, error) {
	claims := &CustomClaims{
		UserID:       userID,
		Role:         role,
		RestaurantID: restaurantID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "RestaurantWebApp",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(JWTSecret)
}

func ParseToken(tokenString string) (*CustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &CustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		return JWTSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil || !token.Valid {
		return nil, errors.New("invalid or expired token")
	}

	claims, ok := token.Claims.(*CustomClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}
	if claims.RestaurantID == "" {
		return nil, errors.New("token has no restaurant")
	}

	return claims, nil
}

package jwtutil

import (
	"errors"
	"fmt"
	"time"

	"github.com/Mahanoorfarooq/Madrassa-Management-System-sub002/pkg/config"
	"github.com/golang-jwt/jwt/v4"
)

// UserClaims represents the JWT claims for user authentication.
//
// Role and JamiaID are informational only. The auth middleware rebuilds the
// principal from the user record on every request, so a tampered or stale
// claim cannot widen access.
type UserClaims struct {
	Email    string `json:"email"`
	UserID   uint   `json:"user_id"`
	Role     string `json:"role,omitempty"`
	JamiaID  *uint  `json:"jamia_id,omitempty"`
	JamiaKey string `json:"jamia_key,omitempty"` // jamia slug for convenience
	jwt.RegisteredClaims
}

// JWTUtil is a utility for JWT token operations
type JWTUtil struct {
	config *config.JWTConfig
}

// NewJWTUtil creates a new JWT utility with the given configuration
func NewJWTUtil(config *config.JWTConfig) *JWTUtil {
	return &JWTUtil{
		config: config,
	}
}

// GenerateToken creates a JWT token with user and jamia information
func (j *JWTUtil) GenerateToken(email string, userID uint, role string, jamiaID *uint, jamiaKey string) (string, error) {
	if j.config == nil {
		return "", errors.New("JWT configuration not provided")
	}

	claims := UserClaims{
		Email:    email,
		UserID:   userID,
		Role:     role,
		JamiaID:  jamiaID,
		JamiaKey: jamiaKey,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Duration(j.config.ExpirationHours) * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(j.config.SigningKey))
}

// ValidateToken validates and parses the JWT token
func (j *JWTUtil) ValidateToken(tokenString string) (*UserClaims, error) {
	if j.config == nil {
		return nil, errors.New("JWT configuration not provided")
	}

	token, err := jwt.ParseWithClaims(
		tokenString,
		&UserClaims{},
		func(token *jwt.Token) (interface{}, error) {
			// Validate the signing method
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(j.config.SigningKey), nil
		},
	)

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*UserClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}

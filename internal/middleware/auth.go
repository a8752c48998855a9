package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"bizdir/internal/config"
	apperrors "bizdir/internal/errors"
	"bizdir/internal/models"
)

const (
	refreshTokenExpiry = 7 * 24 * time.Hour
	tokenIssuer        = "bizdir-api"
)

// Context keys set by the auth middlewares.
const (
	ContextUserID = "userID"
	ContextEmail  = "email"
	ContextRole   = "role"
)

// getJWTKey returns the JWT key from configuration
func getJWTKey() []byte {
	return []byte(config.Get().JWTSecret)
}

// JWTClaims represents the claims in the JWT
type JWTClaims struct {
	UserID    string          `json:"user_id"`
	Email     string          `json:"email"`
	Role      models.UserRole `json:"role"`
	TokenType string          `json:"token_type"`
	jwt.RegisteredClaims
}

func newClaims(user *models.User, tokenType string, ttl time.Duration) *JWTClaims {
	now := time.Now()
	return &JWTClaims{
		UserID:    user.ID,
		Email:     user.Email,
		Role:      user.Role,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
			Subject:   user.ID,
		},
	}
}

// GenerateAccessToken generates a short-lived JWT access token for a user.
// The role claim is a snapshot; privileged operations re-check the stored role.
func GenerateAccessToken(user *models.User) (string, error) {
	claims := newClaims(user, "access", config.Get().JWTExpirationDur)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(getJWTKey())
}

// GenerateRefreshToken generates a long-lived JWT refresh token for a user.
func GenerateRefreshToken(user *models.User) (string, error) {
	claims := newClaims(user, "refresh", refreshTokenExpiry)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(getJWTKey())
}

func parseToken(tokenString string) (*JWTClaims, error) {
	claims := &JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return getJWTKey(), nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

// ValidateRefreshToken parses and validates a refresh token JWT.
// Returns the claims if valid, or an error if the token is invalid,
// expired, or not a refresh token.
func ValidateRefreshToken(tokenString string) (*JWTClaims, error) {
	claims, err := parseToken(tokenString)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token")
	}
	if claims.TokenType != "refresh" {
		return nil, fmt.Errorf("token is not a refresh token")
	}
	return claims, nil
}

// HashToken returns the SHA-256 hex digest of a token string.
func HashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

func abortWithError(c *gin.Context, err *apperrors.AppError) {
	c.AbortWithStatusJSON(err.StatusCode, gin.H{
		"error": gin.H{
			"code":    err.Code,
			"message": err.Message,
		},
	})
}

// bearerClaims extracts and validates an access token from the Authorization
// header. present is false when no header was sent at all.
func bearerClaims(c *gin.Context) (claims *JWTClaims, present bool, err *apperrors.AppError) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, false, apperrors.ErrUnauthorized
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, true, apperrors.WithMessage(apperrors.ErrUnauthorized, "Invalid authorization header format")
	}

	claims, parseErr := parseToken(parts[1])
	// Refresh tokens are never accepted as access tokens.
	if parseErr != nil || claims.TokenType == "refresh" {
		return nil, true, apperrors.ErrInvalidToken
	}
	return claims, true, nil
}

func setIdentity(c *gin.Context, claims *JWTClaims) {
	c.Set(ContextUserID, claims.UserID)
	c.Set(ContextEmail, claims.Email)
	c.Set(ContextRole, claims.Role)
}

// AuthMiddleware verifies the JWT token and sets the user in the context
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, _, err := bearerClaims(c)
		if err != nil {
			abortWithError(c, err)
			return
		}
		setIdentity(c, claims)
		c.Next()
	}
}

// OptionalAuth sets the user in the context when a valid token is sent and
// lets anonymous requests through. A malformed or expired token is still
// rejected so clients notice stale credentials.
func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, present, err := bearerClaims(c)
		if !present {
			c.Next()
			return
		}
		if err != nil {
			abortWithError(c, err)
			return
		}
		setIdentity(c, claims)
		c.Next()
	}
}

// RequireRole rejects requests whose token does not carry one of roles.
// It must run after AuthMiddleware.
func RequireRole(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, _ := c.Get(ContextRole)
		current, _ := role.(models.UserRole)
		for _, r := range roles {
			if current == r {
				c.Next()
				return
			}
		}
		abortWithError(c, apperrors.ErrForbidden)
	}
}

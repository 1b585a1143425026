package utils

import (
	"time"

	"shop_api/internal/pkg/config"

	"github.com/golang-jwt/jwt/v5"
)

// Claims 自定义JWT Claims
type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

const (
	AccessTokenExpiry  = 15 * time.Minute
	RefreshTokenExpiry = 7 * 24 * time.Hour
)

// GenerateAccessToken 生成短效访问 Token
func GenerateAccessToken(userID string, role string) (string, error) {
	return generateToken(userID, role, AccessTokenExpiry, config.GlobalConfig.JWT.Secret)
}

// GenerateRefreshToken 生成刷新 Token (独立密钥，7天有效)
func GenerateRefreshToken(userID string) (string, error) {
	return generateToken(userID, "", RefreshTokenExpiry, config.GlobalConfig.JWT.RefreshSecret)
}

func generateToken(userID, role string, expiry time.Duration, secret string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "shop-api",
		},
	}

	tokenClaims := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tokenClaims.SignedString([]byte(secret))
}

// ParseAccessToken 验证访问 Token
func ParseAccessToken(tokenString string) (*Claims, error) {
	return parseToken(tokenString, config.GlobalConfig.JWT.Secret)
}

// ParseRefreshToken 验证刷新 Token
func ParseRefreshToken(tokenString string) (*Claims, error) {
	return parseToken(tokenString, config.GlobalConfig.JWT.RefreshSecret)
}

func parseToken(tokenString, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, jwt.ErrTokenInvalidClaims
}

// Package jwt выпускает и проверяет JWT токены доступа к API.
//
// Токен содержит email пользователя, название роли и идентификатор пользователя
// в шестнадцатеричном виде. Подпись HS256 секретным ключом из конфигурации.
package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken возвращается для неподписанного, просроченного или повреждённого токена.
var ErrInvalidToken = errors.New("invalid token")

// CustomClaims описывает пользовательские данные, хранящиеся в JWT.
type CustomClaims struct {
	Email                string `json:"email"`
	Role                 string `json:"role"`
	UserUID              string `json:"user_uid"`
	jwt.RegisteredClaims        // ExpiresAt, IssuedAt и пр.
}

// Maker создаёт и разбирает токены.
type Maker struct {
	secretKey string
	tokenTTL  time.Duration
}

// NewJWTMaker создаёт Maker на основе секретного ключа и времени жизни токена.
func NewJWTMaker(secretKey string, ttl time.Duration) *Maker {
	return &Maker{
		secretKey: secretKey,
		tokenTTL:  ttl,
	}
}

// GenerateToken создаёт подписанный токен для пользователя.
func (m *Maker) GenerateToken(email, role, userUID string) (string, error) {
	now := time.Now()
	claims := CustomClaims{
		Email:   email,
		Role:    role,
		UserUID: userUID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userUID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(m.secretKey))
}

// ParseToken проверяет подпись и срок действия токена и возвращает его claims.
func (m *Maker) ParseToken(tokenStr string) (*CustomClaims, error) {
	const op = "jwt.ParseToken"
	token, err := jwt.ParseWithClaims(tokenStr, &CustomClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(m.secretKey), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}
	return claims, nil
}

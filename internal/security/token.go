package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// TokenClaims JWT 载荷，sub 存用户 id
type TokenClaims struct {
	UserID uint `json:"uid"`
	jwt.RegisteredClaims
}

// TokenIssuer 签发和校验 Bearer Token
type TokenIssuer struct {
	secretKey []byte
	expiry    time.Duration
}

func NewTokenIssuer(secretKey string, expiry time.Duration) *TokenIssuer {
	return &TokenIssuer{secretKey: []byte(secretKey), expiry: expiry}
}

// Generate 签发 Token
func (t *TokenIssuer) Generate(userID uint) (string, error) {
	claims := TokenClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(t.expiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secretKey)
}

// Parse 校验 Token 并取出用户 id
func (t *TokenIssuer) Parse(tokenString string) (uint, error) {
	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(tk *jwt.Token) (interface{}, error) {
		if _, ok := tk.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return t.secretKey, nil
	})
	if err != nil || !token.Valid {
		return 0, errors.New("could not validate credentials")
	}
	return claims.UserID, nil
}

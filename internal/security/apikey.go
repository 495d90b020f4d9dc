package security

import (
	"crypto/rand"
	"encoding/base64"

	"golang.org/x/crypto/bcrypt"
)

// API Key 明文格式: "ApiKey " + 32 字节随机串 (urlsafe base64)
const apiKeyLabel = "ApiKey "

// APIKeyPrefixLen 明文保留的前缀长度，用于查找和展示
const APIKeyPrefixLen = 12

// GenerateAPIKey 生成一个新的 API Key 明文
func GenerateAPIKey() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return apiKeyLabel + base64.RawURLEncoding.EncodeToString(raw), nil
}

// HashAPIKey Key 只需要做等值校验，所以存 bcrypt 哈希而不是加密
func HashAPIKey(key string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckAPIKey 校验明文 Key 是否与存储的哈希匹配
func CheckAPIKey(key, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(key)) == nil
}

// APIKeyPrefix 取明文前缀（不足时返回全部）
func APIKeyPrefix(key string) string {
	if len(key) <= APIKeyPrefixLen {
		return key
	}
	return key[:APIKeyPrefixLen]
}

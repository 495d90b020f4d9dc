package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	kdfIterations = 100000
	keyLength     = 32
)

// CredentialCipher 凭证加解密器
// 密钥从应用 SecretKey 派生 (PBKDF2-SHA256)，整个凭证 payload 加密成一个 blob。
// 显式构造注入，不做包级单例，测试可以并行各用各的实例
type CredentialCipher struct {
	aead cipher.AEAD
}

func NewCredentialCipher(secretKey string) (*CredentialCipher, error) {
	if secretKey == "" {
		return nil, fmt.Errorf("credential cipher: secret key is empty")
	}

	// 派生 256 位密钥，salt 沿用 secret 本身
	key := pbkdf2.Key([]byte(secretKey), []byte(secretKey), kdfIterations, keyLength, sha256.New)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("credential cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("credential cipher: %w", err)
	}

	return &CredentialCipher{aead: aead}, nil
}

// Encrypt 把整个凭证字典序列化后加密，返回 base64 字符串
// 每次加密随机 nonce，同一明文两次加密结果不同
func (c *CredentialCipher) Encrypt(credential map[string]string) (string, error) {
	plaintext, err := json.Marshal(credential)
	if err != nil {
		return "", fmt.Errorf("failed to encrypt credentials: %w", err)
	}

	nonce := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to encrypt credentials: %w", err)
	}

	sealed := c.aead.Seal(nonce, nonce, plaintext, nil)
	return base64.URLEncoding.EncodeToString(sealed), nil
}

// Decrypt 解密 blob 还原凭证字典
// 解密失败视为密钥配置错误，直接报错，不降级
func (c *CredentialCipher) Decrypt(blob string) (map[string]string, error) {
	raw, err := base64.URLEncoding.DecodeString(blob)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt credentials: %w", err)
	}
	if len(raw) < c.aead.NonceSize() {
		return nil, fmt.Errorf("failed to decrypt credentials: ciphertext too short")
	}

	nonce, ciphertext := raw[:c.aead.NonceSize()], raw[c.aead.NonceSize():]
	plaintext, err := c.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt credentials: %w", err)
	}

	var credential map[string]string
	if err := json.Unmarshal(plaintext, &credential); err != nil {
		return nil, fmt.Errorf("failed to decrypt credentials: %w", err)
	}
	return credential, nil
}

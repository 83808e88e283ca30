package pinhash

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

// ============================================================================
// 账户 PIN 哈希
// ============================================================================
//
// 存储格式：pbkdf2$sha256$<迭代次数>$<盐hex>$<哈希hex>
// 校验时从串中解析参数重新计算，使用常数时间比较防止时序侧信道。
// PIN 明文任何情况下都不落库。
//
// ============================================================================

const (
	defaultIterations = 100000
	saltLen           = 16
	keyLen            = 32
)

var ErrMalformedHash = errors.New("pin hash 格式不合法")

// Encode 对 PIN 进行加盐哈希
func Encode(pin string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	dk := pbkdf2.Key([]byte(pin), salt, defaultIterations, keyLen, sha256.New)
	return fmt.Sprintf("pbkdf2$sha256$%d$%s$%s",
		defaultIterations,
		hex.EncodeToString(salt),
		hex.EncodeToString(dk),
	), nil
}

// Verify 校验 PIN 是否与存储的哈希匹配
func Verify(pin, encoded string) (bool, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 5 || parts[0] != "pbkdf2" || parts[1] != "sha256" {
		return false, ErrMalformedHash
	}
	iterations, err := strconv.Atoi(parts[2])
	if err != nil || iterations <= 0 {
		return false, ErrMalformedHash
	}
	salt, err := hex.DecodeString(parts[3])
	if err != nil {
		return false, ErrMalformedHash
	}
	want, err := hex.DecodeString(parts[4])
	if err != nil {
		return false, ErrMalformedHash
	}

	got := pbkdf2.Key([]byte(pin), salt, iterations, len(want), sha256.New)
	return subtle.ConstantTimeCompare(got, want) == 1, nil
}

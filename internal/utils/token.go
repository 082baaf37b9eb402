package utils

import (
	"crypto/rand"
	"encoding/hex"
)

// RandomToken 生成 n 字节的密码学随机令牌（hex 编码，长度 2n）
// 用于会话令牌和密码重置令牌
func RandomToken(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

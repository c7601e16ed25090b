package order

import (
	"crypto/subtle"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GenerateOrderNo 生成订单号
// 格式：ORD + 时间戳(秒) + 6位随机数，如ORD1699248000123456（唯一索引兜底）
func GenerateOrderNo() string {
	return fmt.Sprintf("ORD%d%06d", time.Now().Unix(), rand.IntN(1000000))
}

// ClaimCodeLength 取货码长度
const ClaimCodeLength = 10

// GenerateClaimCode 生成取货码：随机UUID的前10位十六进制，大写
func GenerateClaimCode() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(raw[:ClaimCodeLength])
}

// ClaimCodeVerifier 取货码校验
// 默认实现是明文精确比较，可替换为哈希存储或带限流的实现
type ClaimCodeVerifier interface {
	Verify(stored, submitted string) bool
}

// PlainClaimCodeVerifier 区分大小写的精确匹配（常量时间比较）
type PlainClaimCodeVerifier struct{}

// NewPlainClaimCodeVerifier 创建明文校验器
func NewPlainClaimCodeVerifier() ClaimCodeVerifier {
	return PlainClaimCodeVerifier{}
}

// Verify 两者完全相同才返回true，空串永不匹配
func (PlainClaimCodeVerifier) Verify(stored, submitted string) bool {
	if stored == "" || submitted == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(submitted)) == 1
}

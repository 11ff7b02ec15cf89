package service

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/poetrydeveloper/app-store-v2/internal/store/entity"
)

// SerialGenerator 单品序列号生成策略
type SerialGenerator interface {
	Generate(product *entity.Product, delivery *entity.Delivery, at time.Time) string
}

const (
	serialFieldWidth  = 8
	serialRandomBytes = 3
	serialTimeLayout  = "060102150405"
	maxSerialPrefix   = 10
)

// TimestampSerial 默认序列号格式：
// {前缀}-{商品编码8位}-{到货ID 8位}-{yyMMddHHmmss}-{6位十六进制随机数}
type TimestampSerial struct {
	prefix string
	random func() string
}

// NewTimestampSerial random 为空时使用 uuid 随机字节
func NewTimestampSerial(prefix string, random func() string) (*TimestampSerial, error) {
	prefix = strings.ToUpper(strings.TrimSpace(prefix))
	if prefix == "" || len(prefix) > maxSerialPrefix {
		return nil, fmt.Errorf("serial prefix must be 1-%d characters, got %q", maxSerialPrefix, prefix)
	}
	if random == nil {
		random = randomHex
	}
	return &TimestampSerial{prefix: prefix, random: random}, nil
}

func (g *TimestampSerial) Generate(product *entity.Product, delivery *entity.Delivery, at time.Time) string {
	return strings.Join([]string{
		g.prefix,
		fixedWidth(product.Code, serialFieldWidth),
		fixedWidth(delivery.ID, serialFieldWidth),
		at.UTC().Format(serialTimeLayout),
		fixedWidth(g.random(), serialRandomBytes*2),
	}, "-")
}

// SerialLength 该前缀下序列号的固定长度
func (g *TimestampSerial) SerialLength() int {
	return len(g.prefix) + 2*serialFieldWidth + len(serialTimeLayout) + serialRandomBytes*2 + 4
}

func randomHex() string {
	id := uuid.New()
	return hex.EncodeToString(id[:serialRandomBytes])
}

// fixedWidth 仅保留字母数字并转大写，超长截取前 n 位，不足右侧补 0
func fixedWidth(s string, n int) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(s) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
			if b.Len() == n {
				return b.String()
			}
		}
	}
	return b.String() + strings.Repeat("0", n-b.Len())
}

// Package txref は注文の取引参照コード（tx_ref）を作る。
package txref

import (
	"crypto/rand"
	"math/big"
	"strings"
)

// 英大文字と1-9（0は含まない）
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ123456789"

const Length = 12

// tx_refを作る約束（テストで差し替える）
type Generator interface {
	Generate() (string, error)
}

type RandomGenerator struct{}

func NewRandomGenerator() *RandomGenerator {
	return &RandomGenerator{}
}

func (g *RandomGenerator) Generate() (string, error) {
	max := big.NewInt(int64(len(Alphabet)))
	b := make([]byte, Length)
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = Alphabet[n.Int64()]
	}
	return string(b), nil
}

// 形式チェック（URLで受け取ったtx_ref用）
func Valid(s string) bool {
	if len(s) != Length {
		return false
	}
	for _, r := range s {
		if !strings.ContainsRune(Alphabet, r) {
			return false
		}
	}
	return true
}

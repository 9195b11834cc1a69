// Package codegen produces random short codes.
package codegen

import (
	"crypto/rand"
	"io"
	"math/big"
)

const (
	Charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	Length  = 6
)

// Func returns a candidate code. Candidates are not guaranteed unique.
type Func func() (string, error)

// Generate draws a Length-character code from Charset using r as the randomness source.
func Generate(r io.Reader) (string, error) {
	n := big.NewInt(int64(len(Charset)))
	b := make([]byte, Length)
	for i := range b {
		num, err := rand.Int(r, n)
		if err != nil {
			return "", err
		}
		b[i] = Charset[num.Int64()]
	}
	return string(b), nil
}

// New binds Generate to a randomness source.
func New(r io.Reader) Func {
	return func() (string, error) {
		return Generate(r)
	}
}

// Default generates codes from crypto/rand.
var Default = New(rand.Reader)

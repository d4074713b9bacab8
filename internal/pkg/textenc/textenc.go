// Package textenc converts between script-style strings and byte buffers the
// way browser test pages do: one byte per UTF-16 code unit, and padded
// standard Base64 for printing.
package textenc

import (
	"encoding/base64"
	"unicode/utf16"
)

// ByteString returns one byte per UTF-16 code unit of s, keeping the low 8
// bits of each unit. ASCII input is returned unchanged.
func ByteString(s string) []byte {
	units := utf16.Encode([]rune(s))
	out := make([]byte, len(units))
	for i, u := range units {
		out[i] = byte(u)
	}
	return out
}

// Base64 encodes b with the standard alphabet and padding.
func Base64(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

// DecodeBase64 reverses Base64.
func DecodeBase64(s string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(s)
}

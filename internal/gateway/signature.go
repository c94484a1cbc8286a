package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Field is one (name, value) pair of a signed payload. The provider mandates
// the exact key order for each message type; signing walks an explicit
// ordered slice, never a map.
type Field struct {
	Name  string
	Value string
}

// RawSignatureString joins fields as key=value pairs with "&" in the given
// order. Swapping any two fields invalidates every signature.
func RawSignatureString(fields []Field) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f.Name + "=" + f.Value
	}
	return strings.Join(parts, "&")
}

// Sign computes the hex HMAC-SHA256 of the canonical string under secretKey.
func Sign(secretKey string, fields []Field) string {
	mac := hmac.New(sha256.New, []byte(secretKey))
	mac.Write([]byte(RawSignatureString(fields)))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature recomputes the signature over fields and compares it with
// the supplied one in constant time.
func VerifySignature(secretKey string, fields []Field, supplied string) bool {
	expected := Sign(secretKey, fields)
	return hmac.Equal([]byte(expected), []byte(supplied))
}

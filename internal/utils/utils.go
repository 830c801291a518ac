package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
	"unicode"
)

// Reference prefixes for human readable identifiers.
const (
	PrefixOrder       = "ORD"
	PrefixKYC         = "KYC"
	PrefixReturn      = "RET"
	PrefixTicket      = "TKT"
	PrefixTransaction = "TXN"
	PrefixRefund      = "RFND"
)

// NewReference builds an identifier such as ORD-1718000000000-3FA9C1.
func NewReference(prefix string) string {
	b := make([]byte, 3)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand does not fail on supported platforms
		panic("read random bytes: " + err.Error())
	}
	return fmt.Sprintf("%s-%d-%s", prefix, time.Now().UnixMilli(), strings.ToUpper(hex.EncodeToString(b)))
}

// Slugify lowercases s and joins its letter and digit runs with dashes.
func Slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			dash = false
			b.WriteRune(r)
		default:
			dash = true
		}
	}
	return b.String()
}

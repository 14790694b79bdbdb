package offer

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"unicode"
)

// promoCode builds PROMO-<first three letters of name>-<4 hex digits>.
func promoCode(name string) (string, error) {
	prefix := make([]rune, 0, 3)
	for _, r := range strings.ToUpper(name) {
		if r > unicode.MaxASCII || !unicode.IsLetter(r) {
			continue
		}
		prefix = append(prefix, r)
		if len(prefix) == 3 {
			break
		}
	}
	for len(prefix) < 3 {
		prefix = append(prefix, 'X')
	}

	b := make([]byte, 2)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return "PROMO-" + string(prefix) + "-" + strings.ToUpper(hex.EncodeToString(b)), nil
}

// Package contacts normalizes imported address-book and social entries and derives
// a stable fingerprint so the same person is never pooled twice for one owner.
package contacts

import (
	"encoding/hex"
	"strings"
	"unicode"

	"golang.org/x/crypto/blake2b"
)

// NormalizePhone keeps digits and a leading plus sign.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for i, r := range strings.TrimSpace(phone) {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		}
	}
	out := b.String()
	if out == "+" {
		return ""
	}
	return out
}

// NormalizeName lowercases and collapses whitespace.
func NormalizeName(name string) string {
	return strings.Join(strings.FieldsFunc(strings.ToLower(name), unicode.IsSpace), " ")
}

// Key fingerprints a contact. The phone number wins when present, then the profile
// URL, then the name. It returns "" when nothing identifies the contact.
func Key(name, phone, profileURL string) string {
	var basis string
	switch {
	case NormalizePhone(phone) != "":
		basis = "phone:" + NormalizePhone(phone)
	case strings.TrimSpace(profileURL) != "":
		basis = "url:" + strings.ToLower(strings.TrimSpace(profileURL))
	case NormalizeName(name) != "":
		basis = "name:" + NormalizeName(name)
	default:
		return ""
	}
	sum := blake2b.Sum256([]byte(basis))
	return hex.EncodeToString(sum[:])
}

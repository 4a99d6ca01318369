package delivery

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
)

const shiftJISSubstitute = '?'

// EncodeShiftJIS converts descriptor text to the bytes stored in an archive.
// Characters without a Shift_JIS code point are replaced and returned.
func EncodeShiftJIS(s string) ([]byte, []rune, error) {
	if b, err := japanese.ShiftJIS.NewEncoder().String(s); err == nil {
		return []byte(b), nil, nil
	}
	clean, bad := replaceUnrepresentable(s)
	b, err := japanese.ShiftJIS.NewEncoder().String(clean)
	if err != nil {
		return nil, bad, fmt.Errorf("failed to encode Shift_JIS: %w", err)
	}
	return []byte(b), bad, nil
}

// unrepresentable lists the distinct runes of s that Shift_JIS cannot hold or
// that XML 1.0 does not allow in character data.
func unrepresentable(s string) []rune {
	_, bad := replaceUnrepresentable(s)
	return bad
}

func replaceUnrepresentable(s string) (string, []rune) {
	enc := japanese.ShiftJIS.NewEncoder()
	var b strings.Builder
	var bad []rune
	seen := map[rune]bool{}
	for _, r := range s {
		if r < utf8.RuneSelf && xmlChar(r) {
			b.WriteRune(r)
			continue
		}
		if !xmlChar(r) || !encodable(enc, r) {
			if !seen[r] {
				seen[r] = true
				bad = append(bad, r)
			}
			b.WriteRune(shiftJISSubstitute)
			continue
		}
		b.WriteRune(r)
	}
	return b.String(), bad
}

// xmlChar reports whether r is in the XML 1.0 Char production.
func xmlChar(r rune) bool {
	switch {
	case r == 0x09 || r == 0x0A || r == 0x0D:
		return true
	case r >= 0x20 && r <= 0xD7FF:
		return true
	case r >= 0xE000 && r <= 0xFFFD:
		return true
	case r >= 0x10000 && r <= 0x10FFFF:
		return true
	}
	return false
}

func encodable(enc *encoding.Encoder, r rune) bool {
	if r < utf8.RuneSelf {
		return true
	}
	_, err := enc.String(string(r))
	return err == nil
}

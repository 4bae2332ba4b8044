// Package payload encodes slot lists into share-link parameters and back.
//
// The events parameter is base64(percent-escape(JSON)), the format browsers
// produce with btoa(encodeURIComponent(JSON.stringify(...))).
package payload

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/javiermolinar/chousei/internal/slot"
)

// ErrMalformedPayload is returned when an events parameter cannot be decoded.
var ErrMalformedPayload = errors.New("malformed events payload")

// EncodeSlots serializes slots into an events parameter value.
func EncodeSlots(slots []*slot.Slot) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(slot.ToStoredAll(slots)); err != nil {
		return "", fmt.Errorf("encoding slots: %w", err)
	}
	raw := bytes.TrimRight(buf.Bytes(), "\n")
	return base64.StdEncoding.EncodeToString([]byte(escapeComponent(string(raw)))), nil
}

// DecodeSlots parses an events parameter value. Any failure wraps ErrMalformedPayload.
func DecodeSlots(raw string) ([]*slot.Slot, error) {
	stored, err := decodeStored(raw)
	if err != nil {
		return nil, err
	}
	slots, err := slot.FromStoredAll(stored)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return slots, nil
}

func decodeStored(raw string) ([]slot.Stored, error) {
	// Query parsing turns an unescaped '+' into a space.
	raw = strings.ReplaceAll(strings.TrimSpace(raw), " ", "+")

	b, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: base64: %v", ErrMalformedPayload, err)
	}
	text, err := url.PathUnescape(string(b))
	if err != nil {
		return nil, fmt.Errorf("%w: escape: %v", ErrMalformedPayload, err)
	}
	var stored []slot.Stored
	if err := json.Unmarshal([]byte(text), &stored); err != nil {
		return nil, fmt.Errorf("%w: json: %v", ErrMalformedPayload, err)
	}
	return stored, nil
}

// unreserved reports whether c passes through encodeURIComponent unchanged.
func unreserved(c byte) bool {
	switch {
	case 'A' <= c && c <= 'Z', 'a' <= c && c <= 'z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("-_.!~*'()", c) >= 0
}

// escapeComponent percent-encodes s byte-wise over its UTF-8 form, leaving
// the encodeURIComponent unreserved set untouched.
func escapeComponent(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if unreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0f])
	}
	return b.String()
}

// unescapeComponent reverses escapeComponent, returning s unchanged on failure.
func unescapeComponent(s string) string {
	out, err := url.PathUnescape(s)
	if err != nil {
		return s
	}
	return out
}

// Responders returns the trimmed, de-duplicated approvers of slots in
// first-seen order.
func Responders(slots []*slot.Slot) []string {
	seen := make(map[string]bool)
	var out []string
	for _, s := range slots {
		for _, name := range s.ApprovedBy() {
			name = strings.TrimSpace(name)
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}

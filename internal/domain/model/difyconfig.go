// Package model holds the domain types shared by every layer.
package model

import (
	"strings"
	"time"
	"unicode/utf8"
)

// DefaultDifyConfigID is the primary key of the singleton Dify configuration row.
const DefaultDifyConfigID = "default"

// DefaultDifyBaseURL is the public Dify cloud API root.
const DefaultDifyBaseURL = "https://api.dify.ai/v1"

// maskChar replaces the hidden middle of a masked API key.
const maskChar = "*"

// DifyConfig is the persisted upstream credential record. APIKey holds the
// decrypted key and is never serialized.
type DifyConfig struct {
	BaseURL string
	APIKey  string `json:"-"`

	// KeyUnreadable is set when a ciphertext is stored but could not be
	// decrypted. APIKey is empty in that case.
	KeyUnreadable bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Configured reports whether the record carries a usable API key.
func (c *DifyConfig) Configured() bool {
	return c != nil && c.APIKey != ""
}

// MaskedAPIKey returns the API key in its display form.
func (c *DifyConfig) MaskedAPIKey() string {
	if c == nil {
		return ""
	}
	return MaskAPIKey(c.APIKey)
}

// DifyConfigUpdate carries a partial update of the singleton record. A nil
// field leaves the stored value untouched; an empty APIKey clears the key.
type DifyConfigUpdate struct {
	BaseURL *string
	APIKey  *string
}

// MaskAPIKey redacts a secret for display. Keys of up to 8 characters are
// masked entirely; longer keys keep their first and last 4 characters.
func MaskAPIKey(key string) string {
	n := utf8.RuneCountInString(key)
	if n == 0 {
		return ""
	}
	if n <= 8 {
		return strings.Repeat(maskChar, n)
	}

	runes := []rune(key)
	return string(runes[:4]) + strings.Repeat(maskChar, n-8) + string(runes[n-4:])
}

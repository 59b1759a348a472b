// internal/app/system/normalize/normalize.go

// Package normalize trims and canonicalizes user-supplied identifiers before
// they reach a store or an external collaborator.
package normalize

import "strings"

// Email lowercases and trims an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims surrounding whitespace; case is preserved.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// Tier lowercases and trims a membership tier value.
func Tier(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// DiscountCode uppercases and trims a discount code so lookups are
// case-insensitive.
func DiscountCode(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

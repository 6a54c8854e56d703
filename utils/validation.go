// utils/validation.go
package utils

import (
	"regexp"
	"strings"
)

var (
	phonePattern = regexp.MustCompile(`^\+?[1-9]\d{1,14}$`)
	skuPattern   = regexp.MustCompile(`^[A-Z0-9][A-Z0-9-]{1,31}$`)
)

// ValidatePhone checks if a phone number is in a valid international format
func ValidatePhone(phone string) bool {
	return phonePattern.MatchString(NormalizePhone(phone))
}

// NormalizePhone strips spaces, dashes and parentheses.
func NormalizePhone(phone string) string {
	return strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(phone)
}

// NormalizeSKU uppercases and trims a SKU; ok is false if it is malformed.
func NormalizeSKU(sku string) (string, bool) {
	sku = strings.ToUpper(strings.TrimSpace(sku))
	return sku, skuPattern.MatchString(sku)
}

package errors

import (
	"math"
	"regexp"
	"unicode"
)

// maxItemIDLength bounds item identifiers accepted from users.
const maxItemIDLength = 128

// Upper bounds on user-supplied quantities. Machine counts and edge labels are
// integers, so amounts must stay far below the int64 range after recipe scaling.
const (
	MaxAmount        = 1e12
	MaxWindowMinutes = 1e7
)

// itemIDRegex matches catalog item identifiers ("iron-plate", "crude-oil").
var itemIDRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]*$`)

// ValidateItemID validates an item identifier supplied by a user.
//
// The rules are intentionally conservative: identifiers are lowercase,
// start with a letter or digit, and contain only letters, digits, dots,
// dashes and underscores. Whether the item exists is checked by the catalog.
func ValidateItemID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidItem, "item id cannot be empty")
	}
	if len(id) > maxItemIDLength {
		return New(ErrCodeInvalidItem, "item id too long (max %d characters)", maxItemIDLength)
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidItem, "item id contains invalid control characters")
		}
	}
	if !itemIDRegex.MatchString(id) {
		return New(ErrCodeInvalidItem, "invalid item id: %q", id)
	}
	return nil
}

// ValidateAmount checks that a target amount or rate is a finite positive
// number no larger than [MaxAmount].
func ValidateAmount(amount float64) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return New(ErrCodeInvalidAmount, "amount must be a finite number")
	}
	if amount <= 0 {
		return New(ErrCodeInvalidAmount, "amount must be positive, got %g", amount)
	}
	if amount > MaxAmount {
		return New(ErrCodeInvalidAmount, "amount too large (max %g), got %g", MaxAmount, amount)
	}
	return nil
}

// ValidateWindow checks a batch production window in minutes.
func ValidateWindow(minutes float64) error {
	if math.IsNaN(minutes) || math.IsInf(minutes, 0) || minutes <= 0 {
		return New(ErrCodeInvalidAmount, "production window must be a positive number of minutes")
	}
	if minutes > MaxWindowMinutes {
		return New(ErrCodeInvalidAmount, "production window too long (max %g minutes)", MaxWindowMinutes)
	}
	return nil
}

// ValidateLanguage checks that lang is one of the supported language codes.
func ValidateLanguage(lang string, supported []string) error {
	if lang == "" {
		return New(ErrCodeInvalidLanguage, "language cannot be empty")
	}
	for _, s := range supported {
		if s == lang {
			return nil
		}
	}
	return New(ErrCodeInvalidLanguage, "unsupported language %q (supported: %v)", lang, supported)
}

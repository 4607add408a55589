package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidItem, "unknown item: %s", "unobtainium")

	if err.Code != ErrCodeInvalidItem {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidItem)
	}

	if err.Message != "unknown item: unobtainium" {
		t.Errorf("Message = %v, want %v", err.Message, "unknown item: unobtainium")
	}

	expected := "INVALID_ITEM: unknown item: unobtainium"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("unexpected end of JSON input")
	err := Wrap(ErrCodeInvalidCatalog, cause, "load catalog")

	if err.Code != ErrCodeInvalidCatalog {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidCatalog)
	}

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}

	if unwrapped := errors.Unwrap(err); unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}

	want := "INVALID_CATALOG: load catalog: unexpected end of JSON input"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{
			name:     "matching code",
			err:      New(ErrCodeInvalidTier, "test"),
			code:     ErrCodeInvalidTier,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodeInvalidTier, "test"),
			code:     ErrCodeInvalidPurity,
			expected: false,
		},
		{
			name:     "outer code wins",
			err:      Wrap(ErrCodeInvalidCatalog, New(ErrCodeInvalidItem, "inner"), "outer"),
			code:     ErrCodeInvalidCatalog,
			expected: true,
		},
		{
			name:     "wrapped by fmt",
			err:      fmt.Errorf("resolve: %w", New(ErrCodeItemNotFound, "x")),
			code:     ErrCodeItemNotFound,
			expected: true,
		},
		{
			name:     "non-Error type",
			err:      errors.New("plain error"),
			code:     ErrCodeInvalidInput,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			code:     ErrCodeInvalidInput,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(New(ErrCodeInvalidMode, "x")); got != ErrCodeInvalidMode {
		t.Errorf("GetCode() = %v, want %v", got, ErrCodeInvalidMode)
	}
	if got := GetCode(errors.New("plain")); got != "" {
		t.Errorf("GetCode() = %v, want empty", got)
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(New(ErrCodeInvalidAmount, "amount must be positive")); got != "amount must be positive" {
		t.Errorf("UserMessage() = %q", got)
	}
	if got := UserMessage(errors.New("plain")); got != "plain" {
		t.Errorf("UserMessage() = %q", got)
	}
}

func TestClassification(t *testing.T) {
	if !IsValidation(New(ErrCodeInvalidLanguage, "x")) {
		t.Error("IsValidation(INVALID_LANGUAGE) = false")
	}
	if IsValidation(New(ErrCodeInternal, "x")) {
		t.Error("IsValidation(INTERNAL_ERROR) = true")
	}
	if !IsNotFound(New(ErrCodeSessionNotFound, "x")) {
		t.Error("IsNotFound(SESSION_NOT_FOUND) = false")
	}
	if IsNotFound(errors.New("plain")) {
		t.Error("IsNotFound(plain) = true")
	}
}

func TestRateLimitedError(t *testing.T) {
	t.Run("with retry after", func(t *testing.T) {
		err := &RateLimitedError{RetryAfter: 60}
		expected := "rate limited: retry after 60 seconds"
		if err.Error() != expected {
			t.Errorf("Error() = %v, want %v", err.Error(), expected)
		}
	})

	t.Run("without retry after", func(t *testing.T) {
		err := &RateLimitedError{}
		if err.Error() != "rate limited" {
			t.Errorf("Error() = %v, want %v", err.Error(), "rate limited")
		}
	})

	t.Run("code", func(t *testing.T) {
		err := &RateLimitedError{}
		if err.Code() != ErrCodeRateLimited {
			t.Errorf("Code() = %v, want %v", err.Code(), ErrCodeRateLimited)
		}
	})
}

package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorString(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"new", New(ErrCodeInvalidInput, "min size %d exceeds max size %d", 300, 50),
			"INVALID_INPUT: min size 300 exceeds max size 50"},
		{"wrap", Wrap(ErrCodeDecodeFailed, errors.New("unexpected EOF"), "decode %s", "covers/Help_.jpg"),
			"DECODE_FAILED: decode covers/Help_.jpg: unexpected EOF"},
		{"rate limited", &RateLimitedError{RetryAfter: 60}, "rate limited: retry after 60 seconds"},
		{"rate limited bare", &RateLimitedError{}, "rate limited"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := fmt.Errorf("crawl: %w", Wrap(ErrCodeNetwork, cause, "fetch playlist"))

	if !errors.Is(err, cause) {
		t.Error("cause lost through Wrap")
	}
	var e *Error
	if !errors.As(err, &e) || e.Cause != cause {
		t.Errorf("As(*Error) = %v", e)
	}
}

func TestCodes(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		wantCode Code
		wantIs   bool
	}{
		{"direct", New(ErrCodeNoImages, "x"), ErrCodeNoImages, ErrCodeNoImages, true},
		{"other code", New(ErrCodeCoverNotFound, "x"), ErrCodeDecodeFailed, ErrCodeCoverNotFound, false},
		{"outermost wins", Wrap(ErrCodeNetwork, New(ErrCodeInvalidInput, "inner"), "outer"), ErrCodeNetwork, ErrCodeNetwork, true},
		{"inner shadowed", Wrap(ErrCodeNetwork, New(ErrCodeInvalidInput, "inner"), "outer"), ErrCodeInvalidInput, ErrCodeNetwork, false},
		{"wrapped by fmt", fmt.Errorf("build: %w", New(ErrCodeBuildNotFound, "x")), ErrCodeBuildNotFound, ErrCodeBuildNotFound, true},
		{"rate limit type", fmt.Errorf("fetch: %w", &RateLimitedError{RetryAfter: 3}), ErrCodeRateLimited, ErrCodeRateLimited, true},
		{"plain", errors.New("plain"), ErrCodeInvalidInput, "", false},
		{"nil", nil, ErrCodeInvalidInput, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.wantIs {
				t.Errorf("Is(%s) = %v, want %v", tt.code, got, tt.wantIs)
			}
			if got := GetCode(tt.err); got != tt.wantCode {
				t.Errorf("GetCode() = %q, want %q", got, tt.wantCode)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(Wrap(ErrCodeFileNotFound, errors.New("enoent"), "index.txt not found")); got != "index.txt not found" {
		t.Errorf("UserMessage(*Error) = %q", got)
	}
	if got := UserMessage(errors.New("plain error")); got != "plain error" {
		t.Errorf("UserMessage(plain) = %q", got)
	}
}

func TestCodesAreDistinct(t *testing.T) {
	codes := []Code{
		ErrCodeInvalidInput, ErrCodeInvalidFormat, ErrCodeInvalidConfig,
		ErrCodeNotFound, ErrCodeFileNotFound, ErrCodeCoverNotFound, ErrCodeBuildNotFound,
		ErrCodeDecodeFailed, ErrCodeNoImages,
		ErrCodeNetwork, ErrCodeTimeout, ErrCodeRateLimited,
		ErrCodeUnauthorized, ErrCodeInternal, ErrCodeUnsupported,
	}
	seen := make(map[Code]bool, len(codes))
	for _, c := range codes {
		if seen[c] {
			t.Errorf("duplicate code %s", c)
		}
		seen[c] = true
	}
	if (&RateLimitedError{}).Code() != ErrCodeRateLimited {
		t.Error("RateLimitedError.Code() mismatch")
	}
}

// Package pipeline defines the error taxonomy shared by every stage.
// Callers wrap failures with one of the sentinels so the retry layer can
// tell a transient network hiccup from a hard auth or quota failure.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrTransient marks failures worth retrying: timeouts, 5xx, 429.
	ErrTransient = errors.New("transient error")

	// ErrAuth marks rejected credentials. Retrying cannot help.
	ErrAuth = errors.New("authentication failed")

	// ErrMalformed marks responses that arrived but could not be used.
	ErrMalformed = errors.New("malformed response")

	// ErrQuota marks an exhausted request budget or provider rate cap.
	ErrQuota = errors.New("quota exhausted")

	// ErrConfigMissing marks a feature disabled by absent credentials.
	ErrConfigMissing = errors.New("configuration missing")
)

// Transientf builds a retryable error with a formatted message.
func Transientf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrTransient)...)
}

// IsRetryable reports whether another attempt could plausibly succeed.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrAuth) || errors.Is(err, ErrMalformed) ||
		errors.Is(err, ErrQuota) || errors.Is(err, ErrConfigMissing) {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return true
}

// ClassifyStatus maps an HTTP status code onto a sentinel.
func ClassifyStatus(code int) error {
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return ErrAuth
	case code == http.StatusTooManyRequests:
		return ErrQuota
	case code >= http.StatusInternalServerError:
		return ErrTransient
	default:
		return ErrMalformed
	}
}

// Classify maps an arbitrary provider error onto a sentinel, falling back
// to message inspection for SDK errors that expose no typed cause.
func Classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrTransient), errors.Is(err, ErrAuth),
		errors.Is(err, ErrMalformed), errors.Is(err, ErrQuota),
		errors.Is(err, ErrConfigMissing):
		return err
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "quota") || strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "resource exhausted") || strings.Contains(msg, "429"):
		return ErrQuota
	case strings.Contains(msg, "api key") || strings.Contains(msg, "unauthorized") ||
		strings.Contains(msg, "permission") || strings.Contains(msg, "403"):
		return ErrAuth
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "connection") ||
		strings.Contains(msg, "unavailable") || strings.Contains(msg, "503"):
		return ErrTransient
	default:
		return ErrTransient
	}
}

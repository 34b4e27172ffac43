package service

import "errors"

// Auth flow specific errors used by handlers for stable error_type mapping.
// The four verification outcomes are expected control-flow results, not
// faults; callers branch on them.
var (
	ErrInvalidVerificationCode      = errors.New("invalid_verification_code")
	ErrVerificationExpired          = errors.New("verification_expired")
	ErrNoPendingVerificationCode    = errors.New("no_pending_verification_code")
	ErrVerificationAttemptsExceeded = errors.New("verification_attempts_exceeded")
	ErrVerificationResendCooldown   = errors.New("verification_resend_cooldown")
	ErrAccountInactive              = errors.New("account_inactive")
)

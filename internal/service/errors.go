package service

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("account disabled")
	ErrInvalidPassword    = errors.New("invalid password")
	ErrWeakPassword       = errors.New("password too weak")
	ErrNotFound           = errors.New("record not found")

	ErrEmailServiceDisabled      = errors.New("email service disabled")
	ErrEmailServiceNotConfigured = errors.New("email service not configured")
	ErrInvalidEmail              = errors.New("invalid email address")
	ErrEmailSendFailed           = errors.New("email send failed")

	ErrUnknownStripeMode       = errors.New("unknown stripe mode")
	ErrStripeModeNotConfigured = errors.New("stripe mode not configured")
)

// Package services holds the business rules of the bot: accounts, premium
// access, quotas, history, admin statistics, broadcasts and reminders.
// This file centralizes the service-level error values so callers can map
// them to user-facing replies consistently.
package services

import "errors"

var (
	// ErrUserNotFound indicates the referenced Telegram account is unknown.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidArgs is returned when admin input cannot be parsed, for
	// example a non-numeric user id or a non-positive number of days.
	ErrInvalidArgs = errors.New("invalid arguments")

	// ErrNothingToSend is returned when a broadcast is confirmed without a
	// prepared payload.
	ErrNothingToSend = errors.New("nothing to send")
)

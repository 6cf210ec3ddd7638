// Package service holds the business operations the HTTP handlers call.
package service

import (
	"errors"
	"fmt"
	"net/mail"
	"sort"
	"strings"
)

var (
	ErrEmailExists        = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountDisabled    = errors.New("account is disabled")
	ErrTooManyAttempts    = errors.New("too many failed login attempts, try again later")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrForbidden          = errors.New("you are not allowed to do that")
	ErrItemUnavailable    = errors.New("menu item is not available")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrOrderingClosed     = errors.New("online ordering is currently unavailable")
	ErrReservationsClosed = errors.New("online reservations are currently unavailable")
	ErrNoAvailability     = errors.New("no tables available for the requested time")
	ErrReservationPast    = errors.New("reservation time has already passed")
	ErrCategoryInUse      = errors.New("category still has menu items")
)

// ValidationError collects per-field input problems.
type ValidationError struct {
	Fields map[string]string `json:"errors"`
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = msg
	}
}

// Err returns nil when nothing was added.
func (e *ValidationError) Err() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) required(field, value string) {
	if strings.TrimSpace(value) == "" {
		e.Add(field, "is required")
	}
}

func (e *ValidationError) email(field, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		e.Add(field, "is required")
		return
	}
	if addr, err := mail.ParseAddress(value); err != nil || addr.Address != value {
		e.Add(field, "is not a valid email address")
	}
}

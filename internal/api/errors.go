// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnauthorized indicates a missing, expired or rejected token.
	ErrUnauthorized = errors.New("authentication required")

	// ErrNotConfigured indicates no API URL was set.
	ErrNotConfigured = errors.New("api url not configured")
)

// HTTPError is a non-2xx response other than 401/403.
type HTTPError struct {
	Status int
	Body   string
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	body := strings.TrimSpace(e.Body)
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	if body == "" {
		return fmt.Sprintf("HTTP %d", e.Status)
	}
	return fmt.Sprintf("HTTP %d - %s", e.Status, body)
}

// IsUnauthorized reports whether err means the user has to log in again.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

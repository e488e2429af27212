// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jeranaias/agentdesk/internal/util"
)

// TokenStore persists the bearer token between runs so a new session can
// pick it up when its own store has none.
type TokenStore struct {
	Path string
}

// NewTokenStore creates a token store backed by the file at path.
func NewTokenStore(path string) *TokenStore {
	return &TokenStore{Path: path}
}

// Store writes token with owner-only permissions.
func (t *TokenStore) Store(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("refusing to store empty token")
	}
	if err := util.AtomicWriteFile(t.Path, []byte(token+"\n"), 0600); err != nil {
		return fmt.Errorf("store token: %w", err)
	}
	return nil
}

// Retrieve returns the stored token, or ErrNotFound when none is stored.
func (t *TokenStore) Retrieve() (string, error) {
	data, err := os.ReadFile(t.Path)
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("retrieve token: %w", err)
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", ErrNotFound
	}
	return token, nil
}

// Delete removes the stored token. Deleting a missing token is not an error.
func (t *TokenStore) Delete() error {
	if err := os.Remove(t.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete token: %w", err)
	}
	return nil
}

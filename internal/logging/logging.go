// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging sets up the process logger.
//
// The TUI owns the terminal, so logs never go to stdout or stderr. With
// debug off everything is discarded; with debug on, text logs are appended
// to the configured log file. Every entry carries the session id so lines
// from concurrent runs can be told apart.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	mu        sync.RWMutex
	base      = discardLogger()
	sessionID = uuid.NewString()
	closer    io.Closer
)

func discardLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	l.SetLevel(logrus.PanicLevel)
	return l
}

// Setup configures the process logger. With debug false the logger discards
// all output. Calling Setup again replaces the previous configuration and
// closes the previous log file.
func Setup(debug bool, logFile string) error {
	mu.Lock()
	defer mu.Unlock()

	if closer != nil {
		closer.Close()
		closer = nil
	}

	if !debug {
		base = discardLogger()
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(logFile), 0700); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	l := logrus.New()
	l.SetOutput(f)
	l.SetLevel(logrus.DebugLevel)
	l.SetFormatter(&logrus.TextFormatter{
		DisableColors:   true,
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	base = l
	closer = f
	return nil
}

// SetOutput redirects the logger to w at debug level. Tests use it to
// capture log lines.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(logrus.DebugLevel)
	l.SetFormatter(&logrus.TextFormatter{DisableColors: true, DisableTimestamp: true})
	base = l
}

// Close flushes and closes the log file, if any.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if closer == nil {
		return nil
	}
	err := closer.Close()
	closer = nil
	base = discardLogger()
	return err
}

// SessionID returns the id attached to every entry of this process.
func SessionID() string {
	return sessionID
}

// For returns an entry tagged with the component name.
func For(component string) *logrus.Entry {
	mu.RLock()
	defer mu.RUnlock()
	return base.WithFields(logrus.Fields{
		"component": component,
		"session":   sessionID,
	})
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package extract pulls plain text out of files chosen for upload.
//
// Supported inputs, checked in this order:
//   - text/plain (and markdown/csv): read as is
//   - .docx: paragraph text from the OOXML body
//   - application/pdf: page text in page order, one line break between pages
//   - image/*: OCR through the tesseract executable
//
// Anything else fails with ErrUnsupported.
package extract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// ErrUnsupported is returned for files no extractor handles.
var ErrUnsupported = errors.New("unsupported file type")

// ErrTooLarge is returned for plain text files over the size cap.
var ErrTooLarge = errors.New("file too large")

// DefaultMaxBytes caps how much of a plain text file is read.
const DefaultMaxBytes = 10 * 1024 * 1024

// Result is the outcome of a successful extraction.
type Result struct {
	Text     string
	FileName string
	MIME     string
}

// Extractor dispatches a file to the matching extraction path.
type Extractor struct {
	// OCRCommand is the tesseract executable.
	OCRCommand string
	// MaxBytes is the largest plain text file accepted.
	MaxBytes int64
}

// New creates an extractor with default settings.
func New() *Extractor {
	return &Extractor{OCRCommand: "tesseract", MaxBytes: DefaultMaxBytes}
}

// DetectMIME returns the media type of path without parameters. The
// extension is consulted first, then the file content.
func DetectMIME(path string) (string, error) {
	if t := mime.TypeByExtension(strings.ToLower(filepath.Ext(path))); t != "" {
		return stripParams(t), nil
	}
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return "", fmt.Errorf("detect type of %s: %w", filepath.Base(path), err)
	}
	return stripParams(mt.String()), nil
}

func stripParams(t string) string {
	if media, _, err := mime.ParseMediaType(t); err == nil {
		return media
	}
	if i := strings.IndexByte(t, ';'); i >= 0 {
		t = t[:i]
	}
	return strings.TrimSpace(t)
}

// Extract returns the text content of the file at path.
func (e *Extractor) Extract(ctx context.Context, path string) (Result, error) {
	name := filepath.Base(path)
	if _, err := os.Stat(path); err != nil {
		return Result{}, fmt.Errorf("open %s: %w", name, err)
	}

	mt, err := DetectMIME(path)
	if err != nil {
		return Result{}, err
	}
	res := Result{FileName: name, MIME: mt}

	switch {
	case isPlainText(mt):
		res.Text, err = e.readText(path)
	case strings.EqualFold(filepath.Ext(path), ".docx"):
		res.Text, err = extractDOCX(path)
	case mt == "application/pdf":
		res.Text, err = extractPDF(path)
	case strings.HasPrefix(mt, "image/"):
		res.Text, err = e.ocr(ctx, path)
	default:
		return Result{}, fmt.Errorf("%w: %s (%s)", ErrUnsupported, name, mt)
	}
	if err != nil {
		return Result{}, fmt.Errorf("extract %s: %w", name, err)
	}
	return res, nil
}

func isPlainText(mt string) bool {
	switch mt {
	case "text/plain", "text/markdown", "text/x-markdown", "text/csv":
		return true
	}
	return false
}

func (e *Extractor) readText(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	limit := e.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxBytes
	}
	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return "", err
	}
	if int64(len(data)) > limit {
		return "", fmt.Errorf("%w: %s is larger than %d bytes", ErrTooLarge, filepath.Base(path), limit)
	}
	return string(data), nil
}

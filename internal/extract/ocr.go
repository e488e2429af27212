// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ocr runs `tesseract <image> stdout` and returns the recognized text.
func (e *Extractor) ocr(ctx context.Context, path string) (string, error) {
	bin := e.OCRCommand
	if bin == "" {
		bin = "tesseract"
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, path, "stdout")
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", fmt.Errorf("OCR unavailable: %s not found in PATH", bin)
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("ocr: %w: %s", err, msg)
		}
		return "", fmt.Errorf("ocr: %w", err)
	}
	return strings.TrimSpace(stdout.String()), nil
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package extract

import (
	"archive/zip"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	return path
}

func writeZip(t *testing.T, name string, files map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	zw := zip.NewWriter(f)
	for n, content := range files {
		w, err := zw.Create(n)
		if err != nil {
			t.Fatalf("zip Create failed: %v", err)
		}
		w.Write([]byte(content))
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip Close failed: %v", err)
	}
	f.Close()
	return path
}

const documentXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Quarterly</w:t></w:r><w:r><w:t xml:space="preserve"> report</w:t></w:r></w:p>
    <w:p><w:r><w:t>a</w:t><w:tab/><w:t>b</w:t><w:br/><w:t>c</w:t></w:r></w:p>
  </w:body>
</w:document>`

func TestExtract_PlainText(t *testing.T) {
	path := writeFile(t, "notes.txt", []byte("hello\nworld"))

	res, err := New().Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if res.Text != "hello\nworld" {
		t.Errorf("Text = %q", res.Text)
	}
	if res.FileName != "notes.txt" {
		t.Errorf("FileName = %q", res.FileName)
	}
}

func TestExtract_PlainTextLimit(t *testing.T) {
	path := writeFile(t, "big.txt", []byte(strings.Repeat("x", 100)))

	e := New()
	e.MaxBytes = 10
	_, err := e.Extract(context.Background(), path)
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("Extract error = %v, want ErrTooLarge", err)
	}

	e.MaxBytes = 100
	res, err := e.Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("Extract at the cap failed: %v", err)
	}
	if len(res.Text) != 100 {
		t.Errorf("len(Text) = %d, want 100", len(res.Text))
	}
}

func TestExtract_DOCX(t *testing.T) {
	path := writeZip(t, "report.docx", map[string]string{
		"[Content_Types].xml": `<?xml version="1.0"?><Types/>`,
		"word/document.xml":   documentXML,
	})

	res, err := New().Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	want := "Quarterly report\n\na\tb\nc"
	if res.Text != want {
		t.Errorf("Text = %q, want %q", res.Text, want)
	}
}

func TestExtract_DOCXWithoutBody(t *testing.T) {
	path := writeZip(t, "empty.docx", map[string]string{"other.xml": "<x/>"})

	if _, err := New().Extract(context.Background(), path); err == nil {
		t.Error("expected error for docx without document.xml")
	}
}

func TestExtract_ZipUnsupported(t *testing.T) {
	path := writeZip(t, "archive.zip", map[string]string{"a.txt": "a"})

	_, err := New().Extract(context.Background(), path)
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("Extract error = %v, want ErrUnsupported", err)
	}
	if !strings.Contains(err.Error(), "application/zip") {
		t.Errorf("error %q should name the type", err)
	}
}

func TestExtract_MalformedPDF(t *testing.T) {
	path := writeFile(t, "broken.pdf", []byte("%PDF-1.4\nthis is not a pdf"))

	_, err := New().Extract(context.Background(), path)
	if err == nil {
		t.Fatal("expected error for malformed pdf")
	}
	if errors.Is(err, ErrUnsupported) {
		t.Errorf("malformed pdf should be an extraction failure, got %v", err)
	}
}

func TestExtract_MissingFile(t *testing.T) {
	_, err := New().Extract(context.Background(), filepath.Join(t.TempDir(), "nope.txt"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error = %v, want ErrNotExist", err)
	}
}

func TestExtract_ImageOCR(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script stand-in for tesseract")
	}
	script := writeFile(t, "fake-tesseract", []byte("#!/bin/sh\necho \"text from $(basename $1) to $2\"\n"))
	if err := os.Chmod(script, 0700); err != nil {
		t.Fatal(err)
	}
	img := writeFile(t, "scan.png", []byte("\x89PNG\r\n\x1a\n"))

	e := New()
	e.OCRCommand = script
	res, err := e.Extract(context.Background(), img)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if res.Text != "text from scan.png to stdout" {
		t.Errorf("Text = %q", res.Text)
	}
	if res.MIME != "image/png" {
		t.Errorf("MIME = %q", res.MIME)
	}
}

func TestExtract_OCRMissingBinary(t *testing.T) {
	img := writeFile(t, "scan.png", []byte("\x89PNG\r\n\x1a\n"))

	e := New()
	e.OCRCommand = "agentdesk-no-such-ocr-binary"
	_, err := e.Extract(context.Background(), img)
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("error = %v, want not found", err)
	}
}

func TestDetectMIME_SniffsUnknownExtension(t *testing.T) {
	path := writeFile(t, "README", []byte("plain words only\n"))

	mt, err := DetectMIME(path)
	if err != nil {
		t.Fatalf("DetectMIME failed: %v", err)
	}
	if mt != "text/plain" {
		t.Errorf("DetectMIME = %q, want text/plain", mt)
	}
}

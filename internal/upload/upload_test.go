package upload

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

// fileHeader builds a real multipart.FileHeader by round-tripping a form
// through the HTTP multipart reader.
func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("documents", name)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write(content); err != nil {
		t.Fatalf("write: %v", err)
	}
	_ = mw.Close()

	req := httptest.NewRequest("POST", "/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if err := req.ParseMultipartForm(32 << 20); err != nil {
		t.Fatalf("parse form: %v", err)
	}
	return req.MultipartForm.File["documents"][0]
}

func TestEnsureDirs(t *testing.T) {
	base := t.TempDir()
	uploadDir := filepath.Join(base, "uploads")
	qrDir := filepath.Join(base, "qr-codes")
	logDir := filepath.Join(base, "logs")

	if err := EnsureDirs(uploadDir, qrDir, logDir); err != nil {
		t.Fatalf("ensure dirs: %v", err)
	}
	for _, dir := range []string{
		filepath.Join(uploadDir, "vehicles"),
		filepath.Join(uploadDir, "documents"),
		qrDir,
		logDir,
	} {
		if st, err := os.Stat(dir); err != nil || !st.IsDir() {
			t.Fatalf("directory %s missing: %v", dir, err)
		}
	}
	// Idempotent on a second run.
	if err := EnsureDirs(uploadDir, qrDir, logDir); err != nil {
		t.Fatalf("second ensure dirs: %v", err)
	}
}

func TestSaveDocument(t *testing.T) {
	dir := t.TempDir()
	if err := EnsureDirs(dir, filepath.Join(dir, "qr"), filepath.Join(dir, "logs")); err != nil {
		t.Fatalf("ensure dirs: %v", err)
	}

	fh := fileHeader(t, "history.pdf", []byte("contents"))
	stored, err := SaveDocument(dir, fh, 1024)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if stored == "history.pdf" {
		t.Fatal("client file name must not be used on disk")
	}
	if filepath.Ext(stored) != ".pdf" {
		t.Fatalf("extension not preserved: %q", stored)
	}
	b, err := os.ReadFile(filepath.Join(dir, "documents", stored))
	if err != nil || string(b) != "contents" {
		t.Fatalf("stored bytes: %q err=%v", b, err)
	}
}

func TestSaveDocument_RejectsOversize(t *testing.T) {
	dir := t.TempDir()
	if err := EnsureDirs(dir, filepath.Join(dir, "qr"), filepath.Join(dir, "logs")); err != nil {
		t.Fatalf("ensure dirs: %v", err)
	}

	fh := fileHeader(t, "big.bin", bytes.Repeat([]byte("x"), 2048))
	if _, err := SaveDocument(dir, fh, 1024); !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("oversize: got %v, want ErrFileTooLarge", err)
	}
	// Nothing may be left behind.
	entries, err := os.ReadDir(filepath.Join(dir, "documents"))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("partial file left on disk: %d entries", len(entries))
	}
}

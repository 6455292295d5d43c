// Package upload stores multipart file uploads on the local filesystem.
// Only metadata lives in the database; bytes go to the uploads directory
// under a generated name so client-supplied file names never touch disk
// paths.
package upload

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// ErrFileTooLarge is returned when an uploaded file exceeds the limit.
var ErrFileTooLarge = fmt.Errorf("file exceeds maximum upload size")

// EnsureDirs creates the runtime directories the app writes into. Called
// once at boot, mirrors the original deployment layout.
func EnsureDirs(uploadDir, qrDir, logDir string) error {
	for _, dir := range []string{
		filepath.Join(uploadDir, "vehicles"),
		filepath.Join(uploadDir, "documents"),
		qrDir,
		logDir,
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// SaveDocument writes one uploaded document under uploadDir/documents and
// returns the generated on-disk name. maxSize is enforced before any bytes
// are written; 0 disables the check.
func SaveDocument(uploadDir string, fh *multipart.FileHeader, maxSize int64) (storedName string, err error) {
	if maxSize > 0 && fh.Size > maxSize {
		return "", ErrFileTooLarge
	}
	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	ext := filepath.Ext(fh.Filename)
	if len(ext) > 10 {
		ext = ""
	}
	storedName = uuid.NewString() + ext
	dstPath := filepath.Join(uploadDir, "documents", storedName)
	dst, err := os.Create(dstPath)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	// Copy at most maxSize+1 bytes so a lying Content-Length cannot fill
	// the disk; anything beyond the limit aborts the save.
	var r io.Reader = src
	if maxSize > 0 {
		r = io.LimitReader(src, maxSize+1)
	}
	n, err := io.Copy(dst, r)
	if err != nil {
		_ = os.Remove(dstPath)
		return "", err
	}
	if maxSize > 0 && n > maxSize {
		_ = os.Remove(dstPath)
		return "", ErrFileTooLarge
	}
	return storedName, nil
}

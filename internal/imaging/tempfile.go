package imaging

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
)

// SecureTempFile is a temporary on-disk copy of an image that is
// overwritten with zeros and removed on Close. Files are created with
// owner-only permissions. Callers must defer Close so the content is
// erased on every exit path.
type SecureTempFile struct {
	path   string
	size   int64
	sha256 string
	closed bool
}

// NewSecureTempFile writes data to a fresh temp file under dir (or the
// system temp directory when dir is empty) with 0600 permissions.
func NewSecureTempFile(dir string, data []byte) (*SecureTempFile, error) {
	f, err := os.CreateTemp(dir, "pantryd-receipt-*")
	if err != nil {
		return nil, fmt.Errorf("creating temp file: %w", err)
	}
	if err := f.Chmod(0o600); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return nil, fmt.Errorf("restricting temp file permissions: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return nil, fmt.Errorf("writing temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return nil, fmt.Errorf("closing temp file: %w", err)
	}

	sum := sha256.Sum256(data)
	return &SecureTempFile{
		path:   f.Name(),
		size:   int64(len(data)),
		sha256: hex.EncodeToString(sum[:]),
	}, nil
}

// Path returns the on-disk location of the temp file.
func (t *SecureTempFile) Path() string { return t.path }

// SHA256 returns the hex digest of the file content.
func (t *SecureTempFile) SHA256() string { return t.sha256 }

// Size returns the file size in bytes.
func (t *SecureTempFile) Size() int64 { return t.size }

// Close overwrites the file content with zeros, then removes it.
// Close is idempotent.
func (t *SecureTempFile) Close() error {
	if t.closed {
		return nil
	}
	t.closed = true

	f, err := os.OpenFile(t.path, os.O_WRONLY, 0o600)
	if err != nil {
		// File may already be gone; removal below reports the real state.
		return os.Remove(t.path)
	}
	zeros := make([]byte, 32*1024)
	var written int64
	for written < t.size {
		n := t.size - written
		if n > int64(len(zeros)) {
			n = int64(len(zeros))
		}
		if _, err := f.Write(zeros[:n]); err != nil {
			break
		}
		written += n
	}
	_ = f.Sync()
	if err := f.Close(); err != nil {
		_ = os.Remove(t.path)
		return fmt.Errorf("closing temp file during erase: %w", err)
	}
	return os.Remove(t.path)
}

// Package safe provides the file helpers used to read code objects and to
// produce the .disassembly output.
package safe

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	cerrors "github.com/amdgpu-tools/disassembler/internal/errors"
)

// DefaultMaxFileSize is the default maximum input size for ReadAll (512MB).
const DefaultMaxFileSize = 512 << 20

// ReadOptions configures the behavior of ReadAll.
type ReadOptions struct {
	// MaxSize is the maximum allowed file size in bytes. Zero means DefaultMaxFileSize.
	MaxSize int64
	// AllowSymlinks allows reading through a symlink. Default is false.
	AllowSymlinks bool
}

// ReadAll reads a whole file into memory.
// It fails if the file cannot be opened or sized, if it is empty, not a
// regular file or larger than the limit, or if fewer bytes than its size
// could be read. All failures are classified as IO errors.
func ReadAll(path string, opts *ReadOptions) ([]byte, error) {
	if opts == nil {
		opts = &ReadOptions{}
	}
	maxSize := opts.MaxSize
	if maxSize == 0 {
		maxSize = DefaultMaxFileSize
	}

	cleanPath := filepath.Clean(path)

	// Check file info without following symlinks.
	info, err := os.Lstat(cleanPath)
	if err != nil {
		return nil, cerrors.IO("fail to read file", err)
	}

	if info.Mode()&os.ModeSymlink != 0 && !opts.AllowSymlinks {
		return nil, cerrors.IO("fail to read file", fmt.Errorf("%q is a symlink, which is not allowed", path))
	}

	// #nosec G304 - the path is the user's explicit input.
	f, err := os.Open(cleanPath)
	if err != nil {
		return nil, cerrors.IO("fail to read file", err)
	}
	defer func() { _ = f.Close() }()

	info, err = f.Stat()
	if err != nil {
		return nil, cerrors.IO("fail to read file", err)
	}
	if !info.Mode().IsRegular() {
		return nil, cerrors.IO("fail to read file", fmt.Errorf("%q is not a regular file", path))
	}

	size, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, cerrors.IO("fail to read file", fmt.Errorf("seek %q: %w", path, err))
	}
	if size <= 0 {
		return nil, cerrors.IO("fail to read file", fmt.Errorf("%q is empty", path))
	}
	if size > maxSize {
		return nil, cerrors.IO("fail to read file", fmt.Errorf("file exceeds maximum allowed size of %d bytes", maxSize))
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, cerrors.IO("fail to read file", fmt.Errorf("seek %q: %w", path, err))
	}

	buf := make([]byte, size)
	n, err := io.ReadFull(f, buf)
	if err != nil {
		return nil, cerrors.IO("fail to read file", fmt.Errorf("short read on %q: got %d of %d bytes: %w", path, n, size, err))
	}

	return buf, nil
}

// WriteFile truncates path and writes p to it in a single call.
// It returns the number of bytes written.
func WriteFile(path string, p []byte) (int, error) {
	// #nosec G304 - output path is derived from the user's input path.
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, cerrors.IO("write file", err)
	}

	n, err := f.Write(p)
	if err != nil {
		_ = f.Close()
		return n, cerrors.IO("write file", err)
	}
	if err := f.Close(); err != nil {
		return n, cerrors.IO("write file", err)
	}

	return n, nil
}

// AppendFile opens path in append mode, writes p, flushes and closes the
// file again. No handle is kept between calls, so every byte that was
// reported written is already on disk when the next call starts.
func AppendFile(path string, p []byte) (int, error) {
	// #nosec G304 - output path is derived from the user's input path.
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return 0, cerrors.IO("append file", err)
	}

	n, err := f.Write(p)
	if err != nil {
		_ = f.Close()
		return n, cerrors.IO("append file", err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return n, cerrors.IO("append file", err)
	}
	if err := f.Close(); err != nil {
		return n, cerrors.IO("append file", err)
	}

	return n, nil
}

// Appender is an io.Writer that appends every Write to a fixed file.
type Appender struct {
	path string
}

// NewAppender returns an Appender for path. The file is created on the first Write.
func NewAppender(path string) *Appender {
	return &Appender{path: path}
}

// Path returns the file the Appender writes to.
func (a *Appender) Path() string {
	return a.path
}

// Write implements io.Writer.
func (a *Appender) Write(p []byte) (int, error) {
	return AppendFile(a.path, p)
}

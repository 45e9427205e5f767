package log

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// AuditFile is an io.WriteCloser for append-only call audit logs. When the
// file would exceed maxSize, it is renamed aside with a timestamp suffix
// and a fresh file is started; only the newest keep backups are retained.
//
// Timestamped backups rather than numbered shifting: audit segments get
// archived off-box by mtime, and renaming every segment on each rotation
// would break that.
type AuditFile struct {
	mu sync.Mutex

	path    string
	maxSize int64 // bytes
	keep    int

	file *os.File
	size int64
}

// NewAuditFile opens (or creates) the audit file at path. maxSize is in
// bytes; keep is the number of rotated segments to retain.
func NewAuditFile(path string, maxSize int64, keep int) (*AuditFile, error) {
	a := &AuditFile{
		path:    path,
		maxSize: maxSize,
		keep:    keep,
	}

	if err := a.open(); err != nil {
		return nil, err
	}

	return a, nil
}

func (a *AuditFile) open() error {
	if err := os.MkdirAll(filepath.Dir(a.path), 0750); err != nil {
		return fmt.Errorf("failed to create audit directory: %w", err)
	}

	// 0600: audit lines carry namespace paths and argument values
	f, err := os.OpenFile(a.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to open audit file: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to stat audit file: %w", err)
	}

	a.file = f
	a.size = info.Size()
	return nil
}

// Write implements io.Writer. It appends p, rotating first if the write
// would push the file over its size cap.
func (a *AuditFile) Write(p []byte) (n int, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.size+int64(len(p)) > a.maxSize && a.size > 0 {
		if err := a.rotate(); err != nil {
			return 0, fmt.Errorf("failed to rotate audit file: %w", err)
		}
	}

	n, err = a.file.Write(p)
	a.size += int64(n)
	return n, err
}

// rotate renames the current file aside and opens a fresh one.
// Must be called with mu locked.
func (a *AuditFile) rotate() error {
	if a.file != nil {
		if err := a.file.Close(); err != nil {
			return err
		}
		a.file = nil
	}

	backup := fmt.Sprintf("%s.%s", a.path, time.Now().UTC().Format("20060102T150405.000000000"))
	if err := os.Rename(a.path, backup); err != nil {
		return fmt.Errorf("failed to archive audit file: %w", err)
	}

	if err := a.prune(); err != nil {
		return err
	}

	return a.open()
}

// prune removes the oldest rotated segments beyond the keep count. The
// timestamp suffix sorts lexically, so name order is age order.
func (a *AuditFile) prune() error {
	matches, err := filepath.Glob(a.path + ".*")
	if err != nil {
		return fmt.Errorf("failed to list audit backups: %w", err)
	}
	if len(matches) <= a.keep {
		return nil
	}

	sort.Strings(matches)
	for _, old := range matches[:len(matches)-a.keep] {
		if err := os.Remove(old); err != nil {
			return fmt.Errorf("failed to prune audit backup: %w", err)
		}
	}
	return nil
}

// Close implements io.Closer.
func (a *AuditFile) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.file == nil {
		return nil
	}

	err := a.file.Close()
	a.file = nil
	return err
}

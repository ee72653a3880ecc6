// Package filelock provides cross-platform advisory file locks with both
// exclusive and shared modes, non-blocking and blocking acquisition, and
// release-on-close semantics. It backs the per-job exclusion lock and the
// queue ticket wait protocol.
package filelock

import "os"

// Lock is an advisory lock on the file at Path. The zero value is not
// usable; construct one with New.
type Lock struct {
	path string
	file *os.File
}

// New returns a Lock for the file at path. The file is created on first
// acquisition attempt if it does not already exist.
func New(path string) *Lock {
	return &Lock{path: path}
}

// Path returns the path this lock guards.
func (l *Lock) Path() string {
	return l.path
}

// Held reports whether this Lock instance currently holds an open,
// locked file descriptor.
func (l *Lock) Held() bool {
	return l.file != nil
}

func (l *Lock) open() (*os.File, error) {
	if l.file != nil {
		return l.file, nil
	}
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// Unlock releases the lock and closes the underlying descriptor. It does
// not remove the file; callers that want ticket-style cleanup do that
// themselves via os.Remove. Unlock on an unheld Lock is a no-op.
func (l *Lock) Unlock() error {
	if l.file == nil {
		return nil
	}
	err := unlockFile(l.file)
	closeErr := l.file.Close()
	l.file = nil
	if err != nil {
		return err
	}
	return closeErr
}

//go:build windows

package filelock

import (
	"os"

	"golang.org/x/sys/windows"
)

const allBytesHigh = ^uint32(0)
const allBytesLow = ^uint32(0)

func lockFileEx(f *os.File, flags uint32) error {
	ol := new(windows.Overlapped)
	return windows.LockFileEx(windows.Handle(f.Fd()), flags, 0, allBytesLow, allBytesHigh, ol)
}

// TryLock attempts to acquire a non-blocking exclusive lock. It returns
// false, nil if another holder already has the lock.
func (l *Lock) TryLock() (bool, error) {
	f, err := l.open()
	if err != nil {
		return false, err
	}
	flags := uint32(windows.LOCKFILE_EXCLUSIVE_LOCK | windows.LOCKFILE_FAIL_IMMEDIATELY)
	if err := lockFileEx(f, flags); err != nil {
		f.Close()
		if err == windows.ERROR_LOCK_VIOLATION {
			return false, nil
		}
		return false, err
	}
	l.file = f
	return true, nil
}

// TryLockShared attempts to acquire a non-blocking shared lock.
func (l *Lock) TryLockShared() (bool, error) {
	f, err := l.open()
	if err != nil {
		return false, err
	}
	flags := uint32(windows.LOCKFILE_FAIL_IMMEDIATELY)
	if err := lockFileEx(f, flags); err != nil {
		f.Close()
		if err == windows.ERROR_LOCK_VIOLATION {
			return false, nil
		}
		return false, err
	}
	l.file = f
	return true, nil
}

// LockShared acquires a shared lock, blocking until any exclusive holder
// releases it.
func (l *Lock) LockShared() error {
	f, err := l.open()
	if err != nil {
		return err
	}
	if err := lockFileEx(f, 0); err != nil {
		f.Close()
		return err
	}
	l.file = f
	return nil
}

func unlockFile(f interface{ Fd() uintptr }) error {
	ol := new(windows.Overlapped)
	return windows.UnlockFileEx(windows.Handle(f.Fd()), 0, allBytesLow, allBytesHigh, ol)
}

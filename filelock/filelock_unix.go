//go:build !windows

package filelock

import "syscall"

// TryLock attempts to acquire a non-blocking exclusive lock. It returns
// false, nil if another holder already has the lock.
func (l *Lock) TryLock() (bool, error) {
	f, err := l.open()
	if err != nil {
		return false, err
	}
	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		f.Close()
		if err == syscall.EWOULDBLOCK {
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
	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_SH|syscall.LOCK_NB); err != nil {
		f.Close()
		if err == syscall.EWOULDBLOCK {
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
	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_SH); err != nil {
		f.Close()
		return err
	}
	l.file = f
	return nil
}

func unlockFile(f interface{ Fd() uintptr }) error {
	return syscall.Flock(int(f.Fd()), syscall.LOCK_UN)
}

//go:build unix

package extract

import (
	"errors"

	"golang.org/x/sys/unix"
)

// Network shares mounted over SMB report a file Excel holds open as busy.
func isLockErrno(err error) bool {
	return errors.Is(err, unix.EBUSY) ||
		errors.Is(err, unix.ETXTBSY) ||
		errors.Is(err, unix.EWOULDBLOCK)
}

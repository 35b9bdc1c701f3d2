package extract

import (
	"errors"
	"strings"
)

// ErrLocked reports that a workbook is held open by another process.
var ErrLocked = errors.New("file is locked by another process")

// IsLocked reports whether err means the file is held by another process.
func IsLocked(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrLocked) || isLockErrno(err) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "being used by another process")
}

//go:build !windows

package pak

import (
	"errors"
	"time"
)

// errNoCreationTime signals that the host filesystem exposes no distinct
// creation time; callers fall back to the modification time instead.
var errNoCreationTime = errors.New("pak: creation time not supported on this platform")

// creationTime has no portable equivalent outside Windows; the packer
// falls back to the file's modification time.
func creationTime(path string) (time.Time, error) {
	return time.Time{}, errNoCreationTime
}

// setCreationTime is a no-op outside Windows: there is no creation time
// to restore.
func setCreationTime(path string, ft FileTime) error {
	return nil
}

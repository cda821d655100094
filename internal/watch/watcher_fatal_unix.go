// SPDX-License-Identifier: MPL-2.0

//go:build !windows

package watch

import (
	"errors"
	"syscall"
)

// isFatalFsnotifyError reports errors after which no further events will
// arrive: the inotify watch limit (ENOSPC, see fs.inotify.max_user_watches)
// and file descriptor exhaustion (EMFILE per process, ENFILE system-wide).
func isFatalFsnotifyError(err error) bool {
	return errors.Is(err, syscall.ENOSPC) ||
		errors.Is(err, syscall.EMFILE) ||
		errors.Is(err, syscall.ENFILE)
}

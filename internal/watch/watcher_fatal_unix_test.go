// SPDX-License-Identifier: MPL-2.0

//go:build !windows

package watch

import (
	"fmt"
	"syscall"
	"testing"

	"github.com/fsnotify/fsnotify"
)

func TestIsFatalFsnotifyError_Unix(t *testing.T) {
	t.Parallel()

	for _, err := range []error{
		syscall.ENOSPC,
		syscall.EMFILE,
		syscall.ENFILE,
		fmt.Errorf("add watch for models/: %w", syscall.ENOSPC),
	} {
		if !isFatalFsnotifyError(err) {
			t.Errorf("%v should stop the watcher", err)
		}
	}

	for _, err := range []error{
		syscall.EACCES,
		syscall.ENOENT,
		fsnotify.ErrEventOverflow,
		fmt.Errorf("read events: %w", fsnotify.ErrEventOverflow),
	} {
		if isFatalFsnotifyError(err) {
			t.Errorf("%v should be logged and skipped", err)
		}
	}
}

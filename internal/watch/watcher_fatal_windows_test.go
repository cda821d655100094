// SPDX-License-Identifier: MPL-2.0

//go:build windows

package watch

import (
	"fmt"
	"syscall"
	"testing"

	"github.com/fsnotify/fsnotify"
)

func TestIsFatalFsnotifyError_Windows(t *testing.T) {
	t.Parallel()

	for _, err := range []error{
		errnoTooManyOpenFiles,
		errnoInvalidHandle,
		errnoNotEnoughMemory,
		fmt.Errorf("watch models: %w", errnoInvalidHandle),
	} {
		if !isFatalFsnotifyError(err) {
			t.Errorf("%v should stop the watcher", err)
		}
	}

	for _, err := range []error{
		syscall.Errno(5), // ERROR_ACCESS_DENIED
		fsnotify.ErrEventOverflow,
	} {
		if isFatalFsnotifyError(err) {
			t.Errorf("%v should be logged and skipped", err)
		}
	}
}

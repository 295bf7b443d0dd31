//go:build !windows

package ops

import (
	stderrors "errors"
	"syscall"
)

// noFollowFlag makes open fail with ELOOP when the final component is a symlink.
const noFollowFlag = syscall.O_NOFOLLOW

func isSymlinkLoop(err error) bool {
	return stderrors.Is(err, syscall.ELOOP)
}

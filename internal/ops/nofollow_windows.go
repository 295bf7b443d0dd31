//go:build windows

package ops

// Windows has no O_NOFOLLOW; ResolvePath's Lstat check is the only guard.
const noFollowFlag = 0

func isSymlinkLoop(error) bool { return false }

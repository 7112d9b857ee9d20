//go:build unix

package process

import (
	"os"
	"slices"
	"strconv"

	"golang.org/x/sys/unix"
)

// fallbackMaxFDs bounds the descriptor scan when no fd directory exists and
// RLIMIT_NOFILE is unlimited or very large.
const fallbackMaxFDs = 1 << 16

// fdState reports whether fd is open and whether it survives exec.
func fdState(fd int) (open, inheritable bool) {
	flags, err := unix.FcntlInt(uintptr(fd), unix.F_GETFD, 0)
	if err != nil {
		return false, false
	}
	return true, flags&unix.FD_CLOEXEC == 0
}

// openDescriptors lists the open descriptors of this process in ascending
// order. Without an fd directory it returns every number below the soft
// RLIMIT_NOFILE.
func openDescriptors() ([]int, error) {
	for _, dir := range []string{"/proc/self/fd", "/dev/fd"} {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		fds := make([]int, 0, len(entries))
		for _, e := range entries {
			fd, err := strconv.Atoi(e.Name())
			if err != nil {
				continue
			}
			fds = append(fds, fd)
		}
		slices.Sort(fds)
		return fds, nil
	}

	var rl unix.Rlimit
	if err := unix.Getrlimit(unix.RLIMIT_NOFILE, &rl); err != nil {
		return nil, os.NewSyscallError("getrlimit", err)
	}
	limit := int(fallbackMaxFDs)
	if rl.Cur < fallbackMaxFDs {
		limit = int(rl.Cur)
	}
	fds := make([]int, limit)
	for i := range fds {
		fds[i] = i
	}
	return fds, nil
}

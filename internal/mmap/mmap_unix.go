//go:build unix

package mmap

import (
	"os"

	"golang.org/x/sys/unix"
)

func osMap(f *os.File, size int) ([]byte, error) {
	return unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ, unix.MAP_SHARED)
}

func osUnmap(data []byte) error {
	return unix.Munmap(data)
}

func osAdvise(data []byte, pattern AccessPattern) error {
	var advice int
	switch pattern {
	case AccessSequential:
		advice = unix.MADV_SEQUENTIAL
	case AccessRandom:
		advice = unix.MADV_RANDOM
	case AccessWillNeed:
		advice = unix.MADV_WILLNEED
	default:
		advice = unix.MADV_NORMAL
	}

	err := unix.Madvise(data, advice)
	if err == unix.EINVAL {
		// Linux requires page-aligned addresses; the hint is advisory, so
		// an alignment refusal is not worth surfacing.
		return nil
	}
	return err
}

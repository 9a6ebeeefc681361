// Verified unsafe operations with runtime safety checks.
package flatvec

import (
	"errors"
	"fmt"
	"runtime"
	"unsafe"
)

var (
	// ErrUnsupportedArchitecture is returned when running on unsupported CPU architecture
	ErrUnsupportedArchitecture = errors.New("unsupported architecture: only amd64 and arm64 are supported")

	// ErrBigEndian is returned when running on big-endian systems
	ErrBigEndian = errors.New("big-endian systems are not supported")

	// ErrUnalignedAccess is returned when attempting unaligned memory access
	ErrUnalignedAccess = errors.New("unaligned memory access detected")
)

// init performs startup validation of platform requirements. The encoded
// form of a scalar slot is its little-endian byte image, so the package
// refuses to run where a plain memory copy would not produce that image.
func init() {
	if err := validatePlatform(); err != nil {
		panic(fmt.Sprintf("flatvec: %v", err))
	}
}

// validatePlatform checks if the current platform supports unsafe operations
func validatePlatform() error {
	arch := runtime.GOARCH
	if arch != "amd64" && arch != "arm64" {
		return fmt.Errorf("%w: %s", ErrUnsupportedArchitecture, arch)
	}

	if !isLittleEndian() {
		return ErrBigEndian
	}

	return nil
}

// isLittleEndian checks if the system is little-endian
func isLittleEndian() bool {
	var test uint16 = 0x0001
	firstByte := *(*byte)(unsafe.Pointer(&test))
	return firstByte == 1
}

// validateAlignment checks that p is aligned to align bytes before it is
// reinterpreted as a typed window.
func validateAlignment(p unsafe.Pointer, align int) error {
	if uintptr(p)%uintptr(align) != 0 {
		return fmt.Errorf("%w: %d-byte alignment required at address 0x%x", ErrUnalignedAccess, align, uintptr(p))
	}
	return nil
}

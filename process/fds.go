package process

import (
	"math"

	"github.com/kbukum/subprocess/errors"
)

const badFDsMessage = "bad value(s) in fds_to_keep"

// FDSequenceInvalid reports whether values is not a usable fds_to_keep
// sequence: every element must be an integer in [0, maxFD] and no element
// may be lower than its predecessor. Equal neighbours are allowed and an
// empty sequence is valid.
func FDSequenceInvalid(values []any, maxFD int64) bool {
	prev := int64(-1)
	for _, v := range values {
		fd, ok := toFD(v)
		if !ok || fd < 0 || fd > maxFD || fd < prev {
			return true
		}
		prev = fd
	}
	return false
}

// CheckFDsToKeep validates an already typed fds_to_keep sequence.
func CheckFDsToKeep(fds []int, maxFD int64) error {
	prev := -1
	for _, fd := range fds {
		if fd < 0 || int64(fd) > maxFD || fd < prev {
			return errors.InvalidInput("fds_to_keep", badFDsMessage)
		}
		prev = fd
	}
	return nil
}

// toFD converts an integer value of any width to int64. Unsigned values
// above math.MaxInt64 are reported as not representable.
func toFD(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return uintToFD(uint64(n))
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return uintToFD(n)
	case uintptr:
		return uintToFD(uint64(n))
	default:
		return 0, false
	}
}

func uintToFD(n uint64) (int64, bool) {
	if n > math.MaxInt64 {
		return 0, false
	}
	return int64(n), true
}

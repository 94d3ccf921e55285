// Package bitpackplus implements value transforms in front of a fixed-width
// uint32 bit packer.
//
// A BitPacker serializes one block of BlockLen integers at a single bit width.
// It only compresses well when every value in the block is small. The formats
// in this package remap a block first so that it does:
//
//   - Vanilla: no transform, values are packed as they are.
//   - M1: 1 is subtracted from every value before packing. All values must be
//     positive. Useful for 1-based identifiers whose maximum sits on a power of two.
//   - D1: the difference between consecutive values is packed (the packer's
//     sorted mode). The block should be non-decreasing. This is NOT checked;
//     a descending step wraps around and inflates the bit width to 32.
//   - D1Z: the difference between consecutive values is zigzag encoded before
//     packing, so runs that are close but not fully sorted stay small.
//
// Packed blocks carry no header. The bit width and, for D1/D1Z, the initial
// value (the logical predecessor of the first element) must be stored by the
// caller alongside the bytes. Codec.Pack* always uses the block's own first
// element as the initial value.
//
// All codec operations are synchronous and allocate at most one block-sized
// scratch buffer. The package maintains no mutable state after init, so
// independent buffers can be processed concurrently.
package bitpackplus

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// MaxBitWidth is the widest bit width a uint32 can need.
	MaxBitWidth = 32

	// mathMaxUint32 is the maximum uint32, used while constructing bit masks without conversions.
	mathMaxUint32 = ^uint32(0)
)

// Format selects the transform applied around the packer.
type Format uint8

const (
	Vanilla Format = iota
	M1
	D1
	D1Z
)

var formatNames = [...]string{
	Vanilla: "vanilla",
	M1:      "m1",
	D1:      "d1",
	D1Z:     "d1z",
}

func (f Format) String() string {
	if int(f) < len(formatNames) {
		return formatNames[f]
	}
	return fmt.Sprintf("Format(%d)", uint8(f))
}

// IsDelta reports whether unpacking the format needs the initial value.
func (f Format) IsDelta() bool {
	return f == D1 || f == D1Z
}

// ParseFormat returns the format with the given (case-insensitive) name.
func ParseFormat(name string) (Format, error) {
	for f, n := range formatNames {
		if strings.EqualFold(n, name) {
			return Format(f), nil
		}
	}
	return 0, fmt.Errorf("bitpackplus: unknown format %q", name)
}

var (
	// ErrInvalidValue is returned when a value violates a transform's domain,
	// e.g. a zero passed to the M1 transform.
	ErrInvalidValue = errors.New("bitpackplus: invalid value")

	// ErrInvalidBitWidth is returned for bit widths outside the accepted range.
	// Unpacking never accepts 0.
	ErrInvalidBitWidth = errors.New("bitpackplus: invalid bit width")

	// ErrBitWidthTooSmall is returned when an explicit bit width cannot hold
	// every (transformed) value of the block.
	ErrBitWidthTooSmall = errors.New("bitpackplus: bit width too small")

	// ErrLengthMismatch is returned when source and destination lengths disagree
	// or a block does not have the packer's block length.
	ErrLengthMismatch = errors.New("bitpackplus: length mismatch")

	// ErrBufferTooSmall is returned when a byte buffer cannot hold or does not
	// contain a full packed block.
	ErrBufferTooSmall = errors.New("bitpackplus: buffer too small")

	// ErrInvalidBuffer is returned when stream metadata is malformed.
	ErrInvalidBuffer = errors.New("bitpackplus: invalid buffer")
)

// ValueError reports the first element that violates a transform's domain.
type ValueError struct {
	Index int
	Value uint32
	// Reason is a short human readable explanation.
	Reason string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("%v: %s (index %d, value %d)", ErrInvalidValue, e.Reason, e.Index, e.Value)
}

func (e *ValueError) Unwrap() error {
	return ErrInvalidValue
}

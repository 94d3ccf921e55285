package bitpackplus

import (
	"errors"
	"slices"
)

// Reader provides random and sequential access to the values of a Stream.
// The stream is decoded once on Load.
// A Reader is not safe for concurrent use. Create multiple readers from
// the same stream if concurrent access is needed.
type Reader struct {
	// values holds the decoded stream
	values []uint32

	// pos is the current position for sequential iteration (0-based)
	pos int

	// isSorted indicates the decoded values are non-decreasing
	isSorted bool

	// loaded indicates if the reader has been loaded with data
	loaded bool
}

// ErrNotLoaded is returned when operations are called before Load().
var ErrNotLoaded = errors.New("bitpackplus: reader not loaded")

// ErrPositionOutOfRange is returned when accessing a position beyond the stream length.
var ErrPositionOutOfRange = errors.New("bitpackplus: position out of range")

// NewReader creates an empty Reader that must be loaded with Load() before use.
func NewReader() *Reader {
	return &Reader{}
}

// Load decodes s with ops into the reader.
// This resets all internal state and can be called multiple times to reuse the reader.
// On error the reader is left unloaded.
func (r *Reader) Load(ops BitPackOps, s *Stream) error {
	r.loaded = false
	values, err := s.Decode(ops, r.values)
	if err != nil {
		return err
	}
	r.values = values
	r.isSorted = slices.IsSorted(values)
	r.pos = 0
	r.loaded = true
	return nil
}

// IsLoaded returns whether the reader has been loaded with data.
func (r *Reader) IsLoaded() bool {
	return r.loaded
}

// Len returns the number of values.
func (r *Reader) Len() int {
	if !r.loaded {
		return 0
	}
	return len(r.values)
}

// Pos returns the current position for sequential iteration.
func (r *Reader) Pos() int {
	return r.pos
}

// Reset resets the reader position to the beginning for sequential iteration.
func (r *Reader) Reset() {
	r.pos = 0
}

// Get returns the value at the specified position.
func (r *Reader) Get(pos int) (uint32, error) {
	if !r.loaded {
		return 0, ErrNotLoaded
	}
	if pos < 0 || pos >= len(r.values) {
		return 0, ErrPositionOutOfRange
	}
	return r.values[pos], nil
}

// GetSafe returns the value at the specified position and whether the position is valid.
func (r *Reader) GetSafe(pos int) (uint32, bool) {
	val, err := r.Get(pos)
	return val, err == nil
}

// Next returns the next value in sequence and its position.
// Returns (0, 0, false) if not loaded or no more elements.
func (r *Reader) Next() (value uint32, pos int, ok bool) {
	if !r.loaded || r.pos >= len(r.values) {
		return 0, 0, false
	}
	value, pos = r.values[r.pos], r.pos
	r.pos++
	return value, pos, true
}

// SkipTo advances to and returns the first value >= req at or after the
// current position. Sorted data is searched with binary search, anything else
// (e.g. D1Z sawtooth patterns) with a linear scan.
func (r *Reader) SkipTo(req uint32) (value uint32, pos int, ok bool) {
	if !r.loaded || r.pos >= len(r.values) {
		return 0, 0, false
	}
	if r.isSorted {
		idx, _ := slices.BinarySearch(r.values[r.pos:], req)
		abs := r.pos + idx
		if abs >= len(r.values) {
			r.pos = len(r.values)
			return 0, 0, false
		}
		r.pos = abs + 1
		return r.values[abs], abs, true
	}
	for r.pos < len(r.values) {
		v, p := r.values[r.pos], r.pos
		r.pos++
		if v >= req {
			return v, p, true
		}
	}
	return 0, 0, false
}

// Decode copies all decoded values into the provided destination slice.
// If dst has insufficient capacity, a new slice is allocated.
// Returns nil if the reader is not loaded.
func (r *Reader) Decode(dst []uint32) []uint32 {
	if !r.loaded {
		return nil
	}
	if cap(dst) < len(r.values) {
		dst = make([]uint32, len(r.values))
	} else {
		dst = dst[:len(r.values)]
	}
	copy(dst, r.values)
	return dst
}

// IsSorted returns whether the decoded values are non-decreasing.
func (r *Reader) IsSorted() bool {
	return r.isSorted
}

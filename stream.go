package bitpackplus

import (
	"fmt"

	"github.com/mhr3/streamvbyte"
)

// BlockInfo is the out-of-band metadata of one packed block. Packed blocks
// carry no header, so it must be persisted next to the block bytes.
type BlockInfo struct {
	// BitWidth is the width the block was packed with (1-32).
	BitWidth uint8
	// Initial is the block's first value, needed to unpack D1/D1Z blocks.
	Initial uint32
	// Offset is the start of the block in Stream.Data.
	Offset int
}

// Stream holds a sequence of arbitrary length: whole blocks packed with one
// format, plus the trailing values that do not fill a block, which are stored
// StreamVByte encoded.
//
// A Stream can only be decoded with a codec of the same block length.
type Stream struct {
	Format   Format
	BlockLen int
	Blocks   []BlockInfo
	Data     []byte
	// Tail holds the last TailLen values in StreamVByte format.
	Tail    []byte
	TailLen int
}

// EncodeStream splits values into blocks of ops.BlockLen(), packs each block
// with the format f at its own auto-detected width and encodes the remaining
// values with StreamVByte.
//
// For M1 every value, including the tail, must be positive. For D1 each block
// must be non-decreasing, which is not checked.
func EncodeStream(ops BitPackOps, f Format, values []uint32) (*Stream, error) {
	if f > D1Z {
		return nil, fmt.Errorf("bitpackplus: unknown format %v", f)
	}
	if f == M1 {
		if err := checkPositive(values); err != nil {
			return nil, err
		}
	}
	blockLen := ops.BlockLen()
	full := len(values) / blockLen
	s := &Stream{
		Format:   f,
		BlockLen: blockLen,
		Blocks:   make([]BlockInfo, 0, full),
	}

	buf := make([]byte, PackedLen(blockLen, MaxBitWidth))
	for b := 0; b < full; b++ {
		block := values[b*blockLen : (b+1)*blockLen]
		n, err := PackFormat(ops, f, block, buf, 0)
		if err != nil {
			return nil, fmt.Errorf("block %d: %w", b, err)
		}
		s.Blocks = append(s.Blocks, BlockInfo{
			BitWidth: ops.BitWidthOf(n),
			Initial:  block[0],
			Offset:   len(s.Data),
		})
		s.Data = append(s.Data, buf[:n]...)
	}

	if rest := values[full*blockLen:]; len(rest) > 0 {
		s.Tail = streamvbyte.EncodeUint32(rest, &streamvbyte.EncodeOptions[uint32]{
			Buffer: make([]byte, streamvbyte.MaxEncodedLen(len(rest))),
		})
		s.TailLen = len(rest)
	}
	return s, nil
}

// Len returns the number of values in the stream.
func (s *Stream) Len() int {
	return len(s.Blocks)*s.BlockLen + s.TailLen
}

// CompressedBytes returns the size of the packed blocks and the tail. The
// per-block metadata is not included.
func (s *Stream) CompressedBytes() int {
	return len(s.Data) + len(s.Tail)
}

// Decode decodes the whole stream into dst, which is resized as needed, and
// returns it.
func (s *Stream) Decode(ops BitPackOps, dst []uint32) ([]uint32, error) {
	if err := s.validate(ops); err != nil {
		return nil, err
	}
	n := s.Len()
	if cap(dst) < n {
		dst = make([]uint32, n)
	} else {
		dst = dst[:n]
	}
	for b := range s.Blocks {
		if err := s.decodeBlock(ops, b, dst[b*s.BlockLen:(b+1)*s.BlockLen]); err != nil {
			return nil, err
		}
	}
	if s.TailLen > 0 {
		tailDst := dst[len(s.Blocks)*s.BlockLen:]
		tail := streamvbyte.DecodeUint32(s.Tail, s.TailLen, &streamvbyte.DecodeOptions[uint32]{
			Buffer: tailDst,
		})
		copy(tailDst, tail)
	}
	return dst, nil
}

// At returns the value at position i, decoding only the block that holds it.
// scratch is used to decode the block and is allocated if shorter than
// BlockLen.
func (s *Stream) At(ops BitPackOps, i int, scratch []uint32) (uint32, error) {
	if err := s.validate(ops); err != nil {
		return 0, err
	}
	if i < 0 || i >= s.Len() {
		return 0, fmt.Errorf("%w: %d (len %d)", ErrPositionOutOfRange, i, s.Len())
	}
	b := i / s.BlockLen
	if b >= len(s.Blocks) {
		return svbDecodeOne(s.Tail, s.TailLen, i-len(s.Blocks)*s.BlockLen), nil
	}
	if len(scratch) < s.BlockLen {
		scratch = make([]uint32, s.BlockLen)
	}
	if err := s.decodeBlock(ops, b, scratch); err != nil {
		return 0, err
	}
	return scratch[i%s.BlockLen], nil
}

func (s *Stream) decodeBlock(ops BitPackOps, b int, dst []uint32) error {
	info := s.Blocks[b]
	end := info.Offset + PackedLen(s.BlockLen, info.BitWidth)
	if info.Offset < 0 || end > len(s.Data) {
		return fmt.Errorf("%w: block %d spans [%d, %d) of %d data bytes",
			ErrInvalidBuffer, b, info.Offset, end, len(s.Data))
	}
	if _, err := UnpackFormat(ops, s.Format, info.Initial, s.Data[info.Offset:end], dst, info.BitWidth); err != nil {
		return fmt.Errorf("block %d: %w", b, err)
	}
	return nil
}

func (s *Stream) validate(ops BitPackOps) error {
	if blockLen := ops.BlockLen(); blockLen != s.BlockLen {
		return fmt.Errorf("%w: stream block length %d, codec block length %d",
			ErrLengthMismatch, s.BlockLen, blockLen)
	}
	if s.TailLen < 0 || s.TailLen >= s.BlockLen {
		return fmt.Errorf("%w: tail of %d values", ErrInvalidBuffer, s.TailLen)
	}
	if s.TailLen > 0 {
		need, ok := svbEncodedLen(s.Tail, s.TailLen)
		if !ok || len(s.Tail) < need {
			return fmt.Errorf("%w: tail truncated (%d values in %d bytes)",
				ErrInvalidBuffer, s.TailLen, len(s.Tail))
		}
	}
	return nil
}

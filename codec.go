package bitpackplus

import "fmt"

// BitPackOps is the packer-independent view of a Codec. Every method works on
// exactly one block of BlockLen values.
//
// Pack methods accept bitWidth 0 to detect the width automatically; the width
// actually used can be recovered from the returned byte count with
// BitWidthOf. Unpack methods require the concrete width used when packing,
// and the delta formats also need the initial value: Pack* uses the block's
// first element, which is therefore what UnpackD1/UnpackD1Z must be given.
type BitPackOps interface {
	BlockLen() int
	BitWidthOf(n int) uint8

	Pack(values []uint32, dst []byte, bitWidth uint8) (int, error)
	Unpack(src []byte, dst []uint32, bitWidth uint8) (int, error)

	PackM1(values []uint32, dst []byte, bitWidth uint8) (int, error)
	UnpackM1(src []byte, dst []uint32, bitWidth uint8) (int, error)

	PackD1(values []uint32, dst []byte, bitWidth uint8) (int, error)
	UnpackD1(initial uint32, src []byte, dst []uint32, bitWidth uint8) (int, error)

	PackD1Z(values []uint32, dst []byte, bitWidth uint8) (int, error)
	UnpackD1Z(initial uint32, src []byte, dst []uint32, bitWidth uint8) (int, error)
}

// Codec composes the value transforms with a BitPacker. It holds no mutable
// state; one Codec may be shared between goroutines.
type Codec[P BitPacker] struct {
	packer P
}

var (
	_ BitPackOps = (*Codec[BitPacker1x])(nil)
	_ BitPackOps = (*Codec[BitPacker4x])(nil)
	_ BitPackOps = (*Codec[BitPacker8x])(nil)
)

// New returns a Codec on top of packer.
func New[P BitPacker](packer P) *Codec[P] {
	return &Codec[P]{packer: packer}
}

// Packer returns the underlying packer.
func (c *Codec[P]) Packer() P {
	return c.packer
}

// BlockLen returns the packer's block length.
func (c *Codec[P]) BlockLen() int {
	return c.packer.BlockLen()
}

// BitWidthOf returns the bit width of a block that was packed into n bytes.
func (c *Codec[P]) BitWidthOf(n int) uint8 {
	return uint8(n * 8 / c.packer.BlockLen())
}

// Pack packs values unchanged and returns the number of bytes written.
func (c *Codec[P]) Pack(values []uint32, dst []byte, bitWidth uint8) (int, error) {
	if err := c.checkPackInput(values, bitWidth); err != nil {
		return 0, err
	}
	return c.packPlain(values, dst, bitWidth)
}

// Unpack reverses Pack and returns the number of bytes consumed.
func (c *Codec[P]) Unpack(src []byte, dst []uint32, bitWidth uint8) (int, error) {
	if err := c.checkUnpackInput(src, dst, bitWidth); err != nil {
		return 0, err
	}
	return c.packer.Decompress(src, dst, bitWidth), nil
}

// PackM1 packs values with 1 subtracted from each of them. values is left
// untouched; a zero value fails with a *ValueError.
func (c *Codec[P]) PackM1(values []uint32, dst []byte, bitWidth uint8) (int, error) {
	if err := c.checkPackInput(values, bitWidth); err != nil {
		return 0, err
	}
	scratch := make([]uint32, len(values))
	if err := VanillaToM1(scratch, values); err != nil {
		return 0, err
	}
	return c.packPlain(scratch, dst, bitWidth)
}

// UnpackM1 reverses PackM1 and returns the number of bytes consumed.
func (c *Codec[P]) UnpackM1(src []byte, dst []uint32, bitWidth uint8) (int, error) {
	n, err := c.Unpack(src, dst, bitWidth)
	if err != nil {
		return 0, err
	}
	if err := M1ToVanillaSelf(dst[:decodedLen(n, bitWidth)]); err != nil {
		return 0, err
	}
	return n, nil
}

// PackD1 packs the differences between consecutive values using the packer's
// sorted mode, seeded with values[0].
//
// values should be non-decreasing. This is not checked: differences wrap
// around, so an unsorted block still round-trips but needs up to 32 bits.
func (c *Codec[P]) PackD1(values []uint32, dst []byte, bitWidth uint8) (int, error) {
	if err := c.checkPackInput(values, bitWidth); err != nil {
		return 0, err
	}
	initial := values[0]
	width, err := resolveBitWidth(c.packer.NumBitsSorted(initial, values), bitWidth)
	if err != nil {
		return 0, err
	}
	if err := c.checkPackOutput(dst, width); err != nil {
		return 0, err
	}
	return c.packer.CompressSorted(initial, values, dst, width), nil
}

// UnpackD1 reverses PackD1. initial must be the first value of the packed
// block; it is not stored in src.
func (c *Codec[P]) UnpackD1(initial uint32, src []byte, dst []uint32, bitWidth uint8) (int, error) {
	if err := c.checkUnpackInput(src, dst, bitWidth); err != nil {
		return 0, err
	}
	return c.packer.DecompressSorted(initial, src, dst, bitWidth), nil
}

// PackD1Z packs the zigzag encoded differences between consecutive values,
// seeded with values[0]. values is left untouched.
func (c *Codec[P]) PackD1Z(values []uint32, dst []byte, bitWidth uint8) (int, error) {
	if err := c.checkPackInput(values, bitWidth); err != nil {
		return 0, err
	}
	scratch := make([]uint32, len(values))
	if err := VanillaToD1Z(scratch, values, values[0]); err != nil {
		return 0, err
	}
	return c.packPlain(scratch, dst, bitWidth)
}

// UnpackD1Z reverses PackD1Z. initial must be the first value of the packed
// block; it is not stored in src.
func (c *Codec[P]) UnpackD1Z(initial uint32, src []byte, dst []uint32, bitWidth uint8) (int, error) {
	n, err := c.Unpack(src, dst, bitWidth)
	if err != nil {
		return 0, err
	}
	D1ZToVanillaSelf(dst[:decodedLen(n, bitWidth)], initial)
	return n, nil
}

func (c *Codec[P]) packPlain(values []uint32, dst []byte, bitWidth uint8) (int, error) {
	width, err := resolveBitWidth(c.packer.NumBits(values), bitWidth)
	if err != nil {
		return 0, err
	}
	if err := c.checkPackOutput(dst, width); err != nil {
		return 0, err
	}
	return c.packer.Compress(values, dst, width), nil
}

func (c *Codec[P]) checkPackInput(values []uint32, bitWidth uint8) error {
	if bitWidth > MaxBitWidth {
		return fmt.Errorf("%w: %d (max %d)", ErrInvalidBitWidth, bitWidth, MaxBitWidth)
	}
	if blockLen := c.packer.BlockLen(); len(values) != blockLen {
		return fmt.Errorf("%w: got %d values, block length is %d", ErrLengthMismatch, len(values), blockLen)
	}
	return nil
}

func (c *Codec[P]) checkPackOutput(dst []byte, bitWidth uint8) error {
	if need := PackedLen(c.packer.BlockLen(), bitWidth); len(dst) < need {
		return fmt.Errorf("%w: need %d bytes, got %d", ErrBufferTooSmall, need, len(dst))
	}
	return nil
}

func (c *Codec[P]) checkUnpackInput(src []byte, dst []uint32, bitWidth uint8) error {
	if bitWidth == 0 || bitWidth > MaxBitWidth {
		return fmt.Errorf("%w: %d (unpack needs 1-%d)", ErrInvalidBitWidth, bitWidth, MaxBitWidth)
	}
	blockLen := c.packer.BlockLen()
	if len(dst) < blockLen {
		return fmt.Errorf("%w: destination holds %d values, block length is %d", ErrLengthMismatch, len(dst), blockLen)
	}
	if need := PackedLen(blockLen, bitWidth); len(src) < need {
		return fmt.Errorf("%w: need %d bytes, got %d", ErrBufferTooSmall, need, len(src))
	}
	return nil
}

// resolveBitWidth returns the width to pack with. A requested width of 0 means
// auto-detect; the result is at least 1 since unpacking rejects width 0.
func resolveBitWidth(required, requested uint8) (uint8, error) {
	if requested == 0 {
		return max(required, 1), nil
	}
	if requested < required {
		return 0, fmt.Errorf("%w: values need %d bits, got %d", ErrBitWidthTooSmall, required, requested)
	}
	return requested, nil
}

// decodedLen returns how many values n packed bytes hold at bitWidth.
func decodedLen(n int, bitWidth uint8) int {
	return n * 8 / int(bitWidth)
}

// PackFormat packs values with the transform selected by f.
func PackFormat(ops BitPackOps, f Format, values []uint32, dst []byte, bitWidth uint8) (int, error) {
	switch f {
	case Vanilla:
		return ops.Pack(values, dst, bitWidth)
	case M1:
		return ops.PackM1(values, dst, bitWidth)
	case D1:
		return ops.PackD1(values, dst, bitWidth)
	case D1Z:
		return ops.PackD1Z(values, dst, bitWidth)
	}
	return 0, fmt.Errorf("bitpackplus: unknown format %v", f)
}

// UnpackFormat reverses PackFormat. initial is ignored by the non-delta formats.
func UnpackFormat(ops BitPackOps, f Format, initial uint32, src []byte, dst []uint32, bitWidth uint8) (int, error) {
	switch f {
	case Vanilla:
		return ops.Unpack(src, dst, bitWidth)
	case M1:
		return ops.UnpackM1(src, dst, bitWidth)
	case D1:
		return ops.UnpackD1(initial, src, dst, bitWidth)
	case D1Z:
		return ops.UnpackD1Z(initial, src, dst, bitWidth)
	}
	return 0, fmt.Errorf("bitpackplus: unknown format %v", f)
}

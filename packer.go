package bitpackplus

import (
	"encoding/binary"
	"fmt"
	"math/bits"
)

// BitPacker packs one block of BlockLen uint32 values at a fixed bit width.
// Packed blocks are dense: exactly BlockLen*bitWidth/8 bytes, no header.
//
// The sorted variants store the differences between consecutive values,
// starting with values[0]-initial. They assume a non-decreasing block.
//
// Implementations panic on contract violations (wrong block length, short
// buffers, widths above 32). Codec validates its inputs before delegating.
type BitPacker interface {
	// BlockLen is the number of values one call processes.
	BlockLen() int
	// NumBits returns the smallest width that holds every value.
	NumBits(values []uint32) uint8
	// NumBitsSorted returns the smallest width that holds every difference.
	NumBitsSorted(initial uint32, values []uint32) uint8
	// Compress packs values into dst and returns the bytes written.
	Compress(values []uint32, dst []byte, bitWidth uint8) int
	// Decompress unpacks a block from src into dst and returns the bytes consumed.
	Decompress(src []byte, dst []uint32, bitWidth uint8) int
	CompressSorted(initial uint32, values []uint32, dst []byte, bitWidth uint8) int
	DecompressSorted(initial uint32, src []byte, dst []uint32, bitWidth uint8) int
}

const (
	// laneLength is the number of integers stored per lane. A lane packs into
	// exactly bitWidth 32-bit words.
	laneLength = 32
	// maxLanes is the widest supported lane layout (BitPacker8x).
	maxLanes = 8
	// maxBlockLen bounds every packer's block length.
	maxBlockLen = maxLanes * laneLength
)

var bo = binary.LittleEndian

// BitPacker1x packs blocks of 32 values as one lane of little-endian words.
type BitPacker1x struct{}

// BitPacker4x packs blocks of 128 values in four interleaved lanes: lane l
// holds values l, l+4, l+8, ... and its words are interleaved with the other
// lanes in 16-byte groups. This is the layout of 128-bit SIMD bit packing.
type BitPacker4x struct{}

// BitPacker8x packs blocks of 256 values in eight interleaved lanes
// (32-byte groups), the layout of 256-bit SIMD bit packing.
type BitPacker8x struct{}

func (BitPacker1x) BlockLen() int { return 1 * laneLength }
func (BitPacker4x) BlockLen() int { return 4 * laneLength }
func (BitPacker8x) BlockLen() int { return 8 * laneLength }

func (p BitPacker1x) NumBits(values []uint32) uint8 { return numBits(p.BlockLen(), values) }
func (p BitPacker4x) NumBits(values []uint32) uint8 { return numBits(p.BlockLen(), values) }
func (p BitPacker8x) NumBits(values []uint32) uint8 { return numBits(p.BlockLen(), values) }

func (p BitPacker1x) NumBitsSorted(initial uint32, values []uint32) uint8 {
	return numBitsSorted(p.BlockLen(), initial, values)
}

func (p BitPacker4x) NumBitsSorted(initial uint32, values []uint32) uint8 {
	return numBitsSorted(p.BlockLen(), initial, values)
}

func (p BitPacker8x) NumBitsSorted(initial uint32, values []uint32) uint8 {
	return numBitsSorted(p.BlockLen(), initial, values)
}

func (BitPacker1x) Compress(values []uint32, dst []byte, bitWidth uint8) int {
	return packBlock(1, dst, values, bitWidth)
}

func (BitPacker4x) Compress(values []uint32, dst []byte, bitWidth uint8) int {
	return packBlock(4, dst, values, bitWidth)
}

func (BitPacker8x) Compress(values []uint32, dst []byte, bitWidth uint8) int {
	return packBlock(8, dst, values, bitWidth)
}

func (BitPacker1x) Decompress(src []byte, dst []uint32, bitWidth uint8) int {
	return unpackBlock(1, dst, src, bitWidth)
}

func (BitPacker4x) Decompress(src []byte, dst []uint32, bitWidth uint8) int {
	return unpackBlock(4, dst, src, bitWidth)
}

func (BitPacker8x) Decompress(src []byte, dst []uint32, bitWidth uint8) int {
	return unpackBlock(8, dst, src, bitWidth)
}

func (BitPacker1x) CompressSorted(initial uint32, values []uint32, dst []byte, bitWidth uint8) int {
	return packSortedBlock(1, initial, dst, values, bitWidth)
}

func (BitPacker4x) CompressSorted(initial uint32, values []uint32, dst []byte, bitWidth uint8) int {
	return packSortedBlock(4, initial, dst, values, bitWidth)
}

func (BitPacker8x) CompressSorted(initial uint32, values []uint32, dst []byte, bitWidth uint8) int {
	return packSortedBlock(8, initial, dst, values, bitWidth)
}

func (BitPacker1x) DecompressSorted(initial uint32, src []byte, dst []uint32, bitWidth uint8) int {
	return unpackSortedBlock(1, initial, dst, src, bitWidth)
}

func (BitPacker4x) DecompressSorted(initial uint32, src []byte, dst []uint32, bitWidth uint8) int {
	return unpackSortedBlock(4, initial, dst, src, bitWidth)
}

func (BitPacker8x) DecompressSorted(initial uint32, src []byte, dst []uint32, bitWidth uint8) int {
	return unpackSortedBlock(8, initial, dst, src, bitWidth)
}

// PackedLen returns the number of bytes a block of blockLen values occupies
// at the given bit width.
func PackedLen(blockLen int, bitWidth uint8) int {
	return blockLen * int(bitWidth) / 8
}

// validateBlockLength panics unless values holds exactly one block.
func validateBlockLength(n, blockLen int) {
	if n != blockLen {
		panic(fmt.Sprintf("bitpackplus: block length %d, packer expects %d", n, blockLen))
	}
}

func validateBitWidth(bitWidth uint8) {
	if bitWidth > MaxBitWidth {
		panic(fmt.Sprintf("bitpackplus: bit width %d exceeds maximum %d", bitWidth, MaxBitWidth))
	}
}

// numBits returns the minimum number of bits needed to encode every value.
// Uses OR-reduction to avoid per-element branching.
func numBits(blockLen int, values []uint32) uint8 {
	validateBlockLength(len(values), blockLen)
	var orAll uint32
	for _, v := range values {
		orAll |= v
	}
	return uint8(bits.Len32(orAll))
}

func numBitsSorted(blockLen int, initial uint32, values []uint32) uint8 {
	validateBlockLength(len(values), blockLen)
	var orAll uint32
	prev := initial
	for _, v := range values {
		orAll |= v - prev
		prev = v
	}
	return uint8(bits.Len32(orAll))
}

func packBlock(lanes int, dst []byte, values []uint32, bitWidth uint8) int {
	validateBlockLength(len(values), lanes*laneLength)
	validateBitWidth(bitWidth)
	n := PackedLen(lanes*laneLength, bitWidth)
	if len(dst) < n {
		panic(fmt.Sprintf("bitpackplus: output buffer holds %d bytes, block needs %d", len(dst), n))
	}
	if bitWidth == 0 {
		return 0
	}
	for lane := 0; lane < lanes; lane++ {
		packLane(dst, values, lane, lanes, int(bitWidth))
	}
	return n
}

func unpackBlock(lanes int, dst []uint32, src []byte, bitWidth uint8) int {
	blockLen := lanes * laneLength
	validateBitWidth(bitWidth)
	if len(dst) < blockLen {
		panic(fmt.Sprintf("bitpackplus: output holds %d values, block has %d", len(dst), blockLen))
	}
	n := PackedLen(blockLen, bitWidth)
	if len(src) < n {
		panic(fmt.Sprintf("bitpackplus: input holds %d bytes, block needs %d", len(src), n))
	}
	if bitWidth == 0 {
		clear(dst[:blockLen])
		return 0
	}
	for lane := 0; lane < lanes; lane++ {
		unpackLane(dst, src, lane, lanes, int(bitWidth))
	}
	return n
}

func packSortedBlock(lanes int, initial uint32, dst []byte, values []uint32, bitWidth uint8) int {
	validateBlockLength(len(values), lanes*laneLength)
	var scratch [maxBlockLen]uint32
	deltas := scratch[:len(values)]
	prev := initial
	for i, v := range values {
		deltas[i] = v - prev
		prev = v
	}
	return packBlock(lanes, dst, deltas, bitWidth)
}

func unpackSortedBlock(lanes int, initial uint32, dst []uint32, src []byte, bitWidth uint8) int {
	n := unpackBlock(lanes, dst, src, bitWidth)
	prev := initial
	for i := 0; i < lanes*laneLength; i++ {
		prev += dst[i]
		dst[i] = prev
	}
	return n
}

// packLane packs the 32 integers of one lane (indices lane, lane+lanes, ...)
// with a streaming 64-bit accumulator. The lane's k-th output word lands at
// byte offset lane*4 + k*lanes*4, interleaving all lanes word by word.
func packLane(dst []byte, values []uint32, lane, lanes, bitWidth int) {
	var mask uint64
	if bitWidth >= 32 {
		mask = uint64(mathMaxUint32)
	} else {
		mask = (1 << bitWidth) - 1
	}
	stride := lanes * 4

	var acc uint64
	var bitsInAcc int
	outByteIdx := lane * 4
	for i := 0; i < laneLength; i++ {
		acc |= (uint64(values[lane+i*lanes]) & mask) << bitsInAcc
		bitsInAcc += bitWidth
		for bitsInAcc >= 32 {
			bo.PutUint32(dst[outByteIdx:], uint32(acc))
			outByteIdx += stride
			acc >>= 32
			bitsInAcc -= 32
		}
	}
	// 32 values of bitWidth bits fill exactly bitWidth words, nothing is left over.
}

// unpackLane is the inverse of packLane.
func unpackLane(dst []uint32, src []byte, lane, lanes, bitWidth int) {
	var mask uint32
	if bitWidth >= 32 {
		mask = mathMaxUint32
	} else {
		mask = (1 << bitWidth) - 1
	}
	stride := lanes * 4

	var acc uint64
	var bitsInAcc int
	inByteIdx := lane * 4
	for i := 0; i < laneLength; i++ {
		for bitsInAcc < bitWidth {
			acc |= uint64(bo.Uint32(src[inByteIdx:])) << bitsInAcc
			inByteIdx += stride
			bitsInAcc += 32
		}
		dst[lane+i*lanes] = uint32(acc) & mask
		acc >>= bitWidth
		bitsInAcc -= bitWidth
	}
}

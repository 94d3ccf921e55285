package bitpackplus

import (
	"fmt"
	"slices"
)

// VanillaToM1 subtracts 1 from each value of src and writes the result to dst.
// Every value must be positive; on a zero nothing is written and a *ValueError
// is returned.
func VanillaToM1(dst, src []uint32) error {
	if err := checkSameLen(dst, src); err != nil {
		return err
	}
	if err := checkPositive(src); err != nil {
		return err
	}
	for i, v := range src {
		dst[i] = v - 1
	}
	return nil
}

// VanillaToM1Self is VanillaToM1 operating in place.
func VanillaToM1Self(data []uint32) error {
	if err := checkPositive(data); err != nil {
		return err
	}
	for i := range data {
		data[i]--
	}
	return nil
}

// M1ToVanilla adds 1 to each value of src and writes the result to dst.
// A value of MaxUint32 cannot come out of VanillaToM1 and is rejected.
func M1ToVanilla(dst, src []uint32) error {
	if err := checkSameLen(dst, src); err != nil {
		return err
	}
	if err := checkIncrementable(src); err != nil {
		return err
	}
	for i, v := range src {
		dst[i] = v + 1
	}
	return nil
}

// M1ToVanillaSelf is M1ToVanilla operating in place.
func M1ToVanillaSelf(data []uint32) error {
	if err := checkIncrementable(data); err != nil {
		return err
	}
	for i := range data {
		data[i]++
	}
	return nil
}

// VanillaToD1Z replaces every value by the zigzag encoded difference to its
// predecessor. initial is the predecessor of src[0]; passing src[0] makes the
// first code 0.
func VanillaToD1Z(dst, src []uint32, initial uint32) error {
	if err := checkSameLen(dst, src); err != nil {
		return err
	}
	prev := initial
	for i, cur := range src {
		dst[i] = d1zEncode(prev, cur)
		prev = cur
	}
	return nil
}

// VanillaToD1ZSelf is VanillaToD1Z operating in place.
func VanillaToD1ZSelf(data []uint32, initial uint32) {
	prev := initial
	for i, cur := range data {
		data[i] = d1zEncode(prev, cur)
		prev = cur
	}
}

// D1ZToVanilla reverses VanillaToD1Z. initial must be the value that was used
// as predecessor of the first element when encoding.
func D1ZToVanilla(dst, src []uint32, initial uint32) error {
	if err := checkSameLen(dst, src); err != nil {
		return err
	}
	prev := initial
	for i, code := range src {
		prev = d1zDecode(prev, code)
		dst[i] = prev
	}
	return nil
}

// D1ZToVanillaSelf is D1ZToVanilla operating in place.
func D1ZToVanillaSelf(data []uint32, initial uint32) {
	prev := initial
	for i, code := range data {
		prev = d1zDecode(prev, code)
		data[i] = prev
	}
}

// d1zEncode maps the step from prev to cur onto an unsigned code:
// 2*(cur-prev) for upward steps and 2*(prev-cur)-1 for downward ones.
// Steps are taken around the uint32 ring, so a step is downward when the
// wrapped difference is negative as an int32. For |cur-prev| < 2^31 this is
// the plain comparison cur < prev, and it keeps the mapping bijective for every
// pair of values.
func d1zEncode(prev, cur uint32) uint32 {
	return zigzagEncode32(int32(cur - prev))
}

// d1zDecode is the inverse of d1zEncode: odd codes step down by code/2+1,
// even codes step up by code/2.
func d1zDecode(prev, code uint32) uint32 {
	x := code >> 1
	if code&1 != 0 {
		return prev - x - 1
	}
	return prev + x
}

// zigzagEncode32 encodes a 32-bit integer as a zigzag integer.
func zigzagEncode32(v int32) uint32 {
	return uint32(v<<1) ^ uint32(v>>31)
}

func checkSameLen(dst, src []uint32) error {
	if len(dst) != len(src) {
		return fmt.Errorf("%w: destination holds %d values, source %d",
			ErrLengthMismatch, len(dst), len(src))
	}
	return nil
}

func checkPositive(values []uint32) error {
	if i := slices.Index(values, 0); i >= 0 {
		return &ValueError{Index: i, Value: 0, Reason: "m1 requires positive values"}
	}
	return nil
}

func checkIncrementable(values []uint32) error {
	if i := slices.Index(values, mathMaxUint32); i >= 0 {
		return &ValueError{Index: i, Value: mathMaxUint32, Reason: "m1 value overflows on decode"}
	}
	return nil
}

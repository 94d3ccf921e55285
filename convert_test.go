package bitpackplus

import (
	"errors"
	"math/rand"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestM1Scenario(t *testing.T) {
	assert := assert.New(t)
	src := []uint32{5, 5, 7, 3}
	dst := make([]uint32, len(src))
	assert.NoError(VanillaToM1(dst, src))
	assert.Equal([]uint32{4, 4, 6, 2}, dst)
	assert.Equal([]uint32{5, 5, 7, 3}, src, "source must be preserved")

	back := make([]uint32, len(dst))
	assert.NoError(M1ToVanilla(back, dst))
	assert.Equal(src, back)
}

func TestM1SelfMatchesCopy(t *testing.T) {
	assert := assert.New(t)
	src := genPositive(257, 7)
	want := make([]uint32, len(src))
	assert.NoError(VanillaToM1(want, src))

	data := slices.Clone(src)
	assert.NoError(VanillaToM1Self(data))
	assert.Equal(want, data)

	assert.NoError(M1ToVanillaSelf(data))
	assert.Equal(src, data)
}

func TestM1RejectsZero(t *testing.T) {
	assert := assert.New(t)
	src := []uint32{3, 9, 0, 4}
	dst := []uint32{11, 11, 11, 11}

	err := VanillaToM1(dst, src)
	assert.ErrorIs(err, ErrInvalidValue)
	var valueErr *ValueError
	if assert.True(errors.As(err, &valueErr)) {
		assert.Equal(2, valueErr.Index)
		assert.Equal(uint32(0), valueErr.Value)
	}
	assert.Equal([]uint32{11, 11, 11, 11}, dst, "dst must not be written on failure")

	data := slices.Clone(src)
	assert.ErrorIs(VanillaToM1Self(data), ErrInvalidValue)
	assert.Equal(src, data, "in-place transform must not partially apply")
}

func TestM1AllZeroFails(t *testing.T) {
	assert.ErrorIs(t, VanillaToM1Self(make([]uint32, 32)), ErrInvalidValue)
}

func TestM1InverseRejectsOverflow(t *testing.T) {
	assert := assert.New(t)
	src := []uint32{0, mathMaxUint32}
	dst := make([]uint32, 2)
	assert.ErrorIs(M1ToVanilla(dst, src), ErrInvalidValue)
	assert.ErrorIs(M1ToVanillaSelf(slices.Clone(src)), ErrInvalidValue)
}

func TestM1Bijection(t *testing.T) {
	assert := assert.New(t)
	for _, x := range []uint32{1, 2, 3, 1 << 16, 1 << 31, mathMaxUint32 - 1, mathMaxUint32} {
		m := []uint32{x}
		assert.NoError(VanillaToM1Self(m))
		assert.Equal(x-1, m[0])
		assert.NoError(M1ToVanillaSelf(m))
		assert.Equal(x, m[0], "x=%d", x)
	}
}

func TestD1ZScenario(t *testing.T) {
	assert := assert.New(t)
	src := []uint32{5, 5, 7, 3}
	codes := make([]uint32, len(src))
	assert.NoError(VanillaToD1Z(codes, src, src[0]))
	assert.Equal([]uint32{0, 0, 4, 7}, codes)

	back := make([]uint32, len(codes))
	assert.NoError(D1ZToVanilla(back, codes, 5))
	assert.Equal(src, back)
}

func TestD1ZExplicitInitial(t *testing.T) {
	assert := assert.New(t)
	src := []uint32{10, 12, 9}
	codes := make([]uint32, len(src))
	assert.NoError(VanillaToD1Z(codes, src, 7))
	// 7->10: +3, 10->12: +2, 12->9: -3
	assert.Equal([]uint32{6, 4, 5}, codes)

	back := make([]uint32, len(codes))
	assert.NoError(D1ZToVanilla(back, codes, 7))
	assert.Equal(src, back)
}

func TestD1ZSelfMatchesCopy(t *testing.T) {
	assert := assert.New(t)
	src := genMixed(300, 99)
	want := make([]uint32, len(src))
	assert.NoError(VanillaToD1Z(want, src, src[0]))

	data := slices.Clone(src)
	VanillaToD1ZSelf(data, data[0])
	assert.Equal(want, data)

	D1ZToVanillaSelf(data, src[0])
	assert.Equal(src, data)
}

func TestD1ZSingleValue(t *testing.T) {
	assert := assert.New(t)
	data := []uint32{123456}
	VanillaToD1ZSelf(data, data[0])
	assert.Equal([]uint32{0}, data)
	D1ZToVanillaSelf(data, 123456)
	assert.Equal([]uint32{123456}, data)
}

func TestD1ZDecreasing(t *testing.T) {
	assert := assert.New(t)
	src := make([]uint32, 128)
	for i := range src {
		src[i] = uint32(1_000_000 - i*997)
	}
	codes := make([]uint32, len(src))
	assert.NoError(VanillaToD1Z(codes, src, src[0]))
	for i, c := range codes[1:] {
		assert.Equal(uint32(2*997-1), c, "index %d", i+1)
	}
	back := make([]uint32, len(src))
	assert.NoError(D1ZToVanilla(back, codes, src[0]))
	assert.Equal(src, back)
}

func TestD1ZBijection(t *testing.T) {
	assert := assert.New(t)
	edges := []uint32{0, 1, 2, 1<<31 - 1, 1 << 31, 1<<31 + 1, mathMaxUint32 - 1, mathMaxUint32}
	for _, prev := range edges {
		for _, cur := range edges {
			code := d1zEncode(prev, cur)
			assert.Equal(cur, d1zDecode(prev, code), "prev=%d cur=%d", prev, cur)
		}
	}

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 100_000; i++ {
		prev, cur := rng.Uint32(), rng.Uint32()
		code := d1zEncode(prev, cur)
		if !assert.Equal(cur, d1zDecode(prev, code), "prev=%d cur=%d", prev, cur) {
			return
		}
	}
}

func TestD1ZMatchesZigzagFormula(t *testing.T) {
	assert := assert.New(t)
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 10_000; i++ {
		prev := rng.Uint32()
		step := uint32(rng.Intn(1 << 20))
		up, down := prev+step, prev-step
		if up >= prev {
			assert.Equal(2*(up-prev), d1zEncode(prev, up))
		}
		if down < prev {
			assert.Equal(2*(prev-down)-1, d1zEncode(prev, down))
		}
	}
}

func TestTransformsRejectLengthMismatch(t *testing.T) {
	assert := assert.New(t)
	src := []uint32{1, 2, 3}
	short := make([]uint32, 2)
	long := make([]uint32, 4)

	assert.ErrorIs(VanillaToM1(short, src), ErrLengthMismatch)
	assert.ErrorIs(M1ToVanilla(long, src), ErrLengthMismatch)
	assert.ErrorIs(VanillaToD1Z(short, src, 1), ErrLengthMismatch)
	assert.ErrorIs(D1ZToVanilla(long, src, 1), ErrLengthMismatch)
}

func TestTransformsEmpty(t *testing.T) {
	assert := assert.New(t)
	assert.NoError(VanillaToM1(nil, nil))
	assert.NoError(M1ToVanilla(nil, nil))
	assert.NoError(VanillaToD1Z(nil, nil, 0))
	assert.NoError(D1ZToVanilla(nil, nil, 0))
}

func genPositive(n int, seed int64) []uint32 {
	rng := rand.New(rand.NewSource(seed))
	values := make([]uint32, n)
	for i := range values {
		values[i] = uint32(rng.Intn(20000)) + 1
	}
	return values
}

// genMixed returns a sawtooth walk with small steps in both directions.
func genMixed(n int, seed int64) []uint32 {
	rng := rand.New(rand.NewSource(seed))
	values := make([]uint32, n)
	cur := uint32(1 << 20)
	for i := range values {
		cur += uint32(rng.Intn(64)) - 31
		values[i] = cur
	}
	return values
}

func genSorted(n int, seed int64) []uint32 {
	values := genPositive(n, seed)
	slices.Sort(values)
	return values
}

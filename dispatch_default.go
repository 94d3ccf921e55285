//go:build !purego

package bitpackplus

const forceScalar = false

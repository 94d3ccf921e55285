//go:build purego

package bitpackplus

// forceScalar pins the single-lane packer when building with -tags purego.
const forceScalar = true

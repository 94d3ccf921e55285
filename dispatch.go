package bitpackplus

import "golang.org/x/sys/cpu"

// defaultPacker is chosen once at init from the CPU features: the lane layout
// matching the widest vector unit available.
var defaultPacker BitPacker = BitPacker1x{}

func init() {
	defaultPacker = selectPacker()
}

func selectPacker() BitPacker {
	if forceScalar {
		return BitPacker1x{}
	}
	switch {
	case cpu.X86.HasAVX2:
		return BitPacker8x{}
	case cpu.X86.HasSSE2, cpu.ARM64.HasASIMD:
		return BitPacker4x{}
	}
	return BitPacker1x{}
}

// DefaultPacker returns the packer selected for the running CPU. Blocks packed
// by one packer variant can only be unpacked by the same variant, so callers
// persisting data should record BlockLen or pin a packer explicitly.
func DefaultPacker() BitPacker {
	return defaultPacker
}

// NewDefault returns a codec on top of DefaultPacker.
func NewDefault() BitPackOps {
	return New(defaultPacker)
}

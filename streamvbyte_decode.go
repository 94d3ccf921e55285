// Random access into StreamVByte data.
//
// A StreamVByte stream stores one control byte per group of 4 values (2 bits
// per value, code+1 = byte length) followed by the variable length data bytes.
// These helpers locate a single value without decoding the whole stream.

package bitpackplus

// svbGroupSizeLUT maps a control byte to the number of data bytes of its
// group of 4 values.
var svbGroupSizeLUT [256]uint8

func init() {
	for ctrl := 0; ctrl < 256; ctrl++ {
		size := 4
		for k := 0; k < 4; k++ {
			size += (ctrl >> (2 * k)) & 0x03
		}
		svbGroupSizeLUT[ctrl] = uint8(size)
	}
}

// svbCodeLen returns the byte length of the k-th value in a control byte.
func svbCodeLen(ctrl byte, k int) int {
	return int((ctrl>>(2*k))&0x03) + 1
}

// svbEncodedLen returns the number of bytes a stream of count values occupies
// according to its control bytes. ok is false if data is too short to even
// hold the control bytes.
func svbEncodedLen(data []byte, count int) (n int, ok bool) {
	numControlBytes := (count + 3) >> 2
	if len(data) < numControlBytes {
		return 0, false
	}
	n = numControlBytes
	full := count >> 2
	for _, ctrl := range data[:full] {
		n += int(svbGroupSizeLUT[ctrl])
	}
	if rem := count & 0x03; rem > 0 {
		ctrl := data[full]
		for k := 0; k < rem; k++ {
			n += svbCodeLen(ctrl, k)
		}
	}
	return n, true
}

// svbDecodeOne decodes the value at index from a stream of count values.
// The stream must be valid (see svbEncodedLen).
func svbDecodeOne(data []byte, count, index int) uint32 {
	numControlBytes := (count + 3) >> 2
	controlBytes := data[:numControlBytes]
	dataBytes := data[numControlBytes:]

	group := index >> 2
	offset := 0
	for _, ctrl := range controlBytes[:group] {
		offset += int(svbGroupSizeLUT[ctrl])
	}
	ctrl := controlBytes[group]
	for k := 0; k < index&0x03; k++ {
		offset += svbCodeLen(ctrl, k)
	}
	return svbReadValue(dataBytes[offset:], svbCodeLen(ctrl, index&0x03))
}

// svbReadValue reads a little-endian value of 1-4 bytes.
func svbReadValue(data []byte, byteLen int) uint32 {
	switch byteLen {
	case 1:
		return uint32(data[0])
	case 2:
		return uint32(bo.Uint16(data))
	case 3:
		return uint32(data[0]) | uint32(data[1])<<8 | uint32(data[2])<<16
	}
	return bo.Uint32(data)
}

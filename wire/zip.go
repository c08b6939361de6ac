package wire

import "encoding/binary"

func byteWidth(n uint64) int {
	switch {
	case n == 0:
		return 0
	case n <= 0xff:
		return 1
	case n <= 0xffff:
		return 2
	case n <= 0xffffffff:
		return 4
	default:
		return 8
	}
}

// ZipUint64 packs an integer into its shortest little-endian form.
// The result is not self-delimiting; it needs outer framing, e.g. a record.
func ZipUint64(v uint64) []byte {
	buf := [8]byte{}
	i := 0
	for v > 0 {
		buf[i] = byte(v)
		v >>= 8
		i++
	}
	return buf[0:i]
}

func UnzipUint64(zip []byte) (v uint64) {
	for i := len(zip) - 1; i >= 0; i-- {
		v = v<<8 | uint64(zip[i])
	}
	return
}

// ZipUint64Pair packs two integers into one framed field. Widths are
// rounded up to 0/1/2/4/8 bytes so the split is recoverable from the
// total length alone.
func ZipUint64Pair(big, lil uint64) []byte {
	bw, lw := byteWidth(big), byteWidth(lil)
	// no 0-width second half unless the first is full width too
	if lw > 0 && bw < lw {
		bw = lw
	}
	if lw == 0 && bw == 0 {
		return nil
	}
	if lw == 0 && bw > 1 {
		lw = 1
	}
	ret := make([]byte, 0, bw+lw)
	ret = appendWidth(ret, big, bw)
	ret = appendWidth(ret, lil, lw)
	return ret
}

func appendWidth(into []byte, v uint64, w int) []byte {
	switch w {
	case 0:
		return into
	case 1:
		return append(into, byte(v))
	case 2:
		return binary.LittleEndian.AppendUint16(into, uint16(v))
	case 4:
		return binary.LittleEndian.AppendUint32(into, uint32(v))
	default:
		return binary.LittleEndian.AppendUint64(into, v)
	}
}

func UnzipUint64Pair(zip []byte) (big, lil uint64) {
	switch len(zip) {
	case 0:
		return 0, 0
	case 1:
		return uint64(zip[0]), 0
	case 2:
		return uint64(zip[0]), uint64(zip[1])
	case 3:
		return uint64(binary.LittleEndian.Uint16(zip[0:2])), uint64(zip[2])
	case 4:
		return uint64(binary.LittleEndian.Uint16(zip[0:2])), uint64(binary.LittleEndian.Uint16(zip[2:4]))
	case 5:
		return uint64(binary.LittleEndian.Uint32(zip[0:4])), uint64(zip[4])
	case 6:
		return uint64(binary.LittleEndian.Uint32(zip[0:4])), uint64(binary.LittleEndian.Uint16(zip[4:6]))
	case 8:
		return uint64(binary.LittleEndian.Uint32(zip[0:4])), uint64(binary.LittleEndian.Uint32(zip[4:8]))
	case 9:
		return binary.LittleEndian.Uint64(zip[0:8]), uint64(zip[8])
	case 10:
		return binary.LittleEndian.Uint64(zip[0:8]), uint64(binary.LittleEndian.Uint16(zip[8:10]))
	case 12:
		return binary.LittleEndian.Uint64(zip[0:8]), uint64(binary.LittleEndian.Uint32(zip[8:12]))
	case 16:
		return binary.LittleEndian.Uint64(zip[0:8]), binary.LittleEndian.Uint64(zip[8:16])
	default:
		return 0, 0
	}
}

// ZigZagInt64 folds the sign bit into the low bit so small magnitudes
// of either sign pack short.
func ZigZagInt64(i int64) uint64 {
	return uint64(i*2) ^ uint64(i>>63)
}

func ZagZigUint64(u uint64) int64 {
	return int64(u>>1) ^ -int64(u&1)
}

func ZipInt64(i int64) []byte {
	return ZipUint64(ZigZagInt64(i))
}

func UnzipInt64(zip []byte) int64 {
	return ZagZigUint64(UnzipUint64(zip))
}

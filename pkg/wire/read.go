package wire

import "encoding/binary"

// ReadUint8 reads one octet at offset
func ReadUint8(data []byte, offset int) (uint8, int, error) {
	if offset < 0 || offset+1 > len(data) {
		return 0, offset, truncated("uint8", data, offset, 1)
	}
	return data[offset], offset + 1, nil
}

// ReadUint16 reads a big-endian 16-bit integer at offset
func ReadUint16(data []byte, offset int) (uint16, int, error) {
	if offset < 0 || offset+2 > len(data) {
		return 0, offset, truncated("uint16", data, offset, 2)
	}
	return binary.BigEndian.Uint16(data[offset:]), offset + 2, nil
}

// ReadUint32 reads a big-endian 32-bit integer at offset
func ReadUint32(data []byte, offset int) (uint32, int, error) {
	if offset < 0 || offset+4 > len(data) {
		return 0, offset, truncated("uint32", data, offset, 4)
	}
	return binary.BigEndian.Uint32(data[offset:]), offset + 4, nil
}

// ReadBytes returns a sub-slice of n bytes at offset without copying
func ReadBytes(data []byte, offset, n int) ([]byte, int, error) {
	if n < 0 || offset < 0 || offset+n > len(data) {
		return nil, offset, truncated("bytes", data, offset, n)
	}
	return data[offset : offset+n : offset+n], offset + n, nil
}

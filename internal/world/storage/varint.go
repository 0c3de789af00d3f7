package storage

import (
	"fmt"
	"io"
)

// maxVarIntLen is the longest encoding of a uint32.
const maxVarIntLen = 5

func readVarInt(r io.ByteReader) (uint32, int, error) {
	var result uint32
	var numRead int

	for {
		b, err := r.ReadByte()
		if err != nil {
			return 0, numRead, err
		}
		numRead++

		result |= uint32(b&0x7F) << (7 * (numRead - 1))

		if b&0x80 == 0 {
			break
		}

		if numRead >= maxVarIntLen {
			return 0, numRead, fmt.Errorf("varint too long")
		}
	}

	return result, numRead, nil
}

func appendVarInt(buf []byte, value uint32) []byte {
	for {
		b := byte(value & 0x7F)
		value >>= 7
		if value != 0 {
			b |= 0x80
		}
		buf = append(buf, b)
		if value == 0 {
			return buf
		}
	}
}

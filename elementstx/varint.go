package elementstx

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// writeVarInt writes a Bitcoin-style compact-size encoded integer.
func writeVarInt(buf *bytes.Buffer, v uint64) error {
	switch {
	case v < 0xfd:
		buf.WriteByte(byte(v))
	case v <= 0xffff:
		buf.WriteByte(0xfd)
		return binary.Write(buf, binary.LittleEndian, uint16(v))
	case v <= 0xffffffff:
		buf.WriteByte(0xfe)
		return binary.Write(buf, binary.LittleEndian, uint32(v))
	default:
		buf.WriteByte(0xff)
		return binary.Write(buf, binary.LittleEndian, v)
	}
	return nil
}

// varIntLen returns the number of bytes writeVarInt would emit for v.
func varIntLen(v uint64) int {
	switch {
	case v < 0xfd:
		return 1
	case v <= 0xffff:
		return 3
	case v <= 0xffffffff:
		return 5
	default:
		return 9
	}
}

// VarIntLen is the exported form of varIntLen, used by callers that need
// to account for a CompactSize-prefixed vector's length byte without
// serializing the vector itself.
func VarIntLen(v uint64) int { return varIntLen(v) }

func readVarInt(r *bytes.Reader) (uint64, error) {
	first, err := r.ReadByte()
	if err != nil {
		return 0, err
	}
	switch first {
	case 0xfd:
		var v uint16
		if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
			return 0, err
		}
		return uint64(v), nil
	case 0xfe:
		var v uint32
		if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
			return 0, err
		}
		return uint64(v), nil
	case 0xff:
		var v uint64
		if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
			return 0, err
		}
		return v, nil
	default:
		return uint64(first), nil
	}
}

func writeVarBytes(buf *bytes.Buffer, b []byte) error {
	if err := writeVarInt(buf, uint64(len(b))); err != nil {
		return err
	}
	buf.Write(b)
	return nil
}

func readVarBytes(r *bytes.Reader) ([]byte, error) {
	n, err := readVarInt(r)
	if err != nil {
		return nil, err
	}
	b := make([]byte, n)
	if n == 0 {
		return b, nil
	}
	if _, err := r.Read(b); err != nil {
		return nil, fmt.Errorf("read %d bytes: %w", n, err)
	}
	return b, nil
}

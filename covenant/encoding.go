package covenant

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

func writeChunk(buf *bytes.Buffer, b []byte) {
	var lenBytes [4]byte
	binary.LittleEndian.PutUint32(lenBytes[:], uint32(len(b)))
	buf.Write(lenBytes[:])
	buf.Write(b)
}

func readChunk(r *bytes.Reader) ([]byte, error) {
	var lenBytes [4]byte
	if _, err := r.Read(lenBytes[:]); err != nil {
		return nil, fmt.Errorf("read chunk length: %w", err)
	}
	n := binary.LittleEndian.Uint32(lenBytes[:])
	b := make([]byte, n)
	if n > 0 {
		if _, err := r.Read(b); err != nil {
			return nil, fmt.Errorf("read chunk: %w", err)
		}
	}
	return b, nil
}

func writeUint32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func readUint32(r *bytes.Reader) (uint32, error) {
	var b [4]byte
	if _, err := r.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read uint32: %w", err)
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

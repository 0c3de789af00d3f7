package storage

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"

	"github.com/go-theft-craft/worldgen/internal/voxel"
)

// ErrShapeMismatch is returned when a stored voxel count does not match the configured chunk shape.
var ErrShapeMismatch = errors.New("voxel count does not match chunk shape")

// Codec converts chunk buffers to and from their compressed on-disk form:
// a varint voxel count followed by one little-endian uint16 per voxel, zstd-compressed.
// A Codec is safe for concurrent use.
type Codec struct {
	shape voxel.Shape
	enc   *zstd.Encoder
	dec   *zstd.Decoder
}

// NewCodec creates a codec for buffers of the given shape.
func NewCodec(shape voxel.Shape) (*Codec, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	// A chunk never decompresses to more than its count prefix plus the voxels.
	dec, err := zstd.NewReader(nil, zstd.WithDecoderMaxMemory(uint64(maxRawSize(shape))))
	if err != nil {
		enc.Close()
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	return &Codec{shape: shape, enc: enc, dec: dec}, nil
}

// Shape returns the chunk shape the codec expects.
func (c *Codec) Shape() voxel.Shape {
	return c.shape
}

// Encode serializes and compresses buf.
func (c *Codec) Encode(buf *voxel.Buffer) ([]byte, error) {
	voxels := buf.Voxels()
	if len(voxels) != c.shape.Size() {
		return nil, fmt.Errorf("encode chunk: %w: got %d, want %d", ErrShapeMismatch, len(voxels), c.shape.Size())
	}

	raw := make([]byte, 0, maxRawSize(c.shape))
	raw = appendVarInt(raw, uint32(len(voxels)))
	for _, v := range voxels {
		raw = binary.LittleEndian.AppendUint16(raw, uint16(v))
	}
	return c.enc.EncodeAll(raw, nil), nil
}

// Decode decompresses and parses data into a new buffer.
func (c *Codec) Decode(data []byte) (*voxel.Buffer, error) {
	raw, err := c.dec.DecodeAll(data, nil)
	if errors.Is(err, zstd.ErrDecoderSizeExceeded) {
		return nil, fmt.Errorf("decode chunk: %w: payload exceeds %d bytes", ErrShapeMismatch, maxRawSize(c.shape))
	}
	if err != nil {
		return nil, fmt.Errorf("decompress chunk: %w", err)
	}

	r := bytes.NewReader(raw)
	count, _, err := readVarInt(r)
	if err != nil {
		return nil, fmt.Errorf("read voxel count: %w", err)
	}
	if int(count) != c.shape.Size() {
		return nil, fmt.Errorf("decode chunk: %w: got %d, want %d", ErrShapeMismatch, count, c.shape.Size())
	}

	body := make([]byte, 2*int(count))
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, fmt.Errorf("read voxels: %w", err)
	}
	voxels := make([]voxel.Voxel, count)
	for i := range voxels {
		voxels[i] = voxel.Voxel(binary.LittleEndian.Uint16(body[2*i:]))
	}
	return voxel.FromVoxels(c.shape, voxels), nil
}

func maxRawSize(shape voxel.Shape) int {
	return maxVarIntLen + 2*shape.Size()
}

// Close releases the compressor resources.
func (c *Codec) Close() {
	c.enc.Close()
	c.dec.Close()
}

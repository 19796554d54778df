package compression

import (
	"encoding/binary"
	"fmt"

	"github.com/pierrec/lz4"
)

// NoCompressor implements a pass-through compressor that doesn't compress data.
type NoCompressor struct{}

// Name returns the name of the compressor.
func (c *NoCompressor) Name() string {
	return "none"
}

// Compress returns the data unchanged.
func (c *NoCompressor) Compress(data []byte) ([]byte, error) {
	result := make([]byte, len(data))
	copy(result, data)
	return result, nil
}

// Decompress returns the data unchanged.
func (c *NoCompressor) Decompress(data []byte) ([]byte, error) {
	result := make([]byte, len(data))
	copy(result, data)
	return result, nil
}

const (
	frameRaw        = 0
	frameCompressed = 1
)

// LZ4Compressor implements LZ4 block compression. Frames carry a 4-byte
// big-endian uncompressed length plus a flag byte, so decompression sizes its
// buffer exactly and incompressible data round-trips unchanged.
type LZ4Compressor struct{}

// Name returns the name of the compressor.
func (c *LZ4Compressor) Name() string {
	return "lz4"
}

// Compress compresses data using LZ4.
func (c *LZ4Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return []byte{}, nil
	}

	maxSize := lz4.CompressBlockBound(len(data))
	out := make([]byte, 5+maxSize)
	binary.BigEndian.PutUint32(out[:4], uint32(len(data)))
	out[4] = frameCompressed

	n, err := lz4.CompressBlock(data, out[5:], nil)
	if err != nil {
		return nil, fmt.Errorf("lz4 compression failed: %w", err)
	}
	if n == 0 {
		// Incompressible input: CompressBlock wrote nothing, store raw.
		out[4] = frameRaw
		out = append(out[:5], data...)
		return out, nil
	}
	return out[:5+n], nil
}

// Decompress decompresses a frame produced by Compress.
func (c *LZ4Compressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return []byte{}, nil
	}
	if len(data) < 5 {
		return nil, fmt.Errorf("lz4 frame too short: %d bytes", len(data))
	}

	size := binary.BigEndian.Uint32(data[:4])
	body := data[5:]

	switch data[4] {
	case frameRaw:
		if int(size) != len(body) {
			return nil, fmt.Errorf("lz4 raw frame length mismatch: header %d, body %d", size, len(body))
		}
		out := make([]byte, size)
		copy(out, body)
		return out, nil
	case frameCompressed:
		out := make([]byte, size)
		n, err := lz4.UncompressBlock(body, out)
		if err != nil {
			return nil, fmt.Errorf("lz4 decompression failed: %w", err)
		}
		return out[:n], nil
	default:
		return nil, fmt.Errorf("unknown lz4 frame flag: %d", data[4])
	}
}

package compression

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLZ4RoundTrip(t *testing.T) {
	c := &LZ4Compressor{}

	data := bytes.Repeat([]byte("pending order record "), 100)
	compressed, err := c.Compress(data)
	require.NoError(t, err)
	assert.Less(t, len(compressed), len(data))

	out, err := c.Decompress(compressed)
	require.NoError(t, err)
	assert.Equal(t, data, out)
}

func TestLZ4IncompressibleData(t *testing.T) {
	c := &LZ4Compressor{}

	// Short high-entropy input that LZ4 cannot shrink.
	data := []byte{0x01, 0x9f, 0x3a, 0xc4, 0x77, 0x12, 0xee, 0x5b}
	compressed, err := c.Compress(data)
	require.NoError(t, err)

	out, err := c.Decompress(compressed)
	require.NoError(t, err)
	assert.Equal(t, data, out)
}

func TestLZ4Empty(t *testing.T) {
	c := &LZ4Compressor{}

	compressed, err := c.Compress(nil)
	require.NoError(t, err)
	out, err := c.Decompress(compressed)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestLZ4RejectsTruncatedFrame(t *testing.T) {
	c := &LZ4Compressor{}

	_, err := c.Decompress([]byte{0x00, 0x00})
	assert.Error(t, err)
}

func TestNoCompressorPassThrough(t *testing.T) {
	c := &NoCompressor{}

	data := []byte("unchanged")
	compressed, err := c.Compress(data)
	require.NoError(t, err)
	assert.Equal(t, data, compressed)

	out, err := c.Decompress(compressed)
	require.NoError(t, err)
	assert.Equal(t, data, out)
}

func TestRegistryLookup(t *testing.T) {
	for _, name := range []string{"none", "lz4"} {
		c, err := Get(name)
		require.NoError(t, err)
		assert.Equal(t, name, c.Name())
	}

	_, err := Get("zstd")
	assert.Error(t, err)
}

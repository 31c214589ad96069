package scale

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntRoundTrip(t *testing.T) {
	i32, err := DecodeI32(EncodeI32(-42))
	require.NoError(t, err)
	assert.Equal(t, int32(-42), i32)

	i64, err := DecodeI64(EncodeI64(1 << 40))
	require.NoError(t, err)
	assert.Equal(t, int64(1<<40), i64)
}

func TestBytesRoundTrip(t *testing.T) {
	for _, n := range []int{0, 1, 63, 64, 1000} {
		payload := make([]byte, n)
		for i := range payload {
			payload[i] = byte(i)
		}

		enc, err := EncodeBytes(payload)
		require.NoError(t, err)

		dec, consumed, err := DecodeBytes(enc)
		require.NoError(t, err)
		assert.Equal(t, payload, dec)
		assert.Equal(t, len(enc), consumed)
	}
}

func TestDecodeBytesTruncated(t *testing.T) {
	_, _, err := DecodeBytes([]byte{0x04})
	require.Error(t, err)
}

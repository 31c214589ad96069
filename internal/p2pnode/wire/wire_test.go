package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oac1771/bruja/internal/job"
)

func TestGossipRoundTrip(t *testing.T) {
	g := NewJobAcceptance([]byte{1, 2, 3})

	encoded, err := EncodeGossip(g)
	require.NoError(t, err)

	decoded, err := DecodeGossip(encoded)
	require.NoError(t, err)

	require.NotNil(t, decoded.JobAcceptance)
	assert.Equal(t, []byte{1, 2, 3}, decoded.JobAcceptance.JobID)
}

func TestRequestRoundTrip(t *testing.T) {
	j := job.New([]byte{0xaa}, [][]byte{{1}}, "add_one")
	r := NewJobRequest(j)

	encoded, err := EncodeRequest(r)
	require.NoError(t, err)

	decoded, err := DecodeRequest(encoded)
	require.NoError(t, err)

	require.NotNil(t, decoded.Job)
	assert.Equal(t, j, *decoded.Job)
}

func TestDecodeGossipRejectsUnknownTag(t *testing.T) {
	_, err := DecodeGossip([]byte{0x05})
	require.Error(t, err)
}

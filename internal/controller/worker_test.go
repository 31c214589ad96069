package controller

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oac1771/bruja/internal/ledger"
	"github.com/oac1771/bruja/internal/ledger/scale"
)

func TestWorkerHandleEventIgnoresUndecodableData(t *testing.T) {
	w := &Worker{log: discardLogger()}

	// Not a valid SCALE compact-length-prefixed vector; handleEvent must
	// not panic and must simply skip the event.
	w.handleEvent(nil, ledger.ContractEvent{Contract: []byte("c"), Data: []byte{0xff}})
}

func TestJobRequestSubmittedDecodesID(t *testing.T) {
	raw, err := scale.EncodeBytes([]byte{1, 2, 3})
	require.NoError(t, err)

	req, err := decodeJobRequestSubmitted(raw)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, req.ID)
}

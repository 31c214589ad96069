package ledger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleArtifact = `{
  "source": {"wasm": "0x0102ff"},
  "spec": {
    "constructors": [{"label": "new", "selector": "0xdeadbeef"}],
    "messages": [{"label": "register_worker", "selector": "0x0badf00d"}]
  },
  "storage": {"root": {"root_key": "0x00"}}
}`

func writeArtifact(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.contract")
	require.NoError(t, os.WriteFile(path, []byte(sampleArtifact), 0o644))
	return path
}

func TestLoadArtifact(t *testing.T) {
	path := writeArtifact(t)

	artifact, err := LoadArtifact(path)
	require.NoError(t, err)

	assert.Equal(t, []byte{0x01, 0x02, 0xff}, artifact.Code)
	require.Len(t, artifact.Constructors, 1)
	assert.Equal(t, "new", artifact.Constructors[0].Label)

	sel, err := artifact.GetMessageSelector("register_worker")
	require.NoError(t, err)
	assert.Equal(t, [4]byte{0x0b, 0xad, 0xf0, 0x0d}, sel)

	_, err = artifact.GetMessageSelector("nope")
	require.Error(t, err)

	var ledgerErr *Error
	require.ErrorAs(t, err, &ledgerErr)
	assert.Equal(t, kindMessageNotFound, ledgerErr.Kind)
}

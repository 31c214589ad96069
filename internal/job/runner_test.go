package job

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunnerRunAddOne(t *testing.T) {
	path := writeAddOneModule(t)
	b := NewBuilder()
	j, err := b.Build(path, "add_one", []string{"41"})
	require.NoError(t, err)

	r := NewRunner()
	results, err := r.Run(j)
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, "42", results.String())
}

func TestRunnerRunWrongParamCount(t *testing.T) {
	path := writeAddOneModule(t)
	j := New(mustReadWasm(t, path), nil, "add_one")

	r := NewRunner()
	_, err := r.Run(j)
	require.Error(t, err)

	var jobErr *Error
	require.ErrorAs(t, err, &jobErr)
	assert.Equal(t, "InvalidParameterNumber", jobErr.Kind)
}

func mustReadWasm(t *testing.T, path string) []byte {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return b
}

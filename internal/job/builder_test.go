package job

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	wasmtime "github.com/bytecodealliance/wasmtime-go/v25"
)

func writeAddOneModule(t *testing.T) string {
	t.Helper()
	wasm, err := wasmtime.Wat2Wasm(addOneWat)
	require.NoError(t, err)

	dir := t.TempDir()
	path := filepath.Join(dir, "add_one.wasm")
	require.NoError(t, os.WriteFile(path, wasm, 0o644))
	return path
}

func TestBuilderBuildSuccess(t *testing.T) {
	path := writeAddOneModule(t)
	b := NewBuilder()

	j, err := b.Build(path, "add_one", []string{"41"})
	require.NoError(t, err)

	assert.Equal(t, "add_one", j.FuncName)
	require.Len(t, j.Params, 1)

	v, err := decodeI32(j.Params[0])
	require.NoError(t, err)
	assert.Equal(t, int32(41), v)
}

func TestBuilderBuildCodeFileNotFound(t *testing.T) {
	b := NewBuilder()

	_, err := b.Build("/does/not/exist.wasm", "add_one", []string{"1"})
	require.Error(t, err)

	var jobErr *Error
	require.ErrorAs(t, err, &jobErr)
	assert.Equal(t, "CodeFileNotFound", jobErr.Kind)
}

func TestBuilderBuildParseParamError(t *testing.T) {
	path := writeAddOneModule(t)
	b := NewBuilder()

	_, err := b.Build(path, "add_one", []string{"hello"})
	require.Error(t, err)
	assert.Equal(t, "Unable to parse param 'hello' into i32", err.Error())
}

func TestBuilderBuildFunctionExportNotFound(t *testing.T) {
	path := writeAddOneModule(t)
	b := NewBuilder()

	_, err := b.Build(path, "nope", []string{"1"})
	require.Error(t, err)

	var jobErr *Error
	require.ErrorAs(t, err, &jobErr)
	assert.Equal(t, "FunctionExportNotFound", jobErr.Kind)
}

func TestBuilderBuildInvalidParameterNumber(t *testing.T) {
	path := writeAddOneModule(t)
	b := NewBuilder()

	_, err := b.Build(path, "add_one", nil)
	require.Error(t, err)

	var jobErr *Error
	require.ErrorAs(t, err, &jobErr)
	assert.Equal(t, "InvalidParameterNumber", jobErr.Kind)
}

func TestBuilderBuildTooManyParams(t *testing.T) {
	path := writeAddOneModule(t)
	b := NewBuilder()

	_, err := b.Build(path, "add_one", []string{"1", "2"})
	require.Error(t, err)

	var jobErr *Error
	require.ErrorAs(t, err, &jobErr)
	assert.Equal(t, "InvalidParameterNumber", jobErr.Kind)
}

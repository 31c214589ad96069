package job

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// addOneWat is a minimal module exporting add_one(i32) -> i32, used the
// same way across the builder/runner test scenarios.
const addOneWat = `(module
  (func $add_one (param $lhs i32) (result i32)
    local.get $lhs
    i32.const 1
    i32.add)
  (export "add_one" (func $add_one)))`

func TestJobEncodeDecodeRoundTrip(t *testing.T) {
	original := New([]byte{0x01, 0x02, 0x03}, [][]byte{{0x0a}, {0x0b, 0x0c}}, "add_one")

	encoded, err := original.Encode()
	require.NoError(t, err)

	decoded, err := Decode(encoded)
	require.NoError(t, err)

	assert.Equal(t, original, decoded)
}

func TestParamsFromCSV(t *testing.T) {
	assert.Equal(t, []string{"1", "2", "3"}, ParamsFromCSV("1,2,3"))
	assert.Nil(t, ParamsFromCSV(""))
	assert.Equal(t, []string{"1", "2"}, ParamsFromCSV(" 1 , 2 "))
}

func TestResultsString(t *testing.T) {
	i32 := int32(5)
	i64 := int64(6)
	r := Results{{I32: &i32}, {I64: &i64}}
	assert.Equal(t, "5 6", r.String())
}

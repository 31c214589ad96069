// Package job builds, validates and runs sandboxed WebAssembly jobs.
package job

import (
	"fmt"
	"strings"

	"github.com/oac1771/bruja/internal/ledger/scale"
)

// Job is the unit of work published to the network: wasm bytecode, its
// already-encoded parameters, and the exported function to invoke.
type Job struct {
	Code     []byte
	Params   [][]byte
	FuncName string
}

// New constructs a Job from already-encoded parameters.
func New(code []byte, params [][]byte, funcName string) Job {
	return Job{Code: code, Params: params, FuncName: funcName}
}

// Encode renders the Job in the project's SCALE-style wire format:
// compact-prefixed code, a compact-prefixed vector of compact-prefixed
// param blobs, then the compact-prefixed function name.
func (j Job) Encode() ([]byte, error) {
	out, err := scale.EncodeBytes(j.Code)
	if err != nil {
		return nil, fmt.Errorf("encode code: %w", err)
	}

	lenPrefix, err := scale.EncodeCompactLen(len(j.Params))
	if err != nil {
		return nil, fmt.Errorf("encode params length: %w", err)
	}
	out = append(out, lenPrefix...)
	for i, p := range j.Params {
		enc, err := scale.EncodeBytes(p)
		if err != nil {
			return nil, fmt.Errorf("encode param %d: %w", i, err)
		}
		out = append(out, enc...)
	}

	nameBytes, err := scale.EncodeBytes([]byte(j.FuncName))
	if err != nil {
		return nil, fmt.Errorf("encode func name: %w", err)
	}
	out = append(out, nameBytes...)
	return out, nil
}

// Decode reverses Encode.
func Decode(b []byte) (Job, error) {
	code, rest, err := scale.DecodeBytes(b)
	if err != nil {
		return Job{}, fmt.Errorf("decode code: %w", err)
	}
	b = b[rest:]

	n, consumed, err := scale.DecodeCompactLen(b)
	if err != nil {
		return Job{}, fmt.Errorf("decode params length: %w", err)
	}
	b = b[consumed:]

	params := make([][]byte, 0, n)
	for i := 0; i < n; i++ {
		p, c, err := scale.DecodeBytes(b)
		if err != nil {
			return Job{}, fmt.Errorf("decode param %d: %w", i, err)
		}
		params = append(params, p)
		b = b[c:]
	}

	nameRaw, _, err := scale.DecodeBytes(b)
	if err != nil {
		return Job{}, fmt.Errorf("decode func name: %w", err)
	}

	return Job{Code: code, Params: params, FuncName: string(nameRaw)}, nil
}

// ParamsFromCSV splits a comma-separated literal list the way the
// requester CLI's --params flag is documented to accept.
func ParamsFromCSV(csv string) []string {
	if strings.TrimSpace(csv) == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = strings.TrimSpace(p)
	}
	return out
}

// Val is a decoded result value, tagged by its wasm value kind.
type Val struct {
	I32 *int32
	I64 *int64
}

func (v Val) String() string {
	switch {
	case v.I32 != nil:
		return fmt.Sprintf("%d", *v.I32)
	case v.I64 != nil:
		return fmt.Sprintf("%d", *v.I64)
	default:
		return "<unknown>"
	}
}

// Results is the human-displayable decoding of a job's raw result blobs.
type Results []Val

func (r Results) String() string {
	parts := make([]string, len(r))
	for i, v := range r {
		parts[i] = v.String()
	}
	return strings.Join(parts, " ")
}

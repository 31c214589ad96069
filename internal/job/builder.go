package job

import (
	"fmt"
	"os"
	"strconv"

	"github.com/oac1771/bruja/internal/ledger/scale"
	"github.com/pkg/errors"
	wasmtime "github.com/bytecodealliance/wasmtime-go/v25"
)

// Builder validates a wasm module's exported function signature against a
// set of raw parameter literals and encodes them into a Job.
type Builder struct {
	engine *wasmtime.Engine
}

// NewBuilder constructs a Builder with a fresh wasmtime engine, used only
// to introspect module types (no code runs during build).
func NewBuilder() *Builder {
	return &Builder{engine: wasmtime.NewEngine()}
}

// Build reads the wasm file at codePath, resolves funcName's export type,
// parses rawParams against it, and returns the encoded Job.
func (b *Builder) Build(codePath, funcName string, rawParams []string) (Job, error) {
	code, err := os.ReadFile(codePath)
	if err != nil {
		if os.IsNotExist(err) {
			return Job{}, wrapf("CodeFileNotFound", err)
		}
		return Job{}, wrapf("StdIo", err)
	}

	module, err := wasmtime.NewModule(b.engine, code)
	if err != nil {
		return Job{}, wrapf("WasmModule", err)
	}

	funcType, err := exportFuncType(module, funcName)
	if err != nil {
		return Job{}, err
	}

	params, err := parseParams(funcName, funcType.Params(), rawParams)
	if err != nil {
		return Job{}, err
	}

	return New(code, params, funcName), nil
}

func exportFuncType(module *wasmtime.Module, funcName string) (*wasmtime.FuncType, error) {
	for _, exp := range module.Exports() {
		if exp.Name() != funcName {
			continue
		}
		ft := exp.Type().FuncType()
		if ft == nil {
			return nil, &Error{Kind: "FuncTypeNotFound", Err: errors.New(funcName), FuncName: funcName}
		}
		return ft, nil
	}
	return nil, &Error{Kind: "FunctionExportNotFound", Err: errors.New(funcName), FuncName: funcName}
}

// parseParams zips raw literal strings against the export's declared
// parameter types, SCALE-encoding each one in turn.
func parseParams(funcName string, types []*wasmtime.ValType, raw []string) ([][]byte, error) {
	if len(raw) != len(types) {
		return nil, &Error{Kind: "InvalidParameterNumber", Err: errors.New(funcName), FuncName: funcName}
	}
	out := make([][]byte, 0, len(types))
	for i, t := range types {
		enc, err := parseOne(funcName, t.Kind(), raw[i])
		if err != nil {
			return nil, err
		}
		out = append(out, enc)
	}
	return out, nil
}

func parseOne(funcName string, kind wasmtime.ValKind, literal string) ([]byte, error) {
	switch kind {
	case wasmtime.KindI32:
		v, err := strconv.ParseInt(literal, 10, 32)
		if err != nil {
			return nil, &Error{Kind: "ParseParam", Err: err, Param: literal, ParamType: "i32"}
		}
		return scale.EncodeI32(int32(v)), nil
	case wasmtime.KindI64:
		v, err := strconv.ParseInt(literal, 10, 64)
		if err != nil {
			return nil, &Error{Kind: "ParseParam", Err: err, Param: literal, ParamType: "i64"}
		}
		return scale.EncodeI64(v), nil
	default:
		return nil, &Error{Kind: "ParamTypeNotFound", Err: fmt.Errorf("unsupported kind %v", kind), FuncName: funcName}
	}
}

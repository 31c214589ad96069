package job

import (
	"fmt"

	"github.com/oac1771/bruja/internal/ledger/scale"
	wasmtime "github.com/bytecodealliance/wasmtime-go/v25"
)

func errNotFound(name string) error { return fmt.Errorf("%s not found", name) }

func decodeI32(b []byte) (int32, error) { return scale.DecodeI32(b) }

func decodeI64(b []byte) (int64, error) { return scale.DecodeI64(b) }

// Runner executes a Job's wasm export in an isolated sandbox: every
// function import the job declares is satisfied with a no-op stub rather
// than a real host capability. Non-function imports (memory, table,
// global) are not provided, so a module that declares one fails to
// instantiate.
type Runner struct{}

// NewRunner returns a Runner. Every call to Run gets a fresh
// engine/linker/store so jobs never share state.
func NewRunner() *Runner {
	return &Runner{}
}

// Run validates the job's parameter count against its own export, executes
// it, and returns the decoded results.
func (r *Runner) Run(j Job) (Results, error) {
	engine := wasmtime.NewEngine()
	store := wasmtime.NewStore(engine)
	linker := wasmtime.NewLinker(engine)

	module, err := wasmtime.NewModule(engine, j.Code)
	if err != nil {
		return nil, wrapf("WasmModule", err)
	}

	if err := stubImports(store, linker, module); err != nil {
		return nil, err
	}

	instance, err := linker.Instantiate(store, module)
	if err != nil {
		return nil, wrapf("WasmTime", err)
	}

	fn := instance.GetFunc(store, j.FuncName)
	if fn == nil {
		return nil, &Error{Kind: "FunctionExportNotFound", Err: errNotFound(j.FuncName), FuncName: j.FuncName}
	}
	funcType := fn.Type(store)

	if err := validateParamCount(j.FuncName, funcType.Params(), j.Params); err != nil {
		return nil, err
	}

	args, err := decodeArgs(j.FuncName, funcType.Params(), j.Params)
	if err != nil {
		return nil, err
	}

	raw, err := fn.Call(store, args...)
	if err != nil {
		return nil, wrapf("WasmTime", err)
	}

	return toResults(funcType.Results(), raw), nil
}

// stubImports registers a no-op function for every function import the
// module declares, so no host capability is ever actually granted.
// Non-function imports are skipped and stay undefined.
func stubImports(store *wasmtime.Store, linker *wasmtime.Linker, module *wasmtime.Module) error {
	for _, imp := range module.Imports() {
		ft := imp.Type().FuncType()
		if ft == nil {
			continue
		}
		modName := imp.Module()
		name := ""
		if imp.Name() != nil {
			name = *imp.Name()
		}
		stub := wasmtime.NewFunc(store, ft, func(_ *wasmtime.Caller, args []wasmtime.Val) ([]wasmtime.Val, *wasmtime.Trap) {
			return make([]wasmtime.Val, len(ft.Results())), nil
		})
		if err := linker.Define(store, modName, name, stub); err != nil {
			return wrapf("WasmTime", err)
		}
	}
	return nil
}

func validateParamCount(funcName string, types []*wasmtime.ValType, params [][]byte) error {
	if len(types) != len(params) {
		return &Error{Kind: "InvalidParameterNumber", Err: errNotFound(funcName), FuncName: funcName}
	}
	return nil
}

func decodeArgs(funcName string, types []*wasmtime.ValType, params [][]byte) ([]interface{}, error) {
	args := make([]interface{}, 0, len(types))
	for i, t := range types {
		switch t.Kind() {
		case wasmtime.KindI32:
			v, err := decodeI32(params[i])
			if err != nil {
				return nil, &Error{Kind: "Codec", Err: err, FuncName: funcName}
			}
			args = append(args, v)
		case wasmtime.KindI64:
			v, err := decodeI64(params[i])
			if err != nil {
				return nil, &Error{Kind: "Codec", Err: err, FuncName: funcName}
			}
			args = append(args, v)
		default:
			return nil, &Error{Kind: "ParamTypeNotFound", Err: errNotFound(funcName), FuncName: funcName}
		}
	}
	return args, nil
}

// toResults reshapes wasmtime's Call return (nil, a bare value, or a
// []interface{} for multi-value returns) back into the declared result
// types.
func toResults(resultTypes []*wasmtime.ValType, raw interface{}) Results {
	if len(resultTypes) == 0 {
		return nil
	}

	values, ok := raw.([]interface{})
	if !ok {
		values = []interface{}{raw}
	}

	out := make(Results, 0, len(resultTypes))
	for i, t := range resultTypes {
		if i >= len(values) {
			break
		}
		switch t.Kind() {
		case wasmtime.KindI32:
			v := values[i].(int32)
			out = append(out, Val{I32: &v})
		case wasmtime.KindI64:
			v := values[i].(int64)
			out = append(out, Val{I64: &v})
		}
	}
	return out
}

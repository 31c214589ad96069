package job

import "github.com/pkg/errors"

// Error wraps the family of failures the builder and runner can produce.
// Structured fields are kept on the struct rather than interpolated only
// into the message, so callers can inspect them with errors.As.
type Error struct {
	Kind string
	Err  error

	FuncName  string
	Param     string
	ParamType string
}

func (e *Error) Error() string {
	switch e.Kind {
	case "CodeFileNotFound":
		return "code file not found: " + e.Err.Error()
	case "FunctionExportNotFound":
		return "function export not found: " + e.FuncName
	case "ParamTypeNotFound":
		return "param type not found for " + e.FuncName
	case "ParseParam":
		return "Unable to parse param '" + e.Param + "' into " + e.ParamType
	case "InvalidParameterNumber":
		return "invalid parameter number for " + e.FuncName
	case "FuncTypeNotFound":
		return "func type not found for " + e.FuncName
	default:
		return e.Kind + ": " + e.Err.Error()
	}
}

func (e *Error) Unwrap() error { return e.Err }

func wrapf(kind string, err error) *Error {
	return &Error{Kind: kind, Err: errors.WithStack(err)}
}

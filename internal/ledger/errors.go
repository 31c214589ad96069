package ledger

import "fmt"

// Error is the Ledger error family covering artifact parsing, RPC
// transport and chain-side failures.
type Error struct {
	Kind string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("ledger: %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("ledger: %s", e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

func newErr(kind string, err error) *Error { return &Error{Kind: kind, Err: err} }

const (
	kindStdIo               = "StdIo"
	kindSerdeJson            = "SerdeJson"
	kindHexDecode            = "HexDecode"
	kindConstructorNotFound  = "ConstructorNotFound"
	kindMessageNotFound      = "MessageNotFound"
	kindTransport            = "Transport"
	kindDecode               = "Decode"
	kindEventNotFound        = "EventNotFound"
	kindStorageEntryIsEmpty  = "StorageEntryIsEmpty"
	kindDispatch             = "Dispatch"
	kindContractAccess       = "ContractAccess"
)

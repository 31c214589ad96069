package p2pnode

import "fmt"

// Error is the Network error family: everything that can go wrong setting
// up or driving the swarm and its client protocol.
type Error struct {
	Kind string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("p2pnode: %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("p2pnode: %s", e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

func newErr(kind string, err error) *Error { return &Error{Kind: kind, Err: err} }

const (
	kindTransport                       = "Transport"
	kindSubscription                    = "Subscription"
	kindPublish                         = "Publish"
	kindInsufficientPeers               = "InsufficientPeers"
	kindTimedOutWaitingForNodeResponse  = "TimedOutWaitingForNodeResponse"
	kindUnexpectedClientResponse        = "UnexpectedClientResponse"
	kindSendResponseError               = "SendResponseError"
	kindChannelNotFoundForGivenRequest  = "ChannelNotFoundForGivenRequestId"
	kindSendClientRequest               = "SendClientRequest"
	kindBehavior                        = "Behavior"
)

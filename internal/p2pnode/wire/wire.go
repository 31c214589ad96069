// Package wire defines the tagged-union envelopes carried over gossip and
// over the request/response protocol. Gossip is a tag byte followed by the
// variant's canonical SCALE encoding; the request/response protocol uses
// CBOR.
package wire

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/oac1771/bruja/internal/job"
	"github.com/oac1771/bruja/internal/ledger/scale"
)

// Gossip tags match the single variant the stable slice defines.
const gossipTagJobAcceptance = 0x00

// requestTagJob tags the single Request variant the stable slice defines.
const requestTagJob = 0x00

// Gossip is the tagged union published over the gossipsub topic.
type Gossip struct {
	Tag           byte
	JobAcceptance *JobAcceptance
}

// JobAcceptance signals that a worker has taken on a job.
type JobAcceptance struct {
	JobID []byte
}

// NewJobAcceptance builds the JobAcceptance gossip variant.
func NewJobAcceptance(jobID []byte) Gossip {
	return Gossip{Tag: gossipTagJobAcceptance, JobAcceptance: &JobAcceptance{JobID: jobID}}
}

// EncodeGossip renders a Gossip envelope as a tag byte followed by the
// variant's canonical SCALE encoding.
func EncodeGossip(g Gossip) ([]byte, error) {
	switch g.Tag {
	case gossipTagJobAcceptance:
		if g.JobAcceptance == nil {
			return nil, fmt.Errorf("encode gossip: missing JobAcceptance for tag %d", g.Tag)
		}
		body, err := scale.EncodeBytes(g.JobAcceptance.JobID)
		if err != nil {
			return nil, fmt.Errorf("encode gossip: %w", err)
		}
		return append([]byte{g.Tag}, body...), nil
	default:
		return nil, fmt.Errorf("encode gossip: unknown tag %d", g.Tag)
	}
}

// DecodeGossip parses a Gossip envelope, rejecting unknown tags.
func DecodeGossip(b []byte) (Gossip, error) {
	if len(b) < 1 {
		return Gossip{}, fmt.Errorf("decode gossip: empty input")
	}
	tag := b[0]
	switch tag {
	case gossipTagJobAcceptance:
		jobID, _, err := scale.DecodeBytes(b[1:])
		if err != nil {
			return Gossip{}, fmt.Errorf("decode gossip: %w", err)
		}
		return Gossip{Tag: tag, JobAcceptance: &JobAcceptance{JobID: jobID}}, nil
	default:
		return Gossip{}, fmt.Errorf("decode gossip: unknown tag %d", tag)
	}
}

// Request is the tagged union sent over the /exchange/1.0.0 protocol.
type Request struct {
	Tag byte
	Job *job.Job `cbor:"1,keyasint,omitempty"`
}

// NewJobRequest builds the Job request variant.
func NewJobRequest(j job.Job) Request {
	return Request{Tag: requestTagJob, Job: &j}
}

// EncodeRequest renders a Request envelope as CBOR.
func EncodeRequest(r Request) ([]byte, error) {
	return cbor.Marshal(r)
}

// DecodeRequest parses a Request envelope, rejecting unknown tags.
func DecodeRequest(b []byte) (Request, error) {
	var r Request
	if err := cbor.Unmarshal(b, &r); err != nil {
		return Request{}, fmt.Errorf("decode request: %w", err)
	}
	if r.Tag != requestTagJob {
		return Request{}, fmt.Errorf("decode request: unknown tag %d", r.Tag)
	}
	return r, nil
}

// Response carries the encoded results of a completed job back to whoever
// requested it, over the same /exchange/1.0.0 protocol.
type Response struct {
	Results [][]byte
}

// EncodeResponse renders a Response as CBOR.
func EncodeResponse(r Response) ([]byte, error) {
	return cbor.Marshal(r)
}

// DecodeResponse parses a Response.
func DecodeResponse(b []byte) (Response, error) {
	var r Response
	if err := cbor.Unmarshal(b, &r); err != nil {
		return Response{}, fmt.Errorf("decode response: %w", err)
	}
	return r, nil
}

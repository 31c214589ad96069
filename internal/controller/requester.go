package controller

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/oac1771/bruja/internal/job"
	"github.com/oac1771/bruja/internal/ledger"
	"github.com/oac1771/bruja/internal/logging"
	"github.com/oac1771/bruja/internal/p2pnode"
	"github.com/oac1771/bruja/internal/p2pnode/wire"
)

const jobAcceptanceWait = 30 * time.Second

// Requester submits a job request to the ledger, then waits on its own
// gossip topic for a worker's acceptance.
type Requester struct {
	node    *p2pnode.NodeClient
	ledger  *ledger.Client
	address []byte
	topic   string
	log     zerolog.Logger
}

// NewRequester builds a Requester. topic is the requester's own network
// address, used as the gossip topic a worker announces acceptance on.
func NewRequester(node *p2pnode.NodeClient, lc *ledger.Client, contractAddress []byte, topic string) *Requester {
	return &Requester{node: node, ledger: lc, address: contractAddress, topic: topic, log: logging.For("requester")}
}

// SubmitJob builds a job from the wasm file at codePath, submits it to the
// ledger, and blocks until a worker's JobAcceptance arrives on the
// requester's gossip topic or jobAcceptanceWait elapses.
func (r *Requester) SubmitJob(ctx context.Context, codePath, funcName string, rawParams []string) error {
	if err := r.node.Subscribe(ctx, r.topic); err != nil {
		return newErr("Network", err)
	}

	j, err := job.NewBuilder().Build(codePath, funcName, rawParams)
	if err != nil {
		return newErr("Job", err)
	}

	encoded, err := j.Encode()
	if err != nil {
		return newErr("Codec", err)
	}

	if _, err := r.ledger.Write(ctx, r.address, "submit_job_request", encoded); err != nil {
		return newErr("Ledger", err)
	}
	r.log.Info().Str("func_name", funcName).Msg("job request submitted")

	return r.waitForAcceptance(ctx, j)
}

func (r *Requester) waitForAcceptance(ctx context.Context, j job.Job) error {
	waitCtx, cancel := context.WithTimeout(ctx, jobAcceptanceWait)
	defer cancel()

	for {
		select {
		case <-waitCtx.Done():
			return newErr("TimedOutWaitingForAcceptance", waitCtx.Err())
		case msg := <-r.node.Gossip():
			gossip, err := wire.DecodeGossip(msg.Message)
			if err != nil {
				r.log.Debug().Err(err).Msg("undecodable gossip message, ignoring")
				continue
			}
			if gossip.JobAcceptance == nil {
				continue
			}
			r.log.Info().Str("worker", msg.NetworkId.String()).Msg("job accepted")
			return nil
		}
	}
}

// Start races SubmitJob against the node's lifetime until ctx is
// cancelled, returning whichever finishes or errors first.
func (r *Requester) Start(ctx context.Context, nodeDone <-chan struct{}, codePath, funcName string, rawParams []string) error {
	submitDone := make(chan error, 1)
	go func() { submitDone <- r.SubmitJob(ctx, codePath, funcName, rawParams) }()

	select {
	case <-nodeDone:
		return newErr("NodeStopped", nil)
	case <-ctx.Done():
		return ctx.Err()
	case err := <-submitDone:
		return err
	}
}

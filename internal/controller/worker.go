// Package controller wires the P2P node, ledger client and job
// builder/runner together into the requester and worker roles.
package controller

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/oac1771/bruja/internal/ledger"
	"github.com/oac1771/bruja/internal/ledger/scale"
	"github.com/oac1771/bruja/internal/logging"
	"github.com/oac1771/bruja/internal/p2pnode"
	"github.com/oac1771/bruja/internal/p2pnode/wire"
)

const gossipPeerPollInterval = 500 * time.Millisecond

// JobRequestSubmitted mirrors the on-chain event a worker watches for: a
// requester has posted a job and is waiting for a worker to accept it. Its
// data is the ledger's canonical SCALE encoding, not JSON.
type JobRequestSubmitted struct {
	ID []byte
}

// decodeJobRequestSubmitted decodes a ContractEmitted event's raw data as a
// compact-length-prefixed job id, the shape submit_job_request emits.
func decodeJobRequestSubmitted(data []byte) (JobRequestSubmitted, error) {
	id, _, err := scale.DecodeBytes(data)
	if err != nil {
		return JobRequestSubmitted{}, err
	}
	return JobRequestSubmitted{ID: id}, nil
}

// Worker subscribes to its own network address as a gossip topic, watches
// the ledger for job requests, and announces acceptance over gossip.
type Worker struct {
	node    *p2pnode.NodeClient
	ledger  *ledger.Client
	address []byte
	topic   string
	log     zerolog.Logger
}

// NewWorker builds a Worker. topic is the worker's own network address,
// used as its gossipsub topic — peers address acceptance gossip to it by
// subscribing to the same string.
func NewWorker(node *p2pnode.NodeClient, lc *ledger.Client, contractAddress []byte, topic string) *Worker {
	return &Worker{node: node, ledger: lc, address: contractAddress, topic: topic, log: logging.For("worker")}
}

// Start joins the worker's own gossip topic and races the node's lifetime
// against the ledger event watch loop until ctx is cancelled.
func (w *Worker) Start(ctx context.Context, nodeDone <-chan struct{}) error {
	if err := w.node.Subscribe(ctx, w.topic); err != nil {
		return newErr("Subscription", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return w.listenBlocks(gctx) })

	select {
	case <-nodeDone:
		return newErr("NodeStopped", nil)
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errGroupDone(g):
		return err
	}
}

func errGroupDone(g *errgroup.Group) <-chan error {
	ch := make(chan error, 1)
	go func() { ch <- g.Wait() }()
	return ch
}

func (w *Worker) listenBlocks(ctx context.Context) error {
	events, err := w.ledger.ContractEventSub(ctx, w.address)
	if err != nil {
		return newErr("Ledger", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			w.handleEvent(ctx, ev)
		}
	}
}

func (w *Worker) handleEvent(ctx context.Context, ev ledger.ContractEvent) {
	req, err := decodeJobRequestSubmitted(ev.Data)
	if err != nil {
		w.log.Debug().Err(err).Msg("event did not decode as a job request, ignoring")
		return
	}

	if err := w.acceptJob(ctx, req.ID); err != nil {
		w.log.Warn().Err(err).Msg("failed to accept job")
	}
}

// acceptJob waits for at least one gossip peer and publishes a
// JobAcceptance for jobID on the worker's own topic.
func (w *Worker) acceptJob(ctx context.Context, jobID []byte) error {
	if err := w.node.WaitForGossipPeers(ctx, w.topic, gossipPeerPollInterval); err != nil {
		return newErr("Network", err)
	}

	msg, err := wire.EncodeGossip(wire.NewJobAcceptance(jobID))
	if err != nil {
		return newErr("Codec", err)
	}

	if err := w.node.Publish(ctx, w.topic, msg); err != nil {
		return newErr("Network", err)
	}

	w.log.Info().Str("job_id", string(jobID)).Msg("job acceptance published")
	return nil
}

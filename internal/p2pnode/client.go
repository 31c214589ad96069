package p2pnode

import (
	"context"
	"time"
)

// NodeClient is the public handle other components use to drive a running
// Node. Each command method (Publish, Subscribe, SendRequest,
// SendResponse, LocalPeerID, GossipNodes) sends exactly one command and
// waits for exactly one reply, bounded by commandTimeout.
type NodeClient struct {
	cmdCh chan command

	gossipOut   chan GossipMessage
	requestOut  chan InboundRequest
	responseOut chan InboundResponse
}

// Publish sends data on topic. The topic must already be subscribed to.
func (c *NodeClient) Publish(ctx context.Context, topic string, data []byte) error {
	rch := make(chan error, 1)
	if err := c.send(ctx, publishCmd{topic: topic, data: data, rch: rch}); err != nil {
		return err
	}
	return c.awaitErr(ctx, rch)
}

// Subscribe joins a gossipsub topic so its messages start flowing to
// Gossip().
func (c *NodeClient) Subscribe(ctx context.Context, topic string) error {
	rch := make(chan error, 1)
	if err := c.send(ctx, subscribeCmd{topic: topic, rch: rch}); err != nil {
		return err
	}
	return c.awaitErr(ctx, rch)
}

// SendRequest opens a stream to peer and writes data; the eventual
// response surfaces on Responses().
func (c *NodeClient) SendRequest(ctx context.Context, peer NetworkId, data []byte) error {
	rch := make(chan error, 1)
	if err := c.send(ctx, sendRequestCmd{peerID: peer, data: data, rch: rch}); err != nil {
		return err
	}
	return c.awaitErr(ctx, rch)
}

// SendResponse answers a previously observed InboundRequest. Each request
// id can be answered at most once.
func (c *NodeClient) SendResponse(ctx context.Context, requestID uint64, data []byte) error {
	rch := make(chan error, 1)
	if err := c.send(ctx, sendResponseCmd{requestID: requestID, data: data, rch: rch}); err != nil {
		return err
	}
	return c.awaitErr(ctx, rch)
}

// LocalPeerID returns the node's own network id.
func (c *NodeClient) LocalPeerID(ctx context.Context) (NetworkId, error) {
	rch := make(chan localPeerIDReply, 1)
	if err := c.send(ctx, localPeerIDCmd{rch: rch}); err != nil {
		return NetworkId{}, err
	}
	timer := time.NewTimer(commandTimeout)
	defer timer.Stop()
	select {
	case r := <-rch:
		return r.id, r.err
	case <-ctx.Done():
		return NetworkId{}, newErr(kindTimedOutWaitingForNodeResponse, ctx.Err())
	case <-timer.C:
		return NetworkId{}, newErr(kindTimedOutWaitingForNodeResponse, nil)
	}
}

// GossipNodes returns the peers currently in the mesh for topic.
func (c *NodeClient) GossipNodes(ctx context.Context, topic string) ([]NetworkId, error) {
	rch := make(chan gossipNodesReply, 1)
	if err := c.send(ctx, gossipNodesCmd{topic: topic, rch: rch}); err != nil {
		return nil, err
	}
	timer := time.NewTimer(commandTimeout)
	defer timer.Stop()
	select {
	case r := <-rch:
		return r.nodes, r.err
	case <-ctx.Done():
		return nil, newErr(kindTimedOutWaitingForNodeResponse, ctx.Err())
	case <-timer.C:
		return nil, newErr(kindTimedOutWaitingForNodeResponse, nil)
	}
}

// WaitForGossipPeers blocks, polling every interval, until topic has at
// least one gossip peer or ctx is done.
func (c *NodeClient) WaitForGossipPeers(ctx context.Context, topic string, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		peers, err := c.GossipNodes(ctx, topic)
		if err != nil {
			return err
		}
		if len(peers) > 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Gossip returns the channel of inbound gossip messages.
func (c *NodeClient) Gossip() <-chan GossipMessage { return c.gossipOut }

// Requests returns the channel of inbound requests awaiting a response.
func (c *NodeClient) Requests() <-chan InboundRequest { return c.requestOut }

// Responses returns the channel of inbound responses to requests this
// client previously sent.
func (c *NodeClient) Responses() <-chan InboundResponse { return c.responseOut }

func (c *NodeClient) send(ctx context.Context, cmd command) error {
	select {
	case c.cmdCh <- cmd:
		return nil
	case <-ctx.Done():
		return newErr(kindSendClientRequest, ctx.Err())
	}
}

func (c *NodeClient) awaitErr(ctx context.Context, rch chan error) error {
	timer := time.NewTimer(commandTimeout)
	defer timer.Stop()
	select {
	case err := <-rch:
		return err
	case <-ctx.Done():
		return newErr(kindTimedOutWaitingForNodeResponse, ctx.Err())
	case <-timer.C:
		return newErr(kindTimedOutWaitingForNodeResponse, nil)
	}
}

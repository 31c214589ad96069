// Package p2pnode implements the actor-model P2P node: a single goroutine
// owns the libp2p host and swarm state, driven by commands arriving over
// one inbox channel and emitting gossip/request/response events onto
// bounded outboxes.
package p2pnode

import (
	"context"
	"fmt"
	"hash/fnv"
	"runtime"
	"sync"
	"time"

	"github.com/libp2p/go-libp2p"
	pubsub "github.com/libp2p/go-libp2p-pubsub"
	pubsubpb "github.com/libp2p/go-libp2p-pubsub/pb"
	"github.com/libp2p/go-libp2p/core/host"
	"github.com/libp2p/go-libp2p/core/network"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/libp2p/go-libp2p/core/protocol"
	"github.com/libp2p/go-libp2p/p2p/discovery/mdns"
	"github.com/libp2p/go-libp2p/p2p/security/tls"
	quic "github.com/libp2p/go-libp2p/p2p/transport/quic"
	"github.com/libp2p/go-libp2p/p2p/transport/tcp"
	msgio "github.com/libp2p/go-msgio"
	ma "github.com/multiformats/go-multiaddr"
	"github.com/rs/zerolog"

	"github.com/oac1771/bruja/internal/logging"
)

// ExchangeProtocol is the dedicated stream protocol used for job
// request/response exchanges.
const ExchangeProtocol protocol.ID = "/exchange/1.0.0"

const (
	outboxBuffer    = 100
	commandTimeout  = 5 * time.Second
	gossipHeartbeat = 10 * time.Second
)

// NetworkId wraps a libp2p peer id.
type NetworkId struct{ id peer.ID }

func (n NetworkId) String() string { return n.id.String() }

// GossipMessage is a decoded message observed on a subscribed topic.
type GossipMessage struct {
	NetworkId NetworkId
	Message   []byte
}

// InboundRequest is a request observed on the exchange protocol, still
// awaiting a response via SendResponse.
type InboundRequest struct {
	id      uint64
	From    NetworkId
	Payload []byte
}

// ID is the at-most-once response correlation handle.
func (r InboundRequest) ID() uint64 { return r.id }

// InboundResponse is a response received for a previously sent request.
type InboundResponse struct {
	RequestID uint64
	Payload   []byte
}

type pendingStream struct {
	stream network.Stream
}

// Node owns the libp2p host and runs the single-goroutine event loop.
type Node struct {
	host  host.Host
	pubsub *pubsub.PubSub
	topics map[string]*pubsub.Topic

	cmdCh chan command

	gossipOut   chan GossipMessage
	requestOut  chan InboundRequest
	responseOut chan InboundResponse

	pendingMu   sync.Mutex
	pendingReq  map[uint64]pendingStream

	log zerolog.Logger
}

// Build constructs a Node listening on an OS-assigned TCP and QUIC port.
func Build(ctx context.Context) (*Node, error) {
	tcpAddr, err := ma.NewMultiaddr("/ip4/0.0.0.0/tcp/0")
	if err != nil {
		return nil, newErr(kindTransport, err)
	}
	quicAddr, err := ma.NewMultiaddr("/ip4/0.0.0.0/udp/0/quic-v1")
	if err != nil {
		return nil, newErr(kindTransport, err)
	}

	h, err := libp2p.New(
		libp2p.ListenAddrs(tcpAddr, quicAddr),
		libp2p.Transport(tcp.NewTCPTransport),
		libp2p.Transport(quic.NewTransport),
		libp2p.Security(tls.ID, tls.New),
	)
	if err != nil {
		return nil, newErr(kindTransport, err)
	}

	gossipParams := pubsub.DefaultGossipSubParams()
	gossipParams.HeartbeatInterval = gossipHeartbeat

	ps, err := pubsub.NewGossipSub(ctx, h,
		pubsub.WithMessageIdFn(contentAddressedID),
		pubsub.WithPeerExchange(false),
		pubsub.WithGossipSubParams(gossipParams),
	)
	if err != nil {
		h.Close()
		return nil, newErr(kindBehavior, err)
	}

	mdnsSvc := mdns.NewMdnsService(h, "bruja", &mdnsNotifee{host: h, log: logging.For("p2pnode.mdns")})
	if err := mdnsSvc.Start(); err != nil {
		h.Close()
		return nil, newErr(kindBehavior, err)
	}

	n := &Node{
		host:        h,
		pubsub:      ps,
		topics:      make(map[string]*pubsub.Topic),
		cmdCh:       make(chan command),
		gossipOut:   make(chan GossipMessage, outboxBuffer),
		requestOut:  make(chan InboundRequest, outboxBuffer),
		responseOut: make(chan InboundResponse, outboxBuffer),
		pendingReq:  make(map[uint64]pendingStream),
		log:         logging.For("p2pnode"),
	}

	h.SetStreamHandler(ExchangeProtocol, n.handleIncomingStream)

	return n, nil
}

// contentAddressedID derives a deterministic, content-addressed message id
// from the message payload, matching the "gossip messages are deduplicated
// by content hash" property.
func contentAddressedID(m *pubsubpb.Message) string {
	h := fnv.New64a()
	h.Write(m.GetData())
	return fmt.Sprintf("%x", h.Sum64())
}

// Start spawns the event loop and returns a client for interacting with it.
func (n *Node) Start(ctx context.Context) (*NodeClient, <-chan struct{}) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		n.run(ctx)
	}()
	return &NodeClient{
		cmdCh:       n.cmdCh,
		gossipOut:   n.gossipOut,
		requestOut:  n.requestOut,
		responseOut: n.responseOut,
	}, done
}

func (n *Node) run(ctx context.Context) {
	n.log.Info().Str("peer_id", n.host.ID().String()).Msg("node started")
	for {
		select {
		case <-ctx.Done():
			n.host.Close()
			return
		case cmd, ok := <-n.cmdCh:
			if !ok {
				return
			}
			n.handleCommand(ctx, cmd)
		}
		runtime.Gosched()
	}
}

func (n *Node) handleCommand(ctx context.Context, cmd command) {
	switch c := cmd.(type) {
	case publishCmd:
		c.reply(n.publish(ctx, c.topic, c.data))
	case subscribeCmd:
		c.reply(n.subscribe(ctx, c.topic))
	case sendRequestCmd:
		c.reply(n.sendRequest(ctx, c.peerID, c.data))
	case sendResponseCmd:
		c.reply(n.sendResponse(c.requestID, c.data))
	case localPeerIDCmd:
		c.reply(NetworkId{id: n.host.ID()}, nil)
	case gossipNodesCmd:
		c.reply(n.gossipNodes(c.topic), nil)
	default:
		n.log.Error().Msg("unknown command type")
	}
}

func (n *Node) publish(ctx context.Context, topicName string, data []byte) error {
	topic, ok := n.topics[topicName]
	if !ok {
		return newErr(kindPublish, fmt.Errorf("not subscribed to %q", topicName))
	}
	// go-libp2p-pubsub's Publish succeeds even with an empty mesh, unlike
	// rust-libp2p's gossipsub; reject explicitly so callers see the same
	// InsufficientPeers failure either implementation would surface.
	if len(topic.ListPeers()) == 0 {
		return newErr(kindInsufficientPeers, fmt.Errorf("no peers in mesh for %q", topicName))
	}
	if err := topic.Publish(ctx, data); err != nil {
		return newErr(kindPublish, err)
	}
	return nil
}

func (n *Node) subscribe(ctx context.Context, topicName string) error {
	if _, ok := n.topics[topicName]; ok {
		return nil
	}
	topic, err := n.pubsub.Join(topicName)
	if err != nil {
		return newErr(kindSubscription, err)
	}
	sub, err := topic.Subscribe()
	if err != nil {
		return newErr(kindSubscription, err)
	}
	n.topics[topicName] = topic

	go n.forwardGossip(ctx, topicName, sub)
	return nil
}

func (n *Node) forwardGossip(ctx context.Context, topicName string, sub *pubsub.Subscription) {
	self := n.host.ID()
	for {
		msg, err := sub.Next(ctx)
		if err != nil {
			return
		}
		if msg.ReceivedFrom == self {
			continue
		}
		select {
		case n.gossipOut <- GossipMessage{NetworkId: NetworkId{id: msg.ReceivedFrom}, Message: msg.Data}:
			gossipMessagesTotal.Inc()
		default:
			n.log.Warn().Str("topic", topicName).Msg("gossip outbox full, dropping message")
		}
	}
}

func (n *Node) gossipNodes(topicName string) []NetworkId {
	topic, ok := n.topics[topicName]
	if !ok {
		return nil
	}
	peers := topic.ListPeers()
	out := make([]NetworkId, len(peers))
	for i, p := range peers {
		out[i] = NetworkId{id: p}
	}
	return out
}

func (n *Node) sendRequest(ctx context.Context, target NetworkId, data []byte) error {
	s, err := n.host.NewStream(ctx, target.id, ExchangeProtocol)
	if err != nil {
		return newErr(kindTransport, err)
	}
	writer := msgio.NewVarintWriter(s)
	if err := writer.WriteMsg(data); err != nil {
		s.Close()
		return newErr(kindTransport, err)
	}

	go n.readResponse(s)
	return nil
}

func (n *Node) readResponse(s network.Stream) {
	defer s.Close()
	reader := msgio.NewVarintReader(s)
	payload, err := reader.ReadMsg()
	if err != nil {
		return
	}
	select {
	case n.responseOut <- InboundResponse{RequestID: streamRequestID(s), Payload: payload}:
	default:
		n.log.Warn().Msg("response outbox full, dropping message")
	}
}

func (n *Node) handleIncomingStream(s network.Stream) {
	reader := msgio.NewVarintReader(s)
	payload, err := reader.ReadMsg()
	if err != nil {
		s.Close()
		return
	}

	id := streamRequestID(s)
	n.pendingMu.Lock()
	n.pendingReq[id] = pendingStream{stream: s}
	n.pendingMu.Unlock()

	select {
	case n.requestOut <- InboundRequest{id: id, From: NetworkId{id: s.Conn().RemotePeer()}, Payload: payload}:
		requestsTotal.Inc()
		pendingRequests.Inc()
	default:
		n.log.Warn().Msg("request outbox full, dropping message")
		n.pendingMu.Lock()
		delete(n.pendingReq, id)
		n.pendingMu.Unlock()
		s.Close()
	}
}

func (n *Node) sendResponse(requestID uint64, data []byte) error {
	n.pendingMu.Lock()
	ps, ok := n.pendingReq[requestID]
	if ok {
		delete(n.pendingReq, requestID)
	}
	n.pendingMu.Unlock()
	if ok {
		pendingRequests.Dec()
	}

	if !ok {
		return newErr(kindChannelNotFoundForGivenRequest, fmt.Errorf("request id %d", requestID))
	}

	writer := msgio.NewVarintWriter(ps.stream)
	defer ps.stream.Close()
	if err := writer.WriteMsg(data); err != nil {
		return newErr(kindSendResponseError, err)
	}
	return nil
}

// streamRequestID derives a stable per-stream correlation id. Stream
// pointers aren't content-addressable, so this hashes the remote peer id
// together with the stream's own address to get a value stable for the
// lifetime of the stream.
func streamRequestID(s network.Stream) uint64 {
	h := fnv.New64a()
	h.Write([]byte(s.Conn().RemotePeer()))
	h.Write([]byte(fmt.Sprintf("%p", s)))
	return h.Sum64()
}

type mdnsNotifee struct {
	host host.Host
	log  zerolog.Logger
}

func (m *mdnsNotifee) HandlePeerFound(pi peer.AddrInfo) {
	m.log.Debug().Str("peer", pi.ID.String()).Msg("mdns peer discovered")
	if err := m.host.Connect(context.Background(), pi); err != nil {
		m.log.Debug().Err(err).Str("peer", pi.ID.String()).Msg("mdns connect failed")
	}
}

package p2pnode

import "github.com/prometheus/client_golang/prometheus"

var (
	gossipMessagesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "bruja",
		Subsystem: "p2pnode",
		Name:      "gossip_messages_total",
		Help:      "Gossip messages forwarded to the node's outbox.",
	})
	requestsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "bruja",
		Subsystem: "p2pnode",
		Name:      "requests_total",
		Help:      "Inbound exchange-protocol requests observed.",
	})
	pendingRequests = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "bruja",
		Subsystem: "p2pnode",
		Name:      "pending_requests",
		Help:      "Inbound requests awaiting a response.",
	})
)

func init() {
	prometheus.MustRegister(gossipMessagesTotal, requestsTotal, pendingRequests)
}

// Stats is a point-in-time snapshot of the node's internal queues, for
// periodic diagnostic logging by the owning controller.
type Stats struct {
	PendingRequests int
	GossipOutbox    int
	RequestOutbox   int
	ResponseOutbox  int
}

// Stats snapshots the node's outbox depths and pending-request count. Safe
// to call from any goroutine.
func (n *Node) Stats() Stats {
	n.pendingMu.Lock()
	pending := len(n.pendingReq)
	n.pendingMu.Unlock()

	return Stats{
		PendingRequests: pending,
		GossipOutbox:    len(n.gossipOut),
		RequestOutbox:   len(n.requestOut),
		ResponseOutbox:  len(n.responseOut),
	}
}

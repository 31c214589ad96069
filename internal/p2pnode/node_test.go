package p2pnode

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishRequiresSubscription(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	n, err := Build(ctx)
	require.NoError(t, err)
	client, _ := n.Start(ctx)

	err = client.Publish(ctx, "jobs", []byte("hello"))
	require.Error(t, err)

	var pErr *Error
	require.ErrorAs(t, err, &pErr)
	assert.Equal(t, kindPublish, pErr.Kind)
}

func TestPublishInsufficientPeers(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	n, err := Build(ctx)
	require.NoError(t, err)
	client, _ := n.Start(ctx)

	require.NoError(t, client.Subscribe(ctx, "jobs"))

	err = client.Publish(ctx, "jobs", []byte("hello"))
	require.Error(t, err)

	var pErr *Error
	require.ErrorAs(t, err, &pErr)
	assert.Equal(t, kindInsufficientPeers, pErr.Kind)
}

func TestTwoNodesGossipRoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	nodeA, err := Build(ctx)
	require.NoError(t, err)
	clientA, _ := nodeA.Start(ctx)

	nodeB, err := Build(ctx)
	require.NoError(t, err)
	clientB, _ := nodeB.Start(ctx)

	const topic = "jobs"
	require.NoError(t, clientA.Subscribe(ctx, topic))
	require.NoError(t, clientB.Subscribe(ctx, topic))

	require.NoError(t, clientA.WaitForGossipPeers(ctx, topic, 200*time.Millisecond))

	require.NoError(t, clientA.Publish(ctx, topic, []byte("ping")))

	select {
	case msg := <-clientB.Gossip():
		assert.Equal(t, []byte("ping"), msg.Message)
	case <-time.After(10 * time.Second):
		t.Fatal("timed out waiting for gossip message")
	}
}

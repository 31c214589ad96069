package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/oac1771/bruja/internal/ledger/signer"
	"github.com/oac1771/bruja/internal/logging"
)

const (
	dialRetryWindow    = 30 * time.Second
	notificationBuffer = 32
)

// Client is a JSON-RPC/WebSocket driver for the ledger, scoped to a single
// contract artifact and signer.
type Client struct {
	conn     *websocket.Conn
	artifact ContractArtifact
	signer   signer.Signer

	writeMu sync.Mutex
	nextID  int64

	pendingMu sync.Mutex
	pending   map[int64]chan rpcResponse

	subsMu sync.Mutex
	subs   map[string]chan json.RawMessage

	log zerolog.Logger
}

type rpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int64           `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
}

type rpcResponse struct {
	ID     int64           `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
	Method string          `json:"method"`
	Params *rpcNotifyParam `json:"params,omitempty"`
}

type rpcNotifyParam struct {
	Subscription string          `json:"subscription"`
	Result       json.RawMessage `json:"result"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Dial connects to url, retrying with exponential backoff for up to
// dialRetryWindow before surfacing the last error, and loads the contract
// artifact at artifactPath.
func Dial(ctx context.Context, url, artifactPath string, s signer.Signer) (*Client, error) {
	artifact, err := LoadArtifact(artifactPath)
	if err != nil {
		return nil, err
	}

	var conn *websocket.Conn
	op := func() error {
		c, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
		if err != nil {
			return err
		}
		conn = c
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = time.Second
	bo.MaxInterval = time.Second
	bo.MaxElapsedTime = dialRetryWindow

	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		return nil, newErr(kindTransport, err)
	}

	c := &Client{
		conn:     conn,
		artifact: artifact,
		signer:   s,
		pending:  make(map[int64]chan rpcResponse),
		subs:     make(map[string]chan json.RawMessage),
		log:      logging.For("ledger"),
	}
	go c.readLoop()
	return c, nil
}

func (c *Client) readLoop() {
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			c.log.Debug().Err(err).Msg("read loop exiting")
			return
		}
		var resp rpcResponse
		if err := json.Unmarshal(data, &resp); err != nil {
			c.log.Warn().Err(err).Msg("malformed rpc frame")
			continue
		}

		if resp.Params != nil {
			c.subsMu.Lock()
			ch, ok := c.subs[resp.Params.Subscription]
			c.subsMu.Unlock()
			if ok {
				select {
				case ch <- resp.Params.Result:
				default:
				}
			}
			continue
		}

		c.pendingMu.Lock()
		ch, ok := c.pending[resp.ID]
		if ok {
			delete(c.pending, resp.ID)
		}
		c.pendingMu.Unlock()
		if ok {
			ch <- resp
		}
	}
}

func (c *Client) call(ctx context.Context, method string, params interface{}) (json.RawMessage, error) {
	id := atomic.AddInt64(&c.nextID, 1)
	raw, err := json.Marshal(params)
	if err != nil {
		return nil, newErr(kindSerdeJson, err)
	}

	ch := make(chan rpcResponse, 1)
	c.pendingMu.Lock()
	c.pending[id] = ch
	c.pendingMu.Unlock()

	req := rpcRequest{JSONRPC: "2.0", ID: id, Method: method, Params: raw}
	reqBytes, err := json.Marshal(req)
	if err != nil {
		return nil, newErr(kindSerdeJson, err)
	}

	c.writeMu.Lock()
	err = c.conn.WriteMessage(websocket.TextMessage, reqBytes)
	c.writeMu.Unlock()
	if err != nil {
		return nil, newErr(kindTransport, err)
	}

	select {
	case resp := <-ch:
		if resp.Error != nil {
			return nil, newErr(kindDispatch, fmt.Errorf("%d: %s", resp.Error.Code, resp.Error.Message))
		}
		return resp.Result, nil
	case <-ctx.Done():
		return nil, newErr(kindTransport, ctx.Err())
	}
}

// subscribe issues a subscription RPC and returns a channel of raw
// notification payloads, keyed internally by the subscription id the node
// hands back.
func (c *Client) subscribe(ctx context.Context, method string) (<-chan json.RawMessage, error) {
	result, err := c.call(ctx, method, []interface{}{})
	if err != nil {
		return nil, err
	}
	var subID string
	if err := json.Unmarshal(result, &subID); err != nil {
		return nil, newErr(kindSerdeJson, err)
	}

	ch := make(chan json.RawMessage, notificationBuffer)
	c.subsMu.Lock()
	c.subs[subID] = ch
	c.subsMu.Unlock()
	return ch, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Package feed consumes the service's streaming trade feed over websocket.
// Read-only and separate from the signed request path; losing the feed never
// affects order submission.
package feed

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/arborter/arborter-go/arb/types"
)

const (
	writeTimeout = 10 * time.Second
	pingInterval = 30 * time.Second
)

// TradeEvent is one fill broadcast on a market stream.
type TradeEvent struct {
	MarketID  string     `json:"marketId"`
	Price     string     `json:"price"`
	Quantity  string     `json:"quantity"`
	TakerSide types.Side `json:"takerSide"`
	Timestamp uint64     `json:"timestamp"`
}

type envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type subscribeMsg struct {
	Op       string `json:"op"`
	MarketID string `json:"marketId"`
}

// Client is a single websocket session. Events are delivered on one channel
// across all subscribed markets; the channel closes when the session ends.
type Client struct {
	conn   *websocket.Conn
	events chan TradeEvent
	log    logrus.FieldLogger

	writeMu   sync.Mutex
	closeOnce sync.Once
	cancel    context.CancelFunc
}

// Dial connects to the feed endpoint (ws:// or wss://) and starts the read
// loop. The context bounds the handshake and, once done, tears the session
// down.
func Dial(ctx context.Context, url string, log logrus.FieldLogger) (*Client, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, &types.TransportError{Op: "dial " + url, Err: err}
	}

	runCtx, cancel := context.WithCancel(ctx)
	c := &Client{
		conn:   conn,
		events: make(chan TradeEvent, 256),
		log:    log,
		cancel: cancel,
	}
	go c.readLoop(runCtx)
	go c.pingLoop(runCtx)
	return c, nil
}

// Subscribe asks the server to start streaming trades for a market.
func (c *Client) Subscribe(marketID string) error {
	return c.write(subscribeMsg{Op: "subscribe", MarketID: marketID})
}

// Unsubscribe stops the stream for a market.
func (c *Client) Unsubscribe(marketID string) error {
	return c.write(subscribeMsg{Op: "unsubscribe", MarketID: marketID})
}

// Events returns the delivery channel. Closed when the session ends.
func (c *Client) Events() <-chan TradeEvent {
	return c.events
}

// Close tears the session down. Safe to call more than once.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		err = c.conn.Close()
	})
	return err
}

func (c *Client) write(v any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	if err := c.conn.WriteJSON(v); err != nil {
		return errors.Wrap(err, "feed write")
	}
	return nil
}

func (c *Client) readLoop(ctx context.Context) {
	defer close(c.events)
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				c.log.WithError(err).Warn("trade feed closed")
			}
			return
		}
		var env envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			c.log.WithError(err).Debug("unparseable feed frame")
			continue
		}
		if env.Type != "trade" {
			continue
		}
		var ev TradeEvent
		if err := json.Unmarshal(env.Data, &ev); err != nil {
			c.log.WithError(err).Debug("unparseable trade event")
			continue
		}
		select {
		case c.events <- ev:
		case <-ctx.Done():
			return
		}
	}
}

func (c *Client) pingLoop(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.writeMu.Lock()
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.writeMu.Unlock()
				return
			}
			c.writeMu.Unlock()
		}
	}
}

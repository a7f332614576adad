package ws

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var (
	pongWait     = 10 * time.Second
	pingInterval = (pongWait * 9) / 10
	writeWait    = 5 * time.Second
)

const egressBuffer = 16

type Client struct {
	ID         string
	connection *websocket.Conn
	manager    *Manager
	egress     chan Event
	err        chan error
	done       chan struct{}
	doneOnce   sync.Once
	// held while one of the client's events is handled; disconnect takes it
	// so that no handler runs after the client's rooms are closed
	handling sync.Mutex
	logger   *zap.Logger
}

func NewClient(conn *websocket.Conn, manager *Manager) *Client {
	id := uuid.NewString()

	return &Client{
		ID:         id,
		connection: conn,
		manager:    manager,
		egress:     make(chan Event, egressBuffer),
		err:        make(chan error, 1),
		done:       make(chan struct{}),
		logger:     manager.logger.With(zap.String("conn_id", id)),
	}
}

// Reads incoming messages from the clients websocket connection. Events are
// handled one at a time, in arrival order.
func (c *Client) readMessages(ctx context.Context) {
	c.connection.SetReadLimit(c.manager.config.ReadLimit)

	if err := c.connection.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.handleError(err)
		return
	}

	c.connection.SetPongHandler(c.pongHandler)

	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, payload, err := c.connection.ReadMessage()

			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
					c.logger.Warn("unexpected closure of socket connection", zap.Error(err))
				}
				c.handleError(err)
				return
			}

			var evt Event

			if err := json.Unmarshal(payload, &evt); err != nil {
				c.pushError("", "cannot unmarshal json payload")
				continue
			}

			c.logger.Debug("event received", zap.String("type", evt.Type), zap.String("trace_id", evt.TraceID))

			if err := c.manager.routeEvent(ctx, evt, c); err != nil {
				c.logger.Debug("event failed", zap.String("type", evt.Type), zap.Error(err))
				// handler errors go back to the sender under the request's trace id
				c.pushError(evt.TraceID, err.Error())
			}
		}
	}
}

// writes messages pushed to the client's egress channel
func (c *Client) writeMessages(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)

	defer func() {
		ticker.Stop()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case message := <-c.egress:
			data, err := json.Marshal(message)

			if err != nil {
				c.logger.Error("cannot marshal event", zap.String("type", message.Type), zap.Error(err))
				continue
			}

			c.connection.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.connection.WriteMessage(websocket.TextMessage, data); err != nil {
				c.handleError(err)
				return
			}
		case <-ticker.C:
			c.connection.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.connection.WriteMessage(websocket.PingMessage, []byte{}); err != nil {
				c.handleError(err)
				return
			}
		}
	}
}

// Sets a new read deadline when a pong is received for a ping message.
func (c *Client) pongHandler(pongMsg string) error {
	return c.connection.SetReadDeadline(time.Now().Add(pongWait))
}

// Reports the first error from readMessages or writeMessages to ServeWS,
// which then tears the connection down. Later errors are dropped.
func (c *Client) handleError(e error) {
	select {
	case c.err <- e:
	default:
	}
}

// Returns the error channel
func (c *Client) Err() <-chan error {
	return c.err
}

// Pushes an event to the client's egress to be delivered via the websocket
// connection. Blocks while the egress is full; fails once the client is gone.
func (c *Client) PushToEgress(evt Event) error {
	if c.gone() {
		return errClientGone
	}

	select {
	case c.egress <- evt:
		return nil
	case <-c.done:
		return errClientGone
	}
}

var errClientGone = errors.New("client disconnected")

func (c *Client) reply(req Event, payload any) error {
	evt, err := NewReply(req, payload)
	if err != nil {
		return err
	}
	return c.PushToEgress(evt)
}

func (c *Client) pushError(traceID, message string) {
	evt, err := NewErrorEvent(traceID, message)
	if err != nil {
		c.logger.Error("cannot create error event", zap.Error(err))
		return
	}

	c.PushToEgress(evt)
}

func (c *Client) gone() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

func (c *Client) markDone() {
	c.doneOnce.Do(func() {
		close(c.done)
	})
}

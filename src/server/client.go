package server

import (
	"context"
	"sync"
	"time"

	"options-flow/src/models"

	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Constants
// -----------------------------------------------------------------------------

const (
	writeWait      = 2 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
)

// -----------------------------------------------------------------------------
// Client Structure
// -----------------------------------------------------------------------------

// Client is one watch-stream connection with at most one active subscription.
type Client struct {
	id   string
	hub  *FastAPIServer
	conn *websocket.Conn
	send chan *models.MWatchMessage

	mu     sync.Mutex
	closed bool
	cancel context.CancelFunc
}

// -----------------------------------------------------------------------------
// readPump - handles incoming commands from client
// Act as a Watchdog for the connection
// -----------------------------------------------------------------------------

func (c *Client) readPump() {
	defer func() {
		c.unsubscribe()
		select {
		case c.hub.unregister <- c:
		case <-c.hub.quit:
		}
		c.conn.Close()
		c.hub.Logger.Info("Watch client %s disconnected", c.id)
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.Logger.Info("WebSocket error: %v", err)
			}
			break
		}
		c.hub.HandleClientMessage(c, message)
	}
}

// -----------------------------------------------------------------------------
// writePump - sends messages to client
// -----------------------------------------------------------------------------

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(message); err != nil {
				c.hub.Logger.Info("Write error: %v", err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// -----------------------------------------------------------------------------
// Subscription
// -----------------------------------------------------------------------------

// trySend queues msg without blocking. Messages for a full or closed client are dropped.
func (c *Client) trySend(msg *models.MWatchMessage) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}
	select {
	case c.send <- msg:
		return true
	default:
		c.hub.Logger.Warning("Watch client %s is slow, dropping %s message", c.id, msg.Type)
		return false
	}
}

// -----------------------------------------------------------------------------

// close is called by the hub once the client is unregistered.
func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	close(c.send)
}

// -----------------------------------------------------------------------------

// subscribe replaces the current subscription with req.
func (c *Client) subscribe(req models.MFlowRequest) {
	ctx, cancel := context.WithCancel(context.Background())

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		cancel()
		return
	}
	if c.cancel != nil {
		c.cancel()
	}
	c.cancel = cancel
	c.mu.Unlock()

	c.hub.Logger.Info("Watch client %s subscribed to %s", c.id, req.Ticker)
	go c.watch(ctx, req)
}

// -----------------------------------------------------------------------------

func (c *Client) unsubscribe() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

// -----------------------------------------------------------------------------

// watch recomputes the flow for req every poll interval until ctx is cancelled.
func (c *Client) watch(ctx context.Context, req models.MFlowRequest) {
	ticker := time.NewTicker(time.Duration(c.hub.pollInterval.Load()))
	defer ticker.Stop()

	closedNotified := false
	for {
		c.poll(ctx, req, &closedNotified)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// -----------------------------------------------------------------------------

func (c *Client) poll(ctx context.Context, req models.MFlowRequest, closedNotified *bool) {
	if c.hub.Config.Watch.MarketHoursOnly && c.hub.Scheduler != nil && !c.hub.Scheduler.IsMarketOpenNow(req.Ticker) {
		if !*closedNotified {
			c.trySend(newWatchMessage(msgMarketClosed, req.Ticker, nil, ""))
			*closedNotified = true
		}
		return
	}
	*closedNotified = false

	data, err := c.hub.Flow.GetFlow(ctx, req)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		c.hub.ErrorHandler.Handle(err, "watch "+req.Ticker)
		c.trySend(newWatchMessage(msgError, req.Ticker, nil, err.Error()))
		return
	}
	c.trySend(newWatchMessage(msgFlow, req.Ticker, data, ""))
}

package server

import (
	"encoding/json"
	"net/http"
	"time"

	"options-flow/src/models"
	"options-flow/src/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	msgFlow         = "FLOW"
	msgError        = "ERROR"
	msgMarketClosed = "MARKET_CLOSED"
	msgUnsubscribed = "UNSUBSCRIBED"
)

// -----------------------------------------------------------------------------
// Hub Pattern Implementation
// -----------------------------------------------------------------------------

// handleWebsockets is the main Hub loop
func (s *FastAPIServer) handleWebsockets() {
	for {
		select {
		case client := <-s.register:
			s.clientsMu.Lock()
			s.reserved--
			s.clients[client] = struct{}{}
			s.clientsMu.Unlock()
			s.Logger.Info("Watch client %s connected", client.id)

		case client := <-s.unregister:
			s.clientsMu.Lock()
			if _, ok := s.clients[client]; ok {
				delete(s.clients, client)
				client.close()
			}
			s.clientsMu.Unlock()

		case <-s.quit:
			s.clientsMu.Lock()
			for client := range s.clients {
				delete(s.clients, client)
				client.close()
			}
			s.clientsMu.Unlock()
			return
		}
	}
}

// -----------------------------------------------------------------------------
// WebSocket Handlers
// -----------------------------------------------------------------------------

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// -----------------------------------------------------------------------------

// reserveSlot claims a client slot, counting upgrades still in flight, so the
// limit holds under simultaneous connects.
func (s *FastAPIServer) reserveSlot() bool {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()

	if limit := s.Config.Watch.MaxClients; limit > 0 && len(s.clients)+s.reserved >= limit {
		return false
	}
	s.reserved++
	return true
}

func (s *FastAPIServer) releaseSlot() {
	s.clientsMu.Lock()
	s.reserved--
	s.clientsMu.Unlock()
}

// -----------------------------------------------------------------------------

func (s *FastAPIServer) handleWebSocket(c *gin.Context) {
	if !s.reserveSlot() {
		s.Logger.Warning("Rejecting watch client: %d clients connected", s.Config.Watch.MaxClients)
		c.JSON(http.StatusServiceUnavailable, models.MErrorResponse{Error: "Too many watch clients"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.releaseSlot()
		s.Logger.Info("Failed to upgrade websocket: %v", err)
		return
	}

	client := &Client{
		id:   uuid.NewString(),
		hub:  s,
		conn: conn,
		// Buffered channel so pollers never block on a slow socket
		send: make(chan *models.MWatchMessage, 16),
	}

	select {
	case s.register <- client:
	case <-s.quit:
		s.releaseSlot()
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// -----------------------------------------------------------------------------
// Client Message Handling
// -----------------------------------------------------------------------------

func (s *FastAPIServer) HandleClientMessage(client *Client, message []byte) {
	var cmd models.MWatchCommand
	if err := json.Unmarshal(message, &cmd); err != nil {
		s.Logger.Info("Failed to parse client command: %v, disconnecting client", err)
		client.conn.Close()
		return
	}

	switch cmd.Command {
	case "subscribe":
		ticker, err := utils.NormalizeTicker(cmd.Ticker)
		if err != nil {
			client.trySend(newWatchMessage(msgError, cmd.Ticker, nil, err.Error()))
			return
		}
		req := models.MFlowRequest{Ticker: ticker}
		if cmd.Expiration > 0 {
			exp := cmd.Expiration
			req.Expiration = &exp
		}
		client.subscribe(req)

	case "unsubscribe":
		client.unsubscribe()
		client.trySend(newWatchMessage(msgUnsubscribed, "", nil, ""))

	default:
		client.trySend(newWatchMessage(msgError, "", nil, "Unknown command: "+cmd.Command))
	}
}

// -----------------------------------------------------------------------------

func newWatchMessage(kind, ticker string, data *models.MFlowData, errMsg string) *models.MWatchMessage {
	return &models.MWatchMessage{
		Type:      kind,
		Ticker:    ticker,
		Data:      data,
		Error:     errMsg,
		Timestamp: time.Now().Unix(),
	}
}

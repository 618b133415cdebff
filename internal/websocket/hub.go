package websocket

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/ikkim/pumpcatalog-backend/internal/app/model"
	"github.com/ikkim/pumpcatalog-backend/pkg/casing"
	"github.com/ikkim/pumpcatalog-backend/pkg/logger"
	jsoniter "github.com/json-iterator/go"
)

const sendBufferSize = 64

// Client is one subscriber connection.
type Client struct {
	ID   string
	Hub  *Hub
	Conn *Conn
	Send chan []byte
}

// Hub fans order events out to every connected client.
type Hub struct {
	clients map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte

	mu sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client, 256),
		unregister: make(chan *Client, 256),
		broadcast:  make(chan []byte, 1024),
	}
}

// Run serves registrations and broadcasts until ctx is done, then closes
// every client's send channel.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				close(client.Send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			logger.Info("Order event hub stopped")
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = struct{}{}
			total := len(h.clients)
			h.mu.Unlock()
			logger.Info("WebSocket client registered", map[string]interface{}{
				"client_id": client.ID,
				"clients":   total,
			})

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
			total := len(h.clients)
			h.mu.Unlock()
			logger.Info("WebSocket client unregistered", map[string]interface{}{
				"client_id": client.ID,
				"clients":   total,
			})

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.Send <- message:
				default:
					// Slow consumer; drop it rather than stall everyone.
					delete(h.clients, client)
					close(client.Send)
					logger.Warn("Client send buffer full, disconnecting", map[string]interface{}{
						"client_id": client.ID,
					})
				}
			}
			h.mu.Unlock()
		}
	}
}

// PublishOrderEvent queues event for every client. Events are dropped when
// the broadcast buffer is full.
func (h *Hub) PublishOrderEvent(event model.OrderEvent) {
	value, err := casing.ToValue(event)
	if err != nil {
		logger.Error("Failed to encode order event", err)
		return
	}
	data, err := jsoniter.Marshal(casing.Normalize(value, casing.Options{}))
	if err != nil {
		logger.Error("Failed to marshal order event", err)
		return
	}

	select {
	case h.broadcast <- data:
	default:
		logger.Warn("Broadcast channel full, event dropped", map[string]interface{}{
			"order_id": event.OrderID,
			"type":     event.Type,
		})
	}
}

// Serve registers conn and blocks until the peer goes away.
func (h *Hub) Serve(conn *Conn) {
	client := &Client{
		ID:   uuid.NewString(),
		Hub:  h,
		Conn: conn,
		Send: make(chan []byte, sendBufferSize),
	}
	h.register <- client

	go client.WritePump()
	client.ReadPump()
}

// ClientCount returns the number of registered clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

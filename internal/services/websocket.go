package services

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/profast/profast-backend/internal/models"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

// Client represents a connected dashboard session
type Client struct {
	Email string
	Role  string
	Conn  *websocket.Conn
	Send  chan []byte
	Hub   *Hub
}

// Hub maintains the set of active clients and fans out tracking updates
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	mutex      sync.RWMutex
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte),
	}
}

// Run starts the hub
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.mutex.Unlock()
			log.Printf("Client %s connected", client.Email)

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
			h.mutex.Unlock()
			log.Printf("Client %s disconnected", client.Email)

		case message := <-h.broadcast:
			h.mutex.RLock()
			for client := range h.clients {
				select {
				case client.Send <- message:
				default:
					close(client.Send)
					delete(h.clients, client)
				}
			}
			h.mutex.RUnlock()
		}
	}
}

// BroadcastToEmail sends a message to every session of a specific user
func (h *Hub) BroadcastToEmail(email string, message []byte) {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	for client := range h.clients {
		if client.Email == email {
			select {
			case client.Send <- message:
			default:
				close(client.Send)
				delete(h.clients, client)
			}
		}
	}
}

// BroadcastToRole sends a message to all sessions with a specific role
func (h *Hub) BroadcastToRole(role string, message []byte) {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	for client := range h.clients {
		if client.Role == role {
			select {
			case client.Send <- message:
			default:
				close(client.Send)
				delete(h.clients, client)
			}
		}
	}
}

// WebSocketMessage is the envelope for every pushed update
type WebSocketMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// TrackingUpdate is pushed whenever a tracking event is appended
type TrackingUpdate struct {
	ParcelID   uint   `json:"parcelId"`
	TrackingID string `json:"tracking_id"`
	Status     string `json:"status"`
	Location   string `json:"location,omitempty"`
	UpdatedBy  string `json:"updatedBy"`
}

// BroadcastTrackingUpdate pushes a tracking event to the parcel's creator,
// its assigned rider, and every admin session.
func (h *Hub) BroadcastTrackingUpdate(event *models.TrackingEvent, creatorEmail, riderEmail string) {
	message, err := json.Marshal(WebSocketMessage{
		Type: "tracking_update",
		Data: TrackingUpdate{
			ParcelID:   event.ParcelID,
			TrackingID: event.TrackingID,
			Status:     event.Status,
			Location:   event.Location,
			UpdatedBy:  event.UpdatedBy,
		},
	})
	if err != nil {
		log.Printf("Error marshaling tracking update: %v", err)
		return
	}

	if creatorEmail != "" {
		h.BroadcastToEmail(creatorEmail, message)
	}
	if riderEmail != "" && riderEmail != creatorEmail {
		h.BroadcastToEmail(riderEmail, message)
	}
	h.BroadcastToRole(string(models.RoleAdmin), message)
}

// HandleWebSocket upgrades the connection and starts the client pumps
func HandleWebSocket(hub *Hub, w http.ResponseWriter, r *http.Request, email, role string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	client := &Client{
		Email: email,
		Role:  role,
		Conn:  conn,
		Send:  make(chan []byte, 256),
		Hub:   hub,
	}

	client.Hub.register <- client

	go client.writePump()
	go client.readPump()
}

// readPump drains the connection; the dashboard only listens, so inbound
// frames are discarded and the pump exists to detect disconnects.
func (c *Client) readPump() {
	defer func() {
		c.Hub.unregister <- c
		c.Conn.Close()
	}()

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}
	}
}

// writePump pumps messages from the hub to the websocket connection
func (c *Client) writePump() {
	defer c.Conn.Close()

	for message := range c.Send {
		if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			log.Printf("WebSocket write error: %v", err)
			return
		}
	}
	c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
}

package hub

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/yeremiapane/restaurant-tables/utils"
)

// Event types
const (
	EventTableCreate        = "table_create"
	EventTableUpdate        = "table_update"
	EventTableDelete        = "table_delete"
	EventReservationCreate  = "reservation_create"
	EventReservationUpdate  = "reservation_update"
	EventReservationDelete  = "reservation_delete"
	EventReservationCancel  = "reservation_cancel"
	EventReservationConfirm = "reservation_confirm"
	EventDayReconciled      = "day_reconciled"
)

type Message struct {
	Event        string      `json:"event"`
	RestaurantID string      `json:"restaurant_id"`
	Data         interface{} `json:"data"`
}

type client struct {
	role         string
	restaurantID string
}

// Hub menampung semua dashboard (admin, staff) yang sedang terhubung.
// Pesan hanya dikirim ke client dari restoran yang sama.
type Hub struct {
	clients map[*websocket.Conn]client
	mutex   sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*websocket.Conn]client),
	}
}

// Register -> menambahkan connection ke set dengan role dan restoran
func (h *Hub) Register(conn *websocket.Conn, role, restaurantID string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.clients[conn] = client{role: role, restaurantID: restaurantID}
}

// Unregister -> melepaskan connection
func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if _, ok := h.clients[conn]; !ok {
		return
	}
	delete(h.clients, conn)
	conn.Close()
}

func (h *Hub) ClientCount() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

// Broadcast writes msg to every client of msg.RestaurantID. Clients whose
// write fails are dropped.
func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		utils.ErrorLogger.Errorf("hub: marshal %s: %v", msg.Event, err)
		return
	}
	h.deliver(msg.RestaurantID, data)
}

func (h *Hub) deliver(restaurantID string, data []byte) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	sent := 0
	for conn, cl := range h.clients {
		if cl.restaurantID != restaurantID {
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			utils.ErrorLogger.Warnf("hub: drop %s client: %v", cl.role, err)
			delete(h.clients, conn)
			conn.Close()
			continue
		}
		sent++
	}
	utils.InfoLogger.Debugf("hub: delivered to %d clients of %s", sent, restaurantID)
}

// Nop discards every message. Used when no hub is wired (CLI, tests).
type Nop struct{}

func (Nop) Broadcast(Message) {}

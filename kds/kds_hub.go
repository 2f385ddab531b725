package kds

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/acornsoft/pocha-backend/models"
	"github.com/acornsoft/pocha-backend/utils"
)

// Events pushed to the admin dashboard.
const (
	EventOrderUpdate   = "order_update"
	EventKitchenUpdate = "kitchen_update"
	EventTableUpdate   = "table_update"
	EventWaitingUpdate = "waiting_update"
	EventPaymentUpdate = "payment_update"
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// hub holds every connected dashboard client.
type hub struct {
	clients map[*websocket.Conn]string // conn -> role
	mutex   sync.Mutex
}

var dashboardHub = hub{
	clients: make(map[*websocket.Conn]string),
}

func RegisterClient(conn *websocket.Conn, role string) {
	dashboardHub.mutex.Lock()
	defer dashboardHub.mutex.Unlock()
	dashboardHub.clients[conn] = role
}

func UnregisterClient(conn *websocket.Conn) {
	dashboardHub.mutex.Lock()
	defer dashboardHub.mutex.Unlock()
	delete(dashboardHub.clients, conn)
	conn.Close()
}

func BroadcastOrderUpdate(order models.Order) {
	broadcast(Message{Event: EventOrderUpdate, Data: order})
}

func BroadcastKitchenUpdate(data interface{}) {
	broadcast(Message{Event: EventKitchenUpdate, Data: data})
}

func BroadcastTableUpdate(table models.Table) {
	broadcast(Message{Event: EventTableUpdate, Data: table})
}

func BroadcastWaitingUpdate(waiting models.Waiting) {
	broadcast(Message{Event: EventWaitingUpdate, Data: waiting})
}

func BroadcastPaymentUpdate(payment models.Payment) {
	broadcast(Message{Event: EventPaymentUpdate, Data: payment})
}

func broadcast(msg Message) {
	dashboardHub.mutex.Lock()
	defer dashboardHub.mutex.Unlock()

	data, err := json.Marshal(msg)
	if err != nil {
		utils.ErrorLogger.Printf("error marshaling dashboard message: %v", err)
		return
	}

	for conn := range dashboardHub.clients {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			utils.ErrorLogger.Printf("error sending dashboard message: %v", err)
		}
	}
}

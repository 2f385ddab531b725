package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/acornsoft/pocha-backend/kds"
	"github.com/acornsoft/pocha-backend/utils"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type KDSController struct{}

func NewKDSController() *KDSController {
	return &KDSController{}
}

// HandleWebSocket upgrades the dashboard connection and keeps it registered
// until the client goes away. The read loop only exists to detect the close.
func (kc *KDSController) HandleWebSocket(c *gin.Context) {
	role, _ := c.Get("role")
	roleStr, _ := role.(string)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.ErrorLogger.Printf("websocket upgrade failed: %v", err)
		return
	}

	kds.RegisterClient(conn, roleStr)
	utils.InfoLogger.Printf("dashboard client connected (role=%s)", roleStr)

	go func() {
		defer kds.UnregisterClient(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/suyash-modi/Product-Detection/internal/logger"
	"github.com/suyash-modi/Product-Detection/internal/services"
)

var Upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ViewWebsocketHandler upgrades the connection and subscribes the viewer to
// the live frame and stats stream. Viewers only receive; inbound messages
// are drained to keep pong handling alive.
func ViewWebsocketHandler(pipeline *services.Pipeline, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		connection, err := Upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warning("WebSocket upgrade error: %v", err)
			return
		}
		connection.SetReadLimit(512)
		connection.SetReadDeadline(time.Now().Add(60 * time.Second))
		connection.SetPongHandler(func(appData string) error {
			connection.SetReadDeadline(time.Now().Add(60 * time.Second))
			return nil
		})
		defer connection.Close()

		hub := pipeline.Hub()
		hub.Register(connection)
		defer hub.Unregister(connection)

		log.Info("Viewer connected")

		for {
			_, _, err := connection.ReadMessage()
			if err != nil {
				log.Info("Viewer disconnected: %v", err)
				break
			}
		}
	}
}

package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"meetgo/backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allows connections from any origin. Tighten for production!
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeStatusWS upgrades the connection and pushes session updates for the
// calling user until their session reaches a terminal status. It is an
// alternative to polling the status endpoint; both deliver the same
// terminal-status outcome.
// GET /ws/meetups?session_id=...
func (h *Handler) ServeStatusWS(c *gin.Context) {
	tokenString, ok := bearerToken(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization token missing"})
		return
	}
	userID, err := validateAndGetUserID(tokenString)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token or expired"})
		return
	}

	sessionID := c.Query("session_id")
	if sessionID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "session_id is required"})
		return
	}

	// Authorization check before the upgrade: only participants may watch.
	if _, err := h.Manager.Status(sessionID, userID); err != nil {
		respondMeetupError(c, err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to upgrade connection"})
		return
	}

	go h.pushUpdates(conn, sessionID, userID)
}

// pushUpdates relays Redis-published updates for one session to a websocket
// peer. The loop ends on a terminal update or when the peer disconnects.
func (h *Handler) pushUpdates(conn *websocket.Conn, sessionID, userID string) {
	pubsub := h.Updates.SubscribeSessionUpdates()
	defer pubsub.Close()
	defer conn.Close()

	// Drain reads so peer-initiated close is noticed.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ch := pubsub.Channel()
	for {
		select {
		case <-closed:
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}

			var update models.SessionUpdate
			if err := json.Unmarshal([]byte(msg.Payload), &update); err != nil {
				log.Printf("ERROR: Failed to unmarshal session update: %v", err)
				continue
			}
			if update.SessionID != sessionID {
				continue
			}
			if update.RequesterID != userID && update.AddresseeID != userID {
				continue
			}

			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(update); err != nil {
				log.Printf("WARNING: Failed to push update to %s: %v", userID, err)
				return
			}
			if update.Status.IsTerminal() {
				return
			}
		}
	}
}

package httpserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"meridian/internal/platform/live"
)

const (
	socketWriteTimeout = 10 * time.Second
	socketPingPeriod   = 30 * time.Second
	socketReadTimeout  = 60 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleNotificationSocket streams live notifications for the requested
// groups over a websocket. The client picks groups with ?groups=a,b; the
// hub drops subscribers that cannot keep up, which ends the stream here.
func (s *Server) handleNotificationSocket(w http.ResponseWriter, r *http.Request) {
	groups := splitGroups(r.URL.Query().Get("groups"))
	if len(groups) == 0 {
		http.Error(w, "missing groups query parameter", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed",
			"event", "websocket_upgrade_failed",
			"module", "internal/platform/httpserver",
			"layer", "platform",
			"error", err.Error(),
		)
		return
	}

	subscriber := s.hub.Subscribe(groups, 32)
	s.logger.Info("notification socket connected",
		"event", "notification_socket_connected",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"groups", strings.Join(groups, ","),
	)

	go s.socketWriteLoop(conn, subscriber)
	go s.socketReadLoop(conn, subscriber)
}

func (s *Server) socketWriteLoop(conn *websocket.Conn, subscriber *live.Subscriber) {
	ping := time.NewTicker(socketPingPeriod)
	defer func() {
		ping.Stop()
		subscriber.Close()
		_ = conn.Close()
	}()

	for {
		select {
		case notification, ok := <-subscriber.C:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(socketWriteTimeout))
			if err := conn.WriteJSON(notification); err != nil {
				return
			}
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(socketWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// socketReadLoop discards inbound frames; the stream is one-way. It exists
// to notice the peer closing and to keep the read deadline fresh on pongs.
func (s *Server) socketReadLoop(conn *websocket.Conn, subscriber *live.Subscriber) {
	defer subscriber.Close()

	_ = conn.SetReadDeadline(time.Now().Add(socketReadTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(socketReadTimeout))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func splitGroups(raw string) []string {
	var groups []string
	for _, group := range strings.Split(raw, ",") {
		group = strings.TrimSpace(group)
		if group != "" {
			groups = append(groups, group)
		}
	}
	return groups
}

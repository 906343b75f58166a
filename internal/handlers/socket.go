package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	socketio "github.com/googollee/go-socket.io"
	"github.com/googollee/go-socket.io/engineio"
	"github.com/googollee/go-socket.io/engineio/transport"
	"github.com/googollee/go-socket.io/engineio/transport/polling"
	"github.com/googollee/go-socket.io/engineio/transport/websocket"
	"github.com/pushp314/messenger-backend/internal/middleware"
	"github.com/pushp314/messenger-backend/internal/realtime"
	"github.com/pushp314/messenger-backend/pkg/logger"
)

var errSocketUnauthorized = errors.New("authentication required")

// socketUserID authenticates a socket handshake with the same session token
// the REST API uses, taken from ?token= or the session cookie.
func socketUserID(s socketio.Conn) (string, error) {
	u := s.URL()
	token := u.Query().Get("token")
	if token == "" {
		token = middleware.SessionToken(&http.Request{Header: s.RemoteHeader()})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, user, appErr := middleware.Authenticate(ctx, token)
	if appErr != nil {
		return "", errSocketUnauthorized
	}
	return user.ID, nil
}

// socketConnect authenticates the handshake and tracks the connection.
func socketConnect(dir *realtime.Directory, s socketio.Conn) error {
	userID, err := socketUserID(s)
	if err != nil {
		logger.Warn().Str("socket_id", s.ID()).Msg("Socket connection rejected")
		return err
	}
	s.SetContext(userID)
	dir.Connect(s)
	logger.Debug().Str("socket_id", s.ID()).Str("user_id", userID).Msg("Socket connected")
	return nil
}

// socketAnnounce handles the "user" event. The client sends its user id but
// the authenticated one wins.
func socketAnnounce(dir *realtime.Directory, s socketio.Conn, claimed string) {
	userID, _ := s.Context().(string)
	if userID == "" {
		return
	}
	if claimed != "" && claimed != userID {
		logger.Warn().Str("socket_id", s.ID()).Str("claimed", claimed).Msg("Socket announced a different user")
	}
	s.Join(userID)
	dir.Announce(s, userID)
}

// InitSocketServer wires socket.io events to the presence directory.
func InitSocketServer(dir *realtime.Directory) *socketio.Server {
	server := socketio.NewServer(&engineio.Options{
		Transports: []transport.Transport{
			&websocket.Transport{CheckOrigin: func(r *http.Request) bool { return true }},
			&polling.Transport{CheckOrigin: func(r *http.Request) bool { return true }},
		},
	})

	server.OnConnect("/", func(s socketio.Conn) error {
		return socketConnect(dir, s)
	})
	server.OnEvent("/", realtime.EventUser, func(s socketio.Conn, claimed string) {
		socketAnnounce(dir, s, claimed)
	})
	for _, event := range []string{realtime.EventChat, realtime.EventSeenMessage, realtime.EventLeaveGroup} {
		event := event
		server.OnEvent("/", event, func(s socketio.Conn, payload map[string]interface{}) {
			dir.Relay(s, event, payload)
		})
	}
	server.OnDisconnect("/", func(s socketio.Conn, reason string) {
		dir.Drop(s.ID())
		logger.Debug().Str("socket_id", s.ID()).Str("reason", reason).Msg("Socket disconnected")
	})

	server.OnError("/", func(s socketio.Conn, e error) {
		logger.Warn().Err(e).Msg("Socket error")
	})

	go func() {
		if err := server.Serve(); err != nil {
			logger.Error().Err(err).Msg("Socket server stopped")
		}
	}()
	return server
}

// SocketHandler mounts socket.io on gin.
func SocketHandler(server *socketio.Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		server.ServeHTTP(c.Writer, c.Request)
	}
}

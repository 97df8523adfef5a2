// Package ws upgrades authenticated connections to WebSocket sessions so
// guild notifications reach online players in real time.
package ws

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/soratane/guildcore/config"
	"github.com/soratane/guildcore/middleware"
	"github.com/soratane/guildcore/player"
	"go.uber.org/zap"
)

const readLimit = 4096

// Handler upgrades HTTP requests and registers the resulting sessions.
type Handler struct {
	sessions *player.SessionManager
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewHandler creates a Handler. Allowed origins come from the security
// config; an empty list allows all (local development).
func NewHandler(sessions *player.SessionManager, sec config.SecurityConfig, logger *zap.Logger) *Handler {
	allowed := make(map[string]bool, len(sec.AllowedOrigins))
	for _, o := range sec.AllowedOrigins {
		allowed[o] = true
	}
	return &Handler{
		sessions: sessions,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if len(allowed) == 0 {
					return true
				}
				return allowed[r.Header.Get("Origin")]
			},
		},
		logger: logger,
	}
}

// Serve handles GET /ws. The route must carry the Auth middleware; the
// player identity comes from the validated token.
func (h *Handler) Serve(c *gin.Context) {
	playerUUID := middleware.GetPlayerUUID(c)
	playerName := middleware.GetPlayerName(c)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed",
			zap.String("player_uuid", playerUUID.String()),
			zap.Error(err))
		return
	}

	s := player.NewSession(playerUUID, playerName, conn, h.logger)
	h.sessions.Register(s)

	go h.readPump(s)
}

// readPump consumes inbound frames until the connection drops. The server
// pushes notifications only; client frames beyond pongs are discarded.
func (h *Handler) readPump(s *player.Session) {
	defer func() {
		h.sessions.Unregister(s.PlayerUUID)
		s.Close()
	}()
	s.Conn.SetReadLimit(readLimit)
	for {
		if _, _, err := s.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Debug("ws read ended",
					zap.String("player_uuid", s.PlayerUUID.String()),
					zap.Error(err))
			}
			return
		}
	}
}

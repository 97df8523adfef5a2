package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/soratane/guildcore/config"
	"github.com/soratane/guildcore/middleware"
	"github.com/soratane/guildcore/player"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestServe_RegistersSessionAndDeliversNotifications(t *testing.T) {
	sec := config.SecurityConfig{JWTSecret: "ws-test-secret"}
	sessions := player.NewSessionManager(zap.NewNop())
	h := NewHandler(sessions, sec, zap.NewNop())

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ws", middleware.Auth(sec), h.Serve)
	srv := httptest.NewServer(r)
	defer srv.Close()

	playerID := uuid.New()
	token, err := middleware.GenerateToken(playerID, "Alice", sec.JWTSecret, time.Hour)
	require.NoError(t, err)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	header := http.Header{"Authorization": []string{"Bearer " + token}}
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool {
		return sessions.IsOnline(playerID)
	}, 2*time.Second, 10*time.Millisecond)

	sessions.NotifyPlayers([]uuid.UUID{playerID}, &player.Packet{
		Type:    "guild_level_up",
		Payload: json.RawMessage(`{"level":2}`),
	})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var pkt player.Packet
	require.NoError(t, json.Unmarshal(data, &pkt))
	assert.Equal(t, "guild_level_up", pkt.Type)

	conn.Close()
	require.Eventually(t, func() bool {
		return !sessions.IsOnline(playerID)
	}, 2*time.Second, 10*time.Millisecond)
}

func TestServe_RejectsUnauthenticated(t *testing.T) {
	sec := config.SecurityConfig{JWTSecret: "ws-test-secret"}
	sessions := player.NewSessionManager(zap.NewNop())
	h := NewHandler(sessions, sec, zap.NewNop())

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ws", middleware.Auth(sec), h.Serve)
	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

package warden

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	watchInterval     = time.Second
	watchWriteTimeout = 10 * time.Second
	watchPongTimeout  = 60 * time.Second
)

var watchUpgrader = websocket.Upgrader{
	// The admin surface already restricts origins through CORS; the
	// websocket handshake mirrors that rather than adding a second policy.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// watchFrame is one status sample on the live feed.
type watchFrame struct {
	Status   Status        `json:"status"`
	Sessions []SessionView `json:"sessions"`
}

// watchHandler streams a status frame once per second until the client goes
// away.
func (a *Admin) watchHandler(c *gin.Context) {
	conn, err := watchUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Msg("warden.Admin.watchHandler upgrade failed")
		return
	}
	defer conn.Close()

	conn.SetReadLimit(1 << 10)
	_ = conn.SetReadDeadline(time.Now().Add(watchPongTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(watchPongTimeout))
	})

	// Reader goroutine exists only to surface client close.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(watchInterval)
	defer ticker.Stop()
	log.Info().Str("client", c.ClientIP()).Msg("warden.Admin.watchHandler stream opened")

	for {
		select {
		case <-closed:
			log.Info().Str("client", c.ClientIP()).Msg("warden.Admin.watchHandler stream closed")
			return
		case <-ticker.C:
			frame := watchFrame{
				Status:   a.server.Status(),
				Sessions: a.server.Sessions(),
			}
			_ = conn.SetWriteDeadline(time.Now().Add(watchWriteTimeout))
			if err := conn.WriteJSON(frame); err != nil {
				log.Warn().Err(err).Msg("warden.Admin.watchHandler write failed")
				return
			}
		}
	}
}

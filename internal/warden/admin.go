package warden

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/danmuck/lodestone/internal/observability"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Admin is the read-only HTTP surface over one warden core. It serves
// status, session, and event snapshots plus the metrics endpoint; nothing
// here mutates game state.
type Admin struct {
	cfg    ServiceConfig
	server *Server
	router *gin.Engine
}

// NewAdmin builds the gin surface with the standard middleware chain:
// recovery, request logging, metrics, CORS, trusted proxies.
func NewAdmin(cfg ServiceConfig, srv *Server) *Admin {
	observability.RegisterMetrics()
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestLogger(log.Logger))
	r.Use(observability.RequestMetricsMiddleware(cfg.ServerID))
	r.Use(cors.New(cors.Config{
		AllowOrigins: normalizeOrigins(cfg.AdminCORSOrigins),
		AllowMethods: []string{"GET"},
		AllowHeaders: []string{"Origin", "Content-Type", "Authorization"},
		MaxAge:       12 * time.Hour,
	}))
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	a := &Admin{cfg: cfg, server: srv, router: r}
	a.registerRoutes()
	return a
}

func (a *Admin) Router() *gin.Engine {
	return a.router
}

// Serve runs the admin listener until ctx is cancelled.
func (a *Admin) Serve(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           a.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()
	log.Info().Str("addr", addr).Msg("warden.Admin.Serve listening")

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return err
		}
		err := <-errCh
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func normalizeOrigins(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, origin := range origins {
		v := strings.TrimSpace(origin)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		out = append(out, "http://localhost:3000")
	}
	return out
}

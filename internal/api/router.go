package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"cnc-telemetry-backend/config"
	"cnc-telemetry-backend/internal/mw"
	"cnc-telemetry-backend/internal/store"
	"cnc-telemetry-backend/internal/ws"
)

// NewRouter creates and configures the Gin router: the REST read surface and
// the live subscription socket.
func NewRouter(cfg *config.ServerConfig, s store.Store, broadcaster *ws.Broadcaster) *gin.Engine {
	r := gin.Default()

	handler := NewHandler(s)

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst)

	cacheTTL := time.Duration(cfg.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(cacheTTL, 10*cacheTTL)
	caching := mw.Cache(cacheStore, cacheTTL)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.GET("/machines", caching, handler.GetMachines)
		api.GET("/machines/:machine_id/axis_data", handler.GetAxisDataWindow)
	}

	r.GET("/ws/machines", broadcaster.Handle)

	return r
}

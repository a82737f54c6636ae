package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"ev-admin-backend/config"
	"ev-admin-backend/internal/mw"
)

// NewRouter creates and configures the admin API router. Upstream auth is
// assumed to have validated the caller; mutations additionally require the
// forwarded identity header.
func NewRouter(h *Handler, cfg *config.ServerConfig) *gin.Engine {
	r := gin.Default()

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst)

	cacheTTL := time.Duration(cfg.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(cacheTTL, 2*cacheTTL)
	caching := mw.Cache(cacheStore, cacheTTL)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.GET("/agents", caching, h.ListAgents)
		api.GET("/charging-stations", caching, h.ListChargingStations)
		api.GET("/shops", caching, h.ListShops)

		svc := api.Group("/:service")
		{
			svc.GET("/bookings", caching, h.ListBookings)
			svc.GET("/bookings/failed", caching, h.ListFailedBookings)
			svc.GET("/bookings/:booking_id", h.GetBooking)

			mutate := svc.Group("", mw.RequireActor())
			{
				mutate.POST("/bookings", h.CreateBooking)
				mutate.POST("/bookings/assign", h.AssignBooking)
				mutate.POST("/bookings/cancel", h.CancelBooking)
				mutate.POST("/bookings/status", h.TransitionBooking)
			}
		}
	}

	return r
}

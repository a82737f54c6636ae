package api

import (
	"log"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"ev-admin-backend/internal/booking"
	"ev-admin-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store  store.Store
	orch   *booking.Orchestrator
	loc    *time.Location
	logger *log.Logger
}

// NewHandler creates a new API handler. loc is the fixed timezone date-range
// filters are interpreted in.
func NewHandler(s store.Store, orch *booking.Orchestrator, loc *time.Location, logger *log.Logger) *Handler {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{store: s, orch: orch, loc: loc, logger: logger}
}

// pageNo reads the required 1-based page_no parameter. A present but
// non-numeric value normalizes to page 1; absence is a validation failure.
func pageNo(c *gin.Context) (int, bool) {
	raw := c.Query("page_no")
	if raw == "" {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 1, true
	}
	return n, true
}

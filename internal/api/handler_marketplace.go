package api

import (
	"errors"

	"github.com/gin-gonic/gin"

	"ev-admin-backend/internal/query"
)

// ListChargingStations returns the charging-station directory.
func (h *Handler) ListChargingStations(c *gin.Context) {
	page, ok := pageNo(c)
	if !ok {
		respondValidation(c, "page_no is required")
		return
	}

	spec := query.Spec{
		Table:     "charging_stations",
		Columns:   []string{"id", "name", "address", "latitude", "longitude", "charger_type", "status", "created_at"},
		SortAllow: []string{"id", "name", "created_at"},
		Sort:      []query.SortKey{{Column: "name"}},
		Page:      page,
		PageSize:  query.DefaultPageSize,
	}

	if ct := c.Query("charger_type"); ct != "" {
		spec.Exact = append(spec.Exact, query.Exact{Field: "charger_type", Op: "=", Value: ct})
	}
	if text := c.Query("search_text"); text != "" {
		for _, f := range []string{"name", "address"} {
			spec.Search = append(spec.Search, query.Search{Field: f, Text: text})
		}
	}

	h.runList(c, spec)
}

// ListShops returns the partner shop directory.
func (h *Handler) ListShops(c *gin.Context) {
	page, ok := pageNo(c)
	if !ok {
		respondValidation(c, "page_no is required")
		return
	}

	spec := query.Spec{
		Table:     "shops",
		Columns:   []string{"id", "name", "address", "area", "services", "status", "created_at"},
		SortAllow: []string{"id", "name", "area", "created_at"},
		Sort:      []query.SortKey{{Column: "name"}},
		Page:      page,
		PageSize:  query.DefaultPageSize,
	}

	if area := c.Query("area"); area != "" {
		spec.Exact = append(spec.Exact, query.Exact{Field: "area", Op: "=", Value: area})
	}
	if text := c.Query("search_text"); text != "" {
		for _, f := range []string{"name", "address", "services"} {
			spec.Search = append(spec.Search, query.Search{Field: f, Text: text})
		}
	}

	h.runList(c, spec)
}

func (h *Handler) runList(c *gin.Context, spec query.Spec) {
	res, err := h.store.List(c.Request.Context(), spec)
	if err != nil {
		if errors.Is(err, query.ErrBadSpec) {
			respondValidation(c, err.Error())
			return
		}
		h.logger.Printf("Error listing %s: %v", spec.Table, err)
		respondServerError(c)
		return
	}
	respondList(c, res.Rows, res.TotalPages, res.Total)
}

package api

import (
	"github.com/gin-gonic/gin"

	"ev-admin-backend/internal/query"
)

// ListAgents returns the agent roster with running-order counters.
func (h *Handler) ListAgents(c *gin.Context) {
	page, ok := pageNo(c)
	if !ok {
		respondValidation(c, "page_no is required")
		return
	}

	spec := query.Spec{
		Table:     "agents",
		Columns:   []string{"id", "name", "email", "phone", "service_type", "status", "running_orders", "created_at"},
		SortAllow: []string{"id", "name", "running_orders", "created_at"},
		Sort:      []query.SortKey{{Column: "name"}},
		Page:      page,
		PageSize:  query.DefaultPageSize,
	}

	if st := c.Query("service_type"); st != "" {
		spec.Exact = append(spec.Exact, query.Exact{Field: "service_type", Op: "=", Value: st})
	}
	if text := c.Query("search_text"); text != "" {
		for _, f := range []string{"id", "name", "email", "phone"} {
			spec.Search = append(spec.Search, query.Search{Field: f, Text: text})
		}
	}
	if sortBy := c.Query("sort_by"); sortBy != "" {
		spec.Sort = []query.SortKey{{Column: sortBy, Desc: c.Query("sort_dir") == "desc"}}
	}

	h.runList(c, spec)
}

package query

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseSpec() Spec {
	return Spec{
		Table:     "portable_charger_bookings",
		Columns:   []string{"id", "user_name", "status"},
		SortAllow: []string{"created_at", "slot_date", "slot_time"},
		Page:      1,
		PageSize:  DefaultPageSize,
	}
}

func TestBuild_NoFilters_OmitsWhere(t *testing.T) {
	s := baseSpec()
	sql, args, err := s.Build()
	require.NoError(t, err)

	assert.NotContains(t, sql, "WHERE")
	assert.Equal(t, []any{10, 0}, args)
}

func TestBuild_EmptySearchText_OmitsWhere(t *testing.T) {
	s := baseSpec()
	s.Search = []Search{{Field: "id", Text: ""}, {Field: "user_name", Text: ""}}

	sql, args, err := s.Build()
	require.NoError(t, err)

	assert.NotContains(t, sql, "WHERE")
	assert.Equal(t, []any{10, 0}, args)
}

func TestBuild_FilterGrouping(t *testing.T) {
	s := baseSpec()
	s.Exact = []Exact{
		{Field: "status", Op: "!=", Value: "PNR"},
		{Field: "slot_date", Op: ">=", Value: "2025-01-01"},
	}
	s.Search = []Search{
		{Field: "id", Text: "PCB"},
		{Field: "user_name", Text: "PCB"},
	}

	sql, args, err := s.Build()
	require.NoError(t, err)

	assert.Contains(t, sql, "WHERE status != ? AND slot_date >= ? AND (id LIKE ? OR user_name LIKE ?)")
	assert.Equal(t, []any{"PNR", "2025-01-01", "%PCB%", "%PCB%", 10, 0}, args)
}

// Every request-supplied value must surface as a bind parameter; none may
// appear literally in the SQL text.
func TestBuild_ValuesNeverInterpolated(t *testing.T) {
	hostile := "x'; DROP TABLE agents; --"
	s := baseSpec()
	s.Exact = []Exact{{Field: "status", Op: "=", Value: hostile}}
	s.Search = []Search{{Field: "user_name", Text: hostile}}

	sql, args, err := s.Build()
	require.NoError(t, err)

	assert.NotContains(t, sql, hostile)
	assert.Len(t, args, 4) // status, search, limit, offset
	assert.Equal(t, hostile, args[0])
	assert.Equal(t, "%"+hostile+"%", args[1])
}

func TestBuild_BindCountMatchesNonEmptyValues(t *testing.T) {
	s := baseSpec()
	s.Exact = []Exact{
		{Field: "status", Op: "=", Value: "CNF"},
		{Field: "agent_id", Op: "!=", Value: ""},
	}
	s.Search = []Search{
		{Field: "id", Text: "007"},
		{Field: "address", Text: ""}, // empty, contributes nothing
	}

	sql, args, err := s.Build()
	require.NoError(t, err)

	assert.Equal(t, 3+2, len(args)) // 2 exact + 1 search + limit/offset
	assert.Equal(t, 3, strings.Count(sql, "?")-2)
}

func TestBuild_Sort(t *testing.T) {
	s := baseSpec()
	s.Sort = []SortKey{
		{Column: "slot_date", Desc: true},
		{Column: "slot_time"},
	}

	sql, _, err := s.Build()
	require.NoError(t, err)
	assert.Contains(t, sql, "ORDER BY slot_date DESC, slot_time ASC")
}

func TestBuild_RejectsUnknownSortColumn(t *testing.T) {
	s := baseSpec()
	s.Sort = []SortKey{{Column: "created_at; DROP TABLE users"}}

	_, _, err := s.Build()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBadSpec)
}

func TestBuild_RejectsBadSpecs(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Spec)
	}{
		{"empty table", func(s *Spec) { s.Table = "" }},
		{"no columns", func(s *Spec) { s.Columns = nil }},
		{"zero page size", func(s *Spec) { s.PageSize = 0 }},
		{"unknown operator", func(s *Spec) {
			s.Exact = []Exact{{Field: "status", Op: "LIKE", Value: "x"}}
		}},
		{"hostile filter field", func(s *Spec) {
			s.Exact = []Exact{{Field: "status = 'A' OR 1=1", Op: "=", Value: "x"}}
		}},
		{"hostile search field", func(s *Spec) {
			s.Search = []Search{{Field: "name) OR (1=1", Text: "x"}}
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := baseSpec()
			tc.mutate(&s)
			_, _, err := s.Build()
			assert.ErrorIs(t, err, ErrBadSpec)
		})
	}
}

func TestBuild_PageNormalizationAndOffset(t *testing.T) {
	cases := []struct {
		page   int
		offset int
	}{
		{-3, 0},
		{0, 0},
		{1, 0},
		{2, 10},
		{7, 60},
	}

	for _, tc := range cases {
		s := baseSpec()
		s.Page = tc.page
		_, args, err := s.Build()
		require.NoError(t, err)
		assert.Equal(t, tc.offset, args[len(args)-1], "page %d", tc.page)
	}
}

func TestCountSQL_MirrorsWhereAndJoin(t *testing.T) {
	s := baseSpec()
	s.Join = "JOIN users u ON u.id = portable_charger_bookings.user_id"
	s.Exact = []Exact{{Field: "status", Op: "=", Value: "A"}}
	s.Search = []Search{{Field: "u.name", Text: "lee"}}

	sql, args, err := s.CountSQL()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(sql, "SELECT COUNT(*) FROM portable_charger_bookings JOIN users"))
	assert.Contains(t, sql, "WHERE status = ? AND (u.name LIKE ?)")
	assert.NotContains(t, sql, "LIMIT")
	assert.NotContains(t, sql, "ORDER BY")
	assert.Equal(t, []any{"A", "%lee%"}, args)
}

func TestPages(t *testing.T) {
	cases := []struct {
		total int64
		want  int64
	}{
		{0, 1},
		{1, 1},
		{9, 1},
		{10, 1},
		{11, 2},
		{100, 10},
		{101, 11},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, Pages(tc.total, 10), "total=%d", tc.total)
	}
}

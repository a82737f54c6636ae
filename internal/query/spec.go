package query

import (
	"errors"
	"fmt"
	"regexp"
)

// DefaultPageSize is the fixed page size used by the admin list endpoints.
const DefaultPageSize = 10

// ErrBadSpec is wrapped by every validation failure. A bad spec is a
// programming error at the call site and is rejected before any SQL is issued.
var ErrBadSpec = errors.New("invalid query spec")

// Exact is one AND-combined equality/inequality filter. Value is always passed
// as a bind parameter, never interpolated.
type Exact struct {
	Field string
	Op    string // one of = != >= <=
	Value any
}

// Search is one live-search term. All search terms in a Spec are OR-combined
// as substring matches inside a single parenthesized group.
type Search struct {
	Field string
	Text  string
}

// SortKey is one ORDER BY column with direction.
type SortKey struct {
	Column string
	Desc   bool
}

// Spec describes one filtered, paginated SELECT. It is built in code per
// request; only the filter values and search text originate from the request.
type Spec struct {
	Table     string   // base relation, e.g. "portable_charger_bookings"
	Join      string   // optional full join clause
	Columns   []string // output expressions; code-owned
	Sort      []SortKey
	SortAllow []string // whitelist of sortable columns
	Page      int      // 1-based; normalized to 1 when < 1
	PageSize  int
	Exact     []Exact
	Search    []Search
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

var validOps = map[string]struct{}{
	"=": {}, "!=": {}, ">=": {}, "<=": {},
}

// validate rejects malformed specs before any query text is assembled.
func (s *Spec) validate() error {
	if s.Table == "" {
		return fmt.Errorf("%w: empty table", ErrBadSpec)
	}
	if len(s.Columns) == 0 {
		return fmt.Errorf("%w: no output columns", ErrBadSpec)
	}
	if s.PageSize <= 0 {
		return fmt.Errorf("%w: non-positive page size %d", ErrBadSpec, s.PageSize)
	}
	for _, f := range s.Exact {
		if _, ok := validOps[f.Op]; !ok {
			return fmt.Errorf("%w: unsupported operator %q on field %q", ErrBadSpec, f.Op, f.Field)
		}
		if !identRe.MatchString(f.Field) {
			return fmt.Errorf("%w: bad filter field %q", ErrBadSpec, f.Field)
		}
	}
	for _, sr := range s.Search {
		if !identRe.MatchString(sr.Field) {
			return fmt.Errorf("%w: bad search field %q", ErrBadSpec, sr.Field)
		}
	}
	for _, k := range s.Sort {
		if !s.sortable(k.Column) {
			return fmt.Errorf("%w: unknown sort column %q", ErrBadSpec, k.Column)
		}
	}
	return nil
}

func (s *Spec) sortable(column string) bool {
	for _, c := range s.SortAllow {
		if c == column {
			return true
		}
	}
	return false
}

// page returns the normalized 1-based page index.
func (s *Spec) page() int {
	if s.Page < 1 {
		return 1
	}
	return s.Page
}

// Offset returns the row offset for the normalized page.
func (s *Spec) Offset() int {
	return (s.page() - 1) * s.PageSize
}

package query

import (
	"strings"
)

// where assembles the WHERE fragment and its bind values. Exact filters are
// AND-combined; non-empty search terms are OR-combined inside one
// parenthesized group; the two groups are AND-combined with each other. When
// neither group contributes, the clause is omitted entirely rather than
// emitted as an always-true predicate.
func (s *Spec) where() (string, []any) {
	var conds []string
	var args []any

	for _, f := range s.Exact {
		conds = append(conds, f.Field+" "+f.Op+" ?")
		args = append(args, f.Value)
	}

	var likes []string
	for _, sr := range s.Search {
		if sr.Text == "" {
			continue
		}
		likes = append(likes, sr.Field+" LIKE ?")
		args = append(args, "%"+sr.Text+"%")
	}
	if len(likes) > 0 {
		conds = append(conds, "("+strings.Join(likes, " OR ")+")")
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (s *Spec) from() string {
	var b strings.Builder
	b.WriteString(" FROM ")
	b.WriteString(s.Table)
	if s.Join != "" {
		b.WriteString(" ")
		b.WriteString(s.Join)
	}
	return b.String()
}

// Build returns the full SELECT with every request-supplied value as a bind
// parameter, including LIMIT and OFFSET.
func (s *Spec) Build() (string, []any, error) {
	if err := s.validate(); err != nil {
		return "", nil, err
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(strings.Join(s.Columns, ", "))
	b.WriteString(s.from())

	where, args := s.where()
	b.WriteString(where)

	if len(s.Sort) > 0 {
		keys := make([]string, len(s.Sort))
		for i, k := range s.Sort {
			dir := " ASC"
			if k.Desc {
				dir = " DESC"
			}
			keys[i] = k.Column + dir
		}
		b.WriteString(" ORDER BY ")
		b.WriteString(strings.Join(keys, ", "))
	}

	b.WriteString(" LIMIT ? OFFSET ?")
	args = append(args, s.PageSize, s.Offset())

	return b.String(), args, nil
}

// CountSQL returns the companion count query: identical FROM/JOIN/WHERE with
// the projection replaced by COUNT(*). No ORDER BY or LIMIT.
func (s *Spec) CountSQL() (string, []any, error) {
	if err := s.validate(); err != nil {
		return "", nil, err
	}

	var b strings.Builder
	b.WriteString("SELECT COUNT(*)")
	b.WriteString(s.from())

	where, args := s.where()
	b.WriteString(where)

	return b.String(), args, nil
}

// Package listing derives the visible page of a list screen from a full
// in-memory collection, a free-text search and field filters.
package listing

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/example/foodhub/internal/utils"
)

// Field reads a searchable or filterable value from a row.
type Field[T any] func(row T) string

// Filter narrows rows by the value selected under Key. An empty value
// disables the filter.
type Filter[T any] struct {
	Key   string
	Match func(row T, value string) bool
	// Check rejects malformed values before they are applied. Optional.
	Check func(value string) error
}

// Equals matches rows whose field equals the value, ignoring case.
func Equals[T any](key string, field Field[T]) Filter[T] {
	return Filter[T]{
		Key: key,
		Match: func(row T, value string) bool {
			return strings.EqualFold(strings.TrimSpace(field(row)), strings.TrimSpace(value))
		},
	}
}

// Range matches rows whose numeric field lies within "min..max". Either end
// may be omitted; a bare number means an exact match.
func Range[T any](key string, field func(row T) float64) Filter[T] {
	return Filter[T]{
		Key: key,
		Match: func(row T, value string) bool {
			r, err := ParseRange(value)
			if err != nil {
				return false
			}
			return r.Contains(field(row))
		},
		Check: func(value string) error {
			_, err := ParseRange(value)
			return err
		},
	}
}

// Bounds is an inclusive numeric interval with optional ends.
type Bounds struct {
	Min, Max       float64
	HasMin, HasMax bool
}

func (b Bounds) Contains(v float64) bool {
	if b.HasMin && v < b.Min {
		return false
	}
	if b.HasMax && v > b.Max {
		return false
	}
	return true
}

// ParseRange parses "min..max", "min..", "..max" or a single number.
func ParseRange(value string) (Bounds, error) {
	value = strings.TrimSpace(value)
	lo, hi, isRange := strings.Cut(value, "..")
	if !isRange {
		hi = lo
	}

	var b Bounds
	var err error
	if s := strings.TrimSpace(lo); s != "" {
		if b.Min, err = strconv.ParseFloat(s, 64); err != nil {
			return Bounds{}, fmt.Errorf("invalid range %q", value)
		}
		b.HasMin = true
	}
	if s := strings.TrimSpace(hi); s != "" {
		if b.Max, err = strconv.ParseFloat(s, 64); err != nil {
			return Bounds{}, fmt.Errorf("invalid range %q", value)
		}
		b.HasMax = true
	}
	if !b.HasMin && !b.HasMax {
		return Bounds{}, fmt.Errorf("invalid range %q", value)
	}
	if b.HasMin && b.HasMax && b.Min > b.Max {
		return Bounds{}, fmt.Errorf("invalid range %q: min exceeds max", value)
	}
	return b, nil
}

// ApplySearch keeps rows where any field contains query, ignoring case. A
// blank query returns rows unchanged.
func ApplySearch[T any](rows []T, query string, fields ...Field[T]) []T {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return rows
	}

	out := make([]T, 0, len(rows))
	for _, row := range rows {
		for _, field := range fields {
			if strings.Contains(strings.ToLower(field(row)), q) {
				out = append(out, row)
				break
			}
		}
	}
	return out
}

// ApplyFilters keeps rows matching every filter that has a non-empty value.
func ApplyFilters[T any](rows []T, filters []Filter[T], values map[string]string) []T {
	active := make([]Filter[T], 0, len(filters))
	for _, f := range filters {
		if strings.TrimSpace(values[f.Key]) != "" {
			active = append(active, f)
		}
	}
	if len(active) == 0 {
		return rows
	}

	out := make([]T, 0, len(rows))
	for _, row := range rows {
		keep := true
		for _, f := range active {
			if !f.Match(row, values[f.Key]) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, row)
		}
	}
	return out
}

// Page describes where a slice sits in the filtered collection.
type Page struct {
	Page       int  `json:"current_page"`
	PageSize   int  `json:"items_per_page"`
	Total      int  `json:"total_items"`
	TotalPages int  `json:"total_pages"`
	HasPrev    bool `json:"has_prev"`
	HasNext    bool `json:"has_next"`
	NoData     bool `json:"no_data"`
}

// Paginate returns rows [(page-1)*size, page*size). Pages past the end are
// empty. NoData reports an empty collection, not an empty page.
func Paginate[T any](rows []T, page, size int) ([]T, Page) {
	if size <= 0 {
		size = utils.DefaultPageSize
	}
	if page < 1 {
		page = 1
	}

	total := len(rows)
	totalPages := total / size
	if total%size != 0 {
		totalPages++
	}
	meta := Page{
		Page:       page,
		PageSize:   size,
		Total:      total,
		TotalPages: totalPages,
		HasPrev:    page > 1,
		HasNext:    page < totalPages,
		NoData:     total == 0,
	}

	// Compare page numbers before computing offsets; page*size can overflow.
	if page > totalPages {
		return []T{}, meta
	}
	start := (page - 1) * size
	end := total
	if total-start > size {
		end = start + size
	}
	return rows[start:end], meta
}

// Definition is the search and filter configuration of one list screen.
type Definition[T any] struct {
	Search  []Field[T]
	Filters []Filter[T]
}

// FilterKeys returns the filter keys in a stable order.
func (d Definition[T]) FilterKeys() []string {
	keys := make([]string, 0, len(d.Filters))
	for _, f := range d.Filters {
		keys = append(keys, f.Key)
	}
	sort.Strings(keys)
	return keys
}

// Check validates filter values before they are applied.
func (d Definition[T]) Check(values map[string]string) error {
	for _, f := range d.Filters {
		v := strings.TrimSpace(values[f.Key])
		if v == "" || f.Check == nil {
			continue
		}
		if err := f.Check(v); err != nil {
			return fmt.Errorf("%s: %w", f.Key, err)
		}
	}
	return nil
}

// Query is one request against a list.
type Query struct {
	Search   string
	Filters  map[string]string
	Page     int
	PageSize int
}

// Apply runs search, filters and pagination in that order.
func (d Definition[T]) Apply(rows []T, q Query) ([]T, Page) {
	filtered := ApplyFilters(ApplySearch(rows, q.Search, d.Search...), d.Filters, q.Filters)
	return Paginate(filtered, q.Page, q.PageSize)
}

// Package pagination resolves page sizes for admin listings.
package pagination

import (
	"math"
	"strconv"
	"strings"
)

const (
	DefaultPageSize = 25
	MinPageSize     = 1
	MaxPageSize     = 100
)

// Sources is the lookup chain for a page size, highest priority first.
// Each link is the raw value as received; empty or unusable links are skipped.
type Sources struct {
	Explicit string // value passed by the caller
	URLParam string // ?page_size=
	Stored   string // per-user preference
	Env      string // ADMIN_PAGE_SIZE
}

// GetPageSize returns the first finite value >= 1 found in the chain,
// clamped to [MinPageSize, MaxPageSize]. Without any usable value it
// returns DefaultPageSize.
func GetPageSize(s Sources) int {
	for _, raw := range []string{s.Explicit, s.URLParam, s.Stored, s.Env} {
		if n, ok := parse(raw); ok {
			return clamp(n)
		}
	}
	return DefaultPageSize
}

func parse(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < MinPageSize {
		return 0, false
	}
	return f, true
}

func clamp(f float64) int {
	if f > MaxPageSize {
		return MaxPageSize
	}
	return int(math.Floor(f))
}

// Page is a resolved page request.
type Page struct {
	Number int `json:"page"`
	Size   int `json:"page_size"`
}

// NewPage builds a Page from a raw page number (1-based, invalid → 1).
func NewPage(rawNumber string, size int) Page {
	n, err := strconv.Atoi(strings.TrimSpace(rawNumber))
	if err != nil || n < 1 {
		n = 1
	}
	if size < MinPageSize {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return Page{Number: n, Size: size}
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

func (p Page) Limit() int {
	return p.Size
}

// Result wraps one page of items.
type Result[T any] struct {
	Items    []T   `json:"items"`
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	HasMore  bool  `json:"has_more"`
}

func NewResult[T any](items []T, total int64, p Page) Result[T] {
	if items == nil {
		items = []T{}
	}
	return Result[T]{
		Items:    items,
		Total:    total,
		Page:     p.Number,
		PageSize: p.Size,
		HasMore:  int64(p.Offset()+len(items)) < total,
	}
}

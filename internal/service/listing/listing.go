// Package listing filters and paginates month-scoped collections that are
// loaded into memory in full.
package listing

import (
	"crypto/sha1"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"
)

// DefaultPageSize is used when a caller asks for an unsupported size.
const DefaultPageSize = 25

// PageSizes are the page sizes offered to operators.
var PageSizes = []int{25, 50, 100}

// Predicate selects items of a collection.
type Predicate[T any] func(T) bool

// Filter keeps the items matching every predicate, preserving order. Applying
// the same predicates again yields the same result.
func Filter[T any](items []T, preds ...Predicate[T]) []T {
	out := make([]T, 0, len(items))
next:
	for _, item := range items {
		for _, p := range preds {
			if p != nil && !p(item) {
				continue next
			}
		}
		out = append(out, item)
	}
	return out
}

// Contains is a case-insensitive substring match; an empty needle matches everything.
func Contains(haystack, needle string) bool {
	needle = strings.TrimSpace(needle)
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// Equals matches a dropdown value; "" and "all" select everything.
func Equals(value, selected string) bool {
	if selected == "" || strings.EqualFold(selected, "all") {
		return true
	}
	return value == selected
}

// Page is one slice of a filtered collection.
type Page[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalItems int `json:"total_items"`
	TotalPages int `json:"total_pages"`
	StartItem  int `json:"start_item"`
	EndItem    int `json:"end_item"`
}

// NormalizePageSize returns size when it is one of PageSizes, the default otherwise.
func NormalizePageSize(size int) int {
	for _, s := range PageSizes {
		if s == size {
			return size
		}
	}
	return DefaultPageSize
}

// Paginate slices items into pages of size and returns the requested page,
// clamped to the valid range. TotalPages is ceil(len(items)/size).
func Paginate[T any](items []T, page, size int) Page[T] {
	if size <= 0 {
		size = DefaultPageSize
	}
	total := len(items)
	pages := (total + size - 1) / size

	if page < 1 {
		page = 1
	}
	if pages > 0 && page > pages {
		page = pages
	}
	if pages == 0 {
		page = 1
	}

	start := (page - 1) * size
	end := start + size
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	p := Page[T]{
		Items:      items[start:end],
		Page:       page,
		PageSize:   size,
		TotalItems: total,
		TotalPages: pages,
	}
	if end > start {
		p.StartItem = start + 1
		p.EndItem = end
	}
	return p
}

// Fingerprint identifies a combination of filter values.
type Fingerprint string

// FingerprintOf hashes filter values independently of map ordering.
func FingerprintOf(filters map[string]string) Fingerprint {
	keys := make([]string, 0, len(filters))
	for k := range filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h := sha1.New()
	for _, k := range keys {
		h.Write([]byte(k))
		h.Write([]byte{0})
		h.Write([]byte(strings.TrimSpace(filters[k])))
		h.Write([]byte{0})
	}
	return Fingerprint(hex.EncodeToString(h.Sum(nil))[:16])
}

// ViewState is the page position of a list view.
type ViewState struct {
	Filters Fingerprint `json:"filters"`
	Page    int         `json:"page"`
	Size    int         `json:"size"`
}

// Apply moves the view to page under the given filters. Any change of filters
// resets the view to the first page.
func (v ViewState) Apply(filters Fingerprint, page, size int) ViewState {
	next := ViewState{Filters: filters, Page: page, Size: NormalizePageSize(size)}
	if v.Filters != filters || (v.Size != 0 && v.Size != next.Size) {
		next.Page = 1
	}
	if next.Page < 1 {
		next.Page = 1
	}
	return next
}

// Window is the paging part of a list query. Prior is the filters token the
// client received with the previous page.
type Window struct {
	Prior    Fingerprint
	Page     int
	PageSize int
}

// Resume computes the view for a request that carries the fingerprint of the
// filters it was paged under. An empty prior means the first request of the
// view, which keeps the requested page. The page size is part of the filters.
func Resume(prior Fingerprint, filters map[string]string, page, size int) ViewState {
	size = NormalizePageSize(size)
	withSize := make(map[string]string, len(filters)+1)
	for k, v := range filters {
		withSize[k] = v
	}
	withSize["page_size"] = strconv.Itoa(size)

	current := FingerprintOf(withSize)
	if prior == "" {
		prior = current
	}
	return ViewState{Filters: prior, Size: size}.Apply(current, page, size)
}

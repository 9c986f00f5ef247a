// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// Server-side bounds on the limit query parameter.
const (
	MinPageSize     = 1
	MaxPageSize     = 100
	DefaultPageSize = 10
)

// Pagination tracks where the history view is within the full result set.
// Offset only moves in steps of PageSize.
type Pagination struct {
	Offset   int
	PageSize int
	Total    int
}

// NewPagination returns a pagination at offset 0. Out-of-range sizes are
// clamped to the server's accepted range.
func NewPagination(pageSize int) Pagination {
	return Pagination{PageSize: ClampPageSize(pageSize)}
}

// ClampPageSize forces n into [MinPageSize, MaxPageSize], mapping zero and
// negatives to DefaultPageSize.
func ClampPageSize(n int) int {
	switch {
	case n <= 0:
		return DefaultPageSize
	case n > MaxPageSize:
		return MaxPageSize
	default:
		return n
	}
}

// CurrentPage is floor(offset/pageSize)+1.
func (p Pagination) CurrentPage() int {
	if p.PageSize <= 0 {
		return 1
	}
	return p.Offset/p.PageSize + 1
}

// TotalPages is ceil(total/pageSize); zero when there are no results.
func (p Pagination) TotalPages() int {
	if p.PageSize <= 0 || p.Total <= 0 {
		return 0
	}
	return (p.Total + p.PageSize - 1) / p.PageSize
}

// HasPrev reports whether the previous-page control is enabled.
func (p Pagination) HasPrev() bool {
	return p.CurrentPage() > 1
}

// HasNext reports whether the next-page control is enabled.
func (p Pagination) HasNext() bool {
	return p.CurrentPage() < p.TotalPages()
}

// ShowControls reports whether pagination controls are rendered at all.
func (p Pagination) ShowControls() bool {
	return p.TotalPages() > 1
}

// Next returns the pagination one page forward, or p unchanged on the last page.
func (p Pagination) Next() Pagination {
	if !p.HasNext() {
		return p
	}
	p.Offset += p.PageSize
	return p
}

// Prev returns the pagination one page back, or p unchanged on the first page.
func (p Pagination) Prev() Pagination {
	if !p.HasPrev() {
		return p
	}
	p.Offset -= p.PageSize
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// Range returns the 1-based first and last row numbers shown on the current
// page given how many rows it actually holds.
func (p Pagination) Range(rows int) (from, to int) {
	if rows <= 0 {
		return 0, 0
	}
	return p.Offset + 1, p.Offset + rows
}

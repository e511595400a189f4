package query

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// PageConfig carries the per-resource paging defaults. It is passed in by
// the caller; nothing here reads the environment.
type PageConfig struct {
	DefaultPageSize int
	// MaxPageSize caps requested sizes when positive.
	MaxPageSize int
}

// PageRequest is a normalized, 1-based page. Number and Size are always >= 1
// when built by NormalizePage.
type PageRequest struct {
	Number int
	Size   int
}

// NormalizePage parses raw page and size inputs. Absent, non-numeric or
// non-positive values fall back to page 1 and the configured default size.
func NormalizePage(rawPage, rawSize string, cfg PageConfig) PageRequest {
	def := cfg.DefaultPageSize
	if def < 1 {
		def = 1
	}
	if cfg.MaxPageSize > 0 && def > cfg.MaxPageSize {
		def = cfg.MaxPageSize
	}

	page := parsePositive(rawPage, 1)
	size := parsePositive(rawSize, def)
	if cfg.MaxPageSize > 0 && size > cfg.MaxPageSize {
		size = cfg.MaxPageSize
	}
	if page > maxPage(size) {
		page = maxPage(size)
	}
	return PageRequest{Number: page, Size: size}
}

// maxPage is the largest page number whose offset still fits in an int.
func maxPage(size int) int {
	return math.MaxInt/size + 1
}

func parsePositive(raw string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

func (p PageRequest) size() int {
	if p.Size < 1 {
		return 1
	}
	return p.Size
}

func (p PageRequest) number() int {
	if p.Number < 1 {
		return 1
	}
	return p.Number
}

// Skip is the number of records before this page.
func (p PageRequest) Skip() int {
	n := min(p.number(), maxPage(p.size()))
	return (n - 1) * p.size()
}

// Limit is the maximum number of records on this page.
func (p PageRequest) Limit() int { return p.size() }

// TotalPages is ceil(total/size), 0 when total is 0.
func (p PageRequest) TotalPages(total int64) int64 {
	if total <= 0 {
		return 0
	}
	size := int64(p.size())
	return (total + size - 1) / size
}

// RenderPageDescriptor renders "page/totalPages" while the page lies within
// the result set. It returns nil for a page beyond the data, which includes
// every page of an empty result.
func RenderPageDescriptor(p PageRequest, total int64) *string {
	totalPages := p.TotalPages(total)
	if int64(p.number()) > totalPages {
		return nil
	}
	s := fmt.Sprintf("%d/%d", p.number(), totalPages)
	return &s
}

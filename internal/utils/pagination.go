// Package utils provides small helpers shared by the handler and service
// layers.
package utils

import "strconv"

// AtoiDefault converts s with strconv.Atoi, returning def when s is empty
// or not an integer.
func AtoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

// Page is a 1-based page request.
type Page struct {
	Number int
	Size   int
}

// ParsePage reads page and size query values, applying def for missing or
// malformed input and clamping size to [1, maxSize].
func ParsePage(page, size string, def Page, maxSize int) Page {
	return Page{
		Number: max(AtoiDefault(page, def.Number), 1),
		Size:   min(max(AtoiDefault(size, def.Size), 1), maxSize),
	}
}

// Normalize raises a zero or negative number or size to 1.
func (p Page) Normalize() Page {
	return Page{Number: max(p.Number, 1), Size: max(p.Size, 1)}
}

// Offset is the number of rows before the page.
func (p Page) Offset() int {
	p = p.Normalize()
	return (p.Number - 1) * p.Size
}

// TotalPages returns ceil(total/size); size < 1 counts as 1.
func TotalPages(total int64, size int) int {
	size = max(size, 1)
	return int((total + int64(size) - 1) / int64(size))
}

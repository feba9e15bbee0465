package models

import (
	"math"
	"strconv"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PageRequest is a zero-based page index and a page size
type PageRequest struct {
	Page int
	Size int
}

// ParsePageRequest reads the page and size query values. Empty values use defaults.
func ParsePageRequest(page, size string) (PageRequest, error) {
	req := PageRequest{Page: 0, Size: DefaultPageSize}

	if page != "" {
		n, err := strconv.Atoi(page)
		if err != nil || n < 0 {
			return req, ValidationError{Field: "page", Message: "page must be a non-negative integer"}
		}
		req.Page = n
	}

	if size != "" {
		n, err := strconv.Atoi(size)
		if err != nil || n < 1 {
			return req, ValidationError{Field: "size", Message: "size must be a positive integer"}
		}
		req.Size = min(n, MaxPageSize)
	}

	return req, nil
}

// Offset is the number of elements before the page. It saturates at math.MaxInt
// instead of overflowing, so a huge page index reads as past the end.
func (p PageRequest) Offset() int {
	if p.Size > 0 && p.Page > math.MaxInt/p.Size {
		return math.MaxInt
	}
	return max(p.Page*p.Size, 0)
}

// Page is one slice of an ordered listing plus position metadata
type Page[T any] struct {
	Content          []T   `json:"content"`
	Number           int   `json:"number"`
	Size             int   `json:"size"`
	TotalElements    int64 `json:"totalElements"`
	TotalPages       int   `json:"totalPages"`
	NumberOfElements int   `json:"numberOfElements"`
	First            bool  `json:"first"`
	Last             bool  `json:"last"`
	Empty            bool  `json:"empty"`
}

// NewPage builds the page metadata for content taken at req out of total elements
func NewPage[T any](content []T, req PageRequest, total int64) Page[T] {
	if content == nil {
		content = []T{}
	}

	totalPages := 0
	if req.Size > 0 {
		totalPages = int((total + int64(req.Size) - 1) / int64(req.Size))
	}

	return Page[T]{
		Content:          content,
		Number:           req.Page,
		Size:             req.Size,
		TotalElements:    total,
		TotalPages:       totalPages,
		NumberOfElements: len(content),
		First:            req.Page == 0,
		Last:             req.Page >= totalPages-1,
		Empty:            len(content) == 0,
	}
}

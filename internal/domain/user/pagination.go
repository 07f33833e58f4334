package user

import (
	"strings"

	"user-pref-service/pkg/enum"
)

// Order is the sort direction of a list query.
type Order string

const (
	OrderAsc  Order = "ASC"
	OrderDesc Order = "DESC"
)

// Orders lists the supported sort directions.
var Orders = enum.Set[Order]{
	{Key: "ASC", Value: OrderAsc},
	{Key: "DESC", Value: OrderDesc},
}

// SortField is a column a list can be sorted by.
type SortField string

const (
	SortCreatedAt SortField = "createdAt"
	SortUpdatedAt SortField = "updatedAt"
	SortDeletedAt SortField = "deletedAt"
)

// SortFields lists the sortable columns.
var SortFields = enum.Set[SortField]{
	{Key: "CREATED_AT", Value: SortCreatedAt},
	{Key: "UPDATED_AT", Value: SortUpdatedAt},
	{Key: "DELETED_AT", Value: SortDeletedAt},
}

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// ListQuery describes a paginated, sorted and optionally filtered list request.
type ListQuery struct {
	Page              int64
	Limit             int64
	Order             Order
	SortBy            SortField
	SearchTerm        string
	SelectSoftDeleted bool
}

// Offset returns the number of rows to skip.
func (q ListQuery) Offset() int64 {
	if q.Page <= 1 {
		return 0
	}
	return (q.Page - 1) * q.Limit
}

// Page is a single page of results.
type Page[T any] struct {
	Content    []T   `json:"content"`
	PageNumber int64 `json:"pageNumber"`
	PageSize   int64 `json:"pageSize"`
	TotalPages int64 `json:"totalPages"`
	TotalItems int64 `json:"totalItems"`
}

// NewPage creates a Page with calculated total pages.
func NewPage[T any](content []T, total, page, limit int64) Page[T] {
	totalPages := int64(0)
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	if content == nil {
		content = []T{}
	}

	return Page[T]{
		Content:    content,
		PageNumber: page,
		PageSize:   limit,
		TotalPages: totalPages,
		TotalItems: total,
	}
}

// MapPage converts the content of a page, keeping its metadata.
func MapPage[A, B any](p Page[A], fn func(A) B) Page[B] {
	out := make([]B, len(p.Content))
	for i, item := range p.Content {
		out[i] = fn(item)
	}
	return Page[B]{
		Content:    out,
		PageNumber: p.PageNumber,
		PageSize:   p.PageSize,
		TotalPages: p.TotalPages,
		TotalItems: p.TotalItems,
	}
}

// ListRequest is the raw list query accepted by the transports. size and sort are
// accepted as aliases of limit and sortBy.
type ListRequest struct {
	Page              int64     `json:"page" validate:"gte=0"`
	Limit             int64     `json:"limit" validate:"gte=0"`
	Size              int64     `json:"size" validate:"gte=0"`
	Order             Order     `json:"order" validate:"omitempty,order"`
	Sort              SortField `json:"sort" validate:"omitempty,sortfield"`
	SortBy            SortField `json:"sortBy" validate:"omitempty,sortfield"`
	SearchTerm        string    `json:"searchTerm" validate:"max=100"`
	SelectSoftDeleted bool      `json:"selectSoftDeleted"`
}

// SetDefaults resolves aliases and fills paging defaults.
func (r *ListRequest) SetDefaults() {
	if r.Limit == 0 {
		r.Limit = r.Size
	}
	if r.SortBy == "" {
		r.SortBy = r.Sort
	}
	if r.Page <= 0 {
		r.Page = DefaultPage
	}
	if r.Limit <= 0 {
		r.Limit = DefaultLimit
	}
	if r.Limit > MaxLimit {
		r.Limit = MaxLimit
	}
	r.Order = Order(strings.ToUpper(string(r.Order)))
	if r.Order == "" {
		r.Order = OrderDesc
	}
	if r.SortBy == "" {
		r.SortBy = SortCreatedAt
	}
	r.SearchTerm = strings.TrimSpace(r.SearchTerm)
}

// Query returns the normalized repository query.
func (r ListRequest) Query() ListQuery {
	return ListQuery{
		Page:              r.Page,
		Limit:             r.Limit,
		Order:             r.Order,
		SortBy:            r.SortBy,
		SearchTerm:        r.SearchTerm,
		SelectSoftDeleted: r.SelectSoftDeleted,
	}
}

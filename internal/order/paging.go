package order

import "time"

const (
	defaultLimit = 20
	maxLimit     = 50
)

// ListFilter narrows and pages an order listing. Zero values mean "no
// filter" and default paging. DateFrom and DateTo bound created_at
// inclusively; all present filters are combined with AND.
type ListFilter struct {
	AccountID string
	Status    Status
	DateFrom  time.Time
	DateTo    time.Time
	Limit     int
	Offset    int
}

// normalize applies the paging defaults: a missing or non-positive limit
// becomes defaultLimit, an oversized limit is capped at maxLimit, and a
// negative offset becomes zero.
func (f ListFilter) normalize() ListFilter {
	if f.Limit <= 0 {
		f.Limit = defaultLimit
	}
	if f.Limit > maxLimit {
		f.Limit = maxLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

// PageInfo tells a client whether results exist beyond the current window.
type PageInfo struct {
	HasNextPage     bool `json:"hasNextPage"`
	HasPreviousPage bool `json:"hasPreviousPage"`
}

// Page is one window of an order listing. TotalCount counts every row
// matching the filter, independent of the window.
type Page struct {
	Nodes      []Order  `json:"nodes"`
	TotalCount int      `json:"totalCount"`
	PageInfo   PageInfo `json:"pageInfo"`
}

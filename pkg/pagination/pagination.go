package pagination

import (
	"fmt"
	"strconv"

	"github.com/labstack/echo/v4"
)

const (
	DefaultLimit = 100
	MaxLimit     = 500

	// TotalCountHeader carries the unpaginated row count so list bodies stay
	// plain JSON arrays.
	TotalCountHeader = "X-Total-Count"
	LinkHeader       = "Link"
)

// Params holds pagination parameters extracted from a request.
type Params struct {
	Limit  int
	Offset int
}

// FromContext reads limit and offset query parameters. Missing or invalid
// values fall back to the defaults; limit is capped at MaxLimit.
func FromContext(c echo.Context) Params {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	if offset < 0 {
		offset = 0
	}

	return Params{Limit: limit, Offset: offset}
}

// SQL returns the LIMIT and OFFSET clause for SQL queries.
func (p Params) SQL() string {
	return fmt.Sprintf("LIMIT %d OFFSET %d", p.Limit, p.Offset)
}

// HasNext returns true if there are more results after the current page.
func (p Params) HasNext(total int) bool {
	return p.Offset+p.Limit < total
}

// SetHeaders writes the total row count and, when another page exists, a
// Link header pointing at it with the same query and the next offset.
func SetHeaders(c echo.Context, p Params, total int) {
	h := c.Response().Header()
	h.Set(TotalCountHeader, strconv.Itoa(total))
	if !p.HasNext(total) {
		return
	}

	next := *c.Request().URL
	q := next.Query()
	q.Set("limit", strconv.Itoa(p.Limit))
	q.Set("offset", strconv.Itoa(p.Offset+p.Limit))
	next.RawQuery = q.Encode()
	h.Set(LinkHeader, fmt.Sprintf(`<%s>; rel="next"`, next.RequestURI()))
}

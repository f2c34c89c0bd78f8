package pagination

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/labstack/echo/v4"
)

func contextFor(target string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	rec := httptest.NewRecorder()
	return e.NewContext(httptest.NewRequest(http.MethodGet, target, nil), rec), rec
}

func TestFromContext_Defaults(t *testing.T) {
	c, _ := contextFor("/")

	p := FromContext(c)

	if p.Limit != DefaultLimit {
		t.Errorf("expected default limit %d, got %d", DefaultLimit, p.Limit)
	}
	if p.Offset != 0 {
		t.Errorf("expected default offset 0, got %d", p.Offset)
	}
}

func TestFromContext_CustomValues(t *testing.T) {
	c, _ := contextFor("/?limit=50&offset=10")

	p := FromContext(c)

	if p.Limit != 50 {
		t.Errorf("expected limit 50, got %d", p.Limit)
	}
	if p.Offset != 10 {
		t.Errorf("expected offset 10, got %d", p.Offset)
	}
}

func TestFromContext_Bounds(t *testing.T) {
	tests := []struct {
		query      string
		wantLimit  int
		wantOffset int
	}{
		{"/?limit=100000", MaxLimit, 0},
		{"/?limit=-5", DefaultLimit, 0},
		{"/?limit=abc&offset=xyz", DefaultLimit, 0},
		{"/?offset=-20", DefaultLimit, 0},
	}
	for _, tt := range tests {
		c, _ := contextFor(tt.query)
		p := FromContext(c)
		if p.Limit != tt.wantLimit || p.Offset != tt.wantOffset {
			t.Errorf("%s: got %+v", tt.query, p)
		}
	}
}

func TestParams_SQL(t *testing.T) {
	p := Params{Limit: 20, Offset: 40}
	if got := p.SQL(); got != "LIMIT 20 OFFSET 40" {
		t.Errorf("SQL() = %q", got)
	}
}

func TestParams_HasNext(t *testing.T) {
	p := Params{Limit: 10, Offset: 0}
	if !p.HasNext(11) {
		t.Error("expected a next page for 11 rows")
	}
	if p.HasNext(10) {
		t.Error("expected no next page for 10 rows")
	}
}

func TestSetHeaders(t *testing.T) {
	tests := []struct {
		name     string
		target   string
		page     Params
		total    int
		wantLink string
	}{
		{"last page", "/api/patients", Params{Limit: 10, Offset: 0}, 10, ""},
		{"more rows", "/api/patients?limit=10", Params{Limit: 10, Offset: 0}, 42, `</api/patients?limit=10&offset=10>; rel="next"`},
		{"keeps other params", "/api/patients?limit=5&offset=5&q=x", Params{Limit: 5, Offset: 5}, 11, `</api/patients?limit=5&offset=10&q=x>; rel="next"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := contextFor(tt.target)
			SetHeaders(c, tt.page, tt.total)
			if got := rec.Header().Get(TotalCountHeader); got != strconv.Itoa(tt.total) {
				t.Errorf("%s = %q", TotalCountHeader, got)
			}
			if got := rec.Header().Get(LinkHeader); got != tt.wantLink {
				t.Errorf("Link = %q, want %q", got, tt.wantLink)
			}
		})
	}
}

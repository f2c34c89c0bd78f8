package catalog

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func TestHandler_List(t *testing.T) {
	h := NewHandler(NewResolver(newMockRepo(), false, zerolog.Nop()))
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/api/catalogs/sexo", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("catalog")
	c.SetParamValues("sexo")

	if err := h.List(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	var entries []Entry
	json.Unmarshal(rec.Body.Bytes(), &entries)
	if len(entries) != 2 || entries[0].Nombre != "Masculino" {
		t.Errorf("entries = %+v", entries)
	}
}

func TestHandler_List_Unknown(t *testing.T) {
	h := NewHandler(NewResolver(newMockRepo(), false, zerolog.Nop()))
	e := echo.New()

	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.SetParamNames("catalog")
	c.SetParamValues("nope")

	if err := h.List(c); err == nil {
		t.Error("expected error for unknown catalog")
	}
}

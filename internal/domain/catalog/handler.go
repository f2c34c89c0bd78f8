package catalog

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/geriatria/historia-clinica/internal/platform/auth"
)

type Handler struct {
	resolver *Resolver
}

func NewHandler(resolver *Resolver) *Handler {
	return &Handler{resolver: resolver}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/catalogs", auth.RequireRole(auth.RoleMedico))
	g.GET("/:catalog", h.List)
}

func (h *Handler) List(c echo.Context) error {
	entries, err := h.resolver.List(c.Request().Context(), c.Param("catalog"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, entries)
}

package patient

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/geriatria/historia-clinica/internal/platform/apperr"
	"github.com/geriatria/historia-clinica/internal/platform/auth"
	"github.com/geriatria/historia-clinica/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/patients", auth.RequireRole(auth.RoleMedico))
	g.GET("", h.List)
	g.GET("/record/:recordNumber", h.GetByRecord)
	g.GET("/:id", h.Get)
}

// List returns a JSON array; the total count travels in X-Total-Count and
// the next page, if any, in Link.
func (h *Handler) List(c echo.Context) error {
	page := pagination.FromContext(c)
	out, total, err := h.svc.List(c.Request().Context(), page)
	if err != nil {
		return err
	}
	pagination.SetHeaders(c, page, total)
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return apperr.Validation("invalid id")
	}
	d, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) GetByRecord(c echo.Context) error {
	p, err := h.svc.LatestByRecord(c.Request().Context(), c.Param("recordNumber"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

package history

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/geriatria/historia-clinica/internal/platform/apperr"
	"github.com/geriatria/historia-clinica/internal/platform/auth"
	"github.com/geriatria/historia-clinica/internal/platform/middleware"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/histories", auth.RequireRole(auth.RoleMedico))
	g.POST("", h.Create)
	g.GET("/patient/record/:recordNumber", h.ListByRecord)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
}

func (h *Handler) Create(c echo.Context) error {
	var req CreateRequest
	if err := c.Bind(&req); err != nil {
		return middleware.BindError(err)
	}
	ctx := c.Request().Context()
	id, err := h.svc.Create(ctx, auth.UserIDFromContext(ctx), req.Content)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, CreateResponse{ID: id})
}

func (h *Handler) Get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	hist, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, hist)
}

func (h *Handler) ListByRecord(c echo.Context) error {
	out, err := h.svc.ListByRecord(c.Request().Context(), c.Param("recordNumber"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

// Update answers 501 for every id, well-formed or not. Histories are
// append-only.
func (h *Handler) Update(c echo.Context) error {
	id, _ := strconv.ParseInt(c.Param("id"), 10, 64)
	return h.svc.Update(c.Request().Context(), id, nil)
}

func parseID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("invalid id")
	}
	return id, nil
}

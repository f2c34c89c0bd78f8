package identity

import (
	"net/http"

	"github.com/labstack/echo/v4"

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
	api.POST("/auth/login", h.Login)
	api.GET("/users/me", h.Me)

	admin := api.Group("/users", auth.RequireRole(auth.RoleAdmin))
	admin.POST("/register-doctor", h.RegisterDoctor)
}

func (h *Handler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return middleware.BindError(err)
	}
	resp, err := h.svc.Login(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) Me(c echo.Context) error {
	v, err := h.svc.Me(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, v)
}

func (h *Handler) RegisterDoctor(c echo.Context) error {
	var req NewUserRequest
	if err := c.Bind(&req); err != nil {
		return middleware.BindError(err)
	}
	u, err := h.svc.RegisterDoctor(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, RegisterResponse{
		Message: "Doctor registered successfully.",
		UserID:  u.ID,
	})
}

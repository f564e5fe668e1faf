package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type HealthHandler struct {
	service string
	version string
}

func NewHealthHandler(service, version string) *HealthHandler {
	return &HealthHandler{service: service, version: version}
}

// Liveness answers GET /
func (h *HealthHandler) Liveness(c echo.Context) error {
	return c.String(http.StatusOK, "Paystack webhook server is running")
}

func (h *HealthHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": h.service,
		"version": h.version,
	})
}

package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"webmail/internal/service"
)

// SeedHandler handles seed data endpoints.
type SeedHandler struct {
	seedService service.SeedService
}

// NewSeedHandler creates a new seed handler.
func NewSeedHandler(seedService service.SeedService) *SeedHandler {
	return &SeedHandler{seedService: seedService}
}

// SeedResponse represents the seed response.
type SeedResponse struct {
	Message string              `json:"message"`
	Created *service.SeedResult `json:"created"`
}

// SeedDefaults godoc
// @Summary Seed default categories and notifications
// @Description Idempotent: rows that already exist are left alone.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} SeedResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /admin/seed [post]
func (h *SeedHandler) SeedDefaults(c echo.Context) error {
	result, err := h.seedService.SeedDefaults(c.Request().Context())
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, SeedResponse{
		Message: "reference data seeded",
		Created: result,
	})
}

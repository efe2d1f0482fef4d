package handlers

import (
	"errors"

	"alfa-sacco/internal/core/domain"
	"alfa-sacco/internal/core/services"
	"alfa-sacco/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// DashboardHandler handles dashboard endpoints
type DashboardHandler struct {
	dashboardService *services.DashboardService
	memberService    *services.MemberService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardService *services.DashboardService, memberService *services.MemberService) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		memberService:    memberService,
	}
}

// Admin returns the staff dashboard
// @Summary Admin dashboard
// @Description Group-wide member, savings and loan statistics (staff only)
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /dashboard/admin [get]
func (h *DashboardHandler) Admin(c *fiber.Ctx) error {
	data, err := h.dashboardService.GetAdminDashboard(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to build dashboard")
	}

	return response.Success(c, "Dashboard retrieved successfully", data)
}

// Me returns the caller's member dashboard
// @Summary Member dashboard
// @Description The authenticated member's savings and loan summary
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /dashboard/me [get]
func (h *DashboardHandler) Me(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	member, err := h.memberService.GetByUserID(c.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrMemberNotFound) {
			return response.NotFound(c, "You are not registered as a member")
		}
		return response.InternalServerError(c, "Failed to build dashboard")
	}

	data, err := h.dashboardService.GetMemberDashboard(c.Context(), member.ID)
	if err != nil {
		return response.InternalServerError(c, "Failed to build dashboard")
	}

	return response.Success(c, "Dashboard retrieved successfully", data)
}

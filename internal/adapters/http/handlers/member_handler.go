package handlers

import (
	"errors"
	"strconv"
	"strings"

	"alfa-sacco/internal/adapters/http/middleware"
	"alfa-sacco/internal/core/domain"
	"alfa-sacco/internal/core/services"
	"alfa-sacco/internal/pkg/pagination"
	"alfa-sacco/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// MemberHandler handles member endpoints
type MemberHandler struct {
	memberService *services.MemberService
}

// NewMemberHandler creates a new member handler
func NewMemberHandler(memberService *services.MemberService) *MemberHandler {
	return &MemberHandler{
		memberService: memberService,
	}
}

// RegisterMemberRequest represents member registration request
type RegisterMemberRequest struct {
	UserID        uint            `json:"user_id"`
	FullName      string          `json:"full_name"`
	Phone         string          `json:"phone,omitempty"`
	MonthlyTarget decimal.Decimal `json:"monthly_target,omitempty"`
}

// Register registers a new member
// @Summary Register member
// @Description Create a member record for a user account. Members may only register themselves.
// @Tags Members
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body RegisterMemberRequest true "Member data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /members [post]
func (h *MemberHandler) Register(c *fiber.Ctx) error {
	var req RegisterMemberRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	actor := middleware.GetActor(c)
	if req.UserID == 0 {
		req.UserID = actor.UserID
	}

	input := &services.RegisterMemberInput{
		UserID:        req.UserID,
		FullName:      strings.TrimSpace(req.FullName),
		Phone:         strings.TrimSpace(req.Phone),
		MonthlyTarget: req.MonthlyTarget,
	}

	member, err := h.memberService.Register(c.Context(), actor, input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrValidation):
			return response.BadRequest(c, err.Error())
		case errors.Is(err, domain.ErrUnauthorized):
			return response.Forbidden(c, "You can only register yourself as a member")
		case errors.Is(err, domain.ErrUserNotFound):
			return response.NotFound(c, "User not found")
		case errors.Is(err, domain.ErrMemberAlreadyRegistered):
			return response.Conflict(c, "User is already registered as a member")
		default:
			return response.InternalServerError(c, "Failed to register member")
		}
	}

	return response.Created(c, "Member registered successfully", member.ToResponse())
}

// Get returns a member by ID
// @Summary Get member
// @Description Get a member by ID
// @Tags Members
// @Produce json
// @Security BearerAuth
// @Param id path int true "Member ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /members/{id} [get]
func (h *MemberHandler) Get(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid member ID")
	}

	member, err := h.memberService.GetByID(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, domain.ErrMemberNotFound) {
			return response.NotFound(c, "Member not found")
		}
		return response.InternalServerError(c, "Failed to get member")
	}

	return response.Success(c, "Member retrieved successfully", member.ToResponse())
}

// GetMe returns the caller's own member record
// @Summary Get own member record
// @Description Get the member record linked to the authenticated user
// @Tags Members
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /members/me [get]
func (h *MemberHandler) GetMe(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	member, err := h.memberService.GetByUserID(c.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrMemberNotFound) {
			return response.NotFound(c, "You are not registered as a member")
		}
		return response.InternalServerError(c, "Failed to get member")
	}

	return response.Success(c, "Member retrieved successfully", member.ToResponse())
}

// List lists members
// @Summary List members
// @Description List members with pagination, optionally filtered by status
// @Tags Members
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Param status query string false "Member status filter"
// @Success 200 {object} response.Response
// @Router /members [get]
func (h *MemberHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	result, err := h.memberService.List(c.Context(), &services.ListMembersInput{
		Page:   params.Page,
		Limit:  params.Limit,
		Status: c.Query("status"),
	})
	if err != nil {
		return response.InternalServerError(c, "Failed to list members")
	}

	return response.Success(c, "Members retrieved successfully", pagination.NewResponse(result.Members, params, result.Total))
}

// UpdateMemberRequest represents member update request
type UpdateMemberRequest struct {
	FullName      *string          `json:"full_name"`
	Phone         *string          `json:"phone"`
	Status        *string          `json:"status"`
	MonthlyTarget *decimal.Decimal `json:"monthly_target"`
}

// Update updates a member
// @Summary Update member
// @Description Update member fields including status (staff only)
// @Tags Members
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Member ID"
// @Param body body UpdateMemberRequest true "Fields to update"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /members/{id} [put]
func (h *MemberHandler) Update(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid member ID")
	}

	var req UpdateMemberRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	member, err := h.memberService.Update(c.Context(), middleware.GetActor(c), uint(id), &services.UpdateMemberInput{
		FullName:      req.FullName,
		Phone:         req.Phone,
		Status:        req.Status,
		MonthlyTarget: req.MonthlyTarget,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrValidation):
			return response.BadRequest(c, err.Error())
		case errors.Is(err, domain.ErrUnauthorized):
			return response.Forbidden(c, "You don't have permission to update members")
		case errors.Is(err, domain.ErrMemberNotFound):
			return response.NotFound(c, "Member not found")
		default:
			return response.InternalServerError(c, "Failed to update member")
		}
	}

	return response.Success(c, "Member updated successfully", member.ToResponse())
}

// Delete soft deletes a member
// @Summary Delete member
// @Description Soft delete a member record (staff only)
// @Tags Members
// @Produce json
// @Security BearerAuth
// @Param id path int true "Member ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /members/{id} [delete]
func (h *MemberHandler) Delete(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid member ID")
	}

	if err := h.memberService.Delete(c.Context(), middleware.GetActor(c), uint(id)); err != nil {
		switch {
		case errors.Is(err, domain.ErrUnauthorized):
			return response.Forbidden(c, "You don't have permission to delete members")
		case errors.Is(err, domain.ErrMemberNotFound):
			return response.NotFound(c, "Member not found")
		default:
			return response.InternalServerError(c, "Failed to delete member")
		}
	}

	return response.Success(c, "Member deleted successfully", nil)
}

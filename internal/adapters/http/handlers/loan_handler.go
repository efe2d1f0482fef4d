package handlers

import (
	"errors"
	"strconv"
	"time"

	"alfa-sacco/internal/adapters/http/middleware"
	"alfa-sacco/internal/core/domain"
	"alfa-sacco/internal/core/services"
	"alfa-sacco/internal/pkg/pagination"
	"alfa-sacco/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// LoanHandler handles loan endpoints
type LoanHandler struct {
	loanService *services.LoanService
}

// NewLoanHandler creates a new loan handler
func NewLoanHandler(loanService *services.LoanService) *LoanHandler {
	return &LoanHandler{
		loanService: loanService,
	}
}

// ApplyLoanRequest represents loan application request
type ApplyLoanRequest struct {
	MemberID       uint            `json:"member_id"`
	Amount         decimal.Decimal `json:"amount"`
	InterestRate   decimal.Decimal `json:"interest_rate"`
	DurationMonths int             `json:"duration_months"`
	Purpose        string          `json:"purpose,omitempty"`
}

// Apply files a loan application
// @Summary Apply for loan
// @Description File a loan application with status pending
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body ApplyLoanRequest true "Loan application"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /loans [post]
func (h *LoanHandler) Apply(c *fiber.Ctx) error {
	var req ApplyLoanRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.MemberID == 0 {
		return response.BadRequest(c, "Member ID is required")
	}

	loan, err := h.loanService.Apply(c.Context(), middleware.GetActor(c), &services.ApplyInput{
		MemberID:       req.MemberID,
		Amount:         req.Amount,
		InterestRate:   req.InterestRate,
		DurationMonths: req.DurationMonths,
		Purpose:        req.Purpose,
	})
	if err != nil {
		return loanError(c, err, "Failed to apply for loan")
	}

	return response.Created(c, "Loan application filed successfully", loan.ToResponse())
}

// Get returns a loan by ID
// @Summary Get loan
// @Description Get a loan with member and approver details
// @Tags Loans
// @Produce json
// @Security BearerAuth
// @Param id path int true "Loan ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /loans/{id} [get]
func (h *LoanHandler) Get(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid loan ID")
	}

	loan, err := h.loanService.GetByID(c.Context(), uint(id))
	if err != nil {
		return loanError(c, err, "Failed to get loan")
	}

	return response.Success(c, "Loan retrieved successfully", loan.ToResponse())
}

// List lists loans
// @Summary List loans
// @Description List loans with pagination, optionally filtered by status (staff only)
// @Tags Loans
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Param status query string false "Loan status filter"
// @Success 200 {object} response.Response
// @Router /loans [get]
func (h *LoanHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	result, err := h.loanService.List(c.Context(), &services.ListLoansInput{
		Page:   params.Page,
		Limit:  params.Limit,
		Status: c.Query("status"),
	})
	if err != nil {
		return response.InternalServerError(c, "Failed to list loans")
	}

	return response.Success(c, "Loans retrieved successfully", pagination.NewResponse(result.Loans, params, result.Total))
}

// ListByMember lists a member's loans
// @Summary List member loans
// @Description List all loans belonging to one member
// @Tags Loans
// @Produce json
// @Security BearerAuth
// @Param id path int true "Member ID"
// @Success 200 {object} response.Response
// @Router /members/{id}/loans [get]
func (h *LoanHandler) ListByMember(c *fiber.Ctx) error {
	memberID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid member ID")
	}

	loans, err := h.loanService.GetByMember(c.Context(), uint(memberID))
	if err != nil {
		return response.InternalServerError(c, "Failed to list loans")
	}

	responses := make([]interface{}, len(loans))
	for i, loan := range loans {
		responses[i] = loan.ToResponse()
	}

	return response.Success(c, "Loans retrieved successfully", responses)
}

// Approve approves a pending loan
// @Summary Approve loan
// @Description Approve a pending loan, computing interest, total due and due date (staff only)
// @Tags Loans
// @Produce json
// @Security BearerAuth
// @Param id path int true "Loan ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /loans/{id}/approve [post]
func (h *LoanHandler) Approve(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid loan ID")
	}

	loan, err := h.loanService.Approve(c.Context(), middleware.GetActor(c), uint(id))
	if err != nil {
		return loanError(c, err, "Failed to approve loan")
	}

	return response.Success(c, "Loan approved successfully", loan.ToResponse())
}

// Disburse marks an approved loan as disbursed
// @Summary Disburse loan
// @Description Mark an approved loan as paid out to the member (staff only)
// @Tags Loans
// @Produce json
// @Security BearerAuth
// @Param id path int true "Loan ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /loans/{id}/disburse [post]
func (h *LoanHandler) Disburse(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid loan ID")
	}

	loan, err := h.loanService.Disburse(c.Context(), middleware.GetActor(c), uint(id))
	if err != nil {
		return loanError(c, err, "Failed to disburse loan")
	}

	return response.Success(c, "Loan disbursed successfully", loan.ToResponse())
}

// Reject rejects a pending loan
// @Summary Reject loan
// @Description Reject a pending loan application (staff only)
// @Tags Loans
// @Produce json
// @Security BearerAuth
// @Param id path int true "Loan ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /loans/{id}/reject [post]
func (h *LoanHandler) Reject(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid loan ID")
	}

	loan, err := h.loanService.Reject(c.Context(), middleware.GetActor(c), uint(id))
	if err != nil {
		return loanError(c, err, "Failed to reject loan")
	}

	return response.Success(c, "Loan rejected", loan.ToResponse())
}

// Delete soft deletes a loan
// @Summary Delete loan
// @Description Soft delete a loan record (staff only)
// @Tags Loans
// @Produce json
// @Security BearerAuth
// @Param id path int true "Loan ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /loans/{id} [delete]
func (h *LoanHandler) Delete(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid loan ID")
	}

	if err := h.loanService.Delete(c.Context(), middleware.GetActor(c), uint(id)); err != nil {
		return loanError(c, err, "Failed to delete loan")
	}

	return response.Success(c, "Loan deleted successfully", nil)
}

// RecordPaymentRequest represents loan payment request
type RecordPaymentRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	PaymentDate *time.Time      `json:"payment_date,omitempty"`
	Method      string          `json:"method,omitempty"`
	ReceiptNo   string          `json:"receipt_no,omitempty"`
	Notes       string          `json:"notes,omitempty"`
}

// RecordPayment records a repayment against a loan
// @Summary Record loan payment
// @Description Record a repayment and recompute the loan balance (staff only)
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Loan ID"
// @Param body body RecordPaymentRequest true "Payment data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /loans/{id}/payments [post]
func (h *LoanHandler) RecordPayment(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid loan ID")
	}

	var req RecordPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	payment, err := h.loanService.RecordPayment(c.Context(), middleware.GetActor(c), &services.RecordPaymentInput{
		LoanID:      uint(id),
		Amount:      req.Amount,
		PaymentDate: req.PaymentDate,
		Method:      req.Method,
		ReceiptNo:   req.ReceiptNo,
		Notes:       req.Notes,
	})
	if err != nil {
		return loanError(c, err, "Failed to record payment")
	}

	return response.Created(c, "Payment recorded successfully", payment)
}

// ListPayments lists payments for a loan
// @Summary List loan payments
// @Description List all payments for a loan in payment order
// @Tags Loans
// @Produce json
// @Security BearerAuth
// @Param id path int true "Loan ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /loans/{id}/payments [get]
func (h *LoanHandler) ListPayments(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid loan ID")
	}

	payments, err := h.loanService.ListPayments(c.Context(), uint(id))
	if err != nil {
		return loanError(c, err, "Failed to list payments")
	}

	return response.Success(c, "Payments retrieved successfully", payments)
}

// DeletePayment removes a loan payment
// @Summary Delete loan payment
// @Description Delete a payment and recompute the loan balance (staff only)
// @Tags Loans
// @Produce json
// @Security BearerAuth
// @Param id path int true "Loan ID"
// @Param paymentID path int true "Payment ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /loans/{id}/payments/{paymentID} [delete]
func (h *LoanHandler) DeletePayment(c *fiber.Ctx) error {
	paymentID, err := strconv.ParseUint(c.Params("paymentID"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid payment ID")
	}

	if err := h.loanService.DeletePayment(c.Context(), middleware.GetActor(c), uint(paymentID)); err != nil {
		return loanError(c, err, "Failed to delete payment")
	}

	return response.Success(c, "Payment deleted successfully", nil)
}

func loanError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return response.BadRequest(c, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		return response.Forbidden(c, "You don't have permission for this operation")
	case errors.Is(err, domain.ErrMemberNotFound):
		return response.NotFound(c, "Member not found")
	case errors.Is(err, domain.ErrMemberNotActive):
		return response.BadRequest(c, "Member is not active")
	case errors.Is(err, domain.ErrLoanNotFound):
		return response.NotFound(c, "Loan not found")
	case errors.Is(err, domain.ErrPaymentNotFound):
		return response.NotFound(c, "Payment not found")
	case errors.Is(err, domain.ErrInvalidTransition):
		return response.Conflict(c, err.Error())
	case errors.Is(err, domain.ErrConsistency):
		return response.InternalServerError(c, "Balance recompute failed, transaction rolled back")
	default:
		return response.InternalServerError(c, fallback)
	}
}

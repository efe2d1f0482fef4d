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

// SavingsHandler handles savings transaction endpoints
type SavingsHandler struct {
	savingsService *services.SavingsService
}

// NewSavingsHandler creates a new savings handler
func NewSavingsHandler(savingsService *services.SavingsService) *SavingsHandler {
	return &SavingsHandler{
		savingsService: savingsService,
	}
}

// RecordSavingsRequest represents savings transaction request
type RecordSavingsRequest struct {
	MemberID        uint            `json:"member_id"`
	Amount          decimal.Decimal `json:"amount"`
	Type            string          `json:"type"`
	TransactionDate *time.Time      `json:"transaction_date,omitempty"`
	ReceiptNo       string          `json:"receipt_no,omitempty"`
	Description     string          `json:"description,omitempty"`
}

// Record records a savings transaction
// @Summary Record savings transaction
// @Description Record a deposit or withdrawal for a member
// @Tags Savings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body RecordSavingsRequest true "Transaction data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /savings [post]
func (h *SavingsHandler) Record(c *fiber.Ctx) error {
	var req RecordSavingsRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.MemberID == 0 {
		return response.BadRequest(c, "Member ID is required")
	}

	transaction, err := h.savingsService.RecordTransaction(c.Context(), middleware.GetActor(c), &services.RecordTransactionInput{
		MemberID:        req.MemberID,
		Amount:          req.Amount,
		Type:            req.Type,
		TransactionDate: req.TransactionDate,
		ReceiptNo:       req.ReceiptNo,
		Description:     req.Description,
	})
	if err != nil {
		return savingsError(c, err, "Failed to record transaction")
	}

	return response.Created(c, "Transaction recorded successfully", transaction)
}

// UpdateSavingsRequest represents savings transaction update request
type UpdateSavingsRequest struct {
	Amount          *decimal.Decimal `json:"amount"`
	Type            *string          `json:"type"`
	TransactionDate *time.Time       `json:"transaction_date"`
	Description     *string          `json:"description"`
}

// Update edits a savings transaction
// @Summary Update savings transaction
// @Description Correct a historical transaction and replay balances (staff only)
// @Tags Savings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Transaction ID"
// @Param body body UpdateSavingsRequest true "Fields to update"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /savings/{id} [put]
func (h *SavingsHandler) Update(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid transaction ID")
	}

	var req UpdateSavingsRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	transaction, err := h.savingsService.UpdateTransaction(c.Context(), middleware.GetActor(c), uint(id), &services.UpdateTransactionInput{
		Amount:          req.Amount,
		Type:            req.Type,
		TransactionDate: req.TransactionDate,
		Description:     req.Description,
	})
	if err != nil {
		return savingsError(c, err, "Failed to update transaction")
	}

	return response.Success(c, "Transaction updated successfully", transaction)
}

// Delete removes a savings transaction
// @Summary Delete savings transaction
// @Description Delete a transaction and recompute balances (staff only)
// @Tags Savings
// @Produce json
// @Security BearerAuth
// @Param id path int true "Transaction ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /savings/{id} [delete]
func (h *SavingsHandler) Delete(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid transaction ID")
	}

	if err := h.savingsService.DeleteTransaction(c.Context(), middleware.GetActor(c), uint(id)); err != nil {
		return savingsError(c, err, "Failed to delete transaction")
	}

	return response.Success(c, "Transaction deleted successfully", nil)
}

// List lists savings transactions across members
// @Summary List savings transactions
// @Description List savings transactions, newest first (staff only)
// @Tags Savings
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /savings [get]
func (h *SavingsHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	result, err := h.savingsService.ListTransactions(c.Context(), &services.ListTransactionsInput{
		Page:  params.Page,
		Limit: params.Limit,
	})
	if err != nil {
		return response.InternalServerError(c, "Failed to list transactions")
	}

	return response.Success(c, "Transactions retrieved successfully", pagination.NewResponse(result.Transactions, params, result.Total))
}

// Statement returns a member's savings statement
// @Summary Member savings statement
// @Description Transactions in ledger order with running balances and the final total
// @Tags Savings
// @Produce json
// @Security BearerAuth
// @Param id path int true "Member ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /members/{id}/statement [get]
func (h *SavingsHandler) Statement(c *fiber.Ctx) error {
	memberID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid member ID")
	}

	entries, total, err := h.savingsService.GetStatement(c.Context(), uint(memberID))
	if err != nil {
		if errors.Is(err, domain.ErrMemberNotFound) {
			return response.NotFound(c, "Member not found")
		}
		return response.InternalServerError(c, "Failed to build statement")
	}

	return response.Success(c, "Statement retrieved successfully", fiber.Map{
		"entries": entries,
		"total":   total,
	})
}

func savingsError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return response.BadRequest(c, err.Error())
	case errors.Is(err, domain.ErrInsufficientSavings):
		return response.BadRequest(c, "Withdrawal exceeds member savings")
	case errors.Is(err, domain.ErrUnauthorized):
		return response.Forbidden(c, "You don't have permission for this operation")
	case errors.Is(err, domain.ErrMemberNotFound):
		return response.NotFound(c, "Member not found")
	case errors.Is(err, domain.ErrMemberNotActive):
		return response.BadRequest(c, "Member is not active")
	case errors.Is(err, domain.ErrTransactionNotFound):
		return response.NotFound(c, "Transaction not found")
	case errors.Is(err, domain.ErrConsistency):
		return response.InternalServerError(c, "Balance recompute failed, transaction rolled back")
	default:
		return response.InternalServerError(c, fallback)
	}
}

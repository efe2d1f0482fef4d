package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"alfa-sacco/internal/adapters/persistence/models"
	"alfa-sacco/internal/adapters/persistence/repositories"
	"alfa-sacco/internal/core/domain"
	"alfa-sacco/internal/core/policy"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var oneHundred = decimal.NewFromInt(100)

// LoanService handles the loan lifecycle: application, approval, disbursement,
// repayment and default marking. Derived fields are recomputed through the
// aggregation service inside the same transaction as the triggering write.
type LoanService struct {
	db          *gorm.DB
	loanRepo    *repositories.LoanRepository
	paymentRepo *repositories.LoanPaymentRepository
	memberRepo  *repositories.MemberRepository
	aggregation *AggregationService
}

// NewLoanService creates a new loan service
func NewLoanService(db *gorm.DB, loanRepo *repositories.LoanRepository, paymentRepo *repositories.LoanPaymentRepository, memberRepo *repositories.MemberRepository, aggregation *AggregationService) *LoanService {
	return &LoanService{
		db:          db,
		loanRepo:    loanRepo,
		paymentRepo: paymentRepo,
		memberRepo:  memberRepo,
		aggregation: aggregation,
	}
}

// ApplyInput represents loan application input
type ApplyInput struct {
	MemberID       uint            `json:"member_id"`
	Amount         decimal.Decimal `json:"amount"`
	InterestRate   decimal.Decimal `json:"interest_rate"`
	DurationMonths int             `json:"duration_months"`
	Purpose        string          `json:"purpose,omitempty"`
}

// Apply files a loan application with status pending. The loan number is
// allocated from a per-year counter inside the insert transaction.
func (s *LoanService) Apply(ctx context.Context, actor policy.Actor, input *ApplyInput) (*models.Loan, error) {
	if err := policy.Authorize(actor, policy.ActionApplyLoan, policy.OwnResource(input.MemberID)); err != nil {
		return nil, err
	}

	if !input.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be greater than 0", domain.ErrValidation)
	}
	if input.InterestRate.IsNegative() {
		return nil, fmt.Errorf("%w: interest rate cannot be negative", domain.ErrValidation)
	}
	if input.DurationMonths < 1 {
		return nil, fmt.Errorf("%w: duration must be at least 1 month", domain.ErrValidation)
	}

	member, err := s.memberRepo.GetByID(ctx, input.MemberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrMemberNotFound
		}
		return nil, err
	}
	if member.Status != string(domain.MemberActive) {
		return nil, domain.ErrMemberNotActive
	}

	now := time.Now()
	var loan *models.Loan
	err = s.db.Transaction(func(tx *gorm.DB) error {
		counterRepo := repositories.NewCounterRepository(tx)

		counterName := fmt.Sprintf("%s%d", models.CounterLoanPrefix, now.Year())
		seq, err := counterRepo.Next(ctx, counterName)
		if err != nil {
			return err
		}

		loan = &models.Loan{
			LoanNumber:      fmt.Sprintf("LN%d%03d", now.Year(), seq),
			MemberID:        input.MemberID,
			Amount:          input.Amount,
			InterestRate:    input.InterestRate,
			DurationMonths:  input.DurationMonths,
			Purpose:         input.Purpose,
			Status:          string(domain.LoanPending),
			ApplicationDate: now,
			TotalAmountDue:  decimal.Zero,
			AmountPaid:      decimal.Zero,
			Balance:         decimal.Zero,
		}
		return repositories.NewLoanRepository(tx).Create(ctx, loan)
	})
	if err != nil {
		return nil, err
	}

	return loan, nil
}

// Approve moves a pending loan to approved and fixes its derived terms:
//
//	total_amount_due = amount * (1 + interest_rate/100)
//	due_date         = approval_date + duration months
//	balance          = total_amount_due
//
// Simple interest over the full duration, not compounded or prorated. The
// computation fires exactly once per loan; approving from any other status
// fails with ErrInvalidTransition, so re-approval can never recompute the
// terms.
func (s *LoanService) Approve(ctx context.Context, actor policy.Actor, loanID uint) (*models.Loan, error) {
	if err := policy.Authorize(actor, policy.ActionManageLoan, policy.Resource{}); err != nil {
		return nil, err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var loan models.Loan
		if err := tx.WithContext(ctx).First(&loan, loanID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrLoanNotFound
			}
			return err
		}

		if loan.Status != string(domain.LoanPending) {
			return fmt.Errorf("%w: cannot approve loan in status %q", domain.ErrInvalidTransition, loan.Status)
		}

		now := time.Now()
		interest := loan.Amount.Mul(loan.InterestRate).Div(oneHundred).Round(2)
		dueDate := now.AddDate(0, loan.DurationMonths, 0)

		loan.Status = string(domain.LoanApproved)
		loan.ApprovalDate = &now
		loan.DueDate = &dueDate
		loan.TotalAmountDue = loan.Amount.Add(interest)
		loan.Balance = loan.TotalAmountDue
		loan.AmountPaid = decimal.Zero
		loan.ApprovedBy = &actor.UserID

		if err := repositories.NewLoanRepository(tx).Update(ctx, &loan); err != nil {
			return err
		}
		return s.aggregation.RecomputeMemberLoans(ctx, tx, loan.MemberID)
	})
	if err != nil {
		return nil, err
	}

	return s.GetByID(ctx, loanID)
}

// Disburse moves an approved loan to disbursed
func (s *LoanService) Disburse(ctx context.Context, actor policy.Actor, loanID uint) (*models.Loan, error) {
	return s.transition(ctx, actor, loanID, domain.LoanApproved, domain.LoanDisbursed, func(loan *models.Loan, now time.Time) {
		loan.DisbursementDate = &now
	})
}

// Reject declines a pending loan application
func (s *LoanService) Reject(ctx context.Context, actor policy.Actor, loanID uint) (*models.Loan, error) {
	return s.transition(ctx, actor, loanID, domain.LoanPending, domain.LoanRejected, nil)
}

func (s *LoanService) transition(ctx context.Context, actor policy.Actor, loanID uint, from, to domain.LoanStatus, apply func(*models.Loan, time.Time)) (*models.Loan, error) {
	if err := policy.Authorize(actor, policy.ActionManageLoan, policy.Resource{}); err != nil {
		return nil, err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var loan models.Loan
		if err := tx.WithContext(ctx).First(&loan, loanID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrLoanNotFound
			}
			return err
		}

		if loan.Status != string(from) {
			return fmt.Errorf("%w: cannot move loan from %q to %q", domain.ErrInvalidTransition, loan.Status, to)
		}

		loan.Status = string(to)
		if apply != nil {
			apply(&loan, time.Now())
		}
		return repositories.NewLoanRepository(tx).Update(ctx, &loan)
	})
	if err != nil {
		return nil, err
	}

	return s.GetByID(ctx, loanID)
}

// RecordPaymentInput represents loan payment input
type RecordPaymentInput struct {
	LoanID      uint            `json:"loan_id"`
	Amount      decimal.Decimal `json:"amount"`
	PaymentDate *time.Time      `json:"payment_date,omitempty"`
	Method      string          `json:"method,omitempty"`
	ReceiptNo   string          `json:"receipt_no,omitempty"`
	Notes       string          `json:"notes,omitempty"`
}

// RecordPayment records a repayment against an approved or disbursed loan
// and recomputes amount_paid and balance from the full payment set in the
// same transaction.
func (s *LoanService) RecordPayment(ctx context.Context, actor policy.Actor, input *RecordPaymentInput) (*models.LoanPayment, error) {
	if err := policy.Authorize(actor, policy.ActionRecordPayment, policy.Resource{}); err != nil {
		return nil, err
	}

	if !input.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be greater than 0", domain.ErrValidation)
	}

	loan, err := s.GetByID(ctx, input.LoanID)
	if err != nil {
		return nil, err
	}

	switch domain.LoanStatus(loan.Status) {
	case domain.LoanApproved, domain.LoanDisbursed:
	default:
		return nil, fmt.Errorf("%w: cannot record payment on loan in status %q", domain.ErrInvalidTransition, loan.Status)
	}

	paymentDate := time.Now()
	if input.PaymentDate != nil {
		paymentDate = *input.PaymentDate
	}

	payment := &models.LoanPayment{
		LoanID:      input.LoanID,
		Amount:      input.Amount,
		PaymentDate: paymentDate,
		Method:      input.Method,
		ReceiptNo:   input.ReceiptNo,
		Notes:       input.Notes,
		RecordedBy:  actor.UserID,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := repositories.NewLoanPaymentRepository(tx).Create(ctx, payment); err != nil {
			return err
		}
		return s.aggregation.RecomputeLoanBalances(ctx, tx, input.LoanID)
	})
	if err != nil {
		return nil, err
	}

	return payment, nil
}

// DeletePayment removes a payment record (admin tooling) and recomputes the
// loan's balances from the remaining payments.
func (s *LoanService) DeletePayment(ctx context.Context, actor policy.Actor, paymentID uint) error {
	if err := policy.Authorize(actor, policy.ActionManageLoan, policy.Resource{}); err != nil {
		return err
	}

	payment, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrPaymentNotFound
		}
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := repositories.NewLoanPaymentRepository(tx).Delete(ctx, paymentID); err != nil {
			return err
		}
		return s.aggregation.RecomputeLoanBalances(ctx, tx, payment.LoanID)
	})
}

// Delete soft deletes a loan (admin tooling) and recomputes the member's
// loan total from the remaining records.
func (s *LoanService) Delete(ctx context.Context, actor policy.Actor, loanID uint) error {
	if err := policy.Authorize(actor, policy.ActionManageLoan, policy.Resource{}); err != nil {
		return err
	}

	loan, err := s.GetByID(ctx, loanID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := repositories.NewLoanRepository(tx).Delete(ctx, loanID); err != nil {
			return err
		}
		return s.aggregation.RecomputeMemberLoans(ctx, tx, loan.MemberID)
	})
}

// GetByID gets a loan by ID
func (s *LoanService) GetByID(ctx context.Context, id uint) (*models.Loan, error) {
	loan, err := s.loanRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrLoanNotFound
		}
		return nil, err
	}
	return loan, nil
}

// GetByMember gets loans for a member
func (s *LoanService) GetByMember(ctx context.Context, memberID uint) ([]*models.Loan, error) {
	return s.loanRepo.ListByMember(ctx, memberID)
}

// ListPayments gets payments for a loan
func (s *LoanService) ListPayments(ctx context.Context, loanID uint) ([]*models.LoanPayment, error) {
	if _, err := s.GetByID(ctx, loanID); err != nil {
		return nil, err
	}
	return s.paymentRepo.ListByLoan(ctx, loanID)
}

// ListLoansInput represents list loans input
type ListLoansInput struct {
	Page   int
	Limit  int
	Status string
}

// ListLoansOutput represents list loans output
type ListLoansOutput struct {
	Loans      []*models.LoanResponse `json:"loans"`
	Total      int64                  `json:"total"`
	Page       int                    `json:"page"`
	Limit      int                    `json:"limit"`
	TotalPages int                    `json:"total_pages"`
}

// List lists loans
func (s *LoanService) List(ctx context.Context, input *ListLoansInput) (*ListLoansOutput, error) {
	if input.Page < 1 {
		input.Page = 1
	}
	if input.Limit < 1 {
		input.Limit = 10
	}
	if input.Limit > 100 {
		input.Limit = 100
	}

	offset := (input.Page - 1) * input.Limit
	var loans []*models.Loan
	var total int64
	var err error

	if input.Status != "" {
		loans, total, err = s.loanRepo.ListByStatus(ctx, input.Status, offset, input.Limit)
	} else {
		loans, total, err = s.loanRepo.List(ctx, offset, input.Limit)
	}
	if err != nil {
		return nil, err
	}

	responses := make([]*models.LoanResponse, len(loans))
	for i, loan := range loans {
		responses[i] = loan.ToResponse()
	}

	totalPages := int(total) / input.Limit
	if int(total)%input.Limit > 0 {
		totalPages++
	}

	return &ListLoansOutput{
		Loans:      responses,
		Total:      total,
		Page:       input.Page,
		Limit:      input.Limit,
		TotalPages: totalPages,
	}, nil
}

// MarkOverdueLoans marks approved/disbursed loans past their due date with an
// outstanding balance as defaulted. Invoked by the daily scheduler.
func (s *LoanService) MarkOverdueLoans(ctx context.Context, asOf time.Time) (int, error) {
	overdue, err := s.loanRepo.ListOverdue(ctx, asOf)
	if err != nil {
		return 0, err
	}

	marked := 0
	for _, loan := range overdue {
		loan.Status = string(domain.LoanDefaulted)
		if err := s.loanRepo.Update(ctx, loan); err != nil {
			return marked, err
		}
		marked++
	}
	return marked, nil
}

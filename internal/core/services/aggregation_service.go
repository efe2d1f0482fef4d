package services

import (
	"context"
	"fmt"

	"alfa-sacco/internal/adapters/persistence/models"
	"alfa-sacco/internal/adapters/persistence/repositories"
	"alfa-sacco/internal/core/domain"
	"alfa-sacco/internal/core/ledger"

	"gorm.io/gorm"
)

// AggregationService recomputes derived member and loan fields from their
// full underlying record sets. Recomputation is always total, never an
// incremental patch, so it converges to the same result regardless of write
// interleaving and self-heals after edits or deletions of historical records.
//
// Every method takes the enclosing transaction handle: the caller wraps the
// triggering write and the recompute in one gorm transaction so both commit
// or neither does.
type AggregationService struct{}

// NewAggregationService creates a new aggregation service
func NewAggregationService() *AggregationService {
	return &AggregationService{}
}

// RecomputeMemberSavings replays the member's full savings history, rewrites
// every balance_after snapshot that drifted, and persists the final balance
// as Member.total_savings.
func (s *AggregationService) RecomputeMemberSavings(ctx context.Context, tx *gorm.DB, memberID uint) error {
	savingsRepo := repositories.NewSavingsRepository(tx)
	memberRepo := repositories.NewMemberRepository(tx)

	rows, err := savingsRepo.ListByMember(ctx, memberID)
	if err != nil {
		return fmt.Errorf("%w: loading savings history: %v", domain.ErrConsistency, err)
	}

	history := make([]domain.SavingsTransaction, len(rows))
	for i, row := range rows {
		history[i] = row.ToDomain()
	}

	entries := ledger.Replay(history)
	for _, entry := range entries {
		if entry.Transaction.BalanceAfter.Equal(entry.Balance) {
			continue
		}
		if err := savingsRepo.UpdateBalanceAfter(ctx, entry.Transaction.ID, entry.Balance); err != nil {
			return fmt.Errorf("%w: rewriting balance snapshot: %v", domain.ErrConsistency, err)
		}
	}

	member, err := memberRepo.GetByID(ctx, memberID)
	if err != nil {
		return fmt.Errorf("%w: loading member: %v", domain.ErrConsistency, err)
	}

	member.TotalSavings = ledger.Total(history)
	if err := memberRepo.Update(ctx, member); err != nil {
		return fmt.Errorf("%w: persisting total_savings: %v", domain.ErrConsistency, err)
	}
	return nil
}

// RecomputeLoanBalances rebuilds amount_paid from the loan's payment records
// and derives balance = total_amount_due - amount_paid. A loan past approval
// whose balance reaches zero is marked completed.
func (s *AggregationService) RecomputeLoanBalances(ctx context.Context, tx *gorm.DB, loanID uint) error {
	loanRepo := repositories.NewLoanRepository(tx)
	paymentRepo := repositories.NewLoanPaymentRepository(tx)

	var loan models.Loan
	if err := tx.WithContext(ctx).First(&loan, loanID).Error; err != nil {
		return fmt.Errorf("%w: loading loan: %v", domain.ErrConsistency, err)
	}

	paid, err := paymentRepo.SumByLoan(ctx, loanID)
	if err != nil {
		return fmt.Errorf("%w: summing payments: %v", domain.ErrConsistency, err)
	}

	loan.AmountPaid = paid
	loan.Balance = loan.TotalAmountDue.Sub(paid)

	switch domain.LoanStatus(loan.Status) {
	case domain.LoanApproved, domain.LoanDisbursed:
		if !loan.Balance.IsPositive() {
			loan.Status = string(domain.LoanCompleted)
		}
	case domain.LoanCompleted:
		// A deleted payment can reopen a completed loan.
		if loan.Balance.IsPositive() {
			loan.Status = string(domain.LoanDisbursed)
		}
	}

	if err := loanRepo.Update(ctx, &loan); err != nil {
		return fmt.Errorf("%w: persisting loan balances: %v", domain.ErrConsistency, err)
	}
	return nil
}

// RecomputeMemberLoans rebuilds Member.total_loans as the principal sum of
// the member's loans past approval.
func (s *AggregationService) RecomputeMemberLoans(ctx context.Context, tx *gorm.DB, memberID uint) error {
	loanRepo := repositories.NewLoanRepository(tx)
	memberRepo := repositories.NewMemberRepository(tx)

	total, err := loanRepo.SumApprovedByMember(ctx, memberID)
	if err != nil {
		return fmt.Errorf("%w: summing loans: %v", domain.ErrConsistency, err)
	}

	member, err := memberRepo.GetByID(ctx, memberID)
	if err != nil {
		return fmt.Errorf("%w: loading member: %v", domain.ErrConsistency, err)
	}

	member.TotalLoans = total
	if err := memberRepo.Update(ctx, member); err != nil {
		return fmt.Errorf("%w: persisting total_loans: %v", domain.ErrConsistency, err)
	}
	return nil
}

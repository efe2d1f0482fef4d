package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"alfa-sacco/internal/adapters/persistence/models"
	"alfa-sacco/internal/adapters/persistence/repositories"
	"alfa-sacco/internal/core/domain"
	"alfa-sacco/internal/core/ledger"
	"alfa-sacco/internal/core/policy"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SavingsService records savings transactions and keeps the member's derived
// balances in sync through the aggregation service. Every mutation and its
// recompute run in one database transaction.
type SavingsService struct {
	db          *gorm.DB
	savingsRepo *repositories.SavingsRepository
	memberRepo  *repositories.MemberRepository
	aggregation *AggregationService
}

// NewSavingsService creates a new savings service
func NewSavingsService(db *gorm.DB, savingsRepo *repositories.SavingsRepository, memberRepo *repositories.MemberRepository, aggregation *AggregationService) *SavingsService {
	return &SavingsService{
		db:          db,
		savingsRepo: savingsRepo,
		memberRepo:  memberRepo,
		aggregation: aggregation,
	}
}

// RecordTransactionInput represents savings transaction input
type RecordTransactionInput struct {
	MemberID        uint            `json:"member_id"`
	Amount          decimal.Decimal `json:"amount"`
	Type            string          `json:"type"`
	TransactionDate *time.Time      `json:"transaction_date,omitempty"`
	ReceiptNo       string          `json:"receipt_no,omitempty"`
	Description     string          `json:"description,omitempty"`
}

// RecordTransaction validates and records a savings transaction, then
// recomputes the member's running balances in the same database transaction.
func (s *SavingsService) RecordTransaction(ctx context.Context, actor policy.Actor, input *RecordTransactionInput) (*models.SavingsTransaction, error) {
	if err := policy.Authorize(actor, policy.ActionRecordSavings, policy.OwnResource(input.MemberID)); err != nil {
		return nil, err
	}

	if !input.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be greater than 0", domain.ErrValidation)
	}
	txType := strings.ToLower(input.Type)
	if txType != domain.TxTypeDeposit && txType != domain.TxTypeWithdrawal {
		return nil, fmt.Errorf("%w: type must be deposit or withdrawal", domain.ErrValidation)
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

	if txType == domain.TxTypeWithdrawal && input.Amount.GreaterThan(member.TotalSavings) {
		return nil, fmt.Errorf("%w: balance is %s", domain.ErrInsufficientSavings, member.TotalSavings)
	}

	txDate := time.Now()
	if input.TransactionDate != nil {
		txDate = *input.TransactionDate
	}

	receiptNo := input.ReceiptNo
	if receiptNo == "" {
		receiptNo = newReceiptNo()
	}

	transaction := &models.SavingsTransaction{
		MemberID:        input.MemberID,
		Amount:          input.Amount,
		Type:            txType,
		TransactionDate: txDate,
		ReceiptNo:       receiptNo,
		Description:     input.Description,
		RecordedBy:      actor.UserID,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := repositories.NewSavingsRepository(tx).Create(ctx, transaction); err != nil {
			return err
		}
		return s.aggregation.RecomputeMemberSavings(ctx, tx, input.MemberID)
	})
	if err != nil {
		return nil, err
	}

	// Reload so the caller sees the balance_after written by the recompute.
	return s.savingsRepo.GetByID(ctx, transaction.ID)
}

// UpdateTransactionInput represents savings transaction update input
type UpdateTransactionInput struct {
	Amount          *decimal.Decimal `json:"amount"`
	Type            *string          `json:"type"`
	TransactionDate *time.Time       `json:"transaction_date"`
	Description     *string          `json:"description"`
}

// UpdateTransaction edits a historical transaction (admin tooling) and
// replays the member's ledger so every snapshot downstream of the edit is
// corrected.
func (s *SavingsService) UpdateTransaction(ctx context.Context, actor policy.Actor, id uint, input *UpdateTransactionInput) (*models.SavingsTransaction, error) {
	transaction, err := s.getTransaction(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := policy.Authorize(actor, policy.ActionUpdateSavings, policy.OwnResource(transaction.MemberID)); err != nil {
		return nil, err
	}

	if input.Amount != nil {
		if !input.Amount.IsPositive() {
			return nil, fmt.Errorf("%w: amount must be greater than 0", domain.ErrValidation)
		}
		transaction.Amount = *input.Amount
	}
	if input.Type != nil {
		txType := strings.ToLower(*input.Type)
		if txType != domain.TxTypeDeposit && txType != domain.TxTypeWithdrawal {
			return nil, fmt.Errorf("%w: type must be deposit or withdrawal", domain.ErrValidation)
		}
		transaction.Type = txType
	}
	if input.TransactionDate != nil {
		transaction.TransactionDate = *input.TransactionDate
	}
	if input.Description != nil {
		transaction.Description = *input.Description
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := repositories.NewSavingsRepository(tx).Update(ctx, transaction); err != nil {
			return err
		}
		return s.aggregation.RecomputeMemberSavings(ctx, tx, transaction.MemberID)
	})
	if err != nil {
		return nil, err
	}

	return s.savingsRepo.GetByID(ctx, id)
}

// DeleteTransaction removes a historical transaction (admin tooling) and
// recomputes the member's balances from the remaining records.
func (s *SavingsService) DeleteTransaction(ctx context.Context, actor policy.Actor, id uint) error {
	transaction, err := s.getTransaction(ctx, id)
	if err != nil {
		return err
	}

	if err := policy.Authorize(actor, policy.ActionDeleteSavings, policy.OwnResource(transaction.MemberID)); err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := repositories.NewSavingsRepository(tx).Delete(ctx, id); err != nil {
			return err
		}
		return s.aggregation.RecomputeMemberSavings(ctx, tx, transaction.MemberID)
	})
}

// StatementEntry represents one line of a member statement
type StatementEntry struct {
	Transaction *models.SavingsTransaction `json:"transaction"`
	Balance     decimal.Decimal            `json:"balance"`
}

// GetStatement returns a member's transactions in replay order with running
// balances, plus the final total.
func (s *SavingsService) GetStatement(ctx context.Context, memberID uint) ([]StatementEntry, decimal.Decimal, error) {
	if _, err := s.memberRepo.GetByID(ctx, memberID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, decimal.Zero, domain.ErrMemberNotFound
		}
		return nil, decimal.Zero, err
	}

	rows, err := s.savingsRepo.ListByMember(ctx, memberID)
	if err != nil {
		return nil, decimal.Zero, err
	}

	history := make([]domain.SavingsTransaction, len(rows))
	byID := make(map[uint]*models.SavingsTransaction, len(rows))
	for i, row := range rows {
		history[i] = row.ToDomain()
		byID[row.ID] = row
	}

	entries := ledger.Replay(history)
	statement := make([]StatementEntry, len(entries))
	for i, entry := range entries {
		statement[i] = StatementEntry{
			Transaction: byID[entry.Transaction.ID],
			Balance:     entry.Balance,
		}
	}

	total := decimal.Zero
	if len(entries) > 0 {
		total = entries[len(entries)-1].Balance
	}
	return statement, total, nil
}

// ListTransactionsInput represents list transactions input
type ListTransactionsInput struct {
	Page  int
	Limit int
}

// ListTransactionsOutput represents list transactions output
type ListTransactionsOutput struct {
	Transactions []*models.SavingsTransaction `json:"transactions"`
	Total        int64                        `json:"total"`
	Page         int                          `json:"page"`
	Limit        int                          `json:"limit"`
	TotalPages   int                          `json:"total_pages"`
}

// ListTransactions lists savings transactions across members, newest first
func (s *SavingsService) ListTransactions(ctx context.Context, input *ListTransactionsInput) (*ListTransactionsOutput, error) {
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
	transactions, total, err := s.savingsRepo.List(ctx, offset, input.Limit)
	if err != nil {
		return nil, err
	}

	totalPages := int(total) / input.Limit
	if int(total)%input.Limit > 0 {
		totalPages++
	}

	return &ListTransactionsOutput{
		Transactions: transactions,
		Total:        total,
		Page:         input.Page,
		Limit:        input.Limit,
		TotalPages:   totalPages,
	}, nil
}

func (s *SavingsService) getTransaction(ctx context.Context, id uint) (*models.SavingsTransaction, error) {
	transaction, err := s.savingsRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}
	return transaction, nil
}

// newReceiptNo generates a receipt number when the recorder does not supply
// one from a paper receipt book.
func newReceiptNo() string {
	return "RCP-" + strings.ToUpper(uuid.New().String()[:8])
}

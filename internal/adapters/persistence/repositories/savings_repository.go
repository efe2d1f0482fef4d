package repositories

import (
	"context"

	"alfa-sacco/internal/adapters/persistence/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SavingsRepository handles savings transaction data access
type SavingsRepository struct {
	db *gorm.DB
}

// NewSavingsRepository creates a new savings repository
func NewSavingsRepository(db *gorm.DB) *SavingsRepository {
	return &SavingsRepository{db: db}
}

// Create creates a new savings transaction
func (r *SavingsRepository) Create(ctx context.Context, tx *models.SavingsTransaction) error {
	return r.db.WithContext(ctx).Create(tx).Error
}

// GetByID gets a savings transaction by ID
func (r *SavingsRepository) GetByID(ctx context.Context, id uint) (*models.SavingsTransaction, error) {
	var tx models.SavingsTransaction
	err := r.db.WithContext(ctx).First(&tx, id).Error
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

// ListByMember returns a member's full transaction history in replay order:
// transaction date, then creation time, then id.
func (r *SavingsRepository) ListByMember(ctx context.Context, memberID uint) ([]*models.SavingsTransaction, error) {
	var txs []*models.SavingsTransaction
	err := r.db.WithContext(ctx).
		Where("member_id = ?", memberID).
		Order("transaction_date ASC, created_at ASC, id ASC").
		Find(&txs).Error
	return txs, err
}

// List lists savings transactions with pagination, newest first
func (r *SavingsRepository) List(ctx context.Context, offset, limit int) ([]*models.SavingsTransaction, int64, error) {
	var txs []*models.SavingsTransaction
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.SavingsTransaction{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Preload("Member").
		Order("transaction_date DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&txs).Error

	return txs, total, err
}

// Update updates a savings transaction
func (r *SavingsRepository) Update(ctx context.Context, tx *models.SavingsTransaction) error {
	return r.db.WithContext(ctx).Save(tx).Error
}

// UpdateBalanceAfter rewrites the derived running-balance snapshot of one row
func (r *SavingsRepository) UpdateBalanceAfter(ctx context.Context, id uint, balance decimal.Decimal) error {
	return r.db.WithContext(ctx).
		Model(&models.SavingsTransaction{}).
		Where("id = ?", id).
		Update("balance_after", balance).Error
}

// Delete hard deletes a savings transaction (admin tooling)
func (r *SavingsRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.SavingsTransaction{}, id).Error
}

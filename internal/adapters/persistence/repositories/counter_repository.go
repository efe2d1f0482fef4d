package repositories

import (
	"context"

	"alfa-sacco/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// CounterRepository allocates sequential numbers for member and loan
// numbering. Allocation is a single UPDATE against the counter row, so two
// transactions incrementing the same counter serialize on the row lock and
// can never hand out the same value.
type CounterRepository struct {
	db *gorm.DB
}

// NewCounterRepository creates a new counter repository
func NewCounterRepository(db *gorm.DB) *CounterRepository {
	return &CounterRepository{db: db}
}

// Next increments the named counter and returns its new value. The first
// allocation for a name creates the row.
func (r *CounterRepository) Next(ctx context.Context, name string) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Counter{}).
		Where("name = ?", name).
		UpdateColumn("value", gorm.Expr("value + ?", 1))
	if res.Error != nil {
		return 0, res.Error
	}

	if res.RowsAffected == 0 {
		counter := &models.Counter{Name: name, Value: 1}
		if err := r.db.WithContext(ctx).Create(counter).Error; err != nil {
			return 0, err
		}
		return 1, nil
	}

	var counter models.Counter
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&counter).Error; err != nil {
		return 0, err
	}
	return counter.Value, nil
}

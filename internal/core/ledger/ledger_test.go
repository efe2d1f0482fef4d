package ledger

import (
	"testing"
	"time"

	"alfa-sacco/internal/core/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func tx(id uint, txType string, amount string, date time.Time, created time.Time) domain.SavingsTransaction {
	return domain.SavingsTransaction{
		ID:              id,
		Type:            txType,
		Amount:          decimal.RequireFromString(amount),
		TransactionDate: date,
		CreatedAt:       created,
	}
}

func TestReplay(t *testing.T) {
	day1 := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name             string
		transactions     []domain.SavingsTransaction
		expectedBalances []string
	}{
		{
			name:             "empty history yields no entries",
			transactions:     nil,
			expectedBalances: []string{},
		},
		{
			name: "deposits add and withdrawals subtract",
			transactions: []domain.SavingsTransaction{
				tx(1, domain.TxTypeDeposit, "1000", day1, day1),
				tx(2, domain.TxTypeDeposit, "500", day2, day2),
				tx(3, domain.TxTypeWithdrawal, "300", day2.AddDate(0, 0, 1), day2),
			},
			expectedBalances: []string{"1000", "1500", "1200"},
		},
		{
			name: "out of order input is replayed chronologically",
			transactions: []domain.SavingsTransaction{
				tx(2, domain.TxTypeWithdrawal, "200", day2, day2),
				tx(1, domain.TxTypeDeposit, "1000", day1, day1),
			},
			expectedBalances: []string{"1000", "800"},
		},
		{
			name: "same date ties break on creation time then id",
			transactions: []domain.SavingsTransaction{
				tx(3, domain.TxTypeDeposit, "50", day1, day1.Add(2*time.Hour)),
				tx(1, domain.TxTypeDeposit, "100", day1, day1.Add(time.Hour)),
				tx(2, domain.TxTypeWithdrawal, "30", day1, day1.Add(time.Hour)),
			},
			expectedBalances: []string{"100", "70", "120"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries := Replay(tt.transactions)
			assert.Len(t, entries, len(tt.expectedBalances))
			for i, want := range tt.expectedBalances {
				assert.True(t, entries[i].Balance.Equal(decimal.RequireFromString(want)),
					"entry %d: expected %s, got %s", i, want, entries[i].Balance)
			}
		})
	}
}

func TestTotal(t *testing.T) {
	day := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	assert.True(t, Total(nil).IsZero())

	total := Total([]domain.SavingsTransaction{
		tx(1, domain.TxTypeDeposit, "2500.50", day, day),
		tx(2, domain.TxTypeWithdrawal, "1000.25", day.AddDate(0, 0, 5), day),
		tx(3, domain.TxTypeDeposit, "100", day.AddDate(0, 1, 0), day),
	})
	assert.True(t, total.Equal(decimal.RequireFromString("1600.25")), "got %s", total)
}

func TestSignedAmount(t *testing.T) {
	day := time.Now()
	deposit := tx(1, domain.TxTypeDeposit, "400", day, day)
	withdrawal := tx(2, domain.TxTypeWithdrawal, "400", day, day)

	assert.True(t, SignedAmount(deposit).Equal(decimal.NewFromInt(400)))
	assert.True(t, SignedAmount(withdrawal).Equal(decimal.NewFromInt(-400)))
}

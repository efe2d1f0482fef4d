// Package ledger computes running savings balances by replaying a member's
// full transaction history. All derived balance fields in the system come from
// a replay of the source records, never from incremental patches, so repeated
// recomputation always converges to the same result.
package ledger

import (
	"sort"

	"alfa-sacco/internal/core/domain"

	"github.com/shopspring/decimal"
)

// Entry pairs a transaction with the running balance immediately after it.
type Entry struct {
	Transaction domain.SavingsTransaction
	Balance     decimal.Decimal
}

// Replay orders transactions chronologically and computes the balance after
// each one. Deposits add, withdrawals subtract. Ties on transaction date are
// broken by creation time, then by id, so the replay is deterministic.
func Replay(transactions []domain.SavingsTransaction) []Entry {
	ordered := make([]domain.SavingsTransaction, len(transactions))
	copy(ordered, transactions)

	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if !a.TransactionDate.Equal(b.TransactionDate) {
			return a.TransactionDate.Before(b.TransactionDate)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})

	entries := make([]Entry, len(ordered))
	balance := decimal.Zero
	for i, tx := range ordered {
		balance = balance.Add(SignedAmount(tx))
		entries[i] = Entry{Transaction: tx, Balance: balance}
	}
	return entries
}

// Total returns the final balance for a transaction set. An empty set yields
// zero.
func Total(transactions []domain.SavingsTransaction) decimal.Decimal {
	entries := Replay(transactions)
	if len(entries) == 0 {
		return decimal.Zero
	}
	return entries[len(entries)-1].Balance
}

// SignedAmount returns the amount with the sign implied by the transaction
// type: positive for deposits, negative for withdrawals.
func SignedAmount(tx domain.SavingsTransaction) decimal.Decimal {
	if tx.Type == domain.TxTypeWithdrawal {
		return tx.Amount.Neg()
	}
	return tx.Amount
}

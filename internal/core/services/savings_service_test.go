package services

import (
	"context"
	"testing"
	"time"

	"alfa-sacco/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordTransactionKeepsMemberTotalInSync(t *testing.T) {
	db := newTestDB(t)
	svc := newSavingsService(db)

	user := createUser(t, db, "alice", domain.RoleMember)
	member := registerMember(t, db, user, "Alice Wanjiru")

	deposit, err := svc.RecordTransaction(context.Background(), staffActor(1), &RecordTransactionInput{
		MemberID: member.ID,
		Amount:   dec("2500.50"),
		Type:     "deposit",
	})
	require.NoError(t, err)
	assert.True(t, deposit.BalanceAfter.Equal(dec("2500.50")), "balance after deposit: %s", deposit.BalanceAfter)
	assert.NotEmpty(t, deposit.ReceiptNo)

	withdrawal, err := svc.RecordTransaction(context.Background(), staffActor(1), &RecordTransactionInput{
		MemberID: member.ID,
		Amount:   dec("1000.25"),
		Type:     "withdrawal",
	})
	require.NoError(t, err)
	assert.True(t, withdrawal.BalanceAfter.Equal(dec("1500.25")), "balance after withdrawal: %s", withdrawal.BalanceAfter)

	got := memberByID(t, db, member.ID)
	assert.True(t, got.TotalSavings.Equal(dec("1500.25")), "member total: %s", got.TotalSavings)
}

func TestRecordTransactionValidation(t *testing.T) {
	db := newTestDB(t)
	svc := newSavingsService(db)

	user := createUser(t, db, "alice", domain.RoleMember)
	member := registerMember(t, db, user, "Alice Wanjiru")

	tests := []struct {
		name    string
		input   *RecordTransactionInput
		wantErr error
	}{
		{
			name:    "zero amount",
			input:   &RecordTransactionInput{MemberID: member.ID, Amount: dec("0"), Type: "deposit"},
			wantErr: domain.ErrValidation,
		},
		{
			name:    "negative amount",
			input:   &RecordTransactionInput{MemberID: member.ID, Amount: dec("-50"), Type: "deposit"},
			wantErr: domain.ErrValidation,
		},
		{
			name:    "unknown type",
			input:   &RecordTransactionInput{MemberID: member.ID, Amount: dec("50"), Type: "transfer"},
			wantErr: domain.ErrValidation,
		},
		{
			name:    "overdraw",
			input:   &RecordTransactionInput{MemberID: member.ID, Amount: dec("10"), Type: "withdrawal"},
			wantErr: domain.ErrInsufficientSavings,
		},
		{
			name:    "unknown member",
			input:   &RecordTransactionInput{MemberID: 9999, Amount: dec("50"), Type: "deposit"},
			wantErr: domain.ErrMemberNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.RecordTransaction(context.Background(), staffActor(1), tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRecordTransactionInactiveMember(t *testing.T) {
	db := newTestDB(t)
	svc := newSavingsService(db)

	user := createUser(t, db, "alice", domain.RoleMember)
	member := registerMember(t, db, user, "Alice Wanjiru")
	require.NoError(t, db.Model(member).Update("status", string(domain.MemberSuspended)).Error)

	_, err := svc.RecordTransaction(context.Background(), staffActor(1), &RecordTransactionInput{
		MemberID: member.ID,
		Amount:   dec("100"),
		Type:     "deposit",
	})
	assert.ErrorIs(t, err, domain.ErrMemberNotActive)
}

func TestMemberRecordsOwnDepositOnly(t *testing.T) {
	db := newTestDB(t)
	svc := newSavingsService(db)

	aliceUser := createUser(t, db, "alice", domain.RoleMember)
	alice := registerMember(t, db, aliceUser, "Alice Wanjiru")
	bobUser := createUser(t, db, "bob", domain.RoleMember)
	bob := registerMember(t, db, bobUser, "Bob Otieno")

	// Alice deposits to her own account
	_, err := svc.RecordTransaction(context.Background(), memberActor(aliceUser, alice), &RecordTransactionInput{
		MemberID: alice.ID,
		Amount:   dec("100"),
		Type:     "deposit",
	})
	require.NoError(t, err)

	// Alice cannot deposit to Bob's account
	_, err = svc.RecordTransaction(context.Background(), memberActor(aliceUser, alice), &RecordTransactionInput{
		MemberID: bob.ID,
		Amount:   dec("100"),
		Type:     "deposit",
	})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestUpdateTransactionReplaysBalances(t *testing.T) {
	db := newTestDB(t)
	svc := newSavingsService(db)

	user := createUser(t, db, "alice", domain.RoleMember)
	member := registerMember(t, db, user, "Alice Wanjiru")

	first, err := svc.RecordTransaction(context.Background(), staffActor(1), &RecordTransactionInput{
		MemberID: member.ID,
		Amount:   dec("1000"),
		Type:     "deposit",
	})
	require.NoError(t, err)

	_, err = svc.RecordTransaction(context.Background(), staffActor(1), &RecordTransactionInput{
		MemberID: member.ID,
		Amount:   dec("500"),
		Type:     "deposit",
	})
	require.NoError(t, err)

	// Correct the first deposit; every downstream snapshot must move with it.
	amount := dec("800")
	_, err = svc.UpdateTransaction(context.Background(), staffActor(1), first.ID, &UpdateTransactionInput{Amount: &amount})
	require.NoError(t, err)

	entries, total, err := svc.GetStatement(context.Background(), member.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.True(t, entries[0].Balance.Equal(dec("800")))
	assert.True(t, entries[1].Balance.Equal(dec("1300")))
	assert.True(t, total.Equal(dec("1300")))

	got := memberByID(t, db, member.ID)
	assert.True(t, got.TotalSavings.Equal(dec("1300")), "member total: %s", got.TotalSavings)
}

func TestDeleteTransactionRecomputes(t *testing.T) {
	db := newTestDB(t)
	svc := newSavingsService(db)

	user := createUser(t, db, "alice", domain.RoleMember)
	member := registerMember(t, db, user, "Alice Wanjiru")

	_, err := svc.RecordTransaction(context.Background(), staffActor(1), &RecordTransactionInput{
		MemberID: member.ID,
		Amount:   dec("1000"),
		Type:     "deposit",
	})
	require.NoError(t, err)

	second, err := svc.RecordTransaction(context.Background(), staffActor(1), &RecordTransactionInput{
		MemberID: member.ID,
		Amount:   dec("400"),
		Type:     "deposit",
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteTransaction(context.Background(), staffActor(1), second.ID))

	got := memberByID(t, db, member.ID)
	assert.True(t, got.TotalSavings.Equal(dec("1000")), "member total: %s", got.TotalSavings)

	entries, _, err := svc.GetStatement(context.Background(), member.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestUpdateTransactionRequiresStaff(t *testing.T) {
	db := newTestDB(t)
	svc := newSavingsService(db)

	user := createUser(t, db, "alice", domain.RoleMember)
	member := registerMember(t, db, user, "Alice Wanjiru")

	tx, err := svc.RecordTransaction(context.Background(), staffActor(1), &RecordTransactionInput{
		MemberID: member.ID,
		Amount:   dec("1000"),
		Type:     "deposit",
	})
	require.NoError(t, err)

	amount := dec("900")
	_, err = svc.UpdateTransaction(context.Background(), memberActor(user, member), tx.ID, &UpdateTransactionInput{Amount: &amount})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	err = svc.DeleteTransaction(context.Background(), memberActor(user, member), tx.ID)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestStatementOrdersByTransactionDate(t *testing.T) {
	db := newTestDB(t)
	svc := newSavingsService(db)

	user := createUser(t, db, "alice", domain.RoleMember)
	member := registerMember(t, db, user, "Alice Wanjiru")

	later := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	earlier := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

	// Recorded out of order on purpose.
	_, err := svc.RecordTransaction(context.Background(), staffActor(1), &RecordTransactionInput{
		MemberID:        member.ID,
		Amount:          dec("200"),
		Type:            "deposit",
		TransactionDate: &later,
	})
	require.NoError(t, err)

	_, err = svc.RecordTransaction(context.Background(), staffActor(1), &RecordTransactionInput{
		MemberID:        member.ID,
		Amount:          dec("500"),
		Type:            "deposit",
		TransactionDate: &earlier,
	})
	require.NoError(t, err)

	entries, total, err := svc.GetStatement(context.Background(), member.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.True(t, entries[0].Transaction.Amount.Equal(dec("500")))
	assert.True(t, entries[0].Balance.Equal(dec("500")))
	assert.True(t, entries[1].Balance.Equal(dec("700")))
	assert.True(t, total.Equal(dec("700")))
}

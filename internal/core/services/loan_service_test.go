package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"alfa-sacco/internal/adapters/persistence/models"
	"alfa-sacco/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func applyLoan(t *testing.T, svc *LoanService, memberID uint, amount, rate string, months int) *models.Loan {
	t.Helper()

	loan, err := svc.Apply(context.Background(), staffActor(1), &ApplyInput{
		MemberID:       memberID,
		Amount:         dec(amount),
		InterestRate:   dec(rate),
		DurationMonths: months,
	})
	require.NoError(t, err)
	return loan
}

func TestApplyAllocatesYearlyLoanNumbers(t *testing.T) {
	db := newTestDB(t)
	svc := newLoanService(db)

	user := createUser(t, db, "alice", domain.RoleMember)
	member := registerMember(t, db, user, "Alice Wanjiru")

	year := time.Now().Year()
	first := applyLoan(t, svc, member.ID, "10000", "10", 12)
	assert.Equal(t, fmt.Sprintf("LN%d001", year), first.LoanNumber)
	assert.Equal(t, string(domain.LoanPending), first.Status)

	second := applyLoan(t, svc, member.ID, "5000", "10", 6)
	assert.Equal(t, fmt.Sprintf("LN%d002", year), second.LoanNumber)
}

func TestApplyValidation(t *testing.T) {
	db := newTestDB(t)
	svc := newLoanService(db)

	user := createUser(t, db, "alice", domain.RoleMember)
	member := registerMember(t, db, user, "Alice Wanjiru")

	_, err := svc.Apply(context.Background(), staffActor(1), &ApplyInput{
		MemberID: member.ID, Amount: dec("0"), InterestRate: dec("10"), DurationMonths: 12,
	})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.Apply(context.Background(), staffActor(1), &ApplyInput{
		MemberID: member.ID, Amount: dec("1000"), InterestRate: dec("-1"), DurationMonths: 12,
	})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.Apply(context.Background(), staffActor(1), &ApplyInput{
		MemberID: member.ID, Amount: dec("1000"), InterestRate: dec("10"), DurationMonths: 0,
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestApproveComputesTerms(t *testing.T) {
	db := newTestDB(t)
	svc := newLoanService(db)

	user := createUser(t, db, "alice", domain.RoleMember)
	member := registerMember(t, db, user, "Alice Wanjiru")

	loan := applyLoan(t, svc, member.ID, "10000", "10", 12)

	approved, err := svc.Approve(context.Background(), staffActor(7), loan.ID)
	require.NoError(t, err)

	assert.Equal(t, string(domain.LoanApproved), approved.Status)
	assert.True(t, approved.TotalAmountDue.Equal(dec("11000")), "total due: %s", approved.TotalAmountDue)
	assert.True(t, approved.Balance.Equal(dec("11000")))
	assert.True(t, approved.AmountPaid.IsZero())
	require.NotNil(t, approved.ApprovedBy)
	assert.Equal(t, uint(7), *approved.ApprovedBy)
	require.NotNil(t, approved.ApprovalDate)
	require.NotNil(t, approved.DueDate)
	assert.WithinDuration(t, approved.ApprovalDate.AddDate(0, 12, 0), *approved.DueDate, time.Second)

	got := memberByID(t, db, member.ID)
	assert.True(t, got.TotalLoans.Equal(dec("10000")), "member loans: %s", got.TotalLoans)
}

func TestApproveIsNotRepeatable(t *testing.T) {
	db := newTestDB(t)
	svc := newLoanService(db)

	user := createUser(t, db, "alice", domain.RoleMember)
	member := registerMember(t, db, user, "Alice Wanjiru")

	loan := applyLoan(t, svc, member.ID, "10000", "10", 12)

	approved, err := svc.Approve(context.Background(), staffActor(1), loan.ID)
	require.NoError(t, err)

	_, err = svc.Approve(context.Background(), staffActor(1), loan.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	// Terms unchanged by the failed attempt
	got, err := svc.GetByID(context.Background(), loan.ID)
	require.NoError(t, err)
	assert.True(t, got.TotalAmountDue.Equal(approved.TotalAmountDue))
	require.NotNil(t, got.DueDate)
	assert.True(t, got.DueDate.Equal(*approved.DueDate))
}

func TestRejectOnlyPendingLoans(t *testing.T) {
	db := newTestDB(t)
	svc := newLoanService(db)

	user := createUser(t, db, "alice", domain.RoleMember)
	member := registerMember(t, db, user, "Alice Wanjiru")

	loan := applyLoan(t, svc, member.ID, "10000", "10", 12)

	rejected, err := svc.Reject(context.Background(), staffActor(1), loan.ID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.LoanRejected), rejected.Status)

	_, err = svc.Reject(context.Background(), staffActor(1), loan.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestDisburseRequiresApproval(t *testing.T) {
	db := newTestDB(t)
	svc := newLoanService(db)

	user := createUser(t, db, "alice", domain.RoleMember)
	member := registerMember(t, db, user, "Alice Wanjiru")

	loan := applyLoan(t, svc, member.ID, "10000", "10", 12)

	_, err := svc.Disburse(context.Background(), staffActor(1), loan.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = svc.Approve(context.Background(), staffActor(1), loan.ID)
	require.NoError(t, err)

	disbursed, err := svc.Disburse(context.Background(), staffActor(1), loan.ID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.LoanDisbursed), disbursed.Status)
	assert.NotNil(t, disbursed.DisbursementDate)
}

func TestPaymentsRecomputeBalance(t *testing.T) {
	db := newTestDB(t)
	svc := newLoanService(db)

	user := createUser(t, db, "alice", domain.RoleMember)
	member := registerMember(t, db, user, "Alice Wanjiru")

	loan := applyLoan(t, svc, member.ID, "10000", "10", 12)
	_, err := svc.Approve(context.Background(), staffActor(1), loan.ID)
	require.NoError(t, err)
	_, err = svc.Disburse(context.Background(), staffActor(1), loan.ID)
	require.NoError(t, err)

	_, err = svc.RecordPayment(context.Background(), staffActor(1), &RecordPaymentInput{LoanID: loan.ID, Amount: dec("4000")})
	require.NoError(t, err)
	_, err = svc.RecordPayment(context.Background(), staffActor(1), &RecordPaymentInput{LoanID: loan.ID, Amount: dec("3000")})
	require.NoError(t, err)

	got, err := svc.GetByID(context.Background(), loan.ID)
	require.NoError(t, err)
	assert.True(t, got.AmountPaid.Equal(dec("7000")), "paid: %s", got.AmountPaid)
	assert.True(t, got.Balance.Equal(dec("4000")), "balance: %s", got.Balance)
	assert.Equal(t, string(domain.LoanDisbursed), got.Status)

	// Final payment settles the loan
	_, err = svc.RecordPayment(context.Background(), staffActor(1), &RecordPaymentInput{LoanID: loan.ID, Amount: dec("4000")})
	require.NoError(t, err)

	got, err = svc.GetByID(context.Background(), loan.ID)
	require.NoError(t, err)
	assert.True(t, got.Balance.IsZero())
	assert.Equal(t, string(domain.LoanCompleted), got.Status)

	// No further payments on a completed loan
	_, err = svc.RecordPayment(context.Background(), staffActor(1), &RecordPaymentInput{LoanID: loan.ID, Amount: dec("1")})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestDeletePaymentReopensLoan(t *testing.T) {
	db := newTestDB(t)
	svc := newLoanService(db)

	user := createUser(t, db, "alice", domain.RoleMember)
	member := registerMember(t, db, user, "Alice Wanjiru")

	loan := applyLoan(t, svc, member.ID, "10000", "10", 12)
	_, err := svc.Approve(context.Background(), staffActor(1), loan.ID)
	require.NoError(t, err)
	_, err = svc.Disburse(context.Background(), staffActor(1), loan.ID)
	require.NoError(t, err)

	_, err = svc.RecordPayment(context.Background(), staffActor(1), &RecordPaymentInput{LoanID: loan.ID, Amount: dec("7000")})
	require.NoError(t, err)
	payment, err := svc.RecordPayment(context.Background(), staffActor(1), &RecordPaymentInput{LoanID: loan.ID, Amount: dec("4000")})
	require.NoError(t, err)

	got, err := svc.GetByID(context.Background(), loan.ID)
	require.NoError(t, err)
	require.Equal(t, string(domain.LoanCompleted), got.Status)

	require.NoError(t, svc.DeletePayment(context.Background(), staffActor(1), payment.ID))

	got, err = svc.GetByID(context.Background(), loan.ID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.LoanDisbursed), got.Status)
	assert.True(t, got.AmountPaid.Equal(dec("7000")), "paid: %s", got.AmountPaid)
	assert.True(t, got.Balance.Equal(dec("4000")), "balance: %s", got.Balance)
}

func TestMemberCannotManageLoans(t *testing.T) {
	db := newTestDB(t)
	svc := newLoanService(db)

	user := createUser(t, db, "alice", domain.RoleMember)
	member := registerMember(t, db, user, "Alice Wanjiru")
	actor := memberActor(user, member)

	loan := applyLoan(t, svc, member.ID, "10000", "10", 12)

	_, err := svc.Approve(context.Background(), actor, loan.ID)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	// Even against their own loan, members cannot record payments
	_, err = svc.RecordPayment(context.Background(), actor, &RecordPaymentInput{LoanID: loan.ID, Amount: dec("100")})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestMemberAppliesForOwnLoanOnly(t *testing.T) {
	db := newTestDB(t)
	svc := newLoanService(db)

	aliceUser := createUser(t, db, "alice", domain.RoleMember)
	alice := registerMember(t, db, aliceUser, "Alice Wanjiru")
	bobUser := createUser(t, db, "bob", domain.RoleMember)
	bob := registerMember(t, db, bobUser, "Bob Otieno")

	_, err := svc.Apply(context.Background(), memberActor(aliceUser, alice), &ApplyInput{
		MemberID: alice.ID, Amount: dec("1000"), InterestRate: dec("10"), DurationMonths: 6,
	})
	require.NoError(t, err)

	_, err = svc.Apply(context.Background(), memberActor(aliceUser, alice), &ApplyInput{
		MemberID: bob.ID, Amount: dec("1000"), InterestRate: dec("10"), DurationMonths: 6,
	})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestDeleteLoanRecomputesMemberTotal(t *testing.T) {
	db := newTestDB(t)
	svc := newLoanService(db)

	user := createUser(t, db, "alice", domain.RoleMember)
	member := registerMember(t, db, user, "Alice Wanjiru")

	kept := applyLoan(t, svc, member.ID, "10000", "10", 12)
	_, err := svc.Approve(context.Background(), staffActor(1), kept.ID)
	require.NoError(t, err)

	dropped := applyLoan(t, svc, member.ID, "5000", "10", 6)
	_, err = svc.Approve(context.Background(), staffActor(1), dropped.ID)
	require.NoError(t, err)

	got := memberByID(t, db, member.ID)
	require.True(t, got.TotalLoans.Equal(dec("15000")), "member loans: %s", got.TotalLoans)

	require.NoError(t, svc.Delete(context.Background(), staffActor(1), dropped.ID))

	got = memberByID(t, db, member.ID)
	assert.True(t, got.TotalLoans.Equal(dec("10000")), "member loans: %s", got.TotalLoans)

	_, err = svc.GetByID(context.Background(), dropped.ID)
	assert.ErrorIs(t, err, domain.ErrLoanNotFound)
}

func TestMarkOverdueLoans(t *testing.T) {
	db := newTestDB(t)
	svc := newLoanService(db)

	user := createUser(t, db, "alice", domain.RoleMember)
	member := registerMember(t, db, user, "Alice Wanjiru")

	loan := applyLoan(t, svc, member.ID, "10000", "10", 1)
	_, err := svc.Approve(context.Background(), staffActor(1), loan.ID)
	require.NoError(t, err)

	settled := applyLoan(t, svc, member.ID, "2000", "0", 1)
	_, err = svc.Approve(context.Background(), staffActor(1), settled.ID)
	require.NoError(t, err)
	_, err = svc.RecordPayment(context.Background(), staffActor(1), &RecordPaymentInput{LoanID: settled.ID, Amount: dec("2000")})
	require.NoError(t, err)

	// Not yet due
	marked, err := svc.MarkOverdueLoans(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, 0, marked)

	// Past the due date only the unsettled loan defaults
	marked, err = svc.MarkOverdueLoans(context.Background(), time.Now().AddDate(0, 2, 0))
	require.NoError(t, err)
	assert.Equal(t, 1, marked)

	got, err := svc.GetByID(context.Background(), loan.ID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.LoanDefaulted), got.Status)

	got, err = svc.GetByID(context.Background(), settled.ID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.LoanCompleted), got.Status)
}

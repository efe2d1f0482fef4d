package services

import (
	"context"
	"database/sql"
	"time"

	"alfa-sacco/internal/core/domain"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DashboardService handles dashboard operations
type DashboardService struct {
	db *gorm.DB
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{db: db}
}

// ============================================================
// Admin Dashboard
// ============================================================

// AdminDashboardData represents admin dashboard data
type AdminDashboardData struct {
	// Member Statistics
	TotalMembers     int64 `json:"total_members"`
	ActiveMembers    int64 `json:"active_members"`
	InactiveMembers  int64 `json:"inactive_members"`
	SuspendedMembers int64 `json:"suspended_members"`

	// Savings Statistics
	TotalSavings      decimal.Decimal `json:"total_savings"`
	DepositsThisMonth decimal.Decimal `json:"deposits_this_month"`

	// Loan Statistics
	TotalLoans      int64           `json:"total_loans"`
	PendingLoans    int64           `json:"pending_loans"`
	ActiveLoans     int64           `json:"active_loans"`
	DefaultedLoans  int64           `json:"defaulted_loans"`
	LoanedAmount    decimal.Decimal `json:"loaned_amount"`
	OutstandingDebt decimal.Decimal `json:"outstanding_debt"`

	// Recent Activity
	RecentLoans []LoanSummary `json:"recent_loans"`
}

// LoanSummary represents loan summary
type LoanSummary struct {
	ID         uint            `json:"id"`
	LoanNumber string          `json:"loan_number"`
	MemberID   uint            `json:"member_id"`
	Amount     decimal.Decimal `json:"amount"`
	Status     string          `json:"status"`
	CreatedAt  time.Time       `json:"created_at"`
}

// GetAdminDashboard returns admin dashboard data
func (s *DashboardService) GetAdminDashboard(ctx context.Context) (*AdminDashboardData, error) {
	data := &AdminDashboardData{}

	// Member counts by status
	s.db.WithContext(ctx).Table("members").Where("deleted_at IS NULL").Count(&data.TotalMembers)
	s.db.WithContext(ctx).Table("members").Where("status = ? AND deleted_at IS NULL", string(domain.MemberActive)).Count(&data.ActiveMembers)
	s.db.WithContext(ctx).Table("members").Where("status = ? AND deleted_at IS NULL", string(domain.MemberInactive)).Count(&data.InactiveMembers)
	s.db.WithContext(ctx).Table("members").Where("status = ? AND deleted_at IS NULL", string(domain.MemberSuspended)).Count(&data.SuspendedMembers)

	// Savings held across all members
	s.db.WithContext(ctx).Table("members").
		Where("deleted_at IS NULL").
		Select("COALESCE(SUM(total_savings), 0)").
		Scan(&data.TotalSavings)

	startOfMonth := time.Now().AddDate(0, 0, -time.Now().Day()+1).Truncate(24 * time.Hour)
	s.db.WithContext(ctx).Table("savings_transactions").
		Where("type = ? AND transaction_date >= ?", domain.TxTypeDeposit, startOfMonth).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&data.DepositsThisMonth)

	// Loan counts by status
	s.db.WithContext(ctx).Table("loans").Where("deleted_at IS NULL").Count(&data.TotalLoans)
	s.db.WithContext(ctx).Table("loans").Where("status = ? AND deleted_at IS NULL", string(domain.LoanPending)).Count(&data.PendingLoans)
	s.db.WithContext(ctx).Table("loans").
		Where("status IN ? AND deleted_at IS NULL", []string{string(domain.LoanApproved), string(domain.LoanDisbursed)}).
		Count(&data.ActiveLoans)
	s.db.WithContext(ctx).Table("loans").Where("status = ? AND deleted_at IS NULL", string(domain.LoanDefaulted)).Count(&data.DefaultedLoans)

	s.db.WithContext(ctx).Table("loans").
		Where("status NOT IN ? AND deleted_at IS NULL", []string{string(domain.LoanPending), string(domain.LoanRejected)}).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&data.LoanedAmount)

	s.db.WithContext(ctx).Table("loans").
		Where("status IN ? AND deleted_at IS NULL", []string{string(domain.LoanApproved), string(domain.LoanDisbursed), string(domain.LoanDefaulted)}).
		Select("COALESCE(SUM(balance), 0)").
		Scan(&data.OutstandingDebt)

	// Recent loans
	var recent []LoanSummary
	s.db.WithContext(ctx).Table("loans").
		Where("deleted_at IS NULL").
		Select("id, loan_number, member_id, amount, status, created_at").
		Order("created_at DESC").
		Limit(5).
		Scan(&recent)
	data.RecentLoans = recent

	return data, nil
}

// ============================================================
// Member Dashboard
// ============================================================

// MemberDashboardData represents a member's own dashboard data
type MemberDashboardData struct {
	TotalSavings   decimal.Decimal `json:"total_savings"`
	MonthlyTarget  decimal.Decimal `json:"monthly_target"`
	SavedThisMonth decimal.Decimal `json:"saved_this_month"`

	ActiveLoans     int64           `json:"active_loans"`
	OutstandingDebt decimal.Decimal `json:"outstanding_debt"`
	NextDueDate     *time.Time      `json:"next_due_date,omitempty"`
}

// GetMemberDashboard returns dashboard data for one member
func (s *DashboardService) GetMemberDashboard(ctx context.Context, memberID uint) (*MemberDashboardData, error) {
	data := &MemberDashboardData{}

	err := s.db.WithContext(ctx).Table("members").
		Where("id = ? AND deleted_at IS NULL", memberID).
		Select("total_savings, monthly_target").
		Row().Scan(&data.TotalSavings, &data.MonthlyTarget)
	if err != nil {
		return nil, domain.ErrMemberNotFound
	}

	startOfMonth := time.Now().AddDate(0, 0, -time.Now().Day()+1).Truncate(24 * time.Hour)
	s.db.WithContext(ctx).Table("savings_transactions").
		Where("member_id = ? AND type = ? AND transaction_date >= ?", memberID, domain.TxTypeDeposit, startOfMonth).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&data.SavedThisMonth)

	active := []string{string(domain.LoanApproved), string(domain.LoanDisbursed), string(domain.LoanDefaulted)}
	s.db.WithContext(ctx).Table("loans").
		Where("member_id = ? AND status IN ? AND deleted_at IS NULL", memberID, active).
		Count(&data.ActiveLoans)

	s.db.WithContext(ctx).Table("loans").
		Where("member_id = ? AND status IN ? AND deleted_at IS NULL", memberID, active).
		Select("COALESCE(SUM(balance), 0)").
		Scan(&data.OutstandingDebt)

	var nextDue sql.NullTime
	s.db.WithContext(ctx).Table("loans").
		Where("member_id = ? AND status IN ? AND due_date IS NOT NULL AND deleted_at IS NULL", memberID,
			[]string{string(domain.LoanApproved), string(domain.LoanDisbursed)}).
		Select("MIN(due_date)").
		Scan(&nextDue)
	if nextDue.Valid {
		data.NextDueDate = &nextDue.Time
	}

	return data, nil
}

package models

import (
	"time"

	"alfa-sacco/internal/core/domain"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ============================================================
// Auth & User Tables
// ============================================================

// User represents users table
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Username  string         `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Email     string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Password  string         `gorm:"size:255;not null" json:"-"`
	Role      string         `gorm:"size:20;default:'MEMBER'" json:"role"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	MemberID  *uint          `gorm:"uniqueIndex" json:"member_id"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// UserResponse DTO
type UserResponse struct {
	ID           uint      `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"is_active"`
	MemberID     *uint     `json:"member_id,omitempty"`
	MemberNumber string    `json:"member_number,omitempty"`
	FullName     string    `json:"full_name,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		IsActive:  u.IsActive,
		MemberID:  u.MemberID,
		CreatedAt: u.CreatedAt,
	}
}

// RefreshToken represents refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
	User      User       `gorm:"foreignKey:UserID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// ============================================================
// Membership Tables
// ============================================================

// Member represents members table. TotalSavings and TotalLoans are derived
// fields kept in sync by the services whenever underlying records change.
type Member struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	MemberNumber  string          `gorm:"uniqueIndex;size:20;not null" json:"member_number"`
	UserID        uint            `gorm:"uniqueIndex;not null" json:"user_id"`
	FullName      string          `gorm:"size:100;not null" json:"full_name"`
	Phone         string          `gorm:"size:20" json:"phone"`
	Status        string          `gorm:"size:20;not null;default:'active'" json:"status"`
	MonthlyTarget decimal.Decimal `gorm:"type:decimal(15,2);default:0" json:"monthly_target"`
	TotalSavings  decimal.Decimal `gorm:"type:decimal(15,2);default:0" json:"total_savings"`
	TotalLoans    decimal.Decimal `gorm:"type:decimal(15,2);default:0" json:"total_loans"`
	JoinDate      time.Time       `gorm:"not null" json:"join_date"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt     gorm.DeletedAt  `gorm:"index" json:"-"`

	// Relations
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (Member) TableName() string {
	return "members"
}

// MemberResponse DTO
type MemberResponse struct {
	ID            uint            `json:"id"`
	MemberNumber  string          `json:"member_number"`
	UserID        uint            `json:"user_id"`
	FullName      string          `json:"full_name"`
	Phone         string          `json:"phone,omitempty"`
	Status        string          `json:"status"`
	MonthlyTarget decimal.Decimal `json:"monthly_target"`
	TotalSavings  decimal.Decimal `json:"total_savings"`
	TotalLoans    decimal.Decimal `json:"total_loans"`
	JoinDate      time.Time       `json:"join_date"`
	CreatedAt     time.Time       `json:"created_at"`
}

func (m *Member) ToResponse() *MemberResponse {
	return &MemberResponse{
		ID:            m.ID,
		MemberNumber:  m.MemberNumber,
		UserID:        m.UserID,
		FullName:      m.FullName,
		Phone:         m.Phone,
		Status:        m.Status,
		MonthlyTarget: m.MonthlyTarget,
		TotalSavings:  m.TotalSavings,
		TotalLoans:    m.TotalLoans,
		JoinDate:      m.JoinDate,
		CreatedAt:     m.CreatedAt,
	}
}

// SavingsTransaction represents savings_transactions table. Immutable in the
// normal flow; BalanceAfter is rewritten on every recompute of the member's
// ledger so snapshots always match a chronological replay.
type SavingsTransaction struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	MemberID        uint            `gorm:"not null;index" json:"member_id"`
	Amount          decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	Type            string          `gorm:"size:20;not null" json:"type"`
	TransactionDate time.Time       `gorm:"not null;index" json:"transaction_date"`
	ReceiptNo       string          `gorm:"size:50" json:"receipt_no,omitempty"`
	Description     string          `gorm:"type:text" json:"description,omitempty"`
	BalanceAfter    decimal.Decimal `gorm:"type:decimal(15,2)" json:"balance_after"`
	RecordedBy      uint            `gorm:"not null" json:"recorded_by"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`

	// Relations
	Member   *Member `gorm:"foreignKey:MemberID" json:"member,omitempty"`
	Recorder *User   `gorm:"foreignKey:RecordedBy" json:"recorder,omitempty"`
}

func (SavingsTransaction) TableName() string {
	return "savings_transactions"
}

// ToDomain maps the row to its domain representation for ledger replay
func (t *SavingsTransaction) ToDomain() domain.SavingsTransaction {
	return domain.SavingsTransaction{
		ID:              t.ID,
		MemberID:        t.MemberID,
		Amount:          t.Amount,
		Type:            t.Type,
		TransactionDate: t.TransactionDate,
		ReceiptNo:       t.ReceiptNo,
		Description:     t.Description,
		BalanceAfter:    t.BalanceAfter,
		RecordedBy:      t.RecordedBy,
		CreatedAt:       t.CreatedAt,
	}
}

// ============================================================
// Loan Tables
// ============================================================

// Loan represents loans table. TotalAmountDue is set exactly once at
// approval; AmountPaid and Balance are recomputed from payments on every
// payment write.
type Loan struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	LoanNumber       string          `gorm:"uniqueIndex;size:20;not null" json:"loan_number"`
	MemberID         uint            `gorm:"not null;index" json:"member_id"`
	Amount           decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	InterestRate     decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"interest_rate"`
	DurationMonths   int             `gorm:"not null" json:"duration_months"`
	Purpose          string          `gorm:"type:text" json:"purpose,omitempty"`
	Status           string          `gorm:"size:20;not null;default:'pending';index" json:"status"`
	ApplicationDate  time.Time       `gorm:"not null" json:"application_date"`
	ApprovalDate     *time.Time      `json:"approval_date"`
	DisbursementDate *time.Time      `json:"disbursement_date"`
	DueDate          *time.Time      `json:"due_date"`
	TotalAmountDue   decimal.Decimal `gorm:"type:decimal(15,2);default:0" json:"total_amount_due"`
	AmountPaid       decimal.Decimal `gorm:"type:decimal(15,2);default:0" json:"amount_paid"`
	Balance          decimal.Decimal `gorm:"type:decimal(15,2);default:0" json:"balance"`
	ApprovedBy       *uint           `json:"approved_by"`
	CreatedAt        time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt        gorm.DeletedAt  `gorm:"index" json:"-"`

	// Relations
	Member   *Member       `gorm:"foreignKey:MemberID" json:"member,omitempty"`
	Approver *User         `gorm:"foreignKey:ApprovedBy" json:"approver,omitempty"`
	Payments []LoanPayment `gorm:"foreignKey:LoanID" json:"payments,omitempty"`
}

func (Loan) TableName() string {
	return "loans"
}

// LoanResponse DTO
type LoanResponse struct {
	ID               uint            `json:"id"`
	LoanNumber       string          `json:"loan_number"`
	MemberID         uint            `json:"member_id"`
	MemberNumber     string          `json:"member_number,omitempty"`
	MemberName       string          `json:"member_name,omitempty"`
	Amount           decimal.Decimal `json:"amount"`
	InterestRate     decimal.Decimal `json:"interest_rate"`
	DurationMonths   int             `json:"duration_months"`
	Purpose          string          `json:"purpose,omitempty"`
	Status           string          `json:"status"`
	ApplicationDate  time.Time       `json:"application_date"`
	ApprovalDate     *time.Time      `json:"approval_date"`
	DisbursementDate *time.Time      `json:"disbursement_date"`
	DueDate          *time.Time      `json:"due_date"`
	TotalAmountDue   decimal.Decimal `json:"total_amount_due"`
	AmountPaid       decimal.Decimal `json:"amount_paid"`
	Balance          decimal.Decimal `json:"balance"`
	ApprovedBy       *uint           `json:"approved_by"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

func (l *Loan) ToResponse() *LoanResponse {
	resp := &LoanResponse{
		ID:               l.ID,
		LoanNumber:       l.LoanNumber,
		MemberID:         l.MemberID,
		Amount:           l.Amount,
		InterestRate:     l.InterestRate,
		DurationMonths:   l.DurationMonths,
		Purpose:          l.Purpose,
		Status:           l.Status,
		ApplicationDate:  l.ApplicationDate,
		ApprovalDate:     l.ApprovalDate,
		DisbursementDate: l.DisbursementDate,
		DueDate:          l.DueDate,
		TotalAmountDue:   l.TotalAmountDue,
		AmountPaid:       l.AmountPaid,
		Balance:          l.Balance,
		ApprovedBy:       l.ApprovedBy,
		CreatedAt:        l.CreatedAt,
		UpdatedAt:        l.UpdatedAt,
	}

	if l.Member != nil {
		resp.MemberNumber = l.Member.MemberNumber
		resp.MemberName = l.Member.FullName
	}

	return resp
}

// LoanPayment represents loan_payments table
type LoanPayment struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	LoanID      uint            `gorm:"not null;index" json:"loan_id"`
	Amount      decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	PaymentDate time.Time       `gorm:"not null" json:"payment_date"`
	Method      string          `gorm:"size:30" json:"method,omitempty"`
	ReceiptNo   string          `gorm:"size:50" json:"receipt_no,omitempty"`
	Notes       string          `gorm:"type:text" json:"notes,omitempty"`
	RecordedBy  uint            `gorm:"not null" json:"recorded_by"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`

	// Relations
	Loan     *Loan `gorm:"foreignKey:LoanID" json:"loan,omitempty"`
	Recorder *User `gorm:"foreignKey:RecordedBy" json:"recorder,omitempty"`
}

func (LoanPayment) TableName() string {
	return "loan_payments"
}

// ============================================================
// Counters
// ============================================================

// Counter backs member/loan number allocation. Incremented with a single
// UPDATE inside the enclosing transaction so concurrent allocations cannot
// hand out the same value.
type Counter struct {
	Name      string    `gorm:"primaryKey;size:30" json:"name"`
	Value     int64     `gorm:"not null;default:0" json:"value"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Counter) TableName() string {
	return "counters"
}

// Counter names
const (
	CounterMemberNumber = "member_number"
	CounterLoanPrefix   = "loan_number_" // suffixed with the year
)

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&RefreshToken{},
		&Member{},
		&SavingsTransaction{},
		&Loan{},
		&LoanPayment{},
		&Counter{},
	)
}

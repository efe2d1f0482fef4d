package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Role represents user role in the system
type Role string

const (
	RoleMember    Role = "MEMBER"
	RoleTreasurer Role = "TREASURER"
	RoleAdmin     Role = "ADMIN"
)

// MemberStatus represents member lifecycle status
type MemberStatus string

const (
	MemberActive    MemberStatus = "active"
	MemberInactive  MemberStatus = "inactive"
	MemberSuspended MemberStatus = "suspended"
)

// LoanStatus represents loan lifecycle status
type LoanStatus string

const (
	LoanPending   LoanStatus = "pending"
	LoanApproved  LoanStatus = "approved"
	LoanDisbursed LoanStatus = "disbursed"
	LoanCompleted LoanStatus = "completed"
	LoanDefaulted LoanStatus = "defaulted"
	LoanRejected  LoanStatus = "rejected"
)

// Savings transaction types
const (
	TxTypeDeposit    = "deposit"
	TxTypeWithdrawal = "withdrawal"
)

// User represents an authenticated account in the domain layer
type User struct {
	ID        uint
	Username  string
	Email     string
	Password  string // Hashed
	Role      Role
	IsActive  bool
	MemberID  *uint
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Member represents a registered member with derived savings/loan totals
type Member struct {
	ID            uint
	MemberNumber  string
	UserID        uint
	FullName      string
	Phone         string
	Status        MemberStatus
	MonthlyTarget decimal.Decimal
	TotalSavings  decimal.Decimal // derived: signed sum of savings history
	TotalLoans    decimal.Decimal // derived: sum of approved loan principal
	JoinDate      time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// SavingsTransaction represents a single savings ledger event
type SavingsTransaction struct {
	ID              uint
	MemberID        uint
	Amount          decimal.Decimal
	Type            string
	TransactionDate time.Time
	ReceiptNo       string
	Description     string
	BalanceAfter    decimal.Decimal // derived: running balance snapshot
	RecordedBy      uint
	CreatedAt       time.Time
}

// Loan represents a loan with its lifecycle state and derived balances
type Loan struct {
	ID               uint
	LoanNumber       string
	MemberID         uint
	Amount           decimal.Decimal
	InterestRate     decimal.Decimal
	DurationMonths   int
	Purpose          string
	Status           LoanStatus
	ApplicationDate  time.Time
	ApprovalDate     *time.Time
	DisbursementDate *time.Time
	DueDate          *time.Time
	TotalAmountDue   decimal.Decimal // derived: set once at approval
	AmountPaid       decimal.Decimal // derived: sum of payments
	Balance          decimal.Decimal // derived: total_amount_due - amount_paid
	ApprovedBy       *uint
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// LoanPayment represents a repayment event against a loan
type LoanPayment struct {
	ID          uint
	LoanID      uint
	Amount      decimal.Decimal
	PaymentDate time.Time
	Method      string
	ReceiptNo   string
	Notes       string
	RecordedBy  uint
	CreatedAt   time.Time
}

// RefreshToken represents a refresh token in the domain
type RefreshToken struct {
	ID        uint
	UserID    uint
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
	RevokedAt *time.Time
}

// TokenPair represents access and refresh tokens
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

package services

import (
	"context"
	"fmt"
	"testing"

	"alfa-sacco/internal/adapters/persistence/models"
	"alfa-sacco/internal/adapters/persistence/repositories"
	"alfa-sacco/internal/core/domain"
	"alfa-sacco/internal/core/policy"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// In-memory sqlite gives every connection its own database.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, models.AutoMigrate(db))
	return db
}

func createUser(t *testing.T, db *gorm.DB, username string, role domain.Role) *models.User {
	t.Helper()

	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "hashed",
		Role:     string(role),
		IsActive: true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func registerMember(t *testing.T, db *gorm.DB, user *models.User, fullName string) *models.Member {
	t.Helper()

	svc := NewMemberService(db, repositories.NewMemberRepository(db), repositories.NewUserRepository(db))
	member, err := svc.Register(context.Background(), policy.Actor{UserID: 999, Role: domain.RoleAdmin}, &RegisterMemberInput{
		UserID:   user.ID,
		FullName: fullName,
	})
	require.NoError(t, err)
	return member
}

func newSavingsService(db *gorm.DB) *SavingsService {
	return NewSavingsService(db, repositories.NewSavingsRepository(db), repositories.NewMemberRepository(db), NewAggregationService())
}

func newLoanService(db *gorm.DB) *LoanService {
	return NewLoanService(db, repositories.NewLoanRepository(db), repositories.NewLoanPaymentRepository(db), repositories.NewMemberRepository(db), NewAggregationService())
}

func staffActor(userID uint) policy.Actor {
	return policy.Actor{UserID: userID, Role: domain.RoleTreasurer}
}

func memberActor(user *models.User, member *models.Member) policy.Actor {
	id := member.ID
	return policy.Actor{UserID: user.ID, MemberID: &id, Role: domain.RoleMember}
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(fmt.Sprintf("bad decimal %q: %v", s, err))
	}
	return d
}

func memberByID(t *testing.T, db *gorm.DB, id uint) *models.Member {
	t.Helper()

	var member models.Member
	require.NoError(t, db.First(&member, id).Error)
	return &member
}

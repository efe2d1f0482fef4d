package services

import (
	"context"
	"log"
	"time"

	"alfa-sacco/internal/adapters/persistence/repositories"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// CronService runs scheduled maintenance jobs
type CronService struct {
	cron        *cron.Cron
	loanService *LoanService
	tokenRepo   repositories.RefreshTokenRepository
}

// NewCronService creates a new cron service
func NewCronService(db *gorm.DB) *CronService {
	memberRepo := repositories.NewMemberRepository(db)
	loanRepo := repositories.NewLoanRepository(db)
	paymentRepo := repositories.NewLoanPaymentRepository(db)
	aggregation := NewAggregationService()

	return &CronService{
		cron:        cron.New(),
		loanService: NewLoanService(db, loanRepo, paymentRepo, memberRepo, aggregation),
		tokenRepo:   repositories.NewRefreshTokenRepository(db),
	}
}

// Start registers and starts the scheduled jobs
func (s *CronService) Start() {
	// Flag overdue loans shortly after midnight.
	if _, err := s.cron.AddFunc("5 0 * * *", s.markOverdueLoans); err != nil {
		log.Printf("❌ Failed to schedule overdue loan job: %v", err)
	}

	// Purge expired refresh tokens weekly.
	if _, err := s.cron.AddFunc("0 3 * * 0", s.cleanupExpiredTokens); err != nil {
		log.Printf("❌ Failed to schedule token cleanup job: %v", err)
	}

	s.cron.Start()
	log.Println("✅ Cron service started")
}

// Stop stops the scheduled jobs
func (s *CronService) Stop() {
	s.cron.Stop()
	log.Println("✅ Cron service stopped")
}

func (s *CronService) markOverdueLoans() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	count, err := s.loanService.MarkOverdueLoans(ctx, time.Now())
	if err != nil {
		log.Printf("❌ Overdue loan job failed: %v", err)
		return
	}
	if count > 0 {
		log.Printf("✅ Marked %d loans as defaulted", count)
	}
}

func (s *CronService) cleanupExpiredTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := s.tokenRepo.DeleteExpired(ctx); err != nil {
		log.Printf("❌ Token cleanup job failed: %v", err)
	}
}

package config

import (
	"log"

	"alfa-sacco/internal/adapters/persistence/models"
	"alfa-sacco/internal/core/domain"
	"alfa-sacco/internal/pkg/password"

	"gorm.io/gorm"
)

// Seeder handles database seeding
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// Run executes all seeders
func (s *Seeder) Run() error {
	log.Println("🌱 Running database seeders...")

	if err := s.seedAdminUser(); err != nil {
		log.Printf("⚠️ Admin seeder skipped: %v", err)
	}
	if err := s.seedCounters(); err != nil {
		log.Printf("⚠️ Counter seeder skipped: %v", err)
	}

	log.Println("✅ Database seeding completed")
	return nil
}

// seedAdminUser seeds a default admin user
// This is for development/testing only
// In production, create admin through secure process
func (s *Seeder) seedAdminUser() error {
	var count int64
	s.db.Model(&models.User{}).Where("role = ?", string(domain.RoleAdmin)).Count(&count)
	if count > 0 {
		return nil // Admin already exists
	}

	hashedPassword, err := password.Hash("admin123456")
	if err != nil {
		return err
	}

	admin := &models.User{
		Username: "admin",
		Email:    "admin@alfasacco.org",
		Password: hashedPassword,
		Role:     string(domain.RoleAdmin),
		IsActive: true,
	}

	if err := s.db.Create(admin).Error; err != nil {
		return err
	}

	log.Printf("✅ Admin user created: %s", admin.Username)
	return nil
}

// seedCounters makes sure the member number counter row exists so the first
// registration does not race with a concurrent one on row creation.
func (s *Seeder) seedCounters() error {
	var count int64
	s.db.Model(&models.Counter{}).Where("name = ?", models.CounterMemberNumber).Count(&count)
	if count > 0 {
		return nil
	}

	return s.db.Create(&models.Counter{Name: models.CounterMemberNumber, Value: 0}).Error
}

package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"alfa-sacco/internal/adapters/persistence/models"
	"alfa-sacco/internal/adapters/persistence/repositories"
	"alfa-sacco/internal/core/domain"
	"alfa-sacco/internal/core/policy"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// memberNumberFormat renders allocated sequence values as ALF0001, ALF0002, ...
const memberNumberFormat = "ALF%04d"

// MemberService handles member registration and management
type MemberService struct {
	db         *gorm.DB
	memberRepo *repositories.MemberRepository
	userRepo   repositories.UserRepository
}

// NewMemberService creates a new member service
func NewMemberService(db *gorm.DB, memberRepo *repositories.MemberRepository, userRepo repositories.UserRepository) *MemberService {
	return &MemberService{
		db:         db,
		memberRepo: memberRepo,
		userRepo:   userRepo,
	}
}

// RegisterMemberInput represents member registration input
type RegisterMemberInput struct {
	UserID        uint            `json:"user_id"`
	FullName      string          `json:"full_name"`
	Phone         string          `json:"phone,omitempty"`
	MonthlyTarget decimal.Decimal `json:"monthly_target,omitempty"`
}

// Register creates a member record for a user. The member number is
// allocated from the counter inside the same transaction as the insert, so
// concurrent registrations cannot collide.
func (s *MemberService) Register(ctx context.Context, actor policy.Actor, input *RegisterMemberInput) (*models.Member, error) {
	if input.FullName == "" {
		return nil, fmt.Errorf("%w: full name is required", domain.ErrValidation)
	}
	if input.MonthlyTarget.IsNegative() {
		return nil, fmt.Errorf("%w: monthly target cannot be negative", domain.ErrValidation)
	}

	// A member may only register themselves; staff register anyone.
	isStaff := actor.Role == domain.RoleAdmin || actor.Role == domain.RoleTreasurer
	if !isStaff && actor.UserID != input.UserID {
		return nil, fmt.Errorf("%w: members may only create their own record", domain.ErrUnauthorized)
	}

	user, err := s.userRepo.GetByID(ctx, input.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}

	exists, err := s.memberRepo.ExistsByUserID(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrMemberAlreadyRegistered
	}

	var member *models.Member
	err = s.db.Transaction(func(tx *gorm.DB) error {
		counterRepo := repositories.NewCounterRepository(tx)
		txMemberRepo := repositories.NewMemberRepository(tx)
		txUserRepo := repositories.NewUserRepository(tx)

		seq, err := counterRepo.Next(ctx, models.CounterMemberNumber)
		if err != nil {
			return err
		}

		member = &models.Member{
			MemberNumber:  fmt.Sprintf(memberNumberFormat, seq),
			UserID:        user.ID,
			FullName:      input.FullName,
			Phone:         input.Phone,
			Status:        string(domain.MemberActive),
			MonthlyTarget: input.MonthlyTarget,
			TotalSavings:  decimal.Zero,
			TotalLoans:    decimal.Zero,
			JoinDate:      time.Now(),
		}
		if err := txMemberRepo.Create(ctx, member); err != nil {
			return err
		}

		user.MemberID = &member.ID
		return txUserRepo.Update(ctx, user)
	})
	if err != nil {
		return nil, err
	}

	return member, nil
}

// GetByID gets a member by ID
func (s *MemberService) GetByID(ctx context.Context, id uint) (*models.Member, error) {
	member, err := s.memberRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrMemberNotFound
		}
		return nil, err
	}
	return member, nil
}

// GetByUserID gets the member record owned by a user
func (s *MemberService) GetByUserID(ctx context.Context, userID uint) (*models.Member, error) {
	member, err := s.memberRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrMemberNotFound
		}
		return nil, err
	}
	return member, nil
}

// ListMembersInput represents list members input
type ListMembersInput struct {
	Page   int
	Limit  int
	Status string
}

// ListMembersOutput represents list members output
type ListMembersOutput struct {
	Members    []*models.MemberResponse `json:"members"`
	Total      int64                    `json:"total"`
	Page       int                      `json:"page"`
	Limit      int                      `json:"limit"`
	TotalPages int                      `json:"total_pages"`
}

// List lists members
func (s *MemberService) List(ctx context.Context, input *ListMembersInput) (*ListMembersOutput, error) {
	if input.Page < 1 {
		input.Page = 1
	}
	if input.Limit < 1 {
		input.Limit = 10
	}
	if input.Limit > 100 {
		input.Limit = 100
	}

	offset := (input.Page - 1) * input.Limit
	var members []*models.Member
	var total int64
	var err error

	if input.Status != "" {
		members, total, err = s.memberRepo.ListByStatus(ctx, input.Status, offset, input.Limit)
	} else {
		members, total, err = s.memberRepo.List(ctx, offset, input.Limit)
	}
	if err != nil {
		return nil, err
	}

	responses := make([]*models.MemberResponse, len(members))
	for i, member := range members {
		responses[i] = member.ToResponse()
	}

	totalPages := int(total) / input.Limit
	if int(total)%input.Limit > 0 {
		totalPages++
	}

	return &ListMembersOutput{
		Members:    responses,
		Total:      total,
		Page:       input.Page,
		Limit:      input.Limit,
		TotalPages: totalPages,
	}, nil
}

// UpdateMemberInput represents update member input
type UpdateMemberInput struct {
	FullName      *string          `json:"full_name"`
	Phone         *string          `json:"phone"`
	Status        *string          `json:"status"`
	MonthlyTarget *decimal.Decimal `json:"monthly_target"`
}

// Update updates member fields. Status changes replace deletion in the
// normal flow.
func (s *MemberService) Update(ctx context.Context, actor policy.Actor, memberID uint, input *UpdateMemberInput) (*models.Member, error) {
	if err := policy.Authorize(actor, policy.ActionUpdateMember, policy.OwnResource(memberID)); err != nil {
		return nil, err
	}

	member, err := s.GetByID(ctx, memberID)
	if err != nil {
		return nil, err
	}

	if input.Status != nil {
		switch domain.MemberStatus(*input.Status) {
		case domain.MemberActive, domain.MemberInactive, domain.MemberSuspended:
		default:
			return nil, fmt.Errorf("%w: unknown member status %q", domain.ErrValidation, *input.Status)
		}
		member.Status = *input.Status
	}
	if input.FullName != nil {
		member.FullName = *input.FullName
	}
	if input.Phone != nil {
		member.Phone = *input.Phone
	}
	if input.MonthlyTarget != nil {
		if input.MonthlyTarget.IsNegative() {
			return nil, fmt.Errorf("%w: monthly target cannot be negative", domain.ErrValidation)
		}
		member.MonthlyTarget = *input.MonthlyTarget
	}

	if err := s.memberRepo.Update(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}

// Delete soft deletes a member (admin tooling; status changes are preferred)
func (s *MemberService) Delete(ctx context.Context, actor policy.Actor, memberID uint) error {
	if err := policy.Authorize(actor, policy.ActionDeleteMember, policy.OwnResource(memberID)); err != nil {
		return err
	}

	if _, err := s.GetByID(ctx, memberID); err != nil {
		return err
	}
	return s.memberRepo.Delete(ctx, memberID)
}

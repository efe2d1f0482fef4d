package services

import (
	"context"
	"testing"

	"alfa-sacco/internal/adapters/persistence/repositories"
	"alfa-sacco/internal/core/domain"
	"alfa-sacco/internal/core/policy"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterMemberAllocatesSequentialNumbers(t *testing.T) {
	db := newTestDB(t)
	svc := NewMemberService(db, repositories.NewMemberRepository(db), repositories.NewUserRepository(db))

	alice := createUser(t, db, "alice", domain.RoleMember)
	bob := createUser(t, db, "bob", domain.RoleMember)

	first, err := svc.Register(context.Background(), staffActor(1), &RegisterMemberInput{
		UserID:   alice.ID,
		FullName: "Alice Wanjiru",
	})
	require.NoError(t, err)
	assert.Equal(t, "ALF0001", first.MemberNumber)
	assert.Equal(t, string(domain.MemberActive), first.Status)

	second, err := svc.Register(context.Background(), staffActor(1), &RegisterMemberInput{
		UserID:   bob.ID,
		FullName: "Bob Otieno",
	})
	require.NoError(t, err)
	assert.Equal(t, "ALF0002", second.MemberNumber)
}

func TestRegisterMemberLinksUser(t *testing.T) {
	db := newTestDB(t)
	svc := NewMemberService(db, repositories.NewMemberRepository(db), repositories.NewUserRepository(db))

	user := createUser(t, db, "alice", domain.RoleMember)

	member, err := svc.Register(context.Background(), staffActor(1), &RegisterMemberInput{
		UserID:   user.ID,
		FullName: "Alice Wanjiru",
	})
	require.NoError(t, err)

	linked, err := repositories.NewUserRepository(db).GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	require.NotNil(t, linked.MemberID)
	assert.Equal(t, member.ID, *linked.MemberID)
}

func TestRegisterMemberSelfOnly(t *testing.T) {
	db := newTestDB(t)
	svc := NewMemberService(db, repositories.NewMemberRepository(db), repositories.NewUserRepository(db))

	alice := createUser(t, db, "alice", domain.RoleMember)
	bob := createUser(t, db, "bob", domain.RoleMember)

	// Bob tries to register Alice
	_, err := svc.Register(context.Background(), policy.Actor{UserID: bob.ID, Role: domain.RoleMember}, &RegisterMemberInput{
		UserID:   alice.ID,
		FullName: "Alice Wanjiru",
	})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	// Bob registers himself
	member, err := svc.Register(context.Background(), policy.Actor{UserID: bob.ID, Role: domain.RoleMember}, &RegisterMemberInput{
		UserID:   bob.ID,
		FullName: "Bob Otieno",
	})
	require.NoError(t, err)
	assert.Equal(t, bob.ID, member.UserID)
}

func TestRegisterMemberDuplicate(t *testing.T) {
	db := newTestDB(t)
	svc := NewMemberService(db, repositories.NewMemberRepository(db), repositories.NewUserRepository(db))

	user := createUser(t, db, "alice", domain.RoleMember)
	registerMember(t, db, user, "Alice Wanjiru")

	_, err := svc.Register(context.Background(), staffActor(1), &RegisterMemberInput{
		UserID:   user.ID,
		FullName: "Alice Wanjiru",
	})
	assert.ErrorIs(t, err, domain.ErrMemberAlreadyRegistered)
}

func TestUpdateMemberStatus(t *testing.T) {
	db := newTestDB(t)
	svc := NewMemberService(db, repositories.NewMemberRepository(db), repositories.NewUserRepository(db))

	user := createUser(t, db, "alice", domain.RoleMember)
	member := registerMember(t, db, user, "Alice Wanjiru")

	suspended := string(domain.MemberSuspended)
	updated, err := svc.Update(context.Background(), staffActor(1), member.ID, &UpdateMemberInput{Status: &suspended})
	require.NoError(t, err)
	assert.Equal(t, suspended, updated.Status)

	bad := "expelled"
	_, err = svc.Update(context.Background(), staffActor(1), member.ID, &UpdateMemberInput{Status: &bad})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestUpdateMemberRequiresStaff(t *testing.T) {
	db := newTestDB(t)
	svc := NewMemberService(db, repositories.NewMemberRepository(db), repositories.NewUserRepository(db))

	user := createUser(t, db, "alice", domain.RoleMember)
	member := registerMember(t, db, user, "Alice Wanjiru")

	name := "Alice W."
	_, err := svc.Update(context.Background(), memberActor(user, member), member.ID, &UpdateMemberInput{FullName: &name})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

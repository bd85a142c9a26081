package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exportplatform/export-api/internal/models"
	"github.com/exportplatform/export-api/internal/testutil"
)

func TestAddEmployee(t *testing.T) {
	env := newTestEnv(t)
	s := NewEmployeeService(env.db, env.mailer, env.notifications)
	ctx := context.Background()

	owner := testutil.CreateUser(t, env.db, models.RoleClient, "owner@example.com")
	company := testutil.CreateCompany(t, env.db, owner, "Baikal Trade")
	existing := testutil.CreateUser(t, env.db, models.RoleClient, "existing@example.com")

	added, err := s.Add(ctx, owner, &AddEmployeeRequest{Email: "existing@example.com", Role: models.RoleCompany})
	require.NoError(t, err)
	assert.Equal(t, existing.ID, added.ID)
	assert.True(t, added.BelongsTo(company.ID))

	var notes int64
	env.db.Model(&models.Notification{}).Where("user_id = ? AND type = ?", existing.ID, models.NotificationTypeEmployee).Count(&notes)
	assert.Equal(t, int64(1), notes)

	invited, err := s.Add(ctx, owner, &AddEmployeeRequest{Email: "New.Hire@example.com", Role: models.RoleCompany})
	require.NoError(t, err)
	assert.Equal(t, "new.hire@example.com", invited.Email)
	assert.False(t, invited.HasPassword())
	require.Len(t, env.mail.Sent, 1)
	assert.Equal(t, "new.hire@example.com", env.mail.Last().To)

	_, err = s.Add(ctx, owner, &AddEmployeeRequest{Email: "existing@example.com", Role: models.RoleCompany})
	assert.ErrorIs(t, err, ErrEmployeeAlreadyMember)
	assert.ErrorIs(t, err, ErrConflict)

	otherOwner := testutil.CreateUser(t, env.db, models.RoleClient, "other@example.com")
	testutil.CreateCompany(t, env.db, otherOwner, "Other Co")
	_, err = s.Add(ctx, owner, &AddEmployeeRequest{Email: "other@example.com", Role: models.RoleCompany})
	assert.ErrorIs(t, err, ErrEmployeeOtherCompany)

	// Only platform admins hand out ADMIN.
	_, err = s.Add(ctx, owner, &AddEmployeeRequest{Email: "boss@example.com", Role: models.RoleAdmin})
	assert.ErrorIs(t, err, ErrForbidden)

	// Plain employees cannot manage staff.
	_, err = s.Add(ctx, added, &AddEmployeeRequest{Email: "friend@example.com", Role: models.RoleCompany})
	assert.ErrorIs(t, err, ErrEmployeeManageDenied)

	employees, err := s.List(owner)
	require.NoError(t, err)
	assert.Len(t, employees, 3)
}

func TestRemoveEmployee(t *testing.T) {
	env := newTestEnv(t)
	s := NewEmployeeService(env.db, env.mailer, env.notifications)

	owner := testutil.CreateUser(t, env.db, models.RoleClient, "owner@example.com")
	company := testutil.CreateCompany(t, env.db, owner, "Baikal Trade")
	worker := testutil.CreateUser(t, env.db, models.RoleClient, "worker@example.com")
	testutil.AddMember(t, env.db, worker, company.ID, models.RoleCompany)

	outsiderOwner := testutil.CreateUser(t, env.db, models.RoleClient, "outsider@example.com")
	testutil.CreateCompany(t, env.db, outsiderOwner, "Outsider")

	admin := testutil.CreateUser(t, env.db, models.RoleAdmin, "admin@example.com")
	testutil.AddMember(t, env.db, admin, company.ID, models.RoleAdmin)

	assert.ErrorIs(t, s.Remove(owner, owner.ID), ErrEmployeeRemoveSelf)
	assert.ErrorIs(t, s.Remove(owner, outsiderOwner.ID), ErrForbidden)
	assert.ErrorIs(t, s.Remove(owner, company.ID), ErrEmployeeNotFound)
	assert.ErrorIs(t, s.Remove(worker, owner.ID), ErrEmployeeManageDenied)

	require.NoError(t, s.Remove(owner, worker.ID))
	var stored models.User
	require.NoError(t, env.db.First(&stored, "id = ?", worker.ID).Error)
	assert.Nil(t, stored.CompanyID)
	assert.Equal(t, models.RoleClient, stored.Role)
}

func TestAdminCannotRemoveCompanyOwner(t *testing.T) {
	env := newTestEnv(t)
	s := NewEmployeeService(env.db, env.mailer, env.notifications)

	owner := testutil.CreateUser(t, env.db, models.RoleClient, "owner@example.com")
	company := testutil.CreateCompany(t, env.db, owner, "Baikal Trade")
	admin := testutil.CreateUser(t, env.db, models.RoleAdmin, "admin@example.com")
	testutil.AddMember(t, env.db, admin, company.ID, models.RoleAdmin)

	assert.ErrorIs(t, s.Remove(admin, owner.ID), ErrEmployeeRemoveOwner)
}

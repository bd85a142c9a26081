package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exportplatform/export-api/internal/models"
	"github.com/exportplatform/export-api/internal/testutil"
)

func TestNotificationLifecycle(t *testing.T) {
	env := newTestEnv(t)
	s := env.notifications
	user := testutil.CreateUser(t, env.db, models.RoleClient, "user@example.com")
	other := testutil.CreateUser(t, env.db, models.RoleClient, "other@example.com")

	require.NoError(t, s.Notify([]uuid.UUID{user.ID, user.ID, uuid.Nil}, models.NotificationTypeSystem, L("One"), L("first"), nil))
	require.NoError(t, s.Notify([]uuid.UUID{user.ID, other.ID}, models.NotificationTypeSystem, L("Two"), L("second"), map[string]interface{}{"k": "v"}))

	list, unread, err := s.List(user.ID, 0, "en")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, int64(2), unread)

	otherList, _, err := s.List(other.ID, 0, "en")
	require.NoError(t, err)
	require.Len(t, otherList, 1)

	// Someone else's notification is invisible.
	_, err = s.MarkRead(user.ID, &otherList[0].ID)
	assert.ErrorIs(t, err, ErrNotificationFound)

	marked, err := s.MarkRead(user.ID, &list[0].ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), marked)

	marked, err = s.MarkRead(user.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), marked)

	_, unread, err = s.List(user.ID, 0, "en")
	require.NoError(t, err)
	assert.Zero(t, unread)

	_, err = s.Delete(user.ID, &DeleteNotificationRequest{})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = s.Delete(user.ID, &DeleteNotificationRequest{NotificationID: &otherList[0].ID})
	assert.ErrorIs(t, err, ErrNotFound)

	deleted, err := s.Delete(user.ID, &DeleteNotificationRequest{DeleteAll: true})
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	otherList, _, err = s.List(other.ID, 0, "en")
	require.NoError(t, err)
	assert.Len(t, otherList, 1)
}

func TestCreateNotificationIsAdminOnly(t *testing.T) {
	env := newTestEnv(t)
	s := env.notifications
	ctx := context.Background()
	admin := testutil.CreateUser(t, env.db, models.RoleAdmin, "admin@example.com")
	user := testutil.CreateUser(t, env.db, models.RoleClient, "user@example.com")

	req := &CreateNotificationRequest{UserID: user.ID, Type: models.NotificationTypeSystem, Title: "Hello", Text: "Welcome", Email: true}

	_, err := s.Create(ctx, user, req)
	assert.ErrorIs(t, err, ErrForbidden)

	created, err := s.Create(ctx, admin, req)
	require.NoError(t, err)
	assert.Equal(t, user.ID, created.UserID)
	require.Len(t, env.mail.Sent, 1)
	assert.Equal(t, "user@example.com", env.mail.Last().To)

	_, err = s.Create(ctx, admin, &CreateNotificationRequest{UserID: uuid.New(), Type: models.NotificationTypeSystem, Title: "x", Text: "y"})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestNotificationsAreTranslatedForTheReader(t *testing.T) {
	env := newTestEnv(t)
	s := env.notifications
	owner := testutil.CreateUser(t, env.db, models.RoleClient, "owner@example.com")
	company := testutil.CreateCompany(t, env.db, owner, "Neva Motors")
	buyer := testutil.CreateUser(t, env.db, models.RoleClient, "buyer@example.com")

	reviews := NewReviewService(env.db, s)
	_, err := reviews.Create(buyer, company.ID, &CreateReviewRequest{Rating: 5, Text: "Great dealer"})
	require.NoError(t, err)

	en, _, err := s.List(owner.ID, 0, "en")
	require.NoError(t, err)
	require.Len(t, en, 1)
	assert.Equal(t, "New review", en[0].Title)
	assert.Equal(t, "buyer rated your company 5/5", en[0].Text)

	ru, _, err := s.List(owner.ID, 0, "ru")
	require.NoError(t, err)
	require.Len(t, ru, 1)
	assert.Equal(t, "Новый отзыв", ru[0].Title)
	assert.Equal(t, "buyer оценил(а) вашу компанию на 5/5", ru[0].Text)

	// admin free text is shown as written
	admin := testutil.CreateUser(t, env.db, models.RoleAdmin, "admin@example.com")
	_, err = s.Create(context.Background(), admin, &CreateNotificationRequest{
		UserID: buyer.ID, Type: models.NotificationTypeSystem, Title: "Maintenance at 100%", Text: "Back soon",
	})
	require.NoError(t, err)
	list, _, err := s.List(buyer.ID, 0, "ru")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Maintenance at 100%", list[0].Title)
}

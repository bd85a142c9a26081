package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exportplatform/export-api/internal/models"
	"github.com/exportplatform/export-api/internal/testutil"
)

func TestAnalyticsSeries(t *testing.T) {
	env := newTestEnv(t)
	clock := newClock() // 2024-03-10 12:00 UTC
	s := NewAnalyticsService(env.db)
	s.now = clock.Now

	owner := testutil.CreateUser(t, env.db, models.RoleClient, "owner@example.com")
	company := testutil.CreateCompany(t, env.db, owner, "Kama Trade")
	client := testutil.CreateUser(t, env.db, models.RoleClient, "client@example.com")

	for _, at := range []time.Time{
		time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 10, 10, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 4, 1, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 3, 23, 0, 0, 0, time.UTC), // outside the week
		time.Date(2023, 4, 15, 0, 0, 0, 0, time.UTC),
	} {
		require.NoError(t, env.db.Create(&models.CompanyView{CompanyID: company.ID, CreatedAt: at}).Error)
	}

	chat := models.Chat{CompanyID: company.ID, ClientID: client.ID}
	require.NoError(t, env.db.Create(&chat).Error)
	message := models.Message{ChatID: chat.ID, CompanyID: company.ID, SenderID: client.ID, Text: "hi"}
	message.CreatedAt = time.Date(2024, 3, 9, 8, 0, 0, 0, time.UTC)
	require.NoError(t, env.db.Create(&message).Error)

	require.NoError(t, env.db.Create(&models.Review{CompanyID: company.ID, AuthorID: client.ID, Rating: 5, Text: "great"}).Error)

	week, err := s.GetAnalytics(owner, "")
	require.NoError(t, err)
	assert.Equal(t, "week", week.Range)
	require.Len(t, week.Views, 7)
	assert.Equal(t, "2024-03-04", week.Views[0].Label)
	assert.Equal(t, int64(1), week.Views[0].Value)
	assert.Equal(t, "2024-03-10", week.Views[6].Label)
	assert.Equal(t, int64(2), week.Views[6].Value)
	assert.Equal(t, int64(1), week.Messages[5].Value)

	assert.Equal(t, int64(5), week.Totals.Views)
	assert.Equal(t, int64(1), week.Totals.Messages)
	assert.Equal(t, int64(1), week.Totals.Reviews)
	assert.Equal(t, int64(1), week.Totals.Employees)
	assert.Equal(t, int64(1), week.Reviews.Distribution[0])

	month, err := s.GetAnalytics(owner, "month")
	require.NoError(t, err)
	assert.Len(t, month.Views, 30)

	year, err := s.GetAnalytics(owner, "year")
	require.NoError(t, err)
	require.Len(t, year.Views, 12)
	assert.Equal(t, "2023-04", year.Views[0].Label)
	assert.Equal(t, int64(1), year.Views[0].Value)
	assert.Equal(t, "2024-03", year.Views[11].Label)
	assert.Equal(t, int64(4), year.Views[11].Value)

	_, err = s.GetAnalytics(owner, "decade")
	assert.ErrorIs(t, err, ErrAnalyticsRange)

	_, err = s.GetAnalytics(client, "week")
	assert.ErrorIs(t, err, ErrCompanyNotFound)
}

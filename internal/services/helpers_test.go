package services

import (
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/exportplatform/export-api/internal/config"
	"github.com/exportplatform/export-api/internal/testutil"
)

// fixedClock is a controllable now func.
type fixedClock struct {
	t time.Time
}

func newClock() *fixedClock {
	return &fixedClock{t: time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)}
}

func (c *fixedClock) Now() time.Time          { return c.t }
func (c *fixedClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type testEnv struct {
	db     *gorm.DB
	cfg    *config.Config
	mail   *testutil.Mail
	sms    *testutil.SMS
	store  *testutil.Store
	mailer *MailService

	storage       *StorageService
	search        *SearchService
	notifications *NotificationService
	companies     *CompanyService
}

func newTestEnv(t *testing.T) *testEnv {
	env := &testEnv{
		db:    testutil.NewDB(t),
		cfg:   testutil.Config(),
		mail:  &testutil.Mail{},
		sms:   &testutil.SMS{},
		store: testutil.NewStore(),
	}
	env.mailer = NewMailService(env.mail, env.cfg)
	env.storage = NewStorageServiceWithStore(env.store)
	env.search = NewSearchService(config.SearchConfig{})
	env.notifications = NewNotificationService(env.db, env.mailer)
	env.companies = NewCompanyService(env.db, env.storage, env.search)
	return env
}

// Package testutil holds the in-memory database, recording drivers and
// fixtures shared by package tests.
package testutil

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/textproto"
	"strings"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/exportplatform/export-api/internal/config"
	"github.com/exportplatform/export-api/internal/database"
	"github.com/exportplatform/export-api/internal/i18n"
	"github.com/exportplatform/export-api/internal/models"
	"github.com/exportplatform/export-api/internal/utils"
)

const (
	JWTSecret = "test-secret"
	Password  = "Password123"
)

// Sample file contents that content sniffing recognises.
var (
	PNG  = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")
	JPEG = []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00\x01\x01\x00\x00\x01\x00\x01\x00\x00")
	PDF  = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n")
	ELF  = []byte("\x7fELF\x02\x01\x01\x00\x00\x00\x00\x00\x00\x00\x00\x00")
)

var setupOnce sync.Once

func setup(t *testing.T) {
	setupOnce.Do(func() {
		require.NoError(t, i18n.Initialize())
		utils.SetJWTSecret(JWTSecret)
	})
}

// NewDB opens a migrated in-memory database private to the test.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	setup(t)

	db, err := gorm.Open(sqlite.Open(":memory:"), database.GormConfig("silent"))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// Every connection to :memory: is a separate database.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

func Config() *config.Config {
	return &config.Config{
		Environment: "test",
		LogLevel:    "error",
		JWT: config.JWTConfig{
			SecretKey:       JWTSecret,
			AccessTokenTTL:  1,
			RefreshTokenTTL: 24,
		},
		Session: config.SessionConfig{CookieName: "session_token"},
		CORS:    config.CORSConfig{AllowedOrigins: []string{"*"}},
		Storage: config.StorageConfig{Driver: "memory"},
		Frontend: config.FrontendConfig{
			BaseURL: "http://localhost:3000",
		},
	}
}

// Mail records outgoing email instead of sending it.
type Mail struct {
	mu   sync.Mutex
	Sent []Email
	Err  error
}

type Email struct {
	To      string
	Subject string
	Body    string
}

func (m *Mail) SendEmail(_ context.Context, to, subject, htmlBody string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Sent = append(m.Sent, Email{To: to, Subject: subject, Body: htmlBody})
	return nil
}

func (m *Mail) Last() Email {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Sent) == 0 {
		return Email{}
	}
	return m.Sent[len(m.Sent)-1]
}

// SMS records outgoing text messages.
type SMS struct {
	mu   sync.Mutex
	Sent []TextMessage
}

type TextMessage struct {
	To   string
	Body string
}

func (s *SMS) SendSMS(_ context.Context, to, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Sent = append(s.Sent, TextMessage{To: to, Body: body})
	return nil
}

func (s *SMS) Last() TextMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Sent) == 0 {
		return TextMessage{}
	}
	return s.Sent[len(s.Sent)-1]
}

// Store keeps uploaded objects in memory. With FailAfter set, every Put
// beyond the first FailAfter ones fails.
type Store struct {
	mu        sync.Mutex
	Objects   map[string][]byte
	FailAfter int
	puts      int
}

var ErrStoreUnavailable = errors.New("store unavailable")

func NewStore() *Store {
	return &Store{Objects: make(map[string][]byte)}
}

func (s *Store) Put(_ context.Context, key, _ string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.puts++
	if s.FailAfter > 0 && s.puts > s.FailAfter {
		return "", ErrStoreUnavailable
	}
	s.Objects[key] = data
	return "/uploads/" + key, nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Objects, key)
	return nil
}

func (s *Store) Has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.Objects[key]
	return ok
}

// ExtractCode pulls the first run of six digits out of a message body.
func ExtractCode(body string) string {
	run := 0
	for i, r := range body {
		if r >= '0' && r <= '9' {
			run++
			if run == 6 {
				return body[i-5 : i+1]
			}
			continue
		}
		run = 0
	}
	return ""
}

// Fixtures

func CreateUser(t *testing.T, db *gorm.DB, role models.Role, email string) *models.User {
	t.Helper()
	user := &models.User{
		Name:   strings.Split(email, "@")[0],
		Email:  email,
		Role:   role,
		Status: models.UserStatusActive,
	}
	require.NoError(t, user.SetPassword(Password))
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateCompany creates an active company owned by owner and links the owner.
func CreateCompany(t *testing.T, db *gorm.DB, owner *models.User, name string) *models.Company {
	t.Helper()
	company := &models.Company{
		Name:         name,
		Description:  name + " exports cars",
		Country:      "Russia",
		Languages:    models.StringList{"ru", "en"},
		DeliveryTime: models.DefaultDeliveryTime,
		Status:       models.CompanyStatusActive,
		OwnerID:      &owner.ID,
	}
	require.NoError(t, db.Create(company).Error)

	require.NoError(t, db.Model(owner).Updates(map[string]interface{}{
		"company_id": company.ID,
		"role":       models.RoleCompany,
	}).Error)
	owner.CompanyID = &company.ID
	owner.Role = models.RoleCompany
	return company
}

// AddMember links an existing user to the company with the given role.
func AddMember(t *testing.T, db *gorm.DB, user *models.User, companyID uuid.UUID, role models.Role) {
	t.Helper()
	require.NoError(t, db.Model(user).Updates(map[string]interface{}{
		"company_id": companyID,
		"role":       role,
	}).Error)
	user.CompanyID = &companyID
	user.Role = role
}

func Token(t *testing.T, user *models.User) string {
	t.Helper()
	token, err := utils.GenerateJWT(user.ID, user.Email, string(user.Role), 1)
	require.NoError(t, err)
	return token
}

// FileHeader builds a parsed multipart file part.
func FileHeader(t *testing.T, field, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	return MultipartForm(t, nil, map[string][]NamedFile{field: {{Name: filename, Content: content}}}).File[field][0]
}

type NamedFile struct {
	Name    string
	Content []byte
}

// MultipartBody encodes fields and files and returns the body with its
// content type.
func MultipartBody(t *testing.T, fields map[string]string, files map[string][]NamedFile) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for name, value := range fields {
		require.NoError(t, writer.WriteField(name, value))
	}
	for field, list := range files {
		for _, f := range list {
			h := make(textproto.MIMEHeader)
			h.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+f.Name+`"`)
			h.Set("Content-Type", "application/octet-stream")
			part, err := writer.CreatePart(h)
			require.NoError(t, err)
			_, err = part.Write(f.Content)
			require.NoError(t, err)
		}
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func MultipartForm(t *testing.T, fields map[string]string, files map[string][]NamedFile) *multipart.Form {
	t.Helper()
	body, contentType := MultipartBody(t, fields, files)
	boundary := strings.TrimPrefix(contentType, "multipart/form-data; boundary=")
	form, err := multipart.NewReader(body, boundary).ReadForm(32 << 20)
	require.NoError(t, err)
	return form
}

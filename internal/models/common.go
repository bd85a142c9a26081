// internal/models/common.go
package models

import (
	"database/sql/driver"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time      `json:"created_at" gorm:"index"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (m *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// StringList is stored as a native text[] on Postgres and as its literal
// array text elsewhere.
type StringList pq.StringArray

func (l StringList) Value() (driver.Value, error) {
	return pq.StringArray(l).Value()
}

func (l *StringList) Scan(src interface{}) error {
	var arr pq.StringArray
	if err := arr.Scan(src); err != nil {
		return err
	}
	*l = StringList(arr)
	return nil
}

func (StringList) GormDataType() string {
	return "text[]"
}

func (StringList) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "text[]"
	}
	return "text"
}

// Enums
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleCompany Role = "COMPANY"
	RoleClient  Role = "CLIENT"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleCompany || r == RoleClient
}

type UserStatus string

const (
	UserStatusActive  UserStatus = "active"
	UserStatusBlocked UserStatus = "blocked"
)

type CompanyStatus string

const (
	CompanyStatusPending CompanyStatus = "pending"
	CompanyStatusActive  CompanyStatus = "active"
	CompanyStatusBlocked CompanyStatus = "blocked"
)

type ExportRequestStatus string

const (
	ExportRequestStatusNew        ExportRequestStatus = "new"
	ExportRequestStatusInProgress ExportRequestStatus = "in_progress"
	ExportRequestStatusClosed     ExportRequestStatus = "closed"
)

func (s ExportRequestStatus) Valid() bool {
	return s == ExportRequestStatusNew || s == ExportRequestStatusInProgress || s == ExportRequestStatusClosed
}

type NotificationType string

const (
	NotificationTypeSystem         NotificationType = "system"
	NotificationTypeReview         NotificationType = "review"
	NotificationTypeReviewResponse NotificationType = "review_response"
	NotificationTypeMessage        NotificationType = "message"
	NotificationTypeEmployee       NotificationType = "employee"
	NotificationTypeExportRequest  NotificationType = "export_request"
	NotificationTypeCompanyStatus  NotificationType = "company_status"
)

// All lists every persisted model in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Company{},
		&CompanyView{},
		&Image{},
		&Document{},
		&Category{},
		&Review{},
		&Notification{},
		&Chat{},
		&Message{},
		&ExportRequest{},
		&AuditLog{},
	}
}

// internal/config/database.go
package config

import (
	"fmt"
)

// DSN builds a libpq-style connection string for the pgx-backed gorm driver.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		d.Host, d.Port, d.User, d.Password, d.Database, d.SSLMode,
	)
}

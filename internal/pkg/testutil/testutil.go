// Package testutil builds the in-memory database and configuration shared by
// service tests.
package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/your-org/fashion-store/internal/config"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbCounter atomic.Int64

// NewDB opens a private in-memory SQLite database and migrates models into it.
// A single connection is kept so every statement sees the same database.
func NewDB(t testing.TB, models ...interface{}) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared&_foreign_keys=1", name, dbCounter.Add(1))

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sqlite handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if len(models) > 0 {
		if err := db.AutoMigrate(models...); err != nil {
			t.Fatalf("migrate: %v", err)
		}
	}

	return db
}

// Config returns a configuration suitable for tests
func Config() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Name:           "Fashion Store",
			Environment:    "test",
			BaseURL:        "http://localhost:3000",
			CompanyName:    "Fashion Store",
			CompanyEmail:   "support@example.com",
			CompanyWebsite: "http://localhost:3000",
		},
		Server: config.ServerConfig{
			Port:           "8080",
			RequestTimeout: 5 * time.Second,
		},
		Database: config.DatabaseConfig{Driver: "sqlite", SQLitePath: ":memory:"},
		JWT: config.JWTConfig{
			Secret:             "test-secret-that-is-at-least-32-characters",
			AccessTokenExpiry:  time.Hour,
			RefreshTokenExpiry: 24 * time.Hour,
		},
		Security: config.SecurityConfig{
			BcryptCost:         4,
			PasswordMinLength:  6,
			PasswordResetTTL:   time.Hour,
			RateLimitPerMinute: 5,
			CORSAllowedOrigins: []string{"http://localhost:3000"},
			CORSAllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			CORSAllowedHeaders: []string{"Origin", "Content-Type", "Authorization", "X-Session-ID"},
		},
		Session: config.SessionConfig{
			CookieName: "session_id",
			HeaderName: "X-Session-ID",
			TTL:        time.Hour,
		},
		Email: config.EmailConfig{
			Provider:   "log",
			FromEmail:  "noreply@example.com",
			FromName:   "Fashion Store",
			MaxRetries: 1,
			RetryDelay: time.Millisecond,
		},
		Store: config.StoreConfig{
			CommentsAutoApprove:  true,
			DefaultPaymentMethod: "cod",
			PageSize:             12,
			MaxPageSize:          100,
			RecentOrdersLimit:    10,
		},
		Invoice: config.InvoiceConfig{Currency: "USD", DueDays: 30},
		Logging: config.LoggingConfig{Level: "error", Format: "text"},
	}
}

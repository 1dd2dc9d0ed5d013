// internal/domain/user/entity.go
package user

import (
	"strings"
	"time"

	"github.com/your-org/fashion-store/internal/pkg/auth"
	"gorm.io/gorm"
)

// User represents a storefront account. Role decides access to the back-office.
type User struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Username    string     `gorm:"uniqueIndex;not null;size:80" json:"username"`
	Email       string     `gorm:"uniqueIndex;not null;size:120" json:"email"`
	Password    string     `gorm:"not null;size:255" json:"-"`
	FullName    string     `gorm:"size:200" json:"full_name"`
	Phone       string     `gorm:"size:20" json:"phone"`
	Address     string     `gorm:"type:text" json:"address"`
	Role        auth.Role  `gorm:"not null;size:20;default:'customer';index" json:"role"`
	DarkMode    bool       `gorm:"not null;default:false" json:"dark_mode"`
	IsActive    bool       `gorm:"not null" json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// PasswordResetToken is a single-use token mailed to the account owner
type PasswordResetToken struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Token     string    `gorm:"uniqueIndex;not null;size:100" json:"-"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	IsUsed    bool      `gorm:"not null;default:false" json:"is_used"`
	CreatedAt time.Time `json:"created_at"`

	User User `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}

// TableName overrides the table name for User
func (User) TableName() string {
	return "users"
}

func (PasswordResetToken) TableName() string {
	return "password_reset_tokens"
}

// BeforeCreate normalizes identifiers before the user is stored
func (u *User) BeforeCreate(tx *gorm.DB) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.Username = strings.TrimSpace(u.Username)
	if u.Role == "" {
		u.Role = auth.RoleCustomer
	}
	return nil
}

// GetDisplayName returns the full name, falling back to the username
func (u *User) GetDisplayName() string {
	if name := strings.TrimSpace(u.FullName); name != "" {
		return name
	}
	return u.Username
}

// Principal returns the authenticated identity of the user
func (u *User) Principal() *auth.Principal {
	return &auth.Principal{UserID: u.ID, Email: u.Email, Role: u.Role}
}

// Usable reports whether the token can still reset a password at now
func (t *PasswordResetToken) Usable(now time.Time) bool {
	return !t.IsUsed && now.Before(t.ExpiresAt)
}

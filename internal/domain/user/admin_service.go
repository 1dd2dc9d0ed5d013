// internal/domain/user/admin_service.go
package user

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/your-org/fashion-store/internal/config"
	"github.com/your-org/fashion-store/internal/pkg/apperror"
	"github.com/your-org/fashion-store/internal/pkg/auth"
	"github.com/your-org/fashion-store/internal/pkg/pagination"
	"gorm.io/gorm"
)

// AdminService handles back-office account management
type AdminService struct {
	db     *gorm.DB
	config *config.Config
	logger *logrus.Logger
}

// NewAdminService creates a new admin service
func NewAdminService(db *gorm.DB, cfg *config.Config, logger *logrus.Logger) *AdminService {
	return &AdminService{
		db:     db,
		config: cfg,
		logger: logger,
	}
}

// UserListRequest represents user list query parameters
type UserListRequest struct {
	pagination.Params
	Search string    `form:"search"`
	Role   auth.Role `form:"role"`
}

// UserListResponse represents paginated user list response
type UserListResponse struct {
	Users      []UserWithStats       `json:"users"`
	Pagination pagination.Pagination `json:"pagination"`
}

// UserWithStats adds order activity to a user row
type UserWithStats struct {
	User
	OrderCount int64 `json:"order_count"`
}

type RoleUpdateRequest struct {
	Role auth.Role `json:"role" binding:"required"`
}

type StatusUpdateRequest struct {
	IsActive bool `json:"is_active"`
}

// ListUsers returns accounts, newest first, with their order counts
func (s *AdminService) ListUsers(ctx context.Context, req *UserListRequest) (*UserListResponse, error) {
	req.Normalize(s.config.Store.PageSize, s.config.Store.MaxPageSize)

	query := s.db.WithContext(ctx).Model(&User{})

	if search := strings.TrimSpace(req.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(users.email) LIKE ? OR LOWER(users.username) LIKE ? OR LOWER(users.full_name) LIKE ?", pattern, pattern, pattern)
	}
	if req.Role != "" {
		if !req.Role.Valid() {
			return nil, apperror.Validation("unknown role %q", req.Role)
		}
		query = query.Where("users.role = ?", req.Role)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, apperror.Persistence("count users", err)
	}

	var users []UserWithStats
	err := query.
		Select("users.*, (SELECT COUNT(*) FROM orders WHERE orders.user_id = users.id) AS order_count").
		Order("users.created_at DESC, users.id DESC").
		Offset(req.Offset()).
		Limit(req.Limit).
		Scan(&users).Error
	if err != nil {
		return nil, apperror.Persistence("list users", err)
	}

	return &UserListResponse{
		Users:      users,
		Pagination: pagination.New(req.Params, total),
	}, nil
}

// UpdateRole grants or revokes admin access. Admins cannot change their own role.
func (s *AdminService) UpdateRole(ctx context.Context, actorID, userID uint, role auth.Role) error {
	if !role.Valid() {
		return apperror.Validation("unknown role %q", role)
	}
	if actorID == userID {
		return apperror.Validation("cannot change your own role")
	}
	return s.update(ctx, userID, "role", role)
}

// UpdateStatus enables or disables an account. Admins cannot disable themselves.
func (s *AdminService) UpdateStatus(ctx context.Context, actorID, userID uint, active bool) error {
	if actorID == userID && !active {
		return apperror.Validation("cannot deactivate your own account")
	}
	return s.update(ctx, userID, "is_active", active)
}

func (s *AdminService) update(ctx context.Context, userID uint, column string, value interface{}) error {
	result := s.db.WithContext(ctx).Model(&User{}).Where("id = ?", userID).Update(column, value)
	if result.Error != nil {
		return apperror.Persistence("update user", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound("user")
	}

	s.logger.WithFields(logrus.Fields{
		"user_id": userID,
		column:    value,
	}).Info("User updated by admin")
	return nil
}

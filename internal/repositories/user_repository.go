package repositories

import (
	"context"
	"time"

	"github.com/SAP-F-2025/mmse-service/internal/models"
)

// UserRepository reads the local mirror of identity provider accounts.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByRole(ctx context.Context, role models.UserRole, limit, offset int) ([]*models.User, error)
	HasRole(ctx context.Context, id string, role models.UserRole) (bool, error)

	// Upsert refreshes name, email and role from token claims.
	Upsert(ctx context.Context, user *models.User) error
	UpdateLastLogin(ctx context.Context, id string, loginTime time.Time) error
}

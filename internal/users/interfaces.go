package users

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/spicepalace/spicepalace-backend/pkg/db/models"
)

// Repository defines persistence operations for users and their login codes.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateUser(ctx context.Context, id uuid.UUID, updates map[string]any) error
	CountUsers(ctx context.Context) (int64, error)

	CreateOTP(ctx context.Context, code *models.OTPCode) error
	LatestOTP(ctx context.Context, email string) (*models.OTPCode, error)
	MarkOTPVerified(ctx context.Context, id uuid.UUID) error
}

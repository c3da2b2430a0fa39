package database

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rpupo63/tenant-site-backend/models"
)

type UserRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{db}
}

// FindByEmail returns nil without error when the tenant has no such user
func (r *UserRepo) FindByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND email = ?", tenantID, strings.ToLower(strings.TrimSpace(email))).
		Limit(1).
		Find(&users).Error
	if err != nil {
		return nil, mapError(err, "user")
	}
	if len(users) == 0 {
		return nil, nil
	}
	return &users[0], nil
}

// FindByID returns a user of the tenant by its ID
func (r *UserRepo) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "tenant_id = ? AND id = ?", tenantID, id).Error; err != nil {
		return nil, mapError(err, "user")
	}
	return &user, nil
}

// Add inserts a new user into the database
func (r *UserRepo) Add(ctx context.Context, user *models.User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	return mapError(r.db.WithContext(ctx).Create(user).Error, "user")
}

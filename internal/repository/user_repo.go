package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/wandermatch/wandermatch/internal/db"
)

// UserRepository provides data access methods for the User model.
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new repository bound to the given DB
// connection (or transaction).
func NewUserRepository(database *gorm.DB) *UserRepository {
	return &UserRepository{db: database}
}

// GetByID fetches a user by primary key. Returns nil without error
// when absent.
func (r *UserRepository) GetByID(ctx context.Context, id uint64) (*db.User, error) {
	var user db.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdatePreferences replaces the user's preferred experience types and
// open preference map. The caller checks the user exists and marks the
// preference cache dirty. Struct updates with an explicit Select so the
// json serializers run and empty sets still overwrite.
func (r *UserRepository) UpdatePreferences(
	ctx context.Context,
	userID uint64,
	preferredTypes []string,
	preferences map[string]string,
) error {
	return r.db.WithContext(ctx).
		Model(&db.User{}).
		Where("id = ?", userID).
		Select("PreferredTypes", "Preferences").
		Updates(db.User{PreferredTypes: preferredTypes, Preferences: preferences}).Error
}

// StorePrefVector persists a freshly generated preference vector
// together with its generation timestamp.
func (r *UserRepository) StorePrefVector(
	ctx context.Context,
	userID uint64,
	vector []float32,
	generatedAt time.Time,
) error {
	return r.db.WithContext(ctx).
		Model(&db.User{}).
		Where("id = ?", userID).
		Select("PrefVector", "PrefGeneratedAt").
		Updates(db.User{PrefVector: vector, PrefGeneratedAt: &generatedAt}).Error
}

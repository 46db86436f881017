package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/cnc-voile/cantine-service/internal/models"
	"github.com/cnc-voile/cantine-service/internal/repositories"
)

type userRepository struct {
	db *gorm.DB
}

func NewUserPostgreSQL(db *gorm.DB) repositories.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, tx *gorm.DB, user *models.User) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Create(user).Error; err != nil {
		return r.handleDBError(err, "create user")
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.User, error) {
	db := r.getDB(tx)
	var user models.User

	if err := db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, r.handleDBError(err, "get user by id")
	}

	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, tx *gorm.DB, username string) (*models.User, error) {
	db := r.getDB(tx)
	var user models.User

	if err := db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, r.handleDBError(err, "get user by username")
	}

	return &user, nil
}

func (r *userRepository) List(ctx context.Context, tx *gorm.DB) ([]*models.User, error) {
	db := r.getDB(tx)
	var users []*models.User

	if err := db.WithContext(ctx).Order("name ASC").Find(&users).Error; err != nil {
		return nil, r.handleDBError(err, "list users")
	}

	return users, nil
}

func (r *userRepository) Update(ctx context.Context, tx *gorm.DB, user *models.User) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Save(user).Error; err != nil {
		return r.handleDBError(err, "update user")
	}
	return nil
}

// Delete removes a user. Their reservations go with them through the
// foreign key cascade.
func (r *userRepository) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := r.getDB(tx)

	result := db.WithContext(ctx).Delete(&models.User{}, id)
	if result.Error != nil {
		return r.handleDBError(result.Error, "delete user")
	}
	if result.RowsAffected == 0 {
		return r.handleDBError(gorm.ErrRecordNotFound, "delete user")
	}

	return nil
}

func (r *userRepository) UsernameExists(ctx context.Context, tx *gorm.DB, username string, excludeID uint) (bool, error) {
	db := r.getDB(tx)
	var count int64

	query := db.WithContext(ctx).Model(&models.User{}).Where("username = ?", username)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}

	if err := query.Count(&count).Error; err != nil {
		return false, r.handleDBError(err, "check username")
	}

	return count > 0, nil
}

func (r *userRepository) UsedShortIDs(ctx context.Context, tx *gorm.DB) ([]string, error) {
	db := r.getDB(tx)
	var ids []string

	if err := db.WithContext(ctx).
		Model(&models.User{}).
		Where("short_id IS NOT NULL").
		Pluck("short_id", &ids).Error; err != nil {
		return nil, r.handleDBError(err, "list used short ids")
	}

	return ids, nil
}

func (r *userRepository) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *userRepository) handleDBError(err error, operation string) error {
	return handleDBError(err, operation)
}

// handleDBError is a package-level helper for wrapping database errors.
// gorm sentinel errors stay reachable through errors.Is.
func handleDBError(err error, operation string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s failed: %w", operation, err)
}

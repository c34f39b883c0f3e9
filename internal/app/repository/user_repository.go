package repository

import (
	"github.com/dimaspr/belimart-backend/internal/app/model"
	"github.com/dimaspr/belimart-backend/pkg/logger"
	"gorm.io/gorm"
)

type UserRepository interface {
	Create(user *model.User) error
	FindByID(id uint) (*model.User, error)
	FindByEmail(email string) (*model.User, error)
	FindAll() ([]model.User, error)
	Update(user *model.User) error
	Delete(id uint) error
	AddLoyaltyPoints(id uint, points int) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(user *model.User) error {
	logger.Debug("Creating user in database", map[string]interface{}{
		"email": user.Email,
		"role":  user.Role,
	})

	if err := r.db.Create(user).Error; err != nil {
		logger.Error("Failed to create user in database", err, map[string]interface{}{
			"email": user.Email,
		})
		return err
	}

	logger.Debug("User created in database", map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
	})
	return nil
}

func (r *userRepository) FindByID(id uint) (*model.User, error) {
	logger.Debug("Finding user by ID in database", map[string]interface{}{
		"user_id": id,
	})

	var user model.User
	if err := r.db.First(&user, id).Error; err != nil {
		logger.Error("Failed to find user by ID in database", err, map[string]interface{}{
			"user_id": id,
		})
		return nil, err
	}

	logger.Debug("User found by ID in database", map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
	})
	return &user, nil
}

func (r *userRepository) FindByEmail(email string) (*model.User, error) {
	logger.Debug("Finding user by email in database", map[string]interface{}{
		"email": email,
	})

	var user model.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		logger.Error("Failed to find user by email in database", err, map[string]interface{}{
			"email": email,
		})
		return nil, err
	}

	logger.Debug("User found by email in database", map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
	})
	return &user, nil
}

func (r *userRepository) FindAll() ([]model.User, error) {
	logger.Debug("Finding all users in database", nil)

	var users []model.User
	if err := r.db.Order("created_at DESC").Find(&users).Error; err != nil {
		logger.Error("Failed to find all users in database", err, nil)
		return nil, err
	}

	logger.Debug("Users found in database", map[string]interface{}{
		"count": len(users),
	})
	return users, nil
}

func (r *userRepository) Update(user *model.User) error {
	logger.Debug("Updating user in database", map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
	})

	if err := r.db.Save(user).Error; err != nil {
		logger.Error("Failed to update user in database", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return err
	}

	logger.Debug("User updated in database", map[string]interface{}{
		"user_id": user.ID,
	})
	return nil
}

func (r *userRepository) Delete(id uint) error {
	logger.Debug("Deleting user from database", map[string]interface{}{
		"user_id": id,
	})

	if err := r.db.Delete(&model.User{}, id).Error; err != nil {
		logger.Error("Failed to delete user from database", err, map[string]interface{}{
			"user_id": id,
		})
		return err
	}

	logger.Debug("User deleted from database", map[string]interface{}{
		"user_id": id,
	})
	return nil
}

func (r *userRepository) AddLoyaltyPoints(id uint, points int) error {
	logger.Debug("Adding loyalty points in database", map[string]interface{}{
		"user_id": id,
		"points":  points,
	})

	if err := r.db.Model(&model.User{}).Where("id = ?", id).
		Update("loyalty_point", gorm.Expr("loyalty_point + ?", points)).Error; err != nil {
		logger.Error("Failed to add loyalty points in database", err, map[string]interface{}{
			"user_id": id,
			"points":  points,
		})
		return err
	}

	logger.Debug("Loyalty points added in database", map[string]interface{}{
		"user_id": id,
		"points":  points,
	})
	return nil
}

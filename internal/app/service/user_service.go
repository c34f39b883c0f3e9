package service

import (
	"github.com/dimaspr/belimart-backend/internal/app/model"
	"github.com/dimaspr/belimart-backend/internal/app/repository"
	"github.com/dimaspr/belimart-backend/pkg/logger"
)

// UserService exposes the admin-facing user operations
type UserService interface {
	ListUsers() ([]model.User, error)
}

type userService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) ListUsers() ([]model.User, error) {
	logger.Debug("Listing users", nil)

	users, err := s.userRepo.FindAll()
	if err != nil {
		logger.Error("Failed to list users", err, nil)
		return nil, err
	}

	logger.Debug("Users listed successfully", map[string]interface{}{
		"count": len(users),
	})
	return users, nil
}

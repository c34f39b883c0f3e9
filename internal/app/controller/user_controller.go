package controller

import (
	"net/http"

	"github.com/dimaspr/belimart-backend/internal/app/service"
	"github.com/dimaspr/belimart-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type UserController struct {
	userService service.UserService
}

func NewUserController(userService service.UserService) *UserController {
	return &UserController{
		userService: userService,
	}
}

// ListUsers returns all registered users (admin)
// GET /api/v1/admin/users
func (ctrl *UserController) ListUsers(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	users, err := ctrl.userService.ListUsers()
	if err != nil {
		log.Error("Failed to list users", err, nil)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to list users",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users": users,
		"count": len(users),
	})
}

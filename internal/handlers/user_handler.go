package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/crimi5361/IIPEA-BACKEND/models"
)

// UserHandler manages staff accounts. RDB may be nil; cache invalidation is
// then a no-op.
type UserHandler struct {
	DB  *gorm.DB
	RDB *redis.Client
}

func NewUserHandler(db *gorm.DB, rdb *redis.Client) *UserHandler {
	return &UserHandler{DB: db, RDB: rdb}
}

type CreateUserInput struct {
	Email    string `json:"email" binding:"required,email"`
	FullName string `json:"fullName" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
	RoleIDs  []uint `json:"roleIds"`
}

type UpdateUserInput struct {
	Email    *string `json:"email"`
	FullName *string `json:"fullName"`
	Password *string `json:"password"`
	RoleIDs  *[]uint `json:"roleIds"`
}

type UserResponse struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"fullName"`
	Roles     []string  `json:"roles"`
	CreatedAt time.Time `json:"createdAt"`
}

func userResponse(user models.User) UserResponse {
	roleNames := make([]string, 0, len(user.Roles))
	for _, role := range user.Roles {
		roleNames = append(roleNames, role.Name)
	}
	return UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		FullName:  user.FullName,
		Roles:     roleNames,
		CreatedAt: user.CreatedAt,
	}
}

// List returns users with their roles, paginated unless all=true.
func (h *UserHandler) List(c *gin.Context) {
	var users []models.User
	query := h.DB.Preload("Roles").Order("id asc")

	if c.Query("all") == "true" {
		if err := query.Find(&users).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch users"})
			return
		}
		data := make([]UserResponse, 0, len(users))
		for _, user := range users {
			data = append(data, userResponse(user))
		}
		c.JSON(http.StatusOK, gin.H{"data": data})
		return
	}

	var totalRows int64
	h.DB.Model(&models.User{}).Count(&totalRows)

	if err := query.Scopes(Paginate(c)).Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch users"})
		return
	}
	data := make([]UserResponse, 0, len(users))
	for _, user := range users {
		data = append(data, userResponse(user))
	}
	c.JSON(http.StatusOK, CreatePaginatedResponse(c, data, totalRows))
}

func (h *UserHandler) Get(c *gin.Context) {
	var user models.User
	if err := h.DB.Preload("Roles").First(&user, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": userResponse(user)})
}

// Create registers a staff account with a hashed password and its roles.
func (h *UserHandler) Create(c *gin.Context) {
	var input CreateUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	user := models.User{
		Email:        input.Email,
		FullName:     input.FullName,
		PasswordHash: string(hash),
	}
	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		if len(input.RoleIDs) > 0 {
			var roles []models.Role
			if err := tx.Where("id IN ?", input.RoleIDs).Find(&roles).Error; err != nil {
				return err
			}
			if err := tx.Model(&user).Association("Roles").Replace(roles); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user: " + err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": userResponse(user)})
}

// Update patches an account; a role or password change invalidates the
// user's cached session data.
func (h *UserHandler) Update(c *gin.Context) {
	var user models.User
	if err := h.DB.Preload("Roles").First(&user, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var input UpdateUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if input.Email != nil {
			user.Email = *input.Email
		}
		if input.FullName != nil {
			user.FullName = *input.FullName
		}
		if input.Password != nil {
			hash, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
			if err != nil {
				return err
			}
			user.PasswordHash = string(hash)
		}
		if err := tx.Save(&user).Error; err != nil {
			return err
		}
		if input.RoleIDs != nil {
			var roles []models.Role
			if len(*input.RoleIDs) > 0 {
				if err := tx.Where("id IN ?", *input.RoleIDs).Find(&roles).Error; err != nil {
					return err
				}
			}
			if err := tx.Model(&user).Association("Roles").Replace(roles); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user: " + err.Error()})
		return
	}

	h.invalidateUserCache(c, user.ID)
	c.JSON(http.StatusOK, gin.H{"success": true, "data": userResponse(user)})
}

func (h *UserHandler) Delete(c *gin.Context) {
	result := h.DB.Delete(&models.User{}, c.Param("id"))
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete user"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *UserHandler) invalidateUserCache(c *gin.Context, userID uint) {
	if h.RDB == nil {
		return
	}
	key := fmt.Sprintf("user:%d:data", userID)
	if err := h.RDB.Del(c.Request.Context(), key).Err(); err != nil {
		slog.Warn("Failed to invalidate user cache", "error", err, "user_id", userID)
	}
}

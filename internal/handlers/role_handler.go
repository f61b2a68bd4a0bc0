package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/crimi5361/IIPEA-BACKEND/models"
)

// RoleHandler manages roles and their permission sets.
type RoleHandler struct {
	DB  *gorm.DB
	RDB *redis.Client
}

func NewRoleHandler(db *gorm.DB, rdb *redis.Client) *RoleHandler {
	return &RoleHandler{DB: db, RDB: rdb}
}

type RoleInput struct {
	Name          string `json:"name" binding:"required"`
	Description   string `json:"description"`
	PermissionIDs []uint `json:"permissionIds"`
}

// List returns roles with their permissions, paginated unless all=true.
func (h *RoleHandler) List(c *gin.Context) {
	var roles []models.Role
	query := h.DB.Preload("Permissions").Order("name")

	if c.Query("all") == "true" {
		if err := query.Find(&roles).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch roles"})
			return
		}
		if roles == nil {
			roles = make([]models.Role, 0)
		}
		c.JSON(http.StatusOK, gin.H{"data": roles})
		return
	}

	var totalRows int64
	h.DB.Model(&models.Role{}).Count(&totalRows)

	if err := query.Scopes(Paginate(c)).Find(&roles).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch roles"})
		return
	}
	if roles == nil {
		roles = make([]models.Role, 0)
	}
	c.JSON(http.StatusOK, CreatePaginatedResponse(c, roles, totalRows))
}

func (h *RoleHandler) Get(c *gin.Context) {
	var role models.Role
	if err := h.DB.Preload("Permissions").First(&role, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Role not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": role})
}

func (h *RoleHandler) Create(c *gin.Context) {
	var input RoleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	role := models.Role{Name: input.Name, Description: input.Description}
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&role).Error; err != nil {
			return err
		}
		if len(input.PermissionIDs) > 0 {
			var permissions []models.Permission
			if err := tx.Where("id IN ?", input.PermissionIDs).Find(&permissions).Error; err != nil {
				return err
			}
			if err := tx.Model(&role).Association("Permissions").Replace(permissions); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create role: " + err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": role})
}

// Update replaces a role's name, description and permission set, then
// drops the cached session data of every user holding the role.
func (h *RoleHandler) Update(c *gin.Context) {
	var role models.Role
	if err := h.DB.First(&role, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Role not found"})
		return
	}

	var input RoleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	role.Name = input.Name
	role.Description = input.Description

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&role).Error; err != nil {
			return err
		}
		var permissions []models.Permission
		if len(input.PermissionIDs) > 0 {
			if err := tx.Where("id IN ?", input.PermissionIDs).Find(&permissions).Error; err != nil {
				return err
			}
		}
		return tx.Model(&role).Association("Permissions").Replace(permissions)
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update role: " + err.Error()})
		return
	}

	h.invalidateRoleMembers(c, role)
	c.JSON(http.StatusOK, gin.H{"success": true, "data": role})
}

func (h *RoleHandler) Delete(c *gin.Context) {
	result := h.DB.Delete(&models.Role{}, c.Param("id"))
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete role"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Role not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *RoleHandler) invalidateRoleMembers(c *gin.Context, role models.Role) {
	if h.RDB == nil {
		return
	}

	var userIDs []uint
	h.DB.Table("user_roles").Where("role_id = ?", role.ID).Pluck("user_id", &userIDs)
	if len(userIDs) == 0 {
		return
	}

	ctx := c.Request.Context()
	for _, userID := range userIDs {
		key := fmt.Sprintf("user:%d:data", userID)
		if err := h.RDB.Del(ctx, key).Err(); err != nil {
			slog.Warn("Failed to invalidate cache for user", "error", err, "user_id", userID)
		}
	}
	slog.Info("Invalidated cached permissions after role update", "role", role.Name, "user_count", len(userIDs))
}

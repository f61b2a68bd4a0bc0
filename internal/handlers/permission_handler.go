package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/crimi5361/IIPEA-BACKEND/models"
)

// PermissionHandler manages the permission catalog.
type PermissionHandler struct {
	DB *gorm.DB
}

func NewPermissionHandler(db *gorm.DB) *PermissionHandler {
	return &PermissionHandler{DB: db}
}

type PermissionInput struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Category    string `json:"category" binding:"required"`
}

func (h *PermissionHandler) List(c *gin.Context) {
	var permissions []models.Permission
	if err := h.DB.Order("category asc, name asc").Find(&permissions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch permissions"})
		return
	}
	if permissions == nil {
		permissions = make([]models.Permission, 0)
	}
	c.JSON(http.StatusOK, gin.H{"data": permissions})
}

func (h *PermissionHandler) Create(c *gin.Context) {
	var input PermissionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	permission := models.Permission{
		Name:        input.Name,
		Description: input.Description,
		Category:    input.Category,
	}
	if err := h.DB.Create(&permission).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create permission"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": permission})
}

func (h *PermissionHandler) Update(c *gin.Context) {
	var permission models.Permission
	if err := h.DB.First(&permission, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Permission not found"})
		return
	}
	var input PermissionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	permission.Name = input.Name
	permission.Description = input.Description
	permission.Category = input.Category

	if err := h.DB.Save(&permission).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update permission"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": permission})
}

// Delete removes a permission unless a role still references it.
func (h *PermissionHandler) Delete(c *gin.Context) {
	id := c.Param("id")

	var count int64
	h.DB.Table("role_permissions").Where("permission_id = ?", id).Count(&count)
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Cannot delete permission: it is assigned to one or more roles"})
		return
	}

	result := h.DB.Delete(&models.Permission{}, id)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete permission"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Permission not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/crimi5361/IIPEA-BACKEND/models"
)

// CatalogHandler serves the academic catalog: program categories, programs
// with their levels, and curricula.
type CatalogHandler struct {
	DB *gorm.DB
}

func NewCatalogHandler(db *gorm.DB) *CatalogHandler {
	return &CatalogHandler{DB: db}
}

type CreateProgramInput struct {
	Name       string             `json:"name" binding:"required"`
	ShortCode  string             `json:"shortCode" binding:"required"`
	CategoryID uint               `json:"categoryId" binding:"required"`
	Levels     []CreateLevelInput `json:"levels" binding:"required,min=1,dive"`
}

type CreateLevelInput struct {
	Label         string  `json:"label" binding:"required"`
	TuitionAmount float64 `json:"tuitionAmount" binding:"required,gt=0"`
}

func (h *CatalogHandler) ListCategories(c *gin.Context) {
	var categories []models.ProgramCategory
	if err := h.DB.Order("name").Find(&categories).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": categories})
}

func (h *CatalogHandler) ListPrograms(c *gin.Context) {
	var programs []models.Program
	query := h.DB.Preload("Category").Preload("Levels").Order("name")
	if categoryID := c.Query("category_id"); categoryID != "" {
		query = query.Where("category_id = ?", categoryID)
	}
	if err := query.Find(&programs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": programs})
}

// CreateProgram creates a program together with its levels and their
// tuition amounts in one transaction.
func (h *CatalogHandler) CreateProgram(c *gin.Context) {
	var input CreateProgramInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides: " + err.Error()})
		return
	}

	var program models.Program
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		var category models.ProgramCategory
		if err := tx.First(&category, input.CategoryID).Error; err != nil {
			return err
		}

		program = models.Program{
			Name:       input.Name,
			ShortCode:  input.ShortCode,
			CategoryID: category.ID,
		}
		if err := tx.Create(&program).Error; err != nil {
			return err
		}

		for _, lvl := range input.Levels {
			level := models.Level{
				Label:         lvl.Label,
				TuitionAmount: lvl.TuitionAmount,
				ProgramID:     program.ID,
			}
			if err := tx.Create(&level).Error; err != nil {
				return err
			}
		}
		return tx.Preload("Category").Preload("Levels").First(&program, program.ID).Error
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Impossible de créer la filière: " + err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": program})
}

// ListLevels returns the levels of one program, tuition amounts included.
func (h *CatalogHandler) ListLevels(c *gin.Context) {
	var levels []models.Level
	if err := h.DB.Where("program_id = ?", c.Param("id")).Order("label").Find(&levels).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": levels})
}

func (h *CatalogHandler) ListCurricula(c *gin.Context) {
	var curricula []models.Curriculum
	if err := h.DB.Order("track_type").Find(&curricula).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": curricula})
}

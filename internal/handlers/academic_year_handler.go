package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/crimi5361/IIPEA-BACKEND/models"
)

// AcademicYearHandler manages academic years. At most one year is open at
// any time; new enrollments attach to the open year.
type AcademicYearHandler struct {
	DB *gorm.DB
}

func NewAcademicYearHandler(db *gorm.DB) *AcademicYearHandler {
	return &AcademicYearHandler{DB: db}
}

type CreateAcademicYearInput struct {
	Label string `json:"label" binding:"required"`
}

func (h *AcademicYearHandler) List(c *gin.Context) {
	var years []models.AcademicYear
	if err := h.DB.Order("label DESC").Find(&years).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": years})
}

// Current returns the open year, or null when every year is closed.
func (h *AcademicYearHandler) Current(c *gin.Context) {
	var year models.AcademicYear
	err := h.DB.Where("state = ?", models.YearOpen).First(&year).Error
	if err == gorm.ErrRecordNotFound {
		c.JSON(http.StatusOK, gin.H{"success": true, "data": nil})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": year})
}

// Create opens a new academic year. It fails while another year is still
// open: close the running year first.
func (h *AcademicYearHandler) Create(c *gin.Context) {
	var input CreateAcademicYearInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides: " + err.Error()})
		return
	}

	var year models.AcademicYear
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		var open int64
		if err := tx.Model(&models.AcademicYear{}).
			Where("state = ?", models.YearOpen).
			Count(&open).Error; err != nil {
			return err
		}
		if open > 0 {
			return errYearStillOpen
		}
		year = models.AcademicYear{Label: input.Label, State: models.YearOpen}
		return tx.Create(&year).Error
	})
	if err == errYearStillOpen {
		c.JSON(http.StatusConflict, gin.H{"error": "Une année académique est déjà ouverte"})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Impossible de créer l'année: " + err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": year})
}

// Close marks a year closed. Closed years keep their students and ledgers
// for consultation.
func (h *AcademicYearHandler) Close(c *gin.Context) {
	h.setState(c, models.YearClosed)
}

// Reopen reopens a closed year, provided no other year is open.
func (h *AcademicYearHandler) Reopen(c *gin.Context) {
	h.setState(c, models.YearOpen)
}

var errYearStillOpen = errors.New("une année académique est déjà ouverte")

func (h *AcademicYearHandler) setState(c *gin.Context, state string) {
	id := c.Param("id")

	var year models.AcademicYear
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&year, id).Error; err != nil {
			return err
		}
		if state == models.YearOpen {
			var open int64
			if err := tx.Model(&models.AcademicYear{}).
				Where("state = ? AND id <> ?", models.YearOpen, year.ID).
				Count(&open).Error; err != nil {
				return err
			}
			if open > 0 {
				return errYearStillOpen
			}
		}
		year.State = state
		return tx.Model(&year).Update("state", state).Error
	})
	if err == gorm.ErrRecordNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "Année non trouvée"})
		return
	}
	if err == errYearStillOpen {
		c.JSON(http.StatusConflict, gin.H{"error": "Une année académique est déjà ouverte"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": year})
}

package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/crimi5361/IIPEA-BACKEND/internal/services"
	"github.com/crimi5361/IIPEA-BACKEND/models"
)

// WaiverHandler exposes the fee-waiver ("prise en charge") workflow: a
// request queue feeding an approve/reject decision endpoint.
type WaiverHandler struct {
	DB      *gorm.DB
	Waivers *services.WaiverService
}

func NewWaiverHandler(db *gorm.DB, waivers *services.WaiverService) *WaiverHandler {
	return &WaiverHandler{DB: db, Waivers: waivers}
}

type RequestWaiverInput struct {
	StudentID  uint    `json:"studentId" binding:"required"`
	Type       string  `json:"type" binding:"required"`
	Percentage float64 `json:"percentage" binding:"required"`
	Reference  string  `json:"reference"`
}

type DecideWaiverInput struct {
	Decision        string `json:"decision" binding:"required"`
	RejectionReason string `json:"rejectionReason"`
}

// Request files a new pending waiver for a student.
func (h *WaiverHandler) Request(c *gin.Context) {
	var input RequestWaiverInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides: " + err.Error()})
		return
	}

	userID, ok := c.Get("user_id")
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	result, err := h.Waivers.Request(input.StudentID, input.Type, input.Percentage, input.Reference, userID.(uint))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": result})
}

// Decide approves or rejects a pending waiver.
func (h *WaiverHandler) Decide(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID invalide"})
		return
	}

	var input DecideWaiverInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	userID, ok := c.Get("user_id")
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	result, err := h.Waivers.Resolve(uint(id), input.Decision, userID.(uint), input.RejectionReason)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": result})
}

// ActiveByStudent returns the student's approved waiver, or null when none
// exists.
func (h *WaiverHandler) ActiveByStudent(c *gin.Context) {
	studentID := c.Param("id")

	var waiver models.FeeWaiver
	err := h.DB.Where("student_id = ? AND status = ?", studentID, models.WaiverApproved).First(&waiver).Error
	if err == gorm.ErrRecordNotFound {
		c.JSON(http.StatusOK, gin.H{"success": true, "data": nil})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la récupération de la prise en charge"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": waiver})
}

// PendingQueue lists waivers awaiting a decision, oldest first.
func (h *WaiverHandler) PendingQueue(c *gin.Context) {
	var waivers []models.FeeWaiver
	err := h.DB.Preload("Student").
		Where("status = ?", models.WaiverPending).
		Order("created_at asc").
		Find(&waivers).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Impossible de récupérer la file d'attente"})
		return
	}

	if waivers == nil {
		waivers = make([]models.FeeWaiver, 0)
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": waivers})
}

// ListByStudent returns a student's full waiver history.
func (h *WaiverHandler) ListByStudent(c *gin.Context) {
	studentID := c.Param("id")

	var waivers []models.FeeWaiver
	err := h.DB.Where("student_id = ?", studentID).Order("created_at desc").Find(&waivers).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Impossible de récupérer les prises en charge"})
		return
	}

	if waivers == nil {
		waivers = make([]models.FeeWaiver, 0)
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": waivers})
}

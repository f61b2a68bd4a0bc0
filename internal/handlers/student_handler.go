package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/crimi5361/IIPEA-BACKEND/models"
)

// StudentHandler carries the database handle for the student CRUD.
type StudentHandler struct {
	DB *gorm.DB
}

func NewStudentHandler(db *gorm.DB) *StudentHandler {
	return &StudentHandler{DB: db}
}

type CreateStudentInput struct {
	Matricule      string     `json:"matricule" binding:"required"`
	LastName       string     `json:"lastName" binding:"required"`
	FirstName      string     `json:"firstName" binding:"required"`
	Email          string     `json:"email"`
	Phone          string     `json:"phone"`
	Gender         string     `json:"gender"`
	BirthDate      *time.Time `json:"birthDate"`
	ProgramID      uint       `json:"programId" binding:"required"`
	LevelID        uint       `json:"levelId" binding:"required"`
	CurriculumID   *uint      `json:"curriculumId"`
	AcademicYearID uint       `json:"academicYearId" binding:"required"`

	// TuitionDue overrides the level's tuition amount when set.
	TuitionDue *float64 `json:"tuitionDue"`
}

// UpdateStudentInput is the explicit patch struct for partial updates: only
// non-nil fields are applied, with the same validation as creation.
type UpdateStudentInput struct {
	LastName     *string    `json:"lastName"`
	FirstName    *string    `json:"firstName"`
	Email        *string    `json:"email"`
	Phone        *string    `json:"phone"`
	Gender       *string    `json:"gender"`
	BirthDate    *time.Time `json:"birthDate"`
	CurriculumID *uint      `json:"curriculumId"`
}

type StudentListItem struct {
	ID        uint   `json:"id"`
	Matricule string `json:"matricule"`
	LastName  string `json:"lastName"`
	FirstName string `json:"firstName"`
	Standing  string `json:"standing"`
	GroupName string `json:"groupName"`
	Program   string `json:"program"`
	Level     string `json:"level"`
}

// Create registers a student together with their zeroed tuition ledger in
// one transaction. The student stays pending (no group) until the first
// payment comes in.
func (h *StudentHandler) Create(c *gin.Context) {
	var input CreateStudentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides: " + err.Error()})
		return
	}

	userID, ok := c.Get("user_id")
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var student models.Student
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		var level models.Level
		if err := tx.First(&level, input.LevelID).Error; err != nil {
			return err
		}

		due := level.TuitionAmount
		if input.TuitionDue != nil {
			due = *input.TuitionDue
		}

		ledger := models.TuitionLedger{
			TotalDue:  due,
			Remaining: due,
			Status:    models.LedgerUnsettled,
		}
		if err := tx.Create(&ledger).Error; err != nil {
			return err
		}

		student = models.Student{
			Matricule:      strings.ToUpper(strings.TrimSpace(input.Matricule)),
			LastName:       strings.ToUpper(input.LastName),
			FirstName:      input.FirstName,
			Email:          input.Email,
			Phone:          input.Phone,
			Gender:         input.Gender,
			BirthDate:      input.BirthDate,
			Standing:       models.StandingPending,
			LedgerID:       ledger.ID,
			ProgramID:      input.ProgramID,
			LevelID:        input.LevelID,
			CurriculumID:   input.CurriculumID,
			AcademicYearID: input.AcademicYearID,
			EnrolledByID:   userID.(uint),
		}
		return tx.Create(&student).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Impossible de créer l'étudiant: " + err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": student})
}

// List returns students with pagination and search over matricule and
// names.
func (h *StudentHandler) List(c *gin.Context) {
	var students []StudentListItem
	var totalRows int64

	baseQuery := h.DB.Table("students s").
		Joins("LEFT JOIN groups g ON s.group_id = g.id").
		Joins("LEFT JOIN programs p ON s.program_id = p.id").
		Joins("LEFT JOIN levels l ON s.level_id = l.id").
		Where("s.deleted_at IS NULL")

	if search := c.Query("search"); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		baseQuery = baseQuery.Where(
			"LOWER(s.matricule) LIKE ? OR LOWER(s.last_name) LIKE ? OR LOWER(s.first_name) LIKE ?",
			pattern, pattern, pattern,
		)
	}

	if standing := c.Query("standing"); standing != "" {
		baseQuery = baseQuery.Where("s.standing = ?", standing)
	}

	baseQuery.Count(&totalRows)

	err := baseQuery.Select(`
			s.id, s.matricule, s.last_name, s.first_name, s.standing,
			COALESCE(g.name, '') AS group_name,
			COALESCE(p.name, '') AS program,
			COALESCE(l.label, '') AS level
		`).
		Scopes(Paginate(c)).
		Order("s.last_name, s.first_name").
		Scan(&students).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Impossible de récupérer les étudiants"})
		return
	}

	if students == nil {
		students = make([]StudentListItem, 0)
	}
	c.JSON(http.StatusOK, CreatePaginatedResponse(c, students, totalRows))
}

// Get returns one student with their ledger, group and waiver history.
func (h *StudentHandler) Get(c *gin.Context) {
	id := c.Param("id")

	var student models.Student
	err := h.DB.Preload("Ledger").Preload("Group").Preload("Program").
		Preload("Level").Preload("AcademicYear").Preload("Waivers").
		First(&student, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Étudiant non trouvé"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": student})
}

// Update applies a partial update. Identity, ledger and placement fields
// are deliberately not patchable here; placement only changes through the
// payment workflow.
func (h *StudentHandler) Update(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID étudiant invalide"})
		return
	}

	var student models.Student
	if err := h.DB.First(&student, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Étudiant non trouvé"})
		return
	}

	var input UpdateStudentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides: " + err.Error()})
		return
	}

	if input.LastName != nil {
		if strings.TrimSpace(*input.LastName) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Le nom ne peut pas être vide"})
			return
		}
		student.LastName = strings.ToUpper(*input.LastName)
	}
	if input.FirstName != nil {
		if strings.TrimSpace(*input.FirstName) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Le prénom ne peut pas être vide"})
			return
		}
		student.FirstName = *input.FirstName
	}
	if input.Email != nil {
		student.Email = *input.Email
	}
	if input.Phone != nil {
		student.Phone = *input.Phone
	}
	if input.Gender != nil {
		student.Gender = *input.Gender
	}
	if input.BirthDate != nil {
		student.BirthDate = input.BirthDate
	}
	if input.CurriculumID != nil {
		student.CurriculumID = input.CurriculumID
	}

	if err := h.DB.Save(&student).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Impossible de mettre à jour l'étudiant"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": student})
}

// Delete soft-deletes a student.
func (h *StudentHandler) Delete(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID étudiant invalide"})
		return
	}

	if err := h.DB.Delete(&models.Student{}, id).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Impossible de supprimer l'étudiant"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Étudiant supprimé"})
}

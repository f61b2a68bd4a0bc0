package handlers

import (
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/crimi5361/IIPEA-BACKEND/internal/services"
	"github.com/crimi5361/IIPEA-BACKEND/models"
)

// ClassHandler serves the class and group views plus the group re-division
// operation.
type ClassHandler struct {
	DB *gorm.DB
}

func NewClassHandler(db *gorm.DB) *ClassHandler {
	return &ClassHandler{DB: db}
}

type ClassListItem struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Program     string `json:"program"`
	Level       string `json:"level"`
	GroupCount  int    `json:"groupCount"`
	MemberCount int    `json:"memberCount"`
}

type GroupView struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
	Members  int64  `json:"members"`
	FillRate int    `json:"fillRate"`
}

type DivideGroupsInput struct {
	GroupCount int `json:"groupCount"`
	Capacity   int `json:"capacity"`
}

// List returns every class with its group and member counts.
func (h *ClassHandler) List(c *gin.Context) {
	var classes []ClassListItem
	err := h.DB.Table("classes c").
		Joins("LEFT JOIN programs p ON c.program_id = p.id").
		Joins("LEFT JOIN levels l ON c.level_id = l.id").
		Joins("LEFT JOIN groups g ON g.class_id = c.id AND g.deleted_at IS NULL").
		Joins("LEFT JOIN students s ON s.group_id = g.id AND s.deleted_at IS NULL").
		Where("c.deleted_at IS NULL").
		Select(`
			c.id, c.name, c.description,
			COALESCE(p.name, '') AS program,
			COALESCE(l.label, '') AS level,
			COUNT(DISTINCT g.id) AS group_count,
			COUNT(DISTINCT s.id) AS member_count
		`).
		Group("c.id, c.name, c.description, p.name, l.label").
		Order("c.name").
		Scan(&classes).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Impossible de récupérer les classes"})
		return
	}

	if classes == nil {
		classes = make([]ClassListItem, 0)
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": classes})
}

// Get returns one class with its groups and their fill rates.
func (h *ClassHandler) Get(c *gin.Context) {
	id := c.Param("id")

	var class models.Class
	if err := h.DB.Preload("Program").Preload("Level").First(&class, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Classe non trouvée"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		}
		return
	}

	groups, err := h.groupViews(h.DB, class.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Impossible de récupérer les groupes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{
		"id":          class.ID,
		"name":        class.Name,
		"description": class.Description,
		"program":     class.Program,
		"level":       class.Level,
		"groups":      groups,
	}})
}

// Groups returns the groups of a class with member counts and remaining
// places.
func (h *ClassHandler) Groups(c *gin.Context) {
	classID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID classe invalide"})
		return
	}

	groups, err := h.groupViews(h.DB, uint(classID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Impossible de récupérer les groupes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": groups})
}

// Divide re-splits the members of a class into evenly filled groups. The
// caller names either a target group count or a capacity per group; the
// other value is derived. The reshuffle is all-or-nothing.
func (h *ClassHandler) Divide(c *gin.Context) {
	classID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID classe invalide"})
		return
	}

	var input DivideGroupsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides: " + err.Error()})
		return
	}
	if input.GroupCount <= 0 && input.Capacity <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "groupCount ou capacity doit être renseigné"})
		return
	}

	var summary gin.H
	err = h.DB.Transaction(func(tx *gorm.DB) error {
		var class models.Class
		if err := tx.First(&class, classID).Error; err != nil {
			return err
		}

		var groups []models.Group
		if err := tx.Where("class_id = ?", class.ID).Order("name").Find(&groups).Error; err != nil {
			return err
		}
		if len(groups) == 0 {
			return fmt.Errorf("aucun groupe pour la classe %s", class.Name)
		}

		var studentIDs []uint
		groupIDs := make([]uint, 0, len(groups))
		for _, g := range groups {
			groupIDs = append(groupIDs, g.ID)
		}
		if err := tx.Model(&models.Student{}).
			Where("group_id IN ?", groupIDs).
			Order("id").
			Pluck("id", &studentIDs).Error; err != nil {
			return err
		}
		if len(studentIDs) == 0 {
			return fmt.Errorf("aucun étudiant dans la classe %s", class.Name)
		}

		total := len(studentIDs)
		groupCount := input.GroupCount
		capacity := input.Capacity
		if capacity > 0 {
			groupCount = int(math.Ceil(float64(total) / float64(capacity)))
		} else {
			capacity = int(math.Ceil(float64(total) / float64(groupCount)))
		}

		// Resize existing groups and create the missing ones.
		for i := range groups {
			if groups[i].Capacity != capacity {
				if err := tx.Model(&groups[i]).Update("capacity", capacity).Error; err != nil {
					return err
				}
			}
		}
		for n := len(groups) + 1; n <= groupCount; n++ {
			group := models.Group{
				Name:     services.GroupName(class.Name, n),
				Capacity: capacity,
				ClassID:  class.ID,
			}
			if err := tx.Create(&group).Error; err != nil {
				return err
			}
			groups = append(groups, group)
		}

		// Deal members out in stable id order.
		perGroup := int(math.Ceil(float64(total) / float64(groupCount)))
		for i, studentID := range studentIDs {
			target := groups[i/perGroup]
			if err := tx.Model(&models.Student{}).
				Where("id = ?", studentID).
				Update("group_id", target.ID).Error; err != nil {
				return err
			}
		}

		summary = gin.H{
			"memberCount": total,
			"groupCount":  groupCount,
			"capacity":    capacity,
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": summary})
}

func (h *ClassHandler) groupViews(db *gorm.DB, classID uint) ([]GroupView, error) {
	var groups []models.Group
	if err := db.Where("class_id = ?", classID).Order("name").Find(&groups).Error; err != nil {
		return nil, err
	}

	views := make([]GroupView, 0, len(groups))
	for _, g := range groups {
		var members int64
		if err := db.Model(&models.Student{}).Where("group_id = ?", g.ID).Count(&members).Error; err != nil {
			return nil, err
		}
		fill := 0
		if g.Capacity > 0 {
			fill = int(math.Round(float64(members) / float64(g.Capacity) * 100))
		}
		views = append(views, GroupView{
			ID:       g.ID,
			Name:     g.Name,
			Capacity: g.Capacity,
			Members:  members,
			FillRate: fill,
		})
	}
	return views, nil
}

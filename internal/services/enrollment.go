package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/crimi5361/IIPEA-BACKEND/config"
	"github.com/crimi5361/IIPEA-BACKEND/models"
)

// ClassLabel derives the canonical class name from a program and a level,
// e.g. "Informatique INFO Licence 1".
func ClassLabel(program *models.Program, level *models.Level) string {
	return fmt.Sprintf("%s %s %s", program.Name, program.ShortCode, level.Label)
}

// GroupName numbers groups sequentially under their class.
func GroupName(classLabel string, n int) string {
	return fmt.Sprintf("%s Groupe %d", classLabel, n)
}

// forUpdate adds a row lock on Postgres. SQLite, used by the tests, has no
// FOR UPDATE; its transactions already serialize writers.
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// assignFirstPaymentGroup places a pending student into a group with spare
// capacity, creating the class and group on demand, and flips the student
// to enrolled. It runs inside the payment transaction: a failure here rolls
// back the ledger update and the payment record too.
func assignFirstPaymentGroup(tx *gorm.DB, cfg *config.Config, student *models.Student) (*models.Group, error) {
	var program models.Program
	if err := tx.Preload("Category").First(&program, student.ProgramID).Error; err != nil {
		return nil, wrapDBError(err)
	}
	var level models.Level
	if err := tx.First(&level, student.LevelID).Error; err != nil {
		return nil, wrapDBError(err)
	}

	label := ClassLabel(&program, &level)

	var class models.Class
	err := tx.Where("name = ?", label).First(&class).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		class = models.Class{
			Name:        label,
			Description: fmt.Sprintf("Classe pour %s", label),
			ProgramID:   program.ID,
			LevelID:     level.ID,
		}
		if err := tx.Create(&class).Error; err != nil {
			return nil, wrapDBError(err)
		}
	} else if err != nil {
		return nil, wrapDBError(err)
	}

	capacity := cfg.GroupCapacityDefault
	if program.Category != nil {
		capacity = cfg.GroupCapacity(program.Category.Name)
	}

	// Lock the class's groups so two first payments cannot both take the
	// last free slot; the member count below stays stable until commit.
	var groups []models.Group
	if err := forUpdate(tx).Where("class_id = ?", class.ID).Order("name").Find(&groups).Error; err != nil {
		return nil, wrapDBError(err)
	}

	var target *models.Group
	for i := range groups {
		var members int64
		if err := tx.Model(&models.Student{}).Where("group_id = ?", groups[i].ID).Count(&members).Error; err != nil {
			return nil, wrapDBError(err)
		}
		if members < int64(groups[i].Capacity) {
			target = &groups[i]
			break
		}
	}

	if target == nil {
		if cfg.MaxGroupsPerClass > 0 && len(groups) >= cfg.MaxGroupsPerClass {
			return nil, ErrGroupCapacityExhausted
		}
		group := models.Group{
			Name:     GroupName(label, len(groups)+1),
			Capacity: capacity,
			ClassID:  class.ID,
		}
		if err := tx.Create(&group).Error; err != nil {
			return nil, wrapDBError(err)
		}
		target = &group
	}

	updates := map[string]interface{}{
		"group_id": target.ID,
		"standing": models.StandingEnrolled,
	}
	if err := tx.Model(student).Updates(updates).Error; err != nil {
		return nil, wrapDBError(err)
	}
	return target, nil
}

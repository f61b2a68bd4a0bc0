package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crimi5361/IIPEA-BACKEND/models"
)

func TestClassLabel(t *testing.T) {
	program := &models.Program{Name: "Biology", ShortCode: "BIO"}
	level := &models.Level{Label: "Level1"}

	assert.Equal(t, "Biology BIO Level1", ClassLabel(program, level))
	assert.Equal(t, "Biology BIO Level1 Groupe 2", GroupName(ClassLabel(program, level), 2))
}

func TestOverflowCreatesNextGroup(t *testing.T) {
	f := newFixture(t)
	f.cfg.GroupCapacityDefault = 2
	svc := NewPaymentService(f.db, f.cfg)

	for i := 0; i < 3; i++ {
		student := f.newStudent(t, fmt.Sprintf("IIPEA-01%02d", i), 500000)
		_, err := svc.Record(student.ID, 100000, "especes", f.user.ID)
		require.NoError(t, err)
	}

	var groups []models.Group
	require.NoError(t, f.db.Order("name").Find(&groups).Error)
	require.Len(t, groups, 2)
	assert.Equal(t, "Biology BIO Level1 Groupe 1", groups[0].Name)
	assert.Equal(t, "Biology BIO Level1 Groupe 2", groups[1].Name)

	// One class only, created on demand with explicit program/level keys.
	var classes []models.Class
	require.NoError(t, f.db.Find(&classes).Error)
	require.Len(t, classes, 1)
	assert.Equal(t, f.program.ID, classes[0].ProgramID)
	assert.Equal(t, f.level.ID, classes[0].LevelID)
}

func TestCapacityNeverExceeded(t *testing.T) {
	f := newFixture(t)
	f.cfg.GroupCapacityDefault = 2
	svc := NewPaymentService(f.db, f.cfg)

	for i := 0; i < 5; i++ {
		student := f.newStudent(t, fmt.Sprintf("IIPEA-02%02d", i), 500000)
		_, err := svc.Record(student.ID, 100000, "especes", f.user.ID)
		require.NoError(t, err)
	}

	var groups []models.Group
	require.NoError(t, f.db.Order("name").Find(&groups).Error)
	require.Len(t, groups, 3)

	total := 0
	for _, g := range groups {
		var members int64
		f.db.Model(&models.Student{}).Where("group_id = ?", g.ID).Count(&members)
		assert.LessOrEqual(t, members, int64(g.Capacity), g.Name)
		total += int(members)
	}
	assert.Equal(t, 5, total)
}

func TestSmallCohortCapacityTier(t *testing.T) {
	f := newFixture(t)
	svc := NewPaymentService(f.db, f.cfg)

	category := models.ProgramCategory{Name: "BTS"}
	require.NoError(t, f.db.Create(&category).Error)
	program := models.Program{Name: "Comptabilite", ShortCode: "CPT", CategoryID: category.ID}
	require.NoError(t, f.db.Create(&program).Error)
	level := models.Level{Label: "BTS1", TuitionAmount: 350000, ProgramID: program.ID}
	require.NoError(t, f.db.Create(&level).Error)

	student := f.newStudent(t, "IIPEA-0301", 350000)
	require.NoError(t, f.db.Model(&models.Student{}).Where("id = ?", student.ID).
		Updates(map[string]interface{}{"program_id": program.ID, "level_id": level.ID}).Error)

	_, err := svc.Record(student.ID, 50000, "especes", f.user.ID)
	require.NoError(t, err)

	var group models.Group
	require.NoError(t, f.db.Where("name = ?", "Comptabilite CPT BTS1 Groupe 1").First(&group).Error)
	assert.Equal(t, f.cfg.GroupCapacitySmall, group.Capacity)
}

func TestGroupCreationCapRollsBackPayment(t *testing.T) {
	f := newFixture(t)
	f.cfg.GroupCapacityDefault = 1
	f.cfg.MaxGroupsPerClass = 1
	svc := NewPaymentService(f.db, f.cfg)

	first := f.newStudent(t, "IIPEA-0401", 500000)
	_, err := svc.Record(first.ID, 100000, "especes", f.user.ID)
	require.NoError(t, err)

	second := f.newStudent(t, "IIPEA-0402", 500000)
	_, err = svc.Record(second.ID, 100000, "especes", f.user.ID)
	assert.ErrorIs(t, err, ErrGroupCapacityExhausted)

	// The failed assignment must drag the ledger update down with it.
	ledger := f.ledgerOf(t, second)
	assert.Equal(t, 0.0, ledger.AmountPaid)
	var payments int64
	f.db.Model(&models.Payment{}).Where("student_id = ?", second.ID).Count(&payments)
	assert.Zero(t, payments)
}

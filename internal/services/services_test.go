package services

import (
	"fmt"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/crimi5361/IIPEA-BACKEND/config"
	"github.com/crimi5361/IIPEA-BACKEND/models"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{}, &models.Role{}, &models.Permission{},
		&models.AcademicYear{}, &models.ProgramCategory{}, &models.Program{},
		&models.Level{}, &models.Curriculum{}, &models.Class{}, &models.Group{},
		&models.TuitionLedger{}, &models.Student{}, &models.Payment{},
		&models.Receipt{}, &models.FeeWaiver{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		GroupCapacityDefault:  100,
		GroupCapacitySmall:    50,
		SmallCohortCategories: map[string]bool{"bts": true},
	}
}

type fixture struct {
	db      *gorm.DB
	cfg     *config.Config
	user    models.User
	year    models.AcademicYear
	program models.Program
	level   models.Level
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{db: setupDB(t), cfg: testConfig()}

	f.user = models.User{Email: "caissier@iipea.test", FullName: "Caissier Principal", PasswordHash: "x"}
	if err := f.db.Create(&f.user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}

	f.year = models.AcademicYear{Label: "2024-2025", State: models.YearOpen}
	if err := f.db.Create(&f.year).Error; err != nil {
		t.Fatalf("seed year: %v", err)
	}

	category := models.ProgramCategory{Name: "Licence"}
	if err := f.db.Create(&category).Error; err != nil {
		t.Fatalf("seed category: %v", err)
	}

	f.program = models.Program{Name: "Biology", ShortCode: "BIO", CategoryID: category.ID}
	if err := f.db.Create(&f.program).Error; err != nil {
		t.Fatalf("seed program: %v", err)
	}

	f.level = models.Level{Label: "Level1", TuitionAmount: 500000, ProgramID: f.program.ID}
	if err := f.db.Create(&f.level).Error; err != nil {
		t.Fatalf("seed level: %v", err)
	}

	return f
}

// newStudent creates a pending student with a fresh ledger owing the given
// amount.
func (f *fixture) newStudent(t *testing.T, matricule string, due float64) models.Student {
	t.Helper()

	ledger := models.TuitionLedger{TotalDue: due, Remaining: due, Status: models.LedgerUnsettled}
	if err := f.db.Create(&ledger).Error; err != nil {
		t.Fatalf("seed ledger: %v", err)
	}

	student := models.Student{
		Matricule:      matricule,
		LastName:       "KOUAME",
		FirstName:      "Awa",
		Standing:       models.StandingPending,
		LedgerID:       ledger.ID,
		ProgramID:      f.program.ID,
		LevelID:        f.level.ID,
		AcademicYearID: f.year.ID,
		EnrolledByID:   f.user.ID,
	}
	if err := f.db.Create(&student).Error; err != nil {
		t.Fatalf("seed student: %v", err)
	}
	return student
}

func (f *fixture) ledgerOf(t *testing.T, student models.Student) models.TuitionLedger {
	t.Helper()
	var ledger models.TuitionLedger
	if err := f.db.First(&ledger, student.LedgerID).Error; err != nil {
		t.Fatalf("reload ledger: %v", err)
	}
	return ledger
}

func (f *fixture) reloadStudent(t *testing.T, id uint) models.Student {
	t.Helper()
	var student models.Student
	if err := f.db.First(&student, id).Error; err != nil {
		t.Fatalf("reload student: %v", err)
	}
	return student
}

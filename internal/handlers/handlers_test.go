package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/crimi5361/IIPEA-BACKEND/config"
	"github.com/crimi5361/IIPEA-BACKEND/internal/services"
	"github.com/crimi5361/IIPEA-BACKEND/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type env struct {
	db      *gorm.DB
	router  *gin.Engine
	user    models.User
	year    models.AcademicYear
	program models.Program
	level   models.Level
}

// newEnv builds a router over an in-memory database with the caller
// pre-authenticated, plus a seeded catalog.
func newEnv(t *testing.T) *env {
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

	e := &env{db: db}

	e.user = models.User{Email: "caissier@iipea.test", FullName: "Caissier Principal", PasswordHash: "x"}
	if err := db.Create(&e.user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	e.year = models.AcademicYear{Label: "2024-2025", State: models.YearOpen}
	if err := db.Create(&e.year).Error; err != nil {
		t.Fatalf("seed year: %v", err)
	}
	category := models.ProgramCategory{Name: "Licence"}
	if err := db.Create(&category).Error; err != nil {
		t.Fatalf("seed category: %v", err)
	}
	e.program = models.Program{Name: "Biology", ShortCode: "BIO", CategoryID: category.ID}
	if err := db.Create(&e.program).Error; err != nil {
		t.Fatalf("seed program: %v", err)
	}
	e.level = models.Level{Label: "Level1", TuitionAmount: 500000, ProgramID: e.program.ID}
	if err := db.Create(&e.level).Error; err != nil {
		t.Fatalf("seed level: %v", err)
	}

	cfg := &config.Config{
		GroupCapacityDefault:  100,
		GroupCapacitySmall:    50,
		SmallCohortCategories: map[string]bool{"bts": true},
	}
	paymentService := &services.PaymentService{DB: db, Cfg: cfg}
	waiverService := &services.WaiverService{DB: db}

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", e.user.ID)
		c.Next()
	})

	students := NewStudentHandler(db)
	payments := NewPaymentHandler(db, paymentService)
	waivers := NewWaiverHandler(db, waiverService)
	classes := NewClassHandler(db)
	years := NewAcademicYearHandler(db)

	r.POST("/api/payments", payments.Create)
	r.GET("/api/payments/:id", payments.Get)
	r.GET("/api/students/:id/payments", payments.ListByStudent)
	r.POST("/api/waivers", waivers.Request)
	r.POST("/api/waivers/:id/decide", waivers.Decide)
	r.GET("/api/waivers/pending", waivers.PendingQueue)
	r.GET("/api/students/:id/waivers/active", waivers.ActiveByStudent)
	r.POST("/api/students", students.Create)
	r.GET("/api/students/:id", students.Get)
	r.GET("/api/classes", classes.List)
	r.POST("/api/classes/:id/divide", classes.Divide)
	r.POST("/api/academic-years", years.Create)
	r.POST("/api/academic-years/:id/close", years.Close)

	e.router = r
	return e
}

func (e *env) newStudent(t *testing.T, matricule string, due float64) models.Student {
	t.Helper()

	ledger := models.TuitionLedger{TotalDue: due, Remaining: due, Status: models.LedgerUnsettled}
	if err := e.db.Create(&ledger).Error; err != nil {
		t.Fatalf("seed ledger: %v", err)
	}
	student := models.Student{
		Matricule:      matricule,
		LastName:       "KOUAME",
		FirstName:      "Awa",
		Standing:       models.StandingPending,
		LedgerID:       ledger.ID,
		ProgramID:      e.program.ID,
		LevelID:        e.level.ID,
		AcademicYearID: e.year.ID,
		EnrolledByID:   e.user.ID,
	}
	if err := e.db.Create(&student).Error; err != nil {
		t.Fatalf("seed student: %v", err)
	}
	return student
}

func (e *env) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v (%s)", err, w.Body.String())
	}
	return body
}

func requireStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("status = %d, want %d (body: %s)", w.Code, want, w.Body.String())
	}
}

package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crimi5361/IIPEA-BACKEND/models"
)

func TestCreateStudentOpensLedger(t *testing.T) {
	e := newEnv(t)

	w := e.do(t, http.MethodPost, "/api/students", gin.H{
		"matricule":      "  mat-201 ",
		"lastName":       "diabaté",
		"firstName":      "Moussa",
		"programId":      e.program.ID,
		"levelId":        e.level.ID,
		"academicYearId": e.year.ID,
	})
	requireStatus(t, w, http.StatusCreated)

	data := decodeBody(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "MAT-201", data["matricule"])
	assert.Equal(t, "DIABATÉ", data["lastName"])
	assert.Equal(t, models.StandingPending, data["standing"])

	var student models.Student
	require.NoError(t, e.db.Preload("Ledger").First(&student, uint(data["ID"].(float64))).Error)
	require.NotNil(t, student.Ledger)
	assert.Equal(t, e.level.TuitionAmount, student.Ledger.TotalDue)
	assert.Equal(t, e.level.TuitionAmount, student.Ledger.Remaining)
	assert.Nil(t, student.GroupID)
}

func TestCreateStudentTuitionOverride(t *testing.T) {
	e := newEnv(t)

	w := e.do(t, http.MethodPost, "/api/students", gin.H{
		"matricule":      "MAT-202",
		"lastName":       "KONE",
		"firstName":      "Fanta",
		"programId":      e.program.ID,
		"levelId":        e.level.ID,
		"academicYearId": e.year.ID,
		"tuitionDue":     250000,
	})
	requireStatus(t, w, http.StatusCreated)

	data := decodeBody(t, w)["data"].(map[string]interface{})
	var ledger models.TuitionLedger
	require.NoError(t, e.db.First(&ledger, uint(data["ledgerId"].(float64))).Error)
	assert.Equal(t, float64(250000), ledger.TotalDue)
}

func TestGetStudentWithPlacement(t *testing.T) {
	e := newEnv(t)
	student := e.newStudent(t, "MAT-203", 500000)

	// Settle in full so the first payment assigns a group.
	w := e.do(t, http.MethodPost, "/api/payments", gin.H{
		"studentId": student.ID,
		"amount":    500000,
		"method":    "espèces",
	})
	requireStatus(t, w, http.StatusCreated)

	w = e.do(t, http.MethodGet, fmt.Sprintf("/api/students/%d", student.ID), nil)
	requireStatus(t, w, http.StatusOK)

	data := decodeBody(t, w)["data"].(map[string]interface{})
	assert.Equal(t, models.StandingEnrolled, data["standing"])
	group := data["group"].(map[string]interface{})
	assert.Equal(t, "Biology BIO Level1 Groupe 1", group["name"])
}

func TestListClassesAfterEnrollment(t *testing.T) {
	e := newEnv(t)
	for i := 0; i < 3; i++ {
		student := e.newStudent(t, fmt.Sprintf("MAT-30%d", i), 500000)
		w := e.do(t, http.MethodPost, "/api/payments", gin.H{
			"studentId": student.ID,
			"amount":    500000,
			"method":    "espèces",
		})
		requireStatus(t, w, http.StatusCreated)
	}

	w := e.do(t, http.MethodGet, "/api/classes", nil)
	requireStatus(t, w, http.StatusOK)

	rows := decodeBody(t, w)["data"].([]interface{})
	require.Len(t, rows, 1)
	class := rows[0].(map[string]interface{})
	assert.Equal(t, "Biology BIO Level1", class["name"])
	assert.Equal(t, float64(1), class["groupCount"])
	assert.Equal(t, float64(3), class["memberCount"])
}

func TestAcademicYearSingleOpen(t *testing.T) {
	e := newEnv(t)

	// The seeded 2024-2025 year is still open.
	w := e.do(t, http.MethodPost, "/api/academic-years", gin.H{"label": "2025-2026"})
	requireStatus(t, w, http.StatusConflict)

	w = e.do(t, http.MethodPost, fmt.Sprintf("/api/academic-years/%d/close", e.year.ID), nil)
	requireStatus(t, w, http.StatusOK)

	w = e.do(t, http.MethodPost, "/api/academic-years", gin.H{"label": "2025-2026"})
	requireStatus(t, w, http.StatusCreated)
	data := decodeBody(t, w)["data"].(map[string]interface{})
	assert.Equal(t, models.YearOpen, data["state"])
}

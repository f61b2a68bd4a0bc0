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

func TestDivideClassGroups(t *testing.T) {
	e := newEnv(t)

	// Six enrolled students land in one group under the default capacity.
	for i := 0; i < 6; i++ {
		student := e.newStudent(t, fmt.Sprintf("MAT-40%d", i), 500000)
		w := e.do(t, http.MethodPost, "/api/payments", gin.H{
			"studentId": student.ID,
			"amount":    500000,
			"method":    "espèces",
		})
		requireStatus(t, w, http.StatusCreated)
	}

	var class models.Class
	require.NoError(t, e.db.First(&class).Error)

	w := e.do(t, http.MethodPost, fmt.Sprintf("/api/classes/%d/divide", class.ID), gin.H{
		"capacity": 2,
	})
	requireStatus(t, w, http.StatusOK)

	data := decodeBody(t, w)["data"].(map[string]interface{})
	assert.Equal(t, float64(6), data["memberCount"])
	assert.Equal(t, float64(3), data["groupCount"])

	var groups []models.Group
	require.NoError(t, e.db.Where("class_id = ?", class.ID).Order("name").Find(&groups).Error)
	require.Len(t, groups, 3)
	for _, g := range groups {
		var members int64
		require.NoError(t, e.db.Model(&models.Student{}).Where("group_id = ?", g.ID).Count(&members).Error)
		assert.Equal(t, int64(2), members)
		assert.Equal(t, 2, g.Capacity)
	}
}

func TestDivideClassValidation(t *testing.T) {
	e := newEnv(t)

	w := e.do(t, http.MethodPost, "/api/classes/1/divide", gin.H{})
	requireStatus(t, w, http.StatusBadRequest)
}

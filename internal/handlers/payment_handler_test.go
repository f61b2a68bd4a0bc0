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

func TestCreatePayment(t *testing.T) {
	e := newEnv(t)
	student := e.newStudent(t, "MAT-001", 500000)

	w := e.do(t, http.MethodPost, "/api/payments", gin.H{
		"studentId": student.ID,
		"amount":    200000,
		"method":    "espèces",
	})
	requireStatus(t, w, http.StatusCreated)

	body := decodeBody(t, w)
	require.Equal(t, true, body["success"])
	data := body["data"].(map[string]interface{})
	assert.Equal(t, float64(300000), data["remainingBalance"])
	assert.Equal(t, models.LedgerUnsettled, data["settlementStatus"])
	assert.Equal(t, true, data["wasFirstPayment"])
	assert.NotEmpty(t, data["receiptNumber"])

	var payment models.Payment
	require.NoError(t, e.db.Preload("Receipt").First(&payment, uint(data["paymentId"].(float64))).Error)
	assert.Equal(t, float64(200000), payment.Amount)
	assert.Equal(t, e.user.ID, payment.PerformedByID)
	require.NotNil(t, payment.Receipt)
	assert.NotEmpty(t, payment.Receipt.AmountInWords)
}

func TestCreatePaymentOverpaymentConflict(t *testing.T) {
	e := newEnv(t)
	student := e.newStudent(t, "MAT-002", 100000)

	w := e.do(t, http.MethodPost, "/api/payments", gin.H{
		"studentId": student.ID,
		"amount":    150000,
		"method":    "espèces",
	})
	requireStatus(t, w, http.StatusConflict)

	body := decodeBody(t, w)
	assert.Equal(t, "OVERPAYMENT", body["code"])

	var count int64
	require.NoError(t, e.db.Model(&models.Payment{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreatePaymentValidation(t *testing.T) {
	e := newEnv(t)
	student := e.newStudent(t, "MAT-003", 100000)

	w := e.do(t, http.MethodPost, "/api/payments", gin.H{
		"studentId": student.ID,
		"amount":    -50,
		"method":    "espèces",
	})
	requireStatus(t, w, http.StatusBadRequest)
	assert.Equal(t, "INVALID_AMOUNT", decodeBody(t, w)["code"])
}

func TestCreatePaymentUnknownStudent(t *testing.T) {
	e := newEnv(t)

	w := e.do(t, http.MethodPost, "/api/payments", gin.H{
		"studentId": 9999,
		"amount":    1000,
		"method":    "espèces",
	})
	requireStatus(t, w, http.StatusNotFound)
	assert.Equal(t, "STUDENT_NOT_FOUND", decodeBody(t, w)["code"])
}

func TestListPaymentsByStudent(t *testing.T) {
	e := newEnv(t)
	student := e.newStudent(t, "MAT-004", 500000)

	for _, amount := range []float64{100000, 50000} {
		w := e.do(t, http.MethodPost, "/api/payments", gin.H{
			"studentId": student.ID,
			"amount":    amount,
			"method":    "virement",
		})
		requireStatus(t, w, http.StatusCreated)
	}

	w := e.do(t, http.MethodGet, fmt.Sprintf("/api/students/%d/payments", student.ID), nil)
	requireStatus(t, w, http.StatusOK)

	body := decodeBody(t, w)
	assert.Equal(t, float64(2), body["count"])
	rows := body["data"].([]interface{})
	require.Len(t, rows, 2)
	first := rows[0].(map[string]interface{})
	assert.NotEmpty(t, first["receiptNumber"])
}

func TestGetPaymentNotFound(t *testing.T) {
	e := newEnv(t)

	w := e.do(t, http.MethodGet, "/api/payments/123", nil)
	requireStatus(t, w, http.StatusNotFound)
}

package handlers

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/crimi5361/IIPEA-BACKEND/internal/services"
	"github.com/crimi5361/IIPEA-BACKEND/models"
)

// PaymentHandler exposes the payment-recording core and the read-only
// payment/receipt views. Payments are immutable: no update, no delete.
type PaymentHandler struct {
	DB       *gorm.DB
	Payments *services.PaymentService
}

func NewPaymentHandler(db *gorm.DB, payments *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{DB: db, Payments: payments}
}

type CreatePaymentRequest struct {
	StudentID uint    `json:"studentId" binding:"required"`
	Amount    float64 `json:"amount" binding:"required"`
	Method    string  `json:"method" binding:"required"`
}

// PaymentResponse flattens a payment with its receipt for list views.
type PaymentResponse struct {
	ID            uint      `json:"id"`
	Amount        float64   `json:"amount"`
	PaymentDate   time.Time `json:"paymentDate"`
	Method        string    `json:"method"`
	PerformedByID uint      `json:"performedById"`
	StudentID     uint      `json:"studentId"`
	ReceiptID     uint      `json:"receiptId"`
	ReceiptNumber string    `json:"receiptNumber"`
	ReceiptIssuer string    `json:"receiptIssuer"`
}

// Create records a payment for a student. The heavy lifting (ledger update,
// receipt, first-payment group assignment) happens in one transaction
// inside the payment service.
func (h *PaymentHandler) Create(c *gin.Context) {
	var req CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides: " + err.Error()})
		return
	}

	userID, ok := c.Get("user_id")
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	result, err := h.Payments.Record(req.StudentID, req.Amount, req.Method, userID.(uint))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": result})
}

// ListByStudent returns a student's payments with their receipts, newest
// first.
func (h *PaymentHandler) ListByStudent(c *gin.Context) {
	studentID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID étudiant invalide"})
		return
	}

	var payments []PaymentResponse
	q := h.DB.Table("payments p").
		Joins("LEFT JOIN receipts r ON p.receipt_id = r.id").
		Where("p.student_id = ? AND p.deleted_at IS NULL", studentID).
		Select(`
			p.id, p.amount, p.payment_date, p.method,
			p.performed_by_id, p.student_id, p.receipt_id,
			r.number AS receipt_number, r.issuer AS receipt_issuer
		`).
		Order("p.payment_date DESC")

	if err := q.Scan(&payments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Impossible de récupérer les paiements"})
		return
	}

	if payments == nil {
		payments = make([]PaymentResponse, 0)
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": payments, "count": len(payments)})
}

// Get returns one payment with its receipt.
func (h *PaymentHandler) Get(c *gin.Context) {
	id := c.Param("id")

	var payment models.Payment
	if err := h.DB.Preload("Receipt").First(&payment, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Paiement non trouvé"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": payment})
}

// DownloadArchive exports every payment as a CSV file for accounting.
func (h *PaymentHandler) DownloadArchive(c *gin.Context) {
	var payments []models.Payment
	if err := h.DB.Preload("Receipt").Preload("Student").Order("payment_date desc").Find(&payments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Impossible de récupérer les paiements"})
		return
	}

	if len(payments) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Aucun paiement à exporter"})
		return
	}

	b := &bytes.Buffer{}
	b.Write([]byte{0xEF, 0xBB, 0xBF}) // BOM for UTF-8

	w := csv.NewWriter(b)
	w.Comma = ';'

	headers := []string{
		"ID", "Date", "Montant", "Méthode", "Matricule", "Nom", "Prénoms",
		"Numéro de reçu", "Émetteur",
	}
	if err := w.Write(headers); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to write CSV header"})
		return
	}

	for _, p := range payments {
		var matricule, lastName, firstName string
		if p.Student != nil {
			matricule, lastName, firstName = p.Student.Matricule, p.Student.LastName, p.Student.FirstName
		}
		var number, issuer string
		if p.Receipt != nil {
			number, issuer = p.Receipt.Number, p.Receipt.Issuer
		}

		record := []string{
			strconv.Itoa(int(p.ID)),
			p.PaymentDate.Format("2006-01-02 15:04:05"),
			fmt.Sprintf("%.2f", p.Amount),
			p.Method,
			matricule, lastName, firstName,
			number, issuer,
		}
		if err := w.Write(record); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error writing CSV data"})
			return
		}
	}
	w.Flush()

	if err := w.Error(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error writing CSV data"})
		return
	}

	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename=paiements_export.csv")
	c.Data(http.StatusOK, "text/csv", b.Bytes())
}

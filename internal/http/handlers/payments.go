package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"madchef/internal/services"
)

// POST /api/payments/create-payment-intent
func (h *Handler) CreatePaymentIntent(c *gin.Context) {
	var body services.IntentInput
	if !BindJSONOrError(c, &body) {
		return
	}
	secret, err := h.Payments.CreateIntent(c.Request.Context(), rc(c), body)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"clientSecret": secret})
}

// GET /api/payments/receipts?title=
func (h *Handler) ListReceipts(c *gin.Context) {
	res, err := h.Payments.Receipts(c.Request.Context(), rc(c), listParams(c), c.Query("title"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondList(c, res)
}

// POST /api/payments/receipts
func (h *Handler) SaveReceipt(c *gin.Context) {
	var body services.ReceiptInput
	if !BindJSONOrError(c, &body) {
		return
	}
	m, err := h.Payments.SaveReceipt(c.Request.Context(), rc(c), body)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondData(c, http.StatusCreated, "receipt saved", m)
}

// GET /api/payments/receipts/:id/pdf (inline)
func (h *Handler) ReceiptPDF(c *gin.Context) {
	pdfBytes, filename, err := h.Payments.ReceiptPDF(c.Request.Context(), rc(c), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Header("Content-Disposition", `inline; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}

// DELETE /api/payments/receipts/:id
func (h *Handler) DeleteReceipt(c *gin.Context) {
	if err := h.Payments.DeleteReceipt(c.Request.Context(), rc(c), c.Param("id")); err != nil {
		RespondDomainError(c, err)
		return
	}
	respondMessage(c, "receipt deleted")
}

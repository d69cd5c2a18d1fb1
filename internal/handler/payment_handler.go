package handler

import (
	"math"
	"net/http"

	"wishwell/internal/service"

	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	paymentSvc *service.PaymentService
}

func NewPaymentHandler(paymentSvc *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentSvc: paymentSvc}
}

// Create opens an authorization with the provider and returns the URL
// the client must navigate to. The payment is not final until the
// client returns and executes it.
func (h *PaymentHandler) Create(c *gin.Context) {
	var req struct {
		Amount    float64 `json:"amount"`
		Currency  string  `json:"currency"`
		Purpose   string  `json:"purpose"`
		WishID    string  `json:"wish_id"`
		ReturnURL string  `json:"return_url"`
		CancelURL string  `json:"cancel_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := h.paymentSvc.CreateAuthorization(c.Request.Context(), service.CreatePaymentInput{
		AmountCents: int64(math.Round(req.Amount * 100)),
		Currency:    req.Currency,
		Purpose:     req.Purpose,
		WishID:      req.WishID,
		ReturnURL:   req.ReturnURL,
		CancelURL:   req.CancelURL,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"payment_id":   res.Intent.ID,
		"status":       res.Intent.Status,
		"redirect_url": res.RedirectURL,
	})
}

// Execute finalizes a payment after the provider redirected the client
// back. Safe to call twice: a reloaded return page gets the same
// result without double-crediting anything.
func (h *PaymentHandler) Execute(c *gin.Context) {
	var req struct {
		PayerReference string `json:"payer_reference" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "payer_reference required"})
		return
	}
	res, err := h.paymentSvc.ExecuteAuthorization(c.Request.Context(), c.Param("id"), req.PayerReference)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Cancel marks an abandoned payment CANCELLED so a late execute cannot
// resurrect it.
func (h *PaymentHandler) Cancel(c *gin.Context) {
	if err := h.paymentSvc.CancelAuthorization(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "CANCELLED"})
}

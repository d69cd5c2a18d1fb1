package handler

import (
	"math"
	"net/http"
	"strconv"

	"wishwell/internal/service"

	"github.com/gin-gonic/gin"
)

type WishHandler struct {
	wishSvc *service.WishService
}

func NewWishHandler(wishSvc *service.WishService) *WishHandler {
	return &WishHandler{wishSvc: wishSvc}
}

// Create submits a new wish. The wish is returned in AWAITING_FEE; it
// is not listed until the posting fee has been executed.
func (h *WishHandler) Create(c *gin.Context) {
	var req struct {
		Title         string  `json:"title"`
		Description   string  `json:"description"`
		AmountNeeded  float64 `json:"amount_needed"`
		Currency      string  `json:"currency"`
		CreatorName   string  `json:"creator_name"`
		CreatorEmail  string  `json:"creator_email"`
		CreatorPaypal string  `json:"creator_paypal"`
		Category      string  `json:"category"`
		Urgency       string  `json:"urgency"`
		PhotoURL      string  `json:"photo_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	wish, err := h.wishSvc.Submit(c.Request.Context(), service.SubmitWishInput{
		Title:             req.Title,
		Description:       req.Description,
		AmountNeededCents: int64(math.Round(req.AmountNeeded * 100)),
		Currency:          req.Currency,
		CreatorName:       req.CreatorName,
		CreatorEmail:      req.CreatorEmail,
		CreatorPaypal:     req.CreatorPaypal,
		Category:          req.Category,
		Urgency:           req.Urgency,
		PhotoURL:          req.PhotoURL,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, wish)
}

// List returns published and fulfilled wishes, newest first.
func (h *WishHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	wishes, err := h.wishSvc.ListPublished(c.Request.Context(), service.WishFilter{
		Category: c.Query("category"),
		Urgency:  c.Query("urgency"),
		Limit:    limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"wishes": wishes, "count": len(wishes)})
}

// Get returns one wish; wishes that are not yet published respond 404.
func (h *WishHandler) Get(c *gin.Context) {
	wish, err := h.wishSvc.GetPublished(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, wish)
}

// Donations lists the executed donations of a published wish.
func (h *WishHandler) Donations(c *gin.Context) {
	donations, err := h.wishSvc.Donations(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"donations": donations, "count": len(donations)})
}

// SuccessStories lists fulfilled wishes, newest first.
func (h *WishHandler) SuccessStories(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	wishes, err := h.wishSvc.SuccessStories(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"wishes": wishes, "count": len(wishes)})
}

func (h *WishHandler) Categories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": h.wishSvc.Categories()})
}

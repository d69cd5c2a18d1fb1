package handler

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"wishwell/pkg/cloudinary"

	"github.com/gin-gonic/gin"
)

type UploadHandler struct {
	cloud cloudinary.Client
}

func NewUploadHandler(cloud cloudinary.Client) *UploadHandler {
	return &UploadHandler{cloud: cloud}
}

// UploadWishPhoto stores a wish photo and returns its URL; the client
// passes it back as photo_url when submitting the wish.
func (h *UploadHandler) UploadWishPhoto(c *gin.Context) {
	if h.cloud == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "photo uploads not configured"})
		return
	}
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file required"})
		return
	}
	publicID := "wish_" + strings.ReplaceAll(uuid.New().String(), "-", "")[:16]
	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read file"})
		return
	}
	defer f.Close()

	url, thumb, err := h.cloud.UploadImage(c.Request.Context(), f, "wishwell/wishes", publicID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "upload failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"photo_url": url, "thumbnail_url": thumb})
}

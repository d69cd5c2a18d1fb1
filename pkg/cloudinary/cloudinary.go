package cloudinary

import (
	"context"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/cloudinary/cloudinary-go/v2/config"
)

// Client wraps Cloudinary image upload with delivery optimization.
type Client interface {
	UploadImage(ctx context.Context, file io.Reader, folder, publicID string) (url, thumbnailURL string, err error)
}

// Optimized image params for fast frontend loading
const (
	ImageWidth = 800
	ThumbWidth = 200
)

const imageEager = "q_auto,f_auto,w_800,c_fill"

var eagerAsyncFalse = false

// BuildOptimizedImageURL returns a Cloudinary URL with transformations
// for optimized delivery of an existing public ID.
func BuildOptimizedImageURL(cloudName, publicID string, width int) string {
	if width <= 0 {
		width = ImageWidth
	}
	return fmt.Sprintf("https://res.cloudinary.com/%s/image/upload/q_auto,f_auto,w_%d,c_fill/%s",
		cloudName, width, publicID)
}

type clientImpl struct {
	cloudName string
	uploader  *uploader.API
}

// UploadImage uploads an image with eager optimizations (auto quality,
// format, resize).
func (c *clientImpl) UploadImage(ctx context.Context, file io.Reader, folder, publicID string) (url, thumbnailURL string, err error) {
	result, err := c.uploader.Upload(ctx, file, uploader.UploadParams{
		Folder:     folder,
		PublicID:   publicID,
		Eager:      imageEager,
		EagerAsync: &eagerAsyncFalse,
	})
	if err != nil {
		return "", "", err
	}
	url = result.SecureURL
	if len(result.Eager) > 0 {
		thumbnailURL = result.Eager[0].SecureURL
	}
	if thumbnailURL == "" {
		thumbnailURL = BuildOptimizedImageURL(c.cloudName, result.PublicID, ThumbWidth)
	}
	return url, thumbnailURL, nil
}

// NewClientFromParams builds a Client from Cloudinary cloud name, API
// key, and secret.
func NewClientFromParams(cloudName, apiKey, apiSecret string) (Client, error) {
	cfg, err := config.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, err
	}
	up, err := uploader.NewWithConfiguration(cfg)
	if err != nil {
		return nil, err
	}
	return &clientImpl{
		cloudName: cloudName,
		uploader:  up,
	}, nil
}

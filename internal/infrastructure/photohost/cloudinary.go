package photohost

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// CloudinaryConfig holds the account credentials.
type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
}

// Enabled reports whether every credential is present.
func (c CloudinaryConfig) Enabled() bool {
	return c.CloudName != "" && c.APIKey != "" && c.APISecret != ""
}

type imageUploader interface {
	Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error)
}

// Cloudinary uploads photos to Cloudinary, using the key as public ID.
type Cloudinary struct {
	upload imageUploader
}

func NewCloudinary(cfg CloudinaryConfig) (*Cloudinary, error) {
	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary init: %w", err)
	}
	cld.Config.URL.Secure = true
	return &Cloudinary{upload: &cld.Upload}, nil
}

// UploadImage overwrites any image already stored under key and returns
// its https URL.
func (c *Cloudinary) UploadImage(ctx context.Context, key string, image io.Reader) (string, error) {
	resp, err := c.upload.Upload(ctx, image, uploader.UploadParams{
		PublicID:     key,
		Overwrite:    api.Bool(true),
		ResourceType: "image",
	})
	if err != nil {
		return "", fmt.Errorf("cloudinary upload: %w", err)
	}
	if resp.Error.Message != "" {
		return "", fmt.Errorf("cloudinary upload: %s", resp.Error.Message)
	}
	if resp.SecureURL == "" {
		return "", errors.New("cloudinary upload: empty secure_url")
	}
	return resp.SecureURL, nil
}

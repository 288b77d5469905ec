package client

import (
	"context"
	"errors"
	"fmt"
	"io"

	"course-marketplace/internal/config"
	"course-marketplace/internal/model"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// MediaClient stores course images on the media host.
type MediaClient interface {
	Upload(ctx context.Context, file io.Reader, filename string) (*model.MediaRef, error)
	Destroy(ctx context.Context, publicID string) error
}

type cloudinaryClientImpl struct {
	cld    *cloudinary.Cloudinary
	folder string
}

func NewCloudinaryClient(cfg *config.Cloudinary) (MediaClient, error) {
	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("init cloudinary: %w", err)
	}

	return &cloudinaryClientImpl{
		cld:    cld,
		folder: cfg.Folder,
	}, nil
}

func (c *cloudinaryClientImpl) Upload(ctx context.Context, file io.Reader, filename string) (*model.MediaRef, error) {
	resp, err := c.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder: c.folder,
	})
	if err != nil {
		return nil, fmt.Errorf("cloudinary upload %s: %w", filename, err)
	}

	if resp.Error.Message != "" {
		return nil, fmt.Errorf("cloudinary upload %s: %s", filename, resp.Error.Message)
	}

	return &model.MediaRef{
		PublicID: resp.PublicID,
		URL:      resp.SecureURL,
	}, nil
}

func (c *cloudinaryClientImpl) Destroy(ctx context.Context, publicID string) error {
	if publicID == "" {
		return errors.New("empty public id")
	}

	resp, err := c.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID: publicID,
	})
	if err != nil {
		return fmt.Errorf("cloudinary destroy %s: %w", publicID, err)
	}

	if resp.Error.Message != "" {
		return fmt.Errorf("cloudinary destroy %s: %s", publicID, resp.Error.Message)
	}

	return nil
}

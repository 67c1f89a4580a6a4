package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/google/uuid"
	"github.com/veskar/guildhall/internal/helpers"
	"github.com/veskar/guildhall/internal/models"
)

type MediaService struct {
	mediaRepo models.MediaRepo
	cld       *cloudinary.Cloudinary
}

func NewMediaService(mediaRepo models.MediaRepo, cld *cloudinary.Cloudinary) *MediaService {
	return &MediaService{
		mediaRepo: mediaRepo,
		cld:       cld,
	}
}

// UploadMedia pushes the image to Cloudinary first, then records the gallery
// entry. If the metadata write fails the uploaded asset is cleaned up so the
// gallery and storage stay in step.
func (ms *MediaService) UploadMedia(ctx context.Context, uploaderID uuid.UUID, uploaderUsername, caption, imageData string) (*models.MediaItem, error) {
	if uploaderID == uuid.Nil {
		return nil, fmt.Errorf("invalid uploader user ID")
	}
	if strings.TrimSpace(imageData) == "" {
		return nil, fmt.Errorf("image data cannot be empty")
	}

	url, publicID, err := helpers.UploadImage(ctx, ms.cld, imageData, helpers.GalleryFolder)
	if err != nil {
		return nil, fmt.Errorf("failed to upload image: %v", err)
	}

	item := &models.MediaItem{
		UploaderUserID:   uploaderID,
		UploaderUsername: uploaderUsername,
		Caption:          strings.TrimSpace(caption),
		URL:              url,
		PublicID:         publicID,
	}

	saved, err := ms.mediaRepo.SaveMediaItem(ctx, item)
	if err != nil {
		helpers.DeleteImage(ctx, ms.cld, publicID)
		return nil, err
	}

	return saved, nil
}

func (ms *MediaService) ListMedia(ctx context.Context, offset, limit int) ([]*models.MediaItem, int, error) {
	if offset < 0 || limit <= 0 {
		return nil, 0, fmt.Errorf("invalid offset or limit")
	}
	return ms.mediaRepo.ListMedia(ctx, offset, limit)
}

// DeleteMedia removes the gallery entry and its Cloudinary asset. Only the
// uploader or an admin may delete; the handler enforces that.
func (ms *MediaService) DeleteMedia(ctx context.Context, requesterID uuid.UUID, isAdmin bool, mediaID string) error {
	item, err := ms.mediaRepo.GetMediaItem(ctx, mediaID)
	if err != nil {
		return err
	}
	if item == nil {
		return fmt.Errorf("media item not found")
	}
	if !isAdmin && item.UploaderUserID != requesterID {
		return fmt.Errorf("not allowed to delete this media item")
	}

	if err := ms.mediaRepo.DeleteMediaItem(ctx, mediaID); err != nil {
		return err
	}

	helpers.DeleteImage(ctx, ms.cld, item.PublicID)
	return nil
}

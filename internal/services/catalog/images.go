package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"

	apperrors "storeadmin/internal/errors"
	"storeadmin/internal/models"
	"storeadmin/internal/repositories"
	"storeadmin/internal/storage"
	"storeadmin/internal/validation"

	"go.uber.org/zap"
)

type ImageFile struct {
	Filename string
	Reader   io.Reader
	AltText  string
}

type ImageOrder struct {
	ImageID   uint `json:"imageId"`
	SortOrder int  `json:"sortOrder"`
}

// AddImages uploads the files first and then records them in one unit. The
// first image a product ever gets becomes its primary image.
func (s *service) AddImages(ctx context.Context, productID uint, files []ImageFile) ([]models.ProductImage, error) {
	if len(files) == 0 {
		return nil, ErrNoImages
	}
	v := validation.New()
	for i, f := range files {
		v.MaxLength(fmt.Sprintf("images[%d].altText", i), f.AltText, validation.MaxAltTextLength)
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	if p, err := s.store.Products.GetByID(ctx, productID); err != nil {
		return nil, apperrors.Internal(err)
	} else if p == nil {
		return nil, ErrProductNotFound
	}

	folder := fmt.Sprintf("products/%d", productID)
	assets := make([]storage.Asset, 0, len(files))
	uploaded := make([]string, 0, len(files))
	for _, f := range files {
		a, err := s.assets.Upload(ctx, f.Reader, f.Filename, folder)
		if err != nil {
			s.removeAssets(ctx, uploaded)
			if errors.Is(err, storage.ErrUnsupportedType) {
				return nil, ErrUnsupportedImage.WithMessage("unsupported image type: %s", f.Filename)
			}
			return nil, apperrors.Internal(fmt.Errorf("upload %s: %w", f.Filename, err))
		}
		assets = append(assets, a)
		uploaded = append(uploaded, a.PublicID)
	}

	var images []models.ProductImage
	err := s.store.WithTx(ctx, func(tx *repositories.Store) error {
		p, err := tx.Products.LockByID(ctx, productID)
		if err != nil {
			return err
		}
		if p == nil {
			return ErrProductNotFound
		}
		next, err := tx.Images.NextSortOrder(ctx, productID)
		if err != nil {
			return err
		}
		hasPrimary, err := tx.Images.HasPrimary(ctx, productID)
		if err != nil {
			return err
		}

		images = make([]models.ProductImage, len(assets))
		for i, a := range assets {
			images[i] = models.ProductImage{
				ProductID: productID,
				ImageURL:  a.URL,
				PublicID:  a.PublicID,
				AltText:   files[i].AltText,
				SortOrder: next + i,
				IsPrimary: !hasPrimary && i == 0,
			}
		}
		return tx.Images.Create(ctx, images)
	})
	if err != nil {
		s.removeAssets(ctx, uploaded)
		return nil, apperrors.Internal(err)
	}

	s.invalidate(ctx, productID)
	s.log.Info("product images added", zap.Uint("product_id", productID), zap.Int("count", len(images)))
	return images, nil
}

func (s *service) ListImages(ctx context.Context, productID uint) ([]models.ProductImage, error) {
	out, err := s.store.Images.ListByProduct(ctx, productID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return out, nil
}

// SetPrimaryImage clears the current primary and marks imageID, holding the
// product row lock so two callers cannot leave two primaries behind.
func (s *service) SetPrimaryImage(ctx context.Context, productID, imageID uint) error {
	err := s.store.WithTx(ctx, func(tx *repositories.Store) error {
		if _, err := lockProduct(ctx, tx, productID); err != nil {
			return err
		}
		img, err := tx.Images.Get(ctx, productID, imageID)
		if err != nil {
			return err
		}
		if img == nil {
			return ErrImageNotFound
		}
		if err := tx.Images.ClearPrimary(ctx, productID); err != nil {
			return err
		}
		return tx.Images.MarkPrimary(ctx, imageID)
	})
	if err != nil {
		return apperrors.Internal(err)
	}
	s.invalidate(ctx, productID)
	return nil
}

func (s *service) ReorderImages(ctx context.Context, productID uint, order []ImageOrder) error {
	v := validation.New()
	v.Check(len(order) > 0, "images", "must not be empty")
	for i, o := range order {
		v.Check(o.SortOrder >= 0, fmt.Sprintf("images[%d].sortOrder", i), "must not be negative")
	}
	if err := v.Err(); err != nil {
		return err
	}

	err := s.store.WithTx(ctx, func(tx *repositories.Store) error {
		if _, err := lockProduct(ctx, tx, productID); err != nil {
			return err
		}
		for _, o := range order {
			ok, err := tx.Images.SetSortOrder(ctx, productID, o.ImageID, o.SortOrder)
			if err != nil {
				return err
			}
			if !ok {
				return ErrImageNotFound.WithMessage("image %d not found on product %d", o.ImageID, productID)
			}
		}
		return nil
	})
	if err != nil {
		return apperrors.Internal(err)
	}
	s.invalidate(ctx, productID)
	return nil
}

// DeleteImage removes one image. If it was the primary, the image with the
// lowest sort order takes over. The stored asset is removed after commit.
func (s *service) DeleteImage(ctx context.Context, productID, imageID uint) error {
	var publicID string
	err := s.store.WithTx(ctx, func(tx *repositories.Store) error {
		if _, err := lockProduct(ctx, tx, productID); err != nil {
			return err
		}
		img, err := tx.Images.Get(ctx, productID, imageID)
		if err != nil {
			return err
		}
		if img == nil {
			return ErrImageNotFound
		}
		publicID = img.PublicID
		if err := tx.Images.Delete(ctx, imageID); err != nil {
			return err
		}
		if img.IsPrimary {
			return tx.Images.PromoteFirst(ctx, productID)
		}
		return nil
	})
	if err != nil {
		return apperrors.Internal(err)
	}
	s.invalidate(ctx, productID)
	s.removeAssets(ctx, []string{publicID})
	return nil
}

func lockProduct(ctx context.Context, tx *repositories.Store, id uint) (*models.Product, error) {
	p, err := tx.Products.LockByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProductNotFound
	}
	return p, nil
}

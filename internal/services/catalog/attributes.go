package catalog

import (
	"context"
	"errors"
	"sort"
	"strings"

	apperrors "storeadmin/internal/errors"
	"storeadmin/internal/models"
	"storeadmin/internal/repositories"
	"storeadmin/internal/validation"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type VariantInput struct {
	SKU           string              `json:"sku"`
	Name          string              `json:"name"`
	Price         decimal.Decimal     `json:"price"`
	SalePrice     decimal.NullDecimal `json:"salePrice"`
	StockQuantity int                 `json:"stockQuantity"`
	Enabled       *bool               `json:"enabled"`
}

// SetAttributes replaces the product's attribute set. Names are trimmed,
// values are trimmed and de-duplicated in first-seen order.
func (s *service) SetAttributes(ctx context.Context, productID uint, attrs map[string][]string) ([]models.ProductAttribute, error) {
	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	sort.Strings(names)

	v := validation.New()
	rows := make([]models.ProductAttribute, 0, len(attrs))
	seenName := make(map[string]bool, len(attrs))
	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" {
			v.AddError("attributes", "attribute names must not be empty")
			continue
		}
		if seenName[strings.ToLower(name)] {
			v.AddError("attributes."+name, "duplicate attribute name")
			continue
		}
		seenName[strings.ToLower(name)] = true

		var values pq.StringArray
		seen := map[string]bool{}
		for _, val := range attrs[raw] {
			val = strings.TrimSpace(val)
			if val == "" || seen[val] {
				continue
			}
			seen[val] = true
			values = append(values, val)
		}
		v.Check(len(values) > 0, "attributes."+name, "must have at least one value")
		rows = append(rows, models.ProductAttribute{Name: name, Values: values})
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	err := s.store.WithTx(ctx, func(tx *repositories.Store) error {
		if _, err := lockProduct(ctx, tx, productID); err != nil {
			return err
		}
		return tx.Products.ReplaceAttributes(ctx, productID, rows)
	})
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	s.invalidate(ctx, productID)
	return rows, nil
}

func (s *service) AddVariant(ctx context.Context, productID uint, in VariantInput) (*models.ProductVariant, error) {
	v := validation.New()
	v.Required("sku", in.SKU)
	v.NonNegativeAmount("price", in.Price)
	v.Check(in.StockQuantity >= 0, "stockQuantity", "must not be negative")
	if in.SalePrice.Valid {
		v.NonNegativeAmount("salePrice", in.SalePrice.Decimal)
	}
	if err := v.Err(); err != nil {
		return nil, err
	}
	if in.SalePrice.Valid && in.SalePrice.Decimal.GreaterThan(in.Price) {
		return nil, ErrSalePriceTooHigh
	}

	variant := &models.ProductVariant{
		ProductID:     productID,
		SKU:           strings.TrimSpace(in.SKU),
		Name:          in.Name,
		Price:         in.Price.Round(2),
		SalePrice:     in.SalePrice,
		StockQuantity: in.StockQuantity,
		Enabled:       in.Enabled == nil || *in.Enabled,
	}
	err := s.store.WithTx(ctx, func(tx *repositories.Store) error {
		if _, err := lockProduct(ctx, tx, productID); err != nil {
			return err
		}
		return tx.Products.CreateVariant(ctx, variant)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateVariantSKU
		}
		return nil, apperrors.Internal(err)
	}
	s.invalidate(ctx, productID)
	return variant, nil
}

func (s *service) DeleteVariant(ctx context.Context, productID, variantID uint) error {
	ok, err := s.store.Products.DeleteVariant(ctx, productID, variantID)
	if err != nil {
		return apperrors.Internal(err)
	}
	if !ok {
		return ErrVariantNotFound
	}
	s.invalidate(ctx, productID)
	return nil
}

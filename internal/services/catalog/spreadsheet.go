package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	apperrors "storeadmin/internal/errors"
	"storeadmin/internal/models"
	"storeadmin/internal/repositories"

	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx"
	"go.uber.org/zap"
)

const productSheet = "Products"

var productColumns = []string{
	"SKU", "Name", "Slug", "Category ID", "Brand", "Price", "Sale Price",
	"Stock Quantity", "Stock Status", "Status", "Featured",
	"Short Description", "Description",
}

type RowError struct {
	Row     int    `json:"row"`
	SKU     string `json:"sku,omitempty"`
	Message string `json:"message"`
}

type ImportResult struct {
	Created int        `json:"created"`
	Updated int        `json:"updated"`
	Skipped int        `json:"skipped"`
	Errors  []RowError `json:"errors,omitempty"`
}

// Export writes every product to a single-sheet workbook.
func (s *service) Export(ctx context.Context, w io.Writer) error {
	products, _, err := s.store.Products.List(ctx, repositories.ProductFilter{})
	if err != nil {
		return apperrors.Internal(err)
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet(productSheet)
	if err != nil {
		return apperrors.Internal(fmt.Errorf("add sheet: %w", err))
	}
	header := sheet.AddRow()
	for _, h := range productColumns {
		header.AddCell().SetString(h)
	}

	for _, p := range products {
		row := sheet.AddRow()
		row.AddCell().SetString(p.SKU)
		row.AddCell().SetString(p.Name)
		row.AddCell().SetString(p.Slug)
		if p.CategoryID != nil {
			row.AddCell().SetInt(int(*p.CategoryID))
		} else {
			row.AddCell().SetString("")
		}
		row.AddCell().SetString(p.Brand)
		row.AddCell().SetString(p.Price.StringFixed(2))
		if p.SalePrice.Valid {
			row.AddCell().SetString(p.SalePrice.Decimal.StringFixed(2))
		} else {
			row.AddCell().SetString("")
		}
		row.AddCell().SetInt(p.StockQuantity)
		row.AddCell().SetString(p.StockStatus)
		row.AddCell().SetString(p.Status)
		row.AddCell().SetBool(p.Featured)
		row.AddCell().SetString(p.ShortDescription)
		row.AddCell().SetString(p.Description)
	}

	if err := file.Write(w); err != nil {
		return apperrors.Internal(fmt.Errorf("write workbook: %w", err))
	}
	return nil
}

// Import upserts products by sku from the first sheet of a workbook laid out
// like Export's. Rows that fail are reported and skipped; the rest still land.
func (s *service) Import(ctx context.Context, r io.ReaderAt, size int64) (*ImportResult, error) {
	file, err := xlsx.OpenReaderAt(r, size)
	if err != nil {
		return nil, ErrInvalidWorkbook.WithMessage("cannot read workbook: %v", err)
	}
	if len(file.Sheets) == 0 || len(file.Sheets[0].Rows) < 1 {
		return nil, ErrInvalidWorkbook
	}
	sheet := file.Sheets[0]

	cols := map[string]int{}
	for i, c := range sheet.Rows[0].Cells {
		cols[strings.ToLower(strings.TrimSpace(c.String()))] = i
	}
	for _, required := range []string{"sku", "name", "price"} {
		if _, ok := cols[required]; !ok {
			return nil, ErrInvalidWorkbook.WithMessage("missing required column %q", required)
		}
	}

	res := &ImportResult{}
	for i := 1; i < len(sheet.Rows); i++ {
		if err := ctx.Err(); err != nil {
			return nil, apperrors.Internal(err)
		}
		row := sheet.Rows[i]
		get := func(name string) string {
			idx, ok := cols[name]
			if !ok || row == nil || idx >= len(row.Cells) {
				return ""
			}
			return strings.TrimSpace(row.Cells[idx].String())
		}

		sku := get("sku")
		if sku == "" && get("name") == "" {
			continue
		}
		in, err := parseProductRow(get)
		if err != nil {
			res.Skipped++
			res.Errors = append(res.Errors, RowError{Row: i + 1, SKU: sku, Message: err.Error()})
			continue
		}

		created, err := s.upsert(ctx, in)
		if err != nil {
			res.Skipped++
			res.Errors = append(res.Errors, RowError{Row: i + 1, SKU: sku, Message: rowMessage(err)})
			continue
		}
		if created {
			res.Created++
		} else {
			res.Updated++
		}
	}

	s.log.Info("product import finished",
		zap.Int("created", res.Created),
		zap.Int("updated", res.Updated),
		zap.Int("skipped", res.Skipped))
	return res, nil
}

func (s *service) upsert(ctx context.Context, in ProductInput) (bool, error) {
	existing, err := s.store.Products.GetBySKU(ctx, in.SKU)
	if err != nil {
		return false, err
	}
	if existing == nil {
		_, err := s.CreateProduct(ctx, in)
		return true, err
	}
	if in.Slug == "" {
		in.Slug = existing.Slug
	}
	_, err = s.UpdateProduct(ctx, existing.ID, in)
	return false, err
}

func parseProductRow(get func(string) string) (ProductInput, error) {
	in := ProductInput{
		SKU:              get("sku"),
		Name:             get("name"),
		Slug:             get("slug"),
		Brand:            get("brand"),
		StockStatus:      get("stock status"),
		Status:           get("status"),
		ShortDescription: get("short description"),
		Description:      get("description"),
	}

	price, err := decimal.NewFromString(get("price"))
	if err != nil {
		return in, fmt.Errorf("invalid price %q", get("price"))
	}
	in.Price = price

	if raw := get("sale price"); raw != "" {
		sp, err := decimal.NewFromString(raw)
		if err != nil {
			return in, fmt.Errorf("invalid sale price %q", raw)
		}
		in.SalePrice = decimal.NewNullDecimal(sp)
	}
	if raw := get("stock quantity"); raw != "" {
		qty, err := strconv.Atoi(raw)
		if err != nil {
			return in, fmt.Errorf("invalid stock quantity %q", raw)
		}
		in.StockQuantity = qty
	}
	if raw := get("category id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return in, fmt.Errorf("invalid category id %q", raw)
		}
		cid := uint(id)
		in.CategoryID = &cid
	}
	if raw := get("featured"); raw != "" {
		f, err := strconv.ParseBool(raw)
		if err != nil {
			return in, fmt.Errorf("invalid featured flag %q", raw)
		}
		in.Featured = f
	}
	if in.Status == "" {
		in.Status = models.ProductStatusActive
	}
	return in, nil
}

func rowMessage(err error) string {
	var de *apperrors.DomainError
	if errors.As(err, &de) && de.Kind != apperrors.KindInternal {
		if len(de.Fields) > 0 {
			parts := make([]string, 0, len(de.Fields))
			for f, m := range de.Fields {
				parts = append(parts, f+": "+m)
			}
			sort.Strings(parts)
			return strings.Join(parts, "; ")
		}
		return de.Message
	}
	return "internal error"
}

package handlers

import (
	"bytes"
	"io"

	apperrors "storeadmin/internal/errors"
	"storeadmin/internal/models"
	"storeadmin/internal/repositories"
	"storeadmin/internal/services/catalog"
	"storeadmin/internal/utils"
	"storeadmin/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var errFileRequired = apperrors.Validation(map[string]string{"file": "is required"})

type ProductHandler struct {
	service catalog.Service
}

func NewProductHandler(s catalog.Service) *ProductHandler { return &ProductHandler{service: s} }

func isAdmin(c *fiber.Ctx) bool {
	claims, err := utils.GetUserClaims(c)
	return err == nil && claims.IsAdmin()
}

// List serves the storefront listing. Anonymous callers and customers only
// see active products.
func (h *ProductHandler) List(c *fiber.Ctx) error {
	status := models.ProductStatusActive
	if isAdmin(c) {
		status = c.Query("status")
	}
	p, window := page(c)
	list, total, err := h.service.ListProducts(c.UserContext(), repositories.ProductFilter{
		Page:        window,
		Search:      c.Query("search"),
		CategoryID:  queryUint(c, "categoryId"),
		Status:      status,
		StockStatus: c.Query("stockStatus"),
		Featured:    queryBool(c, "featured"),
	})
	if err != nil {
		return response.FromError(c, err)
	}
	p.SetTotal(total)
	return response.Paginated(c, "Products retrieved", list, p)
}

func (h *ProductHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	p, err := h.service.GetProduct(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	if p.Status != models.ProductStatusActive && !isAdmin(c) {
		return response.FromError(c, catalog.ErrProductNotFound)
	}
	return response.Success(c, "Product retrieved", p)
}

func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var in catalog.ProductInput
	if err := bind(c, &in); err != nil {
		return response.FromError(c, err)
	}
	p, err := h.service.CreateProduct(c.UserContext(), in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, "Product created", p)
}

func (h *ProductHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	var in catalog.ProductInput
	if err := bind(c, &in); err != nil {
		return response.FromError(c, err)
	}
	p, err := h.service.UpdateProduct(c.UserContext(), id, in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Product updated", p)
}

func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	if err := h.service.DeleteProduct(c.UserContext(), id); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Product deleted", nil)
}

func (h *ProductHandler) ListCategories(c *fiber.Ctx) error {
	list, err := h.service.ListCategories(c.UserContext(), !isAdmin(c))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Categories retrieved", list)
}

func (h *ProductHandler) CreateCategory(c *fiber.Ctx) error {
	var in catalog.CategoryInput
	if err := bind(c, &in); err != nil {
		return response.FromError(c, err)
	}
	cat, err := h.service.CreateCategory(c.UserContext(), in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, "Category created", cat)
}

// Images

func (h *ProductHandler) ListImages(c *fiber.Ctx) error {
	productID, err := paramID(c, "productId")
	if err != nil {
		return response.FromError(c, err)
	}
	images, err := h.service.ListImages(c.UserContext(), productID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Product images retrieved", images)
}

// UploadImages accepts one or more files in the "images" multipart field.
func (h *ProductHandler) UploadImages(c *fiber.Ctx) error {
	productID, err := paramID(c, "productId")
	if err != nil {
		return response.FromError(c, err)
	}
	form, err := c.MultipartForm()
	if err != nil {
		return response.FromError(c, catalog.ErrNoImages)
	}
	headers := form.File["images"]
	if len(headers) == 0 {
		return response.FromError(c, catalog.ErrNoImages)
	}

	altText := c.FormValue("altText")
	files := make([]catalog.ImageFile, 0, len(headers))
	var opened []io.Closer
	defer func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}()
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return response.FromError(c, apperrors.Internal(err))
		}
		opened = append(opened, f)
		files = append(files, catalog.ImageFile{Filename: fh.Filename, Reader: f, AltText: altText})
	}

	images, err := h.service.AddImages(c.UserContext(), productID, files)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, "Images uploaded", images)
}

func (h *ProductHandler) SetPrimaryImage(c *fiber.Ctx) error {
	productID, err := paramID(c, "productId")
	if err != nil {
		return response.FromError(c, err)
	}
	imageID, err := paramID(c, "imageId")
	if err != nil {
		return response.FromError(c, err)
	}
	if err := h.service.SetPrimaryImage(c.UserContext(), productID, imageID); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Primary image updated", nil)
}

func (h *ProductHandler) ReorderImages(c *fiber.Ctx) error {
	productID, err := paramID(c, "productId")
	if err != nil {
		return response.FromError(c, err)
	}
	var input struct {
		Images []catalog.ImageOrder `json:"images"`
	}
	if err := bind(c, &input); err != nil {
		return response.FromError(c, err)
	}
	if err := h.service.ReorderImages(c.UserContext(), productID, input.Images); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Images reordered", nil)
}

func (h *ProductHandler) DeleteImage(c *fiber.Ctx) error {
	productID, err := paramID(c, "productId")
	if err != nil {
		return response.FromError(c, err)
	}
	imageID, err := paramID(c, "imageId")
	if err != nil {
		return response.FromError(c, err)
	}
	if err := h.service.DeleteImage(c.UserContext(), productID, imageID); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Image deleted", nil)
}

// Attributes and variants

func (h *ProductHandler) SetAttributes(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	var input struct {
		Attributes map[string][]string `json:"attributes"`
	}
	if err := bind(c, &input); err != nil {
		return response.FromError(c, err)
	}
	attrs, err := h.service.SetAttributes(c.UserContext(), id, input.Attributes)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Attributes updated", attrs)
}

func (h *ProductHandler) AddVariant(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	var in catalog.VariantInput
	if err := bind(c, &in); err != nil {
		return response.FromError(c, err)
	}
	v, err := h.service.AddVariant(c.UserContext(), id, in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, "Variant created", v)
}

func (h *ProductHandler) DeleteVariant(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	variantID, err := paramID(c, "variantId")
	if err != nil {
		return response.FromError(c, err)
	}
	if err := h.service.DeleteVariant(c.UserContext(), id, variantID); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Variant deleted", nil)
}

// Spreadsheets

func (h *ProductHandler) Export(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := h.service.Export(c.UserContext(), &buf); err != nil {
		return response.FromError(c, err)
	}
	c.Attachment("products.xlsx")
	c.Set(fiber.HeaderContentType, xlsxContentType)
	return c.Send(buf.Bytes())
}

// Import upserts products from the workbook in the "file" multipart field.
func (h *ProductHandler) Import(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return response.FromError(c, errFileRequired)
	}
	f, err := fh.Open()
	if err != nil {
		return response.FromError(c, apperrors.Internal(err))
	}
	defer f.Close()

	res, err := h.service.Import(c.UserContext(), f, fh.Size)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Import finished", res)
}

package handlers

import (
	"io"
	"mime/multipart"

	apperrors "storeadmin/internal/errors"
	"storeadmin/internal/repositories"
	"storeadmin/internal/services/kyc"
	"storeadmin/internal/utils"
	"storeadmin/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type KYCHandler struct {
	service kyc.Service
}

func NewKYCHandler(s kyc.Service) *KYCHandler { return &KYCHandler{service: s} }

// openFile opens an optional multipart file; an absent field yields nil.
func openFile(c *fiber.Ctx, field string) (*multipart.FileHeader, multipart.File, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, nil, nil
	}
	f, err := fh.Open()
	if err != nil {
		return nil, nil, apperrors.Internal(err)
	}
	return fh, f, nil
}

// kycInput reads the multipart form shared by customer and admin submission.
// The caller must run the returned cleanup once the service call returns.
func kycInput(c *fiber.Ctx) (kyc.CreateInput, func(), error) {
	in := kyc.CreateInput{
		DocumentType:   c.FormValue("documentType"),
		DocumentNumber: c.FormValue("documentNumber"),
	}
	var opened []io.Closer
	cleanup := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}
	for field, dst := range map[string]**kyc.File{
		"frontImage":  &in.Front,
		"backImage":   &in.Back,
		"selfieImage": &in.Selfie,
	} {
		fh, f, err := openFile(c, field)
		if err != nil {
			cleanup()
			return in, func() {}, err
		}
		if fh == nil {
			continue
		}
		opened = append(opened, f)
		*dst = &kyc.File{Filename: fh.Filename, Reader: f}
	}
	return in, cleanup, nil
}

func (h *KYCHandler) Submit(c *fiber.Ctx) error {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return response.FromError(c, err)
	}
	in, cleanup, err := kycInput(c)
	if err != nil {
		return response.FromError(c, err)
	}
	defer cleanup()

	app, err := h.service.Create(c.UserContext(), claims.UserID, in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, "KYC application submitted", app)
}

// CreateForUser lets an admin submit documents on behalf of the user named
// by the email form field.
func (h *KYCHandler) CreateForUser(c *fiber.Ctx) error {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return response.FromError(c, err)
	}
	in, cleanup, err := kycInput(c)
	if err != nil {
		return response.FromError(c, err)
	}
	defer cleanup()

	app, err := h.service.CreateForUser(c.UserContext(), claims.UserID, c.FormValue("email"), in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, "KYC application created", app)
}

func (h *KYCHandler) GetStatus(c *fiber.Ctx) error {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return response.FromError(c, err)
	}
	app, err := h.service.GetStatus(c.UserContext(), claims.UserID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "KYC status", app)
}

func (h *KYCHandler) UpdateStatus(c *fiber.Ctx) error {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return response.FromError(c, err)
	}
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	var input struct {
		Status          string `json:"status"`
		RejectionReason string `json:"rejectionReason"`
	}
	if err := bind(c, &input); err != nil {
		return response.FromError(c, err)
	}
	app, err := h.service.UpdateStatus(c.UserContext(), id, input.Status, input.RejectionReason, claims.UserID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "KYC status updated", app)
}

func (h *KYCHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	app, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "KYC application retrieved", app)
}

func (h *KYCHandler) List(c *fiber.Ctx) error {
	p, window := page(c)
	list, total, err := h.service.List(c.UserContext(), repositories.KYCFilter{
		Page:         window,
		Status:       c.Query("status"),
		DocumentType: c.Query("documentType"),
		Search:       c.Query("search"),
	})
	if err != nil {
		return response.FromError(c, err)
	}
	p.SetTotal(total)
	return response.Paginated(c, "KYC applications retrieved", list, p)
}

func (h *KYCHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.service.Stats(c.UserContext())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "KYC statistics retrieved", stats)
}

package handlers

import (
	"storeadmin/internal/models"
	"storeadmin/internal/repositories"
	"storeadmin/internal/services/blog"
	"storeadmin/internal/utils"
	"storeadmin/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type BlogHandler struct {
	service blog.Service
}

func NewBlogHandler(s blog.Service) *BlogHandler { return &BlogHandler{service: s} }

func (h *BlogHandler) Create(c *fiber.Ctx) error {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return response.FromError(c, err)
	}
	var in blog.Input
	if err := bind(c, &in); err != nil {
		return response.FromError(c, err)
	}
	b, err := h.service.Create(c.UserContext(), claims.UserID, in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, "Blog post created", b)
}

func (h *BlogHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	var in blog.Input
	if err := bind(c, &in); err != nil {
		return response.FromError(c, err)
	}
	b, err := h.service.Update(c.UserContext(), id, in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Blog post updated", b)
}

func (h *BlogHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Blog post deleted", nil)
}

func (h *BlogHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	b, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Blog post retrieved", b)
}

// View serves a published post to readers and counts the view.
func (h *BlogHandler) View(c *fiber.Ctx) error {
	b, err := h.service.View(c.UserContext(), c.Params("slug"))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Blog post retrieved", b)
}

// List shows published posts to readers; admins may filter on any status.
func (h *BlogHandler) List(c *fiber.Ctx) error {
	p, window := page(c)
	f := repositories.BlogFilter{
		Page:   window,
		Tag:    c.Query("tag"),
		Search: c.Query("search"),
	}

	var (
		list  []models.Blog
		total int64
		err   error
	)
	if isAdmin(c) {
		f.Status = c.Query("status")
		f.AuthorID = queryUint(c, "authorId")
		list, total, err = h.service.List(c.UserContext(), f)
	} else {
		list, total, err = h.service.ListPublished(c.UserContext(), f)
	}
	if err != nil {
		return response.FromError(c, err)
	}
	p.SetTotal(total)
	return response.Paginated(c, "Blog posts retrieved", list, p)
}

func (h *BlogHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.service.Stats(c.UserContext())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Blog statistics retrieved", stats)
}

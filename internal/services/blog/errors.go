package blog

import apperrors "storeadmin/internal/errors"

var (
	ErrBlogNotFound  = apperrors.New(apperrors.KindNotFound, "BLOG_NOT_FOUND", "blog post not found")
	ErrDuplicateSlug = apperrors.Conflict("DUPLICATE_SLUG", "a blog post with this slug already exists")
)

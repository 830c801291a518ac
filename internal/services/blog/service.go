package blog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "storeadmin/internal/errors"
	"storeadmin/internal/models"
	"storeadmin/internal/repositories"
	"storeadmin/internal/utils"
	"storeadmin/internal/validation"

	"github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const maxSlugAttempts = 20

type Input struct {
	Title         string   `json:"title"`
	Excerpt       string   `json:"excerpt"`
	Content       string   `json:"content"`
	Tags          []string `json:"tags"`
	FeaturedImage string   `json:"featuredImage"`
	Status        string   `json:"status"`
}

func (in *Input) validate() error {
	if in.Status == "" {
		in.Status = models.BlogStatusDraft
	}
	v := validation.New()
	v.Required("title", in.Title)
	v.MaxLength("title", in.Title, validation.MaxNameLength)
	v.Required("content", in.Content)
	v.Check(utils.Slugify(in.Title) != "", "title", "must contain at least one letter or digit")
	v.OneOf("status", in.Status, models.BlogStatusDraft, models.BlogStatusPublished, models.BlogStatusArchived)
	return v.Err()
}

func cleanTags(tags []string) pq.StringArray {
	out := pq.StringArray{}
	seen := map[string]bool{}
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

type Service interface {
	Create(ctx context.Context, authorID uint, in Input) (*models.Blog, error)
	Update(ctx context.Context, id uint, in Input) (*models.Blog, error)
	Delete(ctx context.Context, id uint) error
	Get(ctx context.Context, id uint) (*models.Blog, error)
	// View returns a published post by slug and counts the view.
	View(ctx context.Context, slug string) (*models.Blog, error)
	List(ctx context.Context, f repositories.BlogFilter) ([]models.Blog, int64, error)
	ListPublished(ctx context.Context, f repositories.BlogFilter) ([]models.Blog, int64, error)
	Stats(ctx context.Context) (*repositories.BlogStats, error)
}

type service struct {
	store *repositories.Store
	log   *zap.Logger
}

func NewService(store *repositories.Store, log *zap.Logger) Service {
	if store == nil {
		panic("blog: store is required")
	}
	return &service{store: store, log: log}
}

func (s *service) Create(ctx context.Context, authorID uint, in Input) (*models.Blog, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	b := &models.Blog{
		Title:         in.Title,
		Excerpt:       in.Excerpt,
		Content:       in.Content,
		AuthorID:      authorID,
		Tags:          cleanTags(in.Tags),
		FeaturedImage: in.FeaturedImage,
		Status:        in.Status,
	}
	if in.Status == models.BlogStatusPublished {
		now := time.Now()
		b.PublishedAt = &now
	}

	err := s.store.WithTx(ctx, func(tx *repositories.Store) error {
		slug, err := uniqueSlug(ctx, tx, in.Title, 0)
		if err != nil {
			return err
		}
		b.Slug = slug
		return tx.Blogs.Create(ctx, b)
	})
	if err != nil {
		return nil, mapErr(err)
	}
	return b, nil
}

// Update rewrites the post. The slug follows the title, and publishedAt is
// stamped the first time the post is published and kept afterwards.
func (s *service) Update(ctx context.Context, id uint, in Input) (*models.Blog, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var b *models.Blog
	err := s.store.WithTx(ctx, func(tx *repositories.Store) error {
		var err error
		if b, err = tx.Blogs.GetByID(ctx, id); err != nil {
			return err
		}
		if b == nil {
			return ErrBlogNotFound
		}
		if in.Title != b.Title {
			if b.Slug, err = uniqueSlug(ctx, tx, in.Title, id); err != nil {
				return err
			}
		}
		b.Title = in.Title
		b.Excerpt = in.Excerpt
		b.Content = in.Content
		b.Tags = cleanTags(in.Tags)
		b.FeaturedImage = in.FeaturedImage
		b.Status = in.Status
		if in.Status == models.BlogStatusPublished && b.PublishedAt == nil {
			now := time.Now()
			b.PublishedAt = &now
		}
		return tx.Blogs.Save(ctx, b)
	})
	if err != nil {
		return nil, mapErr(err)
	}
	return b, nil
}

func (s *service) Delete(ctx context.Context, id uint) error {
	ok, err := s.store.Blogs.Delete(ctx, id)
	if err != nil {
		return apperrors.Internal(err)
	}
	if !ok {
		return ErrBlogNotFound
	}
	return nil
}

func (s *service) Get(ctx context.Context, id uint) (*models.Blog, error) {
	b, err := s.store.Blogs.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if b == nil {
		return nil, ErrBlogNotFound
	}
	return b, nil
}

func (s *service) View(ctx context.Context, slug string) (*models.Blog, error) {
	b, err := s.store.Blogs.GetBySlug(ctx, slug)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if b == nil || b.Status != models.BlogStatusPublished {
		return nil, ErrBlogNotFound
	}
	if err := s.store.Blogs.IncrementViews(ctx, b.ID); err != nil {
		return nil, apperrors.Internal(err)
	}
	b.ViewCount++
	return b, nil
}

func (s *service) List(ctx context.Context, f repositories.BlogFilter) ([]models.Blog, int64, error) {
	out, total, err := s.store.Blogs.List(ctx, f)
	if err != nil {
		return nil, 0, apperrors.Internal(err)
	}
	return out, total, nil
}

func (s *service) ListPublished(ctx context.Context, f repositories.BlogFilter) ([]models.Blog, int64, error) {
	f.Status = models.BlogStatusPublished
	return s.List(ctx, f)
}

func (s *service) Stats(ctx context.Context) (*repositories.BlogStats, error) {
	st, err := s.store.Blogs.Stats(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return st, nil
}

// uniqueSlug derives a slug from title and appends -2, -3, ... until it is free.
func uniqueSlug(ctx context.Context, tx *repositories.Store, title string, exceptID uint) (string, error) {
	base := utils.Slugify(title)
	candidate := base
	for i := 2; i < maxSlugAttempts+2; i++ {
		taken, err := tx.Blogs.SlugTaken(ctx, candidate, exceptID)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	return "", ErrDuplicateSlug
}

func mapErr(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateSlug
	}
	return apperrors.Internal(err)
}

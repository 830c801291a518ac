// Package storage holds uploaded product, KYC and blog images.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrInvalidPublicID = errors.New("invalid asset id")
)

var allowedExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".gif":  true,
	".pdf":  true,
}

// Asset identifies an uploaded file.
type Asset struct {
	URL      string `json:"url"`
	PublicID string `json:"publicId"`
}

// AssetStore is the remote asset boundary. Services upload before opening a
// transaction and delete only after it commits.
type AssetStore interface {
	Upload(ctx context.Context, r io.Reader, filename, folder string) (Asset, error)
	Delete(ctx context.Context, publicID string) error
}

// LocalStore keeps assets on disk under root and serves them from baseURL.
type LocalStore struct {
	root    string
	baseURL string
}

func NewLocalStore(root, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{root: root, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (s *LocalStore) Upload(ctx context.Context, r io.Reader, filename, folder string) (Asset, error) {
	if err := ctx.Err(); err != nil {
		return Asset{}, err
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExt[ext] {
		return Asset{}, ErrUnsupportedType
	}

	publicID := path.Join(sanitizeFolder(folder), uuid.NewString()+ext)
	full := filepath.Join(s.root, filepath.FromSlash(publicID))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return Asset{}, fmt.Errorf("create asset folder: %w", err)
	}

	f, err := os.OpenFile(full, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return Asset{}, fmt.Errorf("create asset: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(full)
		return Asset{}, fmt.Errorf("write asset: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(full)
		return Asset{}, fmt.Errorf("close asset: %w", err)
	}

	return Asset{URL: s.baseURL + "/" + publicID, PublicID: publicID}, nil
}

// Delete removes an asset. Deleting a missing asset is not an error.
func (s *LocalStore) Delete(ctx context.Context, publicID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if publicID == "" || strings.Contains(publicID, "..") || path.IsAbs(publicID) {
		return ErrInvalidPublicID
	}
	err := os.Remove(filepath.Join(s.root, filepath.FromSlash(publicID)))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete asset: %w", err)
	}
	return nil
}

func sanitizeFolder(folder string) string {
	folder = strings.Trim(path.Clean("/"+folder), "/")
	if folder == "" || folder == "." {
		return "misc"
	}
	return folder
}

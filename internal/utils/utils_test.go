package utils

import (
	"io"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"storeadmin/internal/config"
	"storeadmin/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReference(t *testing.T) {
	ref := NewReference(PrefixOrder)
	assert.Regexp(t, regexp.MustCompile(`^ORD-\d{13}-[0-9A-F]{6}$`), ref)
	assert.NotEqual(t, ref, NewReference(PrefixOrder))
}

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Blue Cotton T-Shirt":  "blue-cotton-t-shirt",
		"  Hello,   World!  ":  "hello-world",
		"Ünïcode Café 2024":    "ünïcode-café-2024",
		"---":                  "",
	}
	for in, want := range tests {
		assert.Equal(t, want, Slugify(in), in)
	}
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, TotalPages(0, 10))
	assert.Equal(t, 1, TotalPages(10, 10))
	assert.Equal(t, 2, TotalPages(11, 10))
	assert.Equal(t, 0, TotalPages(5, 0))
}

func TestGetPagination(t *testing.T) {
	app := fiber.New()
	var got Pagination
	app.Get("/", func(c *fiber.Ctx) error {
		got = GetPagination(c, 1, 20)
		return c.SendStatus(fiber.StatusOK)
	})

	cases := []struct {
		query      string
		page, lim  int
		wantOffset int
	}{
		{"", 1, 20, 0},
		{"?page=3&limit=10", 3, 10, 20},
		{"?page=-1&limit=abc", 1, 20, 0},
		{"?limit=1000", 1, MaxPageLimit, 0},
	}
	for _, tc := range cases {
		resp, err := app.Test(httptest.NewRequest("GET", "/"+tc.query, nil))
		require.NoError(t, err)
		_, _ = io.Copy(io.Discard, resp.Body)
		assert.Equal(t, tc.page, got.Page, tc.query)
		assert.Equal(t, tc.lim, got.Limit, tc.query)
		assert.Equal(t, tc.wantOffset, got.Offset, tc.query)
	}

	got.SetTotal(45)
	assert.Equal(t, int64(45), got.Total)
	assert.Equal(t, 1, got.Pages)
}

func TestGenerateAndParseTokens(t *testing.T) {
	cfg := config.JWT{Secret: "test-secret", AccessTTL: time.Minute, RefreshTTL: time.Hour, Issuer: "storeadmin-test"}
	claims := &models.UserClaims{
		UserID:       7,
		Email:        "admin@example.com",
		Role:         models.RoleAdmin,
		Permissions:  models.GetDefaultPermissions(models.RoleAdmin),
		TokenVersion: 3,
	}

	access, refresh, err := GenerateTokens(cfg, claims)
	require.NoError(t, err)

	parsed, err := ParseToken(cfg, access)
	require.NoError(t, err)
	assert.Equal(t, uint(7), parsed.UserID)
	assert.Equal(t, TokenTypeAccess, parsed.TokenType)
	assert.Equal(t, 3, parsed.TokenVersion)
	assert.True(t, parsed.HasPermission(models.PermissionWriteAdmin))

	parsedRefresh, err := ParseToken(cfg, refresh)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeRefresh, parsedRefresh.TokenType)
	assert.Empty(t, parsedRefresh.Permissions)

	_, err = ParseToken(config.JWT{Secret: "other", Issuer: cfg.Issuer}, access)
	assert.Error(t, err)

	_, _, err = GenerateTokens(config.JWT{}, claims)
	assert.Error(t, err)
}

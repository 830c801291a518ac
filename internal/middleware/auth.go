// Package middleware provides HTTP middleware components for the application.
// It includes authentication, authorization and request deadline handling
// for the fiber web framework.
package middleware

import (
	"context"
	"strings"

	"storeadmin/internal/config"
	"storeadmin/internal/models"
	"storeadmin/internal/utils"
	"storeadmin/internal/utils/response"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// TokenVersions reports the current token version of a user. auth.Service
// satisfies it.
type TokenVersions interface {
	TokenVersion(ctx context.Context, userID uint) (int, error)
}

// Auth validates bearer access tokens and puts the claims in the request
// context under "claims".
type Auth struct {
	jwt      config.JWT
	versions TokenVersions
	log      *zap.Logger
}

func NewAuth(jwtCfg config.JWT, versions TokenVersions, log *zap.Logger) *Auth {
	if log == nil {
		log = zap.NewNop()
	}
	return &Auth{jwt: jwtCfg, versions: versions, log: log}
}

// Handler rejects the request unless it carries a valid access token whose
// version matches the user's current one. The token is read from the
// Authorization header first, then from the access_token cookie.
func (m *Auth) Handler(c *fiber.Ctx) error {
	token := bearerToken(c)
	if token == "" {
		return response.Unauthorized(c)
	}

	claims, err := utils.ParseToken(m.jwt, token)
	if err != nil {
		m.log.Debug("token rejected", zap.Error(err))
		return response.Unauthorized(c)
	}
	if claims.TokenType != utils.TokenTypeAccess {
		return response.Unauthorized(c)
	}

	current, err := m.versions.TokenVersion(c.UserContext(), claims.UserID)
	if err != nil {
		return response.FromError(c, err)
	}
	if claims.TokenVersion != current {
		m.log.Debug("token version mismatch",
			zap.Uint("user_id", claims.UserID),
			zap.Int("token_version", claims.TokenVersion),
			zap.Int("current_version", current),
		)
		return response.Unauthorized(c)
	}

	c.Locals("claims", claims)
	c.Locals("userID", claims.UserID)
	return c.Next()
}

// Optional attaches claims when the request carries a valid access token and
// otherwise lets it through anonymously.
func (m *Auth) Optional(c *fiber.Ctx) error {
	token := bearerToken(c)
	if token == "" {
		return c.Next()
	}
	claims, err := utils.ParseToken(m.jwt, token)
	if err != nil || claims.TokenType != utils.TokenTypeAccess {
		return c.Next()
	}
	if current, err := m.versions.TokenVersion(c.UserContext(), claims.UserID); err != nil || current != claims.TokenVersion {
		return c.Next()
	}
	c.Locals("claims", claims)
	c.Locals("userID", claims.UserID)
	return c.Next()
}

func bearerToken(c *fiber.Ctx) string {
	if h := c.Get(fiber.HeaderAuthorization); h != "" {
		if !strings.HasPrefix(h, "Bearer ") {
			return ""
		}
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return c.Cookies("access_token")
}

// AdminOnly verifies that the authenticated caller is an admin.
func AdminOnly(c *fiber.Ctx) error {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}
	if !claims.IsAdmin() {
		return response.Forbidden(c)
	}
	return c.Next()
}

// HasPermission returns a middleware that checks for a specific permission.
// Admins pass every check.
func HasPermission(permission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := utils.GetUserClaims(c)
		if err != nil {
			return response.Unauthorized(c)
		}
		if claims.Role == models.RoleAdmin || claims.HasPermission(permission) {
			return c.Next()
		}
		return response.Forbidden(c)
	}
}

package handlers

import (
	"time"

	"storeadmin/internal/config"
	"storeadmin/internal/services/auth"
	"storeadmin/internal/utils"
	"storeadmin/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService auth.Service
	jwt         config.JWT
}

func NewAuthHandler(authService auth.Service, jwtCfg config.JWT) *AuthHandler {
	return &AuthHandler{authService: authService, jwt: jwtCfg}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AdminLogin handles admin authentication and returns JWT tokens
func (h *AuthHandler) AdminLogin(c *fiber.Ctx) error {
	var in credentials
	if err := bind(c, &in); err != nil {
		return response.FromError(c, err)
	}
	session, err := h.authService.AdminLogin(c.UserContext(), in.Email, in.Password)
	if err != nil {
		return response.FromError(c, err)
	}
	h.setAuthCookies(c, session.AccessToken, session.RefreshToken)
	return response.Success(c, "Login successful", session)
}

// CustomerLogin handles customer authentication and returns JWT tokens
func (h *AuthHandler) CustomerLogin(c *fiber.Ctx) error {
	var in credentials
	if err := bind(c, &in); err != nil {
		return response.FromError(c, err)
	}
	session, err := h.authService.CustomerLogin(c.UserContext(), in.Email, in.Password)
	if err != nil {
		return response.FromError(c, err)
	}
	h.setAuthCookies(c, session.AccessToken, session.RefreshToken)
	return response.Success(c, "Login successful", session)
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var in auth.RegisterInput
	if err := bind(c, &in); err != nil {
		return response.FromError(c, err)
	}
	session, err := h.authService.Register(c.UserContext(), in)
	if err != nil {
		return response.FromError(c, err)
	}
	h.setAuthCookies(c, session.AccessToken, session.RefreshToken)
	return response.Created(c, "Registration successful", session)
}

// RefreshToken handles token refresh requests. The refresh token is taken
// from the cookie first, then from the body.
func (h *AuthHandler) RefreshToken(c *fiber.Ctx) error {
	refreshToken := c.Cookies("refresh_token")
	if refreshToken == "" {
		var input struct {
			RefreshToken string `json:"refreshToken"`
		}
		_ = c.BodyParser(&input)
		refreshToken = input.RefreshToken
	}
	if refreshToken == "" {
		return response.Unauthorized(c)
	}

	session, err := h.authService.Refresh(c.UserContext(), refreshToken)
	if err != nil {
		return response.FromError(c, err)
	}
	h.setAuthCookies(c, session.AccessToken, session.RefreshToken)
	return response.Success(c, "Token refreshed", session)
}

// Logout revokes every token of the caller and clears the cookies.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return response.FromError(c, err)
	}
	if err := h.authService.Logout(c.UserContext(), claims.UserID); err != nil {
		return response.FromError(c, err)
	}
	h.clearAuthCookies(c)
	return response.Success(c, "Successfully logged out", nil)
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return response.FromError(c, err)
	}
	user, err := h.authService.Me(c.UserContext(), claims.UserID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Profile retrieved", fiber.Map{
		"user":        user,
		"permissions": claims.Permissions,
	})
}

// ChangePassword handles password change requests. Existing sessions are
// revoked, so the caller receives fresh cookies only on the next login.
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	var input struct {
		OldPassword string `json:"oldPassword"`
		NewPassword string `json:"newPassword"`
	}
	if err := bind(c, &input); err != nil {
		return response.FromError(c, err)
	}
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return response.FromError(c, err)
	}
	if err := h.authService.ChangePassword(c.UserContext(), claims.UserID, input.OldPassword, input.NewPassword); err != nil {
		return response.FromError(c, err)
	}
	h.clearAuthCookies(c)
	return response.Success(c, "Password changed successfully", nil)
}

func (h *AuthHandler) setAuthCookies(c *fiber.Ctx, accessToken, refreshToken string) {
	now := time.Now()
	c.Cookie(&fiber.Cookie{
		Name:     "access_token",
		Value:    accessToken,
		Expires:  now.Add(h.jwt.AccessTTL),
		HTTPOnly: true,
		Secure:   config.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})
	c.Cookie(&fiber.Cookie{
		Name:     "refresh_token",
		Value:    refreshToken,
		Expires:  now.Add(h.jwt.RefreshTTL),
		HTTPOnly: true,
		Secure:   config.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})
}

func (h *AuthHandler) clearAuthCookies(c *fiber.Ctx) {
	for _, name := range []string{"access_token", "refresh_token"} {
		c.Cookie(&fiber.Cookie{
			Name:     name,
			Value:    "",
			Expires:  time.Now().Add(-time.Hour),
			HTTPOnly: true,
			Secure:   config.IsProduction(),
			Path:     "/",
		})
	}
}

func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	var input auth.ProfileInput
	if err := bind(c, &input); err != nil {
		return response.FromError(c, err)
	}
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return response.FromError(c, err)
	}
	u, err := h.authService.UpdateProfile(c.UserContext(), claims.UserID, input)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Profile updated successfully", u)
}

// ChangeEmail signs the user out everywhere; the client logs in again with
// the new address.
func (h *AuthHandler) ChangeEmail(c *fiber.Ctx) error {
	var input struct {
		NewEmail string `json:"newEmail"`
		Password string `json:"password"`
	}
	if err := bind(c, &input); err != nil {
		return response.FromError(c, err)
	}
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return response.FromError(c, err)
	}
	u, err := h.authService.ChangeEmail(c.UserContext(), claims.UserID, input.NewEmail, input.Password)
	if err != nil {
		return response.FromError(c, err)
	}
	h.clearAuthCookies(c)
	return response.Success(c, "Email changed successfully", u)
}

// Package auth issues and revokes sessions for admins and customers.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"storeadmin/internal/config"
	apperrors "storeadmin/internal/errors"
	"storeadmin/internal/models"
	"storeadmin/internal/repositories"
	"storeadmin/internal/repositories/cache"
	"storeadmin/internal/utils"
	"storeadmin/internal/validation"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Session is what a successful login, registration or refresh returns.
type Session struct {
	User         *models.User `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}

type RegisterInput struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type ProfileInput struct {
	FullName string `json:"fullName"`
	Phone    string `json:"phone"`
}

type Service interface {
	AdminLogin(ctx context.Context, email, password string) (*Session, error)
	CustomerLogin(ctx context.Context, email, password string) (*Session, error)
	Register(ctx context.Context, in RegisterInput) (*Session, error)
	Refresh(ctx context.Context, refreshToken string) (*Session, error)
	Logout(ctx context.Context, userID uint) error
	Me(ctx context.Context, userID uint) (*models.User, error)
	ChangePassword(ctx context.Context, userID uint, oldPassword, newPassword string) error
	UpdateProfile(ctx context.Context, userID uint, in ProfileInput) (*models.User, error)
	// ChangeEmail moves the account to newEmail after re-checking the
	// password. Existing sessions are revoked.
	ChangeEmail(ctx context.Context, userID uint, newEmail, password string) (*models.User, error)
	// TokenVersion returns the user's current token version, served from
	// cache when possible. Tokens carrying an older version are revoked.
	TokenVersion(ctx context.Context, userID uint) (int, error)
}

type service struct {
	store *repositories.Store
	jwt   config.JWT
	cache cache.Cache
	log   *zap.Logger
}

func NewService(store *repositories.Store, jwtCfg config.JWT, c cache.Cache, log *zap.Logger) Service {
	if store == nil {
		panic("auth: store is required")
	}
	return &service{store: store, jwt: jwtCfg, cache: c, log: log}
}

// HashPassword bcrypt-hashes a plain password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// TokenVersionKey is the cache key holding a user's token version.
func TokenVersionKey(userID uint) string {
	return cache.GenerateKey(cache.EntityUser, cache.KeyTokenVersion, userID)
}

func (s *service) AdminLogin(ctx context.Context, email, password string) (*Session, error) {
	return s.login(ctx, email, password, models.RoleAdmin)
}

func (s *service) CustomerLogin(ctx context.Context, email, password string) (*Session, error) {
	return s.login(ctx, email, password, models.RoleCustomer)
}

func (s *service) login(ctx context.Context, email, password, role string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	v := validation.New()
	v.Email("email", email)
	v.Required("password", password)
	if err := v.Err(); err != nil {
		return nil, err
	}

	u, err := s.store.Users.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if u == nil || u.Role != role {
		s.log.Info("login rejected", zap.String("email", email), zap.String("role", role))
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		s.log.Info("login rejected", zap.Uint("user_id", u.ID), zap.String("reason", "password"))
		return nil, ErrInvalidCredentials
	}
	if !u.IsActive() {
		return nil, ErrAccountInactive
	}

	now := time.Now()
	if err := s.store.Users.UpdateFields(ctx, u.ID, map[string]any{"last_login_at": now}); err != nil {
		return nil, apperrors.Internal(err)
	}
	u.LastLoginAt = &now
	return s.issue(u)
}

func (s *service) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	v := validation.New()
	v.Required("fullName", in.FullName)
	v.MaxLength("fullName", in.FullName, validation.MaxNameLength)
	v.Email("email", in.Email)
	if in.Phone != "" {
		v.Phone("phone", in.Phone)
	}
	v.Password("password", in.Password)
	if err := v.Err(); err != nil {
		return nil, err
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	u := &models.User{
		Email:        in.Email,
		Password:     hash,
		FullName:     in.FullName,
		Phone:        in.Phone,
		Role:         models.RoleCustomer,
		Status:       models.UserStatusActive,
		TokenVersion: 1,
	}
	if err := s.store.Users.Create(ctx, u); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, apperrors.Internal(err)
	}
	s.log.Info("customer registered", zap.Uint("user_id", u.ID))
	return s.issue(u)
}

func (s *service) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	claims, err := utils.ParseToken(s.jwt, refreshToken)
	if err != nil || claims.TokenType != utils.TokenTypeRefresh {
		return nil, ErrInvalidRefreshToken
	}

	u, err := s.store.Users.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if u == nil {
		return nil, ErrInvalidRefreshToken
	}
	if u.TokenVersion != claims.TokenVersion {
		return nil, ErrSessionExpired
	}
	if !u.IsActive() {
		return nil, ErrAccountInactive
	}
	return s.issue(u)
}

// Logout revokes every outstanding token of the user.
func (s *service) Logout(ctx context.Context, userID uint) error {
	if _, err := s.store.Users.IncrementTokenVersion(ctx, userID); err != nil {
		return apperrors.Internal(err)
	}
	s.forgetVersion(ctx, userID)
	return nil
}

func (s *service) Me(ctx context.Context, userID uint) (*models.User, error) {
	u, err := s.store.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

// ChangePassword replaces the password and revokes existing sessions.
func (s *service) ChangePassword(ctx context.Context, userID uint, oldPassword, newPassword string) error {
	v := validation.New()
	v.Required("currentPassword", oldPassword)
	v.Password("newPassword", newPassword)
	v.Check(oldPassword != newPassword, "newPassword", "must differ from the current password")
	if err := v.Err(); err != nil {
		return err
	}

	u, err := s.Me(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(oldPassword)); err != nil {
		return ErrWrongPassword
	}
	hash, err := HashPassword(newPassword)
	if err != nil {
		return apperrors.Internal(err)
	}

	err = s.store.WithTx(ctx, func(tx *repositories.Store) error {
		if err := tx.Users.UpdateFields(ctx, userID, map[string]any{"password": hash}); err != nil {
			return err
		}
		_, err := tx.Users.IncrementTokenVersion(ctx, userID)
		return err
	})
	if err != nil {
		return apperrors.Internal(err)
	}
	s.forgetVersion(ctx, userID)
	return nil
}

func (s *service) UpdateProfile(ctx context.Context, userID uint, in ProfileInput) (*models.User, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Phone = strings.TrimSpace(in.Phone)
	v := validation.New()
	v.Required("fullName", in.FullName)
	v.MaxLength("fullName", in.FullName, validation.MaxNameLength)
	if in.Phone != "" {
		v.Phone("phone", in.Phone)
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	if _, err := s.Me(ctx, userID); err != nil {
		return nil, err
	}
	if err := s.store.Users.UpdateFields(ctx, userID, map[string]any{
		"full_name": in.FullName,
		"phone":     in.Phone,
	}); err != nil {
		return nil, apperrors.Internal(err)
	}
	return s.Me(ctx, userID)
}

func (s *service) ChangeEmail(ctx context.Context, userID uint, newEmail, password string) (*models.User, error) {
	newEmail = strings.ToLower(strings.TrimSpace(newEmail))
	v := validation.New()
	v.Email("newEmail", newEmail)
	v.Required("password", password)
	if err := v.Err(); err != nil {
		return nil, err
	}

	u, err := s.Me(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return nil, ErrWrongPassword
	}
	if u.Email == newEmail {
		return nil, apperrors.Validation(map[string]string{"newEmail": "must differ from the current email"})
	}
	taken, err := s.store.Users.GetByEmail(ctx, newEmail)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if taken != nil {
		return nil, ErrEmailTaken
	}

	err = s.store.WithTx(ctx, func(tx *repositories.Store) error {
		if err := tx.Users.UpdateFields(ctx, userID, map[string]any{"email": newEmail}); err != nil {
			return err
		}
		_, err := tx.Users.IncrementTokenVersion(ctx, userID)
		return err
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, ErrEmailTaken
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	s.forgetVersion(ctx, userID)
	s.log.Info("email changed", zap.Uint("user_id", userID))
	return s.Me(ctx, userID)
}

func (s *service) TokenVersion(ctx context.Context, userID uint) (int, error) {
	key := TokenVersionKey(userID)
	if s.cache != nil {
		var version int
		hit, err := s.cache.Get(ctx, key, &version)
		if err != nil {
			s.log.Warn("token version cache read failed", zap.Uint("user_id", userID), zap.Error(err))
		}
		if hit {
			return version, nil
		}
	}

	u, err := s.store.Users.GetByID(ctx, userID)
	if err != nil {
		return 0, apperrors.Internal(err)
	}
	if u == nil || !u.IsActive() {
		return 0, ErrSessionExpired
	}
	if s.cache != nil {
		if err := s.cache.SetWithTTL(ctx, key, u.TokenVersion, s.jwt.AccessTTL); err != nil {
			s.log.Warn("token version cache write failed", zap.Uint("user_id", userID), zap.Error(err))
		}
	}
	return u.TokenVersion, nil
}

func (s *service) forgetVersion(ctx context.Context, userID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(context.WithoutCancel(ctx), TokenVersionKey(userID)); err != nil {
		s.log.Warn("token version cache invalidation failed", zap.Uint("user_id", userID), zap.Error(err))
	}
}

func (s *service) issue(u *models.User) (*Session, error) {
	access, refresh, err := utils.GenerateTokens(s.jwt, &models.UserClaims{
		UserID:       u.ID,
		Email:        u.Email,
		Role:         u.Role,
		Permissions:  models.GetDefaultPermissions(u.Role),
		TokenVersion: u.TokenVersion,
	})
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return &Session{User: u, AccessToken: access, RefreshToken: refresh}, nil
}

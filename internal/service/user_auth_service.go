package service

import (
	"context"
	"strings"
	"time"

	"github.com/bestie-next/internal/cache"
	"github.com/bestie-next/internal/config"
	"github.com/bestie-next/internal/constants"
	"github.com/bestie-next/internal/models"
	"github.com/bestie-next/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// UserAuthService 捐赠人认证服务
type UserAuthService struct {
	cfg         *config.Config
	profileRepo repository.ProfileRepository
}

// NewUserAuthService 创建捐赠人认证服务
func NewUserAuthService(cfg *config.Config, profileRepo repository.ProfileRepository) *UserAuthService {
	return &UserAuthService{
		cfg:         cfg,
		profileRepo: profileRepo,
	}
}

// UserJWTClaims 捐赠人 JWT 声明
type UserJWTClaims struct {
	ProfileID    uint   `json:"profile_id"`
	Email        string `json:"email"`
	TokenVersion uint64 `json:"token_version"`
	jwt.RegisteredClaims
}

// GenerateJWT 生成捐赠人 Token
func (s *UserAuthService) GenerateJWT(profile *models.Profile) (string, time.Time, error) {
	expiresAt := time.Now().Add(time.Duration(s.cfg.UserJWT.ExpireHours) * time.Hour)

	claims := UserJWTClaims{
		ProfileID:    profile.ID,
		Email:        profile.Email,
		TokenVersion: profile.TokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.cfg.UserJWT.SecretKey))
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ParseJWT 解析捐赠人 Token
func (s *UserAuthService) ParseJWT(tokenString string) (*UserJWTClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := parser.ParseWithClaims(tokenString, &UserJWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.UserJWT.SecretKey), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*UserJWTClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, ErrInvalidCredentials
}

// Login 捐赠人登录
func (s *UserAuthService) Login(email, password string) (*models.Profile, string, time.Time, error) {
	profile, err := s.profileRepo.GetByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if profile == nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	if profile.Status != constants.UserStatusActive {
		return nil, "", time.Time{}, ErrAccountDisabled
	}

	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(password)); err != nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}

	token, expiresAt, err := s.GenerateJWT(profile)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	now := time.Now()
	profile.LastLoginAt = &now
	if err := s.profileRepo.Update(profile); err != nil {
		return nil, "", time.Time{}, err
	}
	_ = cache.SetProfileAuthState(context.Background(), cache.BuildProfileAuthState(profile))

	return profile, token, expiresAt, nil
}

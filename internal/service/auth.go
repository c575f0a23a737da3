package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/gytx-dev/tombola-api/internal/repository"
)

var (
	ErrSettingsNotFound = repository.ErrSettingsNotFound
	ErrWrongPassword    = errors.New("wrong password")
)

type SettingsRepository interface {
	GetAdminPasswordHash(ctx context.Context) (string, error)
	SetAdminPasswordHash(ctx context.Context, hash string) error
}

type AuthService struct {
	repo SettingsRepository
}

func NewAuthService(repo SettingsRepository) *AuthService {
	return &AuthService{
		repo: repo,
	}
}

// Login checks the submitted password against the stored admin hash.
// With no hash stored yet the login is denied; Bootstrap seeds the
// first one at startup.
func (s *AuthService) Login(ctx context.Context, password string) error {
	hash, err := s.repo.GetAdminPasswordHash(ctx)
	if err != nil {
		if errors.Is(err, ErrSettingsNotFound) {
			return ErrWrongPassword
		}

		return fmt.Errorf("s.repo.GetAdminPasswordHash -> %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrWrongPassword
	}

	return nil
}

func (s *AuthService) ChangePassword(ctx context.Context, current, next string) error {
	if err := s.Login(ctx, current); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("bcrypt.GenerateFromPassword -> %w", err)
	}

	if err := s.repo.SetAdminPasswordHash(ctx, string(hash)); err != nil {
		return fmt.Errorf("s.repo.SetAdminPasswordHash -> %w", err)
	}

	return nil
}

// Bootstrap stores the initial admin password if none exists. Called once
// at startup with the configured default; a hash already in place wins.
func (s *AuthService) Bootstrap(ctx context.Context, defaultPassword string) error {
	_, err := s.repo.GetAdminPasswordHash(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrSettingsNotFound) {
		return fmt.Errorf("s.repo.GetAdminPasswordHash -> %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(defaultPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("bcrypt.GenerateFromPassword -> %w", err)
	}

	if err := s.repo.SetAdminPasswordHash(ctx, string(hash)); err != nil {
		return fmt.Errorf("s.repo.SetAdminPasswordHash -> %w", err)
	}

	return nil
}

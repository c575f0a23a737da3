package repository

import (
	"context"
	"fmt"

	"github.com/gytx-dev/tombola-api/internal/repository/dao"
)

var ErrSettingsNotFound = dao.ErrSettingsNotFound

type SettingsDAO interface {
	Get(ctx context.Context) (dao.AppSettings, error)
	UpdatePasswordHash(ctx context.Context, hash string) error
}

type SettingsRepository struct {
	dao SettingsDAO
}

func NewSettingsRepository(dao SettingsDAO) *SettingsRepository {
	return &SettingsRepository{
		dao: dao,
	}
}

func (r *SettingsRepository) GetAdminPasswordHash(ctx context.Context) (string, error) {
	settings, err := r.dao.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("r.dao.Get -> %w", err)
	}

	return settings.AdminPasswordHash, nil
}

func (r *SettingsRepository) SetAdminPasswordHash(ctx context.Context, hash string) error {
	if err := r.dao.UpdatePasswordHash(ctx, hash); err != nil {
		return fmt.Errorf("r.dao.UpdatePasswordHash -> %w", err)
	}

	return nil
}

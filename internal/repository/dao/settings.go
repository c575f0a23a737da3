package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// AppSettings holds the single shared admin credential, bcrypt-hashed.
type AppSettings struct {
	ID                uint   `gorm:"primaryKey"`
	AdminPasswordHash string `gorm:"not null"`
	UpdatedAt         time.Time
}

type SettingsDAO struct {
	db *gorm.DB
}

func NewSettingsDAO(db *gorm.DB) *SettingsDAO {
	return &SettingsDAO{
		db: db,
	}
}

func (d *SettingsDAO) Get(ctx context.Context) (AppSettings, error) {
	var settings AppSettings

	result := d.db.WithContext(ctx).First(&settings)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return AppSettings{}, ErrSettingsNotFound
		}

		return AppSettings{}, result.Error
	}

	return settings, nil
}

func (d *SettingsDAO) UpdatePasswordHash(ctx context.Context, hash string) error {
	var settings AppSettings

	err := d.db.WithContext(ctx).First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return d.db.WithContext(ctx).Create(&AppSettings{AdminPasswordHash: hash}).Error
	}
	if err != nil {
		return err
	}

	return d.db.WithContext(ctx).
		Model(&AppSettings{}).
		Where("id = ?", settings.ID).
		Update("admin_password_hash", hash).Error
}

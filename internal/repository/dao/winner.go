package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

type Winner struct {
	ID              uint `gorm:"primaryKey"`
	ParticipantID   uint `gorm:"not null;index"`
	Participant     Participant `gorm:"foreignKey:ParticipantID"`
	TombolaID       uint        `gorm:"not null;index"`
	Tombola         Tombola     `gorm:"foreignKey:TombolaID"`
	PrizeAmount     string      `gorm:"not null"`
	PrizeRank       int         `gorm:"not null"`
	BonusCommission int         `gorm:"not null;default:0"`
	PhotoURL        string
	CreatedAt       time.Time
}

type WinnerDAO struct {
	db *gorm.DB
}

func NewWinnerDAO(db *gorm.DB) *WinnerDAO {
	return &WinnerDAO{
		db: db,
	}
}

func (d *WinnerDAO) FindAll(ctx context.Context) ([]Winner, error) {
	var winners []Winner

	result := d.db.WithContext(ctx).
		Preload("Participant").
		Preload("Tombola").
		Order("created_at DESC").
		Find(&winners)
	if result.Error != nil {
		return nil, result.Error
	}

	return winners, nil
}

func (d *WinnerDAO) FindByTombola(ctx context.Context, tombolaID uint) ([]Winner, error) {
	var winners []Winner

	result := d.db.WithContext(ctx).
		Preload("Participant").
		Where("tombola_id = ?", tombolaID).
		Order("prize_rank ASC").
		Find(&winners)
	if result.Error != nil {
		return nil, result.Error
	}

	return winners, nil
}

// UpdatePhoto is the only mutation winners allow after a draw.
func (d *WinnerDAO) UpdatePhoto(ctx context.Context, id uint, photoURL string) (Winner, error) {
	result := d.db.WithContext(ctx).
		Model(&Winner{}).
		Where("id = ?", id).
		Update("photo_url", photoURL)
	if result.Error != nil {
		return Winner{}, result.Error
	}
	if result.RowsAffected == 0 {
		return Winner{}, ErrWinnerNotFound
	}

	var winner Winner
	if err := d.db.WithContext(ctx).First(&winner, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Winner{}, ErrWinnerNotFound
		}

		return Winner{}, err
	}

	return winner, nil
}

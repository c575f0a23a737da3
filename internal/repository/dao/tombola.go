package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

type Tombola struct {
	ID          uint      `gorm:"primaryKey"`
	Title       string    `gorm:"not null"`
	Description string
	TicketPrice int       `gorm:"not null"`
	DrawDate    time.Time `gorm:"not null"`
	Jackpot     string
	MaxWinners  int            `gorm:"not null;default:1"`
	Status      string         `gorm:"not null;default:active;index"`
	Prizes      []TombolaPrize `gorm:"foreignKey:TombolaID"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type TombolaPrize struct {
	ID        uint   `gorm:"primaryKey"`
	TombolaID uint   `gorm:"not null;index"`
	Position  int    `gorm:"not null"` // 1-based prize order
	Name      string `gorm:"not null"`
	Value     string
}

type TombolaDAO struct {
	db *gorm.DB
}

func NewTombolaDAO(db *gorm.DB) *TombolaDAO {
	return &TombolaDAO{
		db: db,
	}
}

func (d *TombolaDAO) Insert(ctx context.Context, tombola Tombola) (Tombola, error) {
	result := d.db.WithContext(ctx).Create(&tombola)
	if result.Error != nil {
		return Tombola{}, result.Error
	}

	return tombola, nil
}

func (d *TombolaDAO) FindByID(ctx context.Context, id uint) (Tombola, error) {
	var tombola Tombola

	result := d.db.WithContext(ctx).
		Preload("Prizes", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&tombola, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Tombola{}, ErrTombolaNotFound
		}

		return Tombola{}, result.Error
	}

	return tombola, nil
}

func (d *TombolaDAO) FindAll(ctx context.Context) ([]Tombola, error) {
	var tombolas []Tombola

	result := d.db.WithContext(ctx).
		Preload("Prizes", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Order("created_at DESC").
		Find(&tombolas)
	if result.Error != nil {
		return nil, result.Error
	}

	return tombolas, nil
}

// FindActive returns the single currently active tombola.
func (d *TombolaDAO) FindActive(ctx context.Context) (Tombola, error) {
	var tombola Tombola

	result := d.db.WithContext(ctx).
		Preload("Prizes", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("status = ?", "active").
		First(&tombola)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Tombola{}, ErrTombolaNotFound
		}

		return Tombola{}, result.Error
	}

	return tombola, nil
}

func (d *TombolaDAO) Update(ctx context.Context, tombola Tombola) (Tombola, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&Tombola{}).
			Where("id = ?", tombola.ID).
			Updates(map[string]interface{}{
				"title":        tombola.Title,
				"description":  tombola.Description,
				"ticket_price": tombola.TicketPrice,
				"draw_date":    tombola.DrawDate,
				"jackpot":      tombola.Jackpot,
				"max_winners":  tombola.MaxWinners,
			}).Error; err != nil {
			return err
		}

		if tombola.Prizes == nil {
			return nil
		}

		if err := tx.Where("tombola_id = ?", tombola.ID).Delete(&TombolaPrize{}).Error; err != nil {
			return err
		}
		for i := range tombola.Prizes {
			tombola.Prizes[i].ID = 0
			tombola.Prizes[i].TombolaID = tombola.ID
		}
		if len(tombola.Prizes) > 0 {
			if err := tx.Create(&tombola.Prizes).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return Tombola{}, err
	}

	return d.FindByID(ctx, tombola.ID)
}

func (d *TombolaDAO) Delete(ctx context.Context, id uint) error {
	result := d.db.WithContext(ctx).Delete(&Tombola{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTombolaNotFound
	}

	return nil
}

func (d *TombolaDAO) Cancel(ctx context.Context, id uint) error {
	result := d.db.WithContext(ctx).
		Model(&Tombola{}).
		Where("id = ? AND status = ?", id, "active").
		Update("status", "cancelled")
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTombolaNotActive
	}

	return nil
}

// CompleteDraw persists the whole draw outcome in one transaction. The
// conditional status flip is the double-draw guard: zero affected rows
// means another draw already completed (or cancelled) this tombola, and
// the transaction is rolled back with ErrTombolaNotActive.
func (d *TombolaDAO) CompleteDraw(ctx context.Context, tombolaID uint, winners []Winner) ([]Winner, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&Tombola{}).
			Where("id = ? AND status = ?", tombolaID, "active").
			Update("status", "completed")
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrTombolaNotActive
		}

		if len(winners) > 0 {
			if err := tx.Create(&winners).Error; err != nil {
				return err
			}
		}

		return tx.Model(&Coupon{}).
			Where("tombola_id = ? AND id IN (?)",
				tombolaID,
				tx.Model(&CouponUse{}).Select("coupon_id").Where("tombola_id = ?", tombolaID),
			).
			Updates(map[string]interface{}{"archived": true, "is_active": false}).Error
	})
	if err != nil {
		return nil, err
	}

	return winners, nil
}

package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrCouponUseNotFound = errors.New("coupon use not found")

type Coupon struct {
	ID                 uint   `gorm:"primaryKey"`
	Code               string `gorm:"uniqueIndex:uni_coupons_code;not null"`
	TombolaID          uint   `gorm:"not null;index"`
	Tombola            Tombola `gorm:"foreignKey:TombolaID"`
	CreatorName        string  `gorm:"not null"`
	CreatorPhone       string  `gorm:"not null;index"`
	DiscountPercentage int     `gorm:"not null"`
	TotalUses          int     `gorm:"not null;default:0"`
	TotalRevenue       int     `gorm:"not null;default:0"`
	TotalCommission    int     `gorm:"not null;default:0"`
	IsActive           bool    `gorm:"not null;default:true"`
	Archived           bool    `gorm:"not null;default:false"`
	ParrainContacted   bool    `gorm:"not null;default:false"`
	CreatedAt          time.Time

	Uses []CouponUse `gorm:"foreignKey:CouponID"`
}

type CouponUse struct {
	ID               uint `gorm:"primaryKey"`
	CouponID         uint `gorm:"not null;index"`
	ParticipantID    uint `gorm:"not null;index"`
	TombolaID        uint `gorm:"not null;index"`
	OriginalPrice    int  `gorm:"not null"`
	DiscountAmount   int  `gorm:"not null"`
	FinalPrice       int  `gorm:"not null"`
	CommissionEarned int  `gorm:"not null"`
	UsedAt           time.Time `gorm:"autoCreateTime"`
}

type CouponDAO struct {
	db *gorm.DB
}

func NewCouponDAO(db *gorm.DB) *CouponDAO {
	return &CouponDAO{
		db: db,
	}
}

func (d *CouponDAO) Insert(ctx context.Context, coupon Coupon) (Coupon, error) {
	result := d.db.WithContext(ctx).Create(&coupon)
	if result.Error != nil {
		if isUniqueViolation(result.Error, "uni_coupons_code") {
			return Coupon{}, ErrCouponCodeExists
		}

		return Coupon{}, result.Error
	}

	return coupon, nil
}

func (d *CouponDAO) FindByID(ctx context.Context, id uint) (Coupon, error) {
	var coupon Coupon

	result := d.db.WithContext(ctx).Preload("Tombola").First(&coupon, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Coupon{}, ErrCouponNotFound
		}

		return Coupon{}, result.Error
	}

	return coupon, nil
}

// FindActiveByCode resolves a code the way participants redeem it: only
// active, unarchived coupons count.
func (d *CouponDAO) FindActiveByCode(ctx context.Context, code string) (Coupon, error) {
	var coupon Coupon

	result := d.db.WithContext(ctx).
		Preload("Tombola").
		Where("code = ? AND is_active = ?", code, true).
		First(&coupon)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Coupon{}, ErrCouponNotFound
		}

		return Coupon{}, result.Error
	}

	return coupon, nil
}

func (d *CouponDAO) ActiveCodeExists(ctx context.Context, code string) (bool, error) {
	var count int64

	result := d.db.WithContext(ctx).
		Model(&Coupon{}).
		Where("code = ? AND is_active = ?", code, true).
		Count(&count)
	if result.Error != nil {
		return false, result.Error
	}

	return count > 0, nil
}

func (d *CouponDAO) FindByTombola(ctx context.Context, tombolaID uint) ([]Coupon, error) {
	var coupons []Coupon

	result := d.db.WithContext(ctx).
		Where("tombola_id = ?", tombolaID).
		Order("created_at DESC").
		Find(&coupons)
	if result.Error != nil {
		return nil, result.Error
	}

	return coupons, nil
}

// FindByTombolaOrderedByUses feeds the commission summary.
func (d *CouponDAO) FindByTombolaOrderedByUses(ctx context.Context, tombolaID uint) ([]Coupon, error) {
	var coupons []Coupon

	result := d.db.WithContext(ctx).
		Where("tombola_id = ?", tombolaID).
		Order("total_uses DESC").
		Find(&coupons)
	if result.Error != nil {
		return nil, result.Error
	}

	return coupons, nil
}

func (d *CouponDAO) FindByCreatorPhone(ctx context.Context, phone string) ([]Coupon, error) {
	var coupons []Coupon

	result := d.db.WithContext(ctx).
		Preload("Tombola").
		Preload("Uses").
		Where("creator_phone = ?", phone).
		Order("created_at DESC").
		Find(&coupons)
	if result.Error != nil {
		return nil, result.Error
	}

	return coupons, nil
}

func (d *CouponDAO) UpdateDiscount(ctx context.Context, id uint, percentage int) (Coupon, error) {
	result := d.db.WithContext(ctx).
		Model(&Coupon{}).
		Where("id = ?", id).
		Update("discount_percentage", percentage)
	if result.Error != nil {
		return Coupon{}, result.Error
	}
	if result.RowsAffected == 0 {
		return Coupon{}, ErrCouponNotFound
	}

	return d.FindByID(ctx, id)
}

func (d *CouponDAO) Delete(ctx context.Context, id uint) error {
	result := d.db.WithContext(ctx).Delete(&Coupon{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCouponNotFound
	}

	return nil
}

// SetArchived is idempotent; archiving also deactivates the code.
func (d *CouponDAO) SetArchived(ctx context.Context, id uint) error {
	return d.db.WithContext(ctx).
		Model(&Coupon{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"archived": true, "is_active": false}).Error
}

func (d *CouponDAO) SetParrainContacted(ctx context.Context, id uint, contacted bool) error {
	result := d.db.WithContext(ctx).
		Model(&Coupon{}).
		Where("id = ?", id).
		Update("parrain_contacted", contacted)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCouponNotFound
	}

	return nil
}

// UpdateAggregates overwrites the cached counters with freshly
// recomputed values.
func (d *CouponDAO) UpdateAggregates(ctx context.Context, id uint, uses, revenue, commission int) error {
	return d.db.WithContext(ctx).
		Model(&Coupon{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"total_uses":       uses,
			"total_revenue":    revenue,
			"total_commission": commission,
		}).Error
}

func (d *CouponDAO) InsertUse(ctx context.Context, use CouponUse) (CouponUse, error) {
	result := d.db.WithContext(ctx).Create(&use)
	if result.Error != nil {
		return CouponUse{}, result.Error
	}

	return use, nil
}

func (d *CouponDAO) UsesByCoupon(ctx context.Context, couponID uint) ([]CouponUse, error) {
	var uses []CouponUse

	result := d.db.WithContext(ctx).
		Where("coupon_id = ?", couponID).
		Order("used_at ASC").
		Find(&uses)
	if result.Error != nil {
		return nil, result.Error
	}

	return uses, nil
}

func (d *CouponDAO) CountUses(ctx context.Context, couponID uint) (int64, error) {
	var count int64

	result := d.db.WithContext(ctx).
		Model(&CouponUse{}).
		Where("coupon_id = ?", couponID).
		Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}

	return count, nil
}

// UseByParticipant finds the redemption behind a participant's ticket,
// if any.
func (d *CouponDAO) UseByParticipant(ctx context.Context, participantID uint) (CouponUse, error) {
	var use CouponUse

	result := d.db.WithContext(ctx).
		Where("participant_id = ?", participantID).
		First(&use)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return CouponUse{}, ErrCouponUseNotFound
		}

		return CouponUse{}, result.Error
	}

	return use, nil
}

// BonusForCoupon sums the win bonuses earned through this coupon's
// referred participants.
func (d *CouponDAO) BonusForCoupon(ctx context.Context, couponID uint) (int64, error) {
	var bonus int64

	result := d.db.WithContext(ctx).
		Model(&Winner{}).
		Select("COALESCE(SUM(winners.bonus_commission), 0)").
		Joins("JOIN coupon_uses ON coupon_uses.participant_id = winners.participant_id AND coupon_uses.tombola_id = winners.tombola_id").
		Where("coupon_uses.coupon_id = ?", couponID).
		Scan(&bonus)
	if result.Error != nil {
		return 0, result.Error
	}

	return bonus, nil
}

package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrSponsorPaymentNotFound = errors.New("sponsor payment not found")

type CommissionTier struct {
	ID                   uint    `gorm:"primaryKey"`
	TombolaID            uint    `gorm:"not null;index"`
	Name                 string  `gorm:"not null"`
	MinTickets           int     `gorm:"not null"`
	CommissionPercentage float64 `gorm:"not null"`
}

type SponsorPayment struct {
	ID            uint `gorm:"primaryKey;autoIncrement"`
	SponsorID     uint `gorm:"not null;uniqueIndex:uni_sponsor_payments_sponsor_tombola"`
	TombolaID     uint `gorm:"not null;uniqueIndex:uni_sponsor_payments_sponsor_tombola"`
	Amount        int  `gorm:"not null"`
	SponsorName   string
	SponsorPhone  string
	PaymentStatus string `gorm:"not null"`
	PaymentDate   time.Time
	ReceiptNumber string `gorm:"uniqueIndex:uni_sponsor_payments_receipt_number;not null"`
}

type CommissionDAO struct {
	db *gorm.DB
}

func NewCommissionDAO(db *gorm.DB) *CommissionDAO {
	return &CommissionDAO{
		db: db,
	}
}

// TiersByTombola returns tiers sorted ascending by threshold, the order
// the tier lookup expects.
func (d *CommissionDAO) TiersByTombola(ctx context.Context, tombolaID uint) ([]CommissionTier, error) {
	var tiers []CommissionTier

	result := d.db.WithContext(ctx).
		Where("tombola_id = ?", tombolaID).
		Order("min_tickets ASC").
		Find(&tiers)
	if result.Error != nil {
		return nil, result.Error
	}

	return tiers, nil
}

// ReplaceTiers swaps a tombola's tier set atomically.
func (d *CommissionDAO) ReplaceTiers(ctx context.Context, tombolaID uint, tiers []CommissionTier) ([]CommissionTier, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tombola_id = ?", tombolaID).Delete(&CommissionTier{}).Error; err != nil {
			return err
		}

		if len(tiers) == 0 {
			return nil
		}

		for i := range tiers {
			tiers[i].ID = 0
			tiers[i].TombolaID = tombolaID
		}

		return tx.Create(&tiers).Error
	})
	if err != nil {
		return nil, err
	}

	return d.TiersByTombola(ctx, tombolaID)
}

// FindPaidPayment is the pre-insert existence check for the sponsor
// payment idempotency guarantee.
func (d *CommissionDAO) FindPaidPayment(ctx context.Context, sponsorID, tombolaID uint) (SponsorPayment, error) {
	var payment SponsorPayment

	result := d.db.WithContext(ctx).
		Where("sponsor_id = ? AND tombola_id = ?", sponsorID, tombolaID).
		First(&payment)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return SponsorPayment{}, ErrSponsorPaymentNotFound
		}

		return SponsorPayment{}, result.Error
	}

	return payment, nil
}

// InsertPayment maps a unique-constraint violation to the same signal
// as the pre-check hit, so racing writers converge on one outcome.
func (d *CommissionDAO) InsertPayment(ctx context.Context, payment SponsorPayment) (SponsorPayment, error) {
	result := d.db.WithContext(ctx).Create(&payment)
	if result.Error != nil {
		if isUniqueViolation(result.Error, "uni_sponsor_payments_sponsor_tombola") {
			return SponsorPayment{}, ErrSponsorPaymentExists
		}

		return SponsorPayment{}, result.Error
	}

	return payment, nil
}

func (d *CommissionDAO) FindPaymentsByTombola(ctx context.Context, tombolaID uint) ([]SponsorPayment, error) {
	var payments []SponsorPayment

	result := d.db.WithContext(ctx).
		Where("tombola_id = ?", tombolaID).
		Order("payment_date DESC").
		Find(&payments)
	if result.Error != nil {
		return nil, result.Error
	}

	return payments, nil
}

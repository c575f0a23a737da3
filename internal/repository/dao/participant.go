package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

type Participant struct {
	ID                uint   `gorm:"primaryKey"`
	Name              string `gorm:"not null"`
	Phone             string `gorm:"not null;index"`
	TombolaID         uint   `gorm:"not null;index"`
	Tombola           Tombola `gorm:"foreignKey:TombolaID"`
	TicketNumber      string  `gorm:"uniqueIndex:uni_participants_ticket_number;not null"`
	PaymentStatus     string  `gorm:"not null;index"`
	AirtelMoneyNumber string
	PaymentRef        string
	CreatedAt         time.Time

	CouponUse *CouponUse `gorm:"foreignKey:ParticipantID"`
	Winner    *Winner    `gorm:"foreignKey:ParticipantID"`
}

type ParticipantDAO struct {
	db *gorm.DB
}

func NewParticipantDAO(db *gorm.DB) *ParticipantDAO {
	return &ParticipantDAO{
		db: db,
	}
}

func (d *ParticipantDAO) Insert(ctx context.Context, participant Participant) (Participant, error) {
	result := d.db.WithContext(ctx).Create(&participant)
	if result.Error != nil {
		if isUniqueViolation(result.Error, "uni_participants_ticket_number") {
			return Participant{}, ErrTicketNumberExists
		}

		return Participant{}, result.Error
	}

	return participant, nil
}

// FindByID loads the redemption row too; the ticket view needs it to
// show the discounted price.
func (d *ParticipantDAO) FindByID(ctx context.Context, id uint) (Participant, error) {
	var participant Participant

	result := d.db.WithContext(ctx).
		Preload("CouponUse").
		First(&participant, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Participant{}, ErrParticipantNotFound
		}

		return Participant{}, result.Error
	}

	return participant, nil
}

func (d *ParticipantDAO) FindAll(ctx context.Context) ([]Participant, error) {
	var participants []Participant

	result := d.db.WithContext(ctx).Order("created_at DESC").Find(&participants)
	if result.Error != nil {
		return nil, result.Error
	}

	return participants, nil
}

// FindByTombola joins each participant with their redemption and win
// rows for the admin listing.
func (d *ParticipantDAO) FindByTombola(ctx context.Context, tombolaID uint) ([]Participant, error) {
	var participants []Participant

	result := d.db.WithContext(ctx).
		Preload("CouponUse").
		Preload("Winner").
		Where("tombola_id = ?", tombolaID).
		Order("created_at DESC").
		Find(&participants)
	if result.Error != nil {
		return nil, result.Error
	}

	return participants, nil
}

// FindEligible returns the payment-confirmed participants of a tombola.
func (d *ParticipantDAO) FindEligible(ctx context.Context, tombolaID uint) ([]Participant, error) {
	var participants []Participant

	result := d.db.WithContext(ctx).
		Where("tombola_id = ? AND payment_status = ?", tombolaID, "confirmed").
		Find(&participants)
	if result.Error != nil {
		return nil, result.Error
	}

	return participants, nil
}

func (d *ParticipantDAO) CountConfirmed(ctx context.Context, tombolaID uint) (int64, error) {
	var count int64

	result := d.db.WithContext(ctx).
		Model(&Participant{}).
		Where("tombola_id = ? AND payment_status = ?", tombolaID, "confirmed").
		Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}

	return count, nil
}

func (d *ParticipantDAO) CountAllConfirmed(ctx context.Context) (int64, error) {
	var count int64

	result := d.db.WithContext(ctx).
		Model(&Participant{}).
		Where("payment_status = ?", "confirmed").
		Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}

	return count, nil
}

// UpdatePaymentStatus exists for admin corrections only; the workflow
// creates participants already confirmed.
func (d *ParticipantDAO) UpdatePaymentStatus(ctx context.Context, id uint, status string) (Participant, error) {
	result := d.db.WithContext(ctx).
		Model(&Participant{}).
		Where("id = ?", id).
		Update("payment_status", status)
	if result.Error != nil {
		return Participant{}, result.Error
	}
	if result.RowsAffected == 0 {
		return Participant{}, ErrParticipantNotFound
	}

	return d.FindByID(ctx, id)
}

package repository

import (
	"context"
	"fmt"

	"github.com/gytx-dev/tombola-api/internal/domain"
	"github.com/gytx-dev/tombola-api/internal/repository/dao"
)

var (
	ErrParticipantNotFound = dao.ErrParticipantNotFound
	ErrTicketNumberExists  = dao.ErrTicketNumberExists
)

type ParticipantDAO interface {
	Insert(ctx context.Context, participant dao.Participant) (dao.Participant, error)
	FindByID(ctx context.Context, id uint) (dao.Participant, error)
	FindAll(ctx context.Context) ([]dao.Participant, error)
	FindByTombola(ctx context.Context, tombolaID uint) ([]dao.Participant, error)
	FindEligible(ctx context.Context, tombolaID uint) ([]dao.Participant, error)
	CountConfirmed(ctx context.Context, tombolaID uint) (int64, error)
	CountAllConfirmed(ctx context.Context) (int64, error)
	UpdatePaymentStatus(ctx context.Context, id uint, status string) (dao.Participant, error)
}

type ParticipantRepository struct {
	dao ParticipantDAO
}

func NewParticipantRepository(dao ParticipantDAO) *ParticipantRepository {
	return &ParticipantRepository{
		dao: dao,
	}
}

func (r *ParticipantRepository) domainToDao(p domain.Participant) dao.Participant {
	return dao.Participant{
		ID:                p.ID,
		Name:              p.Name,
		Phone:             p.Phone,
		TombolaID:         p.TombolaID,
		TicketNumber:      p.TicketNumber,
		PaymentStatus:     p.PaymentStatus,
		AirtelMoneyNumber: p.AirtelMoneyNumber,
		PaymentRef:        p.PaymentRef,
		CreatedAt:         p.CreatedAt,
	}
}

func (r *ParticipantRepository) daoToDomain(p dao.Participant) domain.Participant {
	participant := domain.Participant{
		ID:                p.ID,
		Name:              p.Name,
		Phone:             p.Phone,
		TombolaID:         p.TombolaID,
		TicketNumber:      p.TicketNumber,
		PaymentStatus:     p.PaymentStatus,
		AirtelMoneyNumber: p.AirtelMoneyNumber,
		PaymentRef:        p.PaymentRef,
		CreatedAt:         p.CreatedAt,
	}

	if p.CouponUse != nil {
		use := couponUseDaoToDomain(*p.CouponUse)
		participant.CouponUse = &use
	}

	if p.Winner != nil {
		participant.Winner = &domain.Winner{
			ID:              p.Winner.ID,
			ParticipantID:   p.Winner.ParticipantID,
			TombolaID:       p.Winner.TombolaID,
			PrizeAmount:     p.Winner.PrizeAmount,
			PrizeRank:       p.Winner.PrizeRank,
			BonusCommission: p.Winner.BonusCommission,
			PhotoURL:        p.Winner.PhotoURL,
			CreatedAt:       p.Winner.CreatedAt,
		}
	}

	return participant
}

func (r *ParticipantRepository) daosToDomain(participants []dao.Participant) []domain.Participant {
	result := make([]domain.Participant, len(participants))
	for i, p := range participants {
		result[i] = r.daoToDomain(p)
	}

	return result
}

func (r *ParticipantRepository) Create(ctx context.Context, participant domain.Participant) (domain.Participant, error) {
	created, err := r.dao.Insert(ctx, r.domainToDao(participant))
	if err != nil {
		return domain.Participant{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *ParticipantRepository) GetByID(ctx context.Context, id uint) (domain.Participant, error) {
	participant, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Participant{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(participant), nil
}

func (r *ParticipantRepository) GetAll(ctx context.Context) ([]domain.Participant, error) {
	participants, err := r.dao.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindAll -> %w", err)
	}

	return r.daosToDomain(participants), nil
}

func (r *ParticipantRepository) GetByTombola(ctx context.Context, tombolaID uint) ([]domain.Participant, error) {
	participants, err := r.dao.FindByTombola(ctx, tombolaID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByTombola -> %w", err)
	}

	return r.daosToDomain(participants), nil
}

func (r *ParticipantRepository) GetEligible(ctx context.Context, tombolaID uint) ([]domain.Participant, error) {
	participants, err := r.dao.FindEligible(ctx, tombolaID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindEligible -> %w", err)
	}

	return r.daosToDomain(participants), nil
}

func (r *ParticipantRepository) CountConfirmed(ctx context.Context, tombolaID uint) (int, error) {
	count, err := r.dao.CountConfirmed(ctx, tombolaID)
	if err != nil {
		return 0, fmt.Errorf("r.dao.CountConfirmed -> %w", err)
	}

	return int(count), nil
}

func (r *ParticipantRepository) CountAllConfirmed(ctx context.Context) (int, error) {
	count, err := r.dao.CountAllConfirmed(ctx)
	if err != nil {
		return 0, fmt.Errorf("r.dao.CountAllConfirmed -> %w", err)
	}

	return int(count), nil
}

func (r *ParticipantRepository) UpdatePaymentStatus(ctx context.Context, id uint, status string) (domain.Participant, error) {
	updated, err := r.dao.UpdatePaymentStatus(ctx, id, status)
	if err != nil {
		return domain.Participant{}, fmt.Errorf("r.dao.UpdatePaymentStatus -> %w", err)
	}

	return r.daoToDomain(updated), nil
}

package repository

import (
	"context"
	"fmt"

	"github.com/gytx-dev/tombola-api/internal/domain"
	"github.com/gytx-dev/tombola-api/internal/repository/dao"
)

var (
	ErrSponsorPaymentExists   = dao.ErrSponsorPaymentExists
	ErrSponsorPaymentNotFound = dao.ErrSponsorPaymentNotFound
)

type CommissionDAO interface {
	TiersByTombola(ctx context.Context, tombolaID uint) ([]dao.CommissionTier, error)
	ReplaceTiers(ctx context.Context, tombolaID uint, tiers []dao.CommissionTier) ([]dao.CommissionTier, error)
	FindPaidPayment(ctx context.Context, sponsorID, tombolaID uint) (dao.SponsorPayment, error)
	InsertPayment(ctx context.Context, payment dao.SponsorPayment) (dao.SponsorPayment, error)
	FindPaymentsByTombola(ctx context.Context, tombolaID uint) ([]dao.SponsorPayment, error)
}

type CommissionRepository struct {
	dao CommissionDAO
}

func NewCommissionRepository(dao CommissionDAO) *CommissionRepository {
	return &CommissionRepository{
		dao: dao,
	}
}

func tierDaoToDomain(t dao.CommissionTier) domain.CommissionTier {
	return domain.CommissionTier{
		ID:                   t.ID,
		TombolaID:            t.TombolaID,
		Name:                 t.Name,
		MinTickets:           t.MinTickets,
		CommissionPercentage: t.CommissionPercentage,
	}
}

func tierDomainToDao(t domain.CommissionTier) dao.CommissionTier {
	return dao.CommissionTier{
		ID:                   t.ID,
		TombolaID:            t.TombolaID,
		Name:                 t.Name,
		MinTickets:           t.MinTickets,
		CommissionPercentage: t.CommissionPercentage,
	}
}

func paymentDaoToDomain(p dao.SponsorPayment) domain.SponsorPayment {
	return domain.SponsorPayment{
		ID:            p.ID,
		SponsorID:     p.SponsorID,
		TombolaID:     p.TombolaID,
		Amount:        p.Amount,
		SponsorName:   p.SponsorName,
		SponsorPhone:  p.SponsorPhone,
		PaymentStatus: p.PaymentStatus,
		PaymentDate:   p.PaymentDate,
		ReceiptNumber: p.ReceiptNumber,
	}
}

func (r *CommissionRepository) GetTiers(ctx context.Context, tombolaID uint) ([]domain.CommissionTier, error) {
	tiers, err := r.dao.TiersByTombola(ctx, tombolaID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.TiersByTombola -> %w", err)
	}

	result := make([]domain.CommissionTier, len(tiers))
	for i, t := range tiers {
		result[i] = tierDaoToDomain(t)
	}

	return result, nil
}

func (r *CommissionRepository) ReplaceTiers(ctx context.Context, tombolaID uint, tiers []domain.CommissionTier) ([]domain.CommissionTier, error) {
	daoTiers := make([]dao.CommissionTier, len(tiers))
	for i, t := range tiers {
		daoTiers[i] = tierDomainToDao(t)
	}

	replaced, err := r.dao.ReplaceTiers(ctx, tombolaID, daoTiers)
	if err != nil {
		return nil, fmt.Errorf("r.dao.ReplaceTiers -> %w", err)
	}

	result := make([]domain.CommissionTier, len(replaced))
	for i, t := range replaced {
		result[i] = tierDaoToDomain(t)
	}

	return result, nil
}

func (r *CommissionRepository) GetPaidPayment(ctx context.Context, sponsorID, tombolaID uint) (domain.SponsorPayment, error) {
	payment, err := r.dao.FindPaidPayment(ctx, sponsorID, tombolaID)
	if err != nil {
		return domain.SponsorPayment{}, fmt.Errorf("r.dao.FindPaidPayment -> %w", err)
	}

	return paymentDaoToDomain(payment), nil
}

func (r *CommissionRepository) CreatePayment(ctx context.Context, payment domain.SponsorPayment) (domain.SponsorPayment, error) {
	created, err := r.dao.InsertPayment(ctx, dao.SponsorPayment{
		SponsorID:     payment.SponsorID,
		TombolaID:     payment.TombolaID,
		Amount:        payment.Amount,
		SponsorName:   payment.SponsorName,
		SponsorPhone:  payment.SponsorPhone,
		PaymentStatus: payment.PaymentStatus,
		PaymentDate:   payment.PaymentDate,
		ReceiptNumber: payment.ReceiptNumber,
	})
	if err != nil {
		return domain.SponsorPayment{}, fmt.Errorf("r.dao.InsertPayment -> %w", err)
	}

	return paymentDaoToDomain(created), nil
}

func (r *CommissionRepository) GetPaymentsByTombola(ctx context.Context, tombolaID uint) ([]domain.SponsorPayment, error) {
	payments, err := r.dao.FindPaymentsByTombola(ctx, tombolaID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindPaymentsByTombola -> %w", err)
	}

	result := make([]domain.SponsorPayment, len(payments))
	for i, p := range payments {
		result[i] = paymentDaoToDomain(p)
	}

	return result, nil
}
